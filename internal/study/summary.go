package study

import "time"

// Summary holds the data displayed when a run completes.
type Summary struct {
	Session  int
	Score    int
	Total    int
	Accuracy float64
	Duration time.Duration
	Items    []AnswerRecord
}

// Perfect reports whether every question was answered correctly.
func (s *Summary) Perfect() bool {
	return s.Total > 0 && s.Score == s.Total
}

// TimedOut counts answers that were recorded by the timer.
func (s *Summary) TimedOut() int {
	n := 0
	for _, it := range s.Items {
		if it.TimedOut {
			n++
		}
	}
	return n
}

// BuildSummary creates a Summary from a run.
func BuildSummary(run *Run, now time.Time) *Summary {
	var accuracy float64
	if len(run.Log) > 0 {
		accuracy = float64(run.Score) / float64(len(run.Log))
	}
	items := make([]AnswerRecord, len(run.Log))
	copy(items, run.Log)
	return &Summary{
		Session:  run.Session,
		Score:    run.Score,
		Total:    run.Total(),
		Accuracy: accuracy,
		Duration: now.Sub(run.StartedAt),
		Items:    items,
	}
}

// correctSubjects returns the distinct non-empty subjects answered correctly,
// in first-seen order.
func correctSubjects(log []AnswerRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range log {
		if !rec.Correct || rec.Subject == "" || seen[rec.Subject] {
			continue
		}
		seen[rec.Subject] = true
		out = append(out, rec.Subject)
	}
	return out
}
