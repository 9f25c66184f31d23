package deck

import (
	"time"
)

// Source records how a set was authored.
type Source string

const (
	SourceManual   Source = "manual"
	SourceCSV      Source = "csv"
	SourceMarkdown Source = "markdown"
	SourceJSON     Source = "json"
	SourceAI       Source = "ai"
)

// AIGeneratedPrefix is prepended to the names of AI generated sets.
const AIGeneratedPrefix = "AI-Generated - "

// Set is a named, independently activatable group of questions.
type Set struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Active    bool
	Source    Source
	Questions []Question
}

// NewSet creates an active, empty set with a fresh ID.
func NewSet(name string, source Source, now time.Time) Set {
	return Set{
		ID:        NewSetID(),
		Name:      name,
		CreatedAt: now,
		Active:    true,
		Source:    source,
	}
}

// ActivePool returns copies of all questions in active sets, in set order.
func ActivePool(sets []Set) []Question {
	var pool []Question
	for _, s := range sets {
		if !s.Active {
			continue
		}
		pool = append(pool, s.Questions...)
	}
	return pool
}

// Locate finds a question by ID across all sets.
func Locate(sets []Set, id string) (setIdx, questionIdx int, ok bool) {
	for i := range sets {
		for j := range sets[i].Questions {
			if sets[i].Questions[j].ID == id {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}

// FindSet returns the index of the set with the given ID, or -1.
func FindSet(sets []Set, id string) int {
	for i := range sets {
		if sets[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of sets so callers can mutate scheduling state
// without aliasing the original slices.
func Clone(sets []Set) []Set {
	out := make([]Set, len(sets))
	for i, s := range sets {
		out[i] = s
		out[i].Questions = make([]Question, len(s.Questions))
		for j, q := range s.Questions {
			if q.LastReviewedSession != nil {
				q.LastReviewedSession = intPtr(*q.LastReviewedSession)
			}
			out[i].Questions[j] = q
		}
	}
	return out
}

// CountQuestions returns the total number of questions across sets.
func CountQuestions(sets []Set) int {
	n := 0
	for _, s := range sets {
		n += len(s.Questions)
	}
	return n
}

// CheckUniqueIDs returns a *DuplicateIDError for the first question ID
// that appears more than once across sets.
func CheckUniqueIDs(sets []Set) error {
	seen := make(map[string]string)
	for _, s := range sets {
		for _, q := range s.Questions {
			if other, ok := seen[q.ID]; ok {
				return &DuplicateIDError{ID: q.ID, FirstSet: other, SecondSet: s.ID}
			}
			seen[q.ID] = s.ID
		}
	}
	return nil
}

// Append adds incoming to sets after checking that none of its question
// IDs collide with existing ones. The input slice is not modified.
func Append(sets []Set, incoming Set) ([]Set, error) {
	if FindSet(sets, incoming.ID) >= 0 {
		return nil, &DuplicateIDError{ID: incoming.ID, FirstSet: incoming.ID, SecondSet: incoming.ID, IsSet: true}
	}
	out := make([]Set, 0, len(sets)+1)
	out = append(out, sets...)
	out = append(out, incoming)
	if err := CheckUniqueIDs(out); err != nil {
		return nil, err
	}
	return out, nil
}
