package deck

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errMissingID      = errors.New("missing id")
	errMissingPrompt  = errors.New("missing question text")
	errOptionCount    = errors.New("options must have exactly 4 entries")
	errEmptyOption    = errors.New("empty option")
	errMissingCorrect = errors.New("missing correctAnswerIndex")
	errCorrectRange   = errors.New("correctAnswerIndex out of range 0-3")
)

// RawQuestion is the wire form of a question as stored in documents and
// state blobs. Pointer fields distinguish "missing" from zero.
type RawQuestion struct {
	ID                  string   `json:"id"`
	Question            string   `json:"question"`
	Options             []string `json:"options"`
	CorrectAnswerIndex  *int     `json:"correctAnswerIndex"`
	Subject             string   `json:"subject,omitempty"`
	Explanation         string   `json:"explanation,omitempty"`
	IntervalIndex       *int     `json:"intervalIndex,omitempty"`
	NextDueSession      *int     `json:"nextDueSession,omitempty"`
	LastReviewedSession *int     `json:"lastReviewedSession,omitempty"`
	TimesCorrect        *int     `json:"timesCorrect,omitempty"`
	TimesIncorrect      *int     `json:"timesIncorrect,omitempty"`
}

// NormalizeQuestion converts a raw record into a Question.
//
// Content errors (missing id, prompt, options or correct index) reject the
// record. Scheduling fields never reject: a missing or out of range
// interval is clamped, a next due session below 1 becomes 1, a negative
// last reviewed session becomes nil and negative counters become 0.
func NormalizeQuestion(raw RawQuestion) (Question, error) {
	var q Question

	q.ID = strings.TrimSpace(raw.ID)
	if q.ID == "" {
		return Question{}, errMissingID
	}
	q.Prompt = strings.TrimSpace(raw.Question)
	if q.Prompt == "" {
		return Question{}, errMissingPrompt
	}
	if len(raw.Options) != OptionCount {
		return Question{}, fmt.Errorf("%w: got %d", errOptionCount, len(raw.Options))
	}
	for i, opt := range raw.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return Question{}, fmt.Errorf("%w: option %d", errEmptyOption, i+1)
		}
		q.Options[i] = opt
	}
	if raw.CorrectAnswerIndex == nil {
		return Question{}, errMissingCorrect
	}
	if *raw.CorrectAnswerIndex < 0 || *raw.CorrectAnswerIndex >= OptionCount {
		return Question{}, fmt.Errorf("%w: got %d", errCorrectRange, *raw.CorrectAnswerIndex)
	}
	q.CorrectIndex = *raw.CorrectAnswerIndex
	q.Subject = strings.TrimSpace(raw.Subject)
	q.Explanation = strings.TrimSpace(raw.Explanation)

	if raw.IntervalIndex != nil {
		q.IntervalIndex = ClampInterval(*raw.IntervalIndex)
	}
	q.NextDueSession = 1
	if raw.NextDueSession != nil && *raw.NextDueSession >= 1 {
		q.NextDueSession = *raw.NextDueSession
	}
	if raw.LastReviewedSession != nil && *raw.LastReviewedSession >= 0 {
		q.LastReviewedSession = intPtr(*raw.LastReviewedSession)
	}
	q.TimesCorrect = nonNegative(raw.TimesCorrect)
	q.TimesIncorrect = nonNegative(raw.TimesIncorrect)
	return q, nil
}

// ToRaw converts a Question to its wire form.
func ToRaw(q Question) RawQuestion {
	raw := RawQuestion{
		ID:                 q.ID,
		Question:           q.Prompt,
		Options:            append([]string(nil), q.Options[:]...),
		CorrectAnswerIndex: intPtr(q.CorrectIndex),
		Subject:            q.Subject,
		Explanation:        q.Explanation,
		IntervalIndex:      intPtr(q.IntervalIndex),
		NextDueSession:     intPtr(q.NextDueSession),
		TimesCorrect:       intPtr(q.TimesCorrect),
		TimesIncorrect:     intPtr(q.TimesIncorrect),
	}
	if q.LastReviewedSession != nil {
		raw.LastReviewedSession = intPtr(*q.LastReviewedSession)
	}
	return raw
}

// NormalizeAll normalizes a batch, dropping invalid records into the report.
// ref builds the report reference for record i.
func NormalizeAll(raws []RawQuestion, ref func(i int) string) ([]Question, LoadReport) {
	var report LoadReport
	out := make([]Question, 0, len(raws))
	for i, raw := range raws {
		q, err := NormalizeQuestion(raw)
		if err != nil {
			report.Add(ref(i), err)
			continue
		}
		out = append(out, q)
	}
	return out, report
}

func nonNegative(p *int) int {
	if p == nil || *p < 0 {
		return 0
	}
	return *p
}
