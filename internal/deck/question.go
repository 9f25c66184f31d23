package deck

import (
	"fmt"
	"strings"
)

// OptionCount is the fixed number of options on every question.
const OptionCount = 4

// LadderLength is the number of rungs on the review ladder. Kept here so
// the model can clamp interval indexes without importing the scheduler.
const LadderLength = 5

// Question is a single multiple-choice question together with its
// scheduling state.
type Question struct {
	ID           string
	Prompt       string
	Options      [OptionCount]string
	CorrectIndex int
	Subject      string
	Explanation  string

	// IntervalIndex is the position on the review ladder, 0..LadderLength-1.
	IntervalIndex int

	// NextDueSession is the first session number in which the question is due.
	NextDueSession int

	// LastReviewedSession is nil until the question is first answered.
	LastReviewedSession *int

	TimesCorrect   int
	TimesIncorrect int
}

// NewQuestion builds a question with default scheduling state.
func NewQuestion(id, prompt string, options [OptionCount]string, correctIndex int) Question {
	return Question{
		ID:             id,
		Prompt:         prompt,
		Options:        options,
		CorrectIndex:   correctIndex,
		IntervalIndex:  0,
		NextDueSession: 1,
	}
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// Reviewed reports whether the question has been answered at least once.
func (q Question) Reviewed() bool {
	return q.LastReviewedSession != nil
}

// Attempts returns the total number of scored answers.
func (q Question) Attempts() int {
	return q.TimesCorrect + q.TimesIncorrect
}

// ResetSchedule returns the question with default scheduling state.
func (q Question) ResetSchedule() Question {
	q.IntervalIndex = 0
	q.NextDueSession = 1
	q.LastReviewedSession = nil
	q.TimesCorrect = 0
	q.TimesIncorrect = 0
	return q
}

// Validate checks the authored content of a question. Scheduling fields
// are not checked here; see NormalizeQuestion.
func (q Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("question id is empty")
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %s: prompt is empty", q.ID)
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("question %s: option %d is empty", q.ID, i+1)
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
		return fmt.Errorf("question %s: correct index %d out of range 0-%d", q.ID, q.CorrectIndex, OptionCount-1)
	}
	return nil
}

// intPtr returns a pointer to a copy of v.
func intPtr(v int) *int {
	return &v
}
