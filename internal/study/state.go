package study

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/spacedrep"
)

var (
	// ErrSelectionRequired is returned when an answer is submitted without a choice.
	ErrSelectionRequired = errors.New("select an option before submitting")

	// ErrInvalidOption is returned for a selection outside the option range.
	ErrInvalidOption = errors.New("selected option out of range")

	// ErrTimerLocked is returned when the timer is changed after answering began.
	ErrTimerLocked = errors.New("timer can only be changed before the first answer")

	// ErrNotReady is returned when an operation is invalid in the current phase.
	ErrNotReady = errors.New("operation not valid in current phase")
)

// Phase is the lifecycle phase of a study session.
type Phase int

const (
	PhaseLoading    Phase = iota // Loading sets and session number
	PhaseReady                   // Due questions selected, waiting to begin
	PhaseCaughtUp                // Nothing to study, see CaughtUpReason
	PhaseInProgress              // Waiting for an answer
	PhaseAnswered                // Showing feedback for the current question
	PhaseCompleted               // Run finished, summary available
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseCaughtUp:
		return "caught_up"
	case PhaseInProgress:
		return "in_progress"
	case PhaseAnswered:
		return "answered"
	case PhaseCompleted:
		return "completed"
	}
	return "unknown"
}

// CaughtUpReason explains why there is nothing to study.
type CaughtUpReason int

const (
	// CaughtUpNone is the zero value outside PhaseCaughtUp.
	CaughtUpNone CaughtUpReason = iota
	// CaughtUpNothingScheduled means there are no active questions at all.
	CaughtUpNothingScheduled
	// CaughtUpForNow means questions exist but none are due for this run.
	CaughtUpForNow
)

// Persistence loads and saves sets and the global session number.
type Persistence interface {
	LoadSets(ctx context.Context) ([]deck.Set, deck.LoadReport, error)
	SaveSets(ctx context.Context, sets []deck.Set) error
	LoadCurrentSession(ctx context.Context) (int, error)
	SaveCurrentSession(ctx context.Context, session int) error
}

// Events receives study outcomes for gamification.
type Events interface {
	SessionCompleted(ctx context.Context, result SessionResult) error
	AnsweredCorrectly(ctx context.Context, subject string) error
}

// AnswerRecorder is implemented by Events sinks that also want every
// answer, correct or not.
type AnswerRecorder interface {
	AnswerRecorded(ctx context.Context, runID string, rec AnswerRecord) error
}

// SessionResult is reported to Events when a run completes.
type SessionResult struct {
	RunID    string
	Session  int
	Score    int
	Total    int
	Subjects []string
	Duration time.Duration
}

// Perfect reports whether every question was answered correctly.
func (r SessionResult) Perfect() bool {
	return r.Total > 0 && r.Score == r.Total
}

// AnswerRecord is one entry in a run's answer log.
type AnswerRecord struct {
	QuestionID   string
	Prompt       string
	Subject      string
	Explanation  string
	Options      [deck.OptionCount]string
	Selected     *int
	CorrectIndex int
	Correct      bool
	TimedOut     bool
	Transition   spacedrep.Transition
}

// SelectedText returns the chosen option text, or "" when nothing was chosen.
func (r AnswerRecord) SelectedText() string {
	if r.Selected == nil || *r.Selected < 0 || *r.Selected >= deck.OptionCount {
		return ""
	}
	return r.Options[*r.Selected]
}

// CorrectText returns the correct option text.
func (r AnswerRecord) CorrectText() string {
	return r.Options[r.CorrectIndex]
}

// Run tracks the questions and answers of one pass through a session's
// due set.
type Run struct {
	ID        string
	Session   int
	Questions []deck.Question
	Cursor    int
	Score     int
	Answered  bool
	Log       []AnswerRecord
	StartedAt time.Time
}

// Total returns the number of questions in the run.
func (r *Run) Total() int { return len(r.Questions) }

// Current returns the question at the cursor, or nil past the end.
func (r *Run) Current() *deck.Question {
	if r == nil || r.Cursor < 0 || r.Cursor >= len(r.Questions) {
		return nil
	}
	return &r.Questions[r.Cursor]
}

// Finished reports whether the cursor has moved past the last question.
func (r *Run) Finished() bool {
	return r.Cursor >= len(r.Questions)
}
