package spacedrep

import "github.com/abhisek/smartstudy/internal/deck"

// Transition is the scheduling outcome of a single answer.
type Transition struct {
	Index   int
	NextDue int
}

// Advance moves a question along the ladder. A correct answer climbs one
// rung (capped at the top); anything else drops back to rung 0. The next
// due session is current plus the interval of the new rung.
func Advance(idx int, correct bool, current int) Transition {
	idx = deck.ClampInterval(idx)
	next := 0
	if correct {
		next = min(idx+1, TopRung)
	}
	return Transition{Index: next, NextDue: current + Ladder[next]}
}

// Apply records an answer on q in the given session and returns the
// updated copy.
func Apply(q deck.Question, correct bool, current int) deck.Question {
	tr := Advance(q.IntervalIndex, correct, current)
	q.IntervalIndex = tr.Index
	q.NextDueSession = tr.NextDue
	reviewed := current
	q.LastReviewedSession = &reviewed
	if correct {
		q.TimesCorrect++
	} else {
		q.TimesIncorrect++
	}
	return q
}

// ReviewStatus describes a question's review status for display.
type ReviewStatus string

const (
	ReviewNew      ReviewStatus = "new"
	ReviewNotDue   ReviewStatus = "not_due"
	ReviewDue      ReviewStatus = "due"
	ReviewOverdue  ReviewStatus = "overdue"
	ReviewMastered ReviewStatus = "mastered"
)

// Status returns the review status of q in the current session. A question
// is overdue once it has waited longer than its own interval past due.
func Status(q deck.Question, current int) ReviewStatus {
	if q.LastReviewedSession == nil {
		return ReviewNew
	}
	if q.NextDueSession > current {
		if deck.ClampInterval(q.IntervalIndex) == TopRung {
			return ReviewMastered
		}
		return ReviewNotDue
	}
	if current-q.NextDueSession >= IntervalFor(q.IntervalIndex) {
		return ReviewOverdue
	}
	return ReviewDue
}

// SessionsUntilDue returns how many sessions remain before q is due.
// Returns 0 if already due.
func SessionsUntilDue(q deck.Question, current int) int {
	if q.NextDueSession <= current {
		return 0
	}
	return q.NextDueSession - current
}
