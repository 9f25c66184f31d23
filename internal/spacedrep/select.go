package spacedrep

import (
	"sort"

	"github.com/abhisek/smartstudy/internal/deck"
)

// SelectDue returns the questions due in the current session, ordered by
// next due session, then last reviewed session (never reviewed first),
// then ID. The input is not modified.
func SelectDue(pool []deck.Question, current int) []deck.Question {
	due := make([]deck.Question, 0, len(pool))
	for _, q := range pool {
		if q.NextDueSession <= current {
			due = append(due, q)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].NextDueSession != due[j].NextDueSession {
			return due[i].NextDueSession < due[j].NextDueSession
		}
		li, lj := lastReviewed(due[i]), lastReviewed(due[j])
		if li != lj {
			return li < lj
		}
		return due[i].ID < due[j].ID
	})
	return due
}

// NextFutureSession returns the smallest next due session strictly after
// current, and false when no question is scheduled in the future.
func NextFutureSession(pool []deck.Question, current int) (int, bool) {
	best, found := 0, false
	for _, q := range pool {
		if q.NextDueSession > current && (!found || q.NextDueSession < best) {
			best, found = q.NextDueSession, true
		}
	}
	return best, found
}

// Forecast counts how many questions become due in each of the next n
// sessions, starting at current. Entry 0 includes everything already due.
func Forecast(pool []deck.Question, current, n int) []int {
	if n <= 0 {
		return nil
	}
	counts := make([]int, n)
	for _, q := range pool {
		offset := q.NextDueSession - current
		if offset < 0 {
			offset = 0
		}
		if offset < n {
			counts[offset]++
		}
	}
	return counts
}

func lastReviewed(q deck.Question) int {
	if q.LastReviewedSession == nil {
		return 0
	}
	return *q.LastReviewedSession
}
