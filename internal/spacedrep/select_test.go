package spacedrep

import (
	"testing"

	"github.com/abhisek/smartstudy/internal/deck"
)

func q(id string, due int, last *int) deck.Question {
	out := deck.NewQuestion(id, "P "+id, [4]string{"a", "b", "c", "d"}, 0)
	out.NextDueSession = due
	out.LastReviewedSession = last
	return out
}

func ptr(v int) *int { return &v }

func ids(qs []deck.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSelectDue_FilterAndOrder(t *testing.T) {
	pool := []deck.Question{
		q("c", 3, ptr(2)),
		q("a", 3, ptr(2)),
		q("future", 9, ptr(5)),
		q("fresh", 1, nil),
		q("b", 3, nil),
		q("old", 2, ptr(1)),
	}
	got := ids(SelectDue(pool, 5))
	want := []string{"fresh", "old", "b", "a", "c"}
	if !equalIDs(got, want) {
		t.Errorf("SelectDue = %v, want %v", got, want)
	}
}

func TestSelectDue_DoesNotMutateInput(t *testing.T) {
	pool := []deck.Question{q("z", 2, nil), q("a", 1, nil)}
	before := ids(pool)
	_ = SelectDue(pool, 5)
	if !equalIDs(ids(pool), before) {
		t.Errorf("input reordered: %v, want %v", ids(pool), before)
	}
}

func TestSelectDue_Empty(t *testing.T) {
	got := SelectDue([]deck.Question{q("a", 4, nil)}, 3)
	if got == nil || len(got) != 0 {
		t.Errorf("SelectDue = %v, want empty non-nil slice", got)
	}
	if got := SelectDue(nil, 1); len(got) != 0 {
		t.Errorf("SelectDue(nil) = %v, want empty", got)
	}
}

func TestNextFutureSession(t *testing.T) {
	pool := []deck.Question{q("a", 2, nil), q("b", 7, nil), q("c", 4, nil)}
	got, ok := NextFutureSession(pool, 2)
	if !ok || got != 4 {
		t.Errorf("NextFutureSession = (%d, %v), want (4, true)", got, ok)
	}
	if _, ok := NextFutureSession(pool, 7); ok {
		t.Error("NextFutureSession found a session after the last due")
	}
	if _, ok := NextFutureSession(nil, 1); ok {
		t.Error("NextFutureSession on empty pool returned ok")
	}
}

func TestForecast(t *testing.T) {
	pool := []deck.Question{q("a", 1, nil), q("b", 3, nil), q("c", 4, nil), q("d", 12, nil)}
	got := Forecast(pool, 3, 3)
	want := []int{2, 1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Forecast[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if Forecast(pool, 1, 0) != nil {
		t.Error("Forecast with n=0 should be nil")
	}
}
