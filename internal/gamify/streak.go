package gamify

import (
	"time"

	"github.com/abhisek/smartstudy/internal/store"
)

// DayLayout is the calendar-day format used for streaks and quest events.
const DayLayout = "2006-01-02"

// Day formats t as a local calendar day.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// daysBetween returns the number of calendar days from a to b. ok is false
// if either day fails to parse.
func daysBetween(a, b string) (int, bool) {
	ta, err := time.Parse(DayLayout, a)
	if err != nil {
		return 0, false
	}
	tb, err := time.Parse(DayLayout, b)
	if err != nil {
		return 0, false
	}
	return int(tb.Sub(ta).Hours() / 24), true
}

// AdvanceStreak applies a study session on day to the streak counters.
// Studying again on the same day changes nothing, the next day extends the
// streak, and any gap restarts it at 1.
func AdvanceStreak(st store.StatsData, day string) store.StatsData {
	diff, ok := daysBetween(st.LastSessionDay, day)
	switch {
	case st.LastSessionDay == "" || !ok:
		st.CurrentStreak = 1
	case diff == 0:
		if st.CurrentStreak == 0 {
			st.CurrentStreak = 1
		}
	case diff == 1:
		st.CurrentStreak++
	case diff < 0:
		// Clock moved backwards; keep the streak as is.
		return st
	default:
		st.CurrentStreak = 1
	}
	st.LastSessionDay = day
	st.LongestStreak = max(st.LongestStreak, st.CurrentStreak)
	return st
}

// StreakAlive reports whether the streak still counts on day, that is the
// last session was today or yesterday.
func StreakAlive(st store.StatsData, day string) bool {
	diff, ok := daysBetween(st.LastSessionDay, day)
	return ok && diff >= 0 && diff <= 1
}
