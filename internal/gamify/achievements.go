package gamify

import (
	"strings"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/spacedrep"
	"github.com/abhisek/smartstudy/internal/store"
)

// AchievementXP is granted once for each unlocked achievement.
const AchievementXP = 50

// Achievement is a one-time milestone.
type Achievement struct {
	ID          string
	Name        string
	Description string
	check       func(st store.StatsData, sets []deck.Set) bool
}

// Achievements lists every achievement in display order.
var Achievements = []Achievement{
	{
		ID:          "first-session",
		Name:        "First Step",
		Description: "Complete your first study session.",
		check: func(st store.StatsData, _ []deck.Set) bool {
			return st.SessionsCompleted > 0 || st.LastSessionDay != ""
		},
	},
	{
		ID:          "7-day-streak",
		Name:        "Consistent Learner",
		Description: "Maintain a 7-day study streak.",
		check: func(st store.StatsData, _ []deck.Set) bool {
			return st.CurrentStreak >= 7
		},
	},
	{
		ID:          "master-1",
		Name:        "Master of One",
		Description: "Master your first question.",
		check: func(_ store.StatsData, sets []deck.Set) bool {
			for _, q := range deck.ActivePool(sets) {
				if q.IntervalIndex == spacedrep.TopRung {
					return true
				}
			}
			return false
		},
	},
	{
		ID:          "ai-explorer",
		Name:        "AI Explorer",
		Description: "Generate a question set using AI.",
		check: func(_ store.StatsData, sets []deck.Set) bool {
			for _, s := range sets {
				if s.Source == deck.SourceAI || strings.HasPrefix(s.Name, deck.AIGeneratedPrefix) {
					return true
				}
			}
			return false
		},
	},
	{
		ID:          "creator",
		Name:        "Creator",
		Description: "Upload or create your first question set.",
		check: func(_ store.StatsData, sets []deck.Set) bool {
			return len(sets) > 0
		},
	},
}

// AchievementStatus pairs an achievement with whether it has been awarded.
type AchievementStatus struct {
	Achievement
	Unlocked bool
}

// Earned returns the achievements whose conditions currently hold.
func Earned(st store.StatsData, sets []deck.Set) []Achievement {
	var out []Achievement
	for _, a := range Achievements {
		if a.check(st, sets) {
			out = append(out, a)
		}
	}
	return out
}
