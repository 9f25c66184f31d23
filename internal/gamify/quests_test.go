package gamify

import (
	"testing"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/store"
)

func TestEvaluateQuests(t *testing.T) {
	var events []store.QuestEventData
	events = append(events, store.QuestEventData{Kind: QuestEventSession})
	for i := 0; i < 12; i++ {
		events = append(events, store.QuestEventData{Kind: QuestEventCorrect, Subject: []string{"math", "bio"}[i%2]})
	}

	got := EvaluateQuests(events, map[string]bool{"complete-session": true})
	if len(got) != len(DailyQuests) {
		t.Fatalf("len = %d, want %d", len(got), len(DailyQuests))
	}

	checks := []struct {
		id        string
		current   int
		completed bool
		claimed   bool
	}{
		{"complete-session", 1, true, true},
		{"ten-correct", 10, true, false},
		{"three-subjects", 2, false, false},
	}
	for i, c := range checks {
		qs := got[i]
		if qs.ID != c.id {
			t.Errorf("quest[%d].ID = %q, want %q", i, qs.ID, c.id)
		}
		if qs.Current != c.current {
			t.Errorf("%s Current = %d, want %d", c.id, qs.Current, c.current)
		}
		if qs.Completed() != c.completed {
			t.Errorf("%s Completed = %v, want %v", c.id, qs.Completed(), c.completed)
		}
		if qs.Claimed != c.claimed {
			t.Errorf("%s Claimed = %v, want %v", c.id, qs.Claimed, c.claimed)
		}
	}
}

func TestEarned(t *testing.T) {
	mastered := deck.NewQuestion("q1", "p", [4]string{"a", "b", "c", "d"}, 0)
	mastered.IntervalIndex = 4

	tests := []struct {
		name string
		st   store.StatsData
		sets []deck.Set
		want []string
	}{
		{"nothing", store.StatsData{}, nil, nil},
		{"creator", store.StatsData{}, []deck.Set{{ID: "s", Name: "Bio", Active: true}}, []string{"creator"}},
		{
			"ai set",
			store.StatsData{},
			[]deck.Set{{ID: "s", Name: deck.AIGeneratedPrefix + "notes.txt", Source: deck.SourceAI}},
			[]string{"ai-explorer", "creator"},
		},
		{
			"mastered in inactive set does not count",
			store.StatsData{SessionsCompleted: 1},
			[]deck.Set{{ID: "s", Name: "x", Active: false, Questions: []deck.Question{mastered}}},
			[]string{"first-session", "creator"},
		},
		{
			"streak and mastery",
			store.StatsData{SessionsCompleted: 9, CurrentStreak: 7},
			[]deck.Set{{ID: "s", Name: "x", Active: true, Questions: []deck.Question{mastered}}},
			[]string{"first-session", "7-day-streak", "master-1", "creator"},
		},
	}
	for _, tt := range tests {
		var ids []string
		for _, a := range Earned(tt.st, tt.sets) {
			ids = append(ids, a.ID)
		}
		if len(ids) != len(tt.want) {
			t.Errorf("%s: Earned = %v, want %v", tt.name, ids, tt.want)
			continue
		}
		for i := range ids {
			if ids[i] != tt.want[i] {
				t.Errorf("%s: Earned = %v, want %v", tt.name, ids, tt.want)
				break
			}
		}
	}
}
