package gamify

import "github.com/abhisek/smartstudy/internal/store"

// Quest event kinds.
const (
	QuestEventSession = "session"
	QuestEventCorrect = "correct"
)

// Quest is a daily goal measured over the day's quest events.
type Quest struct {
	ID          string
	Name        string
	Description string
	XP          int
	Goal        int
	progress    func(events []store.QuestEventData) int
}

// DailyQuests lists the quests in display order.
var DailyQuests = []Quest{
	{
		ID:          "complete-session",
		Name:        "Daily Check-in",
		Description: "Complete one study session.",
		XP:          15,
		Goal:        1,
		progress:    countKind(QuestEventSession),
	},
	{
		ID:          "ten-correct",
		Name:        "Brainiac",
		Description: "Answer 10 questions correctly.",
		XP:          20,
		Goal:        10,
		progress:    countKind(QuestEventCorrect),
	},
	{
		ID:          "three-subjects",
		Name:        "Versatile Learner",
		Description: "Answer questions correctly from 3 different subjects.",
		XP:          25,
		Goal:        3,
		progress:    distinctSubjects,
	},
}

func countKind(kind string) func([]store.QuestEventData) int {
	return func(events []store.QuestEventData) int {
		n := 0
		for _, e := range events {
			if e.Kind == kind {
				n++
			}
		}
		return n
	}
}

func distinctSubjects(events []store.QuestEventData) int {
	seen := make(map[string]bool)
	for _, e := range events {
		if e.Kind == QuestEventCorrect && e.Subject != "" {
			seen[e.Subject] = true
		}
	}
	return len(seen)
}

// QuestStatus is a quest's progress for one day.
type QuestStatus struct {
	Quest
	Current int
	Claimed bool
}

// Completed reports whether the goal has been reached.
func (s QuestStatus) Completed() bool {
	return s.Current >= s.Goal
}

// EvaluateQuests measures every daily quest against the day's events.
// claimed holds the IDs of quests already rewarded that day.
func EvaluateQuests(events []store.QuestEventData, claimed map[string]bool) []QuestStatus {
	out := make([]QuestStatus, len(DailyQuests))
	for i, q := range DailyQuests {
		out[i] = QuestStatus{
			Quest:   q,
			Current: min(q.progress(events), q.Goal),
			Claimed: claimed[q.ID],
		}
	}
	return out
}
