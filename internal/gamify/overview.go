package gamify

import (
	"context"
	"fmt"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/store"
)

// recentSessionLimit bounds the session history in an overview.
const recentSessionLimit = 10

// Overview is everything the progress views display.
type Overview struct {
	Day            string
	Stats          store.StatsData
	StreakAlive    bool
	Level          Level
	Quests         []QuestStatus
	Achievements   []AchievementStatus
	Mastery        [deck.LadderLength]int
	TotalQuestions int
	ActiveSets     int
	RecentSessions []store.SessionEventRecord
}

// Overview assembles progress data for sets. It never grants rewards.
func (s *Service) Overview(ctx context.Context, sets []deck.Set) (Overview, error) {
	day := s.today()
	st, err := s.repo.LoadStats(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("load stats: %w", err)
	}
	events, err := s.repo.QuestEvents(ctx, day)
	if err != nil {
		return Overview{}, fmt.Errorf("load quest events: %w", err)
	}
	claimed, err := s.claimedQuests(ctx, day)
	if err != nil {
		return Overview{}, err
	}
	awarded, err := s.awardedAchievements(ctx)
	if err != nil {
		return Overview{}, err
	}
	recent, err := s.repo.RecentSessions(ctx, store.QueryOpts{Limit: recentSessionLimit})
	if err != nil {
		return Overview{}, fmt.Errorf("load recent sessions: %w", err)
	}

	ov := Overview{
		Day:            day,
		Stats:          st,
		StreakAlive:    StreakAlive(st, day),
		Level:          LevelFor(st.TotalXP),
		Quests:         EvaluateQuests(events, claimed),
		RecentSessions: recent,
		TotalQuestions: deck.CountQuestions(sets),
	}
	for _, a := range Achievements {
		ov.Achievements = append(ov.Achievements, AchievementStatus{Achievement: a, Unlocked: awarded[a.ID]})
	}
	for _, set := range sets {
		if set.Active {
			ov.ActiveSets++
		}
	}
	var all []deck.Question
	for _, set := range sets {
		all = append(all, set.Questions...)
	}
	ov.Mastery = deck.MasteryDistribution(all)
	return ov, nil
}
