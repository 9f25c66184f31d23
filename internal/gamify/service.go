package gamify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/store"
	"github.com/abhisek/smartstudy/internal/study"
)

// Reward kinds.
const (
	RewardQuest       = "quest"
	RewardAchievement = "achievement"
)

// Repo is the persistence the service needs.
type Repo interface {
	store.EventRepo
	store.StatsRepo
}

// SetLoader supplies the current sets for achievement checks.
type SetLoader interface {
	LoadSets(ctx context.Context) ([]deck.Set, deck.LoadReport, error)
}

// Reward is XP granted during a session.
type Reward struct {
	Kind string
	Ref  string
	Name string
	XP   int
}

// Options configures a Service.
type Options struct {
	Sets   SetLoader
	Logger *slog.Logger
	Now    func() time.Time
}

// Service tracks streaks, XP, daily quests and achievements. It receives
// study events from the session machine.
type Service struct {
	repo   Repo
	sets   SetLoader
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	pending []Reward
}

var (
	_ study.Events         = (*Service)(nil)
	_ study.AnswerRecorder = (*Service)(nil)
)

// NewService creates a gamification service backed by repo.
func NewService(repo Repo, opts Options) *Service {
	s := &Service{
		repo:   repo,
		sets:   opts.Sets,
		logger: opts.Logger,
		now:    opts.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) today() string {
	return Day(s.now())
}

// AnswerRecorded logs every scored answer.
func (s *Service) AnswerRecorded(ctx context.Context, runID string, rec study.AnswerRecord) error {
	return s.repo.AppendAnswerEvent(ctx, store.AnswerEventData{
		RunID:          runID,
		QuestionID:     rec.QuestionID,
		Subject:        rec.Subject,
		Selected:       rec.Selected,
		Correct:        rec.Correct,
		TimedOut:       rec.TimedOut,
		IntervalIndex:  rec.Transition.Index,
		NextDueSession: rec.Transition.NextDue,
	})
}

// AnsweredCorrectly counts toward the day's correct-answer quests.
func (s *Service) AnsweredCorrectly(ctx context.Context, subject string) error {
	return s.repo.AppendQuestEvent(ctx, store.QuestEventData{
		Day:     s.today(),
		Kind:    QuestEventCorrect,
		Subject: subject,
	})
}

// SessionCompleted records the run, advances the streak, and claims any
// completed quests and newly earned achievements.
func (s *Service) SessionCompleted(ctx context.Context, result study.SessionResult) error {
	day := s.today()

	if err := s.repo.AppendSessionEvent(ctx, store.SessionEventData{
		RunID:         result.RunID,
		SessionNumber: result.Session,
		Score:         result.Score,
		Total:         result.Total,
		DurationSecs:  int(result.Duration.Seconds()),
		Day:           day,
	}); err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	if err := s.repo.AppendQuestEvent(ctx, store.QuestEventData{Day: day, Kind: QuestEventSession}); err != nil {
		return fmt.Errorf("record quest progress: %w", err)
	}

	st, err := s.repo.LoadStats(ctx)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	st = AdvanceStreak(st, day)
	st.SessionsCompleted++
	if result.Perfect() {
		st.PerfectSessions++
	}

	if st, err = s.claimQuests(ctx, st, day); err != nil {
		return err
	}

	var sets []deck.Set
	if s.sets != nil {
		if sets, _, err = s.sets.LoadSets(ctx); err != nil {
			s.logger.Warn("load sets for achievements", "error", err)
		}
	}
	if st, err = s.unlockAchievements(ctx, st, sets, day); err != nil {
		return err
	}

	if err := s.repo.SaveStats(ctx, st); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	s.logger.Info("session recorded",
		slog.Int("session", result.Session),
		slog.Int("score", result.Score),
		slog.Int("total", result.Total),
		slog.Int("streak", st.CurrentStreak),
		slog.Int("xp", st.TotalXP),
	)
	return nil
}

// SyncAchievements unlocks achievements that depend only on sets, such as
// after an import. It returns the newly granted rewards.
func (s *Service) SyncAchievements(ctx context.Context, sets []deck.Set) ([]Reward, error) {
	st, err := s.repo.LoadStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	before := len(s.peek())
	st, err = s.unlockAchievements(ctx, st, sets, s.today())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveStats(ctx, st); err != nil {
		return nil, fmt.Errorf("save stats: %w", err)
	}
	return s.peek()[before:], nil
}

// TakeRewards returns and clears the rewards granted since the last call.
func (s *Service) TakeRewards() []Reward {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

func (s *Service) peek() []Reward {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reward(nil), s.pending...)
}

func (s *Service) claimQuests(ctx context.Context, st store.StatsData, day string) (store.StatsData, error) {
	events, err := s.repo.QuestEvents(ctx, day)
	if err != nil {
		return st, fmt.Errorf("load quest events: %w", err)
	}
	claimed, err := s.claimedQuests(ctx, day)
	if err != nil {
		return st, err
	}
	for _, qs := range EvaluateQuests(events, claimed) {
		if !qs.Completed() || qs.Claimed {
			continue
		}
		if err := s.grant(ctx, &st, Reward{Kind: RewardQuest, Ref: qs.ID, Name: qs.Name, XP: qs.XP}, day); err != nil {
			return st, err
		}
	}
	return st, nil
}

func (s *Service) unlockAchievements(ctx context.Context, st store.StatsData, sets []deck.Set, day string) (store.StatsData, error) {
	awarded, err := s.awardedAchievements(ctx)
	if err != nil {
		return st, err
	}
	for _, a := range Earned(st, sets) {
		if awarded[a.ID] {
			continue
		}
		if err := s.grant(ctx, &st, Reward{Kind: RewardAchievement, Ref: a.ID, Name: a.Name, XP: AchievementXP}, day); err != nil {
			return st, err
		}
	}
	return st, nil
}

func (s *Service) grant(ctx context.Context, st *store.StatsData, r Reward, day string) error {
	if err := s.repo.AppendRewardEvent(ctx, store.RewardEventData{
		Kind:   r.Kind,
		Ref:    r.Ref,
		Day:    day,
		XP:     r.XP,
		Reason: r.Name,
	}); err != nil {
		return fmt.Errorf("record %s reward %s: %w", r.Kind, r.Ref, err)
	}
	st.TotalXP += r.XP
	s.mu.Lock()
	s.pending = append(s.pending, r)
	s.mu.Unlock()
	s.logger.Info("reward granted", slog.String("kind", r.Kind), slog.String("ref", r.Ref), slog.Int("xp", r.XP))
	return nil
}

func (s *Service) claimedQuests(ctx context.Context, day string) (map[string]bool, error) {
	rewards, err := s.repo.RewardEvents(ctx, RewardQuest)
	if err != nil {
		return nil, fmt.Errorf("load quest rewards: %w", err)
	}
	claimed := make(map[string]bool)
	for _, r := range rewards {
		if r.Day == day {
			claimed[r.Ref] = true
		}
	}
	return claimed, nil
}

func (s *Service) awardedAchievements(ctx context.Context) (map[string]bool, error) {
	rewards, err := s.repo.RewardEvents(ctx, RewardAchievement)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	awarded := make(map[string]bool, len(rewards))
	for _, r := range rewards {
		awarded[r.Ref] = true
	}
	return awarded, nil
}
