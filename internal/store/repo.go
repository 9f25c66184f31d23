package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SessionEventData captures a completed study run.
type SessionEventData struct {
	RunID         string
	SessionNumber int
	Score         int
	Total         int
	DurationSecs  int
	Day           string
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	SessionEventData
	Sequence  int64
	Timestamp time.Time
}

// AnswerEventData captures one scored answer.
type AnswerEventData struct {
	RunID          string
	QuestionID     string
	Subject        string
	Selected       *int
	Correct        bool
	TimedOut       bool
	IntervalIndex  int
	NextDueSession int
}

// QuestEventData records progress toward a daily quest.
type QuestEventData struct {
	Day     string
	Kind    string // "session" or "correct"
	Subject string
}

// RewardEventData records XP granted for a quest or achievement.
type RewardEventData struct {
	Kind   string // "quest" or "achievement"
	Ref    string
	Day    string
	XP     int
	Reason string
}

// RewardEventRecord is a stored reward event.
type RewardEventRecord struct {
	RewardEventData
	Sequence  int64
	Timestamp time.Time
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID int
	LLMRequestEventData
	Sequence  int64
	Timestamp time.Time
}

// StatsData is the persisted gamification state.
type StatsData struct {
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	LastSessionDay    string `json:"last_session_day,omitempty"`
	SessionsCompleted int    `json:"sessions_completed"`
	PerfectSessions   int    `json:"perfect_sessions"`
	TotalXP           int    `json:"total_xp"`
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendQuestEvent(ctx context.Context, data QuestEventData) error
	AppendRewardEvent(ctx context.Context, data RewardEventData) error

	// QuestEvents returns quest progress recorded on the given day.
	QuestEvents(ctx context.Context, day string) ([]QuestEventData, error)

	// RewardEvents returns all rewards of a kind, oldest first. An empty
	// kind returns every reward.
	RewardEvents(ctx context.Context, kind string) ([]RewardEventRecord, error)

	// RecentSessions returns completed runs, newest first.
	RecentSessions(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)
}

// LLMEventRepo records and inspects LLM calls.
type LLMEventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
}

// StatsRepo loads and saves gamification stats.
type StatsRepo interface {
	LoadStats(ctx context.Context) (StatsData, error)
	SaveStats(ctx context.Context, stats StatsData) error
}

var (
	_ EventRepo    = (*Store)(nil)
	_ LLMEventRepo = (*Store)(nil)
	_ StatsRepo    = (*Store)(nil)
)
