// Package study implements the study session lifecycle: loading due
// questions, scoring answers on the review ladder, timing questions and
// sequencing session numbers.
package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/spacedrep"
	"github.com/abhisek/smartstudy/internal/timer"
)

// Options configures a Machine.
type Options struct {
	// TimerSeconds is the per-question countdown. 0 disables it.
	TimerSeconds int

	// Logger receives warnings for degraded loads and failed event delivery.
	Logger *slog.Logger

	// Now overrides the clock for tests.
	Now func() time.Time
}

// Machine drives a study session. It is not safe for concurrent use; the
// TUI event loop owns it.
type Machine struct {
	store  Persistence
	events Events
	logger *slog.Logger
	now    func() time.Time

	timerSeconds int
	countdown    timer.Countdown

	phase   Phase
	reason  CaughtUpReason
	session int
	sets    []deck.Set
	report  deck.LoadReport
	run     *Run
	summary *Summary

	advancedFrom int

	// Set by the countdown callback, consumed by Tick.
	expired    *AnswerRecord
	expiredErr error
}

// New creates a machine in PhaseLoading. events may be nil.
func New(store Persistence, events Events, opts Options) *Machine {
	m := &Machine{
		store:        store,
		events:       events,
		logger:       opts.Logger,
		now:          opts.Now,
		timerSeconds: max(opts.TimerSeconds, 0),
		phase:        PhaseLoading,
		session:      1,
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Start loads sets and the session number and selects the due questions.
// When nothing is due but active questions exist, the session number jumps
// once to the next session with due questions and is persisted.
//
// Store read failures degrade to an empty pool or session 1 and are only
// logged. The returned error reports a failure to persist the jump.
func (m *Machine) Start(ctx context.Context) error {
	m.countdown.Cancel()
	m.phase = PhaseLoading
	m.reason = CaughtUpNone
	m.run = nil
	m.summary = nil
	m.advancedFrom = 0

	sets, report, err := m.store.LoadSets(ctx)
	if err != nil {
		m.logger.Warn("load sets failed, starting with an empty pool", "error", err)
		sets, report = nil, deck.LoadReport{}
	}
	if report.Dropped > 0 {
		m.logger.Warn("dropped invalid questions on load", "count", report.Dropped)
	}
	current, err := m.store.LoadCurrentSession(ctx)
	if err != nil || current < 1 {
		if err != nil {
			m.logger.Warn("load session number failed, using session 1", "error", err)
		}
		current = 1
	}
	m.sets = sets
	m.report = report
	m.session = current

	pool := deck.ActivePool(sets)
	due := spacedrep.SelectDue(pool, current)

	var saveErr error
	if len(due) == 0 && len(pool) > 0 {
		if next, ok := spacedrep.NextFutureSession(pool, current); ok {
			m.advancedFrom = current
			m.session = next
			if err := m.store.SaveCurrentSession(ctx, next); err != nil {
				saveErr = fmt.Errorf("save session number: %w", err)
				m.logger.Warn("persist auto-advanced session failed", "session", next, "error", err)
			}
			due = spacedrep.SelectDue(pool, next)
		}
	}

	if len(due) == 0 {
		m.enterCaughtUp(len(pool))
		return saveErr
	}
	m.run = m.newRun(due)
	m.phase = PhaseReady
	return saveErr
}

// Begin moves a ready session into progress and starts the timer for the
// first question.
func (m *Machine) Begin(ctx context.Context) error {
	if m.phase != PhaseReady {
		return ErrNotReady
	}
	m.phase = PhaseInProgress
	m.startTimer(ctx)
	return nil
}

// SubmitAnswer scores the current question. selected is the chosen option
// index; timedOut marks an answer recorded by the countdown.
//
// It returns (nil, nil) when there is no question to answer or the current
// one is already answered. The returned record is valid even when the
// error reports a failure to persist the updated schedule.
func (m *Machine) SubmitAnswer(ctx context.Context, selected *int, timedOut bool) (*AnswerRecord, error) {
	if m.phase != PhaseInProgress || m.run == nil || m.run.Answered {
		return nil, nil
	}
	q := m.run.Current()
	if q == nil {
		return nil, nil
	}
	if selected == nil && !timedOut {
		return nil, ErrSelectionRequired
	}
	if selected != nil && (*selected < 0 || *selected >= deck.OptionCount) {
		return nil, ErrInvalidOption
	}

	correct := !timedOut && selected != nil && *selected == q.CorrectIndex

	base := *q
	si, qi, found := deck.Locate(m.sets, q.ID)
	if found {
		base = m.sets[si].Questions[qi]
	}
	updated := spacedrep.Apply(base, correct, m.session)
	if found {
		m.sets[si].Questions[qi] = updated
	}
	*q = updated

	rec := AnswerRecord{
		QuestionID:   q.ID,
		Prompt:       q.Prompt,
		Subject:      q.Subject,
		Explanation:  q.Explanation,
		Options:      q.Options,
		CorrectIndex: q.CorrectIndex,
		Correct:      correct,
		TimedOut:     timedOut,
		Transition:   spacedrep.Transition{Index: updated.IntervalIndex, NextDue: updated.NextDueSession},
	}
	if selected != nil {
		v := *selected
		rec.Selected = &v
	}

	m.run.Log = append(m.run.Log, rec)
	if correct {
		m.run.Score++
	}
	m.run.Answered = true
	m.phase = PhaseAnswered
	m.countdown.Cancel()

	var err error
	if saveErr := m.store.SaveSets(ctx, m.sets); saveErr != nil {
		err = fmt.Errorf("save sets: %w", saveErr)
		m.logger.Warn("persist answer failed", "question", q.ID, "error", saveErr)
	}

	if m.events != nil {
		if rr, ok := m.events.(AnswerRecorder); ok {
			if evErr := rr.AnswerRecorded(ctx, m.run.ID, rec); evErr != nil {
				m.logger.Warn("record answer event failed", "error", evErr)
			}
		}
		if correct {
			if evErr := m.events.AnsweredCorrectly(ctx, q.Subject); evErr != nil {
				m.logger.Warn("answered-correctly event failed", "error", evErr)
			}
		}
	}
	return &rec, err
}

// Next moves past an answered question. After the last question the run
// completes and a SessionCompleted event is emitted.
func (m *Machine) Next(ctx context.Context) error {
	if m.phase != PhaseAnswered || m.run == nil {
		return ErrNotReady
	}
	m.countdown.Cancel()
	m.run.Cursor++
	m.run.Answered = false

	if !m.run.Finished() {
		m.phase = PhaseInProgress
		m.startTimer(ctx)
		return nil
	}

	m.phase = PhaseCompleted
	m.summary = BuildSummary(m.run, m.now())
	if m.events != nil {
		result := SessionResult{
			RunID:    m.run.ID,
			Session:  m.session,
			Score:    m.run.Score,
			Total:    m.run.Total(),
			Subjects: correctSubjects(m.run.Log),
			Duration: m.summary.Duration,
		}
		if err := m.events.SessionCompleted(ctx, result); err != nil {
			m.logger.Warn("session-completed event failed", "error", err)
		}
	}
	return nil
}

// Restart reselects the due questions for the same session number and
// begins a fresh run. The session number never changes.
func (m *Machine) Restart(ctx context.Context) error {
	if m.phase == PhaseLoading {
		return ErrNotReady
	}
	m.countdown.Cancel()
	m.summary = nil
	m.advancedFrom = 0

	pool := deck.ActivePool(m.sets)
	due := spacedrep.SelectDue(pool, m.session)
	if len(due) == 0 {
		m.run = nil
		m.enterCaughtUp(len(pool))
		return nil
	}
	m.run = m.newRun(due)
	m.reason = CaughtUpNone
	m.phase = PhaseInProgress
	m.startTimer(ctx)
	return nil
}

// StartNext increments and persists the session number, then runs a fresh
// Start cycle.
func (m *Machine) StartNext(ctx context.Context) error {
	if m.phase == PhaseLoading {
		return ErrNotReady
	}
	m.countdown.Cancel()
	next := m.session + 1
	if err := m.store.SaveCurrentSession(ctx, next); err != nil {
		return fmt.Errorf("save session number: %w", err)
	}
	return m.Start(ctx)
}

// SetTimer changes the per-question countdown. 0 disables it. The timer is
// locked once the first question has been answered.
func (m *Machine) SetTimer(ctx context.Context, seconds int) error {
	if m.run != nil && (m.run.Cursor > 0 || m.phase == PhaseAnswered) {
		return ErrTimerLocked
	}
	m.timerSeconds = max(seconds, 0)
	if m.phase == PhaseInProgress {
		m.startTimer(ctx)
	}
	return nil
}

// Tick forwards a one-second tick for the given timer generation. When
// the countdown expires it returns the timeout answer record.
func (m *Machine) Tick(gen uint64) (*AnswerRecord, error) {
	m.expired, m.expiredErr = nil, nil
	if !m.countdown.Tick(gen) {
		return nil, nil
	}
	rec, err := m.expired, m.expiredErr
	m.expired, m.expiredErr = nil, nil
	return rec, err
}

func (m *Machine) startTimer(ctx context.Context) {
	if m.timerSeconds <= 0 {
		m.countdown.Cancel()
		return
	}
	m.countdown.Start(m.timerSeconds, func() {
		m.expired, m.expiredErr = m.SubmitAnswer(ctx, nil, true)
	})
}

func (m *Machine) newRun(due []deck.Question) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Session:   m.session,
		Questions: due,
		StartedAt: m.now(),
	}
}

func (m *Machine) enterCaughtUp(poolSize int) {
	m.phase = PhaseCaughtUp
	if poolSize == 0 {
		m.reason = CaughtUpNothingScheduled
	} else {
		m.reason = CaughtUpForNow
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Reason returns why the machine is caught up, or CaughtUpNone.
func (m *Machine) Reason() CaughtUpReason { return m.reason }

// Session returns the current session number.
func (m *Machine) Session() int { return m.session }

// AutoAdvancedFrom returns the session number Start jumped from, if it jumped.
func (m *Machine) AutoAdvancedFrom() (int, bool) {
	return m.advancedFrom, m.advancedFrom > 0
}

// Run returns the active run, or nil.
func (m *Machine) Run() *Run { return m.run }

// Current returns the question at the cursor, or nil.
func (m *Machine) Current() *deck.Question { return m.run.Current() }

// LastAnswer returns the most recent answer in the run, or nil.
func (m *Machine) LastAnswer() *AnswerRecord {
	if m.run == nil || len(m.run.Log) == 0 {
		return nil
	}
	return &m.run.Log[len(m.run.Log)-1]
}

// Summary returns the completed run summary, or nil before completion.
func (m *Machine) Summary() *Summary { return m.summary }

// LoadReport returns the drop report from the last Start.
func (m *Machine) LoadReport() deck.LoadReport { return m.report }

// Sets returns the in-memory sets including updated schedules.
func (m *Machine) Sets() []deck.Set { return m.sets }

// TimerSeconds returns the configured per-question countdown.
func (m *Machine) TimerSeconds() int { return m.timerSeconds }

// TimerLocked reports whether SetTimer would be rejected.
func (m *Machine) TimerLocked() bool {
	return m.run != nil && (m.run.Cursor > 0 || m.phase == PhaseAnswered)
}

// TimeRemaining returns the seconds left on the question countdown.
func (m *Machine) TimeRemaining() int { return m.countdown.Remaining() }

// TimerActive reports whether a question countdown is running.
func (m *Machine) TimerActive() bool { return m.countdown.Active() }

// TimerGeneration returns the generation ticks must carry.
func (m *Machine) TimerGeneration() uint64 { return m.countdown.Generation() }
