package study

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/smartstudy/internal/deck"
)

// memStore is an in-memory Persistence.
type memStore struct {
	sets      []deck.Set
	session   int
	loadErr   error
	saveErr   error
	saves     int
	sessSaves []int
}

func (s *memStore) LoadSets(ctx context.Context) ([]deck.Set, deck.LoadReport, error) {
	if s.loadErr != nil {
		return nil, deck.LoadReport{}, s.loadErr
	}
	return deck.Clone(s.sets), deck.LoadReport{}, nil
}

func (s *memStore) SaveSets(ctx context.Context, sets []deck.Set) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sets = deck.Clone(sets)
	return nil
}

func (s *memStore) LoadCurrentSession(ctx context.Context) (int, error) {
	if s.loadErr != nil {
		return 0, s.loadErr
	}
	return s.session, nil
}

func (s *memStore) SaveCurrentSession(ctx context.Context, session int) error {
	s.sessSaves = append(s.sessSaves, session)
	s.session = session
	return nil
}

// recordingEvents captures emitted events.
type recordingEvents struct {
	completed []SessionResult
	correct   []string
	answers   []AnswerRecord
}

func (e *recordingEvents) SessionCompleted(ctx context.Context, r SessionResult) error {
	e.completed = append(e.completed, r)
	return nil
}

func (e *recordingEvents) AnsweredCorrectly(ctx context.Context, subject string) error {
	e.correct = append(e.correct, subject)
	return nil
}

func (e *recordingEvents) AnswerRecorded(ctx context.Context, runID string, rec AnswerRecord) error {
	e.answers = append(e.answers, rec)
	return nil
}

func question(id string, due int) deck.Question {
	q := deck.NewQuestion(id, "Prompt "+id, [4]string{"w", "x", "y", "z"}, 2)
	q.Subject = "subj-" + id
	q.NextDueSession = due
	return q
}

func newStore(session int, qs ...deck.Question) *memStore {
	return &memStore{
		session: session,
		sets:    []deck.Set{{ID: "s1", Name: "Set", Active: true, Questions: qs}},
	}
}

func fixedNow() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }

func newMachine(st *memStore, ev Events, timer int) *Machine {
	return New(st, ev, Options{TimerSeconds: timer, Now: fixedNow})
}

func choose(i int) *int { return &i }

func TestStart_SelectsDueInOrder(t *testing.T) {
	// Pool [1, 1, 3] at session 1: first two due, ordered by id.
	st := newStore(1, question("c", 3), question("b", 1), question("a", 1))
	m := newMachine(st, nil, 0)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if m.Phase() != PhaseReady {
		t.Fatalf("Phase = %v, want ready", m.Phase())
	}
	run := m.Run()
	if run.Total() != 2 || run.Questions[0].ID != "a" || run.Questions[1].ID != "b" {
		t.Errorf("due = %v", run.Questions)
	}
	if _, jumped := m.AutoAdvancedFrom(); jumped {
		t.Error("auto-advance happened with due questions")
	}
}

func TestStart_AutoAdvance(t *testing.T) {
	st := newStore(1, question("a", 5), question("b", 5))
	m := newMachine(st, nil, 0)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if m.Session() != 5 {
		t.Errorf("Session = %d, want 5", m.Session())
	}
	if st.session != 5 {
		t.Errorf("persisted session = %d, want 5", st.session)
	}
	if m.Run().Total() != 2 {
		t.Errorf("due after jump = %d, want 2", m.Run().Total())
	}
	if from, ok := m.AutoAdvancedFrom(); !ok || from != 1 {
		t.Errorf("AutoAdvancedFrom = (%d, %v), want (1, true)", from, ok)
	}
}

func TestStart_NothingScheduled(t *testing.T) {
	st := newStore(1)
	st.sets = append(st.sets, deck.Set{ID: "off", Active: false, Questions: []deck.Question{question("x", 1)}})
	m := newMachine(st, nil, 0)
	m.Start(context.Background())

	if m.Phase() != PhaseCaughtUp || m.Reason() != CaughtUpNothingScheduled {
		t.Errorf("phase/reason = %v/%v, want caught_up/nothing scheduled", m.Phase(), m.Reason())
	}
	if len(st.sessSaves) != 0 {
		t.Errorf("session persisted with an empty pool: %v", st.sessSaves)
	}
}

func TestStart_StoreFailureDegrades(t *testing.T) {
	st := newStore(4, question("a", 1))
	st.loadErr = errors.New("disk gone")
	m := newMachine(st, nil, 0)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if m.Session() != 1 || m.Phase() != PhaseCaughtUp || m.Reason() != CaughtUpNothingScheduled {
		t.Errorf("session %d phase %v reason %v", m.Session(), m.Phase(), m.Reason())
	}
}

func TestSubmitAnswer_Correct(t *testing.T) {
	st := newStore(5, question("a", 1))
	ev := &recordingEvents{}
	m := newMachine(st, ev, 0)
	ctx := context.Background()
	m.Start(ctx)
	m.Begin(ctx)

	rec, err := m.SubmitAnswer(ctx, choose(2), false)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !rec.Correct || rec.Transition.Index != 1 || rec.Transition.NextDue != 7 {
		t.Errorf("record = %+v", rec)
	}
	saved := st.sets[0].Questions[0]
	if saved.IntervalIndex != 1 || saved.NextDueSession != 7 || saved.TimesCorrect != 1 {
		t.Errorf("persisted = %+v", saved)
	}
	if saved.LastReviewedSession == nil || *saved.LastReviewedSession != 5 {
		t.Error("LastReviewedSession not set to current session")
	}
	if m.Run().Score != 1 || m.Phase() != PhaseAnswered {
		t.Errorf("score %d phase %v", m.Run().Score, m.Phase())
	}
	if len(ev.correct) != 1 || ev.correct[0] != "subj-a" {
		t.Errorf("correct events = %v", ev.correct)
	}
	if len(ev.answers) != 1 {
		t.Errorf("answer events = %d, want 1", len(ev.answers))
	}
}

func TestSubmitAnswer_Incorrect(t *testing.T) {
	q := question("a", 10)
	q.IntervalIndex = 3
	st := newStore(10, q)
	ev := &recordingEvents{}
	m := newMachine(st, ev, 0)
	ctx := context.Background()
	m.Start(ctx)
	m.Begin(ctx)

	rec, _ := m.SubmitAnswer(ctx, choose(0), false)
	if rec.Correct || rec.Transition.Index != 0 || rec.Transition.NextDue != 11 {
		t.Errorf("record = %+v", rec)
	}
	if st.sets[0].Questions[0].TimesIncorrect != 1 {
		t.Error("TimesIncorrect not incremented")
	}
	if len(ev.correct) != 0 {
		t.Error("correct event emitted for wrong answer")
	}
}

func TestSubmitAnswer_SelectionRequired(t *testing.T) {
	st := newStore(1, question("a", 1))
	m := newMachine(st, nil, 0)
	ctx := context.Background()
	m.Start(ctx)
	m.Begin(ctx)

	if _, err := m.SubmitAnswer(ctx, nil, false); !errors.Is(err, ErrSelectionRequired) {
		t.Errorf("error = %v, want ErrSelectionRequired", err)
	}
	if _, err := m.SubmitAnswer(ctx, choose(4), false); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("error = %v, want ErrInvalidOption", err)
	}
	if m.Phase() != PhaseInProgress || st.saves != 0 || len(m.Run().Log) != 0 {
		t.Error("rejected submission mutated state")
	}
}

func TestSubmitAnswer_Idempotent(t *testing.T) {
	st := newStore(1, question("a", 1))
	m := newMachine(st, nil, 0)
	ctx := context.Background()
	m.Start(ctx)
	m.Begin(ctx)

	m.SubmitAnswer(ctx, choose(2), false)
	rec, err := m.SubmitAnswer(ctx, choose(2), false)
	if rec != nil || err != nil {
		t.Errorf("second submit = (%v, %v), want (nil, nil)", rec, err)
	}
	if st.sets[0].Questions[0].TimesCorrect != 1 || st.saves != 1 {
		t.Error("second submit was scored")
	}
}

func TestSubmitAnswer_IgnoredBeforeBegin(t *testing.T) {
	st := newStore(1, question("a", 1))
	m := newMachine(st, nil, 0)
	m.Start(context.Background())
	rec, err := m.SubmitAnswer(context.Background(), choose(2), false)
	if rec != nil || err != nil {
		t.Errorf("submit before begin = (%v, %v), want (nil, nil)", rec, err)
	}
}

func TestSubmitAnswer_PersistFailureKeepsAnswer(t *testing.T) {
	st := newStore(1, question("a", 1))
	st.saveErr = errors.New("read-only")
	m := newMachine(st, nil, 0)
	ctx := context.Background()
	m.Start(ctx)
	m.Begin(ctx)

	rec, err := m.SubmitAnswer(ctx, choose(2), false)
	if err == nil || rec == nil {
		t.Fatalf("SubmitAnswer = (%v, %v), want record and error", rec, err)
	}
	if m.Phase() != PhaseAnswered || len(m.Run().Log) != 1 {
		t.Error("answer not recorded after persistence failure")
	}
	if m.Sets()[0].Questions[0].TimesCorrect != 1 {
		t.Error("in-memory schedule not updated")
	}
}

func TestTimerExpiry_RecordsTimeout(t *testing.T) {
	st := newStore(1, question("a", 1), question("b", 1))
	m := newMachine(st, nil, 15)
	ctx := context.Background()
	m.Start(ctx)
	m.Begin(ctx)

	gen := m.TimerGeneration()
	if !m.TimerActive() || m.TimeRemaining() != 15 {
		t.Fatalf("timer not started: active %v remaining %d", m.TimerActive(), m.TimeRemaining())
	}
	var rec *AnswerRecord
	for i := 0; i < 15; i++ {
		r, err := m.Tick(gen)
		if err != nil {
			t.Fatalf("Tick: %v", err)
		}
		if r != nil {
			rec = r
		}
	}
	if rec == nil {
		t.Fatal("no timeout record")
	}
	if !rec.TimedOut || rec.Correct || rec.Selected != nil {
		t.Errorf("timeout record = %+v", rec)
	}
	if st.sets[0].Questions[0].TimesIncorrect != 1 {
		t.Error("timeout not counted as incorrect")
	}
	if m.Phase() != PhaseAnswered {
		t.Errorf("Phase = %v, want answered", m.Phase())
	}

	// A late manual answer is ignored.
	if r, err := m.SubmitAnswer(ctx, choose(2), false); r != nil || err != nil {
		t.Error("manual answer after timeout was scored")
	}
}

func TestTimer_StaleTickAfterManualAnswer(t *testing.T) {
	st := newStore(1, question("a", 1), question("b", 1))
	m := newMachine(st, nil, 1)
	ctx := context.Background()
	m.Start(ctx)
	m.Begin(ctx)
	gen := m.TimerGeneration()

	m.SubmitAnswer(ctx, choose(2), false)
	if r, _ := m.Tick(gen); r != nil {
		t.Error("stale tick produced a record")
	}
	if len(m.Run().Log) != 1 {
		t.Errorf("log = %d entries, want 1", len(m.Run().Log))
	}
}

func TestNext_CompletesAndEmits(t *testing.T) {
	st := newStore(3, question("a", 1), question("b", 1))
	ev := &recordingEvents{}
	m := newMachine(st, ev, 0)
	ctx := context.Background()
	m.Start(ctx)
	m.Begin(ctx)

	if err := m.Next(ctx); !errors.Is(err, ErrNotReady) {
		t.Errorf("Next before answer = %v, want ErrNotReady", err)
	}
	m.SubmitAnswer(ctx, choose(2), false)
	m.Next(ctx)
	if m.Phase() != PhaseInProgress || m.Run().Cursor != 1 {
		t.Fatalf("after first next: phase %v cursor %d", m.Phase(), m.Run().Cursor)
	}
	m.SubmitAnswer(ctx, choose(1), false)
	m.Next(ctx)

	if m.Phase() != PhaseCompleted {
		t.Fatalf("Phase = %v, want completed", m.Phase())
	}
	sum := m.Summary()
	if sum.Score != 1 || sum.Total != 2 || sum.Accuracy != 0.5 || sum.Perfect() {
		t.Errorf("summary = %+v", sum)
	}
	if len(ev.completed) != 1 {
		t.Fatalf("completed events = %d, want 1", len(ev.completed))
	}
	res := ev.completed[0]
	if res.Score != 1 || res.Total != 2 || res.Session != 3 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Subjects) != 1 || res.Subjects[0] != "subj-a" {
		t.Errorf("subjects = %v", res.Subjects)
	}
}

func TestRestart_SameSession(t *testing.T) {
	st := newStore(2, question("a", 1), question("b", 2))
	m := newMachine(st, nil, 0)
	ctx := context.Background()
	m.Start(ctx)
	m.Begin(ctx)
	m.SubmitAnswer(ctx, choose(2), false) // a moves to session 4
	m.Next(ctx)
	m.SubmitAnswer(ctx, choose(0), false) // b moves to session 3
	m.Next(ctx)

	if err := m.Restart(ctx); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if m.Session() != 2 {
		t.Errorf("Session = %d, want 2", m.Session())
	}
	if m.Phase() != PhaseCaughtUp || m.Reason() != CaughtUpForNow {
		t.Errorf("phase/reason = %v/%v, want caught_up/for now", m.Phase(), m.Reason())
	}
}

func TestRestart_ReselectsDue(t *testing.T) {
	st := newStore(1, question("a", 1), question("b", 1))
	m := newMachine(st, nil, 0)
	ctx := context.Background()
	m.Start(ctx)
	m.Begin(ctx)
	m.SubmitAnswer(ctx, choose(2), false)

	// b is still due in session 1.
	m.Restart(ctx)
	if m.Phase() != PhaseInProgress {
		t.Fatalf("Phase = %v, want in progress", m.Phase())
	}
	if m.Run().Total() != 1 || m.Current().ID != "b" {
		t.Errorf("restarted run = %v", m.Run().Questions)
	}
}

func TestStartNext(t *testing.T) {
	st := newStore(1, question("a", 1), question("b", 2), question("c", 9))
	m := newMachine(st, nil, 0)
	ctx := context.Background()
	m.Start(ctx)

	if err := m.StartNext(ctx); err != nil {
		t.Fatalf("StartNext: %v", err)
	}
	if m.Session() != 2 || st.session != 2 {
		t.Errorf("session = %d (persisted %d), want 2", m.Session(), st.session)
	}
	if m.Run().Total() != 2 {
		t.Errorf("due = %d, want 2", m.Run().Total())
	}

	// Session 3: a and b still due, no jump needed.
	m.StartNext(ctx)
	if m.Session() != 3 {
		t.Errorf("Session = %d, want 3", m.Session())
	}
}

func TestSetTimer_Lock(t *testing.T) {
	st := newStore(1, question("a", 1), question("b", 1))
	m := newMachine(st, nil, 0)
	ctx := context.Background()
	m.Start(ctx)

	if err := m.SetTimer(ctx, 30); err != nil {
		t.Fatalf("SetTimer before begin: %v", err)
	}
	m.Begin(ctx)
	if !m.TimerActive() || m.TimeRemaining() != 30 {
		t.Error("timer not started with new length")
	}
	if err := m.SetTimer(ctx, 0); err != nil {
		t.Fatalf("SetTimer on first question: %v", err)
	}
	if m.TimerActive() {
		t.Error("timer still active after disabling")
	}

	m.SubmitAnswer(ctx, choose(2), false)
	if err := m.SetTimer(ctx, 45); !errors.Is(err, ErrTimerLocked) {
		t.Errorf("SetTimer while answered = %v, want ErrTimerLocked", err)
	}
	m.Next(ctx)
	if err := m.SetTimer(ctx, 45); !errors.Is(err, ErrTimerLocked) {
		t.Errorf("SetTimer on second question = %v, want ErrTimerLocked", err)
	}
}

func TestBegin_RequiresReady(t *testing.T) {
	m := newMachine(newStore(1), nil, 0)
	if err := m.Begin(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("Begin in loading = %v, want ErrNotReady", err)
	}
}
