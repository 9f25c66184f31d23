package exam

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/abhisek/smartstudy/internal/deck"
)

func pool(n int) []deck.Question {
	out := make([]deck.Question, n)
	for i := range out {
		id := string(rune('a' + i))
		out[i] = deck.NewQuestion(id, "Prompt "+id, [4]string{"o1", "o2", "o3", "o4"}, 1)
		out[i].IntervalIndex = 2
		out[i].NextDueSession = 9
	}
	return out
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func one(i int) *int { return &i }

func TestStart_EmptyPool(t *testing.T) {
	e := New(nil, Options{})
	if err := e.Start(); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("Start = %v, want ErrEmptyPool", err)
	}
}

func TestStart_ShufflesCopy(t *testing.T) {
	p := pool(6)
	e := New(p, Options{Rand: seeded()})
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	seen := make(map[string]bool)
	for i := 0; i < 6; i++ {
		seen[e.questions[i].ID] = true
	}
	if len(seen) != 6 {
		t.Errorf("shuffle lost questions: %v", seen)
	}
	for i, q := range p {
		if q.ID != string(rune('a'+i)) {
			t.Errorf("input pool reordered at %d: %s", i, q.ID)
		}
	}
}

func TestStart_DeterministicWithSeed(t *testing.T) {
	a := New(pool(8), Options{Rand: seeded()})
	b := New(pool(8), Options{Rand: seeded()})
	a.Start()
	b.Start()
	for i := range a.questions {
		if a.questions[i].ID != b.questions[i].ID {
			t.Fatalf("order differs at %d with the same seed", i)
		}
	}
}

func TestExam_FullRun(t *testing.T) {
	p := pool(3)
	e := New(p, Options{Rand: seeded()})
	e.Start()

	if _, err := e.Submit(nil, false); !errors.Is(err, ErrSelectionRequired) {
		t.Errorf("Submit(nil) = %v, want ErrSelectionRequired", err)
	}
	if _, err := e.Submit(one(7), false); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Submit(7) = %v, want ErrInvalidOption", err)
	}

	it, err := e.Submit(one(1), false)
	if err != nil || !it.Correct {
		t.Fatalf("Submit correct = (%+v, %v)", it, err)
	}
	if again, _ := e.Submit(one(1), false); again != nil {
		t.Error("duplicate submit accepted")
	}
	e.Next()
	e.Submit(one(0), false)
	e.Next()
	e.Submit(one(1), false)
	if e.Finished() {
		t.Error("finished before Next on last question")
	}
	e.Next()
	if !e.Finished() {
		t.Fatal("not finished after last question")
	}
	if e.RequestExit() {
		t.Error("finished exam requires exit confirmation")
	}

	s := e.Summary()
	if s.Score != 2 || s.Total != 3 || len(s.Items) != 3 || s.Percent() != 66 {
		t.Errorf("summary = %+v", s)
	}
	if s.Items[1].ChosenText() != "o1" || s.Items[1].CorrectText() != "o2" {
		t.Errorf("item texts = %q / %q", s.Items[1].ChosenText(), s.Items[1].CorrectText())
	}

	// Scheduling fields are untouched.
	for _, q := range p {
		if q.IntervalIndex != 2 || q.NextDueSession != 9 || q.Attempts() != 0 {
			t.Errorf("pool question mutated: %+v", q)
		}
	}
}

func TestExam_TimeoutItem(t *testing.T) {
	e := New(pool(2), Options{TimerSeconds: 15, Rand: seeded()})
	e.Start()
	gen := e.TimerGeneration()

	var it *Item
	for i := 0; i < 15; i++ {
		if got := e.Tick(gen); got != nil {
			it = got
		}
	}
	if it == nil {
		t.Fatal("no timeout item")
	}
	if !it.TimedOut || it.Correct || it.Selected != nil {
		t.Errorf("timeout item = %+v", it)
	}
	if it.ChosenText() != TimedOutText {
		t.Errorf("ChosenText = %q, want %q", it.ChosenText(), TimedOutText)
	}
	if !e.Answered() {
		t.Error("question not marked answered after timeout")
	}
}

func TestExam_ExitConfirmation(t *testing.T) {
	e := New(pool(2), Options{})
	if e.RequestExit() {
		t.Error("exit confirmation required before start")
	}
	e.Start()
	if !e.RequestExit() {
		t.Error("exit confirmation not required mid-exam")
	}
	e.ConfirmExit()
	if e.Started() || e.Current() != nil {
		t.Error("ConfirmExit did not discard the run")
	}
}

func TestSetTimer_OnlyBeforeStart(t *testing.T) {
	e := New(pool(1), Options{TimerSeconds: 30})
	e.SetTimer(45)
	if e.TimerSeconds() != 45 {
		t.Errorf("TimerSeconds = %d, want 45", e.TimerSeconds())
	}
	e.Start()
	e.SetTimer(15)
	if e.TimerSeconds() != 45 {
		t.Errorf("TimerSeconds changed mid-exam: %d", e.TimerSeconds())
	}
}
