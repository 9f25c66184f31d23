// Package exam implements timed exam mode: every active question in a
// shuffled order, scored without touching review schedules.
package exam

import (
	"errors"
	"math/rand/v2"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/timer"
)

// TimedOutText is shown in place of the chosen option when the countdown
// expired before an answer.
const TimedOutText = "No answer (timed out)"

// TimerChoices are the countdown lengths offered before an exam. 0 is off.
var TimerChoices = []int{15, 30, 45, 60, 0}

var (
	// ErrEmptyPool is returned when there are no active questions.
	ErrEmptyPool = errors.New("no active questions for an exam")

	// ErrSelectionRequired is returned when an answer is submitted without a choice.
	ErrSelectionRequired = errors.New("select an option before submitting")

	// ErrInvalidOption is returned for a selection outside the option range.
	ErrInvalidOption = errors.New("selected option out of range")

	// ErrNotStarted is returned when an operation needs a running exam.
	ErrNotStarted = errors.New("exam not in progress")
)

// Options configures an Exam.
type Options struct {
	// TimerSeconds is the per-question countdown. 0 disables it.
	TimerSeconds int

	// Rand drives the shuffle. Nil uses the global source.
	Rand *rand.Rand
}

// Item is one answered exam question.
type Item struct {
	QuestionID   string
	Prompt       string
	Options      [deck.OptionCount]string
	Selected     *int
	CorrectIndex int
	Correct      bool
	TimedOut     bool
}

// ChosenText returns the chosen option text or TimedOutText.
func (it Item) ChosenText() string {
	if it.Selected == nil {
		return TimedOutText
	}
	return it.Options[*it.Selected]
}

// CorrectText returns the correct option text.
func (it Item) CorrectText() string {
	return it.Options[it.CorrectIndex]
}

// Summary is the result of a finished exam.
type Summary struct {
	Score int
	Total int
	Items []Item
}

// Percent returns the score as a whole percentage.
func (s Summary) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Score * 100 / s.Total
}

// Exam is a single exam run. Like the study machine it is driven from one
// goroutine.
type Exam struct {
	pool []deck.Question
	opts Options

	questions []deck.Question
	cursor    int
	answered  bool
	started   bool
	finished  bool
	log       []Item

	countdown timer.Countdown
	expired   *Item
}

// New creates an exam over a copy of pool.
func New(pool []deck.Question, opts Options) *Exam {
	cp := make([]deck.Question, len(pool))
	copy(cp, pool)
	opts.TimerSeconds = max(opts.TimerSeconds, 0)
	return &Exam{pool: cp, opts: opts}
}

// SetTimer changes the countdown length. It only applies before Start.
func (e *Exam) SetTimer(seconds int) {
	if !e.started {
		e.opts.TimerSeconds = max(seconds, 0)
	}
}

// Start shuffles the pool and begins the first question.
func (e *Exam) Start() error {
	if len(e.pool) == 0 {
		return ErrEmptyPool
	}
	e.questions = make([]deck.Question, len(e.pool))
	copy(e.questions, e.pool)
	shuffle := rand.Shuffle
	if e.opts.Rand != nil {
		shuffle = e.opts.Rand.Shuffle
	}
	shuffle(len(e.questions), func(i, j int) {
		e.questions[i], e.questions[j] = e.questions[j], e.questions[i]
	})
	e.cursor = 0
	e.answered = false
	e.finished = false
	e.started = true
	e.log = nil
	e.startTimer()
	return nil
}

// Submit records an answer for the current question. Late or duplicate
// submissions return (nil, nil).
func (e *Exam) Submit(selected *int, timedOut bool) (*Item, error) {
	if !e.started || e.finished || e.answered || e.cursor >= len(e.questions) {
		return nil, nil
	}
	if selected == nil && !timedOut {
		return nil, ErrSelectionRequired
	}
	if selected != nil && (*selected < 0 || *selected >= deck.OptionCount) {
		return nil, ErrInvalidOption
	}
	q := e.questions[e.cursor]
	it := Item{
		QuestionID:   q.ID,
		Prompt:       q.Prompt,
		Options:      q.Options,
		CorrectIndex: q.CorrectIndex,
		TimedOut:     timedOut,
	}
	if selected != nil && !timedOut {
		v := *selected
		it.Selected = &v
		it.Correct = v == q.CorrectIndex
	}
	e.log = append(e.log, it)
	e.answered = true
	e.countdown.Cancel()
	return &e.log[len(e.log)-1], nil
}

// Next moves to the following question, finishing the exam after the last.
func (e *Exam) Next() error {
	if !e.started || e.finished || !e.answered {
		return ErrNotStarted
	}
	e.cursor++
	e.answered = false
	if e.cursor >= len(e.questions) {
		e.finished = true
		e.countdown.Cancel()
		return nil
	}
	e.startTimer()
	return nil
}

// Tick forwards a one-second tick. On expiry it returns the timed-out item.
func (e *Exam) Tick(gen uint64) *Item {
	e.expired = nil
	if !e.countdown.Tick(gen) {
		return nil
	}
	it := e.expired
	e.expired = nil
	return it
}

// Summary returns the score and per-question results so far.
func (e *Exam) Summary() Summary {
	s := Summary{Total: len(e.questions), Items: make([]Item, len(e.log))}
	copy(s.Items, e.log)
	for _, it := range e.log {
		if it.Correct {
			s.Score++
		}
	}
	return s
}

// RequestExit reports whether leaving now needs confirmation.
func (e *Exam) RequestExit() bool {
	return e.started && !e.finished
}

// ConfirmExit discards the run.
func (e *Exam) ConfirmExit() {
	e.countdown.Cancel()
	e.started = false
	e.finished = false
	e.answered = false
	e.questions = nil
	e.log = nil
	e.cursor = 0
}

func (e *Exam) startTimer() {
	if e.opts.TimerSeconds <= 0 {
		e.countdown.Cancel()
		return
	}
	e.countdown.Start(e.opts.TimerSeconds, func() {
		e.expired, _ = e.Submit(nil, true)
	})
}

// Current returns the question at the cursor, or nil.
func (e *Exam) Current() *deck.Question {
	if !e.started || e.cursor >= len(e.questions) {
		return nil
	}
	return &e.questions[e.cursor]
}

// Position returns the 1-based question number and the total.
func (e *Exam) Position() (int, int) { return e.cursor + 1, len(e.questions) }

// Started reports whether Start has run and the exam was not discarded.
func (e *Exam) Started() bool { return e.started }

// Answered reports whether the current question has been answered.
func (e *Exam) Answered() bool { return e.answered }

// Finished reports whether every question has been answered.
func (e *Exam) Finished() bool { return e.finished }

// LastItem returns the most recent answer, or nil.
func (e *Exam) LastItem() *Item {
	if len(e.log) == 0 {
		return nil
	}
	return &e.log[len(e.log)-1]
}

// TimerSeconds returns the configured countdown.
func (e *Exam) TimerSeconds() int { return e.opts.TimerSeconds }

// TimeRemaining returns the seconds left on the current question.
func (e *Exam) TimeRemaining() int { return e.countdown.Remaining() }

// TimerActive reports whether a countdown is running.
func (e *Exam) TimerActive() bool { return e.countdown.Active() }

// TimerGeneration returns the generation ticks must carry.
func (e *Exam) TimerGeneration() uint64 { return e.countdown.Generation() }
