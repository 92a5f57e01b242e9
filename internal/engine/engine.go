// Package engine drives a lesson: it walks the step list, matches learner
// actions against the current step, applies simulator mutations and
// advances the cursor.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/narration"
	"github.com/abhisek/cifra/internal/sim"
	"github.com/abhisek/cifra/internal/sim/messenger"
	"github.com/abhisek/cifra/internal/sim/phone"
	"github.com/abhisek/cifra/internal/sim/portal"
	"github.com/abhisek/cifra/internal/sim/shop"
)

// TimerID identifies a scheduled wake-up. Only the most recently issued id
// is live; firing any other id is a no-op.
type TimerID uint64

// Timer asks the caller to call Fire(ID) after Delay.
type Timer struct {
	ID    TimerID
	Delay time.Duration
}

// pending is deferred work: a simulator stage, or the advance off the step
// that accepted an action (from >= 0).
type pending struct {
	due   time.Time
	apply func()
	from  int
}

// Engine runs one lesson. It is not safe for concurrent use; the TUI calls
// it from its update loop only.
type Engine struct {
	lesson   *content.Lesson
	sim      sim.Simulator
	narrator narration.Narrator
	now      func() time.Time
	instant  bool

	// reached is the step the learner is working on; cursor is the step on
	// display and only differs from reached while reviewing a passed step.
	cursor  int
	reached int
	locked  bool
	done    bool
	stopped bool

	queue []pending
	seq   TimerID
	armed TimerID
}

// Option configures an Engine.
type Option func(*Engine)

// WithoutDelays applies deferred work immediately instead of issuing timers.
func WithoutDelays() Option {
	return func(e *Engine) { e.instant = true }
}

// WithClock sets the time source used for timestamps and timer deadlines.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithNarrator sets who reads step instructions aloud.
func WithNarrator(n narration.Narrator) Option {
	return func(e *Engine) { e.narrator = n }
}

// New creates an engine for the lesson with a freshly reset simulator.
func New(l *content.Lesson, opts ...Option) (*Engine, error) {
	if len(l.Steps) == 0 {
		return nil, fmt.Errorf("lesson %s has no steps", l.ID)
	}
	s, err := NewSimulator(l)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		lesson:   l,
		sim:      s,
		narrator: &narration.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewSimulator builds the simulator a lesson runs in. Lessons made only of
// intro and completion steps have none. Every step action must be
// informational, the completion tag or part of the simulator's vocabulary.
func NewSimulator(l *content.Lesson) (sim.Simulator, error) {
	s, err := newSimulator(l)
	if err != nil {
		return nil, err
	}
	for i, step := range l.Steps {
		if content.IsInfoAction(step.Action) || step.Action == content.ActionComplete {
			continue
		}
		if s == nil || !s.Handles(step.Action) {
			return nil, fmt.Errorf("lesson %s: step %d: unknown action %q", l.ID, i, step.Action)
		}
	}
	return s, nil
}

func newSimulator(l *content.Lesson) (sim.Simulator, error) {
	switch t := l.Simulator(); t {
	case content.SimMessenger:
		return messenger.New(l)
	case content.SimPhone:
		return phone.New(l)
	case content.SimShop:
		return shop.New(l)
	case content.SimPortal:
		return portal.New(l)
	case content.SimIntro, content.SimComplete:
		return nil, nil
	default:
		return nil, fmt.Errorf("lesson %s: unknown simulator %q", l.ID, t)
	}
}

// Start narrates the first step.
func (e *Engine) Start() {
	e.narrator.Speak(e.Step().Instruction)
}

func (e *Engine) Lesson() *content.Lesson { return e.lesson }

// Simulator is nil for lessons without a simulated application.
func (e *Engine) Simulator() sim.Simulator { return e.sim }

// Cursor is the step on display.
func (e *Engine) Cursor() int { return e.cursor }

// Reached is the step the learner has to pass next.
func (e *Engine) Reached() int { return e.reached }

// Reviewing reports whether a passed step is on display.
func (e *Engine) Reviewing() bool { return e.cursor < e.reached }

// Step is the step on display.
func (e *Engine) Step() content.Step { return e.lesson.Steps[e.cursor] }

func (e *Engine) Len() int { return len(e.lesson.Steps) }

// Passed reports whether the learner has passed step i.
func (e *Engine) Passed(i int) bool { return i < e.reached }

// Locked reports whether the current step has accepted its action and is
// waiting to advance.
func (e *Engine) Locked() bool { return e.locked }

// Done reports whether the learner finished the lesson.
func (e *Engine) Done() bool { return e.done }

// Pending reports whether deferred work is scheduled.
func (e *Engine) Pending() bool { return len(e.queue) > 0 }

// AwaitsContinue reports whether the current step is informational and is
// passed with Continue rather than a simulator action.
func (e *Engine) AwaitsContinue() bool {
	if e.locked || e.done || e.Reviewing() {
		return false
	}
	return content.IsInfoAction(e.Step().Action)
}

// Do offers a learner action to the current step. Actions that do not match
// the step, or whose precondition does not hold, are ignored.
func (e *Engine) Do(action string, arg sim.Arg) (*Timer, bool) {
	if !e.live() {
		return nil, false
	}
	step := e.Step()
	if action != step.Action {
		return nil, false
	}
	if step.ExpectedText != "" && e.sim != nil {
		if field, mode, ok := e.sim.Binding(action); ok && !mode.Matches(e.sim.Text(field), step.ExpectedText) {
			return nil, false
		}
	}
	return e.accept(action, arg)
}

// Type updates a text field and accepts the current step as soon as the
// field satisfies the step's expected text.
func (e *Engine) Type(field sim.Field, value string) (*Timer, bool) {
	if e.sim == nil || e.stopped || e.done || e.Reviewing() {
		return nil, false
	}
	e.sim.SetText(field, value)
	if e.locked {
		return nil, false
	}
	step := e.Step()
	if step.ExpectedText == "" {
		return nil, false
	}
	bound, mode, ok := e.sim.Binding(step.Action)
	if !ok || bound != field || !mode.Matches(value, step.ExpectedText) {
		return nil, false
	}
	return e.accept(step.Action, sim.Arg{})
}

// Continue passes an informational step.
func (e *Engine) Continue() bool {
	if !e.AwaitsContinue() || e.stopped {
		return false
	}
	if e.sim != nil {
		e.sim.Continue(e.Step().Action)
	}
	e.advance()
	return true
}

// Complete finishes the lesson. It only succeeds on the completion step.
func (e *Engine) Complete() bool {
	if e.stopped || e.done || e.Reviewing() || e.Step().Action != content.ActionComplete {
		return false
	}
	e.done = true
	e.clearQueue()
	return true
}

// JumpTo shows step k. Any step up to the reached one can be shown; while a
// passed step is on display actions are ignored and nothing is replayed.
// Pending work of the reached step keeps running. Jumping to Reached ends
// the review.
func (e *Engine) JumpTo(k int) bool {
	if e.stopped || e.done || k < 0 || k > e.reached {
		return false
	}
	e.cursor = k
	return true
}

// Stop cancels pending work and narration. The engine ignores everything
// afterwards.
func (e *Engine) Stop() {
	e.stopped = true
	e.clearQueue()
	e.narrator.Cancel()
}

// Fire runs the deferred work timer id was issued for and returns the next
// timer, if any. Stale ids are ignored.
func (e *Engine) Fire(id TimerID) *Timer {
	if e.stopped || id == 0 || id != e.armed || len(e.queue) == 0 {
		return nil
	}
	ev := e.queue[0]
	e.queue = e.queue[1:]
	e.run(ev)
	return e.arm()
}

func (e *Engine) live() bool {
	return !e.stopped && !e.done && !e.locked && !e.Reviewing()
}

func (e *Engine) accept(action string, arg sim.Arg) (*Timer, bool) {
	if e.sim == nil || !e.sim.Handles(action) {
		return nil, false
	}
	now := e.now()
	eff, ok := e.sim.Accept(action, arg, now)
	if !ok {
		return nil, false
	}
	e.locked = true

	events := make([]pending, 0, len(eff.Stages)+1)
	for _, st := range eff.Stages {
		events = append(events, pending{due: now.Add(st.After), apply: st.Apply, from: -1})
	}
	events = append(events, pending{due: now.Add(eff.Advance), from: e.reached})
	sort.SliceStable(events, func(i, j int) bool { return events[i].due.Before(events[j].due) })

	for _, ev := range events {
		if e.instant || !ev.due.After(now) {
			e.run(ev)
			continue
		}
		e.queue = append(e.queue, ev)
	}
	sort.SliceStable(e.queue, func(i, j int) bool { return e.queue[i].due.Before(e.queue[j].due) })
	return e.arm(), true
}

func (e *Engine) run(ev pending) {
	if ev.from < 0 {
		ev.apply()
		return
	}
	if ev.from == e.reached && e.locked {
		e.advance()
	}
}

// advance moves the reached step on. The display follows unless the learner
// is reviewing.
func (e *Engine) advance() {
	e.locked = false
	if e.reached >= len(e.lesson.Steps)-1 {
		return
	}
	following := !e.Reviewing()
	e.reached++
	if following {
		e.cursor = e.reached
		e.narrator.Speak(e.Step().Instruction)
	}
}

func (e *Engine) arm() *Timer {
	if len(e.queue) == 0 {
		e.armed = 0
		return nil
	}
	e.seq++
	e.armed = e.seq
	delay := e.queue[0].due.Sub(e.now())
	if delay < 0 {
		delay = 0
	}
	return &Timer{ID: e.armed, Delay: delay}
}

func (e *Engine) clearQueue() {
	e.queue = nil
	e.armed = 0
}
