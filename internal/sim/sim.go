// Package sim defines the contract shared by the simulated applications a
// lesson runs in. Each simulator owns its state, accepts the actions of its
// closed vocabulary and describes its current screen for the renderer.
package sim

import (
	"strings"
	"time"

	"github.com/abhisek/cifra/internal/content"
)

// Arg is the payload an action carries: a numeric record id (chat, product,
// doctor, ...) or a string key (login method, delivery method, ...).
type Arg struct {
	ID  int
	Key string
}

// Field names a free-text input a simulator exposes.
type Field string

const (
	FieldMessage      Field = "message"
	FieldSearch       Field = "search"
	FieldWifiPassword Field = "wifi-password"
	FieldAppSearch    Field = "app-search"
	FieldLogin        Field = "login"
	FieldPassword     Field = "password"
	FieldPolicy       Field = "policy"
)

// MatchMode is how a text field is compared with a step's expected text.
type MatchMode int

const (
	// MatchContains accepts when the value contains the expected text,
	// ignoring case.
	MatchContains MatchMode = iota + 1
	// MatchExact accepts only the expected text itself.
	MatchExact
)

// Matches reports whether value satisfies expected under the mode.
func (m MatchMode) Matches(value, expected string) bool {
	switch m {
	case MatchContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(expected))
	case MatchExact:
		return value == expected
	default:
		return false
	}
}

// Stage is a mutation applied some time after an action was accepted.
type Stage struct {
	After time.Duration
	Apply func()
}

// Effect is what an accepted action leaves behind: deferred mutations and
// the delay before the lesson advances. All offsets are measured from the
// moment the action was accepted.
type Effect struct {
	Stages  []Stage
	Advance time.Duration
}

// After returns an effect that only advances after d.
func After(d time.Duration) Effect {
	return Effect{Advance: d}
}

// Control is an actionable element of a simulated screen.
type Control struct {
	ID       string
	Label    string
	Action   string
	Arg      Arg
	Disabled bool
}

// Input is the text field of a simulated screen.
type Input struct {
	ID          string
	Field       Field
	Label       string
	Placeholder string
	Value       string
	Secret      bool
}

// Line is one row of screen content.
type Line struct {
	Text string
	// Mine right-aligns the line (messages the learner sent).
	Mine bool
	// Accent renders the line in the highlight colour.
	Accent bool
}

// Screen describes what a simulator currently shows.
type Screen struct {
	Title    string
	Status   string
	Lines    []Line
	Input    *Input
	Controls []Control
}

// Text builds plain lines.
func Text(lines ...string) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{Text: l}
	}
	return out
}

// Simulator is one simulated application.
type Simulator interface {
	Type() content.SimulatorType

	// Handles reports whether action belongs to the simulator's vocabulary.
	Handles(action string) bool

	// Accept applies the immediate part of action. It returns false, and
	// changes nothing, when the action's precondition does not hold.
	Accept(action string, arg Arg, now time.Time) (Effect, bool)

	// Binding returns the text field a text-bound action reads and how the
	// field is matched.
	Binding(action string) (Field, MatchMode, bool)

	SetText(field Field, value string)
	Text(field Field) string

	// Continue applies the display change of an informational step.
	Continue(action string)

	Screen() Screen
}
