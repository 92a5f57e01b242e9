// Package screen is the contract between the router and the screens it
// stacks.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cifra/internal/ui/layout"
)

type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Disposer is implemented by screens that hold resources (a running lesson,
// narration, timers). The router calls Dispose when the screen leaves the
// stack.
type Disposer interface {
	Dispose()
}

// Resumer is implemented by screens that refresh when they become active
// again after the screen above them was popped.
type Resumer interface {
	Resume() tea.Cmd
}

// BackHandler is implemented by screens that consume Esc themselves, for
// example to leave a form field before leaving the screen.
type BackHandler interface {
	HandlesBack() bool
}
