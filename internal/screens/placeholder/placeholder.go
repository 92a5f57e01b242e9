// Package placeholder is the "nothing here" screen shown for a lesson or
// test that does not exist.
package placeholder

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/router"
	"github.com/abhisek/cifra/internal/screen"
	"github.com/abhisek/cifra/internal/ui/theme"
)

const defaultMessage = "Здесь пока ничего нет."

type PlaceholderScreen struct {
	title   string
	message string
}

var _ screen.Screen = (*PlaceholderScreen)(nil)

// New creates the screen. An empty message uses the default text.
func New(title, message string) *PlaceholderScreen {
	if message == "" {
		message = defaultMessage
	}
	return &PlaceholderScreen{title: title, message: message}
}

func (p *PlaceholderScreen) Init() tea.Cmd {
	return nil
}

func (p *PlaceholderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok && k.String() == "enter" {
		return p, router.Pop
	}
	return p, nil
}

func (p *PlaceholderScreen) View(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render("╌╌ " + p.message + " ╌╌\n\n" + theme.Hint.Render("Enter или Esc — вернуться к урокам"))
}

func (p *PlaceholderScreen) Title() string {
	return p.title
}
