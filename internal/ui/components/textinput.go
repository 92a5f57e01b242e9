package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cifra/internal/ui/theme"
)

// TextInput is a labelled bubbles text input.
type TextInput struct {
	Label string
	Model textinput.Model
}

// NewTextInput creates an unfocused input. Secret inputs echo bullets.
func NewTextInput(label, placeholder string, secret bool, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	if limit > 0 {
		ti.CharLimit = limit
	}
	return TextInput{Label: label, Model: ti}
}

func (t *TextInput) Focus() tea.Cmd { return t.Model.Focus() }

func (t *TextInput) Blur() { t.Model.Blur() }

func (t TextInput) Focused() bool { return t.Model.Focused() }

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	label := theme.Hint.Render(t.Label)
	if t.Model.Focused() {
		label = theme.Selected.Render(t.Label)
	}
	return label + "\n" + t.Model.View()
}

func (t TextInput) Value() string { return t.Model.Value() }

func (t *TextInput) SetValue(v string) { t.Model.SetValue(v) }
