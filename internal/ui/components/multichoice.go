package components

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/ui/theme"
)

// MultiChoice shows one question's options. Single questions keep at most
// one option chosen; multiple ones toggle each option with Space or Enter.
type MultiChoice struct {
	Question string
	Options  []string
	Multiple bool
	Cursor   int
	Chosen   []int

	// Reveal colours the options once answers are known.
	Reveal  bool
	Correct []int
}

func NewMultiChoice(question string, options []string, multiple bool) MultiChoice {
	return MultiChoice{Question: question, Options: options, Multiple: multiple}
}

// ChoiceMsg reports that the learner picked option Index.
type ChoiceMsg struct {
	Index int
}

func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Reveal {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter", "space":
		idx := m.Cursor
		m.toggle(idx)
		return m, func() tea.Msg { return ChoiceMsg{Index: idx} }
	default:
		if n := len(kmsg.Text); n == 1 && kmsg.Text[0] >= '1' && kmsg.Text[0] <= '9' {
			idx := int(kmsg.Text[0] - '1')
			if idx < len(m.Options) {
				m.Cursor = idx
				m.toggle(idx)
				return m, func() tea.Msg { return ChoiceMsg{Index: idx} }
			}
		}
	}
	return m, nil
}

func (m *MultiChoice) toggle(idx int) {
	if !m.Multiple {
		m.Chosen = []int{idx}
		return
	}
	if i := slices.Index(m.Chosen, idx); i >= 0 {
		m.Chosen = slices.Delete(m.Chosen, i, i+1)
		return
	}
	m.Chosen = append(m.Chosen, idx)
}

func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	if m.Multiple {
		b.WriteString("\n" + theme.Hint.Render("Можно выбрать несколько вариантов"))
	}
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		chosen := slices.Contains(m.Chosen, i)
		mark := "( )"
		if m.Multiple {
			mark = "[ ]"
		}
		if chosen {
			mark = "(•)"
			if m.Multiple {
				mark = "[x]"
			}
		}
		prefix := "  "
		if i == m.Cursor && !m.Reveal {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d. %s %s", prefix, i+1, mark, opt)

		style := theme.Unselected
		switch {
		case m.Reveal && slices.Contains(m.Correct, i):
			style = theme.Correct
		case m.Reveal && chosen:
			style = theme.Incorrect
		case m.Reveal:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}
