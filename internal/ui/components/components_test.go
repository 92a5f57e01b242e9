package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestMenuSkipsDisabled(t *testing.T) {
	pressed := ""
	m := NewMenu([]MenuItem{
		{Label: "off", Disabled: true},
		{Label: "a", Action: func() tea.Cmd { pressed = "a"; return nil }},
		{Label: "off", Disabled: true},
		{Label: "b", Action: func() tea.Cmd { pressed = "b"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want 1", m.Selected)
	}
	m, _ = m.Update(key("down"))
	if m.Selected != 3 {
		t.Fatalf("Selected after down = %d, want 3", m.Selected)
	}
	m, _ = m.Update(key("enter"))
	if pressed != "b" {
		t.Errorf("pressed = %q", pressed)
	}
}

func TestMultiChoiceSingle(t *testing.T) {
	m := NewMultiChoice("q", []string{"x", "y", "z"}, false)
	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("choosing should emit ChoiceMsg")
	}
	if msg, ok := cmd().(ChoiceMsg); !ok || msg.Index != 1 {
		t.Errorf("msg = %#v", cmd())
	}
	m, _ = m.Update(key("3"))
	if len(m.Chosen) != 1 || m.Chosen[0] != 2 {
		t.Errorf("Chosen = %v, want [2]", m.Chosen)
	}
}

func TestMultiChoiceMultipleToggles(t *testing.T) {
	m := NewMultiChoice("q", []string{"x", "y", "z"}, true)
	m, _ = m.Update(key("1"))
	m, _ = m.Update(key("3"))
	m, _ = m.Update(key("1"))
	if len(m.Chosen) != 1 || m.Chosen[0] != 2 {
		t.Errorf("Chosen = %v, want [2]", m.Chosen)
	}
	if !strings.Contains(m.View(), "[x] z") {
		t.Errorf("view does not mark z:\n%s", m.View())
	}
}

func TestMultiChoiceRevealIgnoresKeys(t *testing.T) {
	m := NewMultiChoice("q", []string{"x", "y"}, false)
	m.Reveal = true
	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("revealed question should not accept answers")
	}
}

func TestProgressBarRatio(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 0, 0},
		{2, 4, 0.5},
		{5, 4, 1},
	}
	for _, tt := range tests {
		if got := NewProgressBar("", tt.done, tt.total, 40).Ratio(); got != tt.want {
			t.Errorf("Ratio(%d/%d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
}
