package lesson

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/sim"
	"github.com/abhisek/cifra/internal/ui/components"
	"github.com/abhisek/cifra/internal/ui/layout"
	"github.com/abhisek/cifra/internal/ui/theme"
)

const (
	sidebarWidth = 30
	phoneWidth   = 46
)

const staticHelp = "Нужная кнопка подсвечена жёлтым. Стрелки ↑↓ выбирают кнопку, Enter нажимает её. " +
	"Tab переключает между кнопками, полем ввода и списком шагов."

func (s *LessonScreen) View(width, height int) string {
	if s.eng == nil {
		return ""
	}
	if layout.IsCompactWidth(width) {
		return s.renderMain(width)
	}
	mainWidth := width - sidebarWidth - 2
	return lipgloss.JoinHorizontal(lipgloss.Top,
		s.renderSteps(),
		"  ",
		lipgloss.NewStyle().Width(mainWidth).Render(s.renderMain(mainWidth)),
	)
}

func (s *LessonScreen) renderMain(width int) string {
	step := s.eng.Step()
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(components.NewProgressBar("Шаг", s.eng.Cursor()+1, s.eng.Len(), cw).View())
	b.WriteString("\n\n")
	b.WriteString(theme.Selected.Render(step.Title) + "\n")
	if step.Description != "" {
		b.WriteString(theme.Body.Width(cw).Render(step.Description) + "\n")
	}
	b.WriteString(theme.HelpBox.Width(cw).Render("👉 " + step.Instruction))
	b.WriteString("\n")

	switch {
	case s.eng.Reviewing():
		if s.eng.Simulator() != nil {
			b.WriteString("\n" + s.renderPhone(*s.simScreen(), step))
		}
		b.WriteString("\n" + theme.Hint.Render("Вы смотрите пройденный шаг. Enter вернёт к текущему.") + "\n")
		b.WriteString(components.NewButton("К текущему шагу", s.focus == focusControls, nil).View())
	case step.Action == content.ActionComplete:
		b.WriteString("\n" + theme.Correct.Render("🎉 Урок пройден!") + "\n\n")
		b.WriteString(components.NewButton("Завершить урок", true, nil).View())
	case s.eng.Simulator() != nil:
		b.WriteString("\n" + s.renderPhone(*s.simScreen(), step))
		if s.eng.AwaitsContinue() {
			b.WriteString("\n" + components.NewButton("Продолжить", s.focus == focusControls, nil).View())
		}
	default:
		b.WriteString("\n" + components.NewButton("Продолжить", true, nil).View())
	}

	if s.eng.Locked() {
		b.WriteString("\n" + theme.Hint.Render("⏳ Подождите..."))
	}
	if s.nudge != "" {
		b.WriteString("\n" + theme.ErrorText.Render(s.nudge))
	}
	if s.helpOpen {
		b.WriteString("\n" + s.renderHelp(cw))
	}
	return b.String()
}

func (s *LessonScreen) renderPhone(scr sim.Screen, step content.Step) string {
	inner := phoneWidth - 4
	var rows []string

	head := theme.Selected.Render(scr.Title)
	if scr.Status != "" {
		head += "  " + theme.Hint.Render(scr.Status)
	}
	rows = append(rows, head, lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", inner)))

	for _, l := range scr.Lines {
		style := theme.Body
		if l.Accent {
			style = theme.Correct
		}
		line := style.Render(l.Text)
		if l.Mine {
			line = lipgloss.PlaceHorizontal(inner, lipgloss.Right, line)
		}
		rows = append(rows, line)
	}

	if scr.Input != nil {
		field := s.input.View()
		if step.HighlightElement == scr.Input.ID {
			field = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(theme.Accent).Render(field)
		}
		rows = append(rows, "", field)
	}

	if len(scr.Controls) > 0 {
		rows = append(rows, "")
	}
	for i, c := range scr.Controls {
		rows = append(rows, s.renderControl(i, c, step))
	}
	return theme.Phone.Width(phoneWidth).Render(strings.Join(rows, "\n"))
}

func (s *LessonScreen) renderControl(i int, c sim.Control, step content.Step) string {
	prefix := "  "
	if s.focus == focusControls && i == s.control {
		prefix = "▸ "
	}
	label := prefix + c.Label
	switch {
	case c.Disabled:
		return theme.Disabled.Render(label)
	case c.ID == step.HighlightElement:
		return theme.Highlighted.Render(label)
	case s.focus == focusControls && i == s.control:
		return theme.Selected.Render(label)
	default:
		return theme.Unselected.Render(label)
	}
}

func (s *LessonScreen) renderSteps() string {
	var b strings.Builder
	b.WriteString(theme.Hint.Render("Шаги урока") + "\n\n")
	for i, st := range s.eng.Lesson().Steps {
		mark := "  "
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		switch {
		case s.eng.Passed(i):
			mark = "✓ "
			style = lipgloss.NewStyle().Foreground(theme.Success)
		case i == s.eng.Cursor():
			mark = "▶ "
			style = theme.Selected
		}
		if s.focus == focusSteps && i == s.stepSel {
			style = style.Underline(true)
		}
		title := fmt.Sprintf("%s%d. %s", mark, i+1, st.Title)
		b.WriteString(style.MaxWidth(sidebarWidth).Render(title) + "\n")
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Render(b.String())
}

func (s *LessonScreen) renderHelp(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Selected.Render("❓ Помощь") + "\n")
	b.WriteString(staticHelp)
	switch {
	case s.hintLoading:
		b.WriteString("\n\n" + theme.Hint.Render("Готовим объяснение попроще..."))
	case s.hintErr != "":
		b.WriteString("\n\n" + theme.ErrorText.Render(s.hintErr))
	case s.hint != nil:
		b.WriteString("\n\n" + s.hint.Explanation)
		for _, tip := range s.hint.Tips {
			b.WriteString("\n • " + tip)
		}
	}
	return theme.HelpBox.Width(cw).Render(b.String())
}
