// Package summary congratulates the learner after a lesson and offers the
// lesson's test.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/router"
	"github.com/abhisek/cifra/internal/screen"
	"github.com/abhisek/cifra/internal/screens/testrun"
	"github.com/abhisek/cifra/internal/ui/components"
	"github.com/abhisek/cifra/internal/ui/layout"
	"github.com/abhisek/cifra/internal/ui/theme"
)

type SummaryScreen struct {
	env    *screen.Env
	lesson *content.Lesson
	test   *content.Test
	menu   components.Menu
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// ForLesson builds the summary of a completed lesson.
func ForLesson(env *screen.Env, l *content.Lesson) *SummaryScreen {
	s := &SummaryScreen{env: env, lesson: l}
	var items []components.MenuItem
	if t, ok := env.Session.TestFor(l.ID); t != nil && ok {
		s.test = t
		items = append(items, components.MenuItem{
			Label: "📝 Пройти тест «" + t.Title + "»",
			Action: func() tea.Cmd {
				return router.Replace(testrun.New(env, l.ID))
			},
		})
	}
	items = append(items, components.MenuItem{
		Label:  "← Вернуться к урокам",
		Action: func() tea.Cmd { return router.Pop },
	})
	s.menu = components.NewMenu(items)
	return s
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Урок завершён"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Выбрать"},
		{Key: "Esc", Description: "К урокам"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SummaryScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(components.Heading("🎉 Поздравляем!", "Вы прошли урок «"+s.lesson.Title+"»", cw))
	b.WriteString("\n\n")

	if len(s.lesson.Achievements) > 0 {
		b.WriteString(theme.Hint.Render("Ваши достижения") + "\n")
		for _, a := range s.lesson.Achievements {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render("🏆 "+a) + "\n")
		}
		b.WriteString("\n")
	}
	if !s.env.Session.Authenticated() {
		b.WriteString(theme.Hint.Width(cw).Render("Вы учитесь как гость: прогресс не сохранится после выхода. Войдите, чтобы сохранять успехи.") + "\n\n")
	}
	if s.test != nil {
		b.WriteString(theme.Body.Width(cw).Render(fmt.Sprintf("Проверьте себя: короткий тест, вопросов: %d.", len(s.test.Questions))) + "\n\n")
	}
	b.WriteString(s.menu.View())

	return components.Centered(components.Card(b.String(), cw), width, height)
}
