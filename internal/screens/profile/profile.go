// Package profile shows the learner's dashboard: streak, counters and what
// they did recently.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/api"
	"github.com/abhisek/cifra/internal/router"
	"github.com/abhisek/cifra/internal/screen"
	"github.com/abhisek/cifra/internal/stats"
	"github.com/abhisek/cifra/internal/ui/components"
	"github.com/abhisek/cifra/internal/ui/layout"
	"github.com/abhisek/cifra/internal/ui/theme"
)

const loadTimeout = 15 * time.Second

type dashboardMsg struct {
	dash *api.Dashboard
	err  error
}

type ProfileScreen struct {
	env    *screen.Env
	dash   *api.Dashboard
	loaded bool
	errMsg string
}

var (
	_ screen.Screen          = (*ProfileScreen)(nil)
	_ screen.KeyHintProvider = (*ProfileScreen)(nil)
)

func New(env *screen.Env) *ProfileScreen {
	return &ProfileScreen{env: env}
}

func (s *ProfileScreen) Init() tea.Cmd {
	if !s.env.Session.Authenticated() || s.env.Dashboard == nil {
		s.loaded = true
		return nil
	}
	src := s.env.Dashboard
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		d, err := src.Dashboard(ctx)
		return dashboardMsg{dash: d, err: err}
	}
}

func (s *ProfileScreen) Title() string { return "Профиль" }

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	if s.env.Session.Authenticated() {
		return []layout.KeyHint{
			{Key: "O", Description: "Выйти из аккаунта"},
			{Key: "Esc", Description: "Назад"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Назад"}}
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		s.loaded = true
		if msg.err != nil {
			s.env.Logger().Warn("load dashboard", "error", msg.err)
			s.errMsg = api.Message(msg.err)
			return s, nil
		}
		s.dash = msg.dash
	case tea.KeyPressMsg:
		if msg.String() == "o" && s.env.Session.Authenticated() {
			s.env.Session.Logout(context.Background())
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *ProfileScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder

	u := s.env.Session.User()
	if u == nil {
		p := s.env.Session.Progress()
		b.WriteString(components.Heading("👤 Гость", "Прогресс гостя хранится только до выхода", cw))
		b.WriteString("\n\n")
		b.WriteString(row("Пройдено уроков", len(p.Completed)))
		b.WriteString(row("Достижений", len(p.Achievements)))
		b.WriteString("\n" + theme.Hint.Render("Войдите или зарегистрируйтесь на главном экране, чтобы сохранять успехи."))
		return components.Centered(components.Card(b.String(), cw), width, height)
	}

	b.WriteString(components.Heading("👤 "+u.Username, u.Email, cw))
	b.WriteString("\n\n")
	switch {
	case !s.loaded:
		b.WriteString(theme.Hint.Render("Загружаем профиль..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	case s.dash != nil:
		b.WriteString(s.renderDashboard(cw))
	}
	return components.Centered(components.Card(b.String(), cw), width, height)
}

func (s *ProfileScreen) renderDashboard(cw int) string {
	st := s.dash.Stats
	var b strings.Builder

	streak := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("🔥 Серия: %d дн. подряд", st.CurrentStreak))
	b.WriteString(streak + "\n")
	next := stats.NextStreakThreshold(st.CurrentStreak)
	b.WriteString(components.NewProgressBar("До "+fmt.Sprint(next), st.CurrentStreak, next, cw-6).View() + "\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Лучшая серия: %d", st.LongestStreak)) + "\n\n")

	b.WriteString(row("Пройдено уроков", st.LessonsCompleted))
	b.WriteString(row("Сдано тестов", st.TestsPassed))
	b.WriteString(row("Достижений", st.Achievements))

	if len(s.dash.RecentLessons) > 0 {
		b.WriteString("\n" + theme.Hint.Render("Последние уроки") + "\n")
		for _, lp := range s.dash.RecentLessons {
			mark := "…"
			if lp.Completed {
				mark = "✓"
			}
			b.WriteString(fmt.Sprintf(" %s %s\n", mark, s.lessonTitle(lp.LessonID)))
		}
	}
	if len(s.dash.RecentAchievements) > 0 {
		b.WriteString("\n" + theme.Hint.Render("Достижения") + "\n")
		for _, a := range s.dash.RecentAchievements {
			b.WriteString(" " + a.Icon + " " + a.Name + "\n")
		}
	}
	if len(s.dash.RecentTests) > 0 {
		b.WriteString("\n" + theme.Hint.Render("Тесты") + "\n")
		for _, t := range s.dash.RecentTests {
			style := theme.Incorrect
			if t.Passed {
				style = theme.Correct
			}
			b.WriteString(" " + s.testTitle(t.TestID) + "  " +
				style.Render(fmt.Sprintf("%d/%d (%d%%)", t.Score, t.TotalQuestions, t.Percentage)) + "\n")
		}
	}
	return b.String()
}

func (s *ProfileScreen) lessonTitle(id string) string {
	if l, err := s.env.Session.Catalog().Lesson(id); err == nil {
		return l.Icon + " " + l.Title
	}
	return id
}

func (s *ProfileScreen) testTitle(id string) string {
	if t, err := s.env.Session.Catalog().Test(id); err == nil {
		return t.Title
	}
	return id
}

func row(label string, n int) string {
	return theme.Body.Render(fmt.Sprintf(" %-18s %d", label+":", n)) + "\n"
}
