// Package home is the lesson catalog: the screen the app returns to between
// lessons.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/router"
	"github.com/abhisek/cifra/internal/screen"
	"github.com/abhisek/cifra/internal/screens/auth"
	"github.com/abhisek/cifra/internal/screens/history"
	"github.com/abhisek/cifra/internal/screens/lesson"
	"github.com/abhisek/cifra/internal/screens/profile"
	"github.com/abhisek/cifra/internal/screens/testrun"
	"github.com/abhisek/cifra/internal/ui/components"
	"github.com/abhisek/cifra/internal/ui/layout"
	"github.com/abhisek/cifra/internal/ui/theme"
)

// UpdateAvailableMsg tells the home screen a newer release exists.
type UpdateAvailableMsg struct {
	Version string
}

// filters in the order the tabs are drawn. The empty level is "all".
var filters = []struct {
	level content.Level
	label string
}{
	{"", "Все уроки"},
	{content.LevelBasic, string(content.LevelBasic)},
	{content.LevelAdvanced, string(content.LevelAdvanced)},
}

type HomeScreen struct {
	env     *screen.Env
	filter  int
	lessons []content.Lesson
	cursor  int
	latest  string
}

var (
	_ screen.Screen          = (*HomeScreen)(nil)
	_ screen.KeyHintProvider = (*HomeScreen)(nil)
	_ screen.Resumer         = (*HomeScreen)(nil)
)

func New(env *screen.Env) *HomeScreen {
	h := &HomeScreen{env: env}
	h.refresh()
	return h
}

func (h *HomeScreen) Init() tea.Cmd { return nil }

func (h *HomeScreen) Title() string { return "Уроки" }

// Resume re-reads the catalog, which may have been reloaded while another
// screen was on top.
func (h *HomeScreen) Resume() tea.Cmd {
	h.refresh()
	return nil
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Урок"},
		{Key: "←→", Description: "Уровень"},
		{Key: "Enter", Description: "Начать"},
		{Key: "T", Description: "Тест"},
		{Key: "P", Description: "Профиль"},
		{Key: "H", Description: "История"},
	}
	if h.env.Session.Authenticated() {
		hints = append(hints, layout.KeyHint{Key: "O", Description: "Выйти"})
	} else {
		hints = append(hints,
			layout.KeyHint{Key: "L", Description: "Войти"},
			layout.KeyHint{Key: "R", Description: "Регистрация"},
		)
	}
	return append(hints,
		layout.KeyHint{Key: "V", Description: "Звук"},
		layout.KeyHint{Key: "Q", Description: "Выход"},
	)
}

// Selected returns the lesson under the cursor, or nil when the list is empty.
func (h *HomeScreen) Selected() *content.Lesson {
	if h.cursor < 0 || h.cursor >= len(h.lessons) {
		return nil
	}
	return &h.lessons[h.cursor]
}

func (h *HomeScreen) refresh() {
	cat := h.env.Session.Catalog()
	if cat == nil {
		h.lessons = nil
	} else {
		h.lessons = cat.Filter(filters[h.filter].level)
	}
	h.cursor = min(h.cursor, max(len(h.lessons)-1, 0))
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case UpdateAvailableMsg:
		h.latest = msg.Version
		return h, nil
	case tea.KeyPressMsg:
		return h.handleKey(msg)
	}
	return h, nil
}

func (h *HomeScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		h.cursor = max(h.cursor-1, 0)
	case "down", "j":
		h.cursor = min(h.cursor+1, max(len(h.lessons)-1, 0))
	case "left":
		h.filter = (h.filter + len(filters) - 1) % len(filters)
		h.cursor = 0
		h.refresh()
	case "right", "tab":
		h.filter = (h.filter + 1) % len(filters)
		h.cursor = 0
		h.refresh()
	case "1", "2", "3":
		h.filter = int(msg.String()[0] - '1')
		h.cursor = 0
		h.refresh()
	case "enter", "space":
		if l := h.Selected(); l != nil {
			return h, router.Push(lesson.New(h.env, l.ID))
		}
	case "t":
		if l := h.Selected(); l != nil {
			if _, ok := h.env.Session.TestFor(l.ID); ok {
				return h, router.Push(testrun.New(h.env, l.ID))
			}
		}
	case "p":
		return h, router.Push(profile.New(h.env))
	case "h":
		return h, router.Push(history.New(h.env))
	case "l":
		if !h.env.Session.Authenticated() {
			return h, router.Push(auth.New(h.env, auth.ModeLogin))
		}
	case "r":
		if !h.env.Session.Authenticated() {
			return h, router.Push(auth.New(h.env, auth.ModeRegister))
		}
	case "o":
		if h.env.Session.Authenticated() {
			h.env.Session.Logout(context.Background())
		}
	case "v":
		h.env.Session.SetVoice(!h.env.Session.VoiceEnabled())
	case "q":
		return h, tea.Quit
	}
	return h, nil
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	compact := layout.IsCompactHeight(height + 6)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	sections = append(sections, h.renderStats(cw))
	sections = append(sections, renderTabs(h.filter, cw))
	sections = append(sections, h.renderList(cw, height-lipgloss.Height(strings.Join(sections, "\n"))-4))
	if h.latest != "" {
		sections = append(sections, theme.Hint.Width(cw).Align(lipgloss.Center).
			Render(fmt.Sprintf("Доступна новая версия %s: cifra update", h.latest)))
	}
	return components.Centered(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) renderStats(cw int) string {
	s := h.env.Session
	p := s.Progress()
	total := 0
	if cat := s.Catalog(); cat != nil {
		total = len(cat.Lessons())
	}
	parts := []string{
		fmt.Sprintf("✓ Пройдено %d из %d", len(p.Completed), total),
		fmt.Sprintf("🏆 %d", len(p.Achievements)),
	}
	if s.Authenticated() {
		parts = append(parts, fmt.Sprintf("🔥 %d дн.", p.Streak))
	} else {
		parts = append(parts, "Гость: войдите, чтобы сохранять прогресс")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(strings.Join(parts, "   "))
}

func renderTabs(active, cw int) string {
	tabs := make([]string, len(filters))
	for i, f := range filters {
		label := fmt.Sprintf(" %d %s ", i+1, f.label)
		if i == active {
			tabs[i] = theme.ButtonActive.Render(label)
		} else {
			tabs[i] = theme.ButtonInactive.Render(label)
		}
	}
	return lipgloss.PlaceHorizontal(cw, lipgloss.Center, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (h *HomeScreen) renderList(cw, rows int) string {
	if len(h.lessons) == 0 {
		return theme.Hint.Width(cw).Align(lipgloss.Center).Render("Уроков этого уровня пока нет.")
	}
	// Two lines per lesson; keep the cursor visible.
	visible := max(rows/2, 1)
	first := max(h.cursor-visible+1, 0)

	var b strings.Builder
	for i := first; i < len(h.lessons) && i < first+visible; i++ {
		l := h.lessons[i]
		mark := "  "
		if h.env.Session.IsCompleted(l.ID) {
			mark = theme.Correct.Render("✓ ")
		}
		title := l.Icon + " " + l.Title
		meta := string(l.Level)
		if l.Duration != "" {
			meta += " · " + l.Duration
		}
		if t, ok := h.env.Session.TestFor(l.ID); ok {
			meta += " · 📝 тест"
		} else if t != nil {
			meta += " · 🔒 тест после урока"
		}
		if i == h.cursor {
			b.WriteString(theme.Selected.Render("▸ ") + mark + theme.Selected.Render(title) + "\n")
		} else {
			b.WriteString("  " + mark + theme.Unselected.Render(title) + "\n")
		}
		b.WriteString("     " + theme.Hint.Render(meta) + "\n")
	}
	if l := h.Selected(); l != nil && l.Description != "" {
		b.WriteString("\n" + theme.Body.Width(cw).Render(l.Description))
	}
	return lipgloss.NewStyle().Width(cw).Render(b.String())
}
