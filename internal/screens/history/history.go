// Package history lists the local learning log: lessons started, finished
// or left, hints asked for and tests taken.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/screen"
	"github.com/abhisek/cifra/internal/store"
	"github.com/abhisek/cifra/internal/ui/layout"
	"github.com/abhisek/cifra/internal/ui/theme"
)

const pageSize = 100

type historyLoadedMsg struct {
	Events []store.HistoryEvent
	Err    error
}

type HistoryScreen struct {
	env      *screen.Env
	events   []store.HistoryEvent
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

func New(env *screen.Env) *HistoryScreen {
	return &HistoryScreen{env: env}
}

func (s *HistoryScreen) Init() tea.Cmd {
	src := s.env.History
	if src == nil {
		s.loaded = true
		return nil
	}
	return func() tea.Msg {
		events, err := src.History(context.Background(), store.QueryOpts{Limit: pageSize})
		return historyLoadedMsg{Events: events, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "История"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Листать"},
		{Key: "Esc", Description: "Назад"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.env.Logger().Warn("load history", "error", msg.Err)
			s.errMsg = "Не удалось загрузить историю."
		} else {
			s.events = msg.Events
		}
		s.loaded = true

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			s.selected = max(s.selected-1, 0)
		case "down", "j":
			s.selected = min(s.selected+1, max(len(s.events)-1, 0))
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render("\n\n" + s.errMsg)
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\nЗагружаем историю...")
	}
	if len(s.events) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).Render("\n\nЗдесь пока пусто. Начните первый урок!")
	}

	// Keep the selected row on screen.
	rows := max(height-2, 1)
	first := max(s.selected-rows+1, 0)

	var b strings.Builder
	b.WriteString("\n")
	for i := first; i < len(s.events) && i < first+rows; i++ {
		ev := s.events[i]
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "▸ "
			style = theme.Selected
		}
		line := prefix + ev.Timestamp.Local().Format("02.01.2006 15:04") + "  " + Describe(ev, s.env.Session.Catalog())
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

// Describe renders one event as a line of text. cat may be nil; lesson and
// test ids are shown as-is then.
func Describe(ev store.HistoryEvent, cat *content.Catalog) string {
	lesson := ev.LessonID
	if cat != nil {
		if l, err := cat.Lesson(ev.LessonID); err == nil {
			lesson = l.Title
		}
	}
	switch ev.Kind {
	case store.EventLessonStarted:
		return "▶ Начат урок «" + lesson + "»"
	case store.EventLessonCompleted:
		return "✓ Пройден урок «" + lesson + "»"
	case store.EventLessonAbandoned:
		return fmt.Sprintf("⏸ Урок «%s» прерван на шаге %d из %d", lesson, ev.Step+1, ev.TotalSteps)
	case store.EventHintRequested:
		return fmt.Sprintf("❓ Подсказка к шагу %d урока «%s»", ev.Step+1, lesson)
	case store.EventTestFinished:
		verdict := "не сдан"
		if ev.Passed {
			verdict = "сдан"
		}
		test := ev.TestID
		if cat != nil {
			if t, err := cat.Test(ev.TestID); err == nil {
				test = t.Title
			}
		}
		return fmt.Sprintf("📝 Тест «%s» %s: %d из %d (%d%%)", test, verdict, ev.Score, ev.Total, ev.Percentage)
	}
	return string(ev.Kind)
}
