// Package testrun is the screen a lesson's test is taken on: one question
// at a time, then the score and a review of every answer.
package testrun

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/progress"
	"github.com/abhisek/cifra/internal/quiz"
	"github.com/abhisek/cifra/internal/router"
	"github.com/abhisek/cifra/internal/screen"
	"github.com/abhisek/cifra/internal/screens/placeholder"
	"github.com/abhisek/cifra/internal/ui/components"
	"github.com/abhisek/cifra/internal/ui/layout"
	"github.com/abhisek/cifra/internal/ui/theme"
)

type TestScreen struct {
	env      *screen.Env
	lessonID string
	run      *quiz.Run

	index  int
	choice components.MultiChoice
	errMsg string
	result *quiz.Result
}

var (
	_ screen.Screen          = (*TestScreen)(nil)
	_ screen.KeyHintProvider = (*TestScreen)(nil)
	_ screen.Disposer        = (*TestScreen)(nil)
)

func New(env *screen.Env, lessonID string) *TestScreen {
	return &TestScreen{env: env, lessonID: lessonID}
}

func (s *TestScreen) Init() tea.Cmd {
	run, err := s.env.Session.StartTest(s.lessonID)
	switch {
	case errors.Is(err, progress.ErrTestLocked):
		return router.Replace(placeholder.New("Тест", "Сначала пройдите урок, потом откроется тест."))
	case err != nil:
		return router.Replace(placeholder.New("Тест", "Для этого урока нет теста."))
	}
	s.run = run
	s.show(0)
	return nil
}

func (s *TestScreen) Title() string {
	if s.run == nil {
		return "Тест"
	}
	return "📝 " + s.run.Test().Title
}

// Dispose saves the result when the learner leaves.
func (s *TestScreen) Dispose() {
	if s.run != nil && s.env.Session.Test() == s.run {
		s.env.Session.FinishTest(context.Background())
	}
}

func (s *TestScreen) KeyHints() []layout.KeyHint {
	if s.result != nil {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Вопросы"},
			{Key: "R", Description: "Ещё раз"},
			{Key: "Esc", Description: "К урокам"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-9", Description: "Ответ"},
		{Key: "←→", Description: "Вопросы"},
		{Key: "S", Description: "Проверить"},
		{Key: "Esc", Description: "Выйти"},
	}
}

func (s *TestScreen) questions() []content.Question { return s.run.Test().Questions }

func (s *TestScreen) show(i int) {
	qs := s.questions()
	s.index = min(max(i, 0), len(qs)-1)
	q := qs[s.index]
	c := components.NewMultiChoice(q.Text, q.Options, q.Type == content.QuestionMultiple)
	for opt := range q.Options {
		if s.run.Selected(q.ID, opt) {
			c.Chosen = append(c.Chosen, opt)
		}
	}
	if s.result != nil {
		c.Reveal = true
		c.Correct = []int(q.Correct)
	}
	s.choice = c
}

func (s *TestScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.run == nil {
		return s, nil
	}
	switch msg := msg.(type) {
	case components.ChoiceMsg:
		q := s.questions()[s.index]
		s.run.Select(q.ID, msg.Index)
		s.errMsg = ""
		cursor := s.choice.Cursor
		s.show(s.index)
		s.choice.Cursor = cursor
		return s, nil

	case tea.KeyPressMsg:
		if s.result != nil {
			return s.reviewKey(msg)
		}
		switch msg.String() {
		case "right", "l", "tab":
			s.show(s.index + 1)
			return s, nil
		case "left", "h", "shift+tab":
			s.show(s.index - 1)
			return s, nil
		case "s":
			s.submit()
			return s, nil
		}
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TestScreen) submit() {
	res, err := s.env.Session.SubmitTest(context.Background())
	if errors.Is(err, progress.ErrTestIncomplete) {
		s.errMsg = fmt.Sprintf("Ответьте на все вопросы: отвечено %d из %d.", s.run.Answered(), len(s.questions()))
		return
	}
	if err != nil {
		s.env.Logger().Error("submit test", "lesson", s.lessonID, "error", err)
		return
	}
	s.result = &res
	s.show(0)
}

func (s *TestScreen) reviewKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k", "left", "h":
		s.show(s.index - 1)
	case "down", "j", "right", "l", "tab":
		s.show(s.index + 1)
	case "r":
		s.env.Session.FinishTest(context.Background())
		s.result = nil
		return s, s.Init()
	case "enter":
		return s, router.Pop
	}
	return s, nil
}

func (s *TestScreen) View(width, height int) string {
	if s.run == nil {
		return ""
	}
	cw := components.ContentWidth(width)
	var b strings.Builder

	if s.result != nil {
		b.WriteString(s.renderResult(cw))
		b.WriteString("\n\n")
	}

	qs := s.questions()
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Вопрос %d из %d", s.index+1, len(qs))))
	if s.result == nil {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("   ·   отвечено %d", s.run.Answered())))
	}
	b.WriteString("\n\n")
	b.WriteString(s.choice.View())

	if s.result != nil {
		b.WriteString(s.renderReview(qs[s.index]))
	}
	if s.errMsg != "" {
		b.WriteString("\n" + theme.ErrorText.Render(s.errMsg))
	}
	return components.Centered(components.Card(b.String(), cw), width, height)
}

func (s *TestScreen) renderResult(cw int) string {
	r := s.result
	t := s.run.Test()
	head := fmt.Sprintf("Результат: %d из %d (%d%%)", r.Correct, r.Total, r.Percentage)
	if r.Passed {
		return components.Heading("✅ Тест пройден!", head, cw) + "\n" +
			lipgloss.NewStyle().Foreground(theme.Accent).Render("🏆 "+quiz.Achievement(t))
	}
	return components.Heading("Тест не пройден", head, cw) + "\n" +
		theme.Hint.Render(fmt.Sprintf("Нужно набрать %d%%. Нажмите R, чтобы попробовать ещё раз.", t.PassingScore))
}

func (s *TestScreen) renderReview(q content.Question) string {
	for _, rv := range s.run.Review() {
		if rv.Question.ID != q.ID {
			continue
		}
		var b strings.Builder
		if rv.Correct {
			b.WriteString("\n" + theme.Correct.Render("Верно"))
		} else {
			b.WriteString("\n" + theme.Incorrect.Render("Неверно") + "  " + theme.Hint.Render("Правильный ответ: "+rv.Answer))
		}
		if q.Explanation != "" {
			b.WriteString("\n" + theme.Body.Render(q.Explanation))
		}
		return b.String() + "\n"
	}
	return ""
}
