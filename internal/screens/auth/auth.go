// Package auth holds the sign-in and registration forms.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cifra/internal/api"
	"github.com/abhisek/cifra/internal/progress"
	"github.com/abhisek/cifra/internal/router"
	"github.com/abhisek/cifra/internal/screen"
	"github.com/abhisek/cifra/internal/ui/components"
	"github.com/abhisek/cifra/internal/ui/layout"
	"github.com/abhisek/cifra/internal/ui/theme"
)

const requestTimeout = 20 * time.Second

// Mode selects which form is shown.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// Field indexes of the registration form; the login form uses the first
// and third.
const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
	fieldConfirm
)

type doneMsg struct {
	err error
}

// AuthScreen signs the learner in or registers a new account. Leaving it
// with Esc keeps the guest session.
type AuthScreen struct {
	env    *screen.Env
	mode   Mode
	fields []components.TextInput
	focus  int
	busy   bool
	errMsg string
}

var (
	_ screen.Screen          = (*AuthScreen)(nil)
	_ screen.KeyHintProvider = (*AuthScreen)(nil)
)

func New(env *screen.Env, mode Mode) *AuthScreen {
	s := &AuthScreen{
		env: env,
		fields: []components.TextInput{
			components.NewTextInput("Имя пользователя", "ivan", false, 64),
			components.NewTextInput("Email", "ivan@example.ru", false, 128),
			components.NewTextInput("Пароль", "не менее 6 символов", true, 128),
			components.NewTextInput("Повторите пароль", "", true, 128),
		},
	}
	s.setMode(mode)
	return s
}

func (s *AuthScreen) Init() tea.Cmd {
	return s.fields[s.focus].Focus()
}

func (s *AuthScreen) Title() string {
	if s.mode == ModeRegister {
		return "Регистрация"
	}
	return "Вход"
}

func (s *AuthScreen) KeyHints() []layout.KeyHint {
	other := "Регистрация"
	if s.mode == ModeRegister {
		other = "Вход"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Следующее поле"},
		{Key: "Enter", Description: "Отправить"},
		{Key: "Ctrl+R", Description: other},
		{Key: "Esc", Description: "Продолжить как гость"},
	}
}

func (s *AuthScreen) visible() []int {
	if s.mode == ModeRegister {
		return []int{fieldUsername, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldUsername, fieldPassword}
}

func (s *AuthScreen) setMode(m Mode) tea.Cmd {
	s.mode = m
	s.errMsg = ""
	return s.focusField(fieldUsername)
}

func (s *AuthScreen) focusField(f int) tea.Cmd {
	for i := range s.fields {
		s.fields[i].Blur()
	}
	s.focus = f
	return s.fields[f].Focus()
}

// step moves focus d visible fields forward or back, wrapping around.
func (s *AuthScreen) step(d int) tea.Cmd {
	vis := s.visible()
	pos := 0
	for i, f := range vis {
		if f == s.focus {
			pos = i
		}
	}
	return s.focusField(vis[(pos+d+len(vis))%len(vis)])
}

func (s *AuthScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		s.busy = false
		if msg.err != nil {
			s.errMsg = errorText(msg.err)
			return s, nil
		}
		return s, router.Pop

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.step(1)
		case "shift+tab", "up":
			return s, s.step(-1)
		case "ctrl+r":
			if s.mode == ModeLogin {
				return s, s.setMode(ModeRegister)
			}
			return s, s.setMode(ModeLogin)
		case "enter":
			vis := s.visible()
			if s.focus != vis[len(vis)-1] {
				return s, s.step(1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *AuthScreen) value(f int) string { return s.fields[f].Value() }

func (s *AuthScreen) submit() tea.Cmd {
	s.busy = true
	s.errMsg = ""
	session := s.env.Session
	if s.mode == ModeRegister {
		reg := progress.Registration{
			Username: strings.TrimSpace(s.value(fieldUsername)),
			Email:    strings.TrimSpace(s.value(fieldEmail)),
			Password: s.value(fieldPassword),
			Confirm:  s.value(fieldConfirm),
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return doneMsg{err: session.Register(ctx, reg)}
		}
	}
	username, password := strings.TrimSpace(s.value(fieldUsername)), s.value(fieldPassword)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return doneMsg{err: session.Login(ctx, username, password)}
	}
}

// errorText is what the form shows for err: the validation message, the
// server's message, or a connection problem.
func errorText(err error) string {
	var verr *progress.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return api.Message(err)
}

func (s *AuthScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder

	sub := "Войдите, чтобы сохранять прогресс"
	if s.mode == ModeRegister {
		sub = "Создайте аккаунт, чтобы сохранять прогресс"
	}
	b.WriteString(components.Heading(s.Title(), sub, cw))
	b.WriteString("\n\n")

	for _, f := range s.visible() {
		b.WriteString(s.fields[f].View() + "\n\n")
	}

	switch {
	case s.busy:
		b.WriteString(theme.Hint.Render("⏳ Подождите..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}
	return components.Centered(components.Card(b.String(), cw), width, height)
}
