// Package lesson is the screen a lesson is played on: the simulated phone,
// the step instructions, the step list and the help box.
package lesson

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cifra/internal/assist"
	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/engine"
	"github.com/abhisek/cifra/internal/router"
	"github.com/abhisek/cifra/internal/screen"
	"github.com/abhisek/cifra/internal/screens/placeholder"
	"github.com/abhisek/cifra/internal/screens/summary"
	"github.com/abhisek/cifra/internal/sim"
	"github.com/abhisek/cifra/internal/ui/components"
	"github.com/abhisek/cifra/internal/ui/layout"
)

const hintTimeout = 30 * time.Second

type focus int

const (
	focusControls focus = iota
	focusInput
	focusSteps
)

// LessonScreen runs one lesson through the session controller.
type LessonScreen struct {
	env      *screen.Env
	lessonID string
	eng      *engine.Engine

	focus   focus
	control int
	stepSel int
	input   components.TextInput
	inputID string
	shown   int // step the screen was last synced to

	nudge       string
	helpOpen    bool
	hint        *assist.Hint
	hintLoading bool
	hintErr     string
}

var (
	_ screen.Screen          = (*LessonScreen)(nil)
	_ screen.KeyHintProvider = (*LessonScreen)(nil)
	_ screen.Disposer        = (*LessonScreen)(nil)
	_ screen.BackHandler     = (*LessonScreen)(nil)
)

func New(env *screen.Env, lessonID string) *LessonScreen {
	return &LessonScreen{env: env, lessonID: lessonID, shown: -1}
}

// Init starts the lesson. An unknown lesson is replaced by the "nothing
// here" screen.
func (s *LessonScreen) Init() tea.Cmd {
	eng, err := s.env.Session.StartLesson(context.Background(), s.lessonID)
	if err != nil {
		msg := "Не удалось открыть урок."
		if errors.Is(err, content.ErrNotFound) {
			msg = "Такого урока нет."
		} else {
			s.env.Logger().Error("start lesson", "lesson", s.lessonID, "error", err)
		}
		return router.Replace(placeholder.New("Урок", msg))
	}
	s.eng = eng
	return s.sync()
}

func (s *LessonScreen) Title() string {
	if s.eng == nil {
		return "Урок"
	}
	l := s.eng.Lesson()
	return l.Icon + " " + l.Title
}

// Engine is nil until Init ran.
func (s *LessonScreen) Engine() *engine.Engine { return s.eng }

// Dispose abandons the lesson if the learner leaves before finishing it.
func (s *LessonScreen) Dispose() {
	if s.eng != nil && s.env.Session.Lesson() == s.eng {
		s.env.Session.AbandonLesson(context.Background())
	}
}

// HandlesBack lets Esc leave the text field first.
func (s *LessonScreen) HandlesBack() bool {
	return s.focus == focusInput || s.helpOpen
}

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Переключить"}}
	switch {
	case s.eng != nil && s.eng.Reviewing():
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "К текущему шагу"})
	case s.eng != nil && s.eng.AwaitsContinue():
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Далее"})
	default:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Нажать"})
	}
	return append(hints,
		layout.KeyHint{Key: "F1", Description: "Помощь"},
		layout.KeyHint{Key: "F2", Description: "Голос"},
		layout.KeyHint{Key: "Esc", Description: "К урокам"},
	)
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.eng == nil {
		return s, nil
	}
	switch msg := msg.(type) {
	case timerMsg:
		if msg.eng != s.eng {
			return s, nil
		}
		return s, tea.Batch(s.schedule(s.eng.Fire(msg.id)), s.sync())

	case hintMsg:
		if msg.eng != s.eng || msg.step != s.eng.Cursor() {
			return s, nil
		}
		s.hintLoading = false
		if msg.err != nil {
			s.env.Logger().Warn("step hint", "lesson", s.lessonID, "step", msg.step, "error", msg.err)
			s.hintErr = "Не удалось получить подсказку. Попробуйте позже."
			return s, nil
		}
		s.hint = msg.hint
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.focus == focusInput {
		return s.updateInput(msg)
	}
	return s, nil
}

func (s *LessonScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "f1":
		return s, s.toggleHelp()
	case "f2":
		s.env.Session.SetVoice(!s.env.Session.VoiceEnabled())
		return s, nil
	case "tab":
		return s, s.cycleFocus()
	case "esc":
		if s.helpOpen {
			s.helpOpen = false
			return s, nil
		}
		if s.focus == focusInput {
			s.focus = focusControls
			s.input.Blur()
		}
		return s, nil
	}

	if s.focus == focusInput {
		if msg.String() == "enter" {
			return s, s.submitInput()
		}
		return s.updateInput(msg)
	}

	switch msg.String() {
	case "?":
		return s, s.toggleHelp()
	case "v":
		s.env.Session.SetVoice(!s.env.Session.VoiceEnabled())
	case "r":
		s.env.Session.Narrator().Speak(s.eng.Step().Instruction)
	case "up", "k":
		s.move(-1)
	case "down", "j":
		s.move(1)
	case "enter", "space":
		return s, s.press()
	}
	return s, nil
}

func (s *LessonScreen) move(d int) {
	switch s.focus {
	case focusSteps:
		s.stepSel = min(max(s.stepSel+d, 0), s.eng.Reached())
	default:
		n := len(s.controls())
		if n > 0 {
			s.control = min(max(s.control+d, 0), n-1)
		}
	}
}

// press acts on what is focused: passes an informational step, finishes
// the lesson, presses a control or jumps to a passed step. While a passed
// step is shown it returns to the current one.
func (s *LessonScreen) press() tea.Cmd {
	s.nudge = ""
	if s.focus == focusSteps {
		if s.eng.JumpTo(s.stepSel) {
			s.focus = focusControls
			return s.sync()
		}
		return nil
	}
	if s.eng.Reviewing() {
		s.eng.JumpTo(s.eng.Reached())
		return s.sync()
	}
	if s.eng.Step().Action == content.ActionComplete {
		return s.complete()
	}
	if s.eng.AwaitsContinue() {
		s.eng.Continue()
		return s.sync()
	}
	ctrls := s.controls()
	if s.control >= len(ctrls) {
		return nil
	}
	c := ctrls[s.control]
	if c.Disabled {
		return nil
	}
	t, ok := s.eng.Do(c.Action, c.Arg)
	if !ok {
		if !s.eng.Locked() {
			s.nudge = "Это не та кнопка. Нужная подсвечена жёлтым."
		}
		return nil
	}
	return tea.Batch(s.schedule(t), s.sync())
}

func (s *LessonScreen) submitInput() tea.Cmd {
	s.nudge = ""
	t, ok := s.eng.Do(s.eng.Step().Action, sim.Arg{})
	if !ok {
		return nil
	}
	return tea.Batch(s.schedule(t), s.sync())
}

func (s *LessonScreen) updateInput(msg tea.Msg) (screen.Screen, tea.Cmd) {
	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if v := s.input.Value(); v != before {
		if in := s.simInput(); in != nil {
			t, _ := s.eng.Type(in.Field, v)
			return s, tea.Batch(cmd, s.schedule(t), s.sync())
		}
	}
	return s, cmd
}

func (s *LessonScreen) complete() tea.Cmd {
	l := s.eng.Lesson()
	if err := s.env.Session.CompleteLesson(context.Background()); err != nil {
		s.env.Logger().Error("complete lesson", "lesson", l.ID, "error", err)
		return nil
	}
	return router.Replace(summary.ForLesson(s.env, l))
}

func (s *LessonScreen) cycleFocus() tea.Cmd {
	order := []focus{focusControls}
	if s.simInput() != nil {
		order = append(order, focusInput)
	}
	order = append(order, focusSteps)
	next := order[0]
	for i, f := range order {
		if f == s.focus {
			next = order[(i+1)%len(order)]
			break
		}
	}
	return s.setFocus(next)
}

func (s *LessonScreen) setFocus(f focus) tea.Cmd {
	s.focus = f
	if f == focusSteps {
		s.stepSel = s.eng.Cursor()
	}
	if f == focusInput {
		return s.input.Focus()
	}
	s.input.Blur()
	return nil
}

func (s *LessonScreen) toggleHelp() tea.Cmd {
	s.helpOpen = !s.helpOpen
	if !s.helpOpen || s.env.Assist == nil || s.hint != nil || s.hintLoading {
		return nil
	}
	s.hintLoading = true
	s.hintErr = ""
	s.env.Session.RecordHint(context.Background())

	eng, step, lesson := s.eng, s.eng.Cursor(), s.eng.Lesson()
	var scr *sim.Screen
	if eng.Simulator() != nil {
		v := eng.Simulator().Screen()
		scr = &v
	}
	explainer := s.env.Assist
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), hintTimeout)
		defer cancel()
		h, err := explainer.Explain(ctx, assist.Input{Lesson: lesson, Step: step, Screen: scr})
		return hintMsg{eng: eng, step: step, hint: h, err: err}
	}
}

// sync aligns the screen with the engine after anything changed: the text
// field mirrors the simulator and per-step state resets on a new step.
func (s *LessonScreen) sync() tea.Cmd {
	var cmd tea.Cmd
	newStep := s.eng.Cursor() != s.shown
	if newStep {
		s.shown = s.eng.Cursor()
		s.nudge = ""
		s.hint, s.hintErr, s.hintLoading = nil, "", false
		s.stepSel = s.eng.Cursor()
	}

	in := s.simInput()
	switch {
	case in == nil:
		s.inputID = ""
		s.input.Blur()
		if s.focus == focusInput {
			s.focus = focusControls
		}
	case in.ID != s.inputID:
		s.inputID = in.ID
		label := in.Label
		if label == "" {
			label = in.Placeholder
		}
		s.input = components.NewTextInput(label, in.Placeholder, in.Secret, 0)
		s.input.SetValue(in.Value)
	case in.Value != s.input.Value():
		s.input.SetValue(in.Value)
	}
	if newStep && in != nil && s.eng.Step().HighlightElement == in.ID {
		cmd = s.setFocus(focusInput)
	}

	if n := len(s.controls()); s.control >= n {
		s.control = max(n-1, 0)
	}
	return cmd
}

func (s *LessonScreen) schedule(t *engine.Timer) tea.Cmd {
	if t == nil {
		return nil
	}
	eng, id := s.eng, t.ID
	return tea.Tick(t.Delay, func(time.Time) tea.Msg { return timerMsg{eng: eng, id: id} })
}

func (s *LessonScreen) simScreen() *sim.Screen {
	if s.eng.Simulator() == nil {
		return nil
	}
	scr := s.eng.Simulator().Screen()
	return &scr
}

func (s *LessonScreen) simInput() *sim.Input {
	if scr := s.simScreen(); scr != nil {
		return scr.Input
	}
	return nil
}

func (s *LessonScreen) controls() []sim.Control {
	if scr := s.simScreen(); scr != nil {
		return scr.Controls
	}
	return nil
}
