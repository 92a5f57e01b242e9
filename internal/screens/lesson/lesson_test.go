package lesson

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/engine"
	"github.com/abhisek/cifra/internal/progress"
	"github.com/abhisek/cifra/internal/router"
	"github.com/abhisek/cifra/internal/screen"
)

func newEnv(t *testing.T) *screen.Env {
	t.Helper()
	cat, err := content.Embedded()
	require.NoError(t, err)
	return &screen.Env{Session: progress.New(cat, progress.Options{
		EngineOptions: []engine.Option{engine.WithoutDelays()},
	})}
}

func TestUnknownLessonIsReplaced(t *testing.T) {
	s := New(newEnv(t), "no-such-lesson")
	cmd := s.Init()
	require.NotNil(t, cmd)
	_, ok := cmd().(router.ReplaceScreenMsg)
	assert.True(t, ok)
	assert.Nil(t, s.Engine())
}

func TestContinuePassesIntro(t *testing.T) {
	env := newEnv(t)
	s := New(env, "messenger-basic")
	s.Init()
	require.NotNil(t, s.Engine())
	assert.Same(t, s.Engine(), env.Session.Lesson())
	assert.True(t, s.Engine().AwaitsContinue())

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, 1, s.Engine().Cursor())
	assert.False(t, s.Engine().AwaitsContinue())
}

func TestHelpConsumesEsc(t *testing.T) {
	s := New(newEnv(t), "messenger-basic")
	s.Init()
	assert.False(t, s.HandlesBack())

	s.Update(tea.KeyPressMsg{Code: tea.KeyF1})
	assert.True(t, s.helpOpen)
	assert.True(t, s.HandlesBack())

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.False(t, s.helpOpen)
}

func TestStepListJumpsBack(t *testing.T) {
	s := New(newEnv(t), "messenger-basic")
	s.Init()
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.Equal(t, 1, s.Engine().Cursor())

	s.setFocus(focusSteps)
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, 0, s.Engine().Cursor())
	assert.Equal(t, focusControls, s.focus)
	assert.True(t, s.Engine().Reviewing())
	assert.Contains(t, s.View(120, 40), "К текущему шагу")

	// Enter on a reviewed step returns to the step in progress.
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, 1, s.Engine().Cursor())
	assert.False(t, s.Engine().Reviewing())
}

func TestDisposeAbandonsLesson(t *testing.T) {
	env := newEnv(t)
	s := New(env, "messenger-basic")
	s.Init()
	s.Dispose()
	assert.Nil(t, env.Session.Lesson())
}

func TestViewShowsInstruction(t *testing.T) {
	s := New(newEnv(t), "messenger-basic")
	s.Init()
	assert.Contains(t, s.View(120, 40), s.Engine().Step().Title)
}
