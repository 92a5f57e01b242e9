package assist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cifra/internal/content"
	"github.com/abhisek/cifra/internal/engine"
	"github.com/abhisek/cifra/internal/llm"
)

func messengerLesson(t *testing.T) *content.Lesson {
	t.Helper()
	c, err := content.Embedded()
	require.NoError(t, err)
	l, err := c.Lesson("messenger-basic")
	require.NoError(t, err)
	return l
}

func TestExplain(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"explanation":"  Нажмите на строчку с именем Анна. ","tips":["Имя написано крупно"," "]}`)})
	svc := NewService(mock, DefaultConfig())
	l := messengerLesson(t)

	h, err := svc.Explain(context.Background(), Input{Lesson: l, Step: 1})
	require.NoError(t, err)
	assert.Equal(t, "Нажмите на строчку с именем Анна.", h.Explanation)
	assert.Equal(t, []string{"Имя написано крупно"}, h.Tips)
	assert.Equal(t, "messenger-basic", h.LessonID)

	require.Len(t, mock.Calls, 1)
	req := mock.Calls[0]
	assert.Same(t, HintSchema, req.Schema)
	assert.Contains(t, req.Messages[0].Content, l.Steps[1].Instruction)
	assert.Contains(t, req.Messages[0].Content, "Шаг 2 из 6")
}

func TestExplainIsCached(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"explanation":"Нажмите","tips":[]}`)})
	svc := NewService(mock, DefaultConfig())
	l := messengerLesson(t)

	_, err := svc.Explain(context.Background(), Input{Lesson: l, Step: 2})
	require.NoError(t, err)
	_, err = svc.Explain(context.Background(), Input{Lesson: l, Step: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestExplainErrors(t *testing.T) {
	l := messengerLesson(t)

	svc := NewService(llm.NewMockProvider(), DefaultConfig())
	_, err := svc.Explain(context.Background(), Input{Lesson: l, Step: len(l.Steps)})
	assert.Error(t, err)

	_, err = svc.Explain(context.Background(), Input{Lesson: l, Step: 0})
	var unavail *llm.ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail))

	bad := NewService(llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"tips":[]}`)}), DefaultConfig())
	_, err = bad.Explain(context.Background(), Input{Lesson: l, Step: 0})
	var inv *llm.ErrInvalidResponse
	assert.True(t, errors.As(err, &inv))
}

func TestPromptDescribesScreen(t *testing.T) {
	l := messengerLesson(t)
	e, err := engine.New(l, engine.WithoutDelays())
	require.NoError(t, err)
	require.True(t, e.Continue())

	scr := e.Simulator().Screen()
	msg := buildUserMessage(Input{Lesson: l, Step: e.Cursor(), Screen: &scr})
	assert.Contains(t, msg, "На экране:")
	assert.Equal(t, 1, strings.Count(msg, "(нужная кнопка)"), "chat-1 is highlighted")
}
