package content

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEmbeddedCatalog(t *testing.T) {
	c, err := Embedded()
	require.NoError(t, err)

	lessons := c.Lessons()
	require.Len(t, lessons, 8)
	assert.Equal(t, "messenger-basic", lessons[0].ID)
	assert.Equal(t, "gosuslugi-advanced", lessons[7].ID)

	for _, l := range lessons {
		assert.Equal(t, ActionIntro, l.Steps[0].Action, l.ID)
		assert.Equal(t, ActionComplete, l.Steps[len(l.Steps)-1].Action, l.ID)
		assert.NotEmpty(t, l.Achievements, l.ID)
	}

	assert.Len(t, c.Tests(), 4)
}

func TestEmbeddedCatalog_PortalLesson(t *testing.T) {
	c, err := Embedded()
	require.NoError(t, err)

	l, err := c.Lesson("gosuslugi-advanced")
	require.NoError(t, err)
	assert.Equal(t, SimPortal, l.Simulator())
	assert.Len(t, l.Steps, 21)
	assert.Equal(t, "+7 (999) 123-45-67", l.Steps[3].ExpectedText)
	assert.Len(t, l.Data.Specialties, 4)
	assert.Len(t, l.Data.Times, 5)
	assert.False(t, l.Data.Times[2].Available)
	assert.True(t, l.HasInitialState())

	var st struct {
		LoggedIn bool `yaml:"isLoggedIn"`
	}
	require.NoError(t, l.DecodeInitialState(&st))
	assert.False(t, st.LoggedIn)
}

func TestCatalog_Filter(t *testing.T) {
	c, err := Embedded()
	require.NoError(t, err)

	assert.Len(t, c.Filter(""), 8)
	basic := c.Filter(LevelBasic)
	assert.Len(t, basic, 4)
	for _, l := range basic {
		assert.Equal(t, LevelBasic, l.Level)
	}
	assert.Len(t, c.Filter(LevelAdvanced), 4)
}

func TestCatalog_Lookup(t *testing.T) {
	c, err := Embedded()
	require.NoError(t, err)

	_, err = c.Lesson("nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	test, err := c.TestForLesson("shop-advanced")
	require.NoError(t, err)
	assert.Equal(t, "shop", test.Topic)

	byID, err := c.Test(test.ID)
	require.NoError(t, err)
	assert.Equal(t, test.Title, byID.Title)

	l, err := c.LessonForTopic("phone")
	require.NoError(t, err)
	assert.Equal(t, "phone-basic", l.ID)

	_, err = c.TestForLesson("unknown-basic")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTopic(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"gosuslugi-advanced", "gosuslugi"},
		{"messenger-basic", "messenger"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Topic(tt.id), tt.id)
	}
}

const validLesson = `id: demo-basic
title: Demo
level: Базовый
steps:
  - {title: Hi, action: intro, instruction: go, simulatorType: intro}
  - {title: Bye, action: complete, instruction: done, simulatorType: complete}
`

func TestLoad_Valid(t *testing.T) {
	fsys := fstest.MapFS{
		"lessons/a.yaml": {Data: []byte(validLesson)},
	}
	c, err := Load(fsys)
	require.NoError(t, err)
	require.Len(t, c.Lessons(), 1)
	assert.Equal(t, SimIntro, c.Lessons()[0].Simulator())
	assert.Empty(t, c.Tests())
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "unknown level",
			file: "lessons/a.yaml",
			body: `id: demo
title: Demo
level: Expert
steps:
  - {title: Hi, action: intro, instruction: go, simulatorType: intro}
  - {title: Bye, action: complete, instruction: done, simulatorType: complete}
`,
		},
		{
			name: "unknown step field",
			file: "lessons/a.yaml",
			body: `id: demo
title: Demo
level: Базовый
steps:
  - {title: Hi, action: intro, instruction: go, simulatorType: intro, color: red}
  - {title: Bye, action: complete, instruction: done, simulatorType: complete}
`,
		},
		{
			name: "missing intro",
			file: "lessons/a.yaml",
			body: `id: demo
title: Demo
level: Базовый
steps:
  - {title: Hi, action: select-chat, instruction: go, simulatorType: messenger}
  - {title: Bye, action: complete, instruction: done, simulatorType: complete}
`,
		},
		{
			name: "single question with two answers",
			file: "tests/a.yaml",
			body: `id: t
topic: demo
title: T
passingScore: 70
questions:
  - {id: 1, type: single, question: Q, options: [a, b], correct: [0, 1]}
`,
		},
		{
			name: "answer out of range",
			file: "tests/a.yaml",
			body: `id: t
topic: demo
title: T
passingScore: 70
questions:
  - {id: 1, type: multiple, question: Q, options: [a, b], correct: [0, 2]}
`,
		},
		{
			name: "passing score above 100",
			file: "tests/a.yaml",
			body: `id: t
topic: demo
title: T
passingScore: 120
questions:
  - {id: 1, type: single, question: Q, options: [a, b], correct: 0}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{tt.file: {Data: []byte(tt.body)}}
			_, err := Load(fsys)
			assert.Error(t, err)
		})
	}
}

func TestLoad_DuplicateLessonID(t *testing.T) {
	fsys := fstest.MapFS{
		"lessons/a.yaml": {Data: []byte(validLesson)},
		"lessons/b.yaml": {Data: []byte(validLesson)},
	}
	_, err := Load(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate lesson id")
}

func TestAnswer_UnmarshalYAML(t *testing.T) {
	var q struct {
		A Answer `yaml:"a"`
		B Answer `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 2\nb: [0, 3]\n"), &q))
	assert.Equal(t, Answer{2}, q.A)
	assert.Equal(t, Answer{0, 3}, q.B)

	err := yaml.Unmarshal([]byte("a: {x: 1}\n"), &q)
	assert.Error(t, err)
}
