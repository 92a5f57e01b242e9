package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var req LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "nina", req.Username)
			assert.Empty(t, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(AuthResponse{Success: true, Token: "tok-1", User: User{ID: "u1", Username: "nina"}})
		case "/api/auth/verify":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(AuthResponse{Success: true, User: User{ID: "u1", Username: "nina"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tokens := &MemoryTokens{}
	c := New(Options{BaseURL: srv.URL + "/api/", Tokens: tokens})
	ctx := context.Background()

	u, err := c.Login(ctx, "nina", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, c.HasToken(ctx))

	u, err = c.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nina", u.Username)

	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.HasToken(ctx))
}

func TestErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Неверное имя пользователя или пароль"}`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	_, err := c.Login(context.Background(), "nina", "wrong")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Неверное имя пользователя или пароль", Message(err))
}

func TestErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tokens := &MemoryTokens{token: "t"}
	c := New(Options{BaseURL: srv.URL, Tokens: tokens})
	_, err := c.Stats(context.Background())
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, DefaultErrorMessage, Message(err))
}

func TestGuestCallsFailFast(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	err := c.SaveLessonProgress(context.Background(), "phone-basic", true, 8)
	assert.ErrorIs(t, err, ErrNoToken)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, called)
}

func TestWritesSendCamelCaseBodies(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tests/result", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Tokens: &MemoryTokens{token: "t"}})
	err := c.SaveTestResult(context.Background(), TestResultRequest{
		TestID: "phone-test", Score: 4, TotalQuestions: 5, Percentage: 80, Passed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "phone-test", got["testId"])
	assert.Equal(t, float64(5), got["totalQuestions"])
	assert.Equal(t, true, got["passed"])
}

func TestDashboardDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"dashboard":{"user":{"id":"u1","username":"nina"},
			"stats":{"total_lessons_completed":3,"total_tests_passed":1,"total_achievements":4,"current_streak":2},
			"recentLessons":[{"lesson_id":"phone-basic","completed":true,"current_step":8}],
			"recentAchievements":[{"id":1,"achievement_name":"Первое сообщение","achievement_icon":"🏆","earned_at":"2026-01-27T09:41:00Z"}],
			"recentTests":[]}}`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Tokens: &MemoryTokens{token: "t"}})
	d, err := c.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, d.Stats.LessonsCompleted)
	assert.Equal(t, 2, d.Stats.CurrentStreak)
	require.Len(t, d.RecentLessons, 1)
	assert.Equal(t, "phone-basic", d.RecentLessons[0].LessonID)
	require.Len(t, d.RecentAchievements, 1)
	assert.Equal(t, "🏆", d.RecentAchievements[0].Icon)
}

func TestUnreachableMessage(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1"})
	_, err := c.Login(context.Background(), "a", "b")
	require.Error(t, err)
	assert.Equal(t, unreachableMessage, Message(err))
}
