package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/cifra/internal/api"
	"github.com/abhisek/cifra/internal/store"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	srv   *httptest.Server
	clock *testClock
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.OpenServer(context.Background(), store.DriverSQLite,
		fmt.Sprintf("file:srv_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := &testClock{t: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
	opts := Options{
		Secret:     "test-secret",
		BcryptCost: bcrypt.MinCost,
		AuthBurst:  100,
		Clock:      clock.now,
	}
	for _, m := range mutate {
		m(&opts)
	}
	s, err := New(st, opts)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &fixture{srv: ts, clock: clock}
}

func (f *fixture) client() *api.Client {
	return api.New(api.Options{BaseURL: f.srv.URL + "/api"})
}

func (f *fixture) registered(t *testing.T, username string) *api.Client {
	t.Helper()
	c := f.client()
	_, err := c.Register(context.Background(), username, username+"@example.com", "secret1")
	require.NoError(t, err)
	return c
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestRegisterLoginVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.client()
	u, err := c.Register(ctx, "anna", "anna@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "anna", u.Username)
	assert.NotEmpty(t, u.ID)
	assert.True(t, c.HasToken(ctx))

	got, err := c.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "anna@example.com", got.Email)

	other := f.client()
	_, err = other.Login(ctx, "anna", "secret1")
	require.NoError(t, err)
	assert.True(t, other.HasToken(ctx))
}

func TestRegisterRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registered(t, "anna")

	tests := []struct {
		name                      string
		username, email, password string
		message                   string
	}{
		{"duplicate username", "anna", "x@example.com", "secret1", "Пользователь с таким именем или email уже существует"},
		{"duplicate email", "boris", "anna@example.com", "secret1", "Пользователь с таким именем или email уже существует"},
		{"short password", "boris", "boris@example.com", "12345", "Пароль должен быть не менее 6 символов"},
		{"missing field", "", "boris@example.com", "secret1", "Заполните все поля"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.client().Register(ctx, tt.username, tt.email, tt.password)
			var apiErr *api.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "anna")

	for _, creds := range [][2]string{{"anna", "wrong-pass"}, {"nobody", "secret1"}} {
		_, err := f.client().Login(context.Background(), creds[0], creds[1])
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "Неверное имя пользователя или пароль", api.Message(err))
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/progress", "/api/achievements", "/api/tests/results", "/api/stats", "/api/dashboard", "/api/auth/verify"} {
		resp, err := http.Get(f.srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	req, _ := http.NewRequest(http.MethodGet, f.srv.URL+"/api/progress", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExpiredToken(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.TokenTTL = time.Hour })
	c := f.registered(t, "anna")

	f.clock.advance(2 * time.Hour)
	_, err := c.Verify(context.Background())
	assert.True(t, api.IsUnauthorized(err))
}

func TestLessonProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.registered(t, "anna")

	require.NoError(t, c.SaveLessonProgress(ctx, "messenger-basic", false, 2))
	f.clock.advance(time.Minute)
	require.NoError(t, c.SaveLessonProgress(ctx, "messenger-basic", true, 5))
	f.clock.advance(time.Minute)
	require.NoError(t, c.SaveLessonProgress(ctx, "phone-basic", false, 1))
	f.clock.advance(time.Minute)
	// A later partial save does not undo completion.
	require.NoError(t, c.SaveLessonProgress(ctx, "messenger-basic", false, 0))

	rows, err := c.Progress(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	byID := map[string]api.LessonProgress{}
	for _, r := range rows {
		byID[r.LessonID] = r
	}
	assert.True(t, byID["messenger-basic"].Completed)
	assert.NotNil(t, byID["messenger-basic"].CompletedAt)
	assert.False(t, byID["phone-basic"].Completed)
	assert.Nil(t, byID["phone-basic"].CompletedAt)

	err = c.SaveLessonProgress(ctx, " ", true, 0)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestAchievementsAreUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.registered(t, "anna")

	require.NoError(t, c.AddAchievement(ctx, "Первое сообщение", "💬"))
	require.NoError(t, c.AddAchievement(ctx, "Первое сообщение", "💬"))
	require.NoError(t, c.AddAchievement(ctx, "Знаток мессенджера", ""))

	list, err := c.Achievements(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	names := []string{list[0].Name, list[1].Name}
	assert.ElementsMatch(t, []string{"Первое сообщение", "Знаток мессенджера"}, names)
	for _, a := range list {
		if a.Name == "Знаток мессенджера" {
			assert.Equal(t, "🏆", a.Icon)
		}
	}
}

func TestTestResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.registered(t, "anna")

	require.NoError(t, c.SaveTestResult(ctx, api.TestResultRequest{TestID: "messenger-test", Score: 3, TotalQuestions: 5, Percentage: 60, Passed: false}))
	f.clock.advance(time.Minute)
	require.NoError(t, c.SaveTestResult(ctx, api.TestResultRequest{TestID: "messenger-test", Score: 5, TotalQuestions: 5, Percentage: 100, Passed: true}))

	results, err := c.TestResults(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 100, results[0].Percentage, "newest first")

	err = c.SaveTestResult(ctx, api.TestResultRequest{TestID: "messenger-test", Score: 6, TotalQuestions: 5, Percentage: 120})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestStatsAndStreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.registered(t, "anna")

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.CurrentStreak)
	assert.Empty(t, st.LastActivityDate)

	require.NoError(t, c.SaveLessonProgress(ctx, "messenger-basic", true, 5))
	f.clock.advance(24 * time.Hour)
	require.NoError(t, c.AddAchievement(ctx, "Первое сообщение", "💬"))
	f.clock.advance(24 * time.Hour)
	require.NoError(t, c.SaveTestResult(ctx, api.TestResultRequest{TestID: "messenger-test", Score: 5, TotalQuestions: 5, Percentage: 100, Passed: true}))
	require.NoError(t, c.SaveTestResult(ctx, api.TestResultRequest{TestID: "messenger-test", Score: 4, TotalQuestions: 5, Percentage: 80, Passed: true}))

	st, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.LessonsCompleted)
	assert.Equal(t, 1, st.TestsPassed, "a test passed twice counts once")
	assert.Equal(t, 1, st.Achievements)
	assert.Equal(t, 3, st.CurrentStreak)
	assert.Equal(t, 3, st.LongestStreak)
	assert.Equal(t, "2026-03-04", st.LastActivityDate)

	f.clock.advance(3 * 24 * time.Hour)
	st, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.CurrentStreak)
	assert.Equal(t, 3, st.LongestStreak)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.registered(t, "anna")

	for i := range 7 {
		require.NoError(t, c.SaveLessonProgress(ctx, fmt.Sprintf("lesson-%d", i), true, 3))
		require.NoError(t, c.AddAchievement(ctx, fmt.Sprintf("badge-%d", i), ""))
		f.clock.advance(time.Minute)
	}

	d, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "anna", d.User.Username)
	assert.Equal(t, 7, d.Stats.LessonsCompleted)
	assert.Len(t, d.RecentLessons, recentLimit)
	assert.Equal(t, "lesson-6", d.RecentLessons[0].LessonID)
	assert.Len(t, d.RecentAchievements, recentLimit)
	assert.Empty(t, d.RecentTests)
}

func TestUsersAreIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna := f.registered(t, "anna")
	boris := f.registered(t, "boris")

	require.NoError(t, anna.SaveLessonProgress(ctx, "messenger-basic", true, 5))
	rows, err := boris.Progress(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.AuthRPS = 0.001
		o.AuthBurst = 2
	})
	body := `{"username":"anna","password":"secret1"}`
	var codes []int
	for range 3 {
		resp, err := http.Post(f.srv.URL+"/api/auth/login", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Post(f.srv.URL+"/api/auth/register", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndCORS(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.CORSOrigins = []string{"http://localhost:5173"} })

	resp, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/progress", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestIPLimitersEvictAndRefill(t *testing.T) {
	clock := &testClock{t: time.Unix(0, 0)}
	l := newIPLimiters(1, 1, 2, clock.now)

	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"))
	assert.True(t, l.allow("c"), "third client evicts the oldest")
	assert.Len(t, l.items, 2)
	assert.True(t, l.allow("a"), "evicted client starts with a fresh bucket")

	clock.advance(time.Second)
	assert.True(t, l.allow("c"))

	clock.advance(limiterIdle + time.Second)
	l.allow("d")
	assert.Len(t, l.items, 1, "idle buckets are swept")
}
