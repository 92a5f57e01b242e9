package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func memoryDSN(t *testing.T) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(memoryDSN(t))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func openServerStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenServer(context.Background(), DriverSQLite, memoryDSN(t))
	if err != nil {
		t.Fatalf("open server store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestForeignKeysEnforced(t *testing.T) {
	s := openTestStore(t)
	var got string
	if err := s.DB().QueryRow("PRAGMA foreign_keys").Scan(&got); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if got != "1" {
		t.Errorf("foreign_keys = %q, want 1", got)
	}
}

func TestWithForeignKeys(t *testing.T) {
	tests := []struct{ in, want string }{
		{"cifra.db", "cifra.db?_pragma=foreign_keys(1)"},
		{"file::memory:?cache=shared", "file::memory:?cache=shared&_pragma=foreign_keys(1)"},
		{"x.db?_pragma=foreign_keys(0)", "x.db?_pragma=foreign_keys(0)"},
	}
	for _, tt := range tests {
		if got := withForeignKeys(tt.in); got != tt.want {
			t.Errorf("withForeignKeys(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"history_events", "llm_request_events", "settings", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestHistoryAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	base := time.Date(2026, 1, 27, 9, 0, 0, 0, time.UTC)
	events := []HistoryEvent{
		{Kind: EventLessonStarted, LessonID: "phone-basic", RunID: "r1", TotalSteps: 8, Timestamp: base},
		{Kind: EventLessonCompleted, LessonID: "phone-basic", RunID: "r1", Step: 7, TotalSteps: 8, Timestamp: base.Add(time.Minute)},
		{Kind: EventTestFinished, TestID: "phone-test", Score: 4, Total: 5, Percentage: 80, Passed: true, Timestamp: base.Add(2 * time.Minute)},
	}
	for _, ev := range events {
		if err := repo.AppendHistory(ctx, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.History(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Kind != EventTestFinished || !got[0].Passed || got[0].Percentage != 80 {
		t.Errorf("newest = %+v", got[0])
	}
	if got[2].Kind != EventLessonStarted || got[2].TotalSteps != 8 {
		t.Errorf("oldest = %+v", got[2])
	}
	if !got[1].Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("timestamp = %v", got[1].Timestamp)
	}

	limited, err := repo.History(ctx, QueryOpts{Limit: 1, Before: got[0].Sequence})
	if err != nil {
		t.Fatalf("history limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Kind != EventLessonCompleted {
		t.Errorf("limited = %+v", limited)
	}

	if err := repo.ClearHistory(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = repo.History(ctx, QueryOpts{})
	if len(got) != 0 {
		t.Errorf("history after clear = %d", len(got))
	}
}

func TestLLMRequestsShareSequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendHistory(ctx, HistoryEvent{Kind: EventHintRequested, LessonID: "shop-basic"}); err != nil {
		t.Fatal(err)
	}
	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "anthropic", Model: "m", Purpose: "step-hint", InputTokens: 10, OutputTokens: 20, LatencyMs: 300, Success: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	reqs, err := repo.LLMRequests(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 1 {
		t.Fatalf("len = %d", len(reqs))
	}
	if reqs[0].Sequence != 2 || reqs[0].Purpose != "step-hint" || !reqs[0].Success {
		t.Errorf("request = %+v", reqs[0])
	}
}

func TestSettings(t *testing.T) {
	s := openTestStore(t)
	repo := s.Settings()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v", err)
	}
	if tok, err := repo.Token(ctx); err != nil || tok != "" {
		t.Errorf("Token() = %q, %v", tok, err)
	}

	if err := repo.SetToken(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetToken(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if tok, _ := repo.Token(ctx); tok != "b" {
		t.Errorf("Token() = %q, want b", tok)
	}
	if err := repo.ClearToken(ctx); err != nil {
		t.Fatal(err)
	}
	if tok, _ := repo.Token(ctx); tok != "" {
		t.Errorf("Token() after clear = %q", tok)
	}

	if !repo.Bool(ctx, SettingVoice, true) {
		t.Error("unset bool should use the default")
	}
	repo.SetBool(ctx, SettingVoice, false)
	if repo.Bool(ctx, SettingVoice, true) {
		t.Error("voice should be off")
	}
}

func TestUsers(t *testing.T) {
	s := openServerStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	u := &User{ID: "u1", Username: "nina", Email: "nina@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := &User{ID: "u2", Username: "nina", Email: "other@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate username err = %v, want ErrConflict", err)
	}

	got, err := repo.ByUsername(ctx, "nina")
	if err != nil {
		t.Fatalf("by username: %v", err)
	}
	if got.ID != "u1" || got.Email != "nina@example.com" {
		t.Errorf("user = %+v", got)
	}
	if _, err := repo.ByID(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByID(nobody) err = %v", err)
	}
}

func TestProgressRepo(t *testing.T) {
	s := openServerStore(t)
	ctx := context.Background()
	if err := s.UserRepo().Create(ctx, &User{ID: "u1", Username: "nina", Email: "n@e", PasswordHash: "h"}); err != nil {
		t.Fatal(err)
	}
	repo := s.ProgressRepo()

	if err := repo.SaveLesson(ctx, "u1", LessonProgress{LessonID: "phone-basic", Completed: true, CurrentStep: 8}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A later partial save must not un-complete the lesson.
	if err := repo.SaveLesson(ctx, "u1", LessonProgress{LessonID: "phone-basic", CurrentStep: 2}); err != nil {
		t.Fatalf("save again: %v", err)
	}
	lessons, err := repo.Lessons(ctx, "u1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(lessons) != 1 || !lessons[0].Completed || lessons[0].CurrentStep != 2 || lessons[0].CompletedAt == nil {
		t.Errorf("lessons = %+v", lessons)
	}

	added, err := repo.AddAchievement(ctx, "u1", Achievement{Name: "Первый звонок"})
	if err != nil || !added {
		t.Fatalf("add achievement = %v, %v", added, err)
	}
	added, err = repo.AddAchievement(ctx, "u1", Achievement{Name: "Первый звонок"})
	if err != nil || added {
		t.Errorf("duplicate achievement = %v, %v", added, err)
	}
	achs, _ := repo.Achievements(ctx, "u1", 0)
	if len(achs) != 1 || achs[0].Icon != "🏆" {
		t.Errorf("achievements = %+v", achs)
	}

	for _, r := range []TestResult{
		{TestID: "phone-test", Score: 2, TotalQuestions: 5, Percentage: 40},
		{TestID: "phone-test", Score: 5, TotalQuestions: 5, Percentage: 100, Passed: true},
		{TestID: "phone-test", Score: 4, TotalQuestions: 5, Percentage: 80, Passed: true},
	} {
		if err := repo.AddTestResult(ctx, "u1", r); err != nil {
			t.Fatal(err)
		}
	}
	results, _ := repo.TestResults(ctx, "u1", 2)
	if len(results) != 2 {
		t.Errorf("limited results = %d", len(results))
	}

	repo.TouchDay(ctx, "u1", "2026-01-26")
	repo.TouchDay(ctx, "u1", "2026-01-27")
	repo.TouchDay(ctx, "u1", "2026-01-27")
	days, _ := repo.ActiveDays(ctx, "u1")
	if len(days) != 2 || days[0] != "2026-01-26" {
		t.Errorf("days = %v", days)
	}

	c, err := repo.Counts(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	want := Counts{LessonsCompleted: 1, TestsPassed: 1, Achievements: 1}
	if c != want {
		t.Errorf("counts = %+v, want %+v", c, want)
	}
}

func TestOpenServerRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenServer(context.Background(), "oracle", ""); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}
