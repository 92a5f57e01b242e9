package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/abhisek/cifra/internal/api"
	"github.com/abhisek/cifra/internal/stats"
	"github.com/abhisek/cifra/internal/store"
)

const recentLimit = 5

// GET /progress
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	rows, err := s.progress.Lessons(r.Context(), userID(r.Context()), 0)
	if err != nil {
		s.internal(w, "load progress", err)
		return
	}
	writeJSON(w, http.StatusOK, api.ProgressResponse{Success: true, Progress: lessonsOut(rows)})
}

// POST /progress/lesson
func (s *Server) handleSaveLesson(w http.ResponseWriter, r *http.Request) {
	var req api.LessonProgressRequest
	if !decode(w, r, &req) {
		return
	}
	req.LessonID = strings.TrimSpace(req.LessonID)
	if req.LessonID == "" {
		writeErr(w, http.StatusBadRequest, "Не указан урок")
		return
	}
	if req.CurrentStep < 0 {
		writeErr(w, http.StatusBadRequest, "Некорректный шаг урока")
		return
	}
	ctx, uid := r.Context(), userID(r.Context())
	now := s.now().UTC()
	p := store.LessonProgress{
		LessonID:    req.LessonID,
		Completed:   req.Completed,
		CurrentStep: req.CurrentStep,
		UpdatedAt:   now,
	}
	if req.Completed {
		p.CompletedAt = &now
	}
	if err := s.progress.SaveLesson(ctx, uid, p); err != nil {
		s.internal(w, "save lesson progress", err)
		return
	}
	s.touch(ctx, uid)
	writeOK(w, "Прогресс сохранён")
}

// GET /achievements
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	rows, err := s.progress.Achievements(r.Context(), userID(r.Context()), 0)
	if err != nil {
		s.internal(w, "load achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, api.AchievementsResponse{Success: true, Achievements: achievementsOut(rows)})
}

// POST /achievements. Earning a badge twice is not an error.
func (s *Server) handleAddAchievement(w http.ResponseWriter, r *http.Request) {
	var req api.AchievementRequest
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeErr(w, http.StatusBadRequest, "Не указано достижение")
		return
	}
	ctx, uid := r.Context(), userID(r.Context())
	added, err := s.progress.AddAchievement(ctx, uid, store.Achievement{
		Name:     req.Name,
		Icon:     req.Icon,
		EarnedAt: s.now().UTC(),
	})
	if err != nil {
		s.internal(w, "add achievement", err)
		return
	}
	if !added {
		writeOK(w, "Достижение уже получено")
		return
	}
	s.touch(ctx, uid)
	writeOK(w, "Достижение добавлено")
}

// POST /tests/result
func (s *Server) handleSaveTestResult(w http.ResponseWriter, r *http.Request) {
	var req api.TestResultRequest
	if !decode(w, r, &req) {
		return
	}
	req.TestID = strings.TrimSpace(req.TestID)
	switch {
	case req.TestID == "":
		writeErr(w, http.StatusBadRequest, "Не указан тест")
		return
	case req.TotalQuestions <= 0 || req.Score < 0 || req.Score > req.TotalQuestions:
		writeErr(w, http.StatusBadRequest, "Некорректный результат теста")
		return
	case req.Percentage < 0 || req.Percentage > 100:
		writeErr(w, http.StatusBadRequest, "Некорректный процент")
		return
	}
	ctx, uid := r.Context(), userID(r.Context())
	err := s.progress.AddTestResult(ctx, uid, store.TestResult{
		TestID:         req.TestID,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
		Percentage:     req.Percentage,
		Passed:         req.Passed,
		CompletedAt:    s.now().UTC(),
	})
	if err != nil {
		s.internal(w, "save test result", err)
		return
	}
	s.touch(ctx, uid)
	writeOK(w, "Результат сохранён")
}

// GET /tests/results
func (s *Server) handleTestResults(w http.ResponseWriter, r *http.Request) {
	rows, err := s.progress.TestResults(r.Context(), userID(r.Context()), 0)
	if err != nil {
		s.internal(w, "load test results", err)
		return
	}
	writeJSON(w, http.StatusOK, api.TestResultsResponse{Success: true, Results: testsOut(rows)})
}

// GET /stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats(r.Context(), userID(r.Context()))
	if err != nil {
		s.internal(w, "load stats", err)
		return
	}
	writeJSON(w, http.StatusOK, api.StatsResponse{Success: true, Stats: st})
}

// GET /dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, uid := r.Context(), userID(r.Context())
	u, err := s.users.ByID(ctx, uid)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "Пользователь не найден")
		return
	}
	st, err := s.stats(ctx, uid)
	if err != nil {
		s.internal(w, "load stats", err)
		return
	}
	lessons, err := s.progress.Lessons(ctx, uid, recentLimit)
	if err != nil {
		s.internal(w, "load progress", err)
		return
	}
	achievements, err := s.progress.Achievements(ctx, uid, recentLimit)
	if err != nil {
		s.internal(w, "load achievements", err)
		return
	}
	tests, err := s.progress.TestResults(ctx, uid, recentLimit)
	if err != nil {
		s.internal(w, "load test results", err)
		return
	}
	writeJSON(w, http.StatusOK, api.DashboardResponse{
		Success: true,
		Dashboard: api.Dashboard{
			User:               publicUser(u),
			Stats:              st,
			RecentLessons:      lessonsOut(lessons),
			RecentAchievements: achievementsOut(achievements),
			RecentTests:        testsOut(tests),
		},
	})
}

func (s *Server) stats(ctx context.Context, uid string) (api.Stats, error) {
	c, err := s.progress.Counts(ctx, uid)
	if err != nil {
		return api.Stats{}, err
	}
	days, err := s.progress.ActiveDays(ctx, uid)
	if err != nil {
		return api.Stats{}, err
	}
	cur, longest := stats.Streaks(days, s.now())
	st := api.Stats{
		LessonsCompleted: c.LessonsCompleted,
		TestsPassed:      c.TestsPassed,
		Achievements:     c.Achievements,
		CurrentStreak:    cur,
		LongestStreak:    longest,
	}
	if len(days) > 0 {
		st.LastActivityDate = days[len(days)-1]
	}
	return st, nil
}

// touch marks today active for the streak. A failure only costs streak
// accuracy, so the write that triggered it still succeeds.
func (s *Server) touch(ctx context.Context, uid string) {
	if err := s.progress.TouchDay(ctx, uid, stats.Day(s.now())); err != nil {
		s.log.Warn("touch activity day", "user_id", uid, "error", fmt.Sprint(err))
	}
}

func lessonsOut(rows []store.LessonProgress) []api.LessonProgress {
	out := make([]api.LessonProgress, 0, len(rows))
	for _, p := range rows {
		out = append(out, api.LessonProgress{
			LessonID:    p.LessonID,
			Completed:   p.Completed,
			CurrentStep: p.CurrentStep,
			CompletedAt: p.CompletedAt,
		})
	}
	return out
}

func achievementsOut(rows []store.Achievement) []api.Achievement {
	out := make([]api.Achievement, 0, len(rows))
	for _, a := range rows {
		out = append(out, api.Achievement{ID: a.ID, Name: a.Name, Icon: a.Icon, EarnedAt: a.EarnedAt})
	}
	return out
}

func testsOut(rows []store.TestResult) []api.TestResult {
	out := make([]api.TestResult, 0, len(rows))
	for _, t := range rows {
		out = append(out, api.TestResult{
			ID:             t.ID,
			TestID:         t.TestID,
			Score:          t.Score,
			TotalQuestions: t.TotalQuestions,
			Percentage:     t.Percentage,
			Passed:         t.Passed,
			CompletedAt:    t.CompletedAt,
		})
	}
	return out
}
