package api

import "time"

// User is the public part of an account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse answers register, login and verify.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	User    User   `json:"user"`
}

// LessonProgress is one lesson row of a user's progress.
type LessonProgress struct {
	LessonID    string     `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	CurrentStep int        `json:"current_step"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type LessonProgressRequest struct {
	LessonID    string `json:"lessonId"`
	Completed   bool   `json:"completed"`
	CurrentStep int    `json:"currentStep"`
}

type ProgressResponse struct {
	Success  bool             `json:"success"`
	Progress []LessonProgress `json:"progress"`
}

type Achievement struct {
	ID       int64     `json:"id"`
	Name     string    `json:"achievement_name"`
	Icon     string    `json:"achievement_icon"`
	EarnedAt time.Time `json:"earned_at"`
}

type AchievementRequest struct {
	Name string `json:"achievementName"`
	Icon string `json:"achievementIcon"`
}

type AchievementsResponse struct {
	Success      bool          `json:"success"`
	Achievements []Achievement `json:"achievements"`
}

type TestResult struct {
	ID             int64     `json:"id"`
	TestID         string    `json:"test_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	Passed         bool      `json:"passed"`
	CompletedAt    time.Time `json:"completed_at"`
}

type TestResultRequest struct {
	TestID         string `json:"testId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Percentage     int    `json:"percentage"`
	Passed         bool   `json:"passed"`
}

type TestResultsResponse struct {
	Success bool         `json:"success"`
	Results []TestResult `json:"results"`
}

// Stats are the per-user counters shown on the profile.
type Stats struct {
	LessonsCompleted int    `json:"total_lessons_completed"`
	TestsPassed      int    `json:"total_tests_passed"`
	Achievements     int    `json:"total_achievements"`
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date,omitempty"`
}

type StatsResponse struct {
	Success bool  `json:"success"`
	Stats   Stats `json:"stats"`
}

type Dashboard struct {
	User               User             `json:"user"`
	Stats              Stats            `json:"stats"`
	RecentLessons      []LessonProgress `json:"recentLessons"`
	RecentAchievements []Achievement    `json:"recentAchievements"`
	RecentTests        []TestResult     `json:"recentTests"`
}

type DashboardResponse struct {
	Success   bool      `json:"success"`
	Dashboard Dashboard `json:"dashboard"`
}

// MessageResponse is the body of writes and of every error.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
