package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// LessonProgress is a user's state in one lesson.
type LessonProgress struct {
	LessonID    string
	Completed   bool
	CurrentStep int
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// Achievement is an earned badge.
type Achievement struct {
	ID       int64
	Name     string
	Icon     string
	EarnedAt time.Time
}

// TestResult is one submitted test run.
type TestResult struct {
	ID             int64
	TestID         string
	Score          int
	TotalQuestions int
	Percentage     int
	Passed         bool
	CompletedAt    time.Time
}

// Counts are per-user totals.
type Counts struct {
	LessonsCompleted int
	TestsPassed      int
	Achievements     int
}

// ProgressRepo manages what backend users achieved.
type ProgressRepo interface {
	// SaveLesson upserts the user's row for the lesson. A completed lesson
	// stays completed and keeps its first completion time.
	SaveLesson(ctx context.Context, userID string, p LessonProgress) error
	Lessons(ctx context.Context, userID string, limit int) ([]LessonProgress, error)

	// AddAchievement stores the badge unless the user already has it and
	// reports whether it was new.
	AddAchievement(ctx context.Context, userID string, a Achievement) (bool, error)
	Achievements(ctx context.Context, userID string, limit int) ([]Achievement, error)

	AddTestResult(ctx context.Context, userID string, r TestResult) error
	TestResults(ctx context.Context, userID string, limit int) ([]TestResult, error)

	// TouchDay marks day (YYYY-MM-DD) as active.
	TouchDay(ctx context.Context, userID, day string) error
	ActiveDays(ctx context.Context, userID string) ([]string, error)

	Counts(ctx context.Context, userID string) (Counts, error)
}

type progressRepo struct {
	s *Store
}

func (s *Store) ProgressRepo() ProgressRepo {
	return &progressRepo{s: s}
}

func (r *progressRepo) SaveLesson(ctx context.Context, userID string, p LessonProgress) error {
	now := time.Now().UTC()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	var completedAt any
	if p.Completed {
		at := now
		if p.CompletedAt != nil {
			at = p.CompletedAt.UTC()
		}
		completedAt = at
	}

	ins := r.s.builder().Insert(lessonProgressTable.Name).
		Columns("user_id", "lesson_id", "completed", "current_step", "completed_at", "updated_at").
		Values(userID, p.LessonID, p.Completed, p.CurrentStep, completedAt, p.UpdatedAt).
		OnConflict(
			entsql.ConflictColumns("user_id", "lesson_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("current_step")
				u.SetExcluded("updated_at")
				if p.Completed {
					u.Set("completed", true)
				}
			}),
		)
	if err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("save lesson progress: %w", err)
	}

	if p.Completed {
		// First completion wins.
		upd := r.s.builder().Update(lessonProgressTable.Name).
			Set("completed_at", completedAt).
			Where(entsql.And(
				entsql.EQ("user_id", userID),
				entsql.EQ("lesson_id", p.LessonID),
				entsql.IsNull("completed_at"),
			))
		if err := r.s.exec(ctx, upd); err != nil {
			return fmt.Errorf("stamp lesson completion: %w", err)
		}
	}
	return nil
}

func (r *progressRepo) Lessons(ctx context.Context, userID string, limit int) ([]LessonProgress, error) {
	sel := r.s.builder().Select("lesson_id", "completed", "current_step", "completed_at", "updated_at").
		From(entsql.Table(lessonProgressTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("updated_at"), entsql.Asc("lesson_id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query lesson progress: %w", err)
	}
	defer rows.Close()

	var out []LessonProgress
	for rows.Next() {
		var (
			p  LessonProgress
			at sql.NullTime
		)
		if err := rows.Scan(&p.LessonID, &p.Completed, &p.CurrentStep, &at, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lesson progress: %w", err)
		}
		if at.Valid {
			t := at.Time
			p.CompletedAt = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *progressRepo) AddAchievement(ctx context.Context, userID string, a Achievement) (bool, error) {
	if a.EarnedAt.IsZero() {
		a.EarnedAt = time.Now().UTC()
	}
	if a.Icon == "" {
		a.Icon = "🏆"
	}
	ins := r.s.builder().Insert(achievementsTable.Name).
		Columns("user_id", "name", "icon", "earned_at").
		Values(userID, a.Name, a.Icon, a.EarnedAt).
		OnConflict(entsql.ConflictColumns("user_id", "name"), entsql.DoNothing())
	query, args := ins.Query()
	res, err := r.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("add achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add achievement: %w", err)
	}
	return n > 0, nil
}

func (r *progressRepo) Achievements(ctx context.Context, userID string, limit int) ([]Achievement, error) {
	sel := r.s.builder().Select("id", "name", "icon", "earned_at").
		From(entsql.Table(achievementsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("earned_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	var out []Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Icon, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *progressRepo) AddTestResult(ctx context.Context, userID string, t TestResult) error {
	if t.CompletedAt.IsZero() {
		t.CompletedAt = time.Now().UTC()
	}
	ins := r.s.builder().Insert(testResultsTable.Name).
		Columns("user_id", "test_id", "score", "total_questions", "percentage", "passed", "completed_at").
		Values(userID, t.TestID, t.Score, t.TotalQuestions, t.Percentage, t.Passed, t.CompletedAt)
	if err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("add test result: %w", err)
	}
	return nil
}

func (r *progressRepo) TestResults(ctx context.Context, userID string, limit int) ([]TestResult, error) {
	sel := r.s.builder().Select("id", "test_id", "score", "total_questions", "percentage", "passed", "completed_at").
		From(entsql.Table(testResultsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("completed_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query test results: %w", err)
	}
	defer rows.Close()

	var out []TestResult
	for rows.Next() {
		var t TestResult
		if err := rows.Scan(&t.ID, &t.TestID, &t.Score, &t.TotalQuestions, &t.Percentage, &t.Passed, &t.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan test result: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *progressRepo) TouchDay(ctx context.Context, userID, day string) error {
	ins := r.s.builder().Insert(activityDaysTable.Name).
		Columns("user_id", "day").
		Values(userID, day).
		OnConflict(entsql.ConflictColumns("user_id", "day"), entsql.DoNothing())
	if err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("touch activity day: %w", err)
	}
	return nil
}

func (r *progressRepo) ActiveDays(ctx context.Context, userID string) ([]string, error) {
	sel := r.s.builder().Select("day").
		From(entsql.Table(activityDaysTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Asc("day"))
	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query activity days: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan activity day: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *progressRepo) Counts(ctx context.Context, userID string) (Counts, error) {
	var c Counts
	queries := []struct {
		dst   *int
		table string
		where *entsql.Predicate
	}{
		{&c.LessonsCompleted, lessonProgressTable.Name, entsql.And(entsql.EQ("user_id", userID), entsql.EQ("completed", true))},
		{&c.TestsPassed, testResultsTable.Name, entsql.And(entsql.EQ("user_id", userID), entsql.EQ("passed", true))},
		{&c.Achievements, achievementsTable.Name, entsql.EQ("user_id", userID)},
	}
	for _, q := range queries {
		col := "*"
		if q.table == testResultsTable.Name {
			col = "DISTINCT test_id"
		}
		sel := r.s.builder().Select(entsql.Count(col)).
			From(entsql.Table(q.table)).
			Where(q.where)
		query, args := sel.Query()
		if err := r.s.db.QueryRowContext(ctx, query, args...).Scan(q.dst); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return c, nil
}
