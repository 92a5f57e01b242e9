package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Local tables: the TUI's event log and settings.
var (
	historyEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "kind", Type: field.TypeString},
		{Name: "run_id", Type: field.TypeString, Default: ""},
		{Name: "lesson_id", Type: field.TypeString, Default: ""},
		{Name: "test_id", Type: field.TypeString, Default: ""},
		{Name: "step", Type: field.TypeInt, Default: 0},
		{Name: "total_steps", Type: field.TypeInt, Default: 0},
		{Name: "score", Type: field.TypeInt, Default: 0},
		{Name: "total", Type: field.TypeInt, Default: 0},
		{Name: "percentage", Type: field.TypeInt, Default: 0},
		{Name: "passed", Type: field.TypeBool, Default: false},
	}
	historyEventsTable = &schema.Table{
		Name:       "history_events",
		Columns:    historyEventsColumns,
		PrimaryKey: []*schema.Column{historyEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "historyevent_timestamp", Columns: []*schema.Column{historyEventsColumns[2]}},
			{Name: "historyevent_kind", Columns: []*schema.Column{historyEventsColumns[3]}},
		},
	}

	llmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
	}
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmRequestEventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[5]}},
		},
	}

	settingsColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString, Size: 64},
		{Name: "value", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
	}
	settingsTable = &schema.Table{
		Name:       "settings",
		Columns:    settingsColumns,
		PrimaryKey: []*schema.Column{settingsColumns[0]},
	}

	localTables = []*schema.Table{historyEventsTable, llmRequestEventsTable, settingsTable}
)

// Server tables: accounts and what they achieved.
var (
	usersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "username", Type: field.TypeString, Unique: true, Size: 64},
		{Name: "email", Type: field.TypeString, Unique: true, Size: 255},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	usersTable = &schema.Table{
		Name:       "users",
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
	}

	lessonProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "lesson_id", Type: field.TypeString, Size: 64},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "current_step", Type: field.TypeInt, Default: 0},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
	}
	lessonProgressTable = &schema.Table{
		Name:       "lesson_progress",
		Columns:    lessonProgressColumns,
		PrimaryKey: []*schema.Column{lessonProgressColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "lesson_progress_users_progress",
			Columns:    []*schema.Column{lessonProgressColumns[1]},
			RefColumns: []*schema.Column{usersColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{
			{Name: "lessonprogress_user_id_lesson_id", Unique: true, Columns: []*schema.Column{lessonProgressColumns[1], lessonProgressColumns[2]}},
		},
	}

	achievementsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "name", Type: field.TypeString},
		{Name: "icon", Type: field.TypeString, Default: "🏆"},
		{Name: "earned_at", Type: field.TypeTime},
	}
	achievementsTable = &schema.Table{
		Name:       "achievements",
		Columns:    achievementsColumns,
		PrimaryKey: []*schema.Column{achievementsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "achievements_users_achievements",
			Columns:    []*schema.Column{achievementsColumns[1]},
			RefColumns: []*schema.Column{usersColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{
			{Name: "achievement_user_id_name", Unique: true, Columns: []*schema.Column{achievementsColumns[1], achievementsColumns[2]}},
		},
	}

	testResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "test_id", Type: field.TypeString, Size: 64},
		{Name: "score", Type: field.TypeInt},
		{Name: "total_questions", Type: field.TypeInt},
		{Name: "percentage", Type: field.TypeInt},
		{Name: "passed", Type: field.TypeBool},
		{Name: "completed_at", Type: field.TypeTime},
	}
	testResultsTable = &schema.Table{
		Name:       "test_results",
		Columns:    testResultsColumns,
		PrimaryKey: []*schema.Column{testResultsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "test_results_users_tests",
			Columns:    []*schema.Column{testResultsColumns[1]},
			RefColumns: []*schema.Column{usersColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{
			{Name: "testresult_user_id", Columns: []*schema.Column{testResultsColumns[1]}},
		},
	}

	activityDaysColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "day", Type: field.TypeString, Size: 10},
	}
	activityDaysTable = &schema.Table{
		Name:       "activity_days",
		Columns:    activityDaysColumns,
		PrimaryKey: []*schema.Column{activityDaysColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "activity_days_users_activity",
			Columns:    []*schema.Column{activityDaysColumns[1]},
			RefColumns: []*schema.Column{usersColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{
			{Name: "activityday_user_id_day", Unique: true, Columns: []*schema.Column{activityDaysColumns[1], activityDaysColumns[2]}},
		},
	}

	serverTables = []*schema.Table{usersTable, lessonProgressTable, achievementsTable, testResultsTable, activityDaysTable}
)

func init() {
	lessonProgressTable.ForeignKeys[0].RefTable = usersTable
	achievementsTable.ForeignKeys[0].RefTable = usersTable
	testResultsTable.ForeignKeys[0].RefTable = usersTable
	activityDaysTable.ForeignKeys[0].RefTable = usersTable
}

// migrate creates missing tables, columns and indexes.
func (s *Store) migrate(ctx context.Context, tables ...*schema.Table) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}
