package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// EventKind names what happened in a history event.
type EventKind string

const (
	EventLessonStarted   EventKind = "lesson_started"
	EventLessonCompleted EventKind = "lesson_completed"
	EventLessonAbandoned EventKind = "lesson_abandoned"
	EventTestFinished    EventKind = "test_finished"
	EventHintRequested   EventKind = "hint_requested"
)

// HistoryEvent is one entry of the local learning log. Lesson events use
// the step fields, test events the score fields.
type HistoryEvent struct {
	Sequence   int64
	Timestamp  time.Time
	Kind       EventKind
	RunID      string
	LessonID   string
	TestID     string
	Step       int
	TotalSteps int
	Score      int
	Total      int
	Percentage int
	Passed     bool
}

var historyColumns = []string{
	"sequence", "timestamp", "kind", "run_id", "lesson_id", "test_id",
	"step", "total_steps", "score", "total", "percentage", "passed",
}

func (r *eventRepo) AppendHistory(ctx context.Context, ev HistoryEvent) error {
	seqNum, err := r.s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	ins := r.s.builder().Insert(historyEventsTable.Name).
		Columns(historyColumns...).
		Values(seqNum, ts.UTC(), string(ev.Kind), ev.RunID, ev.LessonID, ev.TestID,
			ev.Step, ev.TotalSteps, ev.Score, ev.Total, ev.Percentage, ev.Passed)
	if err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("save history event: %w", err)
	}
	return nil
}

func (r *eventRepo) History(ctx context.Context, opts QueryOpts) ([]HistoryEvent, error) {
	sel := r.s.builder().Select(historyColumns...).
		From(entsql.Table(historyEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if p := eventFilter(opts); p != nil {
		sel.Where(p)
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEvent
	for rows.Next() {
		var (
			ev   HistoryEvent
			kind string
		)
		if err := rows.Scan(&ev.Sequence, &ev.Timestamp, &kind, &ev.RunID, &ev.LessonID, &ev.TestID,
			&ev.Step, &ev.TotalSteps, &ev.Score, &ev.Total, &ev.Percentage, &ev.Passed); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		ev.Kind = EventKind(kind)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) ClearHistory(ctx context.Context) error {
	if err := r.s.exec(ctx, r.s.builder().Delete(historyEventsTable.Name)); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
