// Package stats computes learner streaks and milestones from daily activity.
package stats

import (
	"slices"
	"time"
)

// DayLayout is how activity days are keyed.
const DayLayout = "2006-01-02"

// Day returns the activity key of t in its own location.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// Streaks returns the current and the longest run of consecutive active
// days. The current streak is still alive when the last active day is today
// or yesterday. Unparseable and duplicate days are ignored.
func Streaks(days []string, today time.Time) (current, longest int) {
	parsed := make([]time.Time, 0, len(days))
	for _, d := range days {
		t, err := time.Parse(DayLayout, d)
		if err != nil {
			continue
		}
		parsed = append(parsed, t)
	}
	if len(parsed) == 0 {
		return 0, 0
	}
	slices.SortFunc(parsed, func(a, b time.Time) int { return a.Compare(b) })
	parsed = slices.Compact(parsed)

	run := 1
	longest = 1
	for i := 1; i < len(parsed); i++ {
		if parsed[i].Sub(parsed[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	t0, _ := time.Parse(DayLayout, Day(today))
	gap := t0.Sub(parsed[len(parsed)-1])
	if gap <= 24*time.Hour && gap >= 0 {
		current = run
	}
	return current, longest
}

// Milestones are the streak lengths worth celebrating.
var Milestones = []int{3, 7, 14, 30}

// NextStreakThreshold returns the next milestone above the current streak.
func NextStreakThreshold(current int) int {
	for _, m := range Milestones {
		if m > current {
			return m
		}
	}
	// Beyond a month, every 30 days.
	return ((current / 30) + 1) * 30
}
