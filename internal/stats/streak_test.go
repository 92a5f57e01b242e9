package stats

import (
	"testing"
	"time"
)

func TestNextStreakThreshold(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{0, 3},
		{2, 3},
		{3, 7},
		{6, 7},
		{7, 14},
		{13, 14},
		{14, 30},
		{29, 30},
		{30, 60},
		{59, 60},
		{61, 90},
	}

	for _, tt := range tests {
		got := NextStreakThreshold(tt.current)
		if got != tt.want {
			t.Errorf("NextStreakThreshold(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestStreaks(t *testing.T) {
	today := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		days    []string
		current int
		longest int
	}{
		{"none", nil, 0, 0},
		{"today only", []string{"2026-03-10"}, 1, 1},
		{"yesterday keeps it alive", []string{"2026-03-08", "2026-03-09"}, 2, 2},
		{"broken two days ago", []string{"2026-03-07", "2026-03-08"}, 0, 2},
		{"gap resets", []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-09", "2026-03-10"}, 2, 3},
		{"unordered with duplicates", []string{"2026-03-10", "2026-03-09", "2026-03-10", "bogus"}, 2, 2},
		{"across a month", []string{"2026-02-28", "2026-03-01"}, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, long := Streaks(tt.days, today)
			if cur != tt.current || long != tt.longest {
				t.Errorf("Streaks = (%d, %d), want (%d, %d)", cur, long, tt.current, tt.longest)
			}
		})
	}
}

func TestDay(t *testing.T) {
	if got := Day(time.Date(2026, 1, 2, 23, 59, 0, 0, time.UTC)); got != "2026-01-02" {
		t.Errorf("Day = %q", got)
	}
}
