package records

import (
	"testing"
	"time"
)

func TestClassifyRisk(t *testing.T) {
	th := RiskThresholds{SecondaryHotCount: 3}
	cases := []struct {
		name      string
		high, sec int64
		want      Severity
	}{
		{"high risk event wins", 1, 0, SeverityCritical},
		{"high risk event beats secondary count", 2, 10, SeverityCritical},
		{"secondary above threshold", 0, 4, SeverityHigh},
		{"secondary at threshold is not hot", 0, 3, SeverityMedium},
		{"any secondary activity", 0, 1, SeverityMedium},
		{"clean record", 0, 0, SeverityLow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ClassifyRisk(c.high, c.sec, th); got != c.want {
				t.Fatalf("ClassifyRisk(%d, %d): want %s, got %s", c.high, c.sec, c.want, got)
			}
		})
	}
}

func TestClassifyDueDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	w := DueWindows{DueSoonDays: 7, DueLaterDays: 30}

	day := func(offset int) *time.Time {
		t := now.Add(time.Duration(offset) * 24 * time.Hour)
		return &t
	}

	cases := []struct {
		name string
		due  *time.Time
		want Urgency
		ok   bool
	}{
		{"missing date excluded", nil, UrgencyScheduled, false},
		{"yesterday is overdue", day(-1), UrgencyOverdue, true},
		{"today is due soon", day(0), UrgencyDueSoon, true},
		{"window edge is due soon", day(7), UrgencyDueSoon, true},
		{"inside later window", day(8), UrgencyDueLater, true},
		{"later edge", day(30), UrgencyDueLater, true},
		{"beyond windows", day(31), UrgencyScheduled, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := ClassifyDueDate(c.due, now, w)
			if ok != c.ok {
				t.Fatalf("ok: want %v, got %v", c.ok, ok)
			}
			if ok && got != c.want {
				t.Fatalf("want %s, got %s", c.want, got)
			}
		})
	}
}

func TestClassifyDueDatePartialDayFloors(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	w := DueWindows{DueSoonDays: 7, DueLaterDays: 30}

	// Due 6 hours ago: floor(-0.25 days) = -1, so overdue.
	due := now.Add(-6 * time.Hour)
	got, ok := ClassifyDueDate(&due, now, w)
	if !ok || got != UrgencyOverdue {
		t.Fatalf("expected overdue for a due date earlier today, got %s (ok=%v)", got, ok)
	}
}

func TestClassifyTankLevel(t *testing.T) {
	th := TankThresholds{CriticalPercent: 10, LowPercent: 25, WatchPercent: 40}
	cases := []struct {
		percent float64
		want    LevelStatus
	}{
		{5, LevelCritical},
		{9.99, LevelCritical},
		{10, LevelLow},
		{24.9, LevelLow},
		{25, LevelWatch},
		{39.9, LevelWatch},
		{40, LevelOK},
		{95, LevelOK},
	}
	for _, c := range cases {
		if got := ClassifyTankLevel(c.percent, th); got != c.want {
			t.Fatalf("ClassifyTankLevel(%v): want %s, got %s", c.percent, c.want, got)
		}
	}
}
