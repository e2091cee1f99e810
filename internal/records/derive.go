package records

import (
	"math"
	"time"
)

// Severity tiers for driver safety classification, ordered worst-first by
// business rule, not statistics. Classification is first-match-wins down the
// tier list so exactly one tier applies to any input.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityHigh
	SeverityMedium
	SeverityLow
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// RiskThresholds holds the business-defined cut points for event-count risk.
type RiskThresholds struct {
	// SecondaryHotCount is the combined secondary-event count above which
	// a driver is high risk even without a high-risk event.
	SecondaryHotCount int64
}

// ClassifyRisk maps event counts to a severity tier. Evaluation order is
// fixed: any high-risk event wins, then the combined secondary count against
// the hot threshold, then any secondary activity at all.
func ClassifyRisk(highRiskEvents, secondaryEvents int64, t RiskThresholds) Severity {
	switch {
	case highRiskEvents > 0:
		return SeverityCritical
	case secondaryEvents > t.SecondaryHotCount:
		return SeverityHigh
	case secondaryEvents > 0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Urgency tiers for date-based compliance classification, ordered worst-first.
type Urgency int

const (
	UrgencyOverdue Urgency = iota
	UrgencyDueSoon
	UrgencyDueLater
	UrgencyScheduled
)

func (u Urgency) String() string {
	switch u {
	case UrgencyOverdue:
		return "overdue"
	case UrgencyDueSoon:
		return "due_soon"
	case UrgencyDueLater:
		return "due_later"
	default:
		return "scheduled"
	}
}

// DueWindows holds the day-offset cut points for date urgency.
type DueWindows struct {
	DueSoonDays  int
	DueLaterDays int
}

// ClassifyDueDate buckets a due date relative to now using whole days,
// floor((due-now)/24h). A nil due date is excluded from urgency entirely
// (ok=false) rather than defaulting to a tier.
func ClassifyDueDate(due *time.Time, now time.Time, w DueWindows) (Urgency, bool) {
	if due == nil || due.IsZero() {
		return UrgencyScheduled, false
	}
	days := int(math.Floor(due.Sub(now).Hours() / 24))
	switch {
	case days < 0:
		return UrgencyOverdue, true
	case days <= w.DueSoonDays:
		return UrgencyDueSoon, true
	case days <= w.DueLaterDays:
		return UrgencyDueLater, true
	default:
		return UrgencyScheduled, true
	}
}

// LevelStatus tiers for tank fill classification, ordered worst-first.
type LevelStatus int

const (
	LevelCritical LevelStatus = iota
	LevelLow
	LevelWatch
	LevelOK
)

func (l LevelStatus) String() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelLow:
		return "low"
	case LevelWatch:
		return "watch"
	default:
		return "ok"
	}
}

// TankThresholds holds percent-full cut points for tank level status.
type TankThresholds struct {
	CriticalPercent float64
	LowPercent      float64
	WatchPercent    float64
}

// ClassifyTankLevel maps a percent-full reading to a level tier,
// first-match-wins from the most severe threshold down.
func ClassifyTankLevel(percent float64, t TankThresholds) LevelStatus {
	switch {
	case percent < t.CriticalPercent:
		return LevelCritical
	case percent < t.LowPercent:
		return LevelLow
	case percent < t.WatchPercent:
		return LevelWatch
	default:
		return LevelOK
	}
}
