// Package alert turns a client's current-week signals into coach alerts.
package alert

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/analytics"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/checkin"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/cycle"
)

// Kind identifies the rule that fired.
type Kind string

const (
	KindOverdue       Kind = "overdue"
	KindLowEngagement Kind = "low_engagement"
	KindLowAlignment  Kind = "low_alignment"
)

// Severity ranks alerts for display.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Alert is derived on every read and never stored.
type Alert struct {
	Kind     Kind
	Message  string
	Severity Severity
}

// Rules holds the alert cut-offs.
type Rules struct {
	OverdueHighCount       int     `yaml:"overdue_high_count"`
	LowEngagementRate      float64 `yaml:"low_engagement_rate"`
	CriticalEngagementRate float64 `yaml:"critical_engagement_rate"`
	EngagementMinWeek      int     `yaml:"engagement_min_week"`
	AlignmentLookbackWeeks int     `yaml:"alignment_lookback_weeks"`
	LowAlignmentWeeks      int     `yaml:"low_alignment_weeks"`
	HighAlignmentWeeks     int     `yaml:"high_alignment_weeks"`
}

// DefaultRules returns the production rule table.
func DefaultRules() Rules {
	return Rules{
		OverdueHighCount:       2,
		LowEngagementRate:      0.7,
		CriticalEngagementRate: 0.5,
		EngagementMinWeek:      2,
		AlignmentLookbackWeeks: 4,
		LowAlignmentWeeks:      3,
		HighAlignmentWeeks:     4,
	}
}

var ErrInvalidRules = errors.New("invalid alert rules")

// Validate checks the cut-offs are ordered and in range.
func (r Rules) Validate() error {
	switch {
	case r.OverdueHighCount < 1:
		return fmt.Errorf("%w: overdue_high_count must be >= 1", ErrInvalidRules)
	case r.CriticalEngagementRate < 0 || r.LowEngagementRate > 1 || r.CriticalEngagementRate > r.LowEngagementRate:
		return fmt.Errorf("%w: need 0 <= critical_engagement_rate <= low_engagement_rate <= 1", ErrInvalidRules)
	case r.AlignmentLookbackWeeks < 1:
		return fmt.Errorf("%w: alignment_lookback_weeks must be >= 1", ErrInvalidRules)
	case r.LowAlignmentWeeks < 1 || r.HighAlignmentWeeks < r.LowAlignmentWeeks:
		return fmt.Errorf("%w: need 1 <= low_alignment_weeks <= high_alignment_weeks", ErrInvalidRules)
	}
	return nil
}

// Input is the slice of a client's state the rules look at.
type Input struct {
	Week        int
	Schedule    checkin.WeeklySchedule
	Streak      checkin.StreakSummary
	Reflections []checkin.Reflection
	Feedback    []checkin.Feedback
	Now         time.Time
}

// Generate evaluates the rule table for the current week and returns alerts
// highest severity first.
func Generate(in Input, rules Rules, th analytics.Thresholds) []Alert {
	var alerts []Alert
	if a, ok := overdue(in, rules); ok {
		alerts = append(alerts, a)
	}
	if a, ok := lowEngagement(in, rules); ok {
		alerts = append(alerts, a)
	}
	if a, ok := lowAlignment(in, rules, th); ok {
		alerts = append(alerts, a)
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.rank() > alerts[j].Severity.rank()
	})
	return alerts
}

// overdue counts slots already missed, or open with their day behind us.
// Slots due today are not overdue yet.
func overdue(in Input, rules Rules) (Alert, bool) {
	var days []cycle.Weekday
	for _, slot := range in.Schedule.Slots {
		today := cycle.Midnight(in.Now.In(slot.Date.Location()))
		switch {
		case slot.State == checkin.StateMissed:
			days = append(days, slot.Day)
		case slot.State == checkin.StateOpen && cycle.Midnight(slot.Date).Before(today):
			days = append(days, slot.Day)
		}
	}
	if len(days) == 0 {
		return Alert{}, false
	}
	severity := SeverityMedium
	if len(days) >= rules.OverdueHighCount {
		severity = SeverityHigh
	}
	return Alert{
		Kind:     KindOverdue,
		Severity: severity,
		Message:  fmt.Sprintf("%d check-in(s) overdue in week %d (%s)", len(days), in.Week, cycle.Cadence(days)),
	}, true
}

func lowEngagement(in Input, rules Rules) (Alert, bool) {
	if in.Week < rules.EngagementMinWeek {
		return Alert{}, false
	}
	rate, ok := in.Streak.CompletionRate()
	if !ok || rate >= rules.LowEngagementRate {
		return Alert{}, false
	}
	severity := SeverityMedium
	if rate < rules.CriticalEngagementRate {
		severity = SeverityHigh
	}
	return Alert{
		Kind:     KindLowEngagement,
		Severity: severity,
		Message: fmt.Sprintf("completion rate %.0f%% (%d of %d check-ins)",
			rate*100, in.Streak.TotalCompleted, in.Streak.TotalExpected),
	}, true
}

func lowAlignment(in Input, rules Rules, th analytics.Thresholds) (Alert, bool) {
	from := in.Week - rules.AlignmentLookbackWeeks + 1
	if from < 1 {
		from = 1
	}
	weeks := analytics.MisalignedWeeks(in.Reflections, in.Feedback, from, in.Week, th)
	if weeks < rules.LowAlignmentWeeks {
		return Alert{}, false
	}
	severity := SeverityMedium
	if weeks >= rules.HighAlignmentWeeks {
		severity = SeverityHigh
	}
	return Alert{
		Kind:     KindLowAlignment,
		Severity: severity,
		Message: fmt.Sprintf("self-ratings differ from stakeholders by more than %.1f points in %d of the last %d weeks",
			th.AlignmentGap, weeks, in.Week-from+1),
	}, true
}
