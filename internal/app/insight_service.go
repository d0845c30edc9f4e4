package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/alert"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/analytics"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/checkin"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/coaching"
)

// ClientReport is everything the engine derives for one client cycle at one
// point in time. It is rebuilt on every read.
type ClientReport struct {
	CycleID           int64
	CoachID           int64
	ClientName        string
	Week              int
	Started           bool
	Ended             bool
	Schedule          checkin.WeeklySchedule
	Streak            checkin.StreakSummary
	Analytics         analytics.Summary
	Gaps              []analytics.PerceptionGap
	SignificantGaps   []analytics.PerceptionGap
	StakeholderTrends []analytics.StakeholderTrend
	Alerts            []alert.Alert
	GeneratedAt       time.Time
}

// InsightService runs the cadence and analytics engine over cycle snapshots.
type InsightService struct {
	snapshots  coaching.SnapshotRepository
	thresholds analytics.Thresholds
	rules      alert.Rules
	logger     *logrus.Entry
}

func NewInsightService(
	snapshots coaching.SnapshotRepository,
	thresholds analytics.Thresholds,
	rules alert.Rules,
	logger *logrus.Entry,
) *InsightService {
	return &InsightService{
		snapshots:  snapshots,
		thresholds: thresholds,
		rules:      rules,
		logger:     logger,
	}
}

// Evaluate derives the full report from a snapshot. It performs no I/O.
func (s *InsightService) Evaluate(snap *coaching.Snapshot, now time.Time) *ClientReport {
	c := snap.Cycle
	week := c.CurrentWeek(now)

	history := checkin.BuildHistory(c, week, checkin.IndexSubmissions(snap.Reflections), now)
	schedule := history[len(history)-1]
	streak := checkin.Summarize(history)

	gaps := analytics.WeeklyGaps(snap.Reflections, snap.Feedback, week)

	return &ClientReport{
		CycleID:           c.ID,
		CoachID:           c.CoachID,
		ClientName:        snap.ClientName,
		Week:              week,
		Started:           !c.BeforeStart(now),
		Ended:             c.HasEnded(now),
		Schedule:          schedule,
		Streak:            streak,
		Analytics:         analytics.Summarize(c, week, snap.Reflections, snap.Feedback, snap.Stakeholders, s.thresholds),
		Gaps:              gaps,
		SignificantGaps:   analytics.FindSignificantGaps(gaps, s.thresholds.SignificantGap),
		StakeholderTrends: analytics.StakeholderTrends(snap.Stakeholders, snap.Reflections, snap.Feedback, s.thresholds),
		Alerts: alert.Generate(alert.Input{
			Week:        week,
			Schedule:    schedule,
			Streak:      streak,
			Reflections: snap.Reflections,
			Feedback:    snap.Feedback,
			Now:         now,
		}, s.rules, s.thresholds),
		GeneratedAt: now,
	}
}

// ReportForCycle loads one snapshot and evaluates it.
func (s *InsightService) ReportForCycle(ctx context.Context, cycleID int64, now time.Time) (*ClientReport, error) {
	snap, err := s.snapshots.LoadSnapshot(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for cycle %d: %w", cycleID, err)
	}
	report := s.Evaluate(snap, now)
	s.logger.WithFields(logrus.Fields{
		"cycle_id": cycleID,
		"week":     report.Week,
		"alerts":   len(report.Alerts),
	}).Debug("Client report evaluated")
	return report, nil
}
