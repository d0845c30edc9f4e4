package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/coach"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/coaching"
)

// DigestStats summarizes one digest run.
type DigestStats struct {
	RunID    string
	Coaches  int
	Clients  int
	Alerts   int
	Sent     int
	Failures int
}

// DigestService sends each active coach a daily summary of their clients.
type DigestService struct {
	coaches   coach.Repository
	snapshots coaching.SnapshotRepository
	insights  *InsightService
	notifier  Notifier
	recorder  Recorder
	logger    *logrus.Entry
}

func NewDigestService(
	coaches coach.Repository,
	snapshots coaching.SnapshotRepository,
	insights *InsightService,
	notifier Notifier,
	recorder Recorder,
	logger *logrus.Entry,
) *DigestService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &DigestService{
		coaches:   coaches,
		snapshots: snapshots,
		insights:  insights,
		notifier:  notifier,
		recorder:  recorder,
		logger:    logger,
	}
}

// SendDailyDigests evaluates every active cycle of every active coach and
// delivers one message per coach. A failing client or coach is logged and
// counted; the run carries on with the rest.
func (s *DigestService) SendDailyDigests(ctx context.Context, now time.Time) (DigestStats, error) {
	started := time.Now()
	stats := DigestStats{RunID: uuid.NewString()}
	log := s.logger.WithField("run_id", stats.RunID)
	log.Info("Starting daily digest run")

	coaches, err := s.coaches.ListActive(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list active coaches: %w", err)
	}
	if len(coaches) == 0 {
		log.Info("No active coaches, nothing to send")
		s.recorder.DigestRunFinished(stats, time.Since(started))
		return stats, nil
	}

	for _, c := range coaches {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Coaches++
		coachLog := log.WithFields(logrus.Fields{"coach_id": c.ID, "telegram_id": c.TelegramID})

		reports, failed := s.coachReports(ctx, c, now, coachLog)
		stats.Failures += failed
		if len(reports) == 0 {
			coachLog.Debug("Coach has no reportable clients, skipping digest")
			continue
		}
		stats.Clients += len(reports)
		for _, r := range reports {
			stats.Alerts += len(r.Alerts)
			for _, a := range r.Alerts {
				s.recorder.AlertRaised(a.Kind, a.Severity)
			}
		}

		parts := SplitMessage(FormatDigest(c.FirstName, reports, now), TelegramMessageLimit)
		if err := s.sendParts(c.TelegramID, parts, ReportButtons(reports)); err != nil {
			stats.Failures++
			s.recorder.DigestDelivered(false)
			coachLog.WithError(err).Error("Failed to send digest")
			continue
		}
		stats.Sent++
		s.recorder.DigestDelivered(true)
		coachLog.WithFields(logrus.Fields{"clients": len(reports), "messages": len(parts)}).Info("Digest sent")
	}

	s.recorder.DigestRunFinished(stats, time.Since(started))
	log.WithFields(logrus.Fields{
		"coaches":  stats.Coaches,
		"clients":  stats.Clients,
		"alerts":   stats.Alerts,
		"sent":     stats.Sent,
		"failures": stats.Failures,
	}).Info("Daily digest run finished")
	return stats, nil
}

// sendParts delivers a split digest in order. Only the last part carries the
// report buttons so they sit under the end of the digest.
func (s *DigestService) sendParts(chatID int64, parts []string, markup *telebot.ReplyMarkup) error {
	for i, part := range parts {
		opts := &telebot.SendOptions{DisableWebPagePreview: true}
		if i == len(parts)-1 {
			opts.ReplyMarkup = markup
		}
		if err := s.notifier.SendMessage(chatID, part, opts); err != nil {
			return fmt.Errorf("failed to send digest part %d/%d: %w", i+1, len(parts), err)
		}
	}
	return nil
}

// ReportCallbackUnique identifies the inline "full report" buttons.
const ReportCallbackUnique = "report"

// ReportButtons builds one inline button per client opening the full report.
func ReportButtons(reports []*ClientReport) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, markup.Row(markup.Data(r.ClientName, ReportCallbackUnique, strconv.FormatInt(r.CycleID, 10))))
	}
	markup.Inline(rows...)
	return markup
}

func (s *DigestService) coachReports(ctx context.Context, c *coach.Coach, now time.Time, log *logrus.Entry) ([]*ClientReport, int) {
	cycles, err := s.snapshots.ListActiveCycles(ctx, c.ID, now)
	if err != nil {
		log.WithError(err).Error("Failed to list active cycles")
		return nil, 1
	}
	failed := 0
	reports := make([]*ClientReport, 0, len(cycles))
	for _, ac := range cycles {
		report, err := s.insights.ReportForCycle(ctx, ac.CycleID, now)
		if err != nil {
			failed++
			log.WithError(err).WithField("cycle_id", ac.CycleID).Warn("Skipping client in digest")
			continue
		}
		if !report.Started {
			log.WithField("cycle_id", ac.CycleID).Debug("Cycle has not started yet, leaving it out of the digest")
			continue
		}
		reports = append(reports, report)
	}
	return reports, failed
}
