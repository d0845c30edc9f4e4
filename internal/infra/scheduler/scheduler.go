package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/k1bu/FORBETRA-sub000/internal/app"
)

const digestTimeout = 10 * time.Minute

// DigestRunner is the job the scheduler triggers.
type DigestRunner interface {
	SendDailyDigests(ctx context.Context, now time.Time) (app.DigestStats, error)
}

type DigestScheduler struct {
	cronEngine *cron.Cron
	runner     DigestRunner
	logger     *logrus.Entry
	cronSpec   string
	location   *time.Location
	clock      func() time.Time
}

func NewDigestScheduler(runner DigestRunner, logger *logrus.Entry, cronSpec string, loc *time.Location) *DigestScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &DigestScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)),
		runner:     runner,
		logger:     logger,
		cronSpec:   cronSpec,
		location:   loc,
		clock:      time.Now,
	}
}

// Start registers the digest job and starts the cron engine. A malformed cron
// expression is returned as an error and nothing is started.
func (s *DigestScheduler) Start() error {
	s.logger.Info("Starting digest scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.RunOnce); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Digest scheduler started")
	return nil
}

// RunOnce executes one digest run with its own timeout.
func (s *DigestScheduler) RunOnce() {
	s.logger.Info("Cron job triggered for daily digest")
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	stats, err := s.runner.SendDailyDigests(ctx, s.clock().In(s.location))
	if err != nil {
		s.logger.WithError(err).WithField("run_id", stats.RunID).Error("Daily digest run failed")
		return
	}
	if stats.Failures > 0 {
		s.logger.WithFields(logrus.Fields{
			"run_id":   stats.RunID,
			"failures": stats.Failures,
		}).Warn("Daily digest finished with failures")
	}
}

func (s *DigestScheduler) Stop() {
	s.logger.Info("Stopping digest scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Digest scheduler gracefully stopped")
}
