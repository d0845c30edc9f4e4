package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/k1bu/FORBETRA-sub000/internal/app"
	"github.com/k1bu/FORBETRA-sub000/internal/infra/config"
	idb "github.com/k1bu/FORBETRA-sub000/internal/infra/database"
	"github.com/k1bu/FORBETRA-sub000/internal/infra/logger"
	"github.com/k1bu/FORBETRA-sub000/internal/infra/metrics"
	"github.com/k1bu/FORBETRA-sub000/internal/infra/scheduler"
	"github.com/k1bu/FORBETRA-sub000/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Component("main")

	log.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"admin_id":    cfg.AdminTelegramID,
		"timezone":    cfg.Location.String(),
	}).Info("Configuration loaded")

	calibration, err := config.LoadCalibration(cfg.CalibrationFile)
	if err != nil {
		log.WithError(err).Fatal("Could not load calibration")
	}

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connection established")

	coachRepo := idb.NewPostgresCoachRepository(db)
	snapshotRepo := idb.NewPostgresSnapshotRepository(db, cfg.Location, logger.Component("snapshots"))

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.WithError(err).Fatal("Could not create Telegram bot")
	}

	collectors := metrics.New()
	insightService := app.NewInsightService(snapshotRepo, calibration.Analytics, calibration.Alerts, logger.Component("insight"))
	adminService := app.NewAdminService(coachRepo, cfg.AdminTelegramID)
	digestService := app.NewDigestService(
		coachRepo,
		snapshotRepo,
		insightService,
		telegram.NewTelebotAdapter(bot),
		collectors,
		logger.Component("digest"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telegram.RegisterBotCommands(ctx, bot, cfg, coachRepo, logger.Component("telegram"))
	telegram.RegisterAdminHandlers(ctx, bot, adminService, logger.Component("telegram"))
	telegram.NewCoachHandlers(coachRepo, snapshotRepo, insightService, adminService, cfg.Location, logger.Component("telegram")).
		Register(ctx, bot)
	log.Info("Command handlers registered")

	digestScheduler := scheduler.NewDigestScheduler(digestService, logger.Component("scheduler"), cfg.CronSpecDigest, cfg.Location)
	if err := digestScheduler.Start(); err != nil {
		log.WithError(err).Fatal("Could not schedule daily digest")
	}

	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr, collectors, logger.Component("metrics"))
		metricsServer.Start()
	}

	go bot.Start()
	log.Info("Bot and scheduler are running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cancel()
	bot.Stop()
	digestScheduler.Stop()
	if metricsServer != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Metrics server did not shut down cleanly")
		}
		done()
	}
	log.Info("Application shut down gracefully")
}
