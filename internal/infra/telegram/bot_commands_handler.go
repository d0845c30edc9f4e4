package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/coach"
	"github.com/k1bu/FORBETRA-sub000/internal/infra/config"
	idb "github.com/k1bu/FORBETRA-sub000/internal/infra/database"
)

const adminHelp = "Admin commands:\n\n" +
	"`/add_coach <TelegramID> <FirstName> [LastName]`\n - Register a coach.\n\n" +
	"`/remove_coach <TelegramID>`\n - Deactivate a coach. They stop receiving digests.\n\n" +
	"`/list_coaches [active|all]`\n - Show the roster. Active coaches by default.\n\n" +
	"`/report <cycle_id>`\n - Full report for any client cycle.\n\n" +
	"`/help`\n - Show this message."

const coachHelp = "Every morning I send you a digest of your clients: streaks, stability, trajectory and alerts that need your attention.\n\n" +
	"`/clients`\n - List your active clients.\n\n" +
	"`/report <cycle_id>`\n - Full report for one client. The buttons under each digest do the same.\n\n" +
	"`/help`\n - Show this message."

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig,
	coachRepo coach.Repository,
	baseLogger *logrus.Entry,
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithFields(logrus.Fields{"command": "/start", "sender_id": senderID})
		logCtx.Info("Processing /start command")

		if senderID == cfg.AdminTelegramID {
			return c.Send(fmt.Sprintf("Hi %s! You are the administrator. Use /help for the command list.", c.Sender().FirstName))
		}

		found, err := coachRepo.GetByTelegramID(ctx, senderID)
		switch {
		case err == nil && found.IsActive:
			logCtx.WithField("coach_id", found.ID).Info("User identified as active coach")
			return c.Send(fmt.Sprintf("Hi %s! I will send you a daily digest of your clients. Use /help to see what else I can do.", found.FirstName))
		case err == nil:
			return c.Send("Your coach account is inactive. Please contact the administrator.")
		case !errors.Is(err, idb.ErrCoachNotFound):
			logCtx.WithError(err).Error("Error checking coach status for /start command")
			return c.Send("Something went wrong while checking your account. Please try again later.")
		}

		logCtx.Info("User is unknown")
		return c.Send("Hi! I deliver client digests to coaches. If you are a coach, ask the administrator to add you.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithFields(logrus.Fields{"command": "/help", "sender_id": senderID})
		logCtx.Info("Processing /help command")

		if senderID == cfg.AdminTelegramID {
			return c.Send(adminHelp, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}

		found, err := coachRepo.GetByTelegramID(ctx, senderID)
		switch {
		case err == nil && found.IsActive:
			return c.Send(coachHelp, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		case err == nil:
			return c.Send("Your coach account is inactive. Please contact the administrator.")
		case !errors.Is(err, idb.ErrCoachNotFound):
			logCtx.WithError(err).Error("Error checking coach status for /help command")
			return c.Send("Something went wrong while checking your account. Please try again later.")
		}

		return c.Send("No commands are available to you. If you are a coach, ask the administrator to add you.")
	})
}
