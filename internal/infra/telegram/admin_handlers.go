package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/k1bu/FORBETRA-sub000/internal/app"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/coach"
	idb "github.com/k1bu/FORBETRA-sub000/internal/infra/database"
)

const msgNotAuthorized = "Error: you are not allowed to run this command."

// addCoachArgs parses "<TelegramID> <FirstName> [LastName]".
func addCoachArgs(args []string) (int64, string, string, error) {
	if len(args) < 2 || len(args) > 3 {
		return 0, "", "", errors.New("usage: /add_coach <TelegramID> <FirstName> [LastName]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, "", "", errors.New("Telegram ID must be a number")
	}
	first := strings.TrimSpace(args[1])
	if first == "" {
		return 0, "", "", errors.New("first name must not be empty")
	}
	var last string
	if len(args) == 3 {
		last = strings.TrimSpace(args[2])
	}
	return id, first, last, nil
}

// formatCoachList renders the roster, keeping only active coaches unless all is set.
func formatCoachList(coaches []*coach.Coach, all bool) string {
	var b strings.Builder
	title := "Active coaches"
	if all {
		title = "All coaches"
	}
	fmt.Fprintf(&b, "--- %s ---\n", title)
	n := 0
	for _, c := range coaches {
		if !all && !c.IsActive {
			continue
		}
		n++
		status := "inactive"
		if c.IsActive {
			status = "active"
		}
		fmt.Fprintf(&b, "ID: %d, Telegram ID: %d, %s, %s\n", c.ID, c.TelegramID, c.FullName(), status)
	}
	if n == 0 {
		if all {
			return "No coaches registered yet."
		}
		return "No active coaches."
	}
	return strings.TrimRight(b.String(), "\n")
}

// RegisterAdminHandlers registers the coach roster commands.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, baseLogger *logrus.Entry) {
	b.Handle("/add_coach", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_coach",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if !adminService.IsAdmin(c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgNotAuthorized)
		}

		telegramID, firstName, lastName, err := addCoachArgs(c.Args())
		if err != nil {
			handlerLogger.WithField("args_count", len(c.Args())).Warn("Invalid command format")
			return c.Send("Error: " + err.Error())
		}
		handlerLogger = handlerLogger.WithField("coach_telegram_id", telegramID)

		added, err := adminService.AddCoach(ctx, c.Sender().ID, telegramID, firstName, lastName)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send(msgNotAuthorized)
			case errors.Is(err, app.ErrCoachAlreadyExists):
				logWithError.Warn("Coach already exists")
				return c.Send(fmt.Sprintf("Error: a coach with Telegram ID %d already exists.", telegramID))
			default:
				logWithError.Error("Failed to add coach")
				return c.Send("Something went wrong while adding the coach. Please try again later.")
			}
		}

		handlerLogger.WithField("coach_id", added.ID).Info("Coach added successfully")
		return c.Send(fmt.Sprintf("Coach %s (Telegram ID: %d) added.", added.FullName(), added.TelegramID))
	})

	b.Handle("/remove_coach", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/remove_coach",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if !adminService.IsAdmin(c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgNotAuthorized)
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /remove_coach <TelegramID>")
		}
		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid Telegram ID format")
			return c.Send("Error: Telegram ID must be a number.")
		}
		handlerLogger = handlerLogger.WithField("coach_telegram_id", telegramID)

		removed, err := adminService.RemoveCoach(ctx, c.Sender().ID, telegramID)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send(msgNotAuthorized)
			case errors.Is(err, idb.ErrCoachNotFound):
				logWithError.Warn("Coach to remove not found")
				return c.Send(fmt.Sprintf("No coach with Telegram ID %d.", telegramID))
			case errors.Is(err, app.ErrCoachAlreadyInactive):
				logWithError.Warn("Coach already inactive")
				return c.Send(fmt.Sprintf("Coach %s (Telegram ID: %d) is already inactive.", removed.FullName(), telegramID))
			default:
				logWithError.Error("Failed to remove coach")
				return c.Send("Something went wrong while removing the coach. Please try again later.")
			}
		}

		handlerLogger.WithField("coach_id", removed.ID).Info("Coach deactivated")
		return c.Send(fmt.Sprintf("Coach %s (Telegram ID: %d) deactivated. They will no longer receive digests.", removed.FullName(), removed.TelegramID))
	})

	b.Handle("/list_coaches", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/list_coaches",
			"sender_id": c.Sender().ID,
		})
		if !adminService.IsAdmin(c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgNotAuthorized)
		}

		listType := "active"
		if args := c.Args(); len(args) > 0 {
			listType = strings.ToLower(args[0])
		}
		if listType != "active" && listType != "all" {
			return c.Send("Unknown argument. Use 'active' or 'all', or leave it empty for active coaches.")
		}

		coaches, err := adminService.ListCoaches(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list coaches")
			return c.Send("Something went wrong while listing coaches. Please try again later.")
		}
		handlerLogger.WithField("coaches_count", len(coaches)).Info("Coach list retrieved")
		return c.Send(formatCoachList(coaches, listType == "all"))
	})
}
