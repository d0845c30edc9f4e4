package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/k1bu/FORBETRA-sub000/internal/app"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/coach"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/coaching"
	idb "github.com/k1bu/FORBETRA-sub000/internal/infra/database"
)

var errNotYourClient = errors.New("cycle belongs to another coach")

// CoachHandlers serves on-demand client reports.
type CoachHandlers struct {
	coaches   coach.Repository
	snapshots coaching.SnapshotRepository
	insights  *app.InsightService
	admin     *app.AdminService
	location  *time.Location
	logger    *logrus.Entry
}

func NewCoachHandlers(
	coaches coach.Repository,
	snapshots coaching.SnapshotRepository,
	insights *app.InsightService,
	admin *app.AdminService,
	location *time.Location,
	logger *logrus.Entry,
) *CoachHandlers {
	return &CoachHandlers{
		coaches:   coaches,
		snapshots: snapshots,
		insights:  insights,
		admin:     admin,
		location:  location,
		logger:    logger.WithField("handler_group", "coach"),
	}
}

func (h *CoachHandlers) Register(ctx context.Context, b *telebot.Bot) {
	b.Handle("/clients", func(c telebot.Context) error { return h.handleClients(ctx, c) })
	b.Handle("/report", func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /report <cycle_id>")
		}
		return h.handleReport(ctx, c, args[0])
	})
	b.Handle(&telebot.Btn{Unique: app.ReportCallbackUnique}, func(c telebot.Context) error {
		if err := h.handleReport(ctx, c, c.Callback().Data); err != nil {
			return err
		}
		return c.Respond()
	})
}

// activeCoach resolves the sender to an active coach, replying when they are not one.
func (h *CoachHandlers) activeCoach(ctx context.Context, c telebot.Context, log *logrus.Entry) (*coach.Coach, bool) {
	found, err := h.coaches.GetByTelegramID(ctx, c.Sender().ID)
	switch {
	case errors.Is(err, idb.ErrCoachNotFound):
		log.Info("Sender is not a coach")
		_ = c.Send("This command is only available to registered coaches.")
		return nil, false
	case err != nil:
		log.WithError(err).Error("Failed to look up coach")
		_ = c.Send("Something went wrong. Please try again later.")
		return nil, false
	case !found.IsActive:
		log.WithField("coach_id", found.ID).Info("Inactive coach")
		_ = c.Send("Your coach account is inactive. Please contact the administrator.")
		return nil, false
	}
	return found, true
}

func (h *CoachHandlers) handleClients(ctx context.Context, c telebot.Context) error {
	log := h.logger.WithFields(logrus.Fields{"command": "/clients", "sender_id": c.Sender().ID})
	me, ok := h.activeCoach(ctx, c, log)
	if !ok {
		return nil
	}

	cycles, err := h.snapshots.ListActiveCycles(ctx, me.ID, time.Now().In(h.location))
	if err != nil {
		log.WithError(err).Error("Failed to list active cycles")
		return c.Send("Could not load your clients. Please try again later.")
	}
	return c.Send(formatClientList(cycles))
}

func formatClientList(cycles []coaching.ActiveCycle) string {
	if len(cycles) == 0 {
		return "You have no active clients."
	}
	var b strings.Builder
	b.WriteString("Your active clients:\n")
	for _, ac := range cycles {
		fmt.Fprintf(&b, "%s: cycle %d, started %s\n", ac.ClientName, ac.CycleID, ac.StartDate.Format("2006-01-02"))
	}
	b.WriteString("\nUse /report <cycle_id> for details.")
	return b.String()
}

func (h *CoachHandlers) handleReport(ctx context.Context, c telebot.Context, rawID string) error {
	log := h.logger.WithFields(logrus.Fields{"command": "/report", "sender_id": c.Sender().ID})
	cycleID, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || cycleID <= 0 {
		return c.Send("Error: cycle ID must be a positive number.")
	}
	log = log.WithField("cycle_id", cycleID)

	var me *coach.Coach
	isAdmin := h.admin.IsAdmin(c.Sender().ID)
	if !isAdmin {
		var ok bool
		if me, ok = h.activeCoach(ctx, c, log); !ok {
			return nil
		}
	}

	report, err := h.insights.ReportForCycle(ctx, cycleID, time.Now().In(h.location))
	if err == nil && !isAdmin && report.CoachID != me.ID {
		err = errNotYourClient
	}
	switch {
	case errors.Is(err, idb.ErrCycleNotFound), errors.Is(err, errNotYourClient):
		log.WithError(err).Warn("Report requested for unknown cycle")
		return c.Send(fmt.Sprintf("No cycle %d among your clients.", cycleID))
	case err != nil:
		log.WithError(err).Error("Failed to build report")
		return c.Send("Could not build the report. Please try again later.")
	}

	log.WithField("alerts", len(report.Alerts)).Info("Report sent")
	return c.Send(app.FormatReport(report))
}
