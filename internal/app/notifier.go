package app

import (
	"time"

	"gopkg.in/telebot.v3"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/alert"
)

// Notifier delivers text to a Telegram chat. The telebot adapter satisfies it.
type Notifier interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}

// Recorder receives digest run measurements.
type Recorder interface {
	AlertRaised(kind alert.Kind, severity alert.Severity)
	DigestDelivered(ok bool)
	DigestRunFinished(stats DigestStats, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) AlertRaised(alert.Kind, alert.Severity)       {}
func (nopRecorder) DigestDelivered(bool)                         {}
func (nopRecorder) DigestRunFinished(DigestStats, time.Duration) {}
