package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements app.Notifier on top of a telebot bot.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends text to a coach's private chat.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	_, err := tba.bot.Send(&telebot.User{ID: recipientChatID}, text, options)
	return err
}
