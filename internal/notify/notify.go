// Package notify sends admin notifications to a Telegram chat when new
// registrations or bookings arrive. A nil Notifier is valid and does
// nothing, so callers never branch on configuration.
package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

// New returns nil (disabled) when token or chat id are unset.
func New(token string, chatID int64, log *slog.Logger) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	if log == nil {
		log = slog.Default()
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Notifier{bot: bot, chatID: chatID, log: log}, nil
}

func (n *Notifier) send(text string) {
	if n == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Error("telegram notify", "err", err)
	}
}

// PlayerAdded announces a new registration.
func (n *Notifier) PlayerAdded(name, email string, rowIndex int) {
	n.send(fmt.Sprintf("Pendaftaran baru: %s (%s), baris %d", name, email, rowIndex))
}

// BookingReceived announces a new jersey booking.
func (n *Notifier) BookingReceived(playerName string, jerseyNumber int) {
	n.send(fmt.Sprintf("Tempahan jersi baru: %s, nombor %d", playerName, jerseyNumber))
}
