package bot

import (
	"context"
	"errors"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

// notifier sends best-effort DMs once the bot is running. It exists so the
// service layer can be wired before the Telegram transport comes up.
type notifier struct {
	bot atomic.Pointer[tele.Bot]
}

func (n *notifier) bind(b *tele.Bot) {
	n.bot.Store(b)
}

// Notify implements service.Notifier.
func (n *notifier) Notify(_ context.Context, chatID int64, text string) error {
	b := n.bot.Load()
	if b == nil {
		return errors.New("bot: transport not started")
	}
	_, err := b.Send(tele.ChatID(chatID), text)
	return err
}
