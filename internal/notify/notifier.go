package notify

import (
	"context"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// Notifier доставляет текст в канал/чат.
type Notifier interface {
	Send(ctx context.Context, chatID int64, msg string) error
}

// Sender — то, что нужно от *tgbot.BotAPI.
type Sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// Telegram — пассивный нотифайер в канал.
type Telegram struct {
	bot Sender
}

func NewTelegram(bot Sender) *Telegram {
	return &Telegram{bot: bot}
}

func (t *Telegram) Send(ctx context.Context, chatID int64, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(tgbot.NewMessage(chatID, msg)); err != nil {
		return errors.Wrapf(err, "telegram send to %d", chatID)
	}
	return nil
}
