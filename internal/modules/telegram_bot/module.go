package telegram

import (
	"context"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"

	"signal_bot/internal/modules/telegram_bot/service"
	"signal_bot/internal/notify"
	"signal_bot/internal/runner"
)

func Module() fx.Option {
	return fx.Module("telegram",
		// 1. Клиент Bot API
		fx.Provide(
			service.NewBotAPI,
			func(b *tgbot.BotAPI) service.Bot { return b },
			func(b *tgbot.BotAPI) notify.Sender { return b },
		),

		// 2. Нотифайер канала для движка
		fx.Provide(
			notify.NewTelegram,
			func(t *notify.Telegram) notify.Notifier { return t },
		),

		// 3. Команды: адаптеры движка
		fx.Provide(
			func(r *runner.Runner) service.Engine { return r },
			func(m *runner.Manager) service.Driver { return m },
			service.NewTelegram,
		),

		fx.Invoke(
			func(lc fx.Lifecycle, ctx context.Context, t *service.Telegram) {
				lc.Append(fx.Hook{
					OnStart: func(_ context.Context) error {
						t.Start(ctx)
						return nil
					},
					OnStop: func(stopCtx context.Context) error {
						t.Stop(stopCtx)
						return nil
					},
				})
			},
		),
	)
}
