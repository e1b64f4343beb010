package service

import (
	"context"
	"sync"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"signal_bot/internal/modules/config"
	health "signal_bot/internal/modules/health/service"
)

// Bot — то, что нужно от *tgbot.BotAPI.
type Bot interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
	GetUpdatesChan(config tgbot.UpdateConfig) tgbot.UpdatesChannel
	StopReceivingUpdates()
}

// Engine — движок сигналов (runner.Runner).
type Engine interface {
	Tick(ctx context.Context) int
	QueueLen() int
	BatchLen() int
}

// Driver — драйвер тиков (runner.Manager).
type Driver interface {
	Start(ctx context.Context) error
	Stop() error
	Running() bool
}

func NewBotAPI(cfg *config.Config) (*tgbot.BotAPI, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot api")
	}
	return b, nil
}

// Telegram — командный интерфейс бота.
type Telegram struct {
	bot    Bot
	cfg    *config.Config
	engine Engine
	driver Driver
	state  *health.State
	log    *zap.Logger

	ctx context.Context // контекст приложения, им стартует драйвер по /start
	wg  sync.WaitGroup
}

func NewTelegram(
	cfg *config.Config,
	bot Bot,
	engine Engine,
	driver Driver,
	state *health.State,
	log *zap.Logger,
) *Telegram {
	return &Telegram{
		bot:    bot,
		cfg:    cfg,
		engine: engine,
		driver: driver,
		state:  state,
		log:    log.Named("telegram"),
		ctx:    context.Background(),
	}
}

func (t *Telegram) reply(chatID int64, text string) {
	if _, err := t.bot.Send(tgbot.NewMessage(chatID, text)); err != nil {
		t.log.Error("reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// Start — long polling в отдельной горутине.
func (t *Telegram) Start(ctx context.Context) {
	t.ctx = ctx

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for update := range updates {
			t.handleUpdate(ctx, update)
		}
	}()
}

// Stop ждёт выхода из long polling, но не дольше ctx.
func (t *Telegram) Stop(ctx context.Context) {
	t.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.log.Warn("long polling still running on shutdown")
	}
}
