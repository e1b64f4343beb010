package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"signal_bot/internal/runner"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID

	t.log.Debug("command", zap.String("command", msg.Command()), zap.Int64("chat_id", chatID))

	switch msg.Command() {
	case "start":
		t.reply(chatID, t.handleStart())
	case "stop":
		t.reply(chatID, t.handleStop())
	case "test":
		t.reply(chatID, "✅ Bot is alive")
	case "signals":
		t.reply(chatID, t.handleSignals(ctx))
	case "status":
		t.reply(chatID, t.handleStatus())
	default:
		// прочие команды молча игнорируем
	}
}

func (t *Telegram) handleStart() string {
	err := t.driver.Start(t.ctx)
	switch {
	case err == nil:
		return "Ready to project your results!!"
	case errors.Is(err, runner.ErrAlreadyRunning):
		return "Ready to project your results!! (already running)"
	default:
		t.log.Error("tick driver start", zap.Error(err))
		return "❌ Failed to start: " + err.Error()
	}
}

func (t *Telegram) handleStop() string {
	if err := t.driver.Stop(); err != nil {
		if errors.Is(err, runner.ErrNotRunning) {
			return "⏹ Already stopped"
		}
		t.log.Error("tick driver stop", zap.Error(err))
		return "⚠️ Failed to stop: " + err.Error()
	}
	return "🛑 Signals stopped"
}

// handleSignals — внеочередной тик, как send_signals у исходного бота.
func (t *Telegram) handleSignals(ctx context.Context) string {
	n := t.engine.Tick(ctx)
	if n == 0 {
		return "🔍 No new signals"
	}
	return fmt.Sprintf("📨 %d signal(s) queued", n)
}

func (t *Telegram) handleStatus() string {
	var b strings.Builder
	if t.driver.Running() {
		b.WriteString("▶️ Ticking: on\n")
	} else {
		b.WriteString("⏹ Ticking: off\n")
	}
	fmt.Fprintf(&b, "📥 Queue: %d\n", t.engine.QueueLen())
	fmt.Fprintf(&b, "📋 Batch: %d/%d\n", t.engine.BatchLen(), t.cfg.Engine.BatchSize)

	last := "never"
	if lt := t.state.LastTick(); !lt.IsZero() {
		last = lt.In(t.cfg.Location()).Format("15:04")
	}
	fmt.Fprintf(&b, "🕐 Last tick: %s\n", last)
	fmt.Fprintf(&b, "⏱ Uptime: %s", t.state.Uptime().Truncate(time.Second))
	return b.String()
}
