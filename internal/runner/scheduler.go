package runner

import (
	"context"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"signal_bot/internal/models"
	"signal_bot/internal/strategy"
)

// Tick — один проход по всем инструментам. Возвращает число поставленных в очередь сигналов.
// Недоступные данные по символу не мешают остальным.
func (r *Runner) Tick(ctx context.Context) int {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.tick")
	defer span.Finish()

	r.state.TouchTick(r.now())

	queued := 0
	for _, inst := range r.Instruments() {
		if ctx.Err() != nil {
			break
		}
		if r.scan(ctx, inst) {
			queued++
		}
	}
	span.SetTag("queued", queued)
	r.log.Debug("tick done", zap.Int("queued", queued))
	return queued
}

func (r *Runner) scan(ctx context.Context, inst models.Instrument) bool {
	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.scan")
	defer span.Finish()
	span.SetTag("symbol", inst.Symbol)

	candles, err := r.fetchCandles(ctx, inst.Symbol)
	if err != nil {
		r.metrics.RecordDataUnavailable("scan")
		r.log.Warn("market data unavailable, skip",
			zap.String("symbol", inst.Symbol), zap.Error(err))
		return false
	}

	pattern, ok := strategy.Detect(candles)
	if !ok {
		return false
	}

	sig, ok := r.enqueue(inst, pattern, candles[len(candles)-1].Close)
	if !ok {
		r.log.Debug("cooldown, signal dropped",
			zap.String("symbol", inst.Symbol), zap.String("pattern", string(pattern)))
		return false
	}

	r.log.Info("signal queued",
		zap.String("signal_id", sig.ID),
		zap.String("symbol", sig.Symbol),
		zap.String("pattern", string(sig.Pattern)),
		zap.String("direction", string(sig.Direction)),
		zap.Float64("price", sig.Price),
	)
	r.notify(ctx, "signal", r.tpl.Signal(sig))
	return true
}

// enqueue: проверка кулдауна, постановка в очередь и отметка времени — одной критической секцией.
func (r *Runner) enqueue(inst models.Instrument, pattern models.Pattern, price float64) (models.Signal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !r.registry.CooldownElapsed(inst.Symbol, now, r.cfg.Engine.Cooldown) {
		return models.Signal{}, false
	}

	sig := models.Signal{
		ID:        uuid.NewString(),
		Symbol:    inst.Symbol,
		Name:      inst.Name,
		Pattern:   pattern,
		Direction: pattern.Direction(),
		Price:     price,
		CreatedAt: now,
	}
	n := r.queue.Push(sig)
	r.registry.MarkSignal(inst.Symbol, now)

	r.metrics.RecordSignal(sig.Symbol, string(sig.Pattern))
	r.metrics.SetQueueLength(n)
	r.state.SetQueueLen(n)
	return sig, true
}
