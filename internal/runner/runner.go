package runner

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"signal_bot/internal/exchange"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health/service"
	"signal_bot/internal/notify"
	"signal_bot/pkg/metrics"
)

// MarketData — источник свечей (REST провайдер или фейк в тестах).
type MarketData interface {
	FetchCandles(ctx context.Context, symbol, period, interval string) ([]models.Candle, error)
}

// Runner — движок сигналов: реестр, очередь, оценщик и агрегатор сессии.
type Runner struct {
	cfg     *config.Config
	md      MarketData
	n       notify.Notifier
	tpl     notify.Templates
	log     *zap.Logger
	metrics *metrics.Recorder
	state   *service.State

	tickMu sync.Mutex // тики не пересекаются

	mu       sync.Mutex // registry + agg
	registry *Registry
	agg      *Aggregator

	queue *Queue

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(
	cfg *config.Config,
	md MarketData,
	n notify.Notifier,
	log *zap.Logger,
	rec *metrics.Recorder,
	state *service.State,
) *Runner {
	return &Runner{
		cfg:      cfg,
		md:       md,
		n:        n,
		tpl:      notify.NewTemplates(cfg),
		log:      log.Named("runner"),
		metrics:  rec,
		state:    state,
		registry: NewRegistry(cfg.Instruments),
		agg:      NewAggregator(cfg.Engine.BatchSize, cfg.Engine.SummaryLookback),
		queue:    NewQueue(),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Instruments — снимок реестра для /signals.
func (r *Runner) Instruments() []models.Instrument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.All()
}

func (r *Runner) QueueLen() int { return r.queue.Len() }

func (r *Runner) BatchLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agg.Len()
}

func (r *Runner) fetchCandles(ctx context.Context, symbol string) ([]models.Candle, error) {
	if t := r.cfg.MarketData.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	candles, err := r.md.FetchCandles(ctx, symbol, r.cfg.MarketData.Period, r.cfg.MarketData.Interval)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, errors.Wrapf(exchange.ErrNoData, "%s: empty series", symbol)
	}
	return candles, nil
}

// notify — доставка best effort: ошибка логируется и считается, движок идёт дальше.
func (r *Runner) notify(ctx context.Context, kind, msg string) {
	if err := r.n.Send(ctx, r.cfg.Telegram.ChannelID, msg); err != nil {
		r.metrics.RecordDeliveryFailure(kind)
		r.log.Error("delivery failed", zap.String("kind", kind), zap.Error(err))
	}
}

func (r *Runner) syncQueueLen() {
	n := r.queue.Len()
	r.metrics.SetQueueLength(n)
	r.state.SetQueueLen(n)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
