package runner

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"signal_bot/internal/models"
)

// Evaluate — единственный воркер оценки: сигналы строго по одному, в порядке очереди.
// Выходит по отмене ctx.
func (r *Runner) Evaluate(ctx context.Context) {
	for {
		sig, err := r.queue.Pop(ctx)
		if err != nil {
			return
		}
		r.syncQueueLen()
		r.process(ctx, sig)
	}
}

// process доводит сигнал до исхода и отдаёт его в агрегатор.
// Прерванная оценка исхода не даёт.
func (r *Runner) process(ctx context.Context, sig models.Signal) (models.Outcome, bool) {
	out, ok := r.evaluate(ctx, sig)
	if !ok {
		r.log.Info("evaluation cancelled", zap.String("signal_id", sig.ID), zap.String("symbol", sig.Symbol))
		return out, false
	}

	r.metrics.RecordOutcome(string(out.Result))
	r.log.Info("outcome",
		zap.String("signal_id", sig.ID),
		zap.String("symbol", sig.Symbol),
		zap.String("result", string(out.Result)),
		zap.Int("retries", out.Retries),
	)
	r.notify(ctx, "outcome", r.tpl.Outcome(out))

	if summary, ok := r.record(out); ok {
		r.metrics.RecordSummary()
		r.log.Info("session summary", zap.Int("outcomes", len(summary.Outcomes)))
		r.notify(ctx, "summary", r.tpl.Summary(summary))
	}
	return out, true
}

func (r *Runner) evaluate(ctx context.Context, sig models.Signal) (models.Outcome, bool) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.evaluate")
	defer span.Finish()
	span.SetTag("symbol", sig.Symbol)

	maxRetries := min(max(r.cfg.Engine.MartingaleRetries, 0), 1)
	out := models.Outcome{Signal: sig, InitialPrice: sig.Price}

	for attempt := 0; ; attempt++ {
		if err := r.sleep(ctx, r.cfg.Engine.EvaluationHorizon); err != nil {
			return out, false
		}

		final, err := r.latestPrice(ctx, sig.Symbol)
		if err != nil {
			if ctx.Err() != nil {
				return out, false
			}
			r.metrics.RecordDataUnavailable("evaluate")
			r.log.Warn("no final price, signal fails",
				zap.String("symbol", sig.Symbol), zap.Int("attempt", attempt), zap.Error(err))
			out.FinalPrice = nil
			out.Retries = attempt
			out.Result = models.ResultFailure
			out.FinishedAt = r.now()
			return out, true
		}

		out.FinalPrice = &final
		out.Retries = attempt
		if sig.Direction.Met(sig.Price, final) {
			out.Result = models.ResultSuccess
			out.FinishedAt = r.now()
			return out, true
		}
		if attempt >= maxRetries {
			out.Result = models.ResultFailure
			out.FinishedAt = r.now()
			return out, true
		}

		r.metrics.RecordRetry()
		r.log.Info("expectation not met, martingale",
			zap.String("symbol", sig.Symbol), zap.Float64("initial", sig.Price), zap.Float64("final", final))
		r.notify(ctx, "retry", r.tpl.Retry(sig))
	}
}

func (r *Runner) latestPrice(ctx context.Context, symbol string) (float64, error) {
	candles, err := r.fetchCandles(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return candles[len(candles)-1].Close, nil
}

func (r *Runner) record(o models.Outcome) (models.SessionSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary, ok := r.agg.Add(o, r.now())
	r.state.SetBatchLen(r.agg.Len())
	return summary, ok
}
