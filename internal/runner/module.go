package runner

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"signal_bot/internal/exchange"
	"signal_bot/internal/modules/health/service"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			exchange.NewClient,
			func(c *exchange.Client) MarketData { return c },
			New,        // *Runner
			NewManager, // *Manager
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			ctx context.Context,
			r *Runner,
			m *Manager,
			state *service.State,
			log *zap.Logger,
		) {
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})

			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						defer close(done)
						r.Evaluate(runCtx)
					}()
					if err := m.Start(runCtx); err != nil {
						cancel()
						return err
					}
					state.SetReady(true)
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					state.SetReady(false)
					if err := m.Stop(); err != nil {
						log.Debug("tick driver already stopped", zap.Error(err))
					}
					cancel()
					select {
					case <-done:
					case <-stopCtx.Done():
						log.Warn("evaluator did not finish before shutdown")
					}
					return nil
				},
			})
		}),
	)
}
