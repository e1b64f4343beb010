package runner

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health/service"
)

var (
	ErrAlreadyRunning = errors.New("tick driver already running")
	ErrNotRunning     = errors.New("tick driver not running")
)

// Manager — периодический драйвер тиков. Оценщик им не управляется:
// /stop останавливает поиск новых сигналов, очередь дорабатывает.
type Manager struct {
	r        *Runner
	interval time.Duration
	log      *zap.Logger
	state    *service.State

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg *config.Config, r *Runner, log *zap.Logger, state *service.State) *Manager {
	return &Manager{
		r:        r,
		interval: cfg.Engine.TickInterval,
		log:      log.Named("ticker"),
		state:    state,
	}
}

// Start запускает тики: первый сразу, дальше раз в interval.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel, m.done = cancel, done
	m.state.SetTicking(true)

	go func() {
		defer close(done)
		m.loop(runCtx)
	}()

	m.log.Info("tick driver started", zap.Duration("interval", m.interval))
	return nil
}

// Stop гасит драйвер и ждёт текущий тик.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel == nil {
		return ErrNotRunning
	}
	m.cancel()
	<-m.done
	m.cancel, m.done = nil, nil
	m.state.SetTicking(false)

	m.log.Info("tick driver stopped")
	return nil
}

func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

func (m *Manager) loop(ctx context.Context) {
	m.r.Tick(ctx)

	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.r.Tick(ctx)
		}
	}
}
