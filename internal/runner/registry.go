package runner

import (
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Registry — статическая таблица инструментов + время последнего сигнала.
// Своей блокировки нет: владелец Runner, доступ под Runner.mu.
type Registry struct {
	order []string
	items map[string]*models.Instrument
}

func NewRegistry(list []config.InstrumentConfig) *Registry {
	r := &Registry{
		order: make([]string, 0, len(list)),
		items: make(map[string]*models.Instrument, len(list)),
	}
	for _, ic := range list {
		if _, dup := r.items[ic.Symbol]; dup {
			continue
		}
		r.order = append(r.order, ic.Symbol)
		r.items[ic.Symbol] = &models.Instrument{Symbol: ic.Symbol, Name: ic.Name}
	}
	return r
}

// All — копии в порядке конфига.
func (r *Registry) All() []models.Instrument {
	out := make([]models.Instrument, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, *r.items[s])
	}
	return out
}

func (r *Registry) Get(symbol string) (models.Instrument, bool) {
	it, ok := r.items[symbol]
	if !ok {
		return models.Instrument{}, false
	}
	return *it, true
}

// CooldownElapsed: сигналов ещё не было или с последнего прошло >= cooldown.
func (r *Registry) CooldownElapsed(symbol string, now time.Time, cooldown time.Duration) bool {
	it, ok := r.items[symbol]
	if !ok {
		return false
	}
	if it.LastSignalAt.IsZero() {
		return true
	}
	return now.Sub(it.LastSignalAt) >= cooldown
}

func (r *Registry) MarkSignal(symbol string, now time.Time) {
	if it, ok := r.items[symbol]; ok {
		it.LastSignalAt = now
	}
}
