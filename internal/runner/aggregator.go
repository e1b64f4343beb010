package runner

import (
	"time"

	"signal_bot/internal/models"
)

// Aggregator копит исходы и каждые size штук отдаёт сводку, после чего пачка обнуляется.
type Aggregator struct {
	size     int
	lookback time.Duration
	batch    []models.Outcome
}

func NewAggregator(size int, lookback time.Duration) *Aggregator {
	if size <= 0 {
		size = 1
	}
	return &Aggregator{
		size:     size,
		lookback: lookback,
		batch:    make([]models.Outcome, 0, size),
	}
}

func (a *Aggregator) Add(o models.Outcome, now time.Time) (models.SessionSummary, bool) {
	a.batch = append(a.batch, o)
	if len(a.batch) < a.size {
		return models.SessionSummary{}, false
	}

	summary := models.SessionSummary{
		Outcomes: a.batch,
		From:     now.Add(-a.lookback),
		To:       now,
	}
	a.batch = make([]models.Outcome, 0, a.size)
	return summary, true
}

func (a *Aggregator) Len() int { return len(a.batch) }
