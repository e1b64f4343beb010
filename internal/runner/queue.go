package runner

import (
	"context"
	"sync"

	"signal_bot/internal/models"
)

// Queue — FIFO сигналов без ограничения размера.
// Пишет планировщик, читает один оценщик.
type Queue struct {
	mu    sync.Mutex
	items []models.Signal
	ready chan struct{}
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push возвращает новую длину очереди.
func (q *Queue) Push(sig models.Signal) int {
	q.mu.Lock()
	q.items = append(q.items, sig)
	n := len(q.items)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return n
}

func (q *Queue) TryPop() (models.Signal, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return models.Signal{}, false
	}
	sig := q.items[0]
	q.items[0] = models.Signal{}
	q.items = q.items[1:]
	return sig, true
}

// Pop ждёт сигнал или отмену ctx.
func (q *Queue) Pop(ctx context.Context) (models.Signal, error) {
	for {
		if sig, ok := q.TryPop(); ok {
			return sig, nil
		}
		select {
		case <-ctx.Done():
			return models.Signal{}, ctx.Err()
		case <-q.ready:
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
