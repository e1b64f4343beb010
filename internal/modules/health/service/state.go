package service

import (
	"sync/atomic"
	"time"
)

// State — то, что движок сообщает о себе наружу (health, /status).
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	ticking      atomic.Bool
	lastTickUnix atomic.Int64 // unix seconds
	queueLen     atomic.Int64
	batchLen     atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetTicking(v bool) { s.ticking.Store(v) }
func (s *State) Ticking() bool     { return s.ticking.Load() }

func (s *State) SetQueueLen(n int) { s.queueLen.Store(int64(n)) }
func (s *State) QueueLen() int     { return int(s.queueLen.Load()) }

func (s *State) SetBatchLen(n int) { s.batchLen.Store(int64(n)) }
func (s *State) BatchLen() int     { return int(s.batchLen.Load()) }

func (s *State) TouchTick(t time.Time) { s.lastTickUnix.Store(t.Unix()) }
func (s *State) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
