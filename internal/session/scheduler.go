package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs Schedule effects on real timers and delivers TimerFired.
// Timers are grouped by generation so a new query can stop the old ones.
type Scheduler struct {
	mu      sync.Mutex
	deliver func(TimerFired)
	timers  map[uint64]map[*time.Timer]struct{}
	log     zerolog.Logger
	stopped bool
}

func NewScheduler(deliver func(TimerFired), log zerolog.Logger) *Scheduler {
	return &Scheduler{
		deliver: deliver,
		timers:  map[uint64]map[*time.Timer]struct{}{},
		log:     log,
	}
}

func (s *Scheduler) Schedule(ef Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(ef.Delay, func() {
		s.mu.Lock()
		if group, ok := s.timers[ef.Generation]; ok {
			delete(group, timer)
			if len(group) == 0 {
				delete(s.timers, ef.Generation)
			}
		}
		stopped := s.stopped
		s.mu.Unlock()
		if !stopped {
			s.deliver(TimerFired{Generation: ef.Generation, Step: ef.Step})
		}
	})
	group, ok := s.timers[ef.Generation]
	if !ok {
		group = map[*time.Timer]struct{}{}
		s.timers[ef.Generation] = group
	}
	group[timer] = struct{}{}
	s.log.Debug().Uint64("generation", ef.Generation).Stringer("step", ef.Step).Dur("delay", ef.Delay).Msg("timer scheduled")
}

// CancelBefore stops every pending timer of a generation older than gen and
// returns how many were stopped.
func (s *Scheduler) CancelBefore(gen uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancelled := 0
	for g, group := range s.timers {
		if g >= gen {
			continue
		}
		for timer := range group {
			if timer.Stop() {
				cancelled++
			}
		}
		delete(s.timers, g)
	}
	if cancelled > 0 {
		s.log.Debug().Uint64("generation", gen).Int("cancelled", cancelled).Msg("stale timers cancelled")
	}
	return cancelled
}

// Pending counts timers that have neither fired nor been cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, group := range s.timers {
		n += len(group)
	}
	return n
}

// Stop cancels everything and drops later Schedule calls.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for g, group := range s.timers {
		for timer := range group {
			timer.Stop()
		}
		delete(s.timers, g)
	}
}
