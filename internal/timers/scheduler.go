// Package timers runs the one-shot timers behind room countdowns.
//
// A Scheduler belongs to a single actor goroutine. A fired timer never touches
// actor state: it calls the fire callback with its key and generation, which
// is expected to enqueue a message into the actor's inbox. When the actor
// handles that message it calls Claim; a fire from a timer that has since been
// cancelled or replaced fails the claim and is dropped.
package timers

import (
	"time"

	"github.com/jonboulle/clockwork"
)

type entry struct {
	gen   uint64
	timer clockwork.Timer
}

type Scheduler[K comparable] struct {
	clock  clockwork.Clock
	fire   func(key K, gen uint64)
	gen    uint64
	timers map[K]entry
}

func New[K comparable](clock clockwork.Clock, fire func(key K, gen uint64)) *Scheduler[K] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler[K]{
		clock:  clock,
		fire:   fire,
		timers: make(map[K]entry),
	}
}

// Schedule arms a timer for key, replacing any timer already armed for it.
func (s *Scheduler[K]) Schedule(key K, d time.Duration) uint64 {
	s.Cancel(key)
	s.gen++
	gen := s.gen
	t := s.clock.AfterFunc(d, func() { s.fire(key, gen) })
	s.timers[key] = entry{gen: gen, timer: t}
	return gen
}

func (s *Scheduler[K]) Cancel(key K) bool {
	e, ok := s.timers[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.timers, key)
	return true
}

func (s *Scheduler[K]) CancelAll() {
	for key := range s.timers {
		s.Cancel(key)
	}
}

// Current reports whether gen is the live timer for key.
func (s *Scheduler[K]) Current(key K, gen uint64) bool {
	e, ok := s.timers[key]
	return ok && e.gen == gen
}

// Claim consumes a fire. It returns false for stale generations.
func (s *Scheduler[K]) Claim(key K, gen uint64) bool {
	if !s.Current(key, gen) {
		return false
	}
	delete(s.timers, key)
	return true
}

func (s *Scheduler[K]) Pending() int { return len(s.timers) }

func (s *Scheduler[K]) Clock() clockwork.Clock { return s.clock }
