// Package clock abstracts time for the conversation core so every deferred
// continuation can be driven by the UI event loop in production and by hand
// in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock supplies the current time and schedules deferred continuations.
// Implementations must run fn on the same goroutine that drives the rest of
// the core (the event loop), never concurrently with it.
type Clock interface {
	Now() time.Time
	After(d time.Duration, fn func())
}

type timer struct {
	at  time.Time
	seq int
	fn  func()
}

// Manual is a Clock that only moves when Advance is called. Callbacks run on
// the goroutine calling Advance.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []timer
}

// NewManual returns a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After queues fn to run once the clock has advanced by d.
func (m *Manual) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.timers = append(m.timers, timer{at: m.now.Add(d), seq: m.seq, fn: fn})
}

// Advance moves the clock forward by d, running every callback that falls due
// in deadline order. Callbacks scheduled while advancing run too if their
// deadline lies within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next, ok := m.popDue(target)
		if !ok {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		m.mu.Unlock()
		next.fn()
	}
}

// Flush runs callbacks that are already due without moving time.
func (m *Manual) Flush() {
	m.Advance(0)
}

// Pending reports how many callbacks are still queued.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) popDue(target time.Time) (timer, bool) {
	if len(m.timers) == 0 {
		return timer{}, false
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	if m.timers[0].at.After(target) {
		return timer{}, false
	}
	t := m.timers[0]
	m.timers = m.timers[1:]
	return t, true
}
