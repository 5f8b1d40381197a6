package app

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// LoopClock is the production clock. Timers fire on their own goroutines but
// every callback is delivered to the program as a ContinuationMsg, so it runs
// inside Update like any other event.
type LoopClock struct {
	mu     sync.Mutex
	send   func(tea.Msg)
	queued []func()
}

// NewLoopClock returns a clock that buffers continuations until Attach.
func NewLoopClock() *LoopClock {
	return &LoopClock{}
}

// Attach connects the clock to a running program, usually (*tea.Program).Send.
// Continuations posted before Attach are delivered in order.
func (c *LoopClock) Attach(send func(tea.Msg)) {
	c.mu.Lock()
	c.send = send
	queued := c.queued
	c.queued = nil
	c.mu.Unlock()

	for _, fn := range queued {
		send(ContinuationMsg{Run: fn})
	}
}

func (c *LoopClock) Now() time.Time { return time.Now() }

// After posts fn to the event loop once d has elapsed.
func (c *LoopClock) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { c.Post(fn) })
}

// Post hands fn to the event loop. It is safe to call from any goroutine.
func (c *LoopClock) Post(fn func()) {
	c.mu.Lock()
	send := c.send
	if send == nil {
		c.queued = append(c.queued, fn)
	}
	c.mu.Unlock()

	if send != nil {
		send(ContinuationMsg{Run: fn})
	}
}
