// Package voice implements the microphone capture state machine: start,
// record, stop, transcribe, reply, and hand the exchange to the bridge.
package voice

import (
	"sync/atomic"
	"time"

	"github.com/jwulff/finvoice/internal/clock"
)

// Constraints are the capture settings passed to the device.
type Constraints struct {
	EchoCancellation bool
	NoiseSuppression bool
	SampleRate       int
}

// DefaultConstraints mirror what a browser capture would ask for.
func DefaultConstraints() Constraints {
	return Constraints{EchoCancellation: true, NoiseSuppression: true, SampleRate: 44100}
}

// Recording summarizes finalized audio.
type Recording struct {
	Bytes    int
	Duration time.Duration
}

// Stream is a granted microphone.
type Stream interface {
	// Finalize stops capture and returns what was buffered.
	Finalize() (Recording, error)
	// Release gives the device back. It is safe to call more than once.
	Release()
}

// MicrophoneSource hands out streams. Request must not block; done is called
// exactly once, on the event loop, with either a stream or an error. Errors
// should be *conversation.Error values so the recorder can classify them.
type MicrophoneSource interface {
	Request(c Constraints, done func(Stream, error))
}

// Arbiter is the process-wide capture slot. Every recorder in the process
// shares one so that only one capture session is live at a time.
type Arbiter struct {
	held atomic.Bool
}

// NewArbiter returns a free slot.
func NewArbiter() *Arbiter { return &Arbiter{} }

// processArbiter is the slot used by every recorder not given its own.
var processArbiter = NewArbiter()

// TryAcquire takes the slot and reports whether it was free.
func (a *Arbiter) TryAcquire() bool { return a.held.CompareAndSwap(false, true) }

// Release frees the slot.
func (a *Arbiter) Release() { a.held.Store(false) }

// Held reports whether a session currently owns the slot.
func (a *Arbiter) Held() bool { return a.held.Load() }

// SimulatedMicrophone grants every request on the next loop turn and reports
// the elapsed capture time as a 16-bit mono recording.
type SimulatedMicrophone struct {
	Clock clock.Clock
}

func (m SimulatedMicrophone) Request(c Constraints, done func(Stream, error)) {
	m.Clock.After(0, func() {
		done(&simulatedStream{clock: m.Clock, started: m.Clock.Now(), rate: c.SampleRate}, nil)
	})
}

type simulatedStream struct {
	clock   clock.Clock
	started time.Time
	rate    int
}

func (s *simulatedStream) Finalize() (Recording, error) {
	d := s.clock.Now().Sub(s.started)
	return Recording{Bytes: int(d.Seconds() * float64(s.rate) * 2), Duration: d}, nil
}

// Release is a no-op: nothing real was opened.
func (s *simulatedStream) Release() {}
