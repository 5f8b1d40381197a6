package conversation

import (
	"sync"

	"go.uber.org/zap"
)

// Sink receives a completed voice exchange.
type Sink func(userText, assistantText string)

// Bridge is the single slot through which a voice session reaches the owner
// of the exchange log. Construct one and hand it to both sides.
type Bridge struct {
	mu     sync.Mutex
	sink   Sink
	gen    uint64
	logger *zap.Logger
}

// NewBridge returns a bridge with no sink registered.
func NewBridge(logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{logger: logger}
}

// Register installs sink, replacing any previous one. The returned function
// clears the slot only if sink is still the registered one.
func (b *Bridge) Register(sink Sink) (unregister func()) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.sink = sink
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.gen == gen {
			b.sink = nil
		}
	}
}

// Unregister clears whatever sink is registered.
func (b *Bridge) Unregister() {
	b.mu.Lock()
	b.gen++
	b.sink = nil
	b.mu.Unlock()
}

// Registered reports whether a sink is installed.
func (b *Bridge) Registered() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sink != nil
}

// Notify hands the exchange to the registered sink. With no sink the exchange
// is dropped and Notify returns false.
func (b *Bridge) Notify(userText, assistantText string) bool {
	b.mu.Lock()
	sink := b.sink
	b.mu.Unlock()

	if sink == nil {
		b.logger.Warn("voice exchange dropped: no sink registered",
			zap.String("user", userText))
		return false
	}
	sink(userText, assistantText)
	return true
}
