package db

import (
	"sync"

	"github.com/jwulff/finvoice/internal/conversation"
	"go.uber.org/zap"
)

const archiveBuffer = 256

// Saver is the write side of Store.
type Saver interface {
	SaveExchange(conversation.Exchange) error
}

// Archiver writes exchanges on a background goroutine so the event loop
// never waits on disk.
type Archiver struct {
	saver  Saver
	logger *zap.Logger
	ch     chan conversation.Exchange
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewArchiver starts the writer goroutine. Call Close to drain and stop it.
func NewArchiver(saver Saver, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Archiver{
		saver:  saver,
		logger: logger,
		ch:     make(chan conversation.Exchange, archiveBuffer),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Archiver) run() {
	defer close(a.done)
	for e := range a.ch {
		if err := a.saver.SaveExchange(e); err != nil {
			a.logger.Error("archive exchange", zap.Uint64("id", e.ID), zap.Error(err))
		}
	}
}

// Enqueue queues e for writing. It never blocks: when the buffer is full or
// the archiver is closed the exchange is skipped and false is returned.
func (a *Archiver) Enqueue(e conversation.Exchange) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	select {
	case a.ch <- e:
		return true
	default:
		a.logger.Error("archive queue full, exchange skipped", zap.Uint64("id", e.ID))
		return false
	}
}

// Close writes everything still queued and stops the goroutine. It is safe to
// call more than once.
func (a *Archiver) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()
	<-a.done
}
