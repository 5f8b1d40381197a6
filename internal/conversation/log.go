package conversation

import (
	"strings"
	"sync"
)

// Log is the append-only, ordered store of exchanges. It has no delete or
// reorder operation.
type Log struct {
	mu       sync.RWMutex
	entries  []Exchange
	lastID   uint64
	observer func(Exchange)
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// OnAppend sets the redraw notification. It is called exactly once for each
// accepted append, after the entry is visible through All.
func (l *Log) OnAppend(fn func(Exchange)) {
	l.mu.Lock()
	l.observer = fn
	l.mu.Unlock()
}

// Append adds e to the end of the log and reports whether it was accepted.
// Exchanges with blank content are dropped. A zero or stale ID is replaced
// with the next counter value, and CreatedAt is clamped so timestamps never
// go backwards.
func (l *Log) Append(e Exchange) bool {
	if strings.TrimSpace(e.Content) == "" {
		return false
	}

	l.mu.Lock()
	if e.ID <= l.lastID {
		e.ID = l.lastID + 1
	}
	l.lastID = e.ID
	if n := len(l.entries); n > 0 && e.CreatedAt.Before(l.entries[n-1].CreatedAt) {
		e.CreatedAt = l.entries[n-1].CreatedAt
	}
	e = e.clone()
	l.entries = append(l.entries, e)
	observer := l.observer
	l.mu.Unlock()

	if observer != nil {
		observer(e.clone())
	}
	return true
}

// All returns a copy of every exchange in insertion order.
func (l *Log) All() []Exchange {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Exchange, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of stored exchanges.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// AnsweredPairs keeps only complete turns from entries: each assistant
// exchange together with the single unanswered user exchange of the same
// channel before it. Leading assistant exchanges whose user turn was cut off,
// and user exchanges that never got a reply, are dropped. Order is preserved.
func AnsweredPairs(entries []Exchange) []Exchange {
	keep := make([]bool, len(entries))
	open := map[Channel]int{}
	for i, e := range entries {
		switch e.Origin {
		case OriginUser:
			// A newer user turn on the same channel leaves the older one unanswered.
			open[e.Channel] = i
		case OriginAssistant:
			if u, ok := open[e.Channel]; ok {
				keep[u], keep[i] = true, true
				delete(open, e.Channel)
			}
		}
	}

	out := make([]Exchange, 0, len(entries))
	for i, e := range entries {
		if keep[i] {
			out = append(out, e.clone())
		}
	}
	return out
}
