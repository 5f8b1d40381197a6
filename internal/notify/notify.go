// Package notify is the transient notification surface: short status and
// error messages that dismiss themselves.
package notify

import (
	"time"

	"github.com/jwulff/finvoice/internal/clock"
)

// DefaultDuration is used when Show is given a non-positive duration.
const DefaultDuration = 5 * time.Second

// Kind selects how a notification is presented.
type Kind int

const (
	Info Kind = iota
	Error
)

func (k Kind) String() string {
	if k == Error {
		return "error"
	}
	return "info"
}

// Message is the text of a notification.
type Message struct {
	Title string
	Body  string
}

// Notification is a visible message.
type Notification struct {
	ID      int
	Message Message
	Kind    Kind
	ShownAt time.Time
	Expires time.Time
}

// Surface holds the currently visible notifications.
type Surface struct {
	clock    clock.Clock
	items    []Notification
	nextID   int
	onChange func()
}

// NewSurface returns an empty surface driven by clk.
func NewSurface(clk clock.Clock) *Surface {
	return &Surface{clock: clk}
}

// OnChange sets a callback fired whenever a notification appears or goes away.
func (s *Surface) OnChange(fn func()) { s.onChange = fn }

// Show displays msg for d and returns its id.
func (s *Surface) Show(msg Message, kind Kind, d time.Duration) int {
	if d <= 0 {
		d = DefaultDuration
	}
	s.nextID++
	id := s.nextID
	now := s.clock.Now()
	s.items = append(s.items, Notification{
		ID:      id,
		Message: msg,
		Kind:    kind,
		ShownAt: now,
		Expires: now.Add(d),
	})
	s.changed()

	s.clock.After(d, func() { s.Dismiss(id) })
	return id
}

// Dismiss removes a notification early. Unknown ids are ignored.
func (s *Surface) Dismiss(id int) {
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			s.changed()
			return
		}
	}
}

// DismissNewest removes the most recently shown notification, if any.
func (s *Surface) DismissNewest() {
	if n := len(s.items); n > 0 {
		s.Dismiss(s.items[n-1].ID)
	}
}

// Visible returns the visible notifications, oldest first.
func (s *Surface) Visible() []Notification {
	return append([]Notification(nil), s.items...)
}

func (s *Surface) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
