// Package conversation holds the exchange log, the reply policies and the
// bridge that carries voice exchanges to whoever owns the log.
package conversation

import (
	"fmt"
	"time"
)

// Origin says who produced an exchange.
type Origin int

const (
	OriginUser Origin = iota
	OriginAssistant
)

func (o Origin) String() string {
	switch o {
	case OriginUser:
		return "user"
	case OriginAssistant:
		return "assistant"
	}
	return fmt.Sprintf("origin(%d)", int(o))
}

// Channel is the input modality an exchange arrived through.
type Channel int

const (
	ChannelTyped Channel = iota
	ChannelVoice
)

func (c Channel) String() string {
	switch c {
	case ChannelTyped:
		return "typed"
	case ChannelVoice:
		return "voice"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// ParseOrigin is the inverse of Origin.String.
func ParseOrigin(s string) (Origin, error) {
	switch s {
	case "user":
		return OriginUser, nil
	case "assistant":
		return OriginAssistant, nil
	}
	return 0, fmt.Errorf("unknown origin %q", s)
}

// ParseChannel is the inverse of Channel.String.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "typed":
		return ChannelTyped, nil
	case "voice":
		return ChannelVoice, nil
	}
	return 0, fmt.Errorf("unknown channel %q", s)
}

// Category only selects how an insight is styled.
type Category string

const (
	CategoryPositive Category = "positive"
	CategoryWarning  Category = "warning"
	CategoryNeutral  Category = "neutral"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPositive, CategoryWarning, CategoryNeutral:
		return true
	}
	return false
}

// Insight is a structured annotation on an assistant reply.
type Insight struct {
	Category    Category `yaml:"category" json:"category"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	MetricValue string   `yaml:"metric,omitempty" json:"metric,omitempty"`
}

// Exchange is one user or assistant turn.
type Exchange struct {
	ID        uint64
	Origin    Origin
	Content   string
	CreatedAt time.Time
	Channel   Channel
	Insights  []Insight
}

func (e Exchange) clone() Exchange {
	if e.Insights != nil {
		e.Insights = append([]Insight(nil), e.Insights...)
	}
	return e
}
