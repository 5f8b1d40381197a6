package conversation

import (
	"strings"
	"time"

	"github.com/jwulff/finvoice/internal/clock"
	"go.uber.org/zap"
)

// DefaultReplyDelay is how long a typed reply takes to arrive.
const DefaultReplyDelay = 1500 * time.Millisecond

// ChatConfig wires a Chat.
type ChatConfig struct {
	Log        *Log
	Policy     ResponsePolicy
	Clock      clock.Clock
	Bridge     *Bridge
	ReplyDelay time.Duration
	Logger     *zap.Logger
}

// Chat is the typed-text surface. It owns the exchange log and, while active,
// is the bridge sink for voice exchanges.
type Chat struct {
	log        *Log
	policy     ResponsePolicy
	clock      clock.Clock
	bridge     *Bridge
	delay      time.Duration
	logger     *zap.Logger
	pending    bool
	unregister func()
}

// NewChat builds a Chat. A nil Log gets a fresh one.
func NewChat(cfg ChatConfig) *Chat {
	if cfg.Log == nil {
		cfg.Log = NewLog()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ReplyDelay <= 0 {
		cfg.ReplyDelay = DefaultReplyDelay
	}
	return &Chat{
		log:    cfg.Log,
		policy: cfg.Policy,
		clock:  cfg.Clock,
		bridge: cfg.Bridge,
		delay:  cfg.ReplyDelay,
		logger: cfg.Logger,
	}
}

// Log returns the exchange log owned by the chat.
func (c *Chat) Log() *Log { return c.log }

// OnAppend sets the redraw notification on the owned log.
func (c *Chat) OnAppend(fn func(Exchange)) { c.log.OnAppend(fn) }

// Pending reports whether a typed reply is on its way.
func (c *Chat) Pending() bool { return c.pending }

// Active reports whether the chat is the registered bridge sink.
func (c *Chat) Active() bool { return c.unregister != nil }

// Activate registers the chat as the bridge sink.
func (c *Chat) Activate() {
	if c.bridge == nil || c.unregister != nil {
		return
	}
	c.unregister = c.bridge.Register(c.receiveVoice)
	c.logger.Debug("chat registered as voice sink")
}

// Deactivate removes the chat from the bridge. Voice exchanges completing
// while inactive are lost.
func (c *Chat) Deactivate() {
	if c.unregister == nil {
		return
	}
	c.unregister()
	c.unregister = nil
	c.logger.Debug("chat unregistered as voice sink")
}

// Submit records a typed user turn and schedules the assistant reply. Blank
// text returns an InvalidInput error and changes nothing; a submission while
// a reply is pending returns ErrBusy.
func (c *Chat) Submit(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return E(InvalidInput, "submit", nil)
	}
	if c.pending {
		return ErrBusy
	}

	c.log.Append(Exchange{
		Origin:    OriginUser,
		Content:   text,
		CreatedAt: c.clock.Now(),
		Channel:   ChannelTyped,
	})
	c.pending = true
	c.logger.Debug("typed message submitted", zap.Int("len", len(text)))

	c.clock.After(c.delay, func() {
		c.pending = false
		reply := c.policy.Generate(text)
		if !c.log.Append(Exchange{
			Origin:    OriginAssistant,
			Content:   reply.Content,
			CreatedAt: c.clock.Now(),
			Channel:   ChannelTyped,
			Insights:  reply.Insights,
		}) {
			c.logger.Error("typed reply dropped: empty content")
		}
	})
	return nil
}

// receiveVoice appends a voice exchange pair. The spoken reply text comes from
// the voice session; the insights come from the text policy.
func (c *Chat) receiveVoice(userText, assistantText string) {
	now := c.clock.Now()
	if !c.log.Append(Exchange{
		Origin:    OriginUser,
		Content:   userText,
		CreatedAt: now,
		Channel:   ChannelVoice,
	}) {
		c.logger.Warn("voice exchange dropped: empty transcript")
		return
	}
	c.log.Append(Exchange{
		Origin:    OriginAssistant,
		Content:   assistantText,
		CreatedAt: now,
		Channel:   ChannelVoice,
		Insights:  c.policy.Generate(userText).Insights,
	})
}
