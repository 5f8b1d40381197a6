package voice

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwulff/finvoice/internal/clock"
	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/jwulff/finvoice/internal/notify"
	"go.uber.org/zap"
)

// DefaultProcessingDelay stands in for transcription and inference latency.
const DefaultProcessingDelay = 1500 * time.Millisecond

// State is where a capture session is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is one recording attempt. It lives from Start until completion,
// failure or cancel.
type Session struct {
	ID         string
	State      State
	Transcript string
	StartedAt  time.Time

	stream Stream
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Show(msg notify.Message, kind notify.Kind, d time.Duration) int
}

// Config wires a Recorder.
type Config struct {
	Microphone      MicrophoneSource
	Arbiter         *Arbiter // nil means the process-wide slot
	Clock           clock.Clock
	Transcriber     Transcriber
	Policy          conversation.ResponsePolicy
	Bridge          *conversation.Bridge // nil gets a bridge with no sink
	Notifier        Notifier
	Constraints     Constraints
	ProcessingDelay time.Duration
	NoticeDuration  time.Duration
	Logger          *zap.Logger
}

// Recorder drives capture sessions: idle → recording → transcribing →
// completed|failed → idle. All methods and callbacks run on the event loop.
type Recorder struct {
	cfg      Config
	state    State
	session  *Session
	playback bool
	onChange func(State)
}

// NewRecorder builds a Recorder with playback notifications enabled.
func NewRecorder(cfg Config) *Recorder {
	if cfg.Arbiter == nil {
		cfg.Arbiter = processArbiter
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Bridge == nil {
		cfg.Bridge = conversation.NewBridge(cfg.Logger)
	}
	if cfg.ProcessingDelay <= 0 {
		cfg.ProcessingDelay = DefaultProcessingDelay
	}
	if cfg.NoticeDuration <= 0 {
		cfg.NoticeDuration = notify.DefaultDuration
	}
	if cfg.Constraints == (Constraints{}) {
		cfg.Constraints = DefaultConstraints()
	}
	return &Recorder{cfg: cfg, playback: true}
}

// State returns the current state.
func (r *Recorder) State() State { return r.state }

// Session returns a copy of the live session, or nil.
func (r *Recorder) Session() *Session {
	if r.session == nil {
		return nil
	}
	s := *r.session
	s.stream = nil
	return &s
}

// Requesting reports whether a session is waiting for the microphone.
func (r *Recorder) Requesting() bool { return r.session != nil && r.state == StateIdle }

// OnChange sets a callback fired on every state transition.
func (r *Recorder) OnChange(fn func(State)) { r.onChange = fn }

// Playback reports whether spoken replies are announced.
func (r *Recorder) Playback() bool { return r.playback }

// SetPlayback turns reply announcements on or off.
func (r *Recorder) SetPlayback(on bool) { r.playback = on }

// Start requests the microphone. It does nothing unless the recorder is idle
// and no other session in the process holds the capture slot.
func (r *Recorder) Start() {
	if r.state != StateIdle || r.session != nil {
		return
	}
	if !r.cfg.Arbiter.TryAcquire() {
		r.cfg.Logger.Debug("start ignored: capture slot held elsewhere")
		return
	}

	sess := &Session{ID: uuid.NewString(), State: StateIdle, StartedAt: r.cfg.Clock.Now()}
	r.session = sess
	r.cfg.Logger.Debug("requesting microphone", zap.String("session", sess.ID))

	r.cfg.Microphone.Request(r.cfg.Constraints, func(stream Stream, err error) {
		if r.session != sess {
			// Session was discarded while the request was in flight.
			if stream != nil {
				stream.Release()
			}
			return
		}
		if err != nil {
			r.fail(conversation.KindOf(err, conversation.DeviceError), err)
			return
		}
		if stream == nil {
			r.fail(conversation.DeviceError, errors.New("microphone returned no stream"))
			return
		}
		sess.stream = stream
		r.transition(StateRecording)
		r.notice(notify.Message{Title: "🎙️ Listening...", Body: "Speak your financial query now"}, notify.Info)
	})
}

// Stop finalizes the recording, releases the device and schedules
// transcription. It does nothing unless recording.
func (r *Recorder) Stop() {
	if r.state != StateRecording {
		return
	}
	sess := r.session
	r.transition(StateTranscribing)

	rec, err := sess.stream.Finalize()
	sess.stream.Release()
	sess.stream = nil
	if err != nil {
		r.fail(conversation.KindOf(err, conversation.DeviceError), err)
		return
	}
	r.cfg.Logger.Debug("recording finalized",
		zap.String("session", sess.ID),
		zap.Int("bytes", rec.Bytes),
		zap.Duration("duration", rec.Duration))

	r.cfg.Clock.After(r.cfg.ProcessingDelay, func() { r.transcribe(sess, rec) })
}

// Cancel discards a session that is waiting for the microphone or still
// recording. Transcription, once started, cannot be cancelled.
func (r *Recorder) Cancel() {
	sess := r.session
	if sess == nil || r.state == StateTranscribing {
		return
	}
	if sess.stream != nil {
		sess.stream.Release()
		sess.stream = nil
	}
	r.cfg.Logger.Debug("capture cancelled", zap.String("session", sess.ID))
	r.reset()
}

func (r *Recorder) transcribe(sess *Session, rec Recording) {
	if r.session != sess || r.state != StateTranscribing {
		return
	}

	text, err := r.cfg.Transcriber.Transcribe(rec)
	if err != nil {
		r.fail(conversation.ProcessingError, err)
		return
	}
	sess.Transcript = text
	r.transition(StateCompleted)

	reply := r.cfg.Policy.Generate(text)
	if reply.Content == "" {
		r.fail(conversation.ProcessingError, errors.New("empty reply"))
		return
	}
	if r.playback {
		r.notice(notify.Message{Title: "🔊 Speaking Response", Body: reply.Content}, notify.Info)
	}
	if !r.cfg.Bridge.Notify(text, reply.Content) {
		r.cfg.Logger.Info("voice exchange not delivered", zap.String("session", sess.ID))
	}
	r.reset()
}

// fail handles a classified error: one notification per kind, then idle.
func (r *Recorder) fail(kind conversation.Kind, cause error) {
	if r.session != nil && r.session.stream != nil {
		r.session.stream.Release()
		r.session.stream = nil
	}
	r.transition(StateFailed)
	r.cfg.Logger.Warn("capture failed", zap.Stringer("kind", kind), zap.Error(cause))

	switch kind {
	case conversation.PermissionDenied:
		r.notice(notify.Message{Title: "Microphone Error", Body: "Unable to access microphone. Please check permissions."}, notify.Error)
	case conversation.DeviceError:
		r.notice(notify.Message{Title: "Microphone Error", Body: "The microphone stopped responding. Try recording again."}, notify.Error)
	case conversation.ProcessingError:
		r.notice(notify.Message{Title: "Processing Error", Body: "Failed to process your voice command"}, notify.Error)
	}
	r.reset()
}

func (r *Recorder) reset() {
	r.session = nil
	r.cfg.Arbiter.Release()
	r.transition(StateIdle)
}

func (r *Recorder) transition(s State) {
	if r.state == s {
		return
	}
	if r.session != nil {
		r.session.State = s
	}
	r.cfg.Logger.Debug("capture state", zap.Stringer("from", r.state), zap.Stringer("to", s))
	r.state = s
	if r.onChange != nil {
		r.onChange(s)
	}
}

func (r *Recorder) notice(msg notify.Message, kind notify.Kind) {
	if r.cfg.Notifier != nil {
		r.cfg.Notifier.Show(msg, kind, r.cfg.NoticeDuration)
	}
}
