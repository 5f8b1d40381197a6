package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/jwulff/finvoice/internal/voice"
	"go.uber.org/zap"
)

// commandTimeout bounds each round trip to the daemon. Finalize runs on the
// event loop, so a hung daemon must not stall the UI for long.
const commandTimeout = 5 * time.Second

// Microphone is a voice.MicrophoneSource backed by the capture daemon. Each
// granted stream holds its own connection for the life of the capture.
type Microphone struct {
	socketPath string
	device     string
	post       func(func())
	logger     *zap.Logger
}

// NewMicrophone returns a daemon-backed microphone. post must run its argument
// on the event loop; request results are delivered through it.
func NewMicrophone(socketPath, device string, post func(func()), logger *zap.Logger) *Microphone {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Microphone{socketPath: socketPath, device: device, post: post, logger: logger}
}

// Request dials the daemon and asks it to start capturing. The dial happens
// off the event loop.
func (m *Microphone) Request(c voice.Constraints, done func(voice.Stream, error)) {
	go func() {
		s, err := m.open(c)
		m.post(func() {
			if err != nil {
				done(nil, err)
				return
			}
			done(s, nil)
		})
	}()
}

func (m *Microphone) open(c voice.Constraints) (*captureStream, error) {
	client, err := Connect(m.socketPath)
	if err != nil {
		return nil, conversation.E(conversation.DeviceError, "request microphone", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	resp, err := client.SendCommand(ctx, Command{
		Cmd:              "start",
		Device:           m.device,
		EchoCancellation: BoolPtr(c.EchoCancellation),
		NoiseSuppression: BoolPtr(c.NoiseSuppression),
		SampleRate:       c.SampleRate,
	})
	if err != nil {
		client.Close()
		return nil, conversation.E(conversation.DeviceError, "request microphone", err)
	}
	if !resp.OK {
		client.Close()
		return nil, responseError("request microphone", resp)
	}

	m.logger.Debug("capture started", zap.String("capture", resp.CaptureID), zap.String("device", resp.Device))
	return &captureStream{client: client, id: resp.CaptureID}, nil
}

func responseError(op string, resp Response) error {
	cause := errors.New(resp.Error)
	if resp.Error == "" {
		cause = fmt.Errorf("daemon refused (%s)", resp.ErrorCode)
	}
	if resp.ErrorCode == CodePermissionDenied {
		return conversation.E(conversation.PermissionDenied, op, cause)
	}
	return conversation.E(conversation.DeviceError, op, cause)
}

type captureStream struct {
	client *Client
	id     string
	once   sync.Once
}

// Finalize asks the daemon to stop and reports how much audio it buffered.
func (s *captureStream) Finalize() (voice.Recording, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	resp, err := s.client.SendCommand(ctx, Command{Cmd: "stop"})
	if err != nil {
		return voice.Recording{}, conversation.E(conversation.DeviceError, "finalize capture", err)
	}
	if !resp.OK {
		return voice.Recording{}, responseError("finalize capture", resp)
	}

	var rec voice.Recording
	if resp.Bytes != nil {
		rec.Bytes = *resp.Bytes
	}
	if resp.DurationMS != nil {
		rec.Duration = time.Duration(*resp.DurationMS) * time.Millisecond
	}
	return rec, nil
}

// Release closes the capture connection; the daemon frees the device when
// its client goes away.
func (s *captureStream) Release() {
	s.once.Do(func() { s.client.Close() })
}
