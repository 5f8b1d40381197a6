package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/jwulff/finvoice/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type grant struct {
	stream voice.Stream
	err    error
}

// request runs Request with a post func that hands the continuation back to
// the test goroutine, mimicking the event loop.
func request(t *testing.T, m *Microphone) grant {
	t.Helper()
	loop := make(chan func(), 1)
	m.post = func(fn func()) { loop <- fn }

	var g grant
	m.Request(voice.DefaultConstraints(), func(s voice.Stream, err error) {
		g = grant{s, err}
	})
	select {
	case fn := <-loop:
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("request never completed")
	}
	return g
}

func TestMicrophoneGrantFinalizeRelease(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	bytes, ms := 88200, int64(1000)
	d := startMockDaemon(t, func(c Command) Response {
		switch c.Cmd {
		case "start":
			return Response{OK: true, CaptureID: "cap-9", Device: "Built-in Microphone"}
		case "stop":
			return Response{OK: true, Bytes: &bytes, DurationMS: &ms}
		}
		return Response{OK: false, Error: "unknown command"}
	})

	g := request(t, NewMicrophone(d.path, "Built-in Microphone", nil, nil))
	require.NoError(t, g.err)
	require.NotNil(t, g.stream)

	rec, err := g.stream.Finalize()
	require.NoError(t, err)
	assert.Equal(t, voice.Recording{Bytes: 88200, Duration: time.Second}, rec)
	g.stream.Release()
	g.stream.Release()

	cmds := d.commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "start", cmds[0].Cmd)
	assert.Equal(t, "Built-in Microphone", cmds[0].Device)
	assert.Equal(t, 44100, cmds[0].SampleRate)
	require.NotNil(t, cmds[0].EchoCancellation)
	assert.True(t, *cmds[0].EchoCancellation)
	assert.Equal(t, "stop", cmds[1].Cmd)
}

func TestMicrophonePermissionDenied(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	d := startMockDaemon(t, func(Command) Response {
		return Response{OK: false, Error: "Microphone permission denied", ErrorCode: CodePermissionDenied}
	})

	g := request(t, NewMicrophone(d.path, "", nil, nil))
	assert.Nil(t, g.stream)
	assert.Equal(t, conversation.PermissionDenied, conversation.KindOf(g.err, 0))
}

func TestMicrophoneDaemonMissing(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	g := request(t, NewMicrophone("/nonexistent/capture.sock", "", nil, nil))
	assert.Nil(t, g.stream)
	assert.Equal(t, conversation.DeviceError, conversation.KindOf(g.err, 0))

	var ce *conversation.Error
	require.True(t, errors.As(g.err, &ce))
	assert.Equal(t, "request microphone", ce.Op)
}

func TestMicrophoneFinalizeRefused(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	d := startMockDaemon(t, func(c Command) Response {
		if c.Cmd == "start" {
			return Response{OK: true, CaptureID: "cap-2"}
		}
		return Response{OK: false, Error: "capture device unplugged", ErrorCode: CodeNoDevice}
	})

	g := request(t, NewMicrophone(d.path, "", nil, nil))
	require.NoError(t, g.err)
	defer g.stream.Release()

	_, err := g.stream.Finalize()
	require.Error(t, err)
	assert.Equal(t, conversation.DeviceError, conversation.KindOf(err, 0))
	assert.Contains(t, err.Error(), "capture device unplugged")

	var ce *conversation.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "finalize capture", ce.Op)
}
