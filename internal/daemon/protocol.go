// Package daemon talks to the audio capture daemon over a Unix socket using
// NDJSON, and adapts it to the voice package's microphone interface.
package daemon

// Error codes reported by the capture daemon.
const (
	CodePermissionDenied = "permission_denied"
	CodeDeviceBusy       = "device_busy"
	CodeNoDevice         = "no_device"
)

// Command is sent from a client to the daemon.
type Command struct {
	Cmd              string `json:"cmd"`
	Device           string `json:"device,omitempty"`
	EchoCancellation *bool  `json:"echoCancellation,omitempty"`
	NoiseSuppression *bool  `json:"noiseSuppression,omitempty"`
	SampleRate       int    `json:"sampleRate,omitempty"`
}

// Response is returned by the daemon after processing a command.
type Response struct {
	OK         bool     `json:"ok"`
	CaptureID  string   `json:"captureId,omitempty"`
	Recording  *bool    `json:"recording,omitempty"`
	Bytes      *int     `json:"bytes,omitempty"`
	DurationMS *int64   `json:"durationMs,omitempty"`
	Devices    []string `json:"devices,omitempty"`
	Device     string   `json:"device,omitempty"`
	Error      string   `json:"error,omitempty"`
	ErrorCode  string   `json:"errorCode,omitempty"`
}

// BoolPtr returns a pointer to a bool value. Convenience for building commands.
func BoolPtr(b bool) *bool { return &b }
