package conversation

import (
	"errors"
	"fmt"
)

// Kind classifies the recoverable failures of the conversation core.
type Kind int

const (
	// PermissionDenied means the microphone request was refused.
	PermissionDenied Kind = iota + 1
	// DeviceError means the capture hardware failed.
	DeviceError
	// ProcessingError means transcription or reply generation failed.
	ProcessingError
	// InvalidInput means a blank text submission.
	InvalidInput
)

func (k Kind) String() string {
	switch k {
	case PermissionDenied:
		return "permission denied"
	case DeviceError:
		return "device error"
	case ProcessingError:
		return "processing error"
	case InvalidInput:
		return "invalid input"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error carries a Kind, the operation that failed and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same Kind, so errors.Is(err,
// &Error{Kind: PermissionDenied}) works without caring about Op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// E builds an *Error.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from err, or returns fallback when err carries none.
func KindOf(err error, fallback Kind) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return fallback
}

// ErrBusy is returned by Chat.Submit while a typed reply is still pending.
var ErrBusy = errors.New("reply pending")
