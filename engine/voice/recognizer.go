package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Failure taxonomy of the speech boundary.
var (
	ErrUnsupportedCapability = errors.New("voice: voice recognition is not supported here")
	ErrSessionClosed         = errors.New("voice: session closed")

	errUnknownBackend = errors.New("voice: unknown backend")
)

// Backend names accepted by NewRecognizer.
const (
	BackendStdin     = "stdin"
	BackendWebsocket = "websocket"
	BackendNone      = "none"
)

// NewRecognizer selects a Recognizer by backend name.
//
// Parameters:
//   - backend: one of BackendStdin, BackendWebsocket or BackendNone
//   - url: the transcription server for BackendWebsocket
//   - stdin: the line source for BackendStdin
//
// Returns:
//   - Recognizer: the recognizer
//   - error: error if backend is unknown
func NewRecognizer(backend, url string, stdin io.Reader) (Recognizer, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendStdin, "":
		return NewReaderRecognizer(stdin), nil
	case BackendWebsocket:
		return NewWebsocketRecognizer(url), nil
	case BackendNone:
		return Unsupported(), nil
	}
	return Unsupported(), fmt.Errorf("%w: %q", errUnknownBackend, backend)
}

// Recognizer is the external speech recognition facility.
type Recognizer interface {
	// Supported reports whether recognition can run on this host. It is checked before any
	// session starts.
	//
	// Returns:
	//   - bool: true if Recognize may be called
	Supported() bool

	// Recognize blocks until one transcript is heard, the input ends or ctx is cancelled.
	//
	// Parameters:
	//   - ctx: cancelled when the session is stopped
	//
	// Returns:
	//   - string: the transcript
	//   - error: error if nothing was recognized
	Recognize(ctx context.Context) (string, error)
}

type unsupportedRecognizer struct{}

// Unsupported returns a Recognizer for hosts without speech input.
func Unsupported() Recognizer {
	return unsupportedRecognizer{}
}

func (unsupportedRecognizer) Supported() bool {
	return false
}

func (unsupportedRecognizer) Recognize(context.Context) (string, error) {
	return "", ErrUnsupportedCapability
}
