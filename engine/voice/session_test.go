package voice

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedRecognizer returns its transcript once release is closed.
type gatedRecognizer struct {
	text    string
	release chan struct{}
}

func (g *gatedRecognizer) Supported() bool { return true }

func (g *gatedRecognizer) Recognize(ctx context.Context) (string, error) {
	select {
	case <-g.release:
		return g.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session never ended")
	}
}

func TestSessionDeliversOneResultAndOneEnd(t *testing.T) {
	rec := &gatedRecognizer{text: "float", release: make(chan struct{})}
	var results []string
	var ends atomic.Int32
	s, err := Start(context.Background(), rec, func(text string) { results = append(results, text) }, func(error) { ends.Add(1) })
	require.NoError(t, err)

	close(rec.release)
	waitDone(t, s)
	s.Stop()

	assert.Equal(t, []string{"float"}, results)
	assert.Equal(t, int32(1), ends.Load())
	assert.NoError(t, s.Err())
}

func TestStoppedSessionNeverDelivers(t *testing.T) {
	rec := &gatedRecognizer{text: "rotate", release: make(chan struct{})}
	var delivered atomic.Bool
	var ends atomic.Int32
	s, err := Start(context.Background(), rec, func(string) { delivered.Store(true) }, func(error) { ends.Add(1) })
	require.NoError(t, err)

	s.Stop()
	close(rec.release)
	waitDone(t, s)
	time.Sleep(10 * time.Millisecond)

	assert.False(t, delivered.Load())
	assert.Equal(t, int32(1), ends.Load())
	assert.ErrorIs(t, s.Err(), ErrSessionClosed)
	assert.True(t, s.Stopped())
}

func TestUnsupportedIsDetectedBeforeStart(t *testing.T) {
	s, err := Start(context.Background(), Unsupported(), nil, nil)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrUnsupportedCapability)

	s, err = Start(context.Background(), NewWebsocketRecognizer(""), nil, nil)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrUnsupportedCapability)
}

func TestReaderRecognizerOneLinePerSession(t *testing.T) {
	rec := NewReaderRecognizer(strings.NewReader("ghost on\nrotate\n"))

	got, err := rec.Recognize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ghost on", got)

	got, err = rec.Recognize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotate", got)

	_, err = rec.Recognize(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderRecognizerHonoursCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	rec := NewReaderRecognizer(pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rec.Recognize(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewRecognizer(t *testing.T) {
	rec, err := NewRecognizer("none", "", nil)
	require.NoError(t, err)
	assert.False(t, rec.Supported())

	rec, err = NewRecognizer("STDIN", "", strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, rec.Supported())

	_, err = NewRecognizer("carrier-pigeon", "", nil)
	assert.ErrorIs(t, err, errUnknownBackend)
}
