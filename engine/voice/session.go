package voice

import (
	"context"
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
)

// Session is one listening period. It delivers at most one result and exactly one end
// notification, and never delivers a result after Stop returns.
type Session struct {
	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	endOnce sync.Once
	done    chan struct{}
	err     error

	onResult func(transcript string)
	onEnd    func(err error)
}

// Start begins a session on rec. onResult receives the transcript if one is heard; onEnd runs
// once when the session ends for any reason. Both may run on a background goroutine and must
// not call Stop.
//
// Parameters:
//   - ctx: parent context; cancelling it stops the session
//   - rec: the recognizer
//   - onResult: receives the transcript
//   - onEnd: receives nil on a normal end, ErrSessionClosed after Stop, otherwise the recognition error
//
// Returns:
//   - *Session: the running session
//   - error: ErrUnsupportedCapability if rec cannot run here
func Start(ctx context.Context, rec Recognizer, onResult func(string), onEnd func(error)) (*Session, error) {
	if rec == nil || !rec.Supported() {
		return nil, ErrUnsupportedCapability
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		cancel:   cancel,
		done:     make(chan struct{}),
		onResult: onResult,
		onEnd:    onEnd,
	}

	go s.run(ctx, rec)
	return s, nil
}

func (s *Session) run(ctx context.Context, rec Recognizer) {
	defer s.cancel()
	text, err := rec.Recognize(ctx)

	s.mu.Lock()
	if !s.stopped && err == nil && text != "" && s.onResult != nil {
		s.onResult(text)
	}
	stopped := s.stopped
	s.mu.Unlock()

	switch {
	case stopped:
		err = ErrSessionClosed
	case errors.Is(err, context.Canceled):
		err = nil
	case err != nil:
		logger.Log.WithError(err).Warn("speech recognition ended with an error")
	}
	s.end(err)
}

// Stop cancels the session. No result is delivered after Stop returns. Safe to call more than once.
func (s *Session) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cancel()
	s.end(ErrSessionClosed)
}

// end delivers the end notification exactly once.
func (s *Session) end(err error) {
	s.endOnce.Do(func() {
		s.err = err
		if s.onEnd != nil {
			s.onEnd(err)
		}
		close(s.done)
	})
}

// Done is closed once the end notification has been delivered.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err blocks until the session ends and returns the error it ended with.
func (s *Session) Err() error {
	<-s.done
	return s.err
}

// Stopped reports whether Stop was called.
func (s *Session) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
