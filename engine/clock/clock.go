// Package clock provides the display-refresh frame source that drives every per-frame callback.
package clock

import (
	"sort"
	"sync"
	"time"
)

// FrameID identifies a pending frame request. The zero value never identifies a request.
type FrameID uint64

// FrameCallback receives the elapsed time since the clock started.
type FrameCallback func(now time.Duration)

// clock implements the Clock interface.
type clock struct {
	mu      sync.Mutex
	nextID  FrameID
	pending map[FrameID]FrameCallback
	now     time.Duration
}

// Clock schedules one-shot callbacks for the next display refresh.
// A callback that wants to keep running re-registers itself from inside the callback,
// and that registration fires on the following Advance rather than the current one.
type Clock interface {
	// RequestFrame registers a callback for the next Advance.
	//
	// Parameters:
	//   - cb: the callback to fire
	//
	// Returns:
	//   - FrameID: handle used to cancel the request
	RequestFrame(cb FrameCallback) FrameID

	// CancelFrame removes a pending request. Cancelling an unknown or already fired request is a no-op.
	//
	// Parameters:
	//   - id: the request to cancel
	CancelFrame(id FrameID)

	// Advance moves the clock to now and fires every request registered before the call,
	// in registration order.
	//
	// Parameters:
	//   - now: elapsed time since the clock started
	Advance(now time.Duration)

	// Now returns the time passed to the most recent Advance.
	//
	// Returns:
	//   - time.Duration: elapsed time since the clock started
	Now() time.Duration

	// Pending returns the number of outstanding requests.
	//
	// Returns:
	//   - int: outstanding request count
	Pending() int
}

var _ Clock = &clock{}

// NewClock creates a Clock with no pending requests at time zero.
//
// Returns:
//   - Clock: the newly created clock
func NewClock() Clock {
	return &clock{
		pending: make(map[FrameID]FrameCallback),
	}
}

func (c *clock) RequestFrame(cb FrameCallback) FrameID {
	if cb == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.pending[c.nextID] = cb
	return c.nextID
}

func (c *clock) CancelFrame(id FrameID) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *clock) Advance(now time.Duration) {
	c.mu.Lock()
	if now > c.now {
		c.now = now
	}
	ids := make([]FrameID, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		// A callback earlier in this batch may have cancelled a later one.
		c.mu.Lock()
		cb, ok := c.pending[id]
		delete(c.pending, id)
		at := c.now
		c.mu.Unlock()
		if ok {
			cb(at)
		}
	}
}

func (c *clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
