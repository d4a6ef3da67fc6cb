// Package animator drives the procedural idle animation of the loaded asset. One Scheduler is
// shared by every viewport showing an asset, so the asset's single transform advances once
// per tick no matter how many viewports are bound.
package animator

import (
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/clock"
	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
)

// Status is the scheduler state machine: Idle or Running.
type Status int

const (
	// StatusIdle means no tick is registered.
	StatusIdle Status = iota
	// StatusRunning means exactly one tick is registered for the current animation type.
	StatusRunning
)

func (s Status) String() string {
	if s == StatusRunning {
		return "running"
	}
	return "idle"
}

// scheduler is the implementation of the Scheduler interface.
type scheduler struct {
	mu sync.Mutex

	clock clock.Clock
	state control.State
	asset asset.SceneAsset

	floatAmplitude float32
	rotateStep     float32

	bindings    map[int]*Binding
	nextBinding int

	frame   clock.FrameID
	mode    control.AnimationType
	status  Status
	closed  bool
	ticks   int
	unwatch func()
}

// Scheduler applies Float or Rotate to one asset on every clock tick while at least one viewport
// is bound and the animation type is not None.
//
// Float overwrites the vertical offset with sin(t_ms * 0.001 * speed) * 0.2.
// Rotate adds 0.01 * speed radians about the vertical axis per tick.
type Scheduler interface {
	// Bind attaches a viewport. The scheduler starts running if the animation type allows it.
	//
	// Parameters:
	//   - viewportID: the viewport identifier, for logging
	//
	// Returns:
	//   - *Binding: the handle the viewport cancels on unmount; nil if the scheduler is closed
	Bind(viewportID int) *Binding

	// Bindings returns the number of live bindings.
	//
	// Returns:
	//   - int: live binding count
	Bindings() int

	// Status reports whether a tick is registered.
	//
	// Returns:
	//   - Status: StatusIdle or StatusRunning
	Status() Status

	// Ticks returns the number of ticks that mutated the asset.
	//
	// Returns:
	//   - int: tick count
	Ticks() int

	// Asset retrieves the animated asset.
	//
	// Returns:
	//   - asset.SceneAsset: the asset
	Asset() asset.SceneAsset

	// Close cancels every binding and the pending tick. The scheduler never fires afterwards.
	Close()
}

// Binding is one viewport's claim on a Scheduler.
type Binding struct {
	id         int
	viewportID int
	s          *scheduler
	once       sync.Once
}

// ViewportID returns the viewport that owns the binding.
func (b *Binding) ViewportID() int {
	return b.viewportID
}

// Cancel releases the binding. When the last binding goes the pending tick is cancelled.
// Safe to call more than once.
func (b *Binding) Cancel() {
	if b == nil {
		return
	}
	b.once.Do(func() {
		b.s.unbind(b.id)
	})
}

// Active reports whether the binding is still attached.
func (b *Binding) Active() bool {
	if b == nil {
		return false
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	_, ok := b.s.bindings[b.id]
	return ok
}

var _ Scheduler = &scheduler{}

// NewScheduler creates an idle Scheduler for a and starts observing animation type changes on s.
//
// Parameters:
//   - clk: the frame source
//   - s: the shared control state
//   - a: the asset to animate
//   - options: variadic list of SchedulerBuilderOption functions
//
// Returns:
//   - Scheduler: the new scheduler
func NewScheduler(clk clock.Clock, s control.State, a asset.SceneAsset, options ...SchedulerBuilderOption) Scheduler {
	sc := &scheduler{
		clock:          clk,
		state:          s,
		asset:          a,
		floatAmplitude: 0.2,
		rotateStep:     0.01,
		bindings:       make(map[int]*Binding),
	}
	for _, opt := range options {
		opt(sc)
	}

	sc.unwatch = s.Subscribe(func(change control.Change, _ control.Snapshot) {
		if change.Has(control.ChangeAnimation) {
			sc.mu.Lock()
			sc.syncLocked()
			sc.mu.Unlock()
		}
	})
	return sc
}

func (s *scheduler) Bind(viewportID int) *Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.nextBinding++
	b := &Binding{id: s.nextBinding, viewportID: viewportID, s: s}
	s.bindings[b.id] = b
	s.syncLocked()
	return b
}

func (s *scheduler) unbind(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, id)
	s.syncLocked()
}

func (s *scheduler) Bindings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bindings)
}

func (s *scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *scheduler) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *scheduler) Asset() asset.SceneAsset {
	return s.asset
}

func (s *scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.bindings = make(map[int]*Binding)
	s.syncLocked()
	unwatch := s.unwatch
	s.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
}

// syncLocked moves the state machine to match the bindings, the asset and the animation type.
// A mode switch cancels the old registration before the new one is made.
func (s *scheduler) syncLocked() {
	want := s.state.AnimationType()
	run := !s.closed && len(s.bindings) > 0 && want != control.AnimationNone && s.asset != nil && s.asset.Live()

	if run && s.status == StatusRunning && s.mode == want {
		return
	}

	if s.frame != 0 {
		s.clock.CancelFrame(s.frame)
		s.frame = 0
	}

	if !run {
		if s.status == StatusRunning {
			logger.Log.WithField("asset", s.assetName()).Debug("animation idle")
		}
		s.status = StatusIdle
		s.mode = control.AnimationNone
		return
	}

	s.mode = want
	s.status = StatusRunning
	s.frame = s.clock.RequestFrame(s.tick(want))
	logger.Log.WithField("asset", s.assetName()).WithField("animation", want.String()).Debug("animation running")
}

// tick returns the frame callback for one animation mode.
func (s *scheduler) tick(mode control.AnimationType) clock.FrameCallback {
	var cb clock.FrameCallback
	cb = func(now time.Duration) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.frame = 0

		if s.status != StatusRunning || s.mode != mode {
			return
		}
		if s.asset == nil || !s.asset.Live() {
			s.status = StatusIdle
			s.mode = control.AnimationNone
			return
		}

		snap := s.state.Snapshot()
		if snap.AnimationType != mode {
			s.syncLocked()
			return
		}

		speed := float32(snap.Speed)
		switch mode {
		case control.AnimationFloat:
			ms := float32(now) / float32(time.Millisecond)
			s.asset.SetPositionY(math32.Sin(ms*0.001*speed) * s.floatAmplitude)
		case control.AnimationRotate:
			s.asset.RotateY(s.rotateStep * speed)
		}
		s.ticks++
		s.frame = s.clock.RequestFrame(cb)
	}
	return cb
}

func (s *scheduler) assetName() string {
	if s.asset == nil {
		return ""
	}
	return s.asset.Name()
}
