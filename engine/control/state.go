// Package control holds the shared control state that widgets, voice commands, animation
// schedulers and the ghost effect all read or mutate.
package control

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
)

// Speed bounds and default for the animation speed multiplier.
const (
	MinSpeed     = 0.5
	MaxSpeed     = 2.0
	DefaultSpeed = 1.0
)

// DefaultDisplayName is used when a loaded asset arrives without a name.
const DefaultDisplayName = "Uploaded Model"

// Change is a bit set describing which fields a mutation modified.
type Change uint8

const (
	ChangeAnimation Change = 1 << iota
	ChangeSpeed
	ChangeGhost
	ChangeAsset
	ChangeHistory
	ChangeListening
)

// Has reports whether c includes every bit of other.
func (c Change) Has(other Change) bool {
	return c&other == other
}

// Snapshot is a consistent copy of the control state at one instant.
type Snapshot struct {
	AnimationType AnimationType
	Speed         float64
	GhostMode     bool
	Asset         asset.SceneAsset
	DisplayName   string
	History       []string
	Listening     bool
}

// HasAsset reports whether an asset is loaded.
func (s Snapshot) HasAsset() bool {
	return s.Asset != nil
}

// Update is a batch of field assignments applied atomically by State.Apply.
// Nil fields are left unchanged. History entries are pushed to the front in order.
type Update struct {
	AnimationType *AnimationType
	Speed         *float64
	GhostMode     *bool
	History       []string
}

// Observer is notified after a mutation with the set of changed fields and the resulting state.
type Observer func(change Change, snap Snapshot)

// state is the implementation of the State interface.
type state struct {
	mu sync.RWMutex

	animationType AnimationType
	speed         float64
	ghostMode     bool
	asset         asset.SceneAsset
	displayName   string
	history       History
	listening     bool

	nextObserver int
	observers    map[int]Observer
}

// State is the single source of truth for animation type, speed, ghost mode, the loaded asset
// and the command history. Every mutation is last-writer-wins; speed is always kept in
// [MinSpeed, MaxSpeed]. Observers run synchronously on the mutating goroutine after the lock
// is released, and only when a field actually changed.
type State interface {
	// Snapshot returns a consistent copy of every field.
	//
	// Returns:
	//   - Snapshot: the current state
	Snapshot() Snapshot

	// AnimationType retrieves the current animation type.
	//
	// Returns:
	//   - AnimationType: the animation type
	AnimationType() AnimationType

	// Speed retrieves the current animation speed multiplier.
	//
	// Returns:
	//   - float64: speed in [MinSpeed, MaxSpeed]
	Speed() float64

	// GhostMode reports whether ghost mode is enabled.
	//
	// Returns:
	//   - bool: the ghost flag
	GhostMode() bool

	// Asset retrieves the loaded asset, or nil.
	//
	// Returns:
	//   - asset.SceneAsset: the loaded asset
	Asset() asset.SceneAsset

	// SetAnimationType sets the animation type.
	//
	// Parameters:
	//   - t: the new animation type
	SetAnimationType(t AnimationType)

	// SetSpeed sets the animation speed, clamped to [MinSpeed, MaxSpeed].
	//
	// Parameters:
	//   - speed: the requested speed
	SetSpeed(speed float64)

	// SetGhostMode sets the ghost flag.
	//
	// Parameters:
	//   - enabled: the new flag
	SetGhostMode(enabled bool)

	// ToggleGhostMode inverts the ghost flag.
	//
	// Returns:
	//   - bool: the new flag
	ToggleGhostMode() bool

	// SetAsset installs the loaded asset and its display name. An empty name falls back to
	// DefaultDisplayName; a nil asset clears both.
	//
	// Parameters:
	//   - a: the asset, or nil
	//   - displayName: the name shown to the user
	SetAsset(a asset.SceneAsset, displayName string)

	// SetListening records whether a speech session is active.
	//
	// Parameters:
	//   - listening: the new flag
	SetListening(listening bool)

	// Record pushes command log entries to the front of the history.
	//
	// Parameters:
	//   - entries: the entries, most recent first
	Record(entries ...string)

	// Apply performs every assignment in u under one lock and notifies observers once.
	//
	// Parameters:
	//   - u: the batch of assignments
	//
	// Returns:
	//   - Change: the fields that changed
	Apply(u Update) Change

	// Subscribe registers an observer.
	//
	// Parameters:
	//   - fn: the observer
	//
	// Returns:
	//   - func(): removes the observer; safe to call more than once
	Subscribe(fn Observer) func()
}

var _ State = &state{}

// NewState creates a State with no asset, no animation, speed 1.0 and ghost mode off, then
// applies options.
//
// Parameters:
//   - options: variadic list of StateBuilderOption functions
//
// Returns:
//   - State: the new state
func NewState(options ...StateBuilderOption) State {
	s := &state{
		speed:     DefaultSpeed,
		observers: make(map[int]Observer),
	}
	for _, opt := range options {
		opt(s)
	}
	s.speed = ClampSpeed(s.speed)
	return s
}

// ClampSpeed limits speed to [MinSpeed, MaxSpeed].
func ClampSpeed(speed float64) float64 {
	return common.Clamp(speed, MinSpeed, MaxSpeed)
}

func (s *state) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *state) snapshotLocked() Snapshot {
	return Snapshot{
		AnimationType: s.animationType,
		Speed:         s.speed,
		GhostMode:     s.ghostMode,
		Asset:         s.asset,
		DisplayName:   s.displayName,
		History:       s.history.Entries(),
		Listening:     s.listening,
	}
}

func (s *state) AnimationType() AnimationType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.animationType
}

func (s *state) Speed() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speed
}

func (s *state) GhostMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ghostMode
}

func (s *state) Asset() asset.SceneAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.asset
}

func (s *state) SetAnimationType(t AnimationType) {
	s.Apply(Update{AnimationType: &t})
}

func (s *state) SetSpeed(speed float64) {
	s.Apply(Update{Speed: &speed})
}

func (s *state) SetGhostMode(enabled bool) {
	s.Apply(Update{GhostMode: &enabled})
}

func (s *state) ToggleGhostMode() bool {
	s.mu.Lock()
	s.ghostMode = !s.ghostMode
	enabled := s.ghostMode
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(ChangeGhost, snap)
	return enabled
}

func (s *state) SetAsset(a asset.SceneAsset, displayName string) {
	s.mu.Lock()
	var change Change
	if a == nil {
		displayName = ""
	} else {
		displayName = common.FirstNonBlank(displayName, DefaultDisplayName)
	}
	if s.asset != a || s.displayName != displayName {
		change = ChangeAsset
	}
	s.asset = a
	s.displayName = displayName
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(change, snap)
}

func (s *state) SetListening(listening bool) {
	s.mu.Lock()
	var change Change
	if s.listening != listening {
		s.listening = listening
		change = ChangeListening
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(change, snap)
}

func (s *state) Record(entries ...string) {
	s.Apply(Update{History: entries})
}

func (s *state) Apply(u Update) Change {
	s.mu.Lock()
	var change Change
	if u.AnimationType != nil && *u.AnimationType != s.animationType {
		s.animationType = *u.AnimationType
		change |= ChangeAnimation
	}
	if u.Speed != nil {
		if v := ClampSpeed(*u.Speed); v != s.speed {
			s.speed = v
			change |= ChangeSpeed
		}
	}
	if u.GhostMode != nil && *u.GhostMode != s.ghostMode {
		s.ghostMode = *u.GhostMode
		change |= ChangeGhost
	}
	if len(u.History) > 0 {
		s.history.PushFront(u.History...)
		change |= ChangeHistory
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(change, snap)
	return change
}

func (s *state) Subscribe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// notify runs observers in subscription order.
func (s *state) notify(change Change, snap Snapshot) {
	if change == 0 {
		return
	}
	s.mu.RLock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)

	for _, id := range ids {
		s.mu.RLock()
		fn, ok := s.observers[id]
		s.mu.RUnlock()
		if ok {
			fn(change, snap)
		}
	}
}
