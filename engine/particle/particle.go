// Package particle simulates the decorative particle field drawn behind the viewports.
package particle

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/clock"
)

// DefaultCount is the number of particles created when no count is configured.
const DefaultCount = 20

// Opacity bounds of the shared pulse.
const (
	MinOpacity = float32(0.05)
	MaxOpacity = float32(0.5)
)

// Particle is one decorative entity. Positions are in pixels of the field's area.
type Particle struct {
	X, Y        float32
	Size        float32
	VX, VY      float32
	BaseOpacity float32
}

// field is the implementation of the Field interface.
type field struct {
	mu sync.Mutex

	clock  clock.Clock
	rng    *rand.Rand
	count  int
	width  float32
	height float32

	particles []Particle
	frame     clock.FrameID
	last      time.Duration
	elapsed   time.Duration
	running   bool
}

// Field owns a fixed set of particles drifting across a width x height area with wraparound.
type Field interface {
	// Start creates the particles and registers the tick loop. Calling Start on a running field is a no-op.
	Start()

	// Stop cancels the tick loop and releases every particle. Safe to call more than once.
	Stop()

	// Running reports whether the tick loop is registered.
	//
	// Returns:
	//   - bool: true between Start and Stop
	Running() bool

	// Step advances every particle by dt and applies wraparound. The tick loop calls it with the
	// time since the previous frame.
	//
	// Parameters:
	//   - dt: elapsed time since the previous step
	Step(dt time.Duration)

	// Resize changes the area. Particles beyond the new bounds are clamped to the edge.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height float32)

	// Size returns the current area.
	//
	// Returns:
	//   - float32: width in pixels
	//   - float32: height in pixels
	Size() (float32, float32)

	// Particles returns a copy of the particles.
	//
	// Returns:
	//   - []Particle: the particles; empty when stopped
	Particles() []Particle

	// Opacities returns the displayed opacity of each particle at the last frame time.
	//
	// Returns:
	//   - []float32: one opacity per particle, in [MinOpacity, MaxOpacity]
	Opacities() []float32
}

var _ Field = &field{}

// NewField creates a stopped Field over a width x height area.
//
// Parameters:
//   - clk: the frame source
//   - width: area width in pixels
//   - height: area height in pixels
//   - options: variadic list of FieldBuilderOption functions
//
// Returns:
//   - Field: the new field
func NewField(clk clock.Clock, width, height float32, options ...FieldBuilderOption) Field {
	f := &field{
		clock:  clk,
		count:  DefaultCount,
		width:  width,
		height: height,
	}
	for _, opt := range options {
		opt(f)
	}
	if f.rng == nil {
		now := uint64(time.Now().UnixNano())
		f.rng = rand.New(rand.NewPCG(now, now>>32|1))
	}
	return f
}

// DisplayOpacity is the pulsed opacity shared by all particles: the base opacity plus a
// time-driven sine of amplitude 0.1, clamped to [MinOpacity, MaxOpacity].
//
// Parameters:
//   - base: the particle's base opacity
//   - elapsed: time since the field started
//
// Returns:
//   - float32: the displayed opacity
func DisplayOpacity(base float32, elapsed time.Duration) float32 {
	ms := float32(elapsed.Milliseconds())
	return common.Clamp(base+math32.Sin(ms*0.001)*0.1, MinOpacity, MaxOpacity)
}

func (f *field) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}
	f.particles = make([]Particle, f.count)
	for i := range f.particles {
		f.particles[i] = f.spawn()
	}
	f.running = true
	f.last = f.clock.Now()
	f.elapsed = 0
	f.frame = f.clock.RequestFrame(f.tick)
}

// spawn draws one particle uniformly inside the area.
func (f *field) spawn() Particle {
	return Particle{
		Size:        f.rng.Float32()*10 + 3,
		X:           f.rng.Float32() * f.width,
		Y:           f.rng.Float32() * f.height,
		VX:          (f.rng.Float32() - 0.5) * 0.5,
		VY:          (f.rng.Float32() - 0.5) * 0.5,
		BaseOpacity: f.rng.Float32()*0.4 + 0.1,
	}
}

func (f *field) tick(now time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frame = 0
	if !f.running {
		return
	}
	dt := now - f.last
	f.last = now
	f.elapsed += dt
	f.stepLocked(dt)
	f.frame = f.clock.RequestFrame(f.tick)
}

func (f *field) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frame != 0 {
		f.clock.CancelFrame(f.frame)
		f.frame = 0
	}
	f.running = false
	f.particles = nil
}

func (f *field) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *field) Step(dt time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stepLocked(dt)
}

func (f *field) stepLocked(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	scale := float32(dt.Microseconds()) / 1000 * 0.1
	for i := range f.particles {
		p := &f.particles[i]
		p.X = wrap(p.X+p.VX*scale, p.Size, f.width)
		p.Y = wrap(p.Y+p.VY*scale, p.Size, f.height)
	}
}

// wrap moves a coordinate that left [-size, limit] to the opposite edge.
func wrap(v, size, limit float32) float32 {
	if v < -size {
		v = limit
	}
	if v > limit {
		v = -size
	}
	return v
}

func (f *field) Resize(width, height float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width = max(width, 0)
	f.height = max(height, 0)
	for i := range f.particles {
		p := &f.particles[i]
		p.X = min(p.X, f.width)
		p.Y = min(p.Y, f.height)
	}
}

func (f *field) Size() (float32, float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height
}

func (f *field) Particles() []Particle {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

func (f *field) Opacities() []float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]float32, len(f.particles))
	for i, p := range f.particles {
		out[i] = DisplayOpacity(p.BaseOpacity, f.elapsed)
	}
	return out
}
