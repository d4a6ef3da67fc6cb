package material

import (
	"github.com/Carmen-Shannon/oxy-ghost/common"
)

// Opacity values used by the two rendering modes.
const (
	OpaqueOpacity = float32(1.0)
	GhostOpacity  = float32(0.7)
)

// material is the implementation of the Material interface.
type material struct {
	name        string
	baseColor   [4]float32
	metallic    float32
	roughness   float32
	transparent bool
	opacity     float32
	disposed    bool
	releases    int
	resource    common.Releaser
}

// Material is the mutable render-state record attached to a surface of a scene asset.
//
// Surface properties (name, base color, metallic, roughness) are set at load time and are
// read-only. The blend state (transparent flag and opacity) is mutated by the ghost effect.
// A material may own a GPU resource which is released exactly once by Dispose.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor of the material.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// Transparent reports whether the material is alpha blended.
	//
	// Returns:
	//   - bool: true if the material renders translucent
	Transparent() bool

	// Opacity retrieves the blend opacity in [0, 1].
	//
	// Returns:
	//   - float32: the opacity
	Opacity() float32

	// SetBlend sets the transparent flag and the opacity together. Ignored once disposed.
	//
	// Parameters:
	//   - transparent: whether the material is alpha blended
	//   - opacity: the blend opacity, clamped to [0, 1]
	SetBlend(transparent bool, opacity float32)

	// DisplayColor returns the color fed to the renderer: the base color with its alpha
	// multiplied by the opacity when the material is transparent.
	//
	// Returns:
	//   - [4]float32: the RGBA color to draw with
	DisplayColor() [4]float32

	// SetResource attaches the GPU resource owned by this material.
	//
	// Parameters:
	//   - r: the resource to release on Dispose
	SetResource(r common.Releaser)

	// Dispose releases the attached resource. Only the first call has any effect.
	//
	// Returns:
	//   - bool: true if this call performed the release, false if already disposed
	Dispose() bool

	// Disposed reports whether Dispose has run.
	//
	// Returns:
	//   - bool: true once disposed
	Disposed() bool

	// Releases returns how many times the attached resource has been released.
	//
	// Returns:
	//   - int: release count, 0 or 1
	Releases() int
}

var _ Material = &material{}

// NewMaterial creates a new opaque Material configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		roughness: 1.0,
		opacity:   OpaqueOpacity,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Transparent() bool {
	return m.transparent
}

func (m *material) Opacity() float32 {
	return m.opacity
}

func (m *material) SetBlend(transparent bool, opacity float32) {
	if m.disposed {
		return
	}
	m.transparent = transparent
	m.opacity = common.Clamp(opacity, 0, 1)
}

func (m *material) DisplayColor() [4]float32 {
	c := m.baseColor
	if m.transparent {
		c[3] *= m.opacity
	}
	return c
}

func (m *material) SetResource(r common.Releaser) {
	m.resource = r
}

func (m *material) Dispose() bool {
	if m.disposed {
		return false
	}
	m.disposed = true
	if m.resource != nil {
		m.resource.Release()
		m.resource = nil
		m.releases++
	}
	return true
}

func (m *material) Disposed() bool {
	return m.disposed
}

func (m *material) Releases() int {
	return m.releases
}
