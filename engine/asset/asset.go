// Package asset holds the in-memory form of a loaded scene: its surfaces, their materials and
// the single root transform shared by every viewport.
package asset

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer/material"
)

// sceneAsset is the implementation of the SceneAsset interface.
type sceneAsset struct {
	mu sync.RWMutex

	name      string
	surfaces  []Surface
	positionY float32
	rotationY float32
	disposed  bool

	center mgl32.Vec3
	radius float32
}

// SceneAsset is one loaded scene graph. It is either live, and safe to render and mutate, or
// disposed, after which every transform mutation is ignored.
type SceneAsset interface {
	// Name retrieves the source name the asset was loaded from.
	//
	// Returns:
	//   - string: the asset name
	Name() string

	// Surfaces retrieves the renderable surfaces.
	//
	// Returns:
	//   - []Surface: the surfaces
	Surfaces() []Surface

	// Materials retrieves every material of every surface, flattened in surface order.
	//
	// Returns:
	//   - []material.Material: all materials
	Materials() []material.Material

	// Live reports whether the asset has not been disposed.
	//
	// Returns:
	//   - bool: true while the asset may be rendered and mutated
	Live() bool

	// MarkDisposed moves the asset to the disposed state.
	//
	// Returns:
	//   - bool: true if the asset was live before the call
	MarkDisposed() bool

	// PositionY retrieves the root vertical offset.
	//
	// Returns:
	//   - float32: vertical offset in world units
	PositionY() float32

	// SetPositionY overwrites the root vertical offset. Ignored once disposed.
	//
	// Parameters:
	//   - y: the new vertical offset
	//
	// Returns:
	//   - bool: true if the transform was changed
	SetPositionY(y float32) bool

	// RotationY retrieves the accumulated rotation about the vertical axis.
	//
	// Returns:
	//   - float32: rotation in radians
	RotationY() float32

	// RotateY adds delta to the rotation about the vertical axis. Ignored once disposed.
	//
	// Parameters:
	//   - delta: radians to add
	//
	// Returns:
	//   - bool: true if the transform was changed
	RotateY(delta float32) bool

	// ModelMatrix returns the world transform: the mesh is centered on its bounds, scaled to unit
	// radius, rotated about Y and lifted by the vertical offset.
	//
	// Returns:
	//   - mgl32.Mat4: the model matrix
	ModelMatrix() mgl32.Mat4
}

var _ SceneAsset = &sceneAsset{}

// NewSceneAsset creates a live SceneAsset.
//
// Parameters:
//   - options: variadic list of SceneAssetBuilderOption functions
//
// Returns:
//   - SceneAsset: the new asset
func NewSceneAsset(options ...SceneAssetBuilderOption) SceneAsset {
	a := &sceneAsset{radius: 1}
	for _, opt := range options {
		opt(a)
	}
	a.computeBounds()
	return a
}

func (a *sceneAsset) Name() string {
	return a.name
}

func (a *sceneAsset) Surfaces() []Surface {
	return a.surfaces
}

func (a *sceneAsset) Materials() []material.Material {
	var out []material.Material
	for _, s := range a.surfaces {
		out = append(out, s.Materials()...)
	}
	return out
}

func (a *sceneAsset) Live() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.disposed
}

func (a *sceneAsset) MarkDisposed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return false
	}
	a.disposed = true
	return true
}

func (a *sceneAsset) PositionY() float32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.positionY
}

func (a *sceneAsset) SetPositionY(y float32) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return false
	}
	a.positionY = y
	return true
}

func (a *sceneAsset) RotationY() float32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rotationY
}

func (a *sceneAsset) RotateY(delta float32) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return false
	}
	a.rotationY += delta
	return true
}

func (a *sceneAsset) ModelMatrix() mgl32.Mat4 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	scale := float32(1)
	if a.radius > 0 {
		scale = 1 / a.radius
	}
	return mgl32.Translate3D(0, a.positionY, 0).
		Mul4(mgl32.HomogRotate3DY(a.rotationY)).
		Mul4(mgl32.Scale3D(scale, scale, scale)).
		Mul4(mgl32.Translate3D(-a.center.X(), -a.center.Y(), -a.center.Z()))
}

// computeBounds derives the bounding sphere used to normalize arbitrary models into view.
func (a *sceneAsset) computeBounds() {
	first := true
	var lo, hi mgl32.Vec3
	for _, s := range a.surfaces {
		p := s.Positions()
		for i := 0; i+2 < len(p); i += 3 {
			v := mgl32.Vec3{p[i], p[i+1], p[i+2]}
			if first {
				lo, hi, first = v, v, false
				continue
			}
			for k := 0; k < 3; k++ {
				lo[k] = min(lo[k], v[k])
				hi[k] = max(hi[k], v[k])
			}
		}
	}
	if first {
		return
	}
	a.center = lo.Add(hi).Mul(0.5)
	if r := hi.Sub(lo).Len() / 2; r > 0 {
		a.radius = r
	}
}
