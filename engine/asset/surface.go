package asset

import (
	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer/material"
)

// surface is the implementation of the Surface interface.
type surface struct {
	name             string
	positions        []float32
	indices          []uint32
	materials        []material.Material
	geometry         common.Releaser
	geometryReleased bool
	geometryReleases int
}

// Surface is one renderable node of a scene asset: a triangle mesh and the material(s) drawn on it.
type Surface interface {
	// Name retrieves the surface identifier.
	//
	// Returns:
	//   - string: the surface name
	Name() string

	// Positions retrieves the packed xyz vertex positions.
	//
	// Returns:
	//   - []float32: vertex positions, three floats per vertex
	Positions() []float32

	// Indices retrieves the triangle list indices.
	//
	// Returns:
	//   - []uint32: triangle indices
	Indices() []uint32

	// Materials retrieves every material attached to the surface.
	//
	// Returns:
	//   - []material.Material: the materials, never empty for surfaces built by NewSurface
	Materials() []material.Material

	// SetGeometryResource attaches the GPU buffers holding the mesh.
	//
	// Parameters:
	//   - r: the resource released by ReleaseGeometry
	SetGeometryResource(r common.Releaser)

	// ReleaseGeometry releases the geometry buffers. Only the first call has any effect.
	//
	// Returns:
	//   - bool: true if this call performed the release
	ReleaseGeometry() bool

	// GeometryReleased reports whether ReleaseGeometry has run.
	//
	// Returns:
	//   - bool: true once released
	GeometryReleased() bool

	// GeometryReleases returns how many times the attached geometry resource was released.
	//
	// Returns:
	//   - int: release count, 0 or 1
	GeometryReleases() int
}

var _ Surface = &surface{}

// NewSurface creates a Surface. A surface built without materials receives one default opaque material.
//
// Parameters:
//   - options: variadic list of SurfaceBuilderOption functions
//
// Returns:
//   - Surface: the new surface
func NewSurface(options ...SurfaceBuilderOption) Surface {
	s := &surface{}
	for _, opt := range options {
		opt(s)
	}
	if len(s.materials) == 0 {
		s.materials = []material.Material{material.NewMaterial(material.WithName(s.name))}
	}
	return s
}

func (s *surface) Name() string {
	return s.name
}

func (s *surface) Positions() []float32 {
	return s.positions
}

func (s *surface) Indices() []uint32 {
	return s.indices
}

func (s *surface) Materials() []material.Material {
	return s.materials
}

func (s *surface) SetGeometryResource(r common.Releaser) {
	s.geometry = r
}

func (s *surface) ReleaseGeometry() bool {
	if s.geometryReleased {
		return false
	}
	s.geometryReleased = true
	if s.geometry != nil {
		s.geometry.Release()
		s.geometry = nil
		s.geometryReleases++
	}
	return true
}

func (s *surface) GeometryReleased() bool {
	return s.geometryReleased
}

func (s *surface) GeometryReleases() int {
	return s.geometryReleases
}
