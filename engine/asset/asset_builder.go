package asset

import "github.com/Carmen-Shannon/oxy-ghost/engine/renderer/material"

// SceneAssetBuilderOption is a function that configures a scene asset during construction.
type SceneAssetBuilderOption func(*sceneAsset)

// WithName sets the source name of the asset.
//
// Parameters:
//   - name: the asset name
//
// Returns:
//   - SceneAssetBuilderOption: option function to apply
func WithName(name string) SceneAssetBuilderOption {
	return func(a *sceneAsset) {
		a.name = name
	}
}

// WithSurfaces sets the renderable surfaces of the asset.
//
// Parameters:
//   - surfaces: the surfaces
//
// Returns:
//   - SceneAssetBuilderOption: option function to apply
func WithSurfaces(surfaces ...Surface) SceneAssetBuilderOption {
	return func(a *sceneAsset) {
		a.surfaces = append(a.surfaces, surfaces...)
	}
}

// SurfaceBuilderOption is a function that configures a surface during construction.
type SurfaceBuilderOption func(*surface)

// WithSurfaceName sets the surface identifier.
//
// Parameters:
//   - name: the surface name
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithSurfaceName(name string) SurfaceBuilderOption {
	return func(s *surface) {
		s.name = name
	}
}

// WithGeometry sets the mesh of the surface.
//
// Parameters:
//   - positions: packed xyz vertex positions
//   - indices: triangle list indices
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithGeometry(positions []float32, indices []uint32) SurfaceBuilderOption {
	return func(s *surface) {
		s.positions = positions
		s.indices = indices
	}
}

// WithMaterials sets the materials drawn on the surface.
//
// Parameters:
//   - materials: one or more materials
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithMaterials(materials ...material.Material) SurfaceBuilderOption {
	return func(s *surface) {
		s.materials = append(s.materials, materials...)
	}
}
