package asset

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer/material"
)

func cube() Surface {
	return NewSurface(
		WithSurfaceName("cube"),
		WithGeometry([]float32{-1, -1, -1, 1, 1, 1, 1, -1, 1}, []uint32{0, 1, 2}),
	)
}

func TestNewSurfaceDefaultMaterial(t *testing.T) {
	s := cube()
	require.Len(t, s.Materials(), 1)
	assert.Equal(t, "cube", s.Materials()[0].Name())
}

func TestReleaseGeometryOnce(t *testing.T) {
	calls := 0
	s := cube()
	s.SetGeometryResource(common.ReleaseFunc(func() { calls++ }))
	assert.True(t, s.ReleaseGeometry())
	assert.False(t, s.ReleaseGeometry())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, s.GeometryReleases())
}

func TestTransformIgnoredWhenDisposed(t *testing.T) {
	a := NewSceneAsset(WithName("m.glb"), WithSurfaces(cube()))
	assert.True(t, a.Live())
	assert.True(t, a.SetPositionY(0.2))
	assert.True(t, a.RotateY(0.01))
	assert.True(t, a.RotateY(0.01))
	assert.InDelta(t, 0.02, a.RotationY(), 1e-6)

	assert.True(t, a.MarkDisposed())
	assert.False(t, a.MarkDisposed())
	assert.False(t, a.Live())
	assert.False(t, a.SetPositionY(1))
	assert.False(t, a.RotateY(1))
	assert.InDelta(t, 0.2, a.PositionY(), 1e-6)
}

func TestModelMatrixNormalizesBounds(t *testing.T) {
	a := NewSceneAsset(WithSurfaces(cube()))
	corner := a.ModelMatrix().Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.InDelta(t, 1/math.Sqrt(3), corner.X(), 1e-5)

	a.SetPositionY(0.5)
	center := a.ModelMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0.5, center.Y(), 1e-5)
}

func TestMaterialsFlattened(t *testing.T) {
	s := NewSurface(WithMaterials(material.NewMaterial(), material.NewMaterial()))
	a := NewSceneAsset(WithSurfaces(s, cube()))
	assert.Len(t, a.Materials(), 3)
}
