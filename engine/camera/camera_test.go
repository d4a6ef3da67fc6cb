package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-3, "component %d", i)
	}
}

func TestDefaultCamera(t *testing.T) {
	c := NewCamera()
	assertVec(t, mgl32.Vec3{0, 0, 5}, c.Position())
	assert.Equal(t, DefaultFov, c.Fov())
	assert.Equal(t, float32(1), c.Aspect())
}

func TestViewportPositionsRoundTrip(t *testing.T) {
	for _, p := range []mgl32.Vec3{{0, 0, 5}, {5, 0, 0}, {-3, 2, 3}} {
		c := NewCamera(WithPosition(p[0], p[1], p[2]))
		assertVec(t, p, c.Position())
	}
}

func TestTopDownCameraStaysUsable(t *testing.T) {
	c := NewCamera(WithPosition(0, 5, 0))
	pos := c.Position()
	assert.InDelta(t, 5, pos.Y(), 1e-3)

	vp := c.ViewProjection()
	for _, v := range vp {
		assert.False(t, math.IsNaN(float64(v)), "NaN in view projection")
	}
}

func TestViewProjectionCentersTarget(t *testing.T) {
	c := NewCamera(WithPosition(-3, 2, 3), WithAspect(16.0/9.0))
	clip := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-4)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-4)
}

func TestOrbitZoomReset(t *testing.T) {
	c := NewCamera(WithRadiusLimits(1, 10))

	c.Orbit(mgl32.DegToRad(90), 0)
	assertVec(t, mgl32.Vec3{5, 0, 0}, c.Position())

	c.Zoom(100)
	assert.InDelta(t, 1, c.Position().Len(), 1e-4)
	c.Zoom(-100)
	assert.InDelta(t, 10, c.Position().Len(), 1e-4)

	c.Orbit(0, 10)
	assert.Less(t, c.Position().Y(), float32(10))

	c.Reset()
	assertVec(t, mgl32.Vec3{0, 0, 5}, c.Position())
}

func TestSetAspectIgnoresNonPositive(t *testing.T) {
	c := NewCamera()
	c.SetAspect(2)
	c.SetAspect(0)
	c.SetAspect(-1)
	assert.Equal(t, float32(2), c.Aspect())
}
