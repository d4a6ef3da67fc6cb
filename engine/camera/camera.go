package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// maxElevation keeps the eye off the poles where the look-at basis degenerates.
const maxElevation = math32.Pi/2 - 0.001

// DefaultFov is the vertical field of view in degrees.
const DefaultFov float32 = 50

type cameraImpl struct {
	mu sync.Mutex

	target mgl32.Vec3
	up     mgl32.Vec3

	// Spherical offset of the eye from the target.
	radius    float32
	azimuth   float32
	elevation float32

	minRadius float32
	maxRadius float32

	home mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32
}

// Camera is a perspective camera orbiting a target point. It is created at an eye position and
// can be orbited and zoomed around the target, the way a viewport's orbit controls move it.
type Camera interface {
	// Position returns the eye position in world space.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: the target
	Target() mgl32.Vec3

	// Fov returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Orbit rotates the eye around the target.
	//
	// Parameters:
	//   - dAzimuth: change of the horizontal angle in radians
	//   - dElevation: change of the vertical angle in radians, clamped short of the poles
	Orbit(dAzimuth, dElevation float32)

	// Zoom moves the eye toward (positive) or away from (negative) the target, within the radius limits.
	//
	// Parameters:
	//   - delta: distance to move
	Zoom(delta float32)

	// Reset returns the eye to the position the camera was created with.
	Reset()

	// ViewMatrix returns the look-at matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the perspective projection.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjection returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjection() mgl32.Mat4
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera looking at the origin from [0, 0, 5] with a 50 degree field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		up:        mgl32.Vec3{0, 1, 0},
		home:      mgl32.Vec3{0, 0, 5},
		minRadius: 0.5,
		maxRadius: 100,
		fov:       DefaultFov,
		aspect:    1,
		near:      0.1,
		far:       1000,
	}
	for _, option := range options {
		option(c)
	}
	c.place(c.home)
	return c
}

// place derives the spherical offset from an eye position. Caller must hold the mutex or own c.
func (c *cameraImpl) place(eye mgl32.Vec3) {
	offset := eye.Sub(c.target)
	c.radius = offset.Len()
	if c.radius < 1e-6 {
		offset, c.radius = mgl32.Vec3{0, 0, 1}, 1
	}
	c.elevation = clampElevation(math32.Asin(offset.Y() / c.radius))
	c.azimuth = math32.Atan2(offset.X(), offset.Z())
}

func clampElevation(e float32) float32 {
	return mgl32.Clamp(e, -maxElevation, maxElevation)
}

// position computes the eye from the spherical offset. Caller must hold the mutex.
func (c *cameraImpl) position() mgl32.Vec3 {
	cosE := math32.Cos(c.elevation)
	return c.target.Add(mgl32.Vec3{
		c.radius * cosE * math32.Sin(c.azimuth),
		c.radius * math32.Sin(c.elevation),
		c.radius * cosE * math32.Cos(c.azimuth),
	})
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) Orbit(dAzimuth, dElevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += dAzimuth
	c.elevation = clampElevation(c.elevation + dElevation)
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = mgl32.Clamp(c.radius-delta, c.minRadius, c.maxRadius)
}

func (c *cameraImpl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.place(c.home)
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.LookAtV(c.position(), c.target, c.up)
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := mgl32.LookAtV(c.position(), c.target, c.up)
	return mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far).Mul4(view)
}
