package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the eye position the camera starts at and returns to on Reset.
//
// Parameters:
//   - x, y, z: world-space eye position
//
// Returns:
//   - CameraBuilderOption: a function that sets the eye position
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.home = mgl32.Vec3{x, y, z}
	}
}

// WithTarget sets the look-at point.
//
// Parameters:
//   - x, y, z: world-space target
//
// Returns:
//   - CameraBuilderOption: a function that sets the target
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = mgl32.Vec3{x, y, z}
	}
}

// WithFov sets the vertical field of view in degrees.
//
// Parameters:
//   - fov: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if fov > 0 && fov < 180 {
			c.fov = fov
		}
	}
}

// WithAspect sets the aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraBuilderOption: a function that sets the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clipping distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if near > 0 && far > near {
			c.near, c.far = near, far
		}
	}
}

// WithRadiusLimits bounds how close and how far Zoom may move the eye.
//
// Parameters:
//   - minRadius: closest distance to the target
//   - maxRadius: farthest distance from the target
//
// Returns:
//   - CameraBuilderOption: a function that sets the zoom limits
func WithRadiusLimits(minRadius, maxRadius float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if minRadius > 0 && maxRadius >= minRadius {
			c.minRadius, c.maxRadius = minRadius, maxRadius
		}
	}
}
