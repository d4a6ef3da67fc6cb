package viewport

import (
	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/camera"
)

type ViewportBuilderOption func(*viewport)

// WithName sets the display label.
//
// Parameters:
//   - name: the label
//
// Returns:
//   - ViewportBuilderOption: a function that sets the label
func WithName(name string) ViewportBuilderOption {
	return func(v *viewport) {
		v.name = name
	}
}

// WithCamera sets the viewport camera.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - ViewportBuilderOption: a function that sets the camera
func WithCamera(c camera.Camera) ViewportBuilderOption {
	return func(v *viewport) {
		v.camera = c
	}
}

// WithRect sets the initial normalized screen rectangle.
//
// Parameters:
//   - r: the rectangle
//
// Returns:
//   - ViewportBuilderOption: a function that sets the rectangle
func WithRect(r common.Rect) ViewportBuilderOption {
	return func(v *viewport) {
		v.rect = r
	}
}
