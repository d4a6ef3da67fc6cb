// Package viewport holds the independent camera views onto the loaded asset.
package viewport

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/animator"
	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/camera"
	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
)

type viewport struct {
	mu sync.Mutex

	id     int
	name   string
	camera camera.Camera
	rect   common.Rect

	scheduler animator.Scheduler
	binding   *animator.Binding
	mounted   bool
}

// Viewport is one camera onto the shared asset, drawn into its own rectangle of the window.
// While mounted it holds a binding on the asset's animation scheduler; the transform itself
// belongs to the asset, so every viewport sees the same pose.
type Viewport interface {
	// ID returns the viewport identifier.
	//
	// Returns:
	//   - int: the identifier
	ID() int

	// Name returns the display label.
	//
	// Returns:
	//   - string: the label
	Name() string

	// Camera returns the viewport camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Rect returns the normalized screen rectangle.
	//
	// Returns:
	//   - common.Rect: the rectangle
	Rect() common.Rect

	// SetRect moves the viewport and updates the camera aspect ratio for a surface of the given size.
	//
	// Parameters:
	//   - r: the normalized rectangle
	//   - width, height: the surface size in pixels
	SetRect(r common.Rect, width, height int)

	// Attach cancels any current binding and binds to s. Ignored after Unmount.
	//
	// Parameters:
	//   - s: the scheduler of the asset to show, or nil to show nothing
	Attach(s animator.Scheduler)

	// Asset returns the asset of the attached scheduler.
	//
	// Returns:
	//   - asset.SceneAsset: the asset, or nil when nothing is attached
	Asset() asset.SceneAsset

	// Binding returns the current scheduler binding.
	//
	// Returns:
	//   - *animator.Binding: the binding, or nil
	Binding() *animator.Binding

	// Mounted reports whether the viewport is still mounted.
	//
	// Returns:
	//   - bool: false after Unmount
	Mounted() bool

	// Unmount cancels the binding immediately. No further ticks fire on its behalf.
	// Safe to call more than once.
	Unmount()
}

var _ Viewport = &viewport{}

// NewViewport creates a mounted viewport with no asset attached.
//
// Parameters:
//   - id: the viewport identifier
//   - options: functional options to configure the viewport
//
// Returns:
//   - Viewport: the viewport
func NewViewport(id int, options ...ViewportBuilderOption) Viewport {
	v := &viewport{
		id:      id,
		rect:    common.Rect{W: 1, H: 1},
		mounted: true,
	}
	for _, option := range options {
		option(v)
	}
	if v.camera == nil {
		v.camera = camera.NewCamera()
	}
	return v
}

func (v *viewport) ID() int {
	return v.id
}

func (v *viewport) Name() string {
	return v.name
}

func (v *viewport) Camera() camera.Camera {
	return v.camera
}

func (v *viewport) Rect() common.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rect
}

func (v *viewport) SetRect(r common.Rect, width, height int) {
	v.mu.Lock()
	v.rect = r
	v.mu.Unlock()

	_, _, pw, ph := r.Pixels(width, height)
	if ph > 0 {
		v.camera.SetAspect(pw / ph)
	}
}

func (v *viewport) Attach(s animator.Scheduler) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	v.binding.Cancel()
	v.binding, v.scheduler = nil, s
	if s != nil {
		v.binding = s.Bind(v.id)
	}
}

func (v *viewport) Asset() asset.SceneAsset {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.scheduler == nil {
		return nil
	}
	return v.scheduler.Asset()
}

func (v *viewport) Binding() *animator.Binding {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.binding
}

func (v *viewport) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

func (v *viewport) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	v.mounted = false
	v.binding.Cancel()
	v.binding, v.scheduler = nil, nil
	logger.Log.WithFields(logrus.Fields{"viewport": v.id, "name": v.name}).Debug("viewport unmounted")
}
