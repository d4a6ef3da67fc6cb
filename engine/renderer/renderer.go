package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/loader"
	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-ghost/engine/viewport"
	"github.com/Carmen-Shannon/oxy-ghost/engine/window"
)

var (
	errEmptySurface   = errors.New("renderer: surface has no geometry")
	errNoSurface      = errors.New("renderer: window has no surface descriptor")
	errRendererClosed = errors.New("renderer: closed")
)

// Sprite is one particle of the background overlay, in framebuffer pixels.
type Sprite struct {
	X, Y    float32
	Size    float32
	Opacity float32
}

// Frame is the state presented by one RenderFrame call.
type Frame struct {
	Viewports []viewport.Viewport
	Sprites   []Sprite
}

// FrameStats summarises what one frame drew.
type FrameStats struct {
	Viewports int
	Draws     int
	Ghost     int
	Sprites   int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	backendType RendererBackendType
	backend     gpuBackend
	closed      bool

	width  int
	height int

	meshes    map[asset.Surface]common.Releaser
	materials map[material.Material]common.Releaser

	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
	clearColor           [4]float64
	spriteColor          [4]float32
}

// Renderer draws the loaded asset into every viewport rectangle and the particle field over
// the whole surface. It is also the loader's Uploader: GPU buffers created here are owned by the
// asset and freed when the asset is disposed.
type Renderer interface {
	loader.Uploader

	// Resize reconfigures the surface for a new framebuffer size.
	//
	// Parameters:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	//
	// Returns:
	//   - error: error if the surface attachments could not be recreated
	Resize(width, height int) error

	// Size returns the configured framebuffer size.
	//
	// Returns:
	//   - width, height: size in pixels
	Size() (width, height int)

	// RenderFrame draws and presents one frame. Viewports without a live asset are left clear.
	//
	// Parameters:
	//   - f: the viewports and sprites to draw
	//
	// Returns:
	//   - FrameStats: what was drawn
	//   - error: error if the surface texture cannot be acquired
	RenderFrame(f Frame) (FrameStats, error)

	// Resident returns the number of uploaded meshes and materials still held on the GPU.
	//
	// Returns:
	//   - meshes: live mesh count
	//   - materials: live material count
	Resident() (meshes, materials int)

	// Release frees the device. Uploads and frames fail afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into the window's surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - win: the window providing the surface descriptor and initial size
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: error if no adapter or device is available
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(backendType, options...)
	if r.backend == nil {
		desc := win.SurfaceDescriptor()
		if desc == nil {
			return nil, errNoSurface
		}
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			b, err := newWGPURendererBackend(desc, r.forceFallbackAdapter, r.msaa, r.clearColor, r.spriteColor)
			if err != nil {
				return nil, fmt.Errorf("failed to create wgpu backend: %w", err)
			}
			r.backend = b
		}
	}
	r.backend.SetPresentMode(r.presentMode)
	if err := r.Resize(win.Width(), win.Height()); err != nil {
		return nil, err
	}
	return r, nil
}

func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		backendType: backendType,
		meshes:      make(map[asset.Surface]common.Releaser),
		materials:   make(map[material.Material]common.Releaser),
		presentMode: PresentModeVSync,
		msaa:        MSAA4x,
		clearColor:  [4]float64{0.02, 0.03, 0.06, 1},
		spriteColor: [4]float32{165.0 / 255.0, 210.0 / 255.0, 1, 1},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("failed to configure surface %dx%d: %w", width, height, err)
	}
	r.width, r.height = width, height
	return nil
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) UploadGeometry(s asset.Surface) (common.Releaser, error) {
	positions, indices := s.Positions(), s.Indices()
	if len(positions) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("%w: %s", errEmptySurface, s.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errRendererClosed
	}
	mesh, err := r.backend.CreateMesh(s.Name(), common.SliceToBytes(positions), common.SliceToBytes(indices), len(indices))
	if err != nil {
		return nil, err
	}
	r.meshes[s] = mesh
	return common.ReleaseFunc(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.meshes[s]; !ok {
			return
		}
		delete(r.meshes, s)
		mesh.Release()
	}), nil
}

func (r *renderer) UploadMaterial(m material.Material) (common.Releaser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errRendererClosed
	}
	handle, err := r.backend.CreateMaterial(m.Name())
	if err != nil {
		return nil, err
	}
	r.materials[m] = handle
	return common.ReleaseFunc(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.materials[m]; !ok {
			return
		}
		delete(r.materials, m)
		handle.Release()
	}), nil
}

func (r *renderer) Resident() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.meshes), len(r.materials)
}

// buildPasses turns the viewports into per-rectangle draw lists. Caller must hold the mutex.
func (r *renderer) buildPasses(views []viewport.Viewport, stats *FrameStats) []viewportPass {
	passes := make([]viewportPass, 0, len(views))
	for slot, v := range views {
		if !v.Mounted() {
			continue
		}
		x, y, w, h := v.Rect().Pixels(r.width, r.height)
		pass := viewportPass{slot: slot, rect: pixelRect{X: x, Y: y, W: w, H: h}}

		a := v.Asset()
		if a != nil && a.Live() {
			pass.mvp = v.Camera().ViewProjection().Mul4(a.ModelMatrix())
			pass.commands = r.commandsFor(a, stats)
		}
		passes = append(passes, pass)
	}
	stats.Viewports = len(passes)
	return passes
}

func (r *renderer) commandsFor(a asset.SceneAsset, stats *FrameStats) []drawCommand {
	var opaque, ghost []drawCommand
	for _, s := range a.Surfaces() {
		mesh, ok := r.meshes[s]
		if !ok {
			continue
		}
		for _, m := range s.Materials() {
			handle, ok := r.materials[m]
			if !ok || m.Disposed() {
				continue
			}
			cmd := drawCommand{mesh: mesh, material: handle, color: m.DisplayColor(), ghost: m.Transparent()}
			if cmd.ghost {
				ghost = append(ghost, cmd)
			} else {
				opaque = append(opaque, cmd)
			}
		}
	}
	stats.Draws += len(opaque) + len(ghost)
	stats.Ghost += len(ghost)
	return append(opaque, ghost...)
}

func (r *renderer) RenderFrame(f Frame) (FrameStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats FrameStats
	if r.closed {
		return stats, errRendererClosed
	}
	if err := r.backend.BeginFrame(); err != nil {
		return stats, err
	}

	for _, pass := range r.buildPasses(f.Viewports, &stats) {
		r.backend.DrawViewport(pass)
	}

	if len(f.Sprites) > 0 {
		instances := make([]spriteInstance, len(f.Sprites))
		for i, s := range f.Sprites {
			instances[i] = spriteInstance(s)
		}
		r.backend.DrawSprites(instances, r.width, r.height)
		stats.Sprites = len(instances)
	}

	r.backend.EndFrame()
	r.backend.Present()
	return stats, nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if n, m := len(r.meshes), len(r.materials); n > 0 || m > 0 {
		logger.Log.WithFields(logrus.Fields{"meshes": n, "materials": m}).Warn("renderer released with resident GPU resources")
	}
	for s, mesh := range r.meshes {
		mesh.Release()
		delete(r.meshes, s)
	}
	for m, handle := range r.materials {
		handle.Release()
		delete(r.materials, m)
	}
	r.backend.Release()
}
