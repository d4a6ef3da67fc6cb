package renderer

import (
	"github.com/Carmen-Shannon/oxy-ghost/common"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. This is the default.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing.
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// pixelRect is a viewport rectangle in framebuffer pixels.
type pixelRect struct {
	X, Y, W, H float32
}

// drawCommand draws one uploaded surface with one material.
type drawCommand struct {
	mesh     common.Releaser
	material common.Releaser
	color    [4]float32
	ghost    bool
}

// viewportPass is everything drawn into one viewport rectangle.
type viewportPass struct {
	slot     int
	rect     pixelRect
	mvp      [16]float32
	commands []drawCommand
}

// spriteInstance is the per-instance vertex data of the particle overlay.
type spriteInstance struct {
	X, Y, Size, Opacity float32
}

// gpuBackend is the device-level surface the Renderer drives. Handles returned by
// CreateMesh and CreateMaterial are passed back unchanged in draw commands.
type gpuBackend interface {
	// ConfigureSurface (re)creates the swapchain and attachments for the given size.
	ConfigureSurface(width, height int) error

	// SetPresentMode takes effect on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// CreateMesh uploads a vertex buffer of packed vec3 positions and a uint32 index buffer.
	CreateMesh(label string, vertexData, indexData []byte, indexCount int) (common.Releaser, error)

	// CreateMaterial allocates the color uniform of one material.
	CreateMaterial(label string) (common.Releaser, error)

	// BeginFrame acquires the next surface texture and opens the render pass.
	BeginFrame() error

	// DrawViewport draws the commands into one rectangle: opaque commands first, then ghost ones.
	DrawViewport(pass viewportPass)

	// DrawSprites draws the particle overlay across the whole surface.
	DrawSprites(instances []spriteInstance, width, height int)

	// EndFrame closes the pass and submits it.
	EndFrame()

	// Present shows the submitted frame.
	Present()

	// Release frees the device, the surface and every pipeline.
	Release()
}
