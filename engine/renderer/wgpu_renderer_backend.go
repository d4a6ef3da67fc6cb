package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-ghost/common"
)

const (
	transformUniformSize = 64
	materialUniformSize  = 16
	screenUniformSize    = 32
	spriteStride         = 16
	spriteVertices       = 6
)

var (
	errFrameInFlight       = errors.New("renderer: previous frame surface not yet presented")
	errSurfaceUnconfigured = errors.New("renderer: surface attachments not configured")
)

// wgpuMesh holds the buffers of one uploaded surface.
type wgpuMesh struct {
	vertex     *wgpu.Buffer
	index      *wgpu.Buffer
	indexCount uint32
	once       sync.Once
}

func (m *wgpuMesh) Release() {
	m.once.Do(func() {
		m.vertex.Release()
		m.index.Release()
	})
}

// wgpuMaterial holds the color uniform of one material and the bind group exposing it.
type wgpuMaterial struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	once      sync.Once
}

func (m *wgpuMaterial) Release() {
	m.once.Do(func() {
		m.bindGroup.Release()
		m.buffer.Release()
	})
}

// wgpuSlot is the transform uniform of one viewport.
type wgpuSlot struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
}

type wgpuRendererBackendImpl struct {
	mu     sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	clearColor  wgpu.Color
	spriteColor [4]float32

	transformLayout *wgpu.BindGroupLayout
	materialLayout  *wgpu.BindGroupLayout
	screenLayout    *wgpu.BindGroupLayout

	opaquePipeline *wgpu.RenderPipeline
	ghostPipeline  *wgpu.RenderPipeline
	spritePipeline *wgpu.RenderPipeline

	slots []*wgpuSlot

	screenBuffer    *wgpu.Buffer
	screenBindGroup *wgpu.BindGroup
	spriteBuffer    *wgpu.Buffer
	spriteCapacity  int

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ gpuBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, clear [4]float64, spriteColor [4]float32) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		clearColor:  wgpu.Color{R: clear[0], G: clear[1], B: clear[2], A: clear[3]},
		spriteColor: spriteColor,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, err
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{Label: "Ghost Device"})
	if err != nil {
		return nil, err
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return nil, errors.New("renderer: surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	if err := b.createLayouts(); err != nil {
		return nil, err
	}
	if err := b.createPipelines(); err != nil {
		return nil, err
	}
	return b, nil
}

func uniformLayoutEntry(visibility wgpu.ShaderStage, size uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: size,
		},
	}
}

func (b *wgpuRendererBackendImpl) createLayouts() error {
	var err error
	b.transformLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Transform Layout",
		Entries: []wgpu.BindGroupLayoutEntry{uniformLayoutEntry(wgpu.ShaderStageVertex, transformUniformSize)},
	})
	if err != nil {
		return err
	}
	b.materialLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Material Layout",
		Entries: []wgpu.BindGroupLayoutEntry{uniformLayoutEntry(wgpu.ShaderStageFragment, materialUniformSize)},
	})
	if err != nil {
		return err
	}
	b.screenLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Screen Layout",
		Entries: []wgpu.BindGroupLayoutEntry{uniformLayoutEntry(wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, screenUniformSize)},
	})
	if err != nil {
		return err
	}

	b.screenBuffer, b.screenBindGroup, err = b.createUniform("Screen", b.screenLayout, screenUniformSize)
	return err
}

func (b *wgpuRendererBackendImpl) createUniform(label string, layout *wgpu.BindGroupLayout, size uint64) (*wgpu.Buffer, *wgpu.BindGroup, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Uniform",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, err
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		buf.Release()
		return nil, nil, err
	}
	return buf, bg, nil
}

func (b *wgpuRendererBackendImpl) createPipelines() error {
	ghostModule, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Ghost Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: ghostShaderSource},
	})
	if err != nil {
		return err
	}
	spriteModule, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Sprite Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: spriteShaderSource},
	})
	if err != nil {
		return err
	}

	meshLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Mesh Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.transformLayout, b.materialLayout},
	})
	if err != nil {
		return err
	}
	spriteLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Sprite Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.screenLayout},
	})
	if err != nil {
		return err
	}

	meshBuffers := []wgpu.VertexBufferLayout{{
		ArrayStride: 12,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	}}
	spriteBuffers := []wgpu.VertexBufferLayout{{
		ArrayStride: spriteStride,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
		},
	}}

	for _, cfg := range []struct {
		target **wgpu.RenderPipeline
		spec   pipelineConfig
		layout *wgpu.PipelineLayout
		module *wgpu.ShaderModule
		bufs   []wgpu.VertexBufferLayout
	}{
		{&b.opaquePipeline, opaquePipelineConfig(), meshLayout, ghostModule, meshBuffers},
		{&b.ghostPipeline, ghostPipelineConfig(), meshLayout, ghostModule, meshBuffers},
		{&b.spritePipeline, spritePipelineConfig(), spriteLayout, spriteModule, spriteBuffers},
	} {
		p, err := b.createRenderPipeline(cfg.spec, cfg.layout, cfg.module, cfg.bufs)
		if err != nil {
			return fmt.Errorf("failed to create %s pipeline: %w", cfg.spec.key, err)
		}
		*cfg.target = p
	}
	return nil
}

func (b *wgpuRendererBackendImpl) createRenderPipeline(spec pipelineConfig, layout *wgpu.PipelineLayout, module *wgpu.ShaderModule, buffers []wgpu.VertexBufferLayout) (*wgpu.RenderPipeline, error) {
	target := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if spec.blend {
		target.Blend = alphaBlendState()
	}

	depthCompare := wgpu.CompareFunctionLess
	if !spec.depthTest {
		depthCompare = wgpu.CompareFunctionAlways
	}

	return b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  spec.key + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  spec.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: spec.depthWrite,
			DepthCompare:      depthCompare,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}

	b.renderPassDescriptor = nil
	count := uint32(b.sampleCount)
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}

	if count > 1 {
		// The pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("failed to create msaa texture: %w", err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			return fmt.Errorf("failed to create msaa texture view: %w", err)
		}
	}

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("failed to create depth texture view: %w", err)
	}

	storeOp := wgpu.StoreOpStore
	if count > 1 {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       b.msaaTextureView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    storeOp,
			ClearValue: b.clearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

func (b *wgpuRendererBackendImpl) CreateMesh(label string, vertexData, indexData []byte, indexCount int) (common.Releaser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(vb, 0, vertexData)

	// Buffer sizes must stay 4-byte aligned for WriteBuffer; uint32 indices always are.
	ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return nil, err
	}
	b.queue.WriteBuffer(ib, 0, indexData)

	return &wgpuMesh{vertex: vb, index: ib, indexCount: uint32(indexCount)}, nil
}

func (b *wgpuRendererBackendImpl) CreateMaterial(label string) (common.Releaser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, bg, err := b.createUniform(label+" Material", b.materialLayout, materialUniformSize)
	if err != nil {
		return nil, err
	}
	return &wgpuMaterial{buffer: buf, bindGroup: bg}, nil
}

// slot returns the transform uniform of a viewport, creating it on first use. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) slot(i int) (*wgpuSlot, error) {
	for len(b.slots) <= i {
		buf, bg, err := b.createUniform(fmt.Sprintf("Viewport %d Transform", len(b.slots)), b.transformLayout, transformUniformSize)
		if err != nil {
			return nil, err
		}
		b.slots = append(b.slots, &wgpuSlot{buffer: buf, bindGroup: bg})
	}
	return b.slots[i], nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errFrameInFlight
	}
	if b.renderPassDescriptor == nil {
		return errSurfaceUnconfigured
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) DrawViewport(pass viewportPass) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil || pass.rect.W < 1 || pass.rect.H < 1 {
		return
	}
	b.framePass.SetViewport(pass.rect.X, pass.rect.Y, pass.rect.W, pass.rect.H, 0, 1)
	b.framePass.SetScissorRect(uint32(pass.rect.X), uint32(pass.rect.Y), uint32(pass.rect.W), uint32(pass.rect.H))
	if len(pass.commands) == 0 {
		return
	}

	s, err := b.slot(pass.slot)
	if err != nil {
		return
	}
	b.queue.WriteBuffer(s.buffer, 0, common.SliceToBytes(pass.mvp[:]))

	var current *wgpu.RenderPipeline
	for _, cmd := range pass.commands {
		mesh, ok := cmd.mesh.(*wgpuMesh)
		if !ok {
			continue
		}
		mat, ok := cmd.material.(*wgpuMaterial)
		if !ok {
			continue
		}

		want := b.opaquePipeline
		if cmd.ghost {
			want = b.ghostPipeline
		}
		if want != current {
			b.framePass.SetPipeline(want)
			b.framePass.SetBindGroup(0, s.bindGroup, nil)
			current = want
		}

		b.queue.WriteBuffer(mat.buffer, 0, common.SliceToBytes(cmd.color[:]))
		b.framePass.SetBindGroup(1, mat.bindGroup, nil)
		b.framePass.SetVertexBuffer(0, mesh.vertex, 0, wgpu.WholeSize)
		b.framePass.SetIndexBuffer(mesh.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(mesh.indexCount, 1, 0, 0, 0)
	}
}

func (b *wgpuRendererBackendImpl) DrawSprites(instances []spriteInstance, width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil || len(instances) == 0 || width <= 0 || height <= 0 {
		return
	}

	if len(instances) > b.spriteCapacity {
		if b.spriteBuffer != nil {
			b.spriteBuffer.Release()
		}
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Sprite Instance Buffer",
			Size:  uint64(len(instances) * spriteStride),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			b.spriteBuffer, b.spriteCapacity = nil, 0
			return
		}
		b.spriteBuffer, b.spriteCapacity = buf, len(instances)
	}

	screen := [8]float32{float32(width), float32(height), 0, 0, b.spriteColor[0], b.spriteColor[1], b.spriteColor[2], b.spriteColor[3]}
	b.queue.WriteBuffer(b.screenBuffer, 0, common.SliceToBytes(screen[:]))
	b.queue.WriteBuffer(b.spriteBuffer, 0, common.SliceToBytes(instances))

	b.framePass.SetViewport(0, 0, float32(width), float32(height), 0, 1)
	b.framePass.SetScissorRect(0, 0, uint32(width), uint32(height))
	b.framePass.SetPipeline(b.spritePipeline)
	b.framePass.SetBindGroup(0, b.screenBindGroup, nil)
	b.framePass.SetVertexBuffer(0, b.spriteBuffer, 0, wgpu.WholeSize)
	b.framePass.Draw(spriteVertices, uint32(len(instances)), 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameView, b.frameSurface = nil, nil
		return
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	b.frameView.Release()
	b.frameSurface.Release()
	b.frameView, b.frameSurface = nil, nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.slots {
		s.bindGroup.Release()
		s.buffer.Release()
	}
	b.slots = nil
	if b.spriteBuffer != nil {
		b.spriteBuffer.Release()
	}
	b.screenBindGroup.Release()
	b.screenBuffer.Release()
	for _, p := range []*wgpu.RenderPipeline{b.opaquePipeline, b.ghostPipeline, b.spritePipeline} {
		if p != nil {
			p.Release()
		}
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
