package renderer

import "github.com/cogentcore/webgpu/wgpu"

// pipelineConfig describes the fixed-function state of one render pipeline.
type pipelineConfig struct {
	key        string
	depthTest  bool
	depthWrite bool
	blend      bool
	cullMode   wgpu.CullMode
}

// opaquePipelineConfig draws solid surfaces with depth testing and writing.
func opaquePipelineConfig() pipelineConfig {
	return pipelineConfig{key: "opaque", depthTest: true, depthWrite: true, cullMode: wgpu.CullModeNone}
}

// ghostPipelineConfig draws translucent surfaces after the opaque ones. Depth is tested
// but not written so overlapping ghost faces blend instead of occluding each other.
func ghostPipelineConfig() pipelineConfig {
	return pipelineConfig{key: "ghost", depthTest: true, depthWrite: false, blend: true, cullMode: wgpu.CullModeNone}
}

// spritePipelineConfig draws the particle overlay on top of everything.
func spritePipelineConfig() pipelineConfig {
	return pipelineConfig{key: "sprite", depthTest: false, depthWrite: false, blend: true, cullMode: wgpu.CullModeNone}
}

// alphaBlendState is standard source-over blending.
func alphaBlendState() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}
