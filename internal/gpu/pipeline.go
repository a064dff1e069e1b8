//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Pipeline errors.
var (
	// ErrNilDevice is returned when a pipeline or renderer has no device.
	ErrNilDevice = errors.New("gpu: device is nil")

	// ErrPipelineNotInitialized is returned when drawing before Init.
	ErrPipelineNotInitialized = errors.New("gpu: cell pipeline not initialized")

	// ErrNoAtlas is returned when cells are drawn before an atlas upload.
	ErrNoAtlas = errors.New("gpu: no atlas uploaded")

	// ErrTooManyCells is returned when a frame exceeds MaxCells.
	ErrTooManyCells = errors.New("gpu: too many cells")
)

// PipelineConfig holds configuration for the cell pipelines.
type PipelineConfig struct {
	// TargetFormat is the color format of the render target.
	// Default: BGRA8Unorm
	TargetFormat gputypes.TextureFormat

	// SampleCount is the MSAA sample count of the target.
	// Default: 1
	SampleCount uint32

	// MaxCells is the maximum number of cell quads per frame.
	// Default: 65536
	MaxCells int

	// ShaderFormat selects WGSL or naga-compiled SPIR-V modules.
	// Default: WGSL
	ShaderFormat ShaderFormat

	// FrameTimeout bounds how long Render waits for the GPU.
	// Default: 5s
	FrameTimeout time.Duration
}

// DefaultPipelineConfig returns default configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		TargetFormat: gputypes.TextureFormatBGRA8Unorm,
		SampleCount:  1,
		MaxCells:     65536,
		ShaderFormat: ShaderFormatWGSL,
		FrameTimeout: 5 * time.Second,
	}
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	d := DefaultPipelineConfig()
	var undefined gputypes.TextureFormat
	if c.TargetFormat == undefined {
		c.TargetFormat = d.TargetFormat
	}
	if c.SampleCount == 0 {
		c.SampleCount = d.SampleCount
	}
	if c.MaxCells <= 0 {
		c.MaxCells = d.MaxCells
	}
	if c.FrameTimeout <= 0 {
		c.FrameTimeout = d.FrameTimeout
	}
	return c
}

// CellPipeline owns the shaders, layouts and render pipelines of the three
// cell passes: background, images and foreground text.
//
// Bind groups:
//
//	group 0: Globals uniform (screen size), all passes
//	group 1: per-texture uniform + texture_2d, text_fg and image passes
type CellPipeline struct {
	device hal.Device
	config PipelineConfig

	shaders map[Shader]hal.ShaderModule

	globalsLayout hal.BindGroupLayout
	textureLayout hal.BindGroupLayout

	bgPipeLayout       hal.PipelineLayout
	texturedPipeLayout hal.PipelineLayout

	bgPipeline    hal.RenderPipeline
	fgPipeline    hal.RenderPipeline
	imagePipeline hal.RenderPipeline
}

// NewCellPipeline creates a pipeline set for device. GPU objects are not
// created until Init is called.
func NewCellPipeline(device hal.Device, config PipelineConfig) *CellPipeline {
	return &CellPipeline{
		device: device,
		config: config.withDefaults(),
	}
}

// Config returns the effective configuration.
func (p *CellPipeline) Config() PipelineConfig { return p.config }

// IsInitialized reports whether all render pipelines exist.
func (p *CellPipeline) IsInitialized() bool {
	return p.bgPipeline != nil && p.fgPipeline != nil && p.imagePipeline != nil
}

// Init compiles the shaders and creates the render pipelines. Calling Init
// on an initialized pipeline is a no-op.
func (p *CellPipeline) Init() error {
	if p.device == nil {
		return ErrNilDevice
	}
	if p.IsInitialized() {
		return nil
	}
	if err := p.createPipelines(); err != nil {
		p.destroyPipelines()
		return err
	}
	return nil
}

func (p *CellPipeline) createPipelines() error {
	p.shaders = make(map[Shader]hal.ShaderModule, len(AllShaders))
	for _, s := range AllShaders {
		module, err := createShaderModule(p.device, s, p.config.ShaderFormat)
		if err != nil {
			return err
		}
		p.shaders[s] = module
	}

	globalsLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "cell_globals_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create globals layout: %w", err)
	}
	p.globalsLayout = globalsLayout

	// Binding 0: per-texture uniform (atlas size or image params)
	// Binding 1: texture read with textureLoad, no sampler
	textureLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "cell_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create texture layout: %w", err)
	}
	p.textureLayout = textureLayout

	bgPipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "cell_bg_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.globalsLayout},
	})
	if err != nil {
		return fmt.Errorf("create bg pipeline layout: %w", err)
	}
	p.bgPipeLayout = bgPipeLayout

	texturedPipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "cell_textured_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.globalsLayout, p.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("create textured pipeline layout: %w", err)
	}
	p.texturedPipeLayout = texturedPipeLayout

	if p.bgPipeline, err = p.createRenderPipeline(ShaderTextBg, p.bgPipeLayout, bgVertexLayout()); err != nil {
		return err
	}
	if p.imagePipeline, err = p.createRenderPipeline(ShaderImage, p.texturedPipeLayout, imageVertexLayout()); err != nil {
		return err
	}
	if p.fgPipeline, err = p.createRenderPipeline(ShaderTextFg, p.texturedPipeLayout, cellVertexLayout()); err != nil {
		return err
	}

	slogger().Info("gpu: cell pipelines created",
		"format", p.config.TargetFormat, "samples", p.config.SampleCount)
	return nil
}

// createRenderPipeline creates one pass with premultiplied alpha blending.
func (p *CellPipeline) createRenderPipeline(
	s Shader, layout hal.PipelineLayout, buffers []gputypes.VertexBufferLayout,
) (hal.RenderPipeline, error) {
	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  s.String() + "_pipeline",
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     p.shaders[s],
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     p.shaders[s],
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.config.TargetFormat,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: p.config.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", s, err)
	}
	return pipeline, nil
}

// RecordDraws records a frame into an existing render pass in stage order:
// backgrounds, images below text, text, images above text.
func (p *CellPipeline) RecordDraws(rp hal.RenderPassEncoder, res *FrameResources) {
	if res == nil {
		return
	}
	rp.SetBindGroup(0, res.globals, nil)

	if res.cellCount > 0 {
		rp.SetPipeline(p.bgPipeline)
		rp.SetVertexBuffer(0, res.bgVerts, 0)
		rp.SetIndexBuffer(res.indices, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(res.cellCount*indicesPerQuad, 1, 0, 0, 0)
	}

	p.recordImages(rp, res, false)

	if res.cellCount > 0 {
		rp.SetPipeline(p.fgPipeline)
		rp.SetBindGroup(1, res.atlasGroup, nil)
		rp.SetVertexBuffer(0, res.fgVerts, 0)
		rp.SetIndexBuffer(res.indices, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(res.cellCount*indicesPerQuad, 1, 0, 0, 0)
	}

	p.recordImages(rp, res, true)
}

func (p *CellPipeline) recordImages(rp hal.RenderPassEncoder, res *FrameResources, above bool) {
	for i := range res.images {
		img := &res.images[i]
		if img.above != above {
			continue
		}
		rp.SetPipeline(p.imagePipeline)
		rp.SetBindGroup(1, img.group, nil)
		rp.SetVertexBuffer(0, img.verts, 0)
		rp.SetIndexBuffer(res.indices, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(indicesPerQuad, 1, 0, 0, 0)
	}
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times.
func (p *CellPipeline) Destroy() {
	p.destroyPipelines()
}

// destroyPipelines releases all pipeline resources in reverse creation order.
func (p *CellPipeline) destroyPipelines() {
	if p.device == nil {
		return
	}
	for _, rp := range []*hal.RenderPipeline{&p.fgPipeline, &p.imagePipeline, &p.bgPipeline} {
		if *rp != nil {
			p.device.DestroyRenderPipeline(*rp)
			*rp = nil
		}
	}
	for _, pl := range []*hal.PipelineLayout{&p.texturedPipeLayout, &p.bgPipeLayout} {
		if *pl != nil {
			p.device.DestroyPipelineLayout(*pl)
			*pl = nil
		}
	}
	for _, bl := range []*hal.BindGroupLayout{&p.textureLayout, &p.globalsLayout} {
		if *bl != nil {
			p.device.DestroyBindGroupLayout(*bl)
			*bl = nil
		}
	}
	for s, m := range p.shaders {
		p.device.DestroyShaderModule(m)
		delete(p.shaders, s)
	}
}
