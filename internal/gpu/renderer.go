//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/termcell"
	"github.com/gogpu/termcell/blit"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrInvalidTexture is returned for textures with non-positive size or a
	// pixel slice that does not match the size.
	ErrInvalidTexture = errors.New("gpu: invalid texture data")

	// ErrFrameTimeout is returned when the GPU does not signal frame
	// completion in time.
	ErrFrameTimeout = errors.New("gpu: timed out waiting for frame")
)

// Texture is an RGBA8 texture owned by a CellRenderer.
type Texture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

// Width returns the texture width in texels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() uint32 { return t.height }

// ImageDraw places a texture on the target.
type ImageDraw struct {
	Texture *Texture
	// Dst is the destination rectangle in target pixels.
	Dst image.Rectangle
	// Clip restricts the visible part of Dst. The zero rectangle means
	// no clipping.
	Clip image.Rectangle
	// Fit scales the texture into Dst.
	Fit blit.Fit
	// Transform maps destination UVs to texture UVs after Fit. The zero
	// value is the identity.
	Transform f32.Aff3
	// AboveText draws the image after the text cells.
	AboveText bool
}

// uvTransform returns the destination-UV to texture-UV transform with Fit
// applied first.
func (d *ImageDraw) uvTransform() f32.Aff3 {
	m := d.Transform
	if m == (f32.Aff3{}) {
		m = blit.Identity
	}
	if d.Fit == blit.FitFill || d.Texture == nil {
		return m
	}
	return blit.Mul(m, blit.FitTransform(d.Fit,
		float32(d.Texture.width), float32(d.Texture.height),
		float32(d.Dst.Dx()), float32(d.Dst.Dy())))
}

// Frame is everything drawn in one Render call.
type Frame struct {
	Cells  []termcell.CellQuad
	Images []ImageDraw
	// Clear is the color the target is cleared to.
	Clear termcell.Color
}

// FrameResources holds the per-frame buffers and bind groups.
type FrameResources struct {
	globalsBuf hal.Buffer
	globals    hal.BindGroup

	atlasBuf   hal.Buffer
	atlasGroup hal.BindGroup

	bgVerts   hal.Buffer
	fgVerts   hal.Buffer
	indices   hal.Buffer
	cellCount uint32

	images []imageResources
}

type pendingFrame struct {
	submission uint64
	res        *FrameResources
	cmdBuf     hal.CommandBuffer
}

type imageResources struct {
	verts  hal.Buffer
	params hal.Buffer
	group  hal.BindGroup
	above  bool
}

// CellRenderer draws terminal frames with the GPU cell pipelines.
//
// CellRenderer is safe for concurrent use.
type CellRenderer struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	pipeline *CellPipeline
	atlas    *Texture

	// pending holds frames whose submission timed out. They are released
	// once the queue reports their submission complete.
	pending []pendingFrame

	// external is true when the device belongs to a host application.
	external bool
}

// NewCellRenderer creates a renderer on device. The pipelines are created
// by Init.
func NewCellRenderer(device hal.Device, queue hal.Queue, config PipelineConfig) (*CellRenderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &CellRenderer{
		device:   device,
		queue:    queue,
		pipeline: NewCellPipeline(device, config),
	}, nil
}

// NewCellRendererFromProvider creates a renderer on the shared device of a
// host application. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue. When config has no
// target format, the provider's surface format is used.
func NewCellRendererFromProvider(provider gpucontext.DeviceProvider, config PipelineConfig) (*CellRenderer, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, ErrNilDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device: %w", ErrNilDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue: %w", ErrNilDevice)
	}

	var undefined gputypes.TextureFormat
	if config.TargetFormat == undefined {
		config.TargetFormat = provider.SurfaceFormat()
	}
	r, err := NewCellRenderer(device, queue, config)
	if err != nil {
		return nil, err
	}
	r.external = true
	slogger().Debug("gpu: using shared device",
		"format", config.TargetFormat, "adapter", provider.AdapterInfo().Name)
	return r, nil
}

// Pipeline returns the underlying pipeline set.
func (r *CellRenderer) Pipeline() *CellPipeline { return r.pipeline }

// Init creates the render pipelines.
func (r *CellRenderer) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipeline.Init()
}

// CreateTexture uploads RGBA8 pixels into a new texture.
func (r *CellRenderer) CreateTexture(label string, pix []byte, width, height int) (*Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createTexture(label, pix, width, height)
}

func (r *CellRenderer) createTexture(label string, pix []byte, width, height int) (*Texture, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return nil, fmt.Errorf("%s %dx%d with %d bytes: %w", label, width, height, len(pix), ErrInvalidTexture)
	}
	w, h := uint32(width), uint32(height) //nolint:gosec // checked positive above

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s texture view: %w", label, err)
	}

	t := &Texture{tex: tex, view: view, width: w, height: h}
	if err := r.writeTexture(t, pix); err != nil {
		r.destroyTexture(t)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return t, nil
}

func (r *CellRenderer) writeTexture(t *Texture, pix []byte) error {
	return r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: t.width * 4, RowsPerImage: t.height},
		&hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	)
}

// DestroyTexture releases a texture created by CreateTexture.
func (r *CellRenderer) DestroyTexture(t *Texture) {
	if t == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyTexture(t)
}

func (r *CellRenderer) destroyTexture(t *Texture) {
	if t.view != nil {
		r.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		r.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// UploadAtlas replaces the glyph atlas contents. The texture is reused
// while the size is unchanged.
func (r *CellRenderer) UploadAtlas(pix []byte, width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.atlas != nil && int(r.atlas.width) == width && int(r.atlas.height) == height &&
		len(pix) == width*height*4 {
		return r.writeTexture(r.atlas, pix)
	}
	t, err := r.createTexture("cell_atlas", pix, width, height)
	if err != nil {
		return err
	}
	if r.atlas != nil {
		r.destroyTexture(r.atlas)
	}
	r.atlas = t
	slogger().Debug("gpu: atlas uploaded", "width", width, "height", height)
	return nil
}

// BuildFrame creates the buffers and bind groups for f on a target of the
// given size. The result must be released with ReleaseFrame.
func (r *CellRenderer) BuildFrame(f *Frame, width, height uint32) (*FrameResources, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildFrame(f, width, height)
}

func (r *CellRenderer) buildFrame(f *Frame, width, height uint32) (*FrameResources, error) {
	if !r.pipeline.IsInitialized() {
		return nil, ErrPipelineNotInitialized
	}
	if len(f.Cells) > r.pipeline.config.MaxCells {
		return nil, fmt.Errorf("%d cells, max %d: %w", len(f.Cells), r.pipeline.config.MaxCells, ErrTooManyCells)
	}
	if len(f.Cells) > 0 && r.atlas == nil {
		return nil, ErrNoAtlas
	}

	res := &FrameResources{cellCount: uint32(len(f.Cells))} //nolint:gosec // bounded by MaxCells
	ok := false
	defer func() {
		if !ok {
			r.releaseFrame(res)
		}
	}()

	var err error
	if res.globalsBuf, err = r.createAndUploadBuffer("cell_globals", makeGlobalsUniform(width, height),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if res.globals, err = r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "cell_globals_bind",
		Layout: r.pipeline.globalsLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: res.globalsBuf.NativeHandle(), Offset: 0, Size: globalsUniformSize,
			}},
		},
	}); err != nil {
		return nil, fmt.Errorf("create globals bind group: %w", err)
	}

	// Images reuse the first quad of the index buffer.
	if res.indices, err = r.createAndUploadBuffer("cell_indices", BuildQuadIndexData(max(len(f.Cells), 1)),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}

	if len(f.Cells) > 0 {
		if err := r.buildCellResources(res, f.Cells); err != nil {
			return nil, err
		}
	}

	for i := range f.Images {
		img, skip, err := r.buildImageResources(&f.Images[i])
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		if !skip {
			res.images = append(res.images, img)
		}
	}

	ok = true
	return res, nil
}

func (r *CellRenderer) buildCellResources(res *FrameResources, cells []termcell.CellQuad) error {
	var err error
	if res.bgVerts, err = r.createAndUploadBuffer("cell_bg_verts", BuildBgVertices(cells),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst); err != nil {
		return err
	}
	if res.fgVerts, err = r.createAndUploadBuffer("cell_fg_verts", BuildCellVertices(cells),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst); err != nil {
		return err
	}
	if res.atlasBuf, err = r.createAndUploadBuffer("cell_atlas_params",
		makeAtlasParamsUniform(r.atlas.width, r.atlas.height),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst); err != nil {
		return err
	}
	res.atlasGroup, err = r.createTextureBindGroup("cell_atlas_bind", res.atlasBuf, atlasParamsUniformSize, r.atlas)
	return err
}

func (r *CellRenderer) buildImageResources(d *ImageDraw) (imageResources, bool, error) {
	if d.Texture == nil || d.Texture.view == nil {
		return imageResources{}, false, ErrInvalidTexture
	}
	if d.Dst.Empty() {
		return imageResources{}, true, nil
	}
	uvClip := blit.UnitClip
	if !d.Clip.Empty() {
		var visible bool
		if _, uvClip, visible = termcell.ClipUV(d.Dst, d.Clip); !visible {
			return imageResources{}, true, nil
		}
	}
	m := d.uvTransform()

	img := imageResources{above: d.AboveText}
	var err error
	if img.verts, err = r.createAndUploadBuffer("image_verts", BuildImageVertices(d.Dst),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst); err != nil {
		return img, false, err
	}
	if img.params, err = r.createAndUploadBuffer("image_params", makeImageParamsUniform(uvClip, m),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst); err != nil {
		r.device.DestroyBuffer(img.verts)
		return img, false, err
	}
	if img.group, err = r.createTextureBindGroup("image_bind", img.params, imageParamsUniformSize, d.Texture); err != nil {
		r.device.DestroyBuffer(img.params)
		r.device.DestroyBuffer(img.verts)
		return img, false, err
	}
	return img, false, nil
}

func (r *CellRenderer) createTextureBindGroup(label string, uniform hal.Buffer, size uint64, t *Texture) (hal.BindGroup, error) {
	group, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: r.pipeline.textureLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniform.NativeHandle(), Offset: 0, Size: size,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: t.view.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return group, nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (r *CellRenderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := r.queue.WriteBuffer(buf, 0, data); err != nil {
		r.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("write %s: %w", label, err)
	}
	return buf, nil
}

// ReleaseFrame destroys the resources of a built frame.
func (r *CellRenderer) ReleaseFrame(res *FrameResources) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseFrame(res)
}

func (r *CellRenderer) releaseFrame(res *FrameResources) {
	if res == nil {
		return
	}
	for _, img := range res.images {
		r.destroyBindGroup(img.group)
		r.destroyBuffer(img.params)
		r.destroyBuffer(img.verts)
	}
	res.images = nil
	r.destroyBindGroup(res.atlasGroup)
	r.destroyBindGroup(res.globals)
	for _, b := range []hal.Buffer{res.atlasBuf, res.globalsBuf, res.bgVerts, res.fgVerts, res.indices} {
		r.destroyBuffer(b)
	}
	*res = FrameResources{}
}

func (r *CellRenderer) destroyBuffer(b hal.Buffer) {
	if b != nil {
		r.device.DestroyBuffer(b)
	}
}

func (r *CellRenderer) destroyBindGroup(g hal.BindGroup) {
	if g != nil {
		r.device.DestroyBindGroup(g)
	}
}

// Render draws f into target, a view of a width×height texture in the
// configured target format, and waits for the GPU to finish.
func (r *CellRenderer) Render(target hal.TextureView, width, height uint32, f *Frame) error {
	if target == nil || width == 0 || height == 0 {
		return fmt.Errorf("gpu: invalid render target %dx%d", width, height)
	}
	if f == nil {
		f = &Frame{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.reapPending()

	res, err := r.buildFrame(f, width, height)
	if err != nil {
		return err
	}

	cmdBuf, err := r.encodeFrame(target, res, f.Clear)
	if err != nil {
		r.releaseFrame(res)
		return err
	}

	submission, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		r.device.FreeCommandBuffer(cmdBuf)
		r.releaseFrame(res)
		return fmt.Errorf("submit: %w", err)
	}
	if !r.waitSubmission(submission) {
		// The GPU may still read the frame's buffers.
		r.pending = append(r.pending, pendingFrame{submission: submission, res: res, cmdBuf: cmdBuf})
		slogger().Warn("gpu: frame wait timed out",
			"cells", res.cellCount, "submission", submission, "pending", len(r.pending))
		return ErrFrameTimeout
	}
	slogger().Debug("gpu: frame rendered",
		"cells", res.cellCount, "images", len(res.images), "width", width, "height", height)
	r.device.FreeCommandBuffer(cmdBuf)
	r.releaseFrame(res)
	return nil
}

func (r *CellRenderer) encodeFrame(target hal.TextureView, res *FrameResources, clearColor termcell.Color) (hal.CommandBuffer, error) {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "cell_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("cell_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	bg := clearColor.Premultiply()
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "cell_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(bg.R), G: float64(bg.G), B: float64(bg.B), A: float64(bg.A)},
		}},
	})
	r.pipeline.RecordDraws(rp, res)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	return cmdBuf, nil
}

// waitSubmission polls the queue until submission completes or the frame
// timeout passes.
func (r *CellRenderer) waitSubmission(submission uint64) bool {
	deadline := time.Now().Add(r.pipeline.config.FrameTimeout)
	for r.queue.PollCompleted() < submission {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Microsecond)
	}
	return true
}

// reapPending releases timed-out frames the GPU has since finished.
func (r *CellRenderer) reapPending() {
	if len(r.pending) == 0 {
		return
	}
	done := r.queue.PollCompleted()
	kept := r.pending[:0]
	for _, p := range r.pending {
		if p.submission > done {
			kept = append(kept, p)
			continue
		}
		r.device.FreeCommandBuffer(p.cmdBuf)
		r.releaseFrame(p.res)
	}
	clear(r.pending[len(kept):])
	r.pending = kept
}

// PendingFrames returns the number of timed-out frames still held.
func (r *CellRenderer) PendingFrames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reapPending()
	return len(r.pending)
}

// Destroy releases the atlas and pipelines. A shared device is left to its
// owner.
func (r *CellRenderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) > 0 {
		if err := r.device.WaitIdle(); err != nil {
			slogger().Warn("gpu: wait idle failed", "err", err)
		}
		for _, p := range r.pending {
			r.device.FreeCommandBuffer(p.cmdBuf)
			r.releaseFrame(p.res)
		}
		r.pending = nil
	}
	if r.atlas != nil {
		r.destroyTexture(r.atlas)
		r.atlas = nil
	}
	r.pipeline.Destroy()
}

// IsShared reports whether the device belongs to a host application.
func (r *CellRenderer) IsShared() bool { return r.external }
