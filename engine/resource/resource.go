// Package resource owns the GPU objects shared by every pass: bind group layouts, samplers,
// fallback textures, render pipelines and the drawable-sized render targets.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/material"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/shader"
)

// ErrUnknownShadingModel is returned by ShadingPipeline for a name without a G-buffer pipeline.
var ErrUnknownShadingModel = errors.New("resource: unknown shading model")

// Targets are the render targets written by the shadow and main passes. They are replaced, never
// mutated, on resize.
type Targets struct {
	Shadow   gpu.Texture
	Albedo   gpu.Texture
	Normal   gpu.Texture
	Position gpu.Texture
	Depth    gpu.Texture
}

// Size returns the extent shared by every target.
func (t Targets) Size() gpu.Size {
	if t.Depth == nil {
		return gpu.Size{}
	}
	return t.Depth.Size()
}

func (t Targets) all() []gpu.Texture {
	return []gpu.Texture{t.Shadow, t.Albedo, t.Normal, t.Position, t.Depth}
}

// manager is the implementation of the Manager interface.
type manager struct {
	mu sync.RWMutex

	ctx     gpu.GraphicsContext
	library shader.Library
	bias    ShadowBias

	layouts   [layoutCount]gpu.BindGroupLayout
	pipelines map[string]gpu.RenderPipeline

	materialSampler gpu.Sampler
	shadowSampler   gpu.Sampler
	whiteTexture    gpu.Texture
	normalTexture   gpu.Texture

	targets    Targets
	generation atomic.Uint64

	reload reloadState
}

// Manager creates and owns the shared GPU state of the renderer.
//
// Everything is built up front by NewManager; a missing shader entry point or a layout that
// disagrees with the WGSL declarations is a setup error, not a per-frame one.
type Manager interface {
	material.Resources
	render.PipelineSource

	// Context returns the graphics context the manager allocates from.
	Context() gpu.GraphicsContext

	// Library returns the shader library the current pipelines were built from.
	Library() shader.Library

	// FrameLayout returns the group 0 layout of every colour pipeline.
	FrameLayout() gpu.BindGroupLayout

	// ShadowFrameLayout returns the group 0 layout of the shadow pipeline.
	ShadowFrameLayout() gpu.BindGroupLayout

	// ModelLayout returns the per-model group 1 layout of the shadow and G-buffer pipelines.
	ModelLayout() gpu.BindGroupLayout

	// SkyLayout returns group 1 of the skybox pipeline.
	SkyLayout() gpu.BindGroupLayout

	// WaterLayout returns group 1 of the water pipeline.
	WaterLayout() gpu.BindGroupLayout

	// GBufferLayout returns group 1 of the composition pipeline.
	GBufferLayout() gpu.BindGroupLayout

	// ShadowSampler returns the comparison sampler used to read the shadow map.
	ShadowSampler() gpu.Sampler

	// Pipeline returns a pipeline by name, or nil if there is none.
	Pipeline(name string) gpu.RenderPipeline

	// GBufferFormats returns the colour formats of the G-buffer attachments in attachment order.
	GBufferFormats() []gpu.TextureFormat

	// Targets returns the current render targets.
	Targets() Targets

	// Generation increments every time the render targets are replaced. Holders of bind groups
	// that reference targets compare it to decide when to rebuild them.
	Generation() uint64

	// Resize replaces every render target with one of the new size. A zero size or the current
	// size is a no-op.
	//
	// Parameters:
	//   - size: the new drawable size
	//
	// Returns:
	//   - error: error if a target could not be created; the old targets stay in place
	Resize(size gpu.Size) error

	// NewRenderTarget creates an offscreen target with the same attachments as the G-buffer.
	//
	// Parameters:
	//   - label: debug label prefix
	//   - size: the target size
	//
	// Returns:
	//   - RenderTarget: the target
	//   - error: error if a texture could not be created
	NewRenderTarget(label string, size gpu.Size) (RenderTarget, error)

	// Release frees every object the manager created.
	Release()

	// WatchShaders reloads the shader library from dir whenever a .wgsl file there changes. The
	// new library only takes effect at the next ApplyPending. WatchShaders blocks until ctx is done.
	//
	// Parameters:
	//   - ctx: cancels the watch
	//   - dir: the shader directory
	//
	// Returns:
	//   - error: error if the directory cannot be watched
	WatchShaders(ctx context.Context, dir string) error

	// ApplyPending rebuilds every pipeline from a library queued by WatchShaders. If the rebuild
	// fails the previous pipelines stay in use.
	//
	// Returns:
	//   - bool: true if new pipelines were installed
	//   - error: error if the queued library could not be built
	ApplyPending() (bool, error)
}

var _ Manager = &manager{}

// NewManager builds layouts, samplers, fallback textures, pipelines and render targets at the
// drawable size of ctx.
//
// Parameters:
//   - ctx: the graphics context
//   - options: functional options
//
// Returns:
//   - Manager: the resource manager
//   - error: error if any shared object could not be created
func NewManager(ctx gpu.GraphicsContext, options ...ManagerBuilderOption) (Manager, error) {
	if ctx == nil {
		return nil, errors.New("resource: nil graphics context")
	}
	m := &manager{
		ctx:  ctx,
		bias: ShadowBias{Constant: 2, SlopeScale: 1, Clamp: 0.01},
	}
	for _, opt := range options {
		opt(m)
	}
	if m.bias.SlopeScale == 0 {
		return nil, errors.New("resource: shadow slope scale must be non-zero")
	}
	if m.library == nil {
		lib, err := shader.DefaultLibrary()
		if err != nil {
			return nil, fmt.Errorf("resource: failed to load shaders: %w", err)
		}
		m.library = lib
	}

	if err := m.init(); err != nil {
		m.Release()
		return nil, err
	}
	return m, nil
}

func (m *manager) init() error {
	dev := m.ctx.Device()

	for k, desc := range layoutDescriptors() {
		l, err := dev.CreateBindGroupLayout(desc)
		if err != nil {
			return fmt.Errorf("resource: failed to create %s layout: %w", desc.Label, err)
		}
		m.layouts[k] = l
	}

	var err error
	if m.materialSampler, err = dev.CreateSampler(gpu.SamplerDescriptor{
		Label:         "material",
		AddressModeU:  gpu.AddressModeRepeat,
		AddressModeV:  gpu.AddressModeRepeat,
		AddressModeW:  gpu.AddressModeRepeat,
		MagFilter:     gpu.FilterModeLinear,
		MinFilter:     gpu.FilterModeLinear,
		MipmapFilter:  gpu.FilterModeLinear,
		MaxAnisotropy: 8,
	}); err != nil {
		return fmt.Errorf("resource: failed to create material sampler: %w", err)
	}
	if m.shadowSampler, err = dev.CreateSampler(gpu.SamplerDescriptor{
		Label:        "shadow",
		AddressModeU: gpu.AddressModeClampToEdge,
		AddressModeV: gpu.AddressModeClampToEdge,
		AddressModeW: gpu.AddressModeClampToEdge,
		MagFilter:    gpu.FilterModeLinear,
		MinFilter:    gpu.FilterModeLinear,
		Compare:      gpu.CompareFunctionLess,
	}); err != nil {
		return fmt.Errorf("resource: failed to create shadow sampler: %w", err)
	}

	if m.whiteTexture, err = m.solidTexture("fallback white", [4]byte{255, 255, 255, 255}); err != nil {
		return err
	}
	if m.normalTexture, err = m.solidTexture("fallback normal", [4]byte{128, 128, 255, 255}); err != nil {
		return err
	}

	if m.pipelines, err = m.buildPipelines(m.library); err != nil {
		return err
	}

	size := m.ctx.DrawableSize()
	if !size.IsZero() {
		if m.targets, err = m.createTargets(size); err != nil {
			return err
		}
		m.generation.Add(1)
	}
	return nil
}

func (m *manager) solidTexture(label string, rgba [4]byte) (gpu.Texture, error) {
	tex, err := m.ctx.Device().CreateTexture(gpu.TextureDescriptor{
		Label:   label,
		Size:    gpu.Size{Width: 1, Height: 1},
		Format:  gpu.TextureFormatRGBA8Unorm,
		Usage:   gpu.TextureUsageTextureBinding | gpu.TextureUsageCopyDst,
		Storage: gpu.StorageModeShared,
	})
	if err != nil {
		return nil, fmt.Errorf("resource: failed to create %s texture: %w", label, err)
	}
	if err := m.ctx.Device().WriteTexture(tex, 0, rgba[:], 4); err != nil {
		tex.Release()
		return nil, fmt.Errorf("resource: failed to upload %s texture: %w", label, err)
	}
	return tex, nil
}

func (m *manager) createTargets(size gpu.Size) (Targets, error) {
	var t Targets
	specs := []struct {
		dst    *gpu.Texture
		label  string
		format gpu.TextureFormat
	}{
		{&t.Shadow, "shadow", gpu.TextureFormatDepth32Float},
		{&t.Albedo, "albedo", m.ctx.ColorFormat()},
		{&t.Normal, "normal", gpu.TextureFormatRGBA16Float},
		{&t.Position, "position", gpu.TextureFormatRGBA16Float},
		{&t.Depth, "depth", gpu.TextureFormatDepth32Float},
	}
	for _, s := range specs {
		tex, err := m.ctx.Device().CreateTexture(gpu.TextureDescriptor{
			Label:   s.label,
			Size:    size,
			Format:  s.format,
			Usage:   gpu.TextureUsageTextureBinding | gpu.TextureUsageRenderAttachment,
			Storage: gpu.StorageModePrivate,
		})
		if err != nil {
			releaseAll(t.all())
			return Targets{}, fmt.Errorf("resource: failed to create %s target: %w", s.label, err)
		}
		*s.dst = tex
	}
	return t, nil
}

func releaseAll(textures []gpu.Texture) {
	for _, t := range textures {
		if t != nil {
			t.Release()
		}
	}
}

func (m *manager) Context() gpu.GraphicsContext {
	return m.ctx
}

func (m *manager) Library() shader.Library {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.library
}

func (m *manager) MaterialLayout() gpu.BindGroupLayout    { return m.layouts[layoutMaterial] }
func (m *manager) FrameLayout() gpu.BindGroupLayout       { return m.layouts[layoutFrame] }
func (m *manager) ShadowFrameLayout() gpu.BindGroupLayout { return m.layouts[layoutShadowFrame] }
func (m *manager) ModelLayout() gpu.BindGroupLayout       { return m.layouts[layoutModel] }
func (m *manager) SkyLayout() gpu.BindGroupLayout         { return m.layouts[layoutSky] }
func (m *manager) WaterLayout() gpu.BindGroupLayout       { return m.layouts[layoutWater] }
func (m *manager) GBufferLayout() gpu.BindGroupLayout     { return m.layouts[layoutGBuffer] }

func (m *manager) MaterialSampler() gpu.Sampler {
	return m.materialSampler
}

func (m *manager) ShadowSampler() gpu.Sampler {
	return m.shadowSampler
}

func (m *manager) FallbackTexture(normalMap bool) gpu.Texture {
	if normalMap {
		return m.normalTexture
	}
	return m.whiteTexture
}

func (m *manager) Pipeline(name string) gpu.RenderPipeline {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pipelines[name]
}

func (m *manager) ShadowPipeline() gpu.RenderPipeline {
	return m.Pipeline(PipelineShadow)
}

func (m *manager) ShadingPipeline(shadingModel string) (gpu.RenderPipeline, error) {
	p := m.Pipeline(gbufferPrefix + shadingModel)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShadingModel, shadingModel)
	}
	return p, nil
}

func (m *manager) GBufferFormats() []gpu.TextureFormat {
	return []gpu.TextureFormat{m.ctx.ColorFormat(), gpu.TextureFormatRGBA16Float, gpu.TextureFormatRGBA16Float}
}

func (m *manager) Targets() Targets {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.targets
}

func (m *manager) Generation() uint64 {
	return m.generation.Load()
}

func (m *manager) Resize(size gpu.Size) error {
	if size.IsZero() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.targets.Size() == size {
		return nil
	}

	next, err := m.createTargets(size)
	if err != nil {
		return err
	}
	old := m.targets
	m.targets = next
	m.generation.Add(1)
	releaseAll(old.all())
	return nil
}

func (m *manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	releasePipelines(m.pipelines)
	m.pipelines = nil
	releaseAll(m.targets.all())
	m.targets = Targets{}
	releaseAll([]gpu.Texture{m.whiteTexture, m.normalTexture})
	for _, s := range []gpu.Sampler{m.materialSampler, m.shadowSampler} {
		if s != nil {
			s.Release()
		}
	}
	for _, l := range m.layouts {
		if l != nil {
			l.Release()
		}
	}
}
