// Package water implements planar-reflection water. Each body owns a reflection target that the
// renderer fills with the mirrored scene before the main pass samples it.
package water

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/obsidian/engine/asset"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/material"
	"github.com/Carmen-Shannon/obsidian/engine/node"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
)

// Resources supplies the layout, sampler, fallback texture, pipeline and render targets a body needs.
type Resources interface {
	WaterLayout() gpu.BindGroupLayout
	MaterialSampler() gpu.Sampler
	FallbackTexture(normalMap bool) gpu.Texture
	Pipeline(name string) gpu.RenderPipeline
	NewRenderTarget(label string, size gpu.Size) (resource.RenderTarget, error)
}

// body is the implementation of the Body interface.
type body struct {
	node.Node

	mu sync.Mutex

	res         Resources
	device      gpu.Device
	size        float32
	tiling      float32
	distortion  float32
	time        float32
	normalImage *image.RGBA
	nodeOptions []node.NodeBuilderOption

	target     resource.RenderTarget
	normalMap  gpu.Texture
	ownsNormal bool
	vertices   gpu.Buffer
	indices    gpu.Buffer
	indexCount uint32
	uniforms   gpu.Buffer
	bindGroup  gpu.BindGroup
}

// Body is a horizontal water plane. Its surface height is the Y component of its world position.
type Body interface {
	render.RenderableNode

	// Height returns the world-space Y of the surface.
	//
	// Returns:
	//   - float32: the surface height
	Height() float32

	// Target returns the private reflection target.
	//
	// Returns:
	//   - resource.RenderTarget: the reflection target
	Target() resource.RenderTarget

	// Resize resizes the reflection target and rebinds it. The current size is a no-op.
	//
	// Parameters:
	//   - size: the drawable size
	//
	// Returns:
	//   - error: error if the target or bind group could not be rebuilt
	Resize(size gpu.Size) error

	// Update advances the ripple animation.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	Update(deltaTime float32)

	// Time returns the accumulated animation time in seconds.
	//
	// Returns:
	//   - float32: the animation time
	Time() float32

	// Release frees the body's buffers, textures and reflection target.
	Release()
}

var _ Body = &body{}

// NewBody creates a water plane with a reflection target at the current drawable size.
//
// Parameters:
//   - ctx: the graphics context
//   - res: the shared water resources
//   - options: variadic list of BodyBuilderOption functions to configure the body
//
// Returns:
//   - Body: the water body
//   - error: error if a GPU resource cannot be created
func NewBody(ctx gpu.GraphicsContext, res Resources, options ...BodyBuilderOption) (Body, error) {
	if ctx == nil || res == nil {
		return nil, errors.New("water: graphics context and resources are required")
	}
	b := &body{
		res:        res,
		device:     ctx.Device(),
		size:       100,
		tiling:     16,
		distortion: 0.02,
	}
	for _, opt := range options {
		opt(b)
	}
	b.Node = node.NewNode(b.nodeOptions...)
	b.Bind(b)
	if b.Name() == "" {
		b.SetName("water")
	}

	if err := b.init(ctx); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (b *body) init(ctx gpu.GraphicsContext) error {
	plane := asset.Plane(b.size)
	var err error
	if b.vertices, err = b.device.CreateBufferInit(gpu.BufferDescriptor{Label: b.Name() + " vertices", Usage: gpu.BufferUsageVertex}, plane.VertexBytes()); err != nil {
		return fmt.Errorf("water: failed to create vertex buffer: %w", err)
	}
	if b.indices, err = b.device.CreateBufferInit(gpu.BufferDescriptor{Label: b.Name() + " indices", Usage: gpu.BufferUsageIndex}, plane.IndexBytes()); err != nil {
		return fmt.Errorf("water: failed to create index buffer: %w", err)
	}
	b.indexCount = uint32(len(plane.Indices))

	if b.uniforms, err = b.device.CreateBuffer(gpu.BufferDescriptor{
		Label: b.Name() + " uniforms",
		Size:  UniformsSize,
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	}); err != nil {
		return fmt.Errorf("water: failed to create uniform buffer: %w", err)
	}

	if b.normalImage != nil {
		if b.normalMap, err = material.UploadImage(b.device, b.Name()+" normal map", b.normalImage, false); err != nil {
			return fmt.Errorf("water: %w", err)
		}
		b.ownsNormal = true
		b.normalImage = nil
	} else {
		b.normalMap = b.res.FallbackTexture(true)
	}

	size := ctx.DrawableSize()
	if size.IsZero() {
		size = gpu.Size{Width: 1, Height: 1}
	}
	if b.target, err = b.res.NewRenderTarget(b.Name()+" reflection", size); err != nil {
		return fmt.Errorf("water: %w", err)
	}
	return b.rebind()
}

// rebind rebuilds the bind group after the reflection texture changed.
func (b *body) rebind() error {
	group, err := b.device.CreateBindGroup(gpu.BindGroupDescriptor{
		Label:  b.Name(),
		Layout: b.res.WaterLayout(),
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, Buffer: b.uniforms},
			{Binding: 1, Texture: b.target.Color()},
			{Binding: 2, Texture: b.normalMap},
			{Binding: 3, Sampler: b.res.MaterialSampler()},
		},
	})
	if err != nil {
		return fmt.Errorf("water: failed to create bind group: %w", err)
	}
	if b.bindGroup != nil {
		b.bindGroup.Release()
	}
	b.bindGroup = group
	return nil
}

func (b *body) Height() float32 {
	return b.WorldMatrix()[13]
}

func (b *body) Target() resource.RenderTarget {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target
}

func (b *body) Resize(size gpu.Size) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed, err := b.target.Resize(size)
	if err != nil || !changed {
		return err
	}
	return b.rebind()
}

func (b *body) Update(deltaTime float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.time += deltaTime
}

func (b *body) Time() float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.time
}

func (b *body) Render(enc gpu.RenderPassEncoder, frame *render.Frame) error {
	if frame.Pass != render.PassMain || !b.Enabled() {
		return nil
	}
	pipeline := b.res.Pipeline(resource.PipelineWater)
	if pipeline == nil {
		return errors.New("water: pipeline unavailable")
	}

	world := b.WorldMatrix()
	b.mu.Lock()
	u := Uniforms{Model: world, Tiling: b.tiling, Time: b.time, Height: world[13], Distortion: b.distortion}
	group := b.bindGroup
	b.mu.Unlock()
	if err := b.device.WriteBuffer(b.uniforms, 0, u.Marshal()); err != nil {
		return fmt.Errorf("water %s: failed to upload uniforms: %w", b.Name(), err)
	}

	enc.PushDebugGroup(b.Name())
	enc.SetPipeline(pipeline)
	enc.SetBindGroup(0, frame.FrameGroup)
	enc.SetBindGroup(1, group)
	enc.SetVertexBuffer(0, b.vertices, 0)
	enc.SetIndexBuffer(b.indices, gpu.IndexFormatUint32, 0)
	enc.DrawIndexed(b.indexCount, 1, 0, 0, 0)
	enc.PopDebugGroup()
	return nil
}

func (b *body) Release() {
	if b.bindGroup != nil {
		b.bindGroup.Release()
	}
	if b.target != nil {
		b.target.Release()
	}
	if b.ownsNormal && b.normalMap != nil {
		b.normalMap.Release()
	}
	for _, buf := range []gpu.Buffer{b.vertices, b.indices, b.uniforms} {
		if buf != nil {
			buf.Release()
		}
	}
}
