// Package gpu defines the contract between the engine and a graphics backend. The engine never
// talks to a graphics API directly: every texture, buffer, pipeline and command stream goes
// through a Device obtained from a GraphicsContext.
package gpu

import "errors"

var (
	// ErrSurfaceUnavailable is returned by Surface.Acquire when no presentable image is available
	// (the surface is minimized, outdated or lost). The frame must be abandoned without submitting.
	ErrSurfaceUnavailable = errors.New("gpu: surface texture unavailable")

	// ErrReleased is returned when an operation targets a resource that was already released.
	ErrReleased = errors.New("gpu: resource released")
)

// Texture is a GPU texture.
type Texture interface {
	Label() string
	Size() Size
	Format() TextureFormat
	Release()
}

// Buffer is a GPU buffer.
type Buffer interface {
	Label() string
	Size() uint64
	Release()
}

// Sampler is a GPU sampler.
type Sampler interface {
	Release()
}

// BindGroupLayout describes the resource slots of one bind group index.
type BindGroupLayout interface {
	Release()
}

// BindGroup is a set of resources bound together at one bind group index.
type BindGroup interface {
	Release()
}

// RenderPipeline is compiled render state: shaders, vertex layout, targets and depth state.
type RenderPipeline interface {
	Label() string
	Release()
}

// CommandBuffer is a finished, submittable command stream.
type CommandBuffer interface {
	Release()
}

// RenderPassEncoder records the commands of one render pass.
type RenderPassEncoder interface {
	// PushDebugGroup opens a labelled group of commands for GPU debuggers.
	PushDebugGroup(label string)

	// PopDebugGroup closes the most recent debug group.
	PopDebugGroup()

	// SetPipeline binds the pipeline used by subsequent draws.
	SetPipeline(p RenderPipeline)

	// SetBindGroup binds group at the given index for subsequent draws.
	SetBindGroup(index uint32, group BindGroup)

	// SetVertexBuffer binds buf to the vertex buffer slot.
	SetVertexBuffer(slot uint32, buf Buffer, offset uint64)

	// SetIndexBuffer binds the index buffer used by DrawIndexed.
	SetIndexBuffer(buf Buffer, format IndexFormat, offset uint64)

	// Draw issues a non-indexed draw.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// DrawIndexed issues an indexed draw.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// End finishes the pass. The encoder must not be used afterwards.
	End() error
}

// CommandEncoder records render passes into a command buffer.
type CommandEncoder interface {
	// BeginRenderPass starts a pass writing into the attachments of desc.
	//
	// Parameters:
	//   - desc: the pass attachments
	//
	// Returns:
	//   - RenderPassEncoder: the pass encoder
	//   - error: error if the pass could not be started
	BeginRenderPass(desc RenderPassDescriptor) (RenderPassEncoder, error)

	// Finish closes the encoder and returns the recorded command buffer.
	//
	// Returns:
	//   - CommandBuffer: the command buffer ready for submission
	//   - error: error if encoding failed
	Finish() (CommandBuffer, error)

	// Release discards the encoder without producing a command buffer.
	Release()
}

// SurfaceTexture is the presentable image acquired for one frame.
type SurfaceTexture interface {
	// Texture returns the color texture to render into.
	Texture() Texture

	// Present queues the image for display. It must be called after the frame's command
	// buffers were submitted.
	Present() error

	// Discard releases the image without presenting it.
	Discard()
}

// Surface is the presentation target (a window swapchain).
type Surface interface {
	// Format returns the color format of acquired surface textures.
	Format() TextureFormat

	// Configure (re)creates the swapchain at the given size.
	//
	// Parameters:
	//   - size: the new drawable size in pixels
	//   - mode: the presentation mode
	//
	// Returns:
	//   - error: error if configuration failed
	Configure(size Size, mode PresentMode) error

	// Acquire returns the next presentable image.
	//
	// Returns:
	//   - SurfaceTexture: the acquired image
	//   - error: ErrSurfaceUnavailable (possibly wrapped) when no image can be acquired
	Acquire() (SurfaceTexture, error)

	// Release frees the surface.
	Release()
}

// Device creates GPU resources and executes command buffers. Implementations must be safe for
// concurrent use; the renderer may encode passes from several goroutines.
type Device interface {
	// Name returns a human-readable adapter description.
	Name() string

	// CreateBuffer allocates a zero-initialized buffer.
	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// CreateBufferInit allocates a buffer holding data. desc.Size is ignored.
	CreateBufferInit(desc BufferDescriptor, data []byte) (Buffer, error)

	// WriteBuffer schedules a write of data into buf at offset. Writes are ordered before any
	// command buffer submitted afterwards.
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// CreateTexture allocates a texture.
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// WriteTexture uploads tightly packed texel rows into layer of tex.
	WriteTexture(tex Texture, layer uint32, data []byte, bytesPerRow uint32) error

	// CreateSampler creates a sampler.
	CreateSampler(desc SamplerDescriptor) (Sampler, error)

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (BindGroupLayout, error)

	// CreateBindGroup creates a bind group against desc.Layout.
	CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error)

	// CreateRenderPipeline compiles a render pipeline. Shader compilation errors surface here.
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)

	// CreateCommandEncoder starts a new command stream.
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// Submit executes command buffers on the queue in the given order.
	Submit(buffers ...CommandBuffer) error

	// Release frees the device.
	Release()
}
