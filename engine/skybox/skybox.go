// Package skybox draws a procedural sky behind the scene in the reflection and main passes.
package skybox

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
)

// Resources supplies the skybox layout and pipeline.
type Resources interface {
	SkyLayout() gpu.BindGroupLayout
	Pipeline(name string) gpu.RenderPipeline
}

// cube is a unit cube around the camera; the shader only uses vertex directions.
var (
	cubeVertices = []common.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	cubeIndices = []uint32{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
		3, 7, 6, 3, 6, 2, // top
		0, 1, 5, 0, 5, 4, // bottom
	}
)

// skybox is the implementation of the Skybox interface.
type skybox struct {
	mu sync.Mutex

	res      Resources
	device   gpu.Device
	settings Settings

	vertices  gpu.Buffer
	indices   gpu.Buffer
	uniforms  gpu.Buffer
	bindGroup gpu.BindGroup
}

// Skybox is a Renderable that fills every pixel no geometry covers with the sky colour.
type Skybox interface {
	render.Renderable

	// Settings returns the current sky parameters.
	//
	// Returns:
	//   - Settings: the sky parameters
	Settings() Settings

	// SetSettings replaces the sky parameters and uploads them.
	//
	// Parameters:
	//   - s: the new parameters, e.g. MidDay
	//
	// Returns:
	//   - error: error if the upload fails
	SetSettings(s Settings) error

	// Release frees the skybox buffers and bind group.
	Release()
}

var _ Skybox = &skybox{}

// NewSkybox uploads the sky cube and its uniform block.
//
// Parameters:
//   - ctx: the graphics context
//   - res: the skybox layout and pipeline source
//   - options: variadic list of SkyboxBuilderOption functions to configure the skybox
//
// Returns:
//   - Skybox: the skybox
//   - error: error if a GPU resource cannot be created
func NewSkybox(ctx gpu.GraphicsContext, res Resources, options ...SkyboxBuilderOption) (Skybox, error) {
	if ctx == nil || res == nil {
		return nil, errors.New("skybox: graphics context and resources are required")
	}
	s := &skybox{res: res, device: ctx.Device(), settings: MidDay}
	for _, opt := range options {
		opt(s)
	}

	verts := make([]byte, 0, len(cubeVertices)*12)
	for _, v := range cubeVertices {
		verts = common.AppendFloats(verts, v[:]...)
	}

	var err error
	if s.vertices, err = s.device.CreateBufferInit(gpu.BufferDescriptor{Label: "skybox vertices", Usage: gpu.BufferUsageVertex}, verts); err != nil {
		return nil, fmt.Errorf("skybox: failed to create vertex buffer: %w", err)
	}
	if s.indices, err = s.device.CreateBufferInit(gpu.BufferDescriptor{Label: "skybox indices", Usage: gpu.BufferUsageIndex}, common.SliceToBytes(cubeIndices)); err != nil {
		s.Release()
		return nil, fmt.Errorf("skybox: failed to create index buffer: %w", err)
	}
	if s.uniforms, err = s.device.CreateBufferInit(gpu.BufferDescriptor{
		Label: "skybox settings",
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	}, s.settings.Marshal()); err != nil {
		s.Release()
		return nil, fmt.Errorf("skybox: failed to create uniform buffer: %w", err)
	}
	if s.bindGroup, err = s.device.CreateBindGroup(gpu.BindGroupDescriptor{
		Label:   "skybox",
		Layout:  res.SkyLayout(),
		Entries: []gpu.BindGroupEntry{{Binding: 0, Buffer: s.uniforms}},
	}); err != nil {
		s.Release()
		return nil, fmt.Errorf("skybox: failed to create bind group: %w", err)
	}
	return s, nil
}

func (s *skybox) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *skybox) SetSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.device.WriteBuffer(s.uniforms, 0, settings.Marshal()); err != nil {
		return fmt.Errorf("skybox: failed to upload settings: %w", err)
	}
	s.settings = settings
	return nil
}

func (s *skybox) Render(enc gpu.RenderPassEncoder, frame *render.Frame) error {
	if frame.Pass != render.PassReflection && frame.Pass != render.PassMain {
		return nil
	}
	pipeline := s.res.Pipeline(resource.PipelineSkybox)
	if pipeline == nil {
		return errors.New("skybox: pipeline unavailable")
	}
	enc.PushDebugGroup("skybox")
	enc.SetPipeline(pipeline)
	enc.SetBindGroup(0, frame.FrameGroup)
	enc.SetBindGroup(1, s.bindGroup)
	enc.SetVertexBuffer(0, s.vertices, 0)
	enc.SetIndexBuffer(s.indices, gpu.IndexFormatUint32, 0)
	enc.DrawIndexed(uint32(len(cubeIndices)), 1, 0, 0, 0)
	enc.PopDebugGroup()
	return nil
}

func (s *skybox) Release() {
	if s.bindGroup != nil {
		s.bindGroup.Release()
	}
	for _, b := range []gpu.Buffer{s.vertices, s.indices, s.uniforms} {
		if b != nil {
			b.Release()
		}
	}
}
