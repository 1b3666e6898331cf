package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/asset"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/logging"
	"github.com/Carmen-Shannon/obsidian/engine/material"
	"github.com/Carmen-Shannon/obsidian/engine/node"
	"github.com/Carmen-Shannon/obsidian/engine/render"
)

var (
	// ErrAssetMissing is returned by Render for a model whose asset could not be loaded. The
	// model stays in the scene but draws nothing.
	ErrAssetMissing = errors.New("model: asset missing")

	// ErrInstanceOutOfRange is returned for an instance index outside [0, InstanceCount).
	ErrInstanceOutOfRange = errors.New("model: instance index out of range")
)

// DefaultShadingModel is the G-buffer fragment function used when none is configured.
const DefaultShadingModel = "fragment_PBR"

// Resources supplies the shared layouts, sampler and fallback textures a model binds.
type Resources interface {
	material.Resources

	// ModelLayout returns the layout of @group(1): model uniforms and instance storage.
	ModelLayout() gpu.BindGroupLayout
}

type submesh struct {
	name        string
	indexOffset uint32
	indexCount  uint32
	material    material.Material
}

// model is the implementation of the Model interface.
type model struct {
	node.Node

	mu sync.Mutex

	assetID      string
	data         *asset.ModelData
	loader       asset.Loader
	shadingModel string
	tiling       uint32
	nodeOptions  []node.NodeBuilderOption

	device     gpu.Device
	loadErr    error
	bounds     asset.Bounds
	vertices   gpu.Buffer
	indices    gpu.Buffer
	indexCount uint32
	submeshes  []submesh

	transforms []node.Transform
	instances  gpu.Buffer
	uniforms   gpu.Buffer
	bindGroup  gpu.BindGroup
}

// Model is a scene node that draws an imported mesh one or more times. Each draw covers every
// instance slot; slots are positioned relative to the node's world transform and are only ever
// changed through SetInstanceTransform.
type Model interface {
	render.RenderableNode

	// Asset returns the identifier the model was loaded from, or "" for inline data.
	//
	// Returns:
	//   - string: the asset identifier
	Asset() string

	// Err returns the load failure, or nil if the geometry was uploaded.
	//
	// Returns:
	//   - error: an error wrapping ErrAssetMissing, or nil
	Err() error

	// ShadingModel returns the G-buffer fragment function selected for this model.
	//
	// Returns:
	//   - string: the shading model name
	ShadingModel() string

	// Tiling returns how often textures repeat across the UV range.
	//
	// Returns:
	//   - uint32: the tiling factor
	Tiling() uint32

	// SetTiling sets how often textures repeat across the UV range. Zero is treated as one.
	//
	// Parameters:
	//   - tiling: the tiling factor
	SetTiling(tiling uint32)

	// Bounds returns the model-space bounding box of the geometry.
	//
	// Returns:
	//   - asset.Bounds: the bounds, zero if the asset is missing
	Bounds() asset.Bounds

	// Materials returns the material of every submesh in draw order.
	//
	// Returns:
	//   - []material.Material: the submesh materials
	Materials() []material.Material

	// InstanceCount returns the number of instance slots.
	//
	// Returns:
	//   - int: the fixed slot count
	InstanceCount() int

	// InstanceTransform returns the transform stored in slot index.
	//
	// Parameters:
	//   - index: the slot
	//
	// Returns:
	//   - node.Transform: the slot transform
	//   - error: ErrInstanceOutOfRange if index is not a valid slot
	InstanceTransform(index int) (node.Transform, error)

	// SetInstanceTransform replaces the transform of slot index and uploads that slot only.
	//
	// Parameters:
	//   - index: the slot
	//   - t: the new transform
	//
	// Returns:
	//   - error: ErrInstanceOutOfRange if index is not a valid slot, or the upload error
	SetInstanceTransform(index int, t node.Transform) error

	// Release frees every GPU resource the model owns.
	Release()
}

var _ Model = &model{}

// NewModel loads the model's asset through loader and uploads geometry, materials and the
// instance buffer. A failed asset load is not an error: it is logged and the model renders
// nothing, reporting ErrAssetMissing from Render.
//
// Parameters:
//   - ctx: the graphics context
//   - res: the shared model and material resources
//   - loader: resolves the asset set with WithAsset; may be nil when WithData is used
//   - options: variadic list of ModelBuilderOption functions to configure the model
//
// Returns:
//   - Model: the model node
//   - error: error if a GPU resource cannot be created
func NewModel(ctx gpu.GraphicsContext, res Resources, loader asset.Loader, options ...ModelBuilderOption) (Model, error) {
	if ctx == nil || res == nil {
		return nil, errors.New("model: graphics context and resources are required")
	}
	m := &model{
		loader:       loader,
		shadingModel: DefaultShadingModel,
		tiling:       1,
		device:       ctx.Device(),
	}
	for _, opt := range options {
		opt(m)
	}
	m.Node = node.NewNode(m.nodeOptions...)
	m.Bind(m)
	if m.Name() == "" {
		m.SetName(m.assetID)
	}
	if len(m.transforms) == 0 {
		m.transforms = []node.Transform{node.NewTransform()}
	}

	if err := m.createInstanceState(res); err != nil {
		m.Release()
		return nil, err
	}

	data, err := m.resolve()
	if err != nil {
		m.loadErr = fmt.Errorf("%w: %s: %w", ErrAssetMissing, m.assetID, err)
		logging.Warn("model asset missing", "model", m.Name(), "asset", m.assetID, "err", err)
		return m, nil
	}
	if err := m.upload(ctx, res, data); err != nil {
		m.Release()
		return nil, err
	}
	return m, nil
}

func (m *model) resolve() (*asset.ModelData, error) {
	if m.data != nil {
		return m.data, nil
	}
	if m.loader == nil {
		return nil, errors.New("no loader")
	}
	data, err := m.loader.Load(m.assetID)
	if err != nil {
		return nil, err
	}
	if len(data.Vertices) == 0 || len(data.Indices) == 0 {
		return nil, errors.New("asset has no geometry")
	}
	return data, nil
}

func (m *model) createInstanceState(res Resources) error {
	var err error
	if m.uniforms, err = m.device.CreateBuffer(gpu.BufferDescriptor{
		Label: m.Name() + " uniforms",
		Size:  UniformsSize,
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	}); err != nil {
		return fmt.Errorf("model: failed to create uniform buffer: %w", err)
	}

	data := make([]byte, 0, len(m.transforms)*InstanceSize)
	for _, t := range m.transforms {
		data = append(data, InstanceFromTransform(t).Marshal()...)
	}
	if m.instances, err = m.device.CreateBufferInit(gpu.BufferDescriptor{
		Label: m.Name() + " instances",
		Usage: gpu.BufferUsageStorage | gpu.BufferUsageCopyDst,
	}, data); err != nil {
		return fmt.Errorf("model: failed to create instance buffer: %w", err)
	}

	if m.bindGroup, err = m.device.CreateBindGroup(gpu.BindGroupDescriptor{
		Label:  m.Name() + " model",
		Layout: res.ModelLayout(),
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, Buffer: m.uniforms},
			{Binding: 1, Buffer: m.instances},
		},
	}); err != nil {
		return fmt.Errorf("model: failed to create bind group: %w", err)
	}
	return nil
}

func (m *model) upload(ctx gpu.GraphicsContext, res Resources, data *asset.ModelData) error {
	var err error
	if m.vertices, err = m.device.CreateBufferInit(gpu.BufferDescriptor{
		Label: m.Name() + " vertices",
		Usage: gpu.BufferUsageVertex,
	}, data.VertexBytes()); err != nil {
		return fmt.Errorf("model: failed to create vertex buffer: %w", err)
	}
	if m.indices, err = m.device.CreateBufferInit(gpu.BufferDescriptor{
		Label: m.Name() + " indices",
		Usage: gpu.BufferUsageIndex,
	}, data.IndexBytes()); err != nil {
		return fmt.Errorf("model: failed to create index buffer: %w", err)
	}
	m.indexCount = uint32(len(data.Indices))
	m.bounds = data.Bounds

	for _, sm := range data.Submeshes {
		opts := []material.MaterialBuilderOption{
			material.WithName(sm.Material.Name),
			material.WithConstants(sm.Material.Constants),
		}
		for slot, img := range sm.Material.Textures {
			if img != nil {
				opts = append(opts, material.WithTexture(material.TextureSlot(slot), img))
			}
		}
		mat, err := material.NewMaterial(ctx, res, opts...)
		if err != nil {
			return fmt.Errorf("model: submesh %s: %w", sm.Name, err)
		}
		m.submeshes = append(m.submeshes, submesh{
			name:        sm.Name,
			indexOffset: sm.IndexOffset,
			indexCount:  sm.IndexCount,
			material:    mat,
		})
	}
	return nil
}

func (m *model) Asset() string {
	return m.assetID
}

func (m *model) Err() error {
	return m.loadErr
}

func (m *model) ShadingModel() string {
	return m.shadingModel
}

func (m *model) Tiling() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tiling
}

func (m *model) SetTiling(tiling uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiling = max(tiling, 1)
}

func (m *model) Bounds() asset.Bounds {
	return m.bounds
}

func (m *model) Materials() []material.Material {
	out := make([]material.Material, len(m.submeshes))
	for i, sm := range m.submeshes {
		out[i] = sm.material
	}
	return out
}

func (m *model) InstanceCount() int {
	return len(m.transforms)
}

func (m *model) InstanceTransform(index int) (node.Transform, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.transforms) {
		return node.Transform{}, fmt.Errorf("%w: %d of %d", ErrInstanceOutOfRange, index, len(m.transforms))
	}
	return m.transforms[index], nil
}

func (m *model) SetInstanceTransform(index int, t node.Transform) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.transforms) {
		return fmt.Errorf("%w: %d of %d", ErrInstanceOutOfRange, index, len(m.transforms))
	}
	if err := m.device.WriteBuffer(m.instances, uint64(index)*InstanceSize, InstanceFromTransform(t).Marshal()); err != nil {
		return fmt.Errorf("model: failed to upload instance %d: %w", index, err)
	}
	m.transforms[index] = t
	return nil
}

func (m *model) Render(enc gpu.RenderPassEncoder, frame *render.Frame) error {
	if m.loadErr != nil {
		return m.loadErr
	}
	if !m.Enabled() {
		return nil
	}

	world := m.WorldMatrix()
	u := Uniforms{Model: world, Normal: common.NormalMatrix(world), Tiling: m.Tiling()}
	if err := m.device.WriteBuffer(m.uniforms, 0, u.Marshal()); err != nil {
		return fmt.Errorf("model %s: failed to upload uniforms: %w", m.Name(), err)
	}

	var pipeline gpu.RenderPipeline
	if frame.Pass == render.PassShadow {
		pipeline = frame.Pipelines.ShadowPipeline()
	} else {
		p, err := frame.Pipelines.ShadingPipeline(m.shadingModel)
		if err != nil {
			return fmt.Errorf("model %s: %w", m.Name(), err)
		}
		pipeline = p
	}
	if pipeline == nil {
		return fmt.Errorf("model %s: no pipeline for %s pass", m.Name(), frame.Pass)
	}

	instances := uint32(len(m.transforms))
	enc.SetPipeline(pipeline)
	enc.SetBindGroup(0, frame.FrameGroup)
	enc.SetBindGroup(1, m.bindGroup)
	enc.SetVertexBuffer(0, m.vertices, 0)
	enc.SetIndexBuffer(m.indices, gpu.IndexFormatUint32, 0)

	if frame.Pass == render.PassShadow {
		enc.DrawIndexed(m.indexCount, instances, 0, 0, 0)
		return nil
	}
	for _, sm := range m.submeshes {
		enc.PushDebugGroup(sm.name)
		enc.SetBindGroup(2, sm.material.BindGroup())
		enc.DrawIndexed(sm.indexCount, instances, sm.indexOffset, 0, 0)
		enc.PopDebugGroup()
	}
	return nil
}

func (m *model) Release() {
	for _, sm := range m.submeshes {
		sm.material.Release()
	}
	m.submeshes = nil
	if m.bindGroup != nil {
		m.bindGroup.Release()
	}
	for _, b := range []gpu.Buffer{m.vertices, m.indices, m.instances, m.uniforms} {
		if b != nil {
			b.Release()
		}
	}
}
