// Package asset turns model identifiers into CPU-side geometry and decoded textures. The engine
// treats it as a black box: models ask a Loader for ModelData and upload what comes back.
package asset

import (
	"errors"
	"fmt"
	"image"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/material"
)

// ErrNotFound is returned when a loader has no asset for the requested identifier.
var ErrNotFound = errors.New("asset: not found")

// Vertex is the interleaved vertex format of every model: position, normal, uv.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// VertexStride is the byte size of one Vertex.
const VertexStride = 32

// VertexLayout describes Vertex to a render pipeline at @location(0..2).
func VertexLayout() gpu.VertexBufferLayout {
	return gpu.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    gpu.VertexStepModeVertex,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: gpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// Bounds is an axis-aligned bounding box in model space.
type Bounds struct {
	Min common.Vec3
	Max common.Vec3
}

// Extend grows b to contain p.
func (b *Bounds) Extend(p common.Vec3) {
	for i := range p {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// MaterialData is an imported material before upload.
type MaterialData struct {
	Name      string
	Constants material.Constants
	Textures  [material.TextureSlotCount]*image.RGBA
}

// SubmeshData is a range of the index buffer drawn with one material.
type SubmeshData struct {
	Name        string
	IndexOffset uint32
	IndexCount  uint32
	Material    MaterialData
}

// ModelData is everything a model needs to upload: one vertex buffer, one index buffer and the
// submeshes that partition the indices.
type ModelData struct {
	Name      string
	Vertices  []Vertex
	Indices   []uint32
	Submeshes []SubmeshData
	Bounds    Bounds
}

// VertexBytes returns the vertices in upload layout.
func (d *ModelData) VertexBytes() []byte {
	buf := make([]byte, 0, len(d.Vertices)*VertexStride)
	for _, v := range d.Vertices {
		buf = common.AppendFloats(buf, v.Position[:]...)
		buf = common.AppendFloats(buf, v.Normal[:]...)
		buf = common.AppendFloats(buf, v.UV[:]...)
	}
	return buf
}

// IndexBytes returns the indices as little-endian uint32.
func (d *ModelData) IndexBytes() []byte {
	return append([]byte(nil), common.SliceToBytes(d.Indices)...)
}

// computeBounds sets d.Bounds from the vertex positions.
func (d *ModelData) computeBounds() {
	if len(d.Vertices) == 0 {
		d.Bounds = Bounds{}
		return
	}
	b := Bounds{Min: d.Vertices[0].Position, Max: d.Vertices[0].Position}
	for _, v := range d.Vertices[1:] {
		b.Extend(v.Position)
	}
	d.Bounds = b
}

// Loader resolves a model identifier to its data.
type Loader interface {
	// Load returns the data for id.
	//
	// Parameters:
	//   - id: the model identifier, e.g. a file name or a primitive name
	//
	// Returns:
	//   - *ModelData: the model data
	//   - error: ErrNotFound if the loader has no such asset, any other error if it failed to read it
	Load(id string) (*ModelData, error)
}

type chain []Loader

// Chain tries each loader in order and returns the first result that is not ErrNotFound.
//
// Parameters:
//   - loaders: the loaders to try
//
// Returns:
//   - Loader: the combined loader
func Chain(loaders ...Loader) Loader {
	return chain(loaders)
}

func (c chain) Load(id string) (*ModelData, error) {
	for _, l := range c {
		data, err := l.Load(id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return data, err
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
