package gputest

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
)

// Texture is a recorded texture.
type Texture struct {
	mu       sync.Mutex
	ID       int
	Desc     gpu.TextureDescriptor
	Uploads  int
	released bool
}

func (t *Texture) Label() string { return t.Desc.Label }
func (t *Texture) Size() gpu.Size { return t.Desc.Size }
func (t *Texture) Format() gpu.TextureFormat { return t.Desc.Format }

func (t *Texture) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.released = true
}

// Released reports whether Release was called.
func (t *Texture) Released() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}

// Buffer is a recorded buffer whose contents follow every WriteBuffer.
type Buffer struct {
	mu       sync.Mutex
	ID       int
	Desc     gpu.BufferDescriptor
	data     []byte
	writes   int
	released bool
}

func (b *Buffer) Label() string { return b.Desc.Label }

func (b *Buffer) Size() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(b.data))
}

func (b *Buffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
}

// Bytes returns a copy of the buffer contents.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.data)
}

// Writes returns how many WriteBuffer calls targeted this buffer.
func (b *Buffer) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// Released reports whether Release was called.
func (b *Buffer) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// Sampler is a recorded sampler.
type Sampler struct {
	Desc gpu.SamplerDescriptor
}

func (s *Sampler) Release() {}

// BindGroupLayout is a recorded bind group layout.
type BindGroupLayout struct {
	Desc gpu.BindGroupLayoutDescriptor
}

func (l *BindGroupLayout) Release() {}

// BindGroup is a recorded bind group.
type BindGroup struct {
	mu       sync.Mutex
	ID       int
	Desc     gpu.BindGroupDescriptor
	released bool
}

func (g *BindGroup) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released = true
}

// Released reports whether Release was called.
func (g *BindGroup) Released() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.released
}

// Textures returns the textures bound by the group.
func (g *BindGroup) Textures() []*Texture {
	var out []*Texture
	for _, e := range g.Desc.Entries {
		if t, ok := e.Texture.(*Texture); ok {
			out = append(out, t)
		}
	}
	return out
}

// Pipeline is a recorded render pipeline.
type Pipeline struct {
	ID   int
	Desc gpu.RenderPipelineDescriptor
}

func (p *Pipeline) Label() string { return p.Desc.Label }
func (p *Pipeline) Release() {}
