package wgpu_device

import (
	"sync"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

type texture struct {
	desc gpu.TextureDescriptor
	tex  *wgpu.Texture
	view *wgpu.TextureView

	// owned is false for surface textures, which are released by the swapchain.
	owned bool
	once  sync.Once
}

func (t *texture) Label() string             { return t.desc.Label }
func (t *texture) Size() gpu.Size            { return t.desc.Size }
func (t *texture) Format() gpu.TextureFormat { return t.desc.Format }

func (t *texture) Release() {
	t.once.Do(func() {
		if t.view != nil {
			t.view.Release()
		}
		if t.owned && t.tex != nil {
			t.tex.Release()
		}
	})
}

type buffer struct {
	label string
	size  uint64
	buf   *wgpu.Buffer
	once  sync.Once
}

func (b *buffer) Label() string { return b.label }
func (b *buffer) Size() uint64  { return b.size }

func (b *buffer) Release() {
	b.once.Do(b.buf.Release)
}

type sampler struct {
	s *wgpu.Sampler
}

func (s *sampler) Release() { s.s.Release() }

type bindGroupLayout struct {
	l *wgpu.BindGroupLayout
}

func (l *bindGroupLayout) Release() { l.l.Release() }

type bindGroup struct {
	g    *wgpu.BindGroup
	once sync.Once
}

func (g *bindGroup) Release() {
	g.once.Do(g.g.Release)
}

type renderPipeline struct {
	label  string
	p      *wgpu.RenderPipeline
	layout *wgpu.PipelineLayout
	once   sync.Once
}

func (p *renderPipeline) Label() string { return p.label }

func (p *renderPipeline) Release() {
	p.once.Do(func() {
		p.p.Release()
		p.layout.Release()
	})
}

type commandBuffer struct {
	cb *wgpu.CommandBuffer
}

func (c *commandBuffer) Release() { c.cb.Release() }
