// Package gputest provides an in-memory gpu.Device and gpu.Surface that record every resource
// and command instead of executing them. Tests use the recorded submissions to assert pass order,
// draw counts, buffer contents and resource lifetimes.
package gputest

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
)

// Device is a recording gpu.Device. The zero value is not usable; call NewDevice.
type Device struct {
	mu sync.Mutex

	nextID    int
	textures  []*Texture
	buffers   []*Buffer
	pipelines []*Pipeline
	groups    []*BindGroup
	submitted []PassRecord
	submits   int

	// OnCreateRenderPipeline, when set, is consulted before a pipeline is created; a non-nil
	// error fails the creation.
	OnCreateRenderPipeline func(desc gpu.RenderPipelineDescriptor) error

	// OnBeginRenderPass, when set, is consulted before a pass begins; a non-nil error fails it.
	OnBeginRenderPass func(desc gpu.RenderPassDescriptor) error
}

var _ gpu.Device = &Device{}

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{}
}

func (d *Device) id() int {
	d.nextID++
	return d.nextID
}

func (d *Device) Name() string {
	return "gputest"
}

func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := &Buffer{ID: d.id(), Desc: desc, data: make([]byte, desc.Size)}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *Device) CreateBufferInit(desc gpu.BufferDescriptor, data []byte) (gpu.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	desc.Size = uint64(len(data))
	b := &Buffer{ID: d.id(), Desc: desc, data: slices.Clone(data)}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *Device) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("gputest: foreign buffer %T", buf)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return gpu.ErrReleased
	}
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("gputest: write of %d bytes at %d overflows buffer %q of %d bytes", len(data), offset, b.Desc.Label, len(b.data))
	}
	copy(b.data[offset:], data)
	b.writes++
	return nil
}

func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Size.IsZero() {
		return nil, fmt.Errorf("gputest: texture %q has zero size", desc.Label)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	t := &Texture{ID: d.id(), Desc: desc}
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *Device) WriteTexture(tex gpu.Texture, layer uint32, data []byte, bytesPerRow uint32) error {
	t, ok := tex.(*Texture)
	if !ok {
		return fmt.Errorf("gputest: foreign texture %T", tex)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return gpu.ErrReleased
	}
	if t.Desc.Storage == gpu.StorageModePrivate {
		return fmt.Errorf("gputest: texture %q is private", t.Desc.Label)
	}
	t.Uploads++
	return nil
}

func (d *Device) CreateSampler(desc gpu.SamplerDescriptor) (gpu.Sampler, error) {
	return &Sampler{Desc: desc}, nil
}

func (d *Device) CreateBindGroupLayout(desc gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	return &BindGroupLayout{Desc: desc}, nil
}

func (d *Device) CreateBindGroup(desc gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*BindGroupLayout)
	if !ok || layout == nil {
		return nil, fmt.Errorf("gputest: bind group %q has no layout", desc.Label)
	}
	for _, e := range desc.Entries {
		if t, ok := e.Texture.(*Texture); ok && t.Released() {
			return nil, fmt.Errorf("gputest: bind group %q references released texture %q", desc.Label, t.Desc.Label)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	g := &BindGroup{ID: d.id(), Desc: desc}
	d.groups = append(d.groups, g)
	return g, nil
}

func (d *Device) CreateRenderPipeline(desc gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	if d.OnCreateRenderPipeline != nil {
		if err := d.OnCreateRenderPipeline(desc); err != nil {
			return nil, err
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	p := &Pipeline{ID: d.id(), Desc: desc}
	d.pipelines = append(d.pipelines, p)
	return p, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	return &commandEncoder{device: d, label: label}, nil
}

func (d *Device) Submit(buffers ...gpu.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cb := range buffers {
		c, ok := cb.(*commandBuffer)
		if !ok {
			return fmt.Errorf("gputest: foreign command buffer %T", cb)
		}
		d.submitted = append(d.submitted, c.passes...)
	}
	d.submits++
	return nil
}

func (d *Device) Release() {}

// Passes returns every submitted pass in submission order.
func (d *Device) Passes() []PassRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.submitted)
}

// PassLabels returns the labels of every submitted pass in submission order.
func (d *Device) PassLabels() []string {
	passes := d.Passes()
	labels := make([]string, len(passes))
	for i, p := range passes {
		labels[i] = p.Label
	}
	return labels
}

// Submits returns how many times Submit was called.
func (d *Device) Submits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submits
}

// Textures returns every texture ever created, including released ones.
func (d *Device) Textures() []*Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.textures)
}

// LiveTextures returns the textures that have not been released.
func (d *Device) LiveTextures() []*Texture {
	var live []*Texture
	for _, t := range d.Textures() {
		if !t.Released() {
			live = append(live, t)
		}
	}
	return live
}

// Pipelines returns every pipeline ever created.
func (d *Device) Pipelines() []*Pipeline {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.pipelines)
}

// Reset forgets submitted passes so a test can focus on the next frame.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitted = nil
	d.submits = 0
}
