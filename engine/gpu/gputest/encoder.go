package gputest

import (
	"errors"
	"maps"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
)

// DrawRecord is one recorded draw call.
type DrawRecord struct {
	Pipeline      string
	Indexed       bool
	Count         uint32
	InstanceCount uint32
	FirstIndex    uint32
	BindGroups    map[uint32]*BindGroup
	VertexBuffers map[uint32]*Buffer
	DebugGroups   []string
}

// PassRecord is one recorded render pass.
type PassRecord struct {
	Label   string
	Encoder string
	Colors  []*Texture
	Depth   *Texture
	Draws   []DrawRecord
}

// Textures returns every attachment of the pass.
func (p PassRecord) Textures() []*Texture {
	out := append([]*Texture(nil), p.Colors...)
	if p.Depth != nil {
		out = append(out, p.Depth)
	}
	return out
}

type commandEncoder struct {
	device   *Device
	label    string
	passes   []PassRecord
	open     bool
	finished bool
}

func (e *commandEncoder) BeginRenderPass(desc gpu.RenderPassDescriptor) (gpu.RenderPassEncoder, error) {
	if e.finished {
		return nil, errors.New("gputest: encoder already finished")
	}
	if e.open {
		return nil, errors.New("gputest: previous pass still open")
	}
	if e.device.OnBeginRenderPass != nil {
		if err := e.device.OnBeginRenderPass(desc); err != nil {
			return nil, err
		}
	}

	rec := PassRecord{Label: desc.Label, Encoder: e.label}
	for _, c := range desc.ColorAttachments {
		t, ok := c.Texture.(*Texture)
		if !ok {
			return nil, errors.New("gputest: color attachment is not a recorded texture")
		}
		if t.Released() {
			return nil, errors.New("gputest: color attachment " + t.Desc.Label + " was released")
		}
		rec.Colors = append(rec.Colors, t)
	}
	if desc.DepthAttachment != nil {
		t, ok := desc.DepthAttachment.Texture.(*Texture)
		if !ok {
			return nil, errors.New("gputest: depth attachment is not a recorded texture")
		}
		if t.Released() {
			return nil, errors.New("gputest: depth attachment " + t.Desc.Label + " was released")
		}
		rec.Depth = t
	}
	if err := checkAttachmentSizes(rec); err != nil {
		return nil, err
	}

	e.open = true
	return &passEncoder{
		encoder:       e,
		record:        rec,
		bindGroups:    map[uint32]*BindGroup{},
		vertexBuffers: map[uint32]*Buffer{},
	}, nil
}

func checkAttachmentSizes(rec PassRecord) error {
	var size gpu.Size
	for _, t := range rec.Textures() {
		if size.IsZero() {
			size = t.Desc.Size
			continue
		}
		if t.Desc.Size != size {
			return errors.New("gputest: pass " + rec.Label + " mixes attachment sizes")
		}
	}
	return nil
}

func (e *commandEncoder) Finish() (gpu.CommandBuffer, error) {
	if e.open {
		return nil, errors.New("gputest: finish with an open pass")
	}
	e.finished = true
	return &commandBuffer{passes: e.passes}, nil
}

func (e *commandEncoder) Release() {
	e.finished = true
	e.passes = nil
}

type commandBuffer struct {
	passes []PassRecord
}

func (c *commandBuffer) Release() {}

type passEncoder struct {
	encoder       *commandEncoder
	record        PassRecord
	pipeline      *Pipeline
	bindGroups    map[uint32]*BindGroup
	vertexBuffers map[uint32]*Buffer
	debugGroups   []string
	ended         bool
}

func (p *passEncoder) PushDebugGroup(label string) {
	p.debugGroups = append(p.debugGroups, label)
}

func (p *passEncoder) PopDebugGroup() {
	if len(p.debugGroups) > 0 {
		p.debugGroups = p.debugGroups[:len(p.debugGroups)-1]
	}
}

func (p *passEncoder) SetPipeline(pl gpu.RenderPipeline) {
	p.pipeline, _ = pl.(*Pipeline)
}

func (p *passEncoder) SetBindGroup(index uint32, group gpu.BindGroup) {
	g, _ := group.(*BindGroup)
	p.bindGroups[index] = g
}

func (p *passEncoder) SetVertexBuffer(slot uint32, buf gpu.Buffer, offset uint64) {
	b, _ := buf.(*Buffer)
	p.vertexBuffers[slot] = b
}

func (p *passEncoder) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat, offset uint64) {}

func (p *passEncoder) draw(indexed bool, count, instances, first uint32) {
	rec := DrawRecord{
		Indexed:       indexed,
		Count:         count,
		InstanceCount: instances,
		FirstIndex:    first,
		BindGroups:    maps.Clone(p.bindGroups),
		VertexBuffers: maps.Clone(p.vertexBuffers),
		DebugGroups:   append([]string(nil), p.debugGroups...),
	}
	if p.pipeline != nil {
		rec.Pipeline = p.pipeline.Desc.Label
	}
	p.record.Draws = append(p.record.Draws, rec)
}

func (p *passEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.draw(false, vertexCount, instanceCount, firstVertex)
}

func (p *passEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.draw(true, indexCount, instanceCount, firstIndex)
}

func (p *passEncoder) End() error {
	if p.ended {
		return errors.New("gputest: pass ended twice")
	}
	p.ended = true
	p.encoder.open = false
	p.encoder.passes = append(p.encoder.passes, p.record)
	return nil
}
