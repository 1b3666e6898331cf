package wgpu_device

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

var errForeign = errors.New("wgpu_device: resource was not created by this device")

type commandEncoder struct {
	enc *wgpu.CommandEncoder
}

func (e *commandEncoder) BeginRenderPass(desc gpu.RenderPassDescriptor) (gpu.RenderPassEncoder, error) {
	colors := make([]wgpu.RenderPassColorAttachment, 0, len(desc.ColorAttachments))
	for i, c := range desc.ColorAttachments {
		t, ok := c.Texture.(*texture)
		if !ok {
			return nil, fmt.Errorf("pass %q color attachment %d: %w", desc.Label, i, errForeign)
		}
		colors = append(colors, wgpu.RenderPassColorAttachment{
			View:    t.view,
			LoadOp:  loadOp(c.LoadOp),
			StoreOp: storeOp(c.StoreOp),
			ClearValue: wgpu.Color{
				R: c.ClearColor.R, G: c.ClearColor.G, B: c.ClearColor.B, A: c.ClearColor.A,
			},
		})
	}

	rp := &wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: colors,
	}
	if d := desc.DepthAttachment; d != nil {
		t, ok := d.Texture.(*texture)
		if !ok {
			return nil, fmt.Errorf("pass %q depth attachment: %w", desc.Label, errForeign)
		}
		rp.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            t.view,
			DepthLoadOp:     loadOp(d.LoadOp),
			DepthStoreOp:    storeOp(d.StoreOp),
			DepthClearValue: d.ClearDepth,
		}
	}
	return &passEncoder{pass: e.enc.BeginRenderPass(rp)}, nil
}

func (e *commandEncoder) Finish() (gpu.CommandBuffer, error) {
	cb, err := e.enc.Finish(nil)
	e.enc.Release()
	if err != nil {
		return nil, err
	}
	return &commandBuffer{cb: cb}, nil
}

func (e *commandEncoder) Release() {
	e.enc.Release()
}

type passEncoder struct {
	pass *wgpu.RenderPassEncoder
}

func (p *passEncoder) PushDebugGroup(label string) {
	p.pass.PushDebugGroup(label)
}

func (p *passEncoder) PopDebugGroup() {
	p.pass.PopDebugGroup()
}

func (p *passEncoder) SetPipeline(pl gpu.RenderPipeline) {
	if rp, ok := pl.(*renderPipeline); ok {
		p.pass.SetPipeline(rp.p)
	}
}

func (p *passEncoder) SetBindGroup(index uint32, group gpu.BindGroup) {
	if g, ok := group.(*bindGroup); ok {
		p.pass.SetBindGroup(index, g.g, nil)
	}
}

func (p *passEncoder) SetVertexBuffer(slot uint32, buf gpu.Buffer, offset uint64) {
	if b, ok := buf.(*buffer); ok {
		p.pass.SetVertexBuffer(slot, b.buf, offset, wgpu.WholeSize)
	}
}

func (p *passEncoder) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat, offset uint64) {
	if b, ok := buf.(*buffer); ok {
		p.pass.SetIndexBuffer(b.buf, indexFormat(format), offset, wgpu.WholeSize)
	}
}

func (p *passEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *passEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *passEncoder) End() error {
	p.pass.End()
	p.pass.Release()
	return nil
}
