package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/scene"
)

// shadowUniformsSize is one light view-projection matrix.
const shadowUniformsSize = 64

// passBinding is the group 0 state of one pass: its own uniform buffer and the bind group over it.
type passBinding struct {
	uniforms gpu.Buffer
	group    gpu.BindGroup
}

func (p *passBinding) releaseGroup() {
	if p.group != nil {
		p.group.Release()
		p.group = nil
	}
}

func (p *passBinding) release() {
	p.releaseGroup()
	if p.uniforms != nil {
		p.uniforms.Release()
		p.uniforms = nil
	}
}

// frameBindings holds the buffers and bind groups shared by the passes of a frame.
// passes[0] is the main pass; passes[i] for i >= 1 is the reflection pass of water body i-1.
type frameBindings struct {
	generation uint64
	fragment   gpu.Buffer
	lights     gpu.Buffer
	shadow     passBinding
	passes     []passBinding
	gbuffer    gpu.BindGroup
}

// releaseGroups drops every bind group so the next frame rebuilds them against the current
// render targets and light buffer.
func (b *frameBindings) releaseGroups() {
	b.shadow.releaseGroup()
	for i := range b.passes {
		b.passes[i].releaseGroup()
	}
	if b.gbuffer != nil {
		b.gbuffer.Release()
		b.gbuffer = nil
	}
}

func (b *frameBindings) release() {
	b.releaseGroups()
	b.shadow.release()
	for i := range b.passes {
		b.passes[i].release()
	}
	b.passes = nil
	for _, buf := range []gpu.Buffer{b.fragment, b.lights} {
		if buf != nil {
			buf.Release()
		}
	}
	b.fragment, b.lights = nil, nil
}

// prepareBindings makes sure every pass of the coming frame has a uniform buffer and a bind group
// that reference the current render targets, then uploads the light list and fragment uniforms.
func (r *renderer) prepareBindings(sc scene.Scene, reflections int) error {
	device := r.ctx.Device()
	b := &r.bindings

	if gen := r.res.Generation(); gen != b.generation {
		b.releaseGroups()
		b.generation = gen
	}

	lightData, _ := sc.LightBuffer()
	if b.lights == nil || b.lights.Size() < uint64(len(lightData)) {
		capacity := uint64(len(lightData))
		if b.lights != nil {
			capacity = max(capacity, 2*b.lights.Size())
			b.lights.Release()
		}
		lights, err := device.CreateBuffer(gpu.BufferDescriptor{
			Label: "lights",
			Size:  capacity,
			Usage: gpu.BufferUsageStorage | gpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("renderer: failed to create light buffer: %w", err)
		}
		b.lights = lights
		b.releaseGroups()
	}
	if err := device.WriteBuffer(b.lights, 0, lightData); err != nil {
		return fmt.Errorf("renderer: failed to upload lights: %w", err)
	}

	if b.fragment == nil {
		fragment, err := device.CreateBuffer(gpu.BufferDescriptor{
			Label: "fragment uniforms",
			Size:  render.FragmentUniformsSize,
			Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("renderer: failed to create fragment uniforms: %w", err)
		}
		b.fragment = fragment
	}
	if err := device.WriteBuffer(b.fragment, 0, sc.FragmentUniforms().Marshal()); err != nil {
		return fmt.Errorf("renderer: failed to upload fragment uniforms: %w", err)
	}

	if b.shadow.uniforms == nil {
		buf, err := device.CreateBuffer(gpu.BufferDescriptor{
			Label: "shadow uniforms",
			Size:  shadowUniformsSize,
			Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("renderer: failed to create shadow uniforms: %w", err)
		}
		b.shadow.uniforms = buf
	}
	if b.shadow.group == nil {
		group, err := device.CreateBindGroup(gpu.BindGroupDescriptor{
			Label:   "shadow frame",
			Layout:  r.res.ShadowFrameLayout(),
			Entries: []gpu.BindGroupEntry{{Binding: 0, Buffer: b.shadow.uniforms}},
		})
		if err != nil {
			return fmt.Errorf("renderer: failed to create shadow frame group: %w", err)
		}
		b.shadow.group = group
	}

	for len(b.passes) < reflections+1 {
		label := render.PassMain.String()
		if len(b.passes) > 0 {
			label = fmt.Sprintf("%s %d", render.PassReflection, len(b.passes)-1)
		}
		buf, err := device.CreateBuffer(gpu.BufferDescriptor{
			Label: label + " uniforms",
			Size:  render.UniformsSize,
			Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("renderer: failed to create %s uniforms: %w", label, err)
		}
		b.passes = append(b.passes, passBinding{uniforms: buf})
	}

	shadowMap := r.res.Targets().Shadow
	for i := range b.passes[:reflections+1] {
		p := &b.passes[i]
		if p.group != nil {
			continue
		}
		group, err := device.CreateBindGroup(gpu.BindGroupDescriptor{
			Label:  p.uniforms.Label(),
			Layout: r.res.FrameLayout(),
			Entries: []gpu.BindGroupEntry{
				{Binding: 0, Buffer: p.uniforms},
				{Binding: 1, Buffer: b.fragment},
				{Binding: 2, Buffer: b.lights},
				{Binding: 3, Texture: shadowMap},
				{Binding: 4, Sampler: r.res.ShadowSampler()},
			},
		})
		if err != nil {
			return fmt.Errorf("renderer: failed to create frame group: %w", err)
		}
		p.group = group
	}

	if r.composition && b.gbuffer == nil {
		targets := r.res.Targets()
		group, err := device.CreateBindGroup(gpu.BindGroupDescriptor{
			Label:  "gbuffer",
			Layout: r.res.GBufferLayout(),
			Entries: []gpu.BindGroupEntry{
				{Binding: 0, Texture: targets.Albedo},
				{Binding: 1, Texture: targets.Normal},
				{Binding: 2, Texture: targets.Position},
			},
		})
		if err != nil {
			return fmt.Errorf("renderer: failed to create gbuffer group: %w", err)
		}
		b.gbuffer = group
	}
	return nil
}
