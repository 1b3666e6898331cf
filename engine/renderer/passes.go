package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
	"github.com/Carmen-Shannon/obsidian/engine/scene"
	"github.com/Carmen-Shannon/obsidian/engine/water"
)

// passJob is everything needed to encode one pass independently of the others.
type passJob struct {
	label     string
	desc      gpu.RenderPassDescriptor
	frame     *render.Frame
	drawables []render.Renderable
}

// buildJobs resolves the pass list of a frame: shadow, one reflection per water body, main and,
// when enabled, composition. Uniform buffers are written here so encoding only reads them.
func (r *renderer) buildJobs(sc scene.Scene, waters []water.Body, drawable gpu.Texture) ([]passJob, error) {
	device := r.ctx.Device()
	targets := r.res.Targets()
	uniforms := sc.Uniforms()
	fragment := sc.FragmentUniforms()
	now := sc.Time()

	renderables := sc.Renderables()
	models := make([]render.Renderable, len(renderables))
	for i, rn := range renderables {
		models[i] = rn
	}
	var sky []render.Renderable
	if s := sc.Skybox(); s != nil {
		sky = append(sky, s)
	}

	jobs := make([]passJob, 0, len(r.bindings.passes)+2)

	// Without a directional light the shadow map is only cleared.
	shadowCasters := models
	if sc.ShadowLight() == nil {
		shadowCasters = nil
	}
	if err := device.WriteBuffer(r.bindings.shadow.uniforms, 0, common.AppendFloats(nil, uniforms.Shadow[:]...)); err != nil {
		return nil, fmt.Errorf("renderer: failed to upload shadow uniforms: %w", err)
	}
	jobs = append(jobs, passJob{
		label: render.PassShadow.String(),
		desc: gpu.RenderPassDescriptor{
			Label: render.PassShadow.String(),
			DepthAttachment: &gpu.DepthAttachment{
				Texture:    targets.Shadow,
				LoadOp:     gpu.LoadOpClear,
				StoreOp:    gpu.StoreOpStore,
				ClearDepth: 1,
			},
		},
		frame: &render.Frame{
			Pass:       render.PassShadow,
			Uniforms:   uniforms,
			Fragment:   fragment,
			FrameGroup: r.bindings.shadow.group,
			Pipelines:  r.res,
			Time:       now,
		},
		drawables: shadowCasters,
	})

	for i, w := range waters {
		binding := r.bindings.passes[i+1]
		reflected := sc.ReflectionUniforms(w.Height())
		if err := device.WriteBuffer(binding.uniforms, 0, reflected.Marshal()); err != nil {
			return nil, fmt.Errorf("renderer: failed to upload reflection uniforms for %s: %w", w.Name(), err)
		}
		label := render.PassReflection.String() + " " + w.Name()
		jobs = append(jobs, passJob{
			label: label,
			desc:  w.Target().PassDescriptor(label, r.clearColor),
			frame: &render.Frame{
				Pass:       render.PassReflection,
				Uniforms:   reflected,
				Fragment:   fragment,
				FrameGroup: binding.group,
				Pipelines:  r.res,
				Time:       now,
			},
			drawables: append(append([]render.Renderable(nil), sky...), models...),
		})
	}

	primary := r.bindings.passes[0]
	if err := device.WriteBuffer(primary.uniforms, 0, uniforms.Marshal()); err != nil {
		return nil, fmt.Errorf("renderer: failed to upload frame uniforms: %w", err)
	}
	mainFrame := &render.Frame{
		Pass:       render.PassMain,
		Uniforms:   uniforms,
		Fragment:   fragment,
		FrameGroup: primary.group,
		Pipelines:  r.res,
		Time:       now,
	}
	mainDrawables := append(append([]render.Renderable(nil), sky...), models...)
	for _, w := range waters {
		mainDrawables = append(mainDrawables, w)
	}
	albedo := targets.Albedo
	if !r.composition {
		albedo = drawable
	}
	jobs = append(jobs, passJob{
		label:     render.PassMain.String(),
		desc:      r.gbufferDescriptor(albedo, targets),
		frame:     mainFrame,
		drawables: mainDrawables,
	})

	if r.composition {
		jobs = append(jobs, passJob{
			label: render.PassComposition.String(),
			desc: gpu.RenderPassDescriptor{
				Label: render.PassComposition.String(),
				ColorAttachments: []gpu.ColorAttachment{{
					Texture:    drawable,
					LoadOp:     gpu.LoadOpClear,
					StoreOp:    gpu.StoreOpStore,
					ClearColor: r.clearColor,
				}},
			},
			frame: &render.Frame{
				Pass:       render.PassComposition,
				Uniforms:   uniforms,
				Fragment:   fragment,
				FrameGroup: primary.group,
				Pipelines:  r.res,
				Time:       now,
			},
			drawables: []render.Renderable{&compositor{res: r.res, gbuffer: r.bindings.gbuffer}},
		})
	}
	return jobs, nil
}

// gbufferDescriptor clears the three G-buffer channels and the scene depth. albedo is either the
// G-buffer albedo texture or the drawable itself when composition is disabled.
func (r *renderer) gbufferDescriptor(albedo gpu.Texture, targets resource.Targets) gpu.RenderPassDescriptor {
	desc := gpu.RenderPassDescriptor{
		Label: render.PassMain.String(),
		DepthAttachment: &gpu.DepthAttachment{
			Texture:    targets.Depth,
			LoadOp:     gpu.LoadOpClear,
			StoreOp:    gpu.StoreOpStore,
			ClearDepth: 1,
		},
	}
	for i, t := range []gpu.Texture{albedo, targets.Normal, targets.Position} {
		value := gpu.Color{}
		if i == 0 {
			value = r.clearColor
		}
		desc.ColorAttachments = append(desc.ColorAttachments, gpu.ColorAttachment{
			Texture:    t,
			LoadOp:     gpu.LoadOpClear,
			StoreOp:    gpu.StoreOpStore,
			ClearColor: value,
		})
	}
	return desc
}

// compositor draws the full-screen triangle pair that lights the G-buffer.
type compositor struct {
	res     resource.Manager
	gbuffer gpu.BindGroup
}

func (c *compositor) Render(enc gpu.RenderPassEncoder, frame *render.Frame) error {
	pipeline := c.res.Pipeline(resource.PipelineComposition)
	if pipeline == nil {
		return errors.New("composition pipeline unavailable")
	}
	enc.SetPipeline(pipeline)
	enc.SetBindGroup(0, frame.FrameGroup)
	enc.SetBindGroup(1, c.gbuffer)
	enc.Draw(6, 1, 0, 0)
	return nil
}
