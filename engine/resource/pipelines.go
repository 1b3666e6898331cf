package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/obsidian/engine/asset"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/shader"
)

// Pipeline names.
const (
	PipelineShadow      = "shadow"
	PipelineComposition = "composition"
	PipelineSkybox      = "skybox"
	PipelineWater       = "water"

	// ShadingPBR and ShadingIBL are the shading models a model may select for the G-buffer pass.
	ShadingPBR = "fragment_PBR"
	ShadingIBL = "fragment_IBL"

	gbufferPrefix = "gbuffer/"
)

// ShadingModels lists every shading model with a G-buffer pipeline.
var ShadingModels = []string{ShadingPBR, ShadingIBL}

// DepthMode selects one of the three depth-stencil states the renderer uses.
type DepthMode int

const (
	// DepthDefault tests less and writes.
	DepthDefault DepthMode = iota
	// DepthSkybox tests less-equal and does not write, so the sky stays behind everything.
	DepthSkybox
	// DepthComposition always passes and does not write.
	DepthComposition
)

// DepthState returns the depth-stencil state for mode on a Depth32Float attachment.
func DepthState(mode DepthMode) gpu.DepthStencilState {
	switch mode {
	case DepthSkybox:
		return gpu.DepthStencilState{Format: gpu.TextureFormatDepth32Float, DepthCompare: gpu.CompareFunctionLessEqual}
	case DepthComposition:
		return gpu.DepthStencilState{Format: gpu.TextureFormatDepth32Float, DepthCompare: gpu.CompareFunctionAlways}
	default:
		return gpu.DepthStencilState{Format: gpu.TextureFormatDepth32Float, DepthCompare: gpu.CompareFunctionLess, DepthWriteEnabled: true}
	}
}

// ShadowBias is the rasterizer depth bias of the shadow pipeline.
type ShadowBias struct {
	Constant   int32
	SlopeScale float32
	Clamp      float32
}

// SkyboxVertexLayout is the position-only layout of the skybox cube.
func SkyboxVertexLayout() gpu.VertexBufferLayout {
	return gpu.VertexBufferLayout{
		ArrayStride: 12,
		StepMode:    gpu.VertexStepModeVertex,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	}
}

type pipelineSpec struct {
	name     string
	vertex   string
	fragment string
	groups   []layoutKind
	buffers  []gpu.VertexBufferLayout
	targets  []gpu.TextureFormat
	depth    gpu.DepthStencilState
}

func (m *manager) pipelineSpecs() []pipelineSpec {
	gbuffer := m.GBufferFormats()
	shadowDepth := DepthState(DepthDefault)
	shadowDepth.DepthBias = m.bias.Constant
	shadowDepth.DepthBiasSlopeScale = m.bias.SlopeScale
	shadowDepth.DepthBiasClamp = m.bias.Clamp

	specs := []pipelineSpec{
		{
			name:    PipelineShadow,
			vertex:  "vertex_depth",
			groups:  []layoutKind{layoutShadowFrame, layoutModel},
			buffers: []gpu.VertexBufferLayout{asset.VertexLayout()},
			depth:   shadowDepth,
		},
		{
			name:     PipelineSkybox,
			vertex:   "vertex_skybox",
			fragment: "fragment_skybox",
			groups:   []layoutKind{layoutFrame, layoutSky},
			buffers:  []gpu.VertexBufferLayout{SkyboxVertexLayout()},
			targets:  gbuffer,
			depth:    DepthState(DepthSkybox),
		},
		{
			name:     PipelineWater,
			vertex:   "vertex_water",
			fragment: "fragment_water",
			groups:   []layoutKind{layoutFrame, layoutWater},
			buffers:  []gpu.VertexBufferLayout{asset.VertexLayout()},
			targets:  gbuffer,
			depth:    DepthState(DepthDefault),
		},
		{
			name:     PipelineComposition,
			vertex:   "composition_vert",
			fragment: "composition_frag",
			groups:   []layoutKind{layoutFrame, layoutGBuffer},
			targets:  []gpu.TextureFormat{m.ctx.ColorFormat()},
			depth:    DepthState(DepthComposition),
		},
	}
	for _, model := range ShadingModels {
		specs = append(specs, pipelineSpec{
			name:     gbufferPrefix + model,
			vertex:   "vertex_main",
			fragment: model,
			groups:   []layoutKind{layoutFrame, layoutModel, layoutMaterial},
			buffers:  []gpu.VertexBufferLayout{asset.VertexLayout()},
			targets:  gbuffer,
			depth:    DepthState(DepthDefault),
		})
	}
	return specs
}

// buildPipelines compiles every pipeline from lib. Nothing is kept if any pipeline fails.
func (m *manager) buildPipelines(lib shader.Library) (map[string]gpu.RenderPipeline, error) {
	descs := layoutDescriptors()
	built := make(map[string]gpu.RenderPipeline)
	release := func() { releasePipelines(built) }

	for _, spec := range m.pipelineSpecs() {
		groupDescs := make([]gpu.BindGroupLayoutDescriptor, len(spec.groups))
		groupLayouts := make([]gpu.BindGroupLayout, len(spec.groups))
		for i, k := range spec.groups {
			groupDescs[i] = descs[k]
			groupLayouts[i] = m.layouts[k]
		}

		desc := gpu.RenderPipelineDescriptor{
			Label:            spec.name,
			VertexBuffers:    spec.buffers,
			BindGroupLayouts: groupLayouts,
			CullMode:         gpu.CullModeNone,
		}
		depth := spec.depth
		desc.DepthStencil = &depth

		fn, err := resolve(lib, spec.vertex, shader.StageVertex, groupDescs)
		if err != nil {
			release()
			return nil, fmt.Errorf("resource: pipeline %s: %w", spec.name, err)
		}
		desc.Vertex = fn

		if spec.fragment != "" {
			fn, err := resolve(lib, spec.fragment, shader.StageFragment, groupDescs)
			if err != nil {
				release()
				return nil, fmt.Errorf("resource: pipeline %s: %w", spec.name, err)
			}
			desc.Fragment = &fn
			for _, f := range spec.targets {
				desc.ColorTargets = append(desc.ColorTargets, gpu.ColorTargetState{Format: f})
			}
		}

		p, err := m.ctx.Device().CreateRenderPipeline(desc)
		if err != nil {
			release()
			return nil, fmt.Errorf("resource: failed to create pipeline %s: %w", spec.name, err)
		}
		built[spec.name] = p
	}
	return built, nil
}

func resolve(lib shader.Library, name string, want shader.Stage, groups []gpu.BindGroupLayoutDescriptor) (gpu.ShaderFunction, error) {
	fn, stage, err := lib.Function(name)
	if err != nil {
		return gpu.ShaderFunction{}, err
	}
	if stage != want {
		return gpu.ShaderFunction{}, fmt.Errorf("%w: %s is a %s entry point, want %s", shader.ErrFunctionNotFound, name, stage, want)
	}
	if err := lib.Validate(name, groups); err != nil {
		return gpu.ShaderFunction{}, err
	}
	return fn, nil
}
