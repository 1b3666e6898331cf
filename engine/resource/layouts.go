package resource

import "github.com/Carmen-Shannon/obsidian/engine/gpu"

const (
	vertex   = gpu.ShaderStageVertex
	fragment = gpu.ShaderStageFragment
)

// FrameLayoutDescriptor is group 0 of every colour pipeline: frame uniforms, fragment uniforms,
// the light list, the shadow map and its comparison sampler.
func FrameLayoutDescriptor() gpu.BindGroupLayoutDescriptor {
	return gpu.BindGroupLayoutDescriptor{
		Label: "frame",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: vertex | fragment, Type: gpu.BindingTypeUniformBuffer},
			{Binding: 1, Visibility: fragment, Type: gpu.BindingTypeUniformBuffer},
			{Binding: 2, Visibility: fragment, Type: gpu.BindingTypeReadOnlyStorageBuffer},
			{Binding: 3, Visibility: fragment, Type: gpu.BindingTypeDepthTexture},
			{Binding: 4, Visibility: fragment, Type: gpu.BindingTypeComparisonSampler},
		},
	}
}

// ShadowFrameLayoutDescriptor is group 0 of the shadow pipeline: the light view-projection.
func ShadowFrameLayoutDescriptor() gpu.BindGroupLayoutDescriptor {
	return gpu.BindGroupLayoutDescriptor{
		Label: "shadow frame",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: vertex, Type: gpu.BindingTypeUniformBuffer},
		},
	}
}

// ModelLayoutDescriptor is group 1 of the shadow and G-buffer pipelines: per-draw model uniforms
// and the instance transforms.
func ModelLayoutDescriptor() gpu.BindGroupLayoutDescriptor {
	return gpu.BindGroupLayoutDescriptor{
		Label: "model",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: vertex, Type: gpu.BindingTypeUniformBuffer},
			{Binding: 1, Visibility: vertex, Type: gpu.BindingTypeReadOnlyStorageBuffer},
		},
	}
}

// MaterialLayoutDescriptor is group 2 of the G-buffer pipelines.
func MaterialLayoutDescriptor() gpu.BindGroupLayoutDescriptor {
	entries := []gpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: fragment, Type: gpu.BindingTypeUniformBuffer},
	}
	for b := uint32(1); b <= 5; b++ {
		entries = append(entries, gpu.BindGroupLayoutEntry{Binding: b, Visibility: fragment, Type: gpu.BindingTypeTexture})
	}
	entries = append(entries, gpu.BindGroupLayoutEntry{Binding: 6, Visibility: fragment, Type: gpu.BindingTypeSampler})
	return gpu.BindGroupLayoutDescriptor{Label: "material", Entries: entries}
}

// SkyLayoutDescriptor is group 1 of the skybox pipeline.
func SkyLayoutDescriptor() gpu.BindGroupLayoutDescriptor {
	return gpu.BindGroupLayoutDescriptor{
		Label: "sky",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: fragment, Type: gpu.BindingTypeUniformBuffer},
		},
	}
}

// WaterLayoutDescriptor is group 1 of the water pipeline.
func WaterLayoutDescriptor() gpu.BindGroupLayoutDescriptor {
	return gpu.BindGroupLayoutDescriptor{
		Label: "water",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: vertex | fragment, Type: gpu.BindingTypeUniformBuffer},
			{Binding: 1, Visibility: fragment, Type: gpu.BindingTypeTexture},
			{Binding: 2, Visibility: fragment, Type: gpu.BindingTypeTexture},
			{Binding: 3, Visibility: fragment, Type: gpu.BindingTypeSampler},
		},
	}
}

// GBufferLayoutDescriptor is group 1 of the composition pipeline.
func GBufferLayoutDescriptor() gpu.BindGroupLayoutDescriptor {
	return gpu.BindGroupLayoutDescriptor{
		Label: "gbuffer",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: fragment, Type: gpu.BindingTypeTexture},
			{Binding: 1, Visibility: fragment, Type: gpu.BindingTypeTexture},
			{Binding: 2, Visibility: fragment, Type: gpu.BindingTypeTexture},
		},
	}
}

// layoutKind indexes the manager's bind group layouts.
type layoutKind int

const (
	layoutFrame layoutKind = iota
	layoutShadowFrame
	layoutModel
	layoutMaterial
	layoutSky
	layoutWater
	layoutGBuffer
	layoutCount
)

func layoutDescriptors() [layoutCount]gpu.BindGroupLayoutDescriptor {
	return [layoutCount]gpu.BindGroupLayoutDescriptor{
		layoutFrame:       FrameLayoutDescriptor(),
		layoutShadowFrame: ShadowFrameLayoutDescriptor(),
		layoutModel:       ModelLayoutDescriptor(),
		layoutMaterial:    MaterialLayoutDescriptor(),
		layoutSky:         SkyLayoutDescriptor(),
		layoutWater:       WaterLayoutDescriptor(),
		layoutGBuffer:     GBufferLayoutDescriptor(),
	}
}
