package wgpu_device

import (
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

func textureFormat(f gpu.TextureFormat) wgpu.TextureFormat {
	switch f {
	case gpu.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case gpu.TextureFormatBGRA8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb
	case gpu.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case gpu.TextureFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case gpu.TextureFormatRGBA16Float:
		return wgpu.TextureFormatRGBA16Float
	case gpu.TextureFormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	case gpu.TextureFormatDepth24Plus:
		return wgpu.TextureFormatDepth24Plus
	default:
		return wgpu.TextureFormatUndefined
	}
}

func engineFormat(f wgpu.TextureFormat) gpu.TextureFormat {
	switch f {
	case wgpu.TextureFormatBGRA8Unorm:
		return gpu.TextureFormatBGRA8Unorm
	case wgpu.TextureFormatBGRA8UnormSrgb:
		return gpu.TextureFormatBGRA8UnormSrgb
	case wgpu.TextureFormatRGBA8Unorm:
		return gpu.TextureFormatRGBA8Unorm
	case wgpu.TextureFormatRGBA8UnormSrgb:
		return gpu.TextureFormatRGBA8UnormSrgb
	case wgpu.TextureFormatRGBA16Float:
		return gpu.TextureFormatRGBA16Float
	default:
		return gpu.TextureFormatUndefined
	}
}

func textureUsage(u gpu.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&gpu.TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&gpu.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&gpu.TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&gpu.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func bufferUsage(u gpu.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&gpu.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&gpu.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&gpu.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&gpu.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&gpu.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	return out
}

func addressMode(m gpu.AddressMode) wgpu.AddressMode {
	switch m {
	case gpu.AddressModeRepeat:
		return wgpu.AddressModeRepeat
	case gpu.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeClampToEdge
	}
}

func filterMode(m gpu.FilterMode) wgpu.FilterMode {
	if m == gpu.FilterModeLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func mipmapFilterMode(m gpu.FilterMode) wgpu.MipmapFilterMode {
	if m == gpu.FilterModeLinear {
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

func compareFunction(c gpu.CompareFunction) wgpu.CompareFunction {
	switch c {
	case gpu.CompareFunctionNever:
		return wgpu.CompareFunctionNever
	case gpu.CompareFunctionLess:
		return wgpu.CompareFunctionLess
	case gpu.CompareFunctionLessEqual:
		return wgpu.CompareFunctionLessEqual
	case gpu.CompareFunctionEqual:
		return wgpu.CompareFunctionEqual
	case gpu.CompareFunctionGreater:
		return wgpu.CompareFunctionGreater
	case gpu.CompareFunctionAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionUndefined
	}
}

func shaderStage(s gpu.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&gpu.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&gpu.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

func layoutEntry(e gpu.BindGroupLayoutEntry) wgpu.BindGroupLayoutEntry {
	out := wgpu.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: shaderStage(e.Visibility),
	}
	switch e.Type {
	case gpu.BindingTypeUniformBuffer:
		out.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}
	case gpu.BindingTypeReadOnlyStorageBuffer:
		out.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}
	case gpu.BindingTypeTexture:
		out.Texture = wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		}
	case gpu.BindingTypeDepthTexture:
		out.Texture = wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeDepth,
			ViewDimension: wgpu.TextureViewDimension2D,
		}
	case gpu.BindingTypeCubeTexture:
		out.Texture = wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimensionCube,
		}
	case gpu.BindingTypeSampler:
		out.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}
	case gpu.BindingTypeComparisonSampler:
		out.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeComparison}
	}
	return out
}

func vertexFormat(f gpu.VertexFormat) wgpu.VertexFormat {
	switch f {
	case gpu.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case gpu.VertexFormatFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case gpu.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	default:
		return wgpu.VertexFormatFloat32
	}
}

func vertexLayouts(layouts []gpu.VertexBufferLayout) []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	for _, l := range layouts {
		attrs := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         vertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			})
		}
		step := wgpu.VertexStepModeVertex
		if l.StepMode == gpu.VertexStepModeInstance {
			step = wgpu.VertexStepModeInstance
		}
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: l.ArrayStride,
			StepMode:    step,
			Attributes:  attrs,
		})
	}
	return out
}

func cullMode(c gpu.CullMode) wgpu.CullMode {
	switch c {
	case gpu.CullModeFront:
		return wgpu.CullModeFront
	case gpu.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func loadOp(op gpu.LoadOp) wgpu.LoadOp {
	if op == gpu.LoadOpLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func storeOp(op gpu.StoreOp) wgpu.StoreOp {
	if op == gpu.StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}

func indexFormat(f gpu.IndexFormat) wgpu.IndexFormat {
	if f == gpu.IndexFormatUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func presentMode(m gpu.PresentMode) wgpu.PresentMode {
	if m == gpu.PresentModeVSync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}
