package gpu

// Size is a surface or texture extent in pixels.
type Size struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether either dimension is zero. Zero-sized surfaces cannot be rendered to.
func (s Size) IsZero() bool {
	return s.Width == 0 || s.Height == 0
}

// Aspect returns width / height, or 1 for a zero-height size.
func (s Size) Aspect() float32 {
	if s.Height == 0 {
		return 1
	}
	return float32(s.Width) / float32(s.Height)
}

// TextureFormat identifies the texel layout of a texture.
type TextureFormat int

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatRGBA16Float
	TextureFormatDepth32Float
	TextureFormatDepth24Plus
)

// IsDepth reports whether f is a depth format.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth32Float || f == TextureFormatDepth24Plus
}

// BytesPerPixel returns the texel size of color formats, or 4 for depth formats.
func (f TextureFormat) BytesPerPixel() uint32 {
	switch f {
	case TextureFormatRGBA16Float:
		return 8
	default:
		return 4
	}
}

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatBGRA8Unorm:
		return "bgra8unorm"
	case TextureFormatBGRA8UnormSrgb:
		return "bgra8unorm-srgb"
	case TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	case TextureFormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case TextureFormatRGBA16Float:
		return "rgba16float"
	case TextureFormatDepth32Float:
		return "depth32float"
	case TextureFormatDepth24Plus:
		return "depth24plus"
	default:
		return "undefined"
	}
}

// TextureUsage is a bitmask of the ways a texture may be used.
type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageRenderAttachment
)

// StorageMode describes where texture memory lives. Private textures are only touched by the GPU
// and never accept CPU uploads.
type StorageMode int

const (
	StorageModePrivate StorageMode = iota
	StorageModeShared
)

// TextureDimension selects a plain 2D texture or a six-layer cube texture.
type TextureDimension int

const (
	TextureDimension2D TextureDimension = iota
	TextureDimensionCube
)

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	Label     string
	Size      Size
	Format    TextureFormat
	Usage     TextureUsage
	Storage   StorageMode
	Dimension TextureDimension
}

// BufferUsage is a bitmask of the ways a buffer may be bound.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageCopyDst
)

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// AddressMode controls sampling outside the [0, 1] texture coordinate range.
type AddressMode int

const (
	AddressModeClampToEdge AddressMode = iota
	AddressModeRepeat
	AddressModeMirrorRepeat
)

// FilterMode selects nearest or linear texel filtering.
type FilterMode int

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

// CompareFunction is used for depth testing and comparison samplers.
type CompareFunction int

const (
	CompareFunctionUndefined CompareFunction = iota
	CompareFunctionNever
	CompareFunctionLess
	CompareFunctionLessEqual
	CompareFunctionEqual
	CompareFunctionGreater
	CompareFunctionAlways
)

// SamplerDescriptor describes a sampler to create. A Compare other than CompareFunctionUndefined
// produces a comparison sampler.
type SamplerDescriptor struct {
	Label         string
	AddressModeU  AddressMode
	AddressModeV  AddressMode
	AddressModeW  AddressMode
	MagFilter     FilterMode
	MinFilter     FilterMode
	MipmapFilter  FilterMode
	Compare       CompareFunction
	MaxAnisotropy uint16
}

// ShaderStage is a bitmask of programmable stages.
type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

// BindingType is the kind of resource a bind group layout slot accepts.
type BindingType int

const (
	BindingTypeUniformBuffer BindingType = iota
	BindingTypeReadOnlyStorageBuffer
	BindingTypeTexture
	BindingTypeDepthTexture
	BindingTypeCubeTexture
	BindingTypeSampler
	BindingTypeComparisonSampler
)

func (b BindingType) String() string {
	switch b {
	case BindingTypeUniformBuffer:
		return "uniform"
	case BindingTypeReadOnlyStorageBuffer:
		return "storage"
	case BindingTypeTexture:
		return "texture_2d"
	case BindingTypeDepthTexture:
		return "texture_depth_2d"
	case BindingTypeCubeTexture:
		return "texture_cube"
	case BindingTypeSampler:
		return "sampler"
	case BindingTypeComparisonSampler:
		return "sampler_comparison"
	default:
		return "unknown"
	}
}

// BindGroupLayoutEntry declares one binding slot of a bind group layout.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Type       BindingType
}

// BindGroupLayoutDescriptor describes a bind group layout to create.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds exactly one of Buffer, Texture or Sampler to a slot. A zero Size binds
// the remainder of the buffer from Offset.
type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
	Offset  uint64
	Size    uint64
	Texture Texture
	Sampler Sampler
}

// BindGroupDescriptor describes a bind group to create against Layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// VertexFormat is the per-attribute data format of a vertex buffer.
type VertexFormat int

const (
	VertexFormatFloat32 VertexFormat = iota
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// VertexStepMode selects per-vertex or per-instance attribute stepping.
type VertexStepMode int

const (
	VertexStepModeVertex VertexStepMode = iota
	VertexStepModeInstance
)

// VertexAttribute is one attribute inside a vertex buffer layout.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes the memory layout of one vertex buffer slot.
type VertexBufferLayout struct {
	ArrayStride uint64
	StepMode    VertexStepMode
	Attributes  []VertexAttribute
}

// ShaderFunction names one entry point within a WGSL module.
type ShaderFunction struct {
	Label      string
	Source     string
	EntryPoint string
}

// DepthStencilState configures depth testing for a pipeline. The bias fields only apply to
// pipelines that render into a depth attachment, such as the shadow pass.
type DepthStencilState struct {
	Format              TextureFormat
	DepthCompare        CompareFunction
	DepthWriteEnabled   bool
	DepthBias           int32
	DepthBiasSlopeScale float32
	DepthBiasClamp      float32
}

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// ColorTargetState describes one color output of a pipeline.
type ColorTargetState struct {
	Format TextureFormat
	Blend  bool
}

// RenderPipelineDescriptor describes a render pipeline. A nil Fragment creates a depth-only
// pipeline with no color outputs.
type RenderPipelineDescriptor struct {
	Label            string
	Vertex           ShaderFunction
	Fragment         *ShaderFunction
	VertexBuffers    []VertexBufferLayout
	BindGroupLayouts []BindGroupLayout
	ColorTargets     []ColorTargetState
	DepthStencil     *DepthStencilState
	CullMode         CullMode
}

// LoadOp decides what happens to an attachment at the start of a pass.
type LoadOp int

const (
	LoadOpClear LoadOp = iota
	LoadOpLoad
)

// StoreOp decides what happens to an attachment at the end of a pass.
type StoreOp int

const (
	StoreOpStore StoreOp = iota
	StoreOpDiscard
)

// Color is an RGBA clear color.
type Color struct {
	R, G, B, A float64
}

// ColorAttachment binds a texture as a color output of a render pass.
type ColorAttachment struct {
	Texture    Texture
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearColor Color
}

// DepthAttachment binds a texture as the depth output of a render pass.
type DepthAttachment struct {
	Texture    Texture
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearDepth float32
}

// RenderPassDescriptor describes the attachments of a render pass.
type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []ColorAttachment
	DepthAttachment  *DepthAttachment
}

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// PresentMode controls how frames are queued for display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank.
	PresentModeVSync PresentMode = iota
	// PresentModeUncapped presents immediately.
	PresentModeUncapped
)
