// Package render defines the contract between the renderer and anything that can draw itself,
// together with the per-frame uniform blocks every pass binds at group 0.
package render

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/node"
)

// PassKind identifies the render pass a Frame is encoding.
type PassKind int

const (
	PassShadow PassKind = iota
	PassReflection
	PassMain
	PassComposition
)

func (p PassKind) String() string {
	switch p {
	case PassShadow:
		return "shadow"
	case PassReflection:
		return "reflection"
	case PassMain:
		return "main"
	case PassComposition:
		return "composition"
	default:
		return "unknown"
	}
}

// PipelineSource resolves the pipelines a Renderable binds for itself.
type PipelineSource interface {
	// ShadowPipeline returns the depth-only pipeline used by the shadow pass.
	ShadowPipeline() gpu.RenderPipeline

	// ShadingPipeline returns the G-buffer pipeline for a shading model name such as
	// "fragment_PBR" or "fragment_IBL".
	ShadingPipeline(shadingModel string) (gpu.RenderPipeline, error)
}

// Frame is the per-pass state handed to every Renderable. The renderer owns it; a Renderable
// must not retain it past Render.
type Frame struct {
	Pass     PassKind
	Uniforms Uniforms
	Fragment FragmentUniforms

	// FrameGroup is already bound at group 0 when Render is called. Renderables re-bind it
	// only after switching to a pipeline with a different group 0 layout.
	FrameGroup gpu.BindGroup
	Pipelines  PipelineSource
	Time       float32
}

// Renderable is implemented by every node that encodes its own draw calls.
type Renderable interface {
	// Render encodes the draw calls for the pass described by frame.
	//
	// Parameters:
	//   - enc: the open render pass
	//   - frame: the pass state
	//
	// Returns:
	//   - error: error if the node could not be drawn; the pass continues without it
	Render(enc gpu.RenderPassEncoder, frame *Frame) error
}

// RenderableNode is a scene graph node that can draw itself.
type RenderableNode interface {
	node.Node
	Renderable
}

// Uniforms is the frame uniform block bound at @group(0) @binding(0).
type Uniforms struct {
	View           common.Mat4
	Projection     common.Mat4
	Shadow         common.Mat4
	ClipPlane      common.Vec4
	CameraPosition common.Vec3
	Time           float32
}

// UniformsSize is the byte size of Uniforms on the GPU.
const UniformsSize = 224

// Marshal encodes u in the WGSL uniform layout.
func (u Uniforms) Marshal() []byte {
	buf := make([]byte, 0, UniformsSize)
	buf = common.AppendFloats(buf, u.View[:]...)
	buf = common.AppendFloats(buf, u.Projection[:]...)
	buf = common.AppendFloats(buf, u.Shadow[:]...)
	buf = common.AppendFloats(buf, u.ClipPlane[:]...)
	buf = common.AppendFloats(buf, u.CameraPosition[:]...)
	return common.AppendFloats(buf, u.Time)
}

// FragmentUniforms is the fragment uniform block bound at @group(0) @binding(1).
type FragmentUniforms struct {
	CameraPosition common.Vec3
	LightCount     uint32
}

// FragmentUniformsSize is the byte size of FragmentUniforms on the GPU.
const FragmentUniformsSize = 16

// Marshal encodes f in the WGSL uniform layout.
func (f FragmentUniforms) Marshal() []byte {
	buf := make([]byte, 0, FragmentUniformsSize)
	buf = common.AppendFloats(buf, f.CameraPosition[:]...)
	return binary.LittleEndian.AppendUint32(buf, f.LightCount)
}

// Clip planes keep fragments whose world position p satisfies dot((p, 1), plane) >= 0.
var (
	// MainClipPlane keeps everything below y = 1000, so it never clips in practice.
	MainClipPlane = common.Vec4{0, -1, 0, 1000}
)

// ReflectionClipPlane keeps geometry above a water surface at height h, with a small margin so
// the shoreline does not show a seam.
func ReflectionClipPlane(h float32) common.Vec4 {
	return common.Vec4{0, 1, 0, 0.1 - h}
}
