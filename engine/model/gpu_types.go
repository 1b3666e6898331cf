package model

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/node"
)

// UniformsSize is the byte size of the WGSL ModelUniforms struct (mat4x4f + mat3x3f + u32, padded to 16).
const UniformsSize = 128

// InstanceSize is the byte size of one WGSL Instance struct (mat4x4f + mat3x3f).
const InstanceSize = 112

// Uniforms is the per-model block bound at @group(1) @binding(0).
type Uniforms struct {
	Model  common.Mat4
	Normal common.Mat3
	Tiling uint32
}

// Marshal encodes u in the WGSL uniform layout.
//
// Returns:
//   - []byte: UniformsSize bytes ready for upload
func (u Uniforms) Marshal() []byte {
	buf := make([]byte, 0, UniformsSize)
	buf = common.AppendFloats(buf, u.Model[:]...)
	buf = common.AppendMat3(buf, u.Normal)
	buf = binary.LittleEndian.AppendUint32(buf, u.Tiling)
	return append(buf, make([]byte, UniformsSize-len(buf))...)
}

// Instance is one slot of the instance storage buffer at @group(1) @binding(1).
type Instance struct {
	Model  common.Mat4
	Normal common.Mat3
}

// InstanceFromTransform derives the model and normal matrices of t.
func InstanceFromTransform(t node.Transform) Instance {
	m := t.Matrix()
	return Instance{Model: m, Normal: common.NormalMatrix(m)}
}

// Marshal encodes i in the WGSL storage layout.
//
// Returns:
//   - []byte: InstanceSize bytes ready for upload
func (i Instance) Marshal() []byte {
	buf := make([]byte, 0, InstanceSize)
	buf = common.AppendFloats(buf, i.Model[:]...)
	return common.AppendMat3(buf, i.Normal)
}
