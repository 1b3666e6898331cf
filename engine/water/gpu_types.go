package water

import "github.com/Carmen-Shannon/obsidian/common"

// UniformsSize is the byte size of the WGSL WaterUniforms struct.
const UniformsSize = 80

// Uniforms is the block bound at @group(1) @binding(0) of the water pipeline.
type Uniforms struct {
	Model      common.Mat4
	Tiling     float32
	Time       float32
	Height     float32
	Distortion float32
}

// Marshal encodes u in the WGSL uniform layout.
func (u Uniforms) Marshal() []byte {
	buf := make([]byte, 0, UniformsSize)
	buf = common.AppendFloats(buf, u.Model[:]...)
	return common.AppendFloats(buf, u.Tiling, u.Time, u.Height, u.Distortion)
}
