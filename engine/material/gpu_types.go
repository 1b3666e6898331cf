package material

import "github.com/Carmen-Shannon/obsidian/common"

// ConstantsSize is the byte size of the WGSL Material struct.
const ConstantsSize = 48

// Constants is the uniform block bound at @group(2) @binding(0). Texture samples are
// multiplied by these values in the G-buffer shader.
type Constants struct {
	BaseColor        common.Vec3
	Roughness        float32
	SpecularColor    common.Vec3
	Metallic         float32
	AmbientOcclusion common.Vec3
	Shininess        float32
}

// DefaultConstants leaves textures unmodulated: white color, full roughness, no metal.
func DefaultConstants() Constants {
	return Constants{
		BaseColor:        common.Vec3{1, 1, 1},
		Roughness:        1,
		SpecularColor:    common.Vec3{1, 1, 1},
		AmbientOcclusion: common.Vec3{1, 1, 1},
		Shininess:        1,
	}
}

// Marshal encodes c in the WGSL uniform layout.
func (c Constants) Marshal() []byte {
	buf := make([]byte, 0, ConstantsSize)
	buf = common.AppendFloats(buf, c.BaseColor[:]...)
	buf = common.AppendFloats(buf, c.Roughness)
	buf = common.AppendFloats(buf, c.SpecularColor[:]...)
	buf = common.AppendFloats(buf, c.Metallic)
	buf = common.AppendFloats(buf, c.AmbientOcclusion[:]...)
	return common.AppendFloats(buf, c.Shininess)
}
