package light

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/obsidian/common"
)

// GPULightSize is the byte size of one Light in the WGSL storage buffer.
const GPULightSize = 80

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct layout exactly.
type GPULight struct {
	Position        [3]float32 // offset  0
	LightType       uint32     // offset 12
	Color           [3]float32 // offset 16
	Intensity       float32    // offset 28
	SpecularColor   [3]float32 // offset 32
	ConeAngle       float32    // offset 44
	Attenuation     [3]float32 // offset 48
	ConeAttenuation float32    // offset 60
	ConeDirection   [3]float32 // offset 64
	_pad            uint32     // offset 76
}

// ToGPU converts l to its GPU representation.
//
// Parameters:
//   - l: the light to convert
//
// Returns:
//   - GPULight: the GPU layout of l
func ToGPU(l Light) GPULight {
	return GPULight{
		Position:        l.Position(),
		LightType:       uint32(l.Type()),
		Color:           l.Color(),
		Intensity:       l.Intensity(),
		SpecularColor:   l.SpecularColor(),
		ConeAngle:       l.ConeAngle(),
		Attenuation:     l.Attenuation(),
		ConeAttenuation: l.ConeAttenuation(),
		ConeDirection:   l.ConeDirection(),
	}
}

// Marshal appends the GPULight to buf in the WGSL storage layout.
//
// Parameters:
//   - buf: the buffer to append to
//
// Returns:
//   - []byte: buf extended by GPULightSize bytes
func (g GPULight) Marshal(buf []byte) []byte {
	buf = common.AppendFloats(buf, g.Position[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, g.LightType)
	buf = common.AppendFloats(buf, g.Color[:]...)
	buf = common.AppendFloats(buf, g.Intensity)
	buf = common.AppendFloats(buf, g.SpecularColor[:]...)
	buf = common.AppendFloats(buf, g.ConeAngle)
	buf = common.AppendFloats(buf, g.Attenuation[:]...)
	buf = common.AppendFloats(buf, g.ConeAttenuation)
	buf = common.AppendFloats(buf, g.ConeDirection[:]...)
	return binary.LittleEndian.AppendUint32(buf, 0)
}

// MarshalLights serializes the enabled lights in order. With no enabled light a single zeroed
// placeholder is written so the storage buffer is never empty; the returned count is still 0
// and is what the shader loops over.
//
// Parameters:
//   - lights: the scene lights in insertion order
//
// Returns:
//   - []byte: the storage buffer contents, a multiple of GPULightSize and never empty
//   - uint32: the number of lights written
func MarshalLights(lights []Light) ([]byte, uint32) {
	buf := make([]byte, 0, max(len(lights), 1)*GPULightSize)
	var count uint32
	for _, l := range lights {
		if !l.Enabled() {
			continue
		}
		buf = ToGPU(l).Marshal(buf)
		count++
	}
	if count == 0 {
		buf = GPULight{}.Marshal(buf)
	}
	return buf, count
}
