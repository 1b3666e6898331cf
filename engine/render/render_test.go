package render

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestUniforms_Marshal(t *testing.T) {
	u := Uniforms{
		View:           common.Translation(common.Vec3{1, 2, 3}),
		Projection:     common.Identity(),
		Shadow:         common.Scaling(common.Vec3{2, 2, 2}),
		ClipPlane:      MainClipPlane,
		CameraPosition: common.Vec3{0, 0, 30},
		Time:           1.5,
	}
	b := u.Marshal()
	require.Len(t, b, UniformsSize)

	assert.Equal(t, float32(1), floatAt(b, 12))
	assert.Equal(t, float32(3), floatAt(b, 14))
	assert.Equal(t, float32(1), floatAt(b, 16))
	assert.Equal(t, float32(2), floatAt(b, 32))
	assert.Equal(t, float32(-1), floatAt(b, 49))
	assert.Equal(t, float32(1000), floatAt(b, 51))
	assert.Equal(t, float32(30), floatAt(b, 54))
	assert.Equal(t, float32(1.5), floatAt(b, 55))
}

func TestFragmentUniforms_Marshal(t *testing.T) {
	b := FragmentUniforms{CameraPosition: common.Vec3{4, 5, 6}}.Marshal()
	require.Len(t, b, FragmentUniformsSize)
	assert.Equal(t, float32(6), floatAt(b, 2))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[12:]))

	b = FragmentUniforms{LightCount: 42}.Marshal()
	assert.Equal(t, uint32(42), binary.LittleEndian.Uint32(b[12:]))
}

func TestReflectionClipPlane(t *testing.T) {
	plane := ReflectionClipPlane(2)
	above := common.Vec4{0, 3, 0, 1}
	below := common.Vec4{0, 1, 0, 1}
	dot := func(a, b common.Vec4) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3] }
	assert.Greater(t, dot(above, plane), float32(0))
	assert.Less(t, dot(below, plane), float32(0))
	assert.Equal(t, common.Vec4{0, 1, 0, 0.1}, ReflectionClipPlane(0))
}

func TestPassKind_String(t *testing.T) {
	assert.Equal(t, "shadow", PassShadow.String())
	assert.Equal(t, "composition", PassComposition.String())
	assert.Equal(t, "unknown", PassKind(9).String())
}
