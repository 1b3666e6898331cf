package light

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestDefault(t *testing.T) {
	l := Default()
	assert.Equal(t, LightTypeDirectional, l.Type())
	assert.Equal(t, common.Vec3{1, 1, 1}, l.Color())
	assert.Equal(t, common.Vec3{0.6, 0.6, 0.6}, l.SpecularColor())
	assert.Equal(t, float32(1), l.Intensity())
	assert.Equal(t, common.Vec3{1, 0, 0}, l.Attenuation())
	assert.True(t, l.Enabled())
}

func TestNewLight_Options(t *testing.T) {
	l := NewLight(LightTypeSpot,
		WithPosition(1, 2, 3),
		WithColor(0.5, 0.25, 0),
		WithIntensity(3),
		WithSpotCone(90, common.Vec3{0, 0, 2}, 4),
	)
	assert.Equal(t, LightTypeSpot, l.Type())
	assert.Equal(t, common.Vec3{1, 2, 3}, l.Position())
	assert.Equal(t, common.Vec3{0, 0, 1}, l.ConeDirection())
	assert.InDelta(t, math.Pi/2, l.ConeAngle(), 1e-6)
	assert.Equal(t, float32(4), l.ConeAttenuation())
	assert.Equal(t, "spot", l.Type().String())
}

func TestMarshalLights_Order(t *testing.T) {
	sun := NewLight(LightTypeDirectional, WithPosition(0, 200, -150))
	ambient := NewLight(LightTypeAmbient, WithColor(1, 244.0/255, 229.0/255), WithIntensity(0.1))
	off := NewLight(LightTypePoint, WithEnabled(false))
	point := NewLight(LightTypePoint, WithPosition(1, 2, 3), WithAttenuation(0.4, 0.4, 0.4))

	buf, count := MarshalLights([]Light{sun, ambient, off, point})
	require.Equal(t, uint32(3), count)
	require.Len(t, buf, 3*GPULightSize)

	stride := GPULightSize / 4
	assert.Equal(t, float32(200), floatAt(buf, 1))
	assert.Equal(t, uint32(LightTypeDirectional), binary.LittleEndian.Uint32(buf[12:]))
	assert.Equal(t, uint32(LightTypeAmbient), binary.LittleEndian.Uint32(buf[GPULightSize+12:]))
	assert.Equal(t, float32(0.1), floatAt(buf, stride+7))
	assert.Equal(t, uint32(LightTypePoint), binary.LittleEndian.Uint32(buf[2*GPULightSize+12:]))
	assert.Equal(t, float32(3), floatAt(buf, 2*stride+2))
	assert.Equal(t, float32(0.4), floatAt(buf, 2*stride+12))
}

func TestMarshalLights_Empty(t *testing.T) {
	buf, count := MarshalLights(nil)
	assert.Equal(t, uint32(0), count)
	require.Len(t, buf, GPULightSize)
	assert.Equal(t, make([]byte, GPULightSize), buf)

	buf, count = MarshalLights([]Light{NewLight(LightTypePoint, WithEnabled(false))})
	assert.Equal(t, uint32(0), count)
	assert.Len(t, buf, GPULightSize)
}

func TestFindDirectional(t *testing.T) {
	assert.Nil(t, FindDirectional(nil))

	point := NewLight(LightTypePoint)
	hidden := NewLight(LightTypeDirectional, WithEnabled(false))
	sun := NewLight(LightTypeDirectional)
	assert.Same(t, sun, FindDirectional([]Light{point, hidden, sun}))
}

func TestShadowMatrix(t *testing.T) {
	sun := NewLight(LightTypeDirectional, WithPosition(0, 200, -150))
	cfg := DefaultShadowConfig()
	m := ShadowMatrix(sun, cfg)

	origin := m.MulVec4(common.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, origin[0], 1e-5)
	assert.InDelta(t, 0, origin[1], 1e-5)
	assert.InDelta(t, (15-0.1)/(30-0.1), origin[2], 1e-4)
	assert.InDelta(t, 1, origin[3], 1e-6)

	// a point between the origin and the light is closer to the light, so its depth is smaller
	toward := m.MulVec4(common.Vec4{0, 8, -6, 1})
	assert.Less(t, toward[2], origin[2])

	// the projection spans HalfExtent on each side
	edge := m.MulVec4(common.Vec4{15, 0, 0, 1})
	assert.InDelta(t, 1, math.Abs(float64(edge[0])), 1e-4)
}

func TestShadowMatrix_StraightDown(t *testing.T) {
	sun := NewLight(LightTypeDirectional, WithPosition(0, 10, 0))
	m := ShadowMatrix(sun, DefaultShadowConfig())
	for _, v := range m {
		assert.False(t, math.IsNaN(float64(v)))
	}
	origin := m.MulVec4(common.Vec4{0, 0, 0, 1})
	assert.InDelta(t, (15-0.1)/(30-0.1), origin[2], 1e-4)
}

func TestCreatePointLights(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	min, max := common.Vec3{-8, 0.5, -8}, common.Vec3{8, 4, 8}
	lights := CreatePointLights(40, min, max, rng)
	require.Len(t, lights, 40)

	for _, l := range lights {
		assert.Equal(t, LightTypePoint, l.Type())
		assert.Equal(t, float32(5), l.Intensity())
		assert.Contains(t, PointLightPalette, l.Color())
		p := l.Position()
		for i := range p {
			assert.GreaterOrEqual(t, p[i], min[i])
			assert.LessOrEqual(t, p[i], max[i])
		}
	}
}
