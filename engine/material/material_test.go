package material

import (
	"image"
	"testing"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResources struct {
	layout gpu.BindGroupLayout
	white  gpu.Texture
	normal gpu.Texture
}

func newTestResources(t *testing.T, dev *gputest.Device) *testResources {
	t.Helper()
	layout, err := dev.CreateBindGroupLayout(gpu.BindGroupLayoutDescriptor{Label: "material"})
	require.NoError(t, err)
	white, err := dev.CreateTexture(gpu.TextureDescriptor{Label: "white", Size: gpu.Size{Width: 1, Height: 1}, Storage: gpu.StorageModeShared})
	require.NoError(t, err)
	normal, err := dev.CreateTexture(gpu.TextureDescriptor{Label: "flat-normal", Size: gpu.Size{Width: 1, Height: 1}, Storage: gpu.StorageModeShared})
	require.NoError(t, err)
	return &testResources{layout: layout, white: white, normal: normal}
}

func (r *testResources) MaterialLayout() gpu.BindGroupLayout { return r.layout }
func (r *testResources) MaterialSampler() gpu.Sampler { return &gputest.Sampler{} }

func (r *testResources) FallbackTexture(normalMap bool) gpu.Texture {
	if normalMap {
		return r.normal
	}
	return r.white
}

func TestNewMaterial_Fallbacks(t *testing.T) {
	ctx, dev, _ := gputest.NewContext(gpu.Size{Width: 4, Height: 4})
	res := newTestResources(t, dev)

	albedo := image.NewRGBA(image.Rect(0, 0, 2, 2))
	m, err := NewMaterial(ctx, res, WithName("brick"), WithTexture(SlotBaseColor, albedo))
	require.NoError(t, err)

	assert.True(t, m.HasTexture(SlotBaseColor))
	assert.False(t, m.HasTexture(SlotNormal))
	assert.Same(t, res.normal, m.Texture(SlotNormal))
	assert.Same(t, res.white, m.Texture(SlotRoughness))
	assert.Same(t, res.white, m.Texture(SlotAmbientOcclusion))
	assert.Nil(t, m.Texture(TextureSlot(7)))

	base := m.Texture(SlotBaseColor).(*gputest.Texture)
	assert.Equal(t, gpu.TextureFormatRGBA8UnormSrgb, base.Desc.Format)
	assert.Equal(t, gpu.Size{Width: 2, Height: 2}, base.Desc.Size)
	assert.Equal(t, 1, base.Uploads)

	group := m.BindGroup().(*gputest.BindGroup)
	require.Len(t, group.Desc.Entries, 7)
	assert.NotNil(t, group.Desc.Entries[0].Buffer)
	assert.NotNil(t, group.Desc.Entries[6].Sampler)
	for i := 1; i <= 5; i++ {
		assert.NotNil(t, group.Desc.Entries[i].Texture)
	}
}

func TestMaterial_SetConstants(t *testing.T) {
	ctx, dev, _ := gputest.NewContext(gpu.Size{Width: 4, Height: 4})
	m, err := NewMaterial(ctx, newTestResources(t, dev))
	require.NoError(t, err)
	assert.Equal(t, DefaultConstants(), m.Constants())

	c := DefaultConstants()
	c.BaseColor = common.Vec3{0.2, 0.4, 0.6}
	c.Metallic = 1
	require.NoError(t, m.SetConstants(c))

	buf := m.BindGroup().(*gputest.BindGroup).Desc.Entries[0].Buffer.(*gputest.Buffer)
	assert.Equal(t, c.Marshal(), buf.Bytes())
	assert.Equal(t, c, m.Constants())
}

func TestMaterial_Release(t *testing.T) {
	ctx, dev, _ := gputest.NewContext(gpu.Size{Width: 4, Height: 4})
	res := newTestResources(t, dev)
	m, err := NewMaterial(ctx, res, WithTexture(SlotMetallic, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	require.NoError(t, err)

	own := m.Texture(SlotMetallic).(*gputest.Texture)
	group := m.BindGroup().(*gputest.BindGroup)
	m.Release()

	assert.True(t, own.Released())
	assert.True(t, group.Released())
	assert.False(t, res.white.(*gputest.Texture).Released())
	assert.False(t, res.normal.(*gputest.Texture).Released())
}

func TestConstants_Marshal(t *testing.T) {
	b := DefaultConstants().Marshal()
	assert.Len(t, b, ConstantsSize)
}
