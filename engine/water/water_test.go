package water

import (
	"encoding/binary"
	"image"
	"math"
	"testing"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/gpu/gputest"
	"github.com/Carmen-Shannon/obsidian/engine/node"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func newTestBody(t *testing.T, options ...BodyBuilderOption) (Body, *gputest.Device, resource.Manager) {
	t.Helper()
	ctx, dev, _ := gputest.NewContext(gpu.Size{Width: 64, Height: 32})
	res, err := resource.NewManager(ctx)
	require.NoError(t, err)
	t.Cleanup(res.Release)
	b, err := NewBody(ctx, res, options...)
	require.NoError(t, err)
	t.Cleanup(b.Release)
	return b, dev, res
}

func TestUniforms_Marshal(t *testing.T) {
	b := Uniforms{Model: common.Identity(), Tiling: 16, Time: 2, Height: -1, Distortion: 0.5}.Marshal()
	require.Len(t, b, UniformsSize)
	assert.Equal(t, float32(16), floatAt(b, 16))
	assert.Equal(t, float32(-1), floatAt(b, 18))
	assert.Equal(t, float32(0.5), floatAt(b, 19))
}

func TestNewBody(t *testing.T) {
	b, _, res := newTestBody(t, WithNode(node.WithPosition(common.Vec3{0, -2, 0})))
	assert.Equal(t, "water", b.Name())
	assert.Equal(t, float32(-2), b.Height())
	assert.Equal(t, gpu.Size{Width: 64, Height: 32}, b.Target().Size())

	group := b.(*body).bindGroup.(*gputest.BindGroup)
	textures := group.Textures()
	require.Len(t, textures, 2)
	assert.Same(t, b.Target().Color(), gpu.Texture(textures[0]))
	assert.Same(t, res.FallbackTexture(true), gpu.Texture(textures[1]))
}

func TestBody_NormalMap(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	b, _, _ := newTestBody(t, WithNormalMap(img))
	tex := b.(*body).normalMap.(*gputest.Texture)
	assert.Equal(t, gpu.TextureFormatRGBA8Unorm, tex.Desc.Format)
	assert.Equal(t, 1, tex.Uploads)
}

func TestBody_Resize(t *testing.T) {
	b, _, _ := newTestBody(t)
	oldColor := b.Target().Color().(*gputest.Texture)
	oldGroup := b.(*body).bindGroup.(*gputest.BindGroup)

	require.NoError(t, b.Resize(gpu.Size{Width: 64, Height: 32}))
	assert.False(t, oldColor.Released())
	assert.Same(t, oldGroup, b.(*body).bindGroup)

	require.NoError(t, b.Resize(gpu.Size{Width: 128, Height: 128}))
	assert.True(t, oldColor.Released())
	assert.True(t, oldGroup.Released())
	assert.Equal(t, gpu.Size{Width: 128, Height: 128}, b.Target().Size())
	newGroup := b.(*body).bindGroup.(*gputest.BindGroup)
	assert.Same(t, b.Target().Color(), gpu.Texture(newGroup.Textures()[0]))
}

func TestBody_Render(t *testing.T) {
	b, dev, res := newTestBody(t, WithNode(node.WithPosition(common.Vec3{0, 3, 0})))
	b.Update(0.5)
	b.Update(0.25)
	assert.Equal(t, float32(0.75), b.Time())

	for _, pass := range []render.PassKind{render.PassShadow, render.PassReflection, render.PassMain} {
		dev.Reset()
		enc, err := dev.CreateCommandEncoder("test")
		require.NoError(t, err)
		p, err := enc.BeginRenderPass(gpu.RenderPassDescriptor{
			Label:            pass.String(),
			ColorAttachments: []gpu.ColorAttachment{{Texture: res.Targets().Albedo}},
		})
		require.NoError(t, err)
		require.NoError(t, b.Render(p, &render.Frame{Pass: pass, Pipelines: res}))
		require.NoError(t, p.End())
		cb, err := enc.Finish()
		require.NoError(t, err)
		require.NoError(t, dev.Submit(cb))

		draws := dev.Passes()[0].Draws
		if pass != render.PassMain {
			assert.Empty(t, draws, pass.String())
			continue
		}
		require.Len(t, draws, 1)
		assert.Equal(t, resource.PipelineWater, draws[0].Pipeline)
		assert.Equal(t, uint32(6), draws[0].Count)
	}

	u := b.(*body).uniforms.(*gputest.Buffer).Bytes()
	assert.Equal(t, float32(3), floatAt(u, 13))
	assert.Equal(t, float32(0.75), floatAt(u, 17))
	assert.Equal(t, float32(3), floatAt(u, 18))
}
