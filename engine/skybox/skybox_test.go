package skybox

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/gpu/gputest"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Marshal(t *testing.T) {
	b := Sunset.Marshal()
	require.Len(t, b, SettingsSize)
	assert.Equal(t, Sunset.SunElevation, math.Float32frombits(binary.LittleEndian.Uint32(b[4:])))
}

func TestSkybox(t *testing.T) {
	ctx, dev, _ := gputest.NewContext(gpu.Size{Width: 8, Height: 8})
	res, err := resource.NewManager(ctx)
	require.NoError(t, err)
	defer res.Release()

	sky, err := NewSkybox(ctx, res, WithSettings(Morning))
	require.NoError(t, err)
	defer sky.Release()
	assert.Equal(t, Morning, sky.Settings())

	uniforms := sky.(*skybox).uniforms.(*gputest.Buffer)
	assert.Equal(t, Morning.Marshal(), uniforms.Bytes())
	require.NoError(t, sky.SetSettings(MidDay))
	assert.Equal(t, MidDay.Marshal(), uniforms.Bytes())
	assert.Equal(t, MidDay, sky.Settings())

	for _, pass := range []render.PassKind{render.PassShadow, render.PassReflection, render.PassMain} {
		dev.Reset()
		enc, err := dev.CreateCommandEncoder("test")
		require.NoError(t, err)
		p, err := enc.BeginRenderPass(gpu.RenderPassDescriptor{
			Label:            pass.String(),
			ColorAttachments: []gpu.ColorAttachment{{Texture: res.Targets().Albedo}},
		})
		require.NoError(t, err)
		require.NoError(t, sky.Render(p, &render.Frame{Pass: pass, Pipelines: res}))
		require.NoError(t, p.End())
		cb, err := enc.Finish()
		require.NoError(t, err)
		require.NoError(t, dev.Submit(cb))

		draws := dev.Passes()[0].Draws
		if pass == render.PassShadow {
			assert.Empty(t, draws)
			continue
		}
		require.Len(t, draws, 1, pass.String())
		assert.Equal(t, resource.PipelineSkybox, draws[0].Pipeline)
		assert.Equal(t, uint32(36), draws[0].Count)
	}
}
