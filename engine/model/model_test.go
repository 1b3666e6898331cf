package model

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/asset"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/gpu/gputest"
	"github.com/Carmen-Shannon/obsidian/engine/node"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T) (gpu.GraphicsContext, *gputest.Device, resource.Manager) {
	t.Helper()
	ctx, dev, _ := gputest.NewContext(gpu.Size{Width: 16, Height: 16})
	res, err := resource.NewManager(ctx)
	require.NoError(t, err)
	t.Cleanup(res.Release)
	return ctx, dev, res
}

// encode runs fn inside a single recorded pass and returns what it drew.
func encode(t *testing.T, dev *gputest.Device, res resource.Manager, pass render.PassKind, fn func(gpu.RenderPassEncoder, *render.Frame) error) (gputest.PassRecord, error) {
	t.Helper()
	dev.Reset()
	enc, err := dev.CreateCommandEncoder("test")
	require.NoError(t, err)
	p, err := enc.BeginRenderPass(gpu.RenderPassDescriptor{
		Label:            pass.String(),
		ColorAttachments: []gpu.ColorAttachment{{Texture: res.Targets().Albedo}},
	})
	require.NoError(t, err)

	renderErr := fn(p, &render.Frame{Pass: pass, Pipelines: res})
	require.NoError(t, p.End())
	cb, err := enc.Finish()
	require.NoError(t, err)
	require.NoError(t, dev.Submit(cb))

	passes := dev.Passes()
	require.Len(t, passes, 1)
	return passes[0], renderErr
}

func floatAt(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestUniforms_Marshal(t *testing.T) {
	b := Uniforms{Model: common.Translation(common.Vec3{1, 2, 3}), Normal: common.Identity().Upper3x3(), Tiling: 4}.Marshal()
	require.Len(t, b, UniformsSize)
	assert.Equal(t, float32(2), floatAt(b, 13))
	assert.Equal(t, float32(1), floatAt(b, 16))
	assert.Equal(t, float32(0), floatAt(b, 19))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(b[112:]))

	inst := InstanceFromTransform(node.Transform{Position: common.Vec3{5, 0, 0}, Scale: common.Vec3{2, 2, 2}}).Marshal()
	require.Len(t, inst, InstanceSize)
	assert.Equal(t, float32(5), floatAt(inst, 12))
	assert.InDelta(t, 0.5, floatAt(inst, 16), 1e-6)
}

func TestNewModel(t *testing.T) {
	ctx, dev, res := newTestEnv(t)
	m, err := NewModel(ctx, res, asset.NewPrimitiveLoader(),
		WithAsset("cube"),
		WithInstances(3),
		WithNode(node.WithPosition(common.Vec3{0, 1, 0})),
	)
	require.NoError(t, err)
	defer m.Release()

	assert.NoError(t, m.Err())
	assert.Equal(t, "cube", m.Name())
	assert.Equal(t, "cube", m.Asset())
	assert.Equal(t, 3, m.InstanceCount())
	assert.Equal(t, DefaultShadingModel, m.ShadingModel())
	assert.Equal(t, uint32(1), m.Tiling())
	assert.Len(t, m.Materials(), 1)
	assert.Equal(t, float32(-0.5), m.Bounds().Min[0])

	rec, err := encode(t, dev, res, render.PassMain, m.Render)
	require.NoError(t, err)
	require.Len(t, rec.Draws, 1)
	draw := rec.Draws[0]
	assert.Equal(t, "gbuffer/fragment_PBR", draw.Pipeline)
	assert.True(t, draw.Indexed)
	assert.Equal(t, uint32(36), draw.Count)
	assert.Equal(t, uint32(3), draw.InstanceCount)
	assert.Equal(t, []string{"cube"}, draw.DebugGroups)
	assert.Contains(t, draw.BindGroups, uint32(2))

	rec, err = encode(t, dev, res, render.PassShadow, m.Render)
	require.NoError(t, err)
	require.Len(t, rec.Draws, 1)
	assert.Equal(t, "shadow", rec.Draws[0].Pipeline)
	assert.NotContains(t, rec.Draws[0].BindGroups, uint32(2))
}

func TestModel_Render_UploadsWorldMatrix(t *testing.T) {
	ctx, dev, res := newTestEnv(t)
	parent := node.NewNode(node.WithPosition(common.Vec3{10, 0, 0}))
	m, err := NewModel(ctx, res, asset.NewPrimitiveLoader(), WithAsset("plane"), WithTiling(8), WithNode(node.WithPosition(common.Vec3{0, 0, 5})))
	require.NoError(t, err)
	require.NoError(t, parent.AddChild(m))

	_, err = encode(t, dev, res, render.PassMain, m.Render)
	require.NoError(t, err)

	b := m.(*model).uniforms.(*gputest.Buffer).Bytes()
	assert.Equal(t, float32(10), floatAt(b, 12))
	assert.Equal(t, float32(5), floatAt(b, 14))
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(b[112:]))
}

func TestModel_SetInstanceTransform(t *testing.T) {
	ctx, _, res := newTestEnv(t)
	m, err := NewModel(ctx, res, asset.NewPrimitiveLoader(), WithAsset("cube"), WithInstances(4))
	require.NoError(t, err)

	buf := m.(*model).instances.(*gputest.Buffer)
	before := buf.Bytes()
	require.Len(t, before, 4*InstanceSize)

	moved := node.Transform{Position: common.Vec3{3, 4, 5}, Scale: common.Vec3{1, 1, 1}}
	require.NoError(t, m.SetInstanceTransform(2, moved))
	after := buf.Bytes()

	for slot := 0; slot < 4; slot++ {
		lo, hi := slot*InstanceSize, (slot+1)*InstanceSize
		if slot == 2 {
			assert.False(t, bytes.Equal(before[lo:hi], after[lo:hi]), "slot %d should change", slot)
			continue
		}
		assert.True(t, bytes.Equal(before[lo:hi], after[lo:hi]), "slot %d should not change", slot)
	}
	assert.Equal(t, float32(4), floatAt(after[2*InstanceSize:], 13))

	got, err := m.InstanceTransform(2)
	require.NoError(t, err)
	assert.Equal(t, moved, got)

	for _, idx := range []int{-1, 4} {
		assert.ErrorIs(t, m.SetInstanceTransform(idx, moved), ErrInstanceOutOfRange)
		_, err := m.InstanceTransform(idx)
		assert.ErrorIs(t, err, ErrInstanceOutOfRange)
	}
	assert.Equal(t, after, buf.Bytes())
}

func TestModel_AssetMissing(t *testing.T) {
	ctx, dev, res := newTestEnv(t)
	m, err := NewModel(ctx, res, asset.NewPrimitiveLoader(), WithAsset("teapot"))
	require.NoError(t, err)
	assert.ErrorIs(t, m.Err(), ErrAssetMissing)
	assert.ErrorIs(t, m.Err(), asset.ErrNotFound)

	rec, err := encode(t, dev, res, render.PassMain, m.Render)
	assert.ErrorIs(t, err, ErrAssetMissing)
	assert.Empty(t, rec.Draws)

	assert.NoError(t, m.SetInstanceTransform(0, node.NewTransform()))
}

func TestModel_Disabled(t *testing.T) {
	ctx, dev, res := newTestEnv(t)
	m, err := NewModel(ctx, res, asset.NewPrimitiveLoader(), WithAsset("cube"))
	require.NoError(t, err)
	m.SetEnabled(false)

	rec, err := encode(t, dev, res, render.PassMain, m.Render)
	require.NoError(t, err)
	assert.Empty(t, rec.Draws)
}

func TestModel_UnknownShadingModel(t *testing.T) {
	ctx, dev, res := newTestEnv(t)
	m, err := NewModel(ctx, res, asset.NewPrimitiveLoader(), WithAsset("cube"), WithShadingModel("fragment_toon"))
	require.NoError(t, err)

	_, err = encode(t, dev, res, render.PassMain, m.Render)
	assert.ErrorIs(t, err, resource.ErrUnknownShadingModel)

	_, err = encode(t, dev, res, render.PassShadow, m.Render)
	assert.NoError(t, err)
}

func TestModel_WithData(t *testing.T) {
	ctx, _, res := newTestEnv(t)
	data := asset.Cube(2)
	data.Name = "crate"
	m, err := NewModel(ctx, res, nil, WithData(data), WithInstanceTransforms(node.NewTransform(), node.NewTransform()))
	require.NoError(t, err)
	assert.Equal(t, "crate", m.Name())
	assert.Equal(t, 2, m.InstanceCount())
	assert.NoError(t, m.Err())
}
