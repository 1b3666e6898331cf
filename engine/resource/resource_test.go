package resource

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/gpu/gputest"
	"github.com/Carmen-Shannon/obsidian/engine/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shaderDir copies the embedded shader sources into a temp dir, applying edit to each file.
func shaderDir(t *testing.T, edit func(name, src string) string) string {
	t.Helper()
	src := filepath.Join("..", "shader", "assets")
	entries, err := os.ReadDir(src)
	require.NoError(t, err)

	dir := t.TempDir()
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		require.NoError(t, err)
		body := string(data)
		if edit != nil {
			body = edit(e.Name(), body)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, e.Name()), []byte(body), 0o644))
	}
	return dir
}

func newTestManager(t *testing.T, size gpu.Size, options ...ManagerBuilderOption) (*manager, *gputest.Device) {
	t.Helper()
	ctx, dev, _ := gputest.NewContext(size)
	m, err := NewManager(ctx, options...)
	require.NoError(t, err)
	t.Cleanup(m.Release)
	return m.(*manager), dev
}

func TestNewManager(t *testing.T) {
	m, dev := newTestManager(t, gpu.Size{Width: 800, Height: 600})

	labels := map[string]bool{}
	for _, p := range dev.Pipelines() {
		labels[p.Label()] = true
	}
	for _, name := range []string{PipelineShadow, PipelineSkybox, PipelineWater, PipelineComposition, gbufferPrefix + ShadingPBR, gbufferPrefix + ShadingIBL} {
		assert.True(t, labels[name], name)
	}

	shadow := m.ShadowPipeline().(*gputest.Pipeline)
	assert.Nil(t, shadow.Desc.Fragment)
	require.NotNil(t, shadow.Desc.DepthStencil)
	assert.Equal(t, int32(2), shadow.Desc.DepthStencil.DepthBias)
	assert.Equal(t, float32(1), shadow.Desc.DepthStencil.DepthBiasSlopeScale)

	pbr, err := m.ShadingPipeline(ShadingPBR)
	require.NoError(t, err)
	assert.Len(t, pbr.(*gputest.Pipeline).Desc.ColorTargets, 3)

	comp := m.Pipeline(PipelineComposition).(*gputest.Pipeline)
	assert.Equal(t, gpu.CompareFunctionAlways, comp.Desc.DepthStencil.DepthCompare)
	assert.False(t, comp.Desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, []gpu.ColorTargetState{{Format: gpu.TextureFormatBGRA8Unorm}}, comp.Desc.ColorTargets)

	sky := m.Pipeline(PipelineSkybox).(*gputest.Pipeline)
	assert.Equal(t, gpu.CompareFunctionLessEqual, sky.Desc.DepthStencil.DepthCompare)

	targets := m.Targets()
	assert.Equal(t, gpu.Size{Width: 800, Height: 600}, targets.Size())
	assert.Equal(t, gpu.TextureFormatDepth32Float, targets.Shadow.Format())
	assert.Equal(t, gpu.TextureFormatBGRA8Unorm, targets.Albedo.Format())
	assert.Equal(t, gpu.TextureFormatRGBA16Float, targets.Normal.Format())
	assert.Equal(t, gpu.TextureFormatRGBA16Float, targets.Position.Format())
	assert.Equal(t, gpu.StorageModePrivate, targets.Depth.(*gputest.Texture).Desc.Storage)
	assert.Equal(t, uint64(1), m.Generation())

	assert.Equal(t, gpu.CompareFunctionLess, m.ShadowSampler().(*gputest.Sampler).Desc.Compare)
	assert.Equal(t, gpu.AddressModeRepeat, m.MaterialSampler().(*gputest.Sampler).Desc.AddressModeU)
	assert.Equal(t, 1, m.FallbackTexture(true).(*gputest.Texture).Uploads)
	assert.NotSame(t, m.FallbackTexture(true), m.FallbackTexture(false))
}

func TestNewManager_ZeroSizeDefersTargets(t *testing.T) {
	m, _ := newTestManager(t, gpu.Size{})
	assert.Nil(t, m.Targets().Depth)
	assert.Equal(t, uint64(0), m.Generation())

	require.NoError(t, m.Resize(gpu.Size{Width: 10, Height: 10}))
	assert.NotNil(t, m.Targets().Depth)
	assert.Equal(t, uint64(1), m.Generation())
}

func TestNewManager_SetupErrors(t *testing.T) {
	t.Run("missing entry point", func(t *testing.T) {
		dir := shaderDir(t, func(name, src string) string {
			return strings.ReplaceAll(src, "fn fragment_IBL", "fn fragment_toon")
		})
		lib, err := shader.LoadDir(dir)
		require.NoError(t, err)

		ctx, _, _ := gputest.NewContext(gpu.Size{Width: 4, Height: 4})
		_, err = NewManager(ctx, WithLibrary(lib))
		assert.ErrorIs(t, err, shader.ErrFunctionNotFound)
	})

	t.Run("pipeline creation fails", func(t *testing.T) {
		ctx, dev, _ := gputest.NewContext(gpu.Size{Width: 4, Height: 4})
		boom := errors.New("boom")
		dev.OnCreateRenderPipeline = func(desc gpu.RenderPipelineDescriptor) error {
			if desc.Label == PipelineWater {
				return boom
			}
			return nil
		}
		_, err := NewManager(ctx)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, dev.LiveTextures())
	})

	t.Run("zero slope scale", func(t *testing.T) {
		ctx, _, _ := gputest.NewContext(gpu.Size{Width: 4, Height: 4})
		_, err := NewManager(ctx, WithShadowBias(ShadowBias{Constant: 1}))
		assert.Error(t, err)
	})
}

func TestManager_ShadingPipeline_Unknown(t *testing.T) {
	m, _ := newTestManager(t, gpu.Size{Width: 4, Height: 4})
	_, err := m.ShadingPipeline("fragment_toon")
	assert.ErrorIs(t, err, ErrUnknownShadingModel)
}

func TestManager_Resize(t *testing.T) {
	m, dev := newTestManager(t, gpu.Size{Width: 100, Height: 100})
	before := m.Targets()
	created := len(dev.Textures())

	require.NoError(t, m.Resize(gpu.Size{Width: 100, Height: 100}))
	assert.Equal(t, before, m.Targets())
	assert.Len(t, dev.Textures(), created)
	assert.Equal(t, uint64(1), m.Generation())

	require.NoError(t, m.Resize(gpu.Size{}))
	assert.Equal(t, before, m.Targets())

	require.NoError(t, m.Resize(gpu.Size{Width: 200, Height: 50}))
	after := m.Targets()
	assert.Equal(t, gpu.Size{Width: 200, Height: 50}, after.Size())
	assert.Equal(t, gpu.Size{Width: 200, Height: 50}, after.Shadow.Size())
	assert.Equal(t, uint64(2), m.Generation())
	for _, tex := range before.all() {
		assert.True(t, tex.(*gputest.Texture).Released(), tex.Label())
	}
	for _, tex := range after.all() {
		assert.False(t, tex.(*gputest.Texture).Released(), tex.Label())
	}
}

func TestManager_Release(t *testing.T) {
	ctx, dev, _ := gputest.NewContext(gpu.Size{Width: 8, Height: 8})
	m, err := NewManager(ctx)
	require.NoError(t, err)
	m.Release()
	assert.Empty(t, dev.LiveTextures())
	assert.Nil(t, m.Pipeline(PipelineShadow))
}

func TestRenderTarget(t *testing.T) {
	m, _ := newTestManager(t, gpu.Size{Width: 64, Height: 64})
	rt, err := m.NewRenderTarget("reflection", gpu.Size{Width: 64, Height: 64})
	require.NoError(t, err)
	defer rt.Release()

	desc := rt.PassDescriptor("reflection", gpu.Color{R: 1, A: 1})
	require.Len(t, desc.ColorAttachments, 3)
	assert.Same(t, rt.Color(), desc.ColorAttachments[0].Texture)
	assert.Equal(t, gpu.LoadOpClear, desc.ColorAttachments[2].LoadOp)
	require.NotNil(t, desc.DepthAttachment)
	assert.Equal(t, float32(1), desc.DepthAttachment.ClearDepth)
	assert.Equal(t, gpu.TextureFormatBGRA8Unorm, rt.Color().Format())

	old := rt.Color().(*gputest.Texture)
	changed, err := rt.Resize(gpu.Size{Width: 64, Height: 64})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = rt.Resize(gpu.Size{Width: 32, Height: 16})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, old.Released())
	assert.Equal(t, gpu.Size{Width: 32, Height: 16}, rt.Size())
}

func TestManager_ApplyPending(t *testing.T) {
	m, _ := newTestManager(t, gpu.Size{Width: 4, Height: 4})

	applied, err := m.ApplyPending()
	require.NoError(t, err)
	assert.False(t, applied)

	oldShadow := m.ShadowPipeline()

	broken, err := shader.LoadDir(shaderDir(t, func(name, src string) string {
		return strings.ReplaceAll(src, "fn composition_frag", "fn composition_fragment")
	}))
	require.NoError(t, err)
	m.queue(broken)
	applied, err = m.ApplyPending()
	assert.ErrorIs(t, err, shader.ErrFunctionNotFound)
	assert.False(t, applied)
	assert.Same(t, oldShadow, m.ShadowPipeline())

	good, err := shader.LoadDir(shaderDir(t, nil))
	require.NoError(t, err)
	m.queue(good)
	applied, err = m.ApplyPending()
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NotSame(t, oldShadow, m.ShadowPipeline())
	assert.Same(t, good, m.Library())
}
