package engine

import (
	"context"
	"testing"
	"time"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/asset"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/gpu/gputest"
	"github.com/Carmen-Shannon/obsidian/engine/light"
	"github.com/Carmen-Shannon/obsidian/engine/model"
	"github.com/Carmen-Shannon/obsidian/engine/renderer"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
	"github.com/Carmen-Shannon/obsidian/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (Engine, scene.Scene, *gputest.Surface) {
	t.Helper()
	ctx, _, surf := gputest.NewContext(gpu.Size{Width: 8, Height: 8})
	res, err := resource.NewManager(ctx)
	require.NoError(t, err)
	t.Cleanup(res.Release)

	sc := scene.NewScene(scene.WithLights(light.NewLight(light.LightTypeDirectional, light.WithPosition(0, 1, -1))))
	m, err := model.NewModel(ctx, res, asset.NewPrimitiveLoader(), model.WithAsset("cube"))
	require.NoError(t, err)
	t.Cleanup(m.Release)
	require.NoError(t, sc.AddModel(m, nil))

	r, err := renderer.NewRenderer(ctx, res, renderer.WithScene(sc))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	e, err := NewEngine(r, options...)
	require.NoError(t, err)
	return e, sc, surf
}

func TestNewEngine_RequiresRenderer(t *testing.T) {
	_, err := NewEngine(nil)
	assert.Error(t, err)
}

func TestStep_FixedDeltaTime(t *testing.T) {
	var ticks []float32
	e, sc, surf := newTestEngine(t, WithFrameRate(50), WithTickCallback(func(dt float32) {
		ticks = append(ticks, dt)
	}))

	require.NoError(t, e.Step())
	require.NoError(t, e.Step())

	assert.Equal(t, []float32{0.02, 0.02}, ticks)
	assert.InDelta(t, 0.04, sc.Time(), 1e-6)
	assert.Equal(t, 2, surf.Presented())
	assert.Equal(t, uint64(2), e.Frames())
}

func TestStep_RecoversPanic(t *testing.T) {
	e, _, surf := newTestEngine(t)
	e.SetTickCallback(func(float32) { panic("boom") })

	err := e.Step()
	require.ErrorIs(t, err, ErrFramePanic)
	assert.Zero(t, surf.Presented())

	e.SetTickCallback(nil)
	require.NoError(t, e.Step())
	assert.Equal(t, 1, surf.Presented())
}

func TestStep_RenderErrorIsNotFatal(t *testing.T) {
	e, _, surf := newTestEngine(t)
	surf.FailAcquire(assert.AnError)
	require.NoError(t, e.Step())
	assert.Zero(t, surf.Presented())
	assert.Equal(t, uint64(1), e.Frames())
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frames := 0
	e, _, surf := newTestEngine(t, WithFrameRate(500))
	e.SetTickCallback(func(float32) {
		frames++
		if frames == 3 {
			cancel()
		}
	})

	require.NoError(t, e.Run(ctx))
	assert.GreaterOrEqual(t, surf.Presented(), 3)
}

func TestRun_StopsAfterPanicLimit(t *testing.T) {
	calls := 0
	e, _, surf := newTestEngine(t, WithFrameRate(500), WithPanicLimit(4), WithTickCallback(func(float32) {
		calls++
		panic("bad frame")
	}))
	err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrPanicLimit)
	assert.ErrorIs(t, err, ErrFramePanic)
	assert.Equal(t, 4, calls)
	assert.Zero(t, surf.Presented())
}

func TestRun_ContinuesAfterPanic(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frames := 0
	e, _, surf := newTestEngine(t, WithFrameRate(500), WithPanicLimit(2))
	e.SetTickCallback(func(float32) {
		frames++
		switch {
		case frames%2 == 1:
			panic("every other frame")
		case frames >= 6:
			cancel()
		}
	})

	require.NoError(t, e.Run(ctx))
	assert.GreaterOrEqual(t, frames, 6)
	assert.GreaterOrEqual(t, surf.Presented(), 3)
}

func TestRun_Quit(t *testing.T) {
	e, _, _ := newTestEngine(t, WithFrameRate(500))
	e.SetTickCallback(func(float32) { e.Quit() })
	require.NoError(t, e.Run(context.Background()))
	e.Quit()
}

func TestResize_ForwardsToRenderer(t *testing.T) {
	e, sc, _ := newTestEngine(t)
	e.Resize(gpu.Size{Width: 40, Height: 20})
	assert.Equal(t, gpu.Size{Width: 40, Height: 20}, e.Renderer().Resources().Targets().Size())
	assert.Equal(t, float32(2), sc.Camera().Aspect())
	sc.Camera().SetPosition(common.Vec3{0, 0, 5})
	require.NoError(t, e.Step())
}

func TestSetFrameRate_Default(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetFrameRate(0)
	assert.Equal(t, float64(60), e.FrameRate())
	e.SetFrameRate(144)
	assert.Equal(t, float64(144), e.FrameRate())
}
