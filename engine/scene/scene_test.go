package scene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/camera"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/gpu/gputest"
	"github.com/Carmen-Shannon/obsidian/engine/light"
	"github.com/Carmen-Shannon/obsidian/engine/node"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
	"github.com/Carmen-Shannon/obsidian/engine/water"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderable struct {
	node.Node
	calls int
}

func newStub(name string) *stubRenderable {
	s := &stubRenderable{Node: node.NewNode(node.WithName(name))}
	s.Bind(s)
	return s
}

func (s *stubRenderable) Render(enc gpu.RenderPassEncoder, frame *render.Frame) error {
	s.calls++
	return nil
}

func names(list []render.RenderableNode) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.Name()
	}
	return out
}

func TestNewScene_Defaults(t *testing.T) {
	s := NewScene()
	assert.True(t, s.Active())
	assert.Equal(t, "scene", s.Name())
	assert.NotNil(t, s.Camera())
	assert.NotNil(t, s.ReflectionCamera())
	assert.Nil(t, s.Skybox())
	assert.Empty(t, s.Renderables())
	assert.Equal(t, light.DefaultShadowConfig(), s.ShadowConfig())

	s2 := NewScene(WithName("lake"), WithActive(false))
	assert.Equal(t, "lake", s2.Name())
	assert.False(t, s2.Active())
}

func TestLightBuffer_NoLights(t *testing.T) {
	s := NewScene()
	buf, count := s.LightBuffer()
	assert.Zero(t, count)
	assert.NotEmpty(t, buf)
	assert.Zero(t, s.FragmentUniforms().LightCount)
	assert.Nil(t, s.ShadowLight())
	assert.Equal(t, common.Identity(), s.Uniforms().Shadow)
}

func TestLights_OrderAndCount(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional, light.WithPosition(0, 200, -150))
	s := NewScene(WithAmbient(common.Vec3{1, 1, 1}, 0.2), WithLights(sun))
	s.AddLight(light.NewLight(light.LightTypePoint))
	s.Update(0)

	lights := s.Lights()
	require.Len(t, lights, 3)
	assert.Equal(t, light.LightTypeAmbient, lights[0].Type())
	assert.Equal(t, sun, lights[1])
	assert.Equal(t, uint32(3), s.FragmentUniforms().LightCount)
	assert.Equal(t, sun, s.ShadowLight())
	assert.Equal(t, light.ShadowMatrix(sun, s.ShadowConfig()), s.Uniforms().Shadow)
}

func TestRenderables_InsertionOrder(t *testing.T) {
	s := NewScene()
	a, b, c := newStub("a"), newStub("b"), newStub("c")
	require.NoError(t, s.AddRenderable(a, nil))
	require.NoError(t, s.AddRenderable(b, a))
	require.NoError(t, s.AddRenderable(c, nil))
	require.NoError(t, s.AddRenderable(a, nil))

	assert.Equal(t, []string{"a", "b", "c"}, names(s.Renderables()))
}

func TestAddNode_ForeignParent(t *testing.T) {
	s := NewScene()
	stray := node.NewNode(node.WithName("stray"))
	err := s.AddNode(newStub("a"), stray)
	assert.ErrorIs(t, err, ErrForeignNode)

	parent := newStub("parent")
	require.NoError(t, s.AddRenderable(parent, nil))
	assert.ErrorIs(t, s.AddNode(s.Root(), parent), node.ErrCycle)
}

func TestRemoveNode_Subtree(t *testing.T) {
	s := NewScene()
	group := node.NewNode(node.WithName("group"))
	require.NoError(t, s.AddNode(group, nil))
	a, b, c := newStub("a"), newStub("b"), newStub("c")
	require.NoError(t, s.AddRenderable(a, group))
	require.NoError(t, s.AddRenderable(b, a))
	require.NoError(t, s.AddRenderable(c, nil))

	assert.True(t, s.RemoveNode(group))
	assert.Equal(t, []string{"c"}, names(s.Renderables()))
	assert.False(t, s.RemoveNode(group))
	assert.False(t, s.RemoveNode(s.Root()))
}

func TestRenderables_DetachedOutsideScene(t *testing.T) {
	s := NewScene()
	parent := newStub("parent")
	child := newStub("child")
	require.NoError(t, s.AddRenderable(parent, nil))
	require.NoError(t, s.AddRenderable(child, parent))

	parent.RemoveChild(child)
	assert.Equal(t, []string{"parent"}, names(s.Renderables()))
}

func TestUpdate_RunsHookBeforeUniforms(t *testing.T) {
	var seen float32
	cam := camera.NewCamera(camera.WithNode(node.WithPosition(common.Vec3{0, 0, 30})))
	s := NewScene(WithCamera(cam), WithUpdateFunc(func(s Scene, dt float32) {
		seen = dt
		s.Camera().SetPosition(common.Vec3{1, 2, 3})
	}))

	s.Update(0.5)
	assert.Equal(t, float32(0.5), seen)
	assert.Equal(t, float32(0.5), s.Time())
	assert.Equal(t, float32(0.5), s.FrameTime())
	assert.InDelta(t, 2, s.FPS(), 1e-6)

	u := s.Uniforms()
	assert.Equal(t, common.Vec3{1, 2, 3}, u.CameraPosition)
	assert.Equal(t, cam.View(), u.View)
	assert.Equal(t, render.MainClipPlane, u.ClipPlane)
	assert.Equal(t, float32(0.5), u.Time)

	s.Update(0.25)
	assert.Equal(t, float32(0.75), s.Time())
}

func TestUpdate_ResolvesWorldMatrices(t *testing.T) {
	s := NewScene()
	parent := node.NewNode(node.WithPosition(common.Vec3{0, 5, 0}))
	child := newStub("child")
	require.NoError(t, s.AddNode(parent, nil))
	require.NoError(t, s.AddRenderable(child, parent))
	s.Update(0.016)

	assert.Equal(t, float32(5), child.WorldMatrix()[13])
}

func TestReflectionUniforms(t *testing.T) {
	cam := camera.NewCamera(
		camera.WithFOV(60),
		camera.WithNode(node.WithPosition(common.Vec3{1, 4, 2}), node.WithRotation(common.Vec3{0.3, 0.5, 0})),
	)
	s := NewScene(WithCamera(cam))
	s.Update(0)

	u := s.ReflectionUniforms(2)
	assert.Equal(t, common.Vec3{1, -4, 2}, u.CameraPosition)
	assert.Equal(t, render.ReflectionClipPlane(2), u.ClipPlane)
	assert.Equal(t, s.ReflectionCamera().View(), u.View)
	assert.Equal(t, cam.Projection(), u.Projection)
	assert.Equal(t, common.Vec3{-0.3, 0.5, 0}, s.ReflectionCamera().Rotation())

	// The main uniforms and camera are untouched.
	assert.Equal(t, common.Vec3{1, 4, 2}, s.Uniforms().CameraPosition)
	assert.Equal(t, common.Vec3{1, 4, 2}, cam.Position())
}

func TestAddWater(t *testing.T) {
	ctx, _, _ := gputest.NewContext(gpu.Size{Width: 8, Height: 8})
	res, err := resource.NewManager(ctx)
	require.NoError(t, err)
	t.Cleanup(res.Release)

	body, err := water.NewBody(ctx, res, water.WithNode(node.WithPosition(common.Vec3{0, -3, 0})))
	require.NoError(t, err)
	t.Cleanup(body.Release)

	s := NewScene()
	require.NoError(t, s.AddWater(body))
	assert.Error(t, s.AddWater(body))
	require.Len(t, s.Waters(), 1)
	assert.Equal(t, s.Root(), body.Parent())

	assert.True(t, s.RemoveNode(body))
	assert.Empty(t, s.Waters())
}

func TestLightBuffer_MatchesMarshal(t *testing.T) {
	l := light.NewLight(light.LightTypePoint, light.WithPosition(1, 2, 3), light.WithIntensity(4))
	s := NewScene(WithLights(l))
	buf, count := s.LightBuffer()
	want, wantCount := light.MarshalLights([]light.Light{l})
	assert.Equal(t, want, buf)
	assert.Equal(t, wantCount, count)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
}
