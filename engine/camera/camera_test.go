package camera

import (
	"testing"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCamera_Defaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, "camera", c.Name())
	assert.Equal(t, DefaultFOV, c.FOV())
	assert.Equal(t, DefaultNear, c.Near())
	assert.Equal(t, DefaultFar, c.Far())
	assert.Equal(t, float32(1), c.Aspect())
}

func TestCamera_View(t *testing.T) {
	c := NewCamera(WithNode(node.WithPosition(common.Vec3{0, 0, 30}), node.WithRotation(common.Vec3{0.2, 0.4, 0})))
	want := common.Translation(common.Vec3{0, 0, 30}).Mul(common.RotationEuler(common.Vec3{0.2, 0.4, 0}))
	assert.True(t, common.ApproxEqual(want, c.View(), 1e-6))

	// the origin lands 30 units in front of the eye
	c.SetRotation(common.Vec3{})
	assert.Equal(t, common.Vec3{0, 0, 30}, c.View().TransformPoint(common.Vec3{}))
}

func TestCamera_Projection(t *testing.T) {
	c := NewCamera(WithFOV(90), WithAspect(2), WithClip(1, 11))
	p := c.Projection()
	assert.InDelta(t, 1, p[5], 1e-6)
	assert.InDelta(t, 0.5, p[0], 1e-6)

	near := p.MulVec4(common.Vec4{0, 0, 1, 1})
	far := p.MulVec4(common.Vec4{0, 0, 11, 1})
	assert.InDelta(t, 0, near[2]/near[3], 1e-6)
	assert.InDelta(t, 1, far[2]/far[3], 1e-6)

	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
	c.SetAspect(1.5)
	assert.Equal(t, float32(1.5), c.Aspect())
}

func TestCamera_ReflectFrom(t *testing.T) {
	primary := NewCamera(WithFOV(60), WithAspect(1.6), WithClip(0.5, 500),
		WithNode(node.WithPosition(common.Vec3{1, 2, 3}), node.WithRotation(common.Vec3{0.3, 0.5, 0.7})))
	reflection := NewCamera()

	reflection.ReflectFrom(primary)
	assert.Equal(t, common.Vec3{1, -2, 3}, reflection.Position())
	assert.Equal(t, common.Vec3{-0.3, 0.5, 0.7}, reflection.Rotation())
	assert.Equal(t, float32(60), reflection.FOV())
	assert.Equal(t, float32(1.6), reflection.Aspect())
	assert.Equal(t, float32(0.5), reflection.Near())
	assert.Equal(t, float32(500), reflection.Far())

	assert.Equal(t, common.Vec3{1, 2, 3}, primary.Position())
	assert.Equal(t, common.Vec3{0.3, 0.5, 0.7}, primary.Rotation())

	// reflecting twice from the same primary is stable
	reflection.ReflectFrom(primary)
	assert.Equal(t, common.Vec3{1, -2, 3}, reflection.Position())
}

func TestCameraController_Converges(t *testing.T) {
	cam := NewCamera(WithNode(node.WithPosition(common.Vec3{0, 0, 30})))
	cc := NewCameraController(cam)
	assert.True(t, cc.Settled())
	assert.Equal(t, float32(0.01), cc.PanSensitivity())
	assert.Equal(t, float32(0.2), cc.PinchSensitivity())

	cc.Pan(50, 0)
	cc.Pinch(10)
	assert.False(t, cc.Settled())

	cc.Update(1.0 / 60)
	first := cam.Rotation()[1]
	assert.Greater(t, first, float32(0))
	assert.Less(t, first, float32(0.5))

	for i := 0; i < 600; i++ {
		cc.Update(1.0 / 60)
	}
	require.True(t, cc.Settled())
	assert.InDelta(t, 0.5, cam.Rotation()[1], 1e-3)
	assert.InDelta(t, 32, cam.Position()[2], 1e-3)
}

func TestCameraController_ClampsPitch(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController(cam, WithVerticalAngle(VerticalAngle{Min: -0.5, Max: 0.5}))
	cc.Pan(0, 1000)
	cc.Snap()
	assert.Equal(t, float32(0.5), cam.Rotation()[0])

	cc.Pan(0, -5000)
	cc.Snap()
	assert.Equal(t, float32(-0.5), cam.Rotation()[0])
	assert.True(t, cc.Settled())
}

func TestCameraController_Move(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController(cam, WithMoveSpeed(2))
	cc.Move(1, 0, -1)
	cc.Snap()
	assert.Equal(t, common.Vec3{2, 0, -2}, cam.Position())
	assert.Same(t, cam, cc.Camera())

	cc.Update(0)
	assert.Equal(t, common.Vec3{2, 0, -2}, cam.Position())
}
