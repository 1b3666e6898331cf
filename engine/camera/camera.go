package camera

import (
	"sync"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/node"
)

// Defaults shared by every new camera.
const (
	DefaultFOV  float32 = 100
	DefaultNear float32 = 0.1
	DefaultFar  float32 = 1000
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	node.Node

	mu *sync.Mutex

	fov    float32
	aspect float32
	near   float32
	far    float32

	nodeOptions []node.NodeBuilderOption
}

// Camera is a scene node that supplies the view and projection matrices of a pass.
//
// The view matrix is translation(position) * rotation(euler): the position moves the world
// relative to the eye rather than placing the eye in the world, so a camera at (0, 0, 30)
// looks at geometry 30 units in front of it along +Z.
type Camera interface {
	node.Node

	// FOV returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	FOV() float32

	// SetFOV sets the vertical field of view in degrees.
	//
	// Parameters:
	//   - degrees: field of view
	SetFOV(degrees float32)

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// SetClip sets the near and far clipping planes.
	//
	// Parameters:
	//   - near: near plane distance
	//   - far: far plane distance
	SetClip(near, far float32)

	// View returns translation(position) * rotation(euler).
	//
	// Returns:
	//   - common.Mat4: the view matrix
	View() common.Mat4

	// Projection returns the left-handed perspective projection with depth in [0, 1].
	//
	// Returns:
	//   - common.Mat4: the projection matrix
	Projection() common.Mat4

	// ReflectFrom copies the lens and transform of primary mirrored across the y = 0 plane:
	// position (x, -y, z) and rotation (-rx, ry, rz). primary is not modified.
	//
	// Parameters:
	//   - primary: the camera to mirror
	ReflectFrom(primary Camera)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with a 100 degree field of view, clip planes 0.1 and 1000 and a
// square aspect ratio.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		fov:    DefaultFOV,
		aspect: 1,
		near:   DefaultNear,
		far:    DefaultFar,
	}
	for _, opt := range options {
		opt(c)
	}
	c.Node = node.NewNode(c.nodeOptions...)
	c.Bind(c)
	if c.Name() == "" {
		c.SetName("camera")
	}
	return c
}

func (c *cameraImpl) FOV() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFOV(degrees float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = degrees
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetClip(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
}

func (c *cameraImpl) View() common.Mat4 {
	return common.Translation(c.Position()).Mul(common.RotationEuler(c.Rotation()))
}

func (c *cameraImpl) Projection() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.Perspective(common.Radians(c.fov), c.aspect, c.near, c.far)
}

func (c *cameraImpl) ReflectFrom(primary Camera) {
	p := primary.Position()
	r := primary.Rotation()
	fov, aspect, near, far := primary.FOV(), primary.Aspect(), primary.Near(), primary.Far()

	c.mu.Lock()
	c.fov, c.aspect, c.near, c.far = fov, aspect, near, far
	c.mu.Unlock()

	c.SetPosition(common.Vec3{p[0], -p[1], p[2]})
	c.SetRotation(common.Vec3{-r[0], r[1], r[2]})
}
