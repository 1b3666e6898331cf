package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/charmbracelet/harmonica"
)

// settleEpsilon is how close an axis must be to its goal, at near-zero speed, to count as settled.
const settleEpsilon = 1e-4

// axis is one spring-driven degree of freedom.
type axis struct {
	pos, vel, goal float64
}

func (a *axis) step(s harmonica.Spring) {
	a.pos, a.vel = s.Update(a.pos, a.vel, a.goal)
}

func (a *axis) snap() {
	a.pos, a.vel = a.goal, 0
}

func (a *axis) settled() bool {
	return math.Abs(a.pos-a.goal) < settleEpsilon && math.Abs(a.vel) < settleEpsilon
}

// cameraControllerImpl is the implementation of CameraController. Axes 0..2 are position,
// 3..5 are rotation.
type cameraControllerImpl struct {
	mu *sync.Mutex

	camera Camera
	axes   [6]axis

	panSensitivity   float32
	pinchSensitivity float32
	moveSpeed        float32
	vertical         VerticalAngle

	frequency float64
	damping   float64
	spring    harmonica.Spring
	springDT  float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController attaches a controller to cam, starting from its current transform.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the controller
func NewCameraController(cam Camera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:               &sync.Mutex{},
		camera:           cam,
		panSensitivity:   0.01,
		pinchSensitivity: 0.2,
		moveSpeed:        0.5,
		vertical:         VerticalAngle{Min: -math.Pi/2 + 0.1, Max: math.Pi/2 - 0.1},
		frequency:        8,
		damping:          1,
	}
	for _, option := range options {
		option(cc)
	}

	p, r := cam.Position(), cam.Rotation()
	for i := 0; i < 3; i++ {
		cc.axes[i] = axis{pos: float64(p[i]), goal: float64(p[i])}
		cc.axes[i+3] = axis{pos: float64(r[i]), goal: float64(r[i])}
	}
	return cc
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.axes[4].goal += float64(dx * cc.panSensitivity)
	pitch := float32(cc.axes[3].goal) + dy*cc.panSensitivity
	cc.axes[3].goal = float64(common.Clamp(pitch, cc.vertical.Min, cc.vertical.Max))
}

func (cc *cameraControllerImpl) Pinch(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.axes[2].goal += float64(delta * cc.pinchSensitivity)
}

func (cc *cameraControllerImpl) Move(dx, dy, dz float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.axes[0].goal += float64(dx * cc.moveSpeed)
	cc.axes[1].goal += float64(dy * cc.moveSpeed)
	cc.axes[2].goal += float64(dz * cc.moveSpeed)
}

func (cc *cameraControllerImpl) Update(deltaTime float32) {
	if deltaTime <= 0 {
		return
	}
	cc.mu.Lock()
	if cc.springDT != deltaTime {
		cc.spring = harmonica.NewSpring(float64(deltaTime), cc.frequency, cc.damping)
		cc.springDT = deltaTime
	}
	for i := range cc.axes {
		cc.axes[i].step(cc.spring)
	}
	p, r := cc.vectors()
	cc.mu.Unlock()

	cc.camera.SetPosition(p)
	cc.camera.SetRotation(r)
}

func (cc *cameraControllerImpl) Snap() {
	cc.mu.Lock()
	for i := range cc.axes {
		cc.axes[i].snap()
	}
	p, r := cc.vectors()
	cc.mu.Unlock()

	cc.camera.SetPosition(p)
	cc.camera.SetRotation(r)
}

func (cc *cameraControllerImpl) Settled() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	for i := range cc.axes {
		if !cc.axes[i].settled() {
			return false
		}
	}
	return true
}

func (cc *cameraControllerImpl) PanSensitivity() float32 {
	return cc.panSensitivity
}

func (cc *cameraControllerImpl) PinchSensitivity() float32 {
	return cc.pinchSensitivity
}

func (cc *cameraControllerImpl) VerticalAngle() VerticalAngle {
	return cc.vertical
}

// vectors returns the current spring positions. Caller must hold the mutex.
func (cc *cameraControllerImpl) vectors() (position, rotation common.Vec3) {
	for i := 0; i < 3; i++ {
		position[i] = float32(cc.axes[i].pos)
		rotation[i] = float32(cc.axes[i+3].pos)
	}
	return position, rotation
}
