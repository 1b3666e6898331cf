package camera

// VerticalAngle bounds the pitch (rotation about X) a controller may reach, in radians.
type VerticalAngle struct {
	Min float32
	Max float32
}

// CameraController turns input deltas into camera motion. Input only moves the controller's
// goal; Update eases the camera toward it with critically damped springs, so bursts of input
// never make the camera jump.
type CameraController interface {
	// Camera returns the controlled camera.
	//
	// Returns:
	//   - Camera: the camera written by Update
	Camera() Camera

	// Pan rotates the goal by a drag delta in pixels. Horizontal drags turn around Y, vertical
	// drags pitch around X within the vertical angle bounds.
	//
	// Parameters:
	//   - dx: horizontal drag distance
	//   - dy: vertical drag distance
	Pan(dx, dy float32)

	// Pinch moves the goal along Z by a pinch or scroll delta.
	//
	// Parameters:
	//   - delta: pinch amount; positive moves the scene away
	Pinch(delta float32)

	// Move translates the goal by a key-driven direction scaled by the move speed.
	//
	// Parameters:
	//   - dx, dy, dz: direction components, usually -1, 0 or 1
	Move(dx, dy, dz float32)

	// Update advances the springs by deltaTime and writes the camera position and rotation.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous update
	Update(deltaTime float32)

	// Snap moves the camera to the goal immediately and stops all motion.
	Snap()

	// Settled reports whether the camera has reached the goal.
	//
	// Returns:
	//   - bool: true if no axis is still moving
	Settled() bool

	// PanSensitivity returns radians per pixel of drag.
	//
	// Returns:
	//   - float32: the pan sensitivity
	PanSensitivity() float32

	// PinchSensitivity returns the Z distance per unit of pinch.
	//
	// Returns:
	//   - float32: the pinch sensitivity
	PinchSensitivity() float32

	// VerticalAngle returns the pitch bounds.
	//
	// Returns:
	//   - VerticalAngle: the pitch bounds
	VerticalAngle() VerticalAngle
}
