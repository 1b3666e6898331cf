package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPanSensitivity sets radians of rotation per pixel of drag.
//
// Parameters:
//   - s: the pan sensitivity
//
// Returns:
//   - CameraControllerOption: functional option to set the pan sensitivity
func WithPanSensitivity(s float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSensitivity = s
	}
}

// WithPinchSensitivity sets the Z distance moved per unit of pinch.
//
// Parameters:
//   - s: the pinch sensitivity
//
// Returns:
//   - CameraControllerOption: functional option to set the pinch sensitivity
func WithPinchSensitivity(s float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.pinchSensitivity = s
	}
}

// WithMoveSpeed sets the distance moved per Move step.
//
// Parameters:
//   - speed: units per step
//
// Returns:
//   - CameraControllerOption: functional option to set the move speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}

// WithVerticalAngle bounds the pitch in radians.
//
// Parameters:
//   - v: the pitch bounds
//
// Returns:
//   - CameraControllerOption: functional option to set the pitch bounds
func WithVerticalAngle(v VerticalAngle) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if v.Min <= v.Max {
			cc.vertical = v
		}
	}
}

// WithSpring sets the angular frequency and damping ratio of the smoothing springs. A damping
// ratio of 1 is critically damped and never overshoots.
//
// Parameters:
//   - frequency: angular frequency; higher is snappier
//   - damping: damping ratio
//
// Returns:
//   - CameraControllerOption: functional option to set the spring parameters
func WithSpring(frequency, damping float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.frequency = frequency
		cc.damping = damping
	}
}
