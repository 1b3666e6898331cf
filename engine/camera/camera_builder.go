package camera

import "github.com/Carmen-Shannon/obsidian/engine/node"

// CameraBuilderOption is a functional option for configuring a Camera during construction.
type CameraBuilderOption func(*cameraImpl)

// WithFOV sets the vertical field of view in degrees.
//
// Parameters:
//   - degrees: field of view
//
// Returns:
//   - CameraBuilderOption: functional option to set the field of view
func WithFOV(degrees float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = degrees
	}
}

// WithAspect sets the initial aspect ratio.
//
// Parameters:
//   - aspect: width / height
//
// Returns:
//   - CameraBuilderOption: functional option to set the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClip sets the near and far clipping planes.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the clip planes
func WithClip(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithNode applies node options such as position and rotation to the camera node.
//
// Parameters:
//   - options: the node options
//
// Returns:
//   - CameraBuilderOption: functional option to apply the node options
func WithNode(options ...node.NodeBuilderOption) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.nodeOptions = append(c.nodeOptions, options...)
	}
}
