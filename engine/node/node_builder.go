package node

import "github.com/Carmen-Shannon/obsidian/common"

// NodeBuilderOption is a functional option for configuring a Node during construction.
type NodeBuilderOption func(*node)

// WithName sets the node's display name.
//
// Parameters:
//   - name: the display name
//
// Returns:
//   - NodeBuilderOption: functional option to set the name
func WithName(name string) NodeBuilderOption {
	return func(n *node) {
		n.name = name
	}
}

// WithPosition sets the initial local translation.
//
// Parameters:
//   - p: the position relative to the parent
//
// Returns:
//   - NodeBuilderOption: functional option to set the position
func WithPosition(p common.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.position = p
	}
}

// WithRotation sets the initial local Euler rotation in radians.
//
// Parameters:
//   - r: rotation around X, Y and Z
//
// Returns:
//   - NodeBuilderOption: functional option to set the rotation
func WithRotation(r common.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.rotation = r
	}
}

// WithScale sets the initial local scale.
//
// Parameters:
//   - s: per-axis scale
//
// Returns:
//   - NodeBuilderOption: functional option to set the scale
func WithScale(s common.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.scale = s
	}
}

// WithEnabled sets whether the node participates in rendering.
//
// Parameters:
//   - enabled: false to hide the node from every pass
//
// Returns:
//   - NodeBuilderOption: functional option to set the enabled state
func WithEnabled(enabled bool) NodeBuilderOption {
	return func(n *node) {
		n.enabled.Store(enabled)
	}
}
