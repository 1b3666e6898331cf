package node

import "github.com/Carmen-Shannon/obsidian/common"

// Transform is a detached position/rotation/scale triple. It is used where a full Node would be
// too heavy, such as the per-instance slots of an instanced model.
type Transform struct {
	Position common.Vec3
	Rotation common.Vec3
	Scale    common.Vec3
}

// NewTransform returns the identity transform (unit scale).
func NewTransform() Transform {
	return Transform{Scale: common.Vec3{1, 1, 1}}
}

// Matrix returns translation * rotation * scale.
func (t Transform) Matrix() common.Mat4 {
	return common.TRS(t.Position, t.Rotation, t.Scale)
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of Matrix.
func (t Transform) NormalMatrix() common.Mat3 {
	return common.NormalMatrix(t.Matrix())
}
