package light

import (
	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/chewxy/math32"
)

// ShadowConfig frames the orthographic projection used to render the shadow map.
type ShadowConfig struct {
	// HalfExtent is the half width and half height of the projection in world units.
	HalfExtent float32
	Near       float32
	Far        float32

	// Distance places the light eye along its direction, measured from the origin.
	Distance float32
}

// DefaultShadowConfig frames a 30 x 30 area around the origin with the eye 15 units out.
func DefaultShadowConfig() ShadowConfig {
	return ShadowConfig{
		HalfExtent: 15,
		Near:       0.1,
		Far:        30,
		Distance:   15,
	}
}

// ShadowMatrix returns ortho * lookAt for a directional light: the eye sits Distance units
// along the light direction and looks at the origin.
//
// Parameters:
//   - l: the directional light; its position is the direction toward the light
//   - cfg: the shadow projection settings
//
// Returns:
//   - common.Mat4: the world to shadow clip space matrix
func ShadowMatrix(l Light, cfg ShadowConfig) common.Mat4 {
	dir := common.Normalize(l.Position())
	if common.Length(dir) == 0 {
		dir = common.Vec3{0, 1, 0}
	}
	eye := common.Scale(dir, cfg.Distance)

	up := common.Vec3{0, 1, 0}
	if math32.Abs(common.Dot(dir, up)) > 0.99 {
		up = common.Vec3{0, 0, 1}
	}

	view := common.LookAt(eye, common.Vec3{}, up)
	h := cfg.HalfExtent
	proj := common.Ortho(-h, h, -h, h, cfg.Near, cfg.Far)
	return proj.Mul(view)
}
