package light

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/obsidian/common"
)

// PointLightPalette is the set of colors CreatePointLights cycles through.
var PointLightPalette = []common.Vec3{
	{1, 0, 0},
	{1, 1, 0},
	{1, 1, 1},
	{0, 1, 0},
	{0, 1, 1},
	{0, 0, 1},
	{0, 1, 1},
	{1, 0, 1},
}

// CreatePointLights scatters count point lights uniformly inside the box [min, max] with
// colors drawn from PointLightPalette, intensity 5 and attenuation (0.4, 0.4, 0.4).
//
// Parameters:
//   - count: number of lights to create
//   - min: lower corner of the box
//   - max: upper corner of the box
//   - rng: random source; pass a seeded generator for a reproducible layout
//
// Returns:
//   - []Light: the created lights
func CreatePointLights(count int, min, max common.Vec3, rng *rand.Rand) []Light {
	lights := make([]Light, 0, count)
	for range count {
		var pos common.Vec3
		for i := range pos {
			pos[i] = min[i] + rng.Float32()*(max[i]-min[i])
		}
		c := PointLightPalette[rng.IntN(len(PointLightPalette))]
		lights = append(lights, NewLight(LightTypePoint,
			WithPosition(pos[0], pos[1], pos[2]),
			WithColor(c[0], c[1], c[2]),
			WithIntensity(5),
			WithAttenuation(0.4, 0.4, 0.4),
		))
	}
	return lights
}
