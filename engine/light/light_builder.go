package light

import "github.com/Carmen-Shannon/obsidian/common"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
// For a directional light the position is the direction toward the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = common.Vec3{x, y, z}
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = common.Vec3{r, g, b}
	}
}

// WithSpecularColor is an option builder that sets the specular highlight color.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the specular color option to a lightImpl
func WithSpecularColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.specularColor = common.Vec3{r, g, b}
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithAttenuation is an option builder that sets the constant, linear and quadratic falloff.
//
// Parameters:
//   - constant: the constant term
//   - linear: the linear term
//   - quadratic: the quadratic term
//
// Returns:
//   - LightBuilderOption: a function that applies the attenuation option to a lightImpl
func WithAttenuation(constant, linear, quadratic float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.attenuation = common.Vec3{constant, linear, quadratic}
	}
}

// WithSpotCone is an option builder that sets the cone half-angle in degrees, the cone axis
// and the angular falloff exponent of a spot light.
//
// Parameters:
//   - angleDeg: cone half-angle in degrees
//   - direction: cone axis (will be normalized)
//   - attenuation: angular falloff exponent
//
// Returns:
//   - LightBuilderOption: a function that applies the cone option to a lightImpl
func WithSpotCone(angleDeg float32, direction common.Vec3, attenuation float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.coneAngle = common.Radians(angleDeg)
		l.coneDirection = common.Normalize(direction)
		l.coneAttenuation = attenuation
	}
}

// WithEnabled is an option builder that sets whether the light is initially enabled.
//
// Parameters:
//   - enabled: true to enable the light
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
