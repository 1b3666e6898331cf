package light

import "github.com/Carmen-Shannon/obsidian/common"

// LightType identifies the kind of light source. The values match the light type constants
// in the shaders.
type LightType uint32

const (
	// LightTypeUnused marks an empty slot in the GPU light buffer.
	LightTypeUnused LightType = iota

	// LightTypeDirectional is the sun: position is read as the direction toward the light and
	// there is no attenuation. The first directional light casts the scene's shadow.
	LightTypeDirectional

	// LightTypeSpot emits in a cone around ConeDirection from Position.
	LightTypeSpot

	// LightTypePoint emits in all directions from Position and falls off with Attenuation.
	LightTypePoint

	// LightTypeAmbient adds Color * Intensity everywhere.
	LightTypeAmbient
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypeSpot:
		return "spot"
	case LightTypePoint:
		return "point"
	case LightTypeAmbient:
		return "ambient"
	default:
		return "unused"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType       LightType
	position        common.Vec3
	color           common.Vec3
	specularColor   common.Vec3
	intensity       float32
	attenuation     common.Vec3
	coneAngle       float32 // radians
	coneDirection   common.Vec3
	coneAttenuation float32
	enabled         bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are scene-level entities consumed by the composition pass. The scene keeps them in
// insertion order and marshals the enabled ones into the GPU light buffer in that order every
// frame. Type-specific properties (cone parameters for spot lights, attenuation for point and
// spot lights) are ignored by the shader for other types.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of the light. For directional lights this is
	// the direction toward the light.
	//
	// Returns:
	//   - common.Vec3: position as (x, y, z)
	Position() common.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - common.Vec3: color as (r, g, b)
	Color() common.Vec3

	// SpecularColor returns the RGB color of specular highlights.
	//
	// Returns:
	//   - common.Vec3: color as (r, g, b)
	SpecularColor() common.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Attenuation returns the constant, linear and quadratic falloff coefficients.
	//
	// Returns:
	//   - common.Vec3: (constant, linear, quadratic)
	Attenuation() common.Vec3

	// ConeAngle returns the spot cone half-angle in radians.
	//
	// Returns:
	//   - float32: the half-angle
	ConeAngle() float32

	// ConeDirection returns the normalized spot cone axis.
	//
	// Returns:
	//   - common.Vec3: the cone axis
	ConeDirection() common.Vec3

	// ConeAttenuation returns the exponent applied to the angular falloff of a spot light.
	//
	// Returns:
	//   - float32: the falloff exponent
	ConeAttenuation() float32

	// Enabled returns whether this light is written to the GPU light buffer.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetAttenuation sets the falloff coefficients.
	//
	// Parameters:
	//   - constant, linear, quadratic: falloff coefficients
	SetAttenuation(constant, linear, quadratic float32)

	// SetSpotCone sets the cone half-angle in degrees and the angular falloff exponent.
	//
	// Parameters:
	//   - angleDeg: cone half-angle in degrees
	//   - attenuation: angular falloff exponent
	SetSpotCone(angleDeg, attenuation float32)

	// SetConeDirection sets the spot cone axis and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetConeDirection(x, y, z float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type. Unset fields take the values of Default.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := defaultLight()
	l.lightType = lightType
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Default returns a white directional light at the origin with unit intensity and no falloff.
func Default() Light {
	return defaultLight()
}

func defaultLight() *lightImpl {
	return &lightImpl{
		lightType:       LightTypeDirectional,
		color:           common.Vec3{1, 1, 1},
		specularColor:   common.Vec3{0.6, 0.6, 0.6},
		intensity:       1,
		attenuation:     common.Vec3{1, 0, 0},
		coneDirection:   common.Vec3{0, -1, 0},
		coneAttenuation: 1,
		enabled:         true,
	}
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() common.Vec3 {
	return l.position
}

func (l *lightImpl) Color() common.Vec3 {
	return l.color
}

func (l *lightImpl) SpecularColor() common.Vec3 {
	return l.specularColor
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Attenuation() common.Vec3 {
	return l.attenuation
}

func (l *lightImpl) ConeAngle() float32 {
	return l.coneAngle
}

func (l *lightImpl) ConeDirection() common.Vec3 {
	return l.coneDirection
}

func (l *lightImpl) ConeAttenuation() float32 {
	return l.coneAttenuation
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = common.Vec3{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = common.Vec3{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetAttenuation(constant, linear, quadratic float32) {
	l.attenuation = common.Vec3{constant, linear, quadratic}
}

func (l *lightImpl) SetSpotCone(angleDeg, attenuation float32) {
	l.coneAngle = common.Radians(angleDeg)
	l.coneAttenuation = attenuation
}

func (l *lightImpl) SetConeDirection(x, y, z float32) {
	l.coneDirection = common.Normalize(common.Vec3{x, y, z})
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// FindDirectional returns the first enabled directional light, or nil.
//
// Parameters:
//   - lights: lights in scene order
//
// Returns:
//   - Light: the shadow casting light, or nil if there is none
func FindDirectional(lights []Light) Light {
	for _, l := range lights {
		if l.Enabled() && l.Type() == LightTypeDirectional {
			return l
		}
	}
	return nil
}
