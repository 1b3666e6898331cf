package skybox

import "github.com/Carmen-Shannon/obsidian/common"

// SettingsSize is the byte size of the WGSL SkyUniforms struct.
const SettingsSize = 16

// Settings drive the procedural sky bound at @group(1) @binding(0) of the skybox pipeline.
type Settings struct {
	Turbidity                 float32
	SunElevation              float32
	UpperAtmosphereScattering float32
	GroundAlbedo              float32
}

// Sky presets.
var (
	MidDay  = Settings{Turbidity: 0.28, SunElevation: 0.6, UpperAtmosphereScattering: 0.1, GroundAlbedo: 4}
	Sunset  = Settings{Turbidity: 0.8, SunElevation: 0.45, UpperAtmosphereScattering: 0.4, GroundAlbedo: 0.8}
	Morning = Settings{Turbidity: 0.7, SunElevation: 0.1, UpperAtmosphereScattering: 0.2, GroundAlbedo: 2}
)

// Marshal encodes s in the WGSL uniform layout.
func (s Settings) Marshal() []byte {
	return common.AppendFloats(make([]byte, 0, SettingsSize), s.Turbidity, s.SunElevation, s.UpperAtmosphereScattering, s.GroundAlbedo)
}
