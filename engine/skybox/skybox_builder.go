package skybox

// SkyboxBuilderOption is a functional option for configuring a Skybox during construction.
type SkyboxBuilderOption func(*skybox)

// WithSettings sets the initial sky parameters. The default is MidDay.
//
// Parameters:
//   - s: the sky parameters
//
// Returns:
//   - SkyboxBuilderOption: functional option to set the sky parameters
func WithSettings(s Settings) SkyboxBuilderOption {
	return func(sb *skybox) {
		sb.settings = s
	}
}
