package resource

import "github.com/Carmen-Shannon/obsidian/engine/shader"

// ManagerBuilderOption is a functional option for configuring a Manager during construction.
type ManagerBuilderOption func(*manager)

// WithLibrary builds pipelines from lib instead of the embedded shaders.
//
// Parameters:
//   - lib: the shader library
//
// Returns:
//   - ManagerBuilderOption: functional option to set the library
func WithLibrary(lib shader.Library) ManagerBuilderOption {
	return func(m *manager) {
		m.library = lib
	}
}

// WithShadowBias sets the rasterizer depth bias of the shadow pipeline.
//
// Parameters:
//   - bias: the depth bias
//
// Returns:
//   - ManagerBuilderOption: functional option to set the bias
func WithShadowBias(bias ShadowBias) ManagerBuilderOption {
	return func(m *manager) {
		m.bias = bias
	}
}
