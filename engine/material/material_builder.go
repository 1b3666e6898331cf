package material

import "image"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithConstants is an option builder that sets the material constant block.
//
// Parameters:
//   - c: the constants
//
// Returns:
//   - MaterialBuilderOption: a function that applies the constants option to a material
func WithConstants(c Constants) MaterialBuilderOption {
	return func(m *material) {
		m.constants = c
	}
}

// WithTexture is an option builder that uploads img into slot. A nil image leaves the fallback.
//
// Parameters:
//   - slot: the texture slot
//   - img: the decoded image
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(slot TextureSlot, img *image.RGBA) MaterialBuilderOption {
	return func(m *material) {
		if slot >= 0 && slot < TextureSlotCount {
			m.images[slot] = img
		}
	}
}
