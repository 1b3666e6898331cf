package water

import (
	"image"

	"github.com/Carmen-Shannon/obsidian/engine/node"
)

// BodyBuilderOption is a functional option for configuring a Body during construction.
type BodyBuilderOption func(*body)

// WithNode applies node options (name, position, rotation, scale) to the body's node. The Y
// position is the surface height.
//
// Parameters:
//   - options: the node options
//
// Returns:
//   - BodyBuilderOption: functional option to apply the node options
func WithNode(options ...node.NodeBuilderOption) BodyBuilderOption {
	return func(b *body) {
		b.nodeOptions = append(b.nodeOptions, options...)
	}
}

// WithSize sets the edge length of the square plane. The default is 100.
func WithSize(size float32) BodyBuilderOption {
	return func(b *body) {
		if size > 0 {
			b.size = size
		}
	}
}

// WithTiling sets how often the normal map repeats across the plane. The default is 16.
func WithTiling(tiling float32) BodyBuilderOption {
	return func(b *body) {
		b.tiling = tiling
	}
}

// WithDistortion scales how far ripples displace the reflection lookup. The default is 0.02.
func WithDistortion(distortion float32) BodyBuilderOption {
	return func(b *body) {
		b.distortion = distortion
	}
}

// WithNormalMap sets the ripple normal map. Without one the flat fallback normal is bound and
// the surface is a still mirror.
func WithNormalMap(img *image.RGBA) BodyBuilderOption {
	return func(b *body) {
		b.normalImage = img
	}
}
