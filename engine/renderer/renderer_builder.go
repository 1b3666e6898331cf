package renderer

import (
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/scene"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithScene sets the scene drawn by RenderFrame.
//
// Parameters:
//   - s: the scene to draw
//
// Returns:
//   - RendererBuilderOption: a function that applies the scene option to a renderer
func WithScene(s scene.Scene) RendererBuilderOption {
	return func(r *renderer) {
		r.scene = s
	}
}

// WithComposition toggles the deferred composition pass. When disabled the main pass writes its
// first colour attachment straight into the drawable. Enabled by default.
//
// Parameters:
//   - enabled: true to light the G-buffer in a separate pass
//
// Returns:
//   - RendererBuilderOption: a function that applies the composition option to a renderer
func WithComposition(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.composition = enabled
	}
}

// WithClearColor sets the clear colour of the drawable and the albedo channel.
//
// Parameters:
//   - c: the RGBA clear colour
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear colour option to a renderer
func WithClearColor(c [4]float64) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = gpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
	}
}

// WithParallelEncoding encodes every pass of a frame on its own command encoder using a pool of
// workers. Command buffers are still submitted in pass order. A count of 0 encodes on the
// calling goroutine.
//
// Parameters:
//   - workers: the number of pool workers
//
// Returns:
//   - RendererBuilderOption: a function that applies the parallel encoding option to a renderer
func WithParallelEncoding(workers int) RendererBuilderOption {
	return func(r *renderer) {
		r.workers = max(workers, 0)
	}
}
