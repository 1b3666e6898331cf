package engine

import (
	"github.com/Carmen-Shannon/obsidian/engine/profiler"
	"github.com/Carmen-Shannon/obsidian/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, frame statistics are logged once per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler enables profiling with a preconfigured profiler.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
		e.profilingEnabled = p != nil
	}
}

// WithFrameRate sets the target frame rate. Every frame advances the scene by 1/fps seconds.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target frames per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.frameRate = fps
	}
}

// WithPanicLimit sets how many consecutive panicking frames stop Run. Values <= 0 select 3.
//
// Parameters:
//   - limit: consecutive panics tolerated before Run returns
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPanicLimit(limit int) EngineBuilderOption {
	return func(e *engine) {
		if limit <= 0 {
			limit = defaultPanicLimit
		}
		e.panicLimit = limit
	}
}

// WithTickCallback registers the function called before each frame is rendered.
//
// Parameters:
//   - callback: function receiving the fixed delta time in seconds
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithWindow attaches the window hosting the render surface. Its resize events are forwarded to
// the renderer and Run pumps its message loop.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}
