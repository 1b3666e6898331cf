// Package engine drives the frame loop: it ticks at a fixed rate, runs the user tick callback,
// renders the scene and forwards window resizes to the renderer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/logging"
	"github.com/Carmen-Shannon/obsidian/engine/profiler"
	"github.com/Carmen-Shannon/obsidian/engine/renderer"
	"github.com/Carmen-Shannon/obsidian/engine/window"
)

var (
	// ErrFramePanic wraps a panic recovered while producing a frame.
	ErrFramePanic = errors.New("engine: frame panicked")

	// ErrPanicLimit is returned by Run once too many consecutive frames panicked.
	ErrPanicLimit = errors.New("engine: too many consecutive frame panics")
)

// defaultPanicLimit is the number of back-to-back panicking frames Run tolerates.
const defaultPanicLimit = 3

// engine implements the Engine interface.
type engine struct {
	mu sync.Mutex

	renderer renderer.Renderer
	window   window.Window

	frameRate    float64
	tickCallback func(deltaTime float32)
	panicLimit   int

	profiler         *profiler.Profiler
	profilingEnabled bool

	running  atomic.Bool
	quit     chan struct{}
	quitOnce sync.Once
	frames   atomic.Uint64
}

// Engine is the main entry point. It owns the frame loop around a renderer and, optionally, the
// window hosting the render surface.
type Engine interface {
	// Renderer returns the renderer driven by the loop.
	Renderer() renderer.Renderer

	// Window returns the window, or nil for a headless engine.
	Window() window.Window

	// FrameRate returns the target frames per second.
	FrameRate() float64

	// SetFrameRate sets the target frames per second. Values <= 0 select 60. The change applies
	// from the next frame.
	//
	// Parameters:
	//   - fps: target frames per second
	SetFrameRate(fps float64)

	// SetTickCallback registers the function called before each frame is rendered.
	//
	// Parameters:
	//   - callback: function receiving the fixed delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// Resize forwards a new drawable size to the renderer.
	//
	// Parameters:
	//   - size: the new drawable size in pixels
	Resize(size gpu.Size)

	// Step produces one frame: the tick callback, then the renderer. A panic in either is
	// recovered and returned wrapped in ErrFramePanic. Render errors are logged, not returned,
	// because the next frame is expected to succeed.
	//
	// Returns:
	//   - error: ErrFramePanic if the frame panicked
	Step() error

	// Frames returns how many frames Step produced.
	Frames() uint64

	// Run ticks at the target frame rate until ctx is cancelled, Quit is called, the window is
	// closed or a frame panics. With a window, Run must be called from the goroutine that
	// created it because it also pumps the window's message loop.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: the recovered frame panic that stopped the loop, or nil
	Run(ctx context.Context) error

	// Quit stops Run. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an engine around r.
//
// Parameters:
//   - r: the renderer to drive
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the engine
//   - error: error if r is nil
func NewEngine(r renderer.Renderer, options ...EngineBuilderOption) (Engine, error) {
	if r == nil {
		return nil, errors.New("engine: renderer is required")
	}
	e := &engine{
		renderer:  r,
		frameRate:  60,
		panicLimit: defaultPanicLimit,
		quit:       make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profilingEnabled && e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.Resize)
	}
	return e, nil
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) FrameRate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameRate
}

func (e *engine) SetFrameRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameRate = fps
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) Resize(size gpu.Size) {
	if err := e.renderer.Resize(size); err != nil {
		logging.Error("resize failed", "width", size.Width, "height", size.Height, "err", err)
	}
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) Step() (err error) {
	e.mu.Lock()
	dt := float32(1 / e.frameRate)
	tick := e.tickCallback
	e.mu.Unlock()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logging.Error("frame recovered from panic", "panic", r)
			err = fmt.Errorf("%w: %v", ErrFramePanic, r)
		}
	}()

	if tick != nil {
		tick(dt)
	}
	if rerr := e.renderer.RenderFrame(dt); rerr != nil {
		logging.Error("frame abandoned", "err", rerr)
	}
	e.frames.Add(1)

	if e.profilingEnabled {
		e.profiler.Tick(time.Since(start))
	}
	return nil
}

func (e *engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine: already running")
	}
	defer e.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if e.window == nil {
		return e.loop(ctx)
	}

	// The window's message loop must stay on this goroutine; frames run beside it.
	result := make(chan error, 1)
	go func() {
		err := e.loop(ctx)
		cancel()
		result <- err
	}()
	e.window.SetUpdateCallback(func() {
		select {
		case <-ctx.Done():
			_ = e.window.Close()
		default:
		}
	})
	e.window.ProcessMessages()
	cancel()
	return <-result
}

// loop produces frames at the target rate until ctx is done or panicLimit frames in a row
// panicked. A single panicking frame is logged by Step and the next tick runs normally.
func (e *engine) loop(ctx context.Context) error {
	ticker := time.NewTicker(e.interval())
	defer ticker.Stop()
	current := e.interval()
	panics := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.quit:
			return nil
		case <-ticker.C:
			if err := e.Step(); err != nil {
				panics++
				if panics < e.panicLimit {
					continue
				}
				e.Quit()
				return fmt.Errorf("%w (%d): %w", ErrPanicLimit, panics, err)
			}
			panics = 0
			if next := e.interval(); next != current {
				ticker.Reset(next)
				current = next
			}
		}
	}
}

func (e *engine) interval() time.Duration {
	return time.Duration(float64(time.Second) / e.FrameRate())
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}
