// Package window owns the GLFW window that hosts the render surface and turns its input and
// framebuffer events into engine callbacks.
package window

import (
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer changes size. A minimized
	// window reports a zero size.
	//
	// Parameters:
	//   - callback: function receiving the new framebuffer size in pixels
	SetResizeCallback(callback func(size gpu.Size))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key
	SetKeyDownCallback(callback func(key Key))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key
	SetKeyUpCallback(callback func(key Key))

	// SetDragCallback sets the callback for cursor movement while the middle or right mouse
	// button is held.
	//
	// Parameters:
	//   - callback: function receiving the cursor delta in pixels since the previous event
	SetDragCallback(callback func(dx, dy float32))

	// SurfaceDescriptor returns a platform-appropriate wgpu.SurfaceDescriptor for the window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still open.
	IsRunning() bool

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// ProcessMessages runs the window message loop on the calling goroutine, which must be the
	// goroutine that created the window. Blocks until the window is closed.
	ProcessMessages()

	// Size returns the current framebuffer size in pixels.
	Size() gpu.Size
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	mu sync.Mutex

	title     string
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int
	width     int
	height    int

	// internalWindow holds the platform window (glfwWindow).
	internalWindow any

	onUpdate  func()
	onResize  func(size gpu.Size)
	onScroll  func(delta float32)
	onKeyDown func(key Key)
	onKeyUp   func(key Key)
	onDrag    func(dx, dy float32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. The calling goroutine is locked to its OS thread, which
// GLFW requires for every later call.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if GLFW could not create it
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "obsidian",
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(size gpu.Size)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(key Key)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(key Key)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetDragCallback(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if ok := platformProcessMessages(w); !ok {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Size() gpu.Size {
	w.mu.Lock()
	defer w.mu.Unlock()
	return gpu.Size{Width: uint32(max(w.width, 0)), Height: uint32(max(w.height, 0))}
}

// setSize records a framebuffer size and reports it to the resize callback.
func (w *engineWindow) setSize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
	if w.onResize != nil {
		w.onResize(w.Size())
	}
}
