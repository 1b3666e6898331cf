package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/obsidian/engine/logging"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window   *glfw.Window
	running  bool
	dragging bool
	lastX    float64
	lastY    float64
}

// newPlatformWindow creates the GLFW window, wires its callbacks and records the framebuffer size.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("window: failed to initialize GLFW: %w", err)
	}

	// WebGPU owns the swapchain, so no OpenGL context is created.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("window: failed to create GLFW window: %w", err)
	}

	maxW, maxH := glfw.DontCare, glfw.DontCare
	if w.maxWidth > 0 && w.maxHeight > 0 {
		maxW, maxH = w.maxWidth, w.maxHeight
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, maxW, maxH)

	gw := &glfwWindow{window: win, running: true}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			if w.onKeyDown != nil {
				w.onKeyDown(Key(key))
			}
		case glfw.Release:
			if w.onKeyUp != nil {
				w.onKeyUp(Key(key))
			}
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonMiddle && button != glfw.MouseButtonRight {
			return
		}
		gw.dragging = action == glfw.Press
		gw.lastX, gw.lastY = win.GetCursorPos()
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if !gw.dragging {
			return
		}
		dx, dy := x-gw.lastX, y-gw.lastY
		gw.lastX, gw.lastY = x, y
		if w.onDrag != nil {
			w.onDrag(float32(dx), float32(dy))
		}
	})

	// Framebuffer size is in pixels and differs from the window size on high-DPI displays.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.setSize(width, height)
	})

	fbWidth, fbHeight := win.GetFramebufferSize()
	w.width, w.height = fbWidth, fbHeight
	logging.Debug("window created", "title", w.title, "width", fbWidth, "height", fbHeight)
	return nil
}

// platformGetSurfaceDescriptor uses the wgpuglfw bridge, which covers Windows, X11, Wayland and macOS.
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return false
	}
	return gw.running && !gw.window.ShouldClose()
}

func platformCloseWindow(w *engineWindow) error {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return fmt.Errorf("window: not initialized")
	}
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages polls GLFW for pending events without blocking.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
