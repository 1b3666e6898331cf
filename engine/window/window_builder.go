package window

import "github.com/Carmen-Shannon/obsidian/common"

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar. An empty title keeps the default.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = common.Coalesce(title, w.title)
	}
}

// WithSize sets the initial window size. The framebuffer may be larger on high-DPI displays.
//
// Parameters:
//   - width: initial width in screen coordinates
//   - height: initial height in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 && height > 0 {
			w.width, w.height = width, height
		}
	}
}

// WithMinSize sets the smallest size the user can resize the window to.
//
// Parameters:
//   - width: minimum width in screen coordinates
//   - height: minimum height in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = width, height
	}
}

// WithMaxSize sets the largest size the user can resize the window to. Zero leaves it unbounded.
//
// Parameters:
//   - width: maximum width in screen coordinates
//   - height: maximum height in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxWidth, w.maxHeight = width, height
	}
}
