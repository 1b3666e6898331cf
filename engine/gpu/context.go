package gpu

import (
	"errors"
	"fmt"
	"sync"
)

// graphicsContext is the implementation of the GraphicsContext interface.
type graphicsContext struct {
	mu sync.RWMutex

	device      Device
	surface     Surface
	size        Size
	presentMode PresentMode
}

// GraphicsContext bundles the process-wide graphics objects: the device (and its queue) and the
// presentation surface with its current drawable size. It is constructed once at startup and
// passed explicitly to every component that creates or binds GPU resources.
type GraphicsContext interface {
	// Device returns the device used to create resources and submit work.
	//
	// Returns:
	//   - Device: the shared device
	Device() Device

	// Surface returns the presentation surface.
	//
	// Returns:
	//   - Surface: the shared surface
	Surface() Surface

	// ColorFormat returns the color format of the surface, which is also the format of every
	// render target that may stand in for the drawable.
	//
	// Returns:
	//   - TextureFormat: the surface color format
	ColorFormat() TextureFormat

	// DrawableSize returns the current surface size in pixels.
	//
	// Returns:
	//   - Size: the drawable size
	DrawableSize() Size

	// PresentMode returns the configured presentation mode.
	//
	// Returns:
	//   - PresentMode: the presentation mode
	PresentMode() PresentMode

	// Resize reconfigures the surface at the new size. A zero size is recorded but the surface
	// is left untouched until a non-zero size arrives.
	//
	// Parameters:
	//   - size: the new drawable size
	//
	// Returns:
	//   - error: error if the surface could not be reconfigured
	Resize(size Size) error

	// Release frees the surface and the device.
	Release()
}

var _ GraphicsContext = &graphicsContext{}

// NewGraphicsContext wraps an already created device and surface. The surface is configured at
// the initial size given with WithDrawableSize; a failure here is a setup error.
//
// Parameters:
//   - device: the backend device
//   - surface: the backend surface
//   - options: functional options
//
// Returns:
//   - GraphicsContext: the context
//   - error: error if the device or surface is missing or configuration fails
func NewGraphicsContext(device Device, surface Surface, options ...GraphicsContextOption) (GraphicsContext, error) {
	if device == nil {
		return nil, errors.New("gpu: graphics context requires a device")
	}
	if surface == nil {
		return nil, errors.New("gpu: graphics context requires a surface")
	}

	c := &graphicsContext{
		device:      device,
		surface:     surface,
		presentMode: PresentModeVSync,
	}
	for _, opt := range options {
		opt(c)
	}

	if !c.size.IsZero() {
		if err := surface.Configure(c.size, c.presentMode); err != nil {
			return nil, fmt.Errorf("gpu: failed to configure surface: %w", err)
		}
	}
	return c, nil
}

func (c *graphicsContext) Device() Device {
	return c.device
}

func (c *graphicsContext) Surface() Surface {
	return c.surface
}

func (c *graphicsContext) ColorFormat() TextureFormat {
	return c.surface.Format()
}

func (c *graphicsContext) DrawableSize() Size {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

func (c *graphicsContext) PresentMode() PresentMode {
	return c.presentMode
}

func (c *graphicsContext) Resize(size Size) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = size
	if size.IsZero() {
		return nil
	}
	if err := c.surface.Configure(size, c.presentMode); err != nil {
		return fmt.Errorf("gpu: failed to reconfigure surface at %dx%d: %w", size.Width, size.Height, err)
	}
	return nil
}

func (c *graphicsContext) Release() {
	c.surface.Release()
	c.device.Release()
}

// GraphicsContextOption is a functional option for configuring a GraphicsContext during construction.
type GraphicsContextOption func(*graphicsContext)

// WithDrawableSize sets the initial surface size.
//
// Parameters:
//   - size: the initial drawable size in pixels
//
// Returns:
//   - GraphicsContextOption: functional option to set the size
func WithDrawableSize(size Size) GraphicsContextOption {
	return func(c *graphicsContext) {
		c.size = size
	}
}

// WithPresentMode sets the surface presentation mode.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - GraphicsContextOption: functional option to set the present mode
func WithPresentMode(mode PresentMode) GraphicsContextOption {
	return func(c *graphicsContext) {
		c.presentMode = mode
	}
}
