package gputest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
)

// Surface is a recording gpu.Surface backed by a Device.
type Surface struct {
	mu sync.Mutex

	device     *Device
	format     gpu.TextureFormat
	size       gpu.Size
	configures int
	presented  int
	discarded  int
	acquireErr error
}

var _ gpu.Surface = &Surface{}

// NewSurface creates a BGRA8 surface whose textures are allocated on device.
func NewSurface(device *Device) *Surface {
	return &Surface{device: device, format: gpu.TextureFormatBGRA8Unorm}
}

// NewContext builds a GraphicsContext over a fresh recording device and surface.
func NewContext(size gpu.Size) (gpu.GraphicsContext, *Device, *Surface) {
	dev := NewDevice()
	surf := NewSurface(dev)
	ctx, err := gpu.NewGraphicsContext(dev, surf, gpu.WithDrawableSize(size))
	if err != nil {
		panic(err)
	}
	return ctx, dev, surf
}

func (s *Surface) Format() gpu.TextureFormat {
	return s.format
}

func (s *Surface) Configure(size gpu.Size, mode gpu.PresentMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size = size
	s.configures++
	return nil
}

// FailAcquire makes every following Acquire return err (wrapped around gpu.ErrSurfaceUnavailable).
// Passing nil restores normal behavior.
func (s *Surface) FailAcquire(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquireErr = err
}

func (s *Surface) Acquire() (gpu.SurfaceTexture, error) {
	s.mu.Lock()
	failure, size := s.acquireErr, s.size
	s.mu.Unlock()
	if failure != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrSurfaceUnavailable, failure)
	}
	tex, err := s.device.CreateTexture(gpu.TextureDescriptor{
		Label:  "drawable",
		Size:   size,
		Format: s.format,
		Usage:  gpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrSurfaceUnavailable, err)
	}
	return &surfaceTexture{surface: s, tex: tex.(*Texture)}, nil
}

func (s *Surface) Release() {}

// Size returns the last configured size.
func (s *Surface) Size() gpu.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Configures returns how many times Configure was called.
func (s *Surface) Configures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configures
}

// Presented returns how many frames were presented.
func (s *Surface) Presented() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// Discarded returns how many acquired images were dropped without presenting.
func (s *Surface) Discarded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discarded
}

type surfaceTexture struct {
	surface *Surface
	tex     *Texture
	done    bool
}

func (t *surfaceTexture) Texture() gpu.Texture {
	return t.tex
}

func (t *surfaceTexture) Present() error {
	if t.done {
		return fmt.Errorf("gputest: drawable already presented or discarded")
	}
	t.done = true
	t.tex.Release()
	t.surface.mu.Lock()
	defer t.surface.mu.Unlock()
	t.surface.presented++
	return nil
}

func (t *surfaceTexture) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.tex.Release()
	t.surface.mu.Lock()
	defer t.surface.mu.Unlock()
	t.surface.discarded++
}
