package wgpu_device

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// surface is the implementation of gpu.Surface over a window swapchain.
type surface struct {
	mu sync.Mutex

	device    *device
	surface   *wgpu.Surface
	format    wgpu.TextureFormat
	alphaMode wgpu.CompositeAlphaMode
	size      gpu.Size

	// acquired guards against acquiring a second image before the first is presented.
	acquired bool
}

var _ gpu.Surface = &surface{}

func (s *surface) Format() gpu.TextureFormat {
	return engineFormat(s.format)
}

func (s *surface) Configure(size gpu.Size, mode gpu.PresentMode) error {
	if size.IsZero() {
		return fmt.Errorf("wgpu_device: cannot configure a %dx%d surface", size.Width, size.Height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface.Configure(s.device.adapter, s.device.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      s.format,
		Width:       size.Width,
		Height:      size.Height,
		PresentMode: presentMode(mode),
		AlphaMode:   s.alphaMode,
	})
	s.size = size
	return nil
}

func (s *surface) Acquire() (gpu.SurfaceTexture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquired {
		return nil, fmt.Errorf("%w: previous image not yet presented", gpu.ErrSurfaceUnavailable)
	}

	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrSurfaceUnavailable, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("%w: %w", gpu.ErrSurfaceUnavailable, err)
	}
	s.acquired = true
	return &surfaceTexture{
		surface: s,
		raw:     tex,
		tex: &texture{
			desc: gpu.TextureDescriptor{
				Label:  "drawable",
				Size:   s.size,
				Format: engineFormat(s.format),
				Usage:  gpu.TextureUsageRenderAttachment,
			},
			tex:  tex,
			view: view,
		},
	}, nil
}

func (s *surface) Release() {
	s.surface.Release()
}

type surfaceTexture struct {
	surface *surface
	raw     *wgpu.Texture
	tex     *texture
	done    bool
}

func (t *surfaceTexture) Texture() gpu.Texture {
	return t.tex
}

func (t *surfaceTexture) Present() error {
	if t.done {
		return fmt.Errorf("wgpu_device: drawable already presented")
	}
	t.done = true
	t.surface.mu.Lock()
	defer t.surface.mu.Unlock()
	t.surface.surface.Present()
	t.finish()
	return nil
}

func (t *surfaceTexture) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.surface.mu.Lock()
	defer t.surface.mu.Unlock()
	t.finish()
}

// finish releases the frame's view and texture. Callers hold surface.mu.
func (t *surfaceTexture) finish() {
	t.tex.Release()
	t.raw.Release()
	t.surface.acquired = false
}
