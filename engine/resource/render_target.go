package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
)

// renderTarget is the implementation of the RenderTarget interface.
type renderTarget struct {
	label   string
	device  gpu.Device
	formats []gpu.TextureFormat

	color    gpu.Texture
	normal   gpu.Texture
	position gpu.Texture
	depth    gpu.Texture
}

// RenderTarget is an offscreen set of attachments compatible with the G-buffer pipelines. Water
// bodies render their reflection into one.
type RenderTarget interface {
	// Color returns the first colour attachment, the one sampled by later passes.
	Color() gpu.Texture

	// Depth returns the depth attachment.
	Depth() gpu.Texture

	// Size returns the extent of every attachment.
	Size() gpu.Size

	// Resize replaces the attachments. The current size or a zero size is a no-op.
	//
	// Parameters:
	//   - size: the new size
	//
	// Returns:
	//   - bool: true if the attachments were replaced
	//   - error: error if a texture could not be created; the old attachments stay in place
	Resize(size gpu.Size) (bool, error)

	// PassDescriptor returns a descriptor that clears every attachment.
	//
	// Parameters:
	//   - label: the pass label
	//   - clear: the colour clear value
	//
	// Returns:
	//   - gpu.RenderPassDescriptor: the pass descriptor
	PassDescriptor(label string, clear gpu.Color) gpu.RenderPassDescriptor

	// Release frees the attachments.
	Release()
}

var _ RenderTarget = &renderTarget{}

func (m *manager) NewRenderTarget(label string, size gpu.Size) (RenderTarget, error) {
	rt := &renderTarget{
		label:   label,
		device:  m.ctx.Device(),
		formats: m.GBufferFormats(),
	}
	if _, err := rt.Resize(size); err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *renderTarget) Color() gpu.Texture {
	return r.color
}

func (r *renderTarget) Depth() gpu.Texture {
	return r.depth
}

func (r *renderTarget) Size() gpu.Size {
	if r.depth == nil {
		return gpu.Size{}
	}
	return r.depth.Size()
}

func (r *renderTarget) Resize(size gpu.Size) (bool, error) {
	if size.IsZero() || size == r.Size() {
		return false, nil
	}

	labels := []string{"color", "normal", "position", "depth"}
	formats := append(append([]gpu.TextureFormat(nil), r.formats...), gpu.TextureFormatDepth32Float)
	created := make([]gpu.Texture, 0, len(formats))
	for i, f := range formats {
		tex, err := r.device.CreateTexture(gpu.TextureDescriptor{
			Label:   r.label + " " + labels[i],
			Size:    size,
			Format:  f,
			Usage:   gpu.TextureUsageTextureBinding | gpu.TextureUsageRenderAttachment,
			Storage: gpu.StorageModePrivate,
		})
		if err != nil {
			releaseAll(created)
			return false, fmt.Errorf("resource: failed to create %s %s: %w", r.label, labels[i], err)
		}
		created = append(created, tex)
	}

	r.Release()
	r.color, r.normal, r.position, r.depth = created[0], created[1], created[2], created[3]
	return true, nil
}

func (r *renderTarget) PassDescriptor(label string, clear gpu.Color) gpu.RenderPassDescriptor {
	desc := gpu.RenderPassDescriptor{
		Label: label,
		DepthAttachment: &gpu.DepthAttachment{
			Texture:    r.depth,
			LoadOp:     gpu.LoadOpClear,
			StoreOp:    gpu.StoreOpStore,
			ClearDepth: 1,
		},
	}
	for _, t := range []gpu.Texture{r.color, r.normal, r.position} {
		desc.ColorAttachments = append(desc.ColorAttachments, gpu.ColorAttachment{
			Texture:    t,
			LoadOp:     gpu.LoadOpClear,
			StoreOp:    gpu.StoreOpStore,
			ClearColor: clear,
		})
	}
	return desc
}

func (r *renderTarget) Release() {
	releaseAll([]gpu.Texture{r.color, r.normal, r.position, r.depth})
	r.color, r.normal, r.position, r.depth = nil, nil, nil, nil
}
