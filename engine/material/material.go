package material

import (
	"errors"
	"fmt"
	"image"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
)

// TextureSlot indexes the five textures every material binds.
type TextureSlot int

const (
	SlotBaseColor TextureSlot = iota
	SlotNormal
	SlotRoughness
	SlotMetallic
	SlotAmbientOcclusion

	// TextureSlotCount is the number of texture slots per material.
	TextureSlotCount = 5
)

func (s TextureSlot) String() string {
	switch s {
	case SlotBaseColor:
		return "baseColor"
	case SlotNormal:
		return "normal"
	case SlotRoughness:
		return "roughness"
	case SlotMetallic:
		return "metallic"
	case SlotAmbientOcclusion:
		return "ambientOcclusion"
	default:
		return "unknown"
	}
}

// Resources supplies the shared objects a material binds next to its own textures.
type Resources interface {
	// MaterialLayout returns the bind group layout of @group(2).
	MaterialLayout() gpu.BindGroupLayout

	// MaterialSampler returns the repeat, linear, anisotropic sampler shared by all materials.
	MaterialSampler() gpu.Sampler

	// FallbackTexture returns the 1x1 texture bound when a slot has no image: white for color
	// channels, a flat normal for the normal slot.
	FallbackTexture(normalMap bool) gpu.Texture
}

// material is the implementation of the Material interface.
type material struct {
	name      string
	constants Constants
	images    [TextureSlotCount]*image.RGBA

	device    gpu.Device
	textures  [TextureSlotCount]gpu.Texture
	owned     [TextureSlotCount]bool
	buffer    gpu.Buffer
	bindGroup gpu.BindGroup
}

// Material is a surface description uploaded to the GPU: a constant block plus base color,
// normal, roughness, metallic and ambient occlusion textures, bound together at @group(2).
//
// Slots without an image bind the shared fallback texture, so every material always binds
// all five textures.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Constants retrieves the material constant block.
	//
	// Returns:
	//   - Constants: the current constants
	Constants() Constants

	// SetConstants replaces the constant block and uploads it.
	//
	// Parameters:
	//   - c: the new constants
	//
	// Returns:
	//   - error: error if the upload fails
	SetConstants(c Constants) error

	// Texture retrieves the texture bound at slot, which may be a shared fallback.
	//
	// Parameters:
	//   - slot: the texture slot
	//
	// Returns:
	//   - gpu.Texture: the bound texture
	Texture(slot TextureSlot) gpu.Texture

	// HasTexture reports whether slot holds the material's own image rather than a fallback.
	//
	// Parameters:
	//   - slot: the texture slot
	//
	// Returns:
	//   - bool: true if the material owns a texture for the slot
	HasTexture(slot TextureSlot) bool

	// BindGroup returns the group bound at @group(2) before each submesh draw.
	//
	// Returns:
	//   - gpu.BindGroup: the material bind group
	BindGroup() gpu.BindGroup

	// Release frees the textures, buffer and bind group the material owns.
	Release()
}

var _ Material = &material{}

// NewMaterial uploads the material's images and constants and builds its bind group.
//
// Parameters:
//   - ctx: the graphics context
//   - res: the shared layout, sampler and fallback textures
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: the uploaded material
//   - error: error if a GPU resource cannot be created
func NewMaterial(ctx gpu.GraphicsContext, res Resources, options ...MaterialBuilderOption) (Material, error) {
	if ctx == nil || res == nil {
		return nil, errors.New("material: graphics context and resources are required")
	}
	m := &material{
		constants: DefaultConstants(),
		device:    ctx.Device(),
	}
	for _, opt := range options {
		opt(m)
	}

	for slot := range TextureSlotCount {
		img := m.images[slot]
		if img == nil {
			m.textures[slot] = res.FallbackTexture(TextureSlot(slot) == SlotNormal)
			continue
		}
		tex, err := UploadImage(m.device, fmt.Sprintf("%s.%s", m.name, TextureSlot(slot)), img, TextureSlot(slot) == SlotBaseColor)
		if err != nil {
			m.Release()
			return nil, err
		}
		m.textures[slot] = tex
		m.owned[slot] = true
	}

	buf, err := m.device.CreateBufferInit(gpu.BufferDescriptor{
		Label: m.name + ".constants",
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	}, m.constants.Marshal())
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("material: failed to create constant buffer for %q: %w", m.name, err)
	}
	m.buffer = buf

	entries := []gpu.BindGroupEntry{{Binding: 0, Buffer: buf, Size: ConstantsSize}}
	for slot, tex := range m.textures {
		entries = append(entries, gpu.BindGroupEntry{Binding: uint32(slot) + 1, Texture: tex})
	}
	entries = append(entries, gpu.BindGroupEntry{Binding: TextureSlotCount + 1, Sampler: res.MaterialSampler()})

	group, err := m.device.CreateBindGroup(gpu.BindGroupDescriptor{
		Label:   m.name + ".material",
		Layout:  res.MaterialLayout(),
		Entries: entries,
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("material: failed to create bind group for %q: %w", m.name, err)
	}
	m.bindGroup = group
	m.images = [TextureSlotCount]*image.RGBA{}
	return m, nil
}

// UploadImage creates a shared RGBA8 texture from img and copies the pixels into it.
//
// Parameters:
//   - device: the device to allocate on
//   - label: the texture label
//   - img: the pixels
//   - srgb: true for color data, false for linear data such as normal maps
//
// Returns:
//   - gpu.Texture: the uploaded texture
//   - error: error if the texture cannot be created or written
func UploadImage(device gpu.Device, label string, img *image.RGBA, srgb bool) (gpu.Texture, error) {
	format := gpu.TextureFormatRGBA8Unorm
	if srgb {
		format = gpu.TextureFormatRGBA8UnormSrgb
	}
	b := img.Bounds()
	tex, err := device.CreateTexture(gpu.TextureDescriptor{
		Label:   label,
		Size:    gpu.Size{Width: uint32(b.Dx()), Height: uint32(b.Dy())},
		Format:  format,
		Usage:   gpu.TextureUsageTextureBinding | gpu.TextureUsageCopyDst,
		Storage: gpu.StorageModeShared,
	})
	if err != nil {
		return nil, fmt.Errorf("material: failed to create texture %s: %w", label, err)
	}
	if err := device.WriteTexture(tex, 0, img.Pix, uint32(img.Stride)); err != nil {
		tex.Release()
		return nil, fmt.Errorf("material: failed to upload texture %s: %w", label, err)
	}
	return tex, nil
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Constants() Constants {
	return m.constants
}

func (m *material) SetConstants(c Constants) error {
	m.constants = c
	return m.device.WriteBuffer(m.buffer, 0, c.Marshal())
}

func (m *material) Texture(slot TextureSlot) gpu.Texture {
	if slot < 0 || slot >= TextureSlotCount {
		return nil
	}
	return m.textures[slot]
}

func (m *material) HasTexture(slot TextureSlot) bool {
	if slot < 0 || slot >= TextureSlotCount {
		return false
	}
	return m.owned[slot]
}

func (m *material) BindGroup() gpu.BindGroup {
	return m.bindGroup
}

func (m *material) Release() {
	if m.bindGroup != nil {
		m.bindGroup.Release()
		m.bindGroup = nil
	}
	if m.buffer != nil {
		m.buffer.Release()
		m.buffer = nil
	}
	for slot, tex := range m.textures {
		if m.owned[slot] && tex != nil {
			tex.Release()
		}
		m.textures[slot] = nil
		m.owned[slot] = false
	}
}
