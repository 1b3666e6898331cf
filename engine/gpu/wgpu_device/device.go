// Package wgpu_device implements gpu.Device and gpu.Surface on top of wgpu-native through
// github.com/cogentcore/webgpu.
package wgpu_device

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// device is the implementation of gpu.Device.
type device struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	name     string
}

var _ gpu.Device = &device{}

// New creates a wgpu instance, an adapter compatible with the window surface described by desc,
// a device and its queue. The calling goroutine is locked to its OS thread, as the window
// system requires.
//
// Parameters:
//   - desc: the platform surface descriptor, typically from the window
//   - options: functional options
//
// Returns:
//   - gpu.Device: the device
//   - gpu.Surface: the unconfigured surface
//   - error: error if no adapter or device could be obtained
func New(desc *wgpu.SurfaceDescriptor, options ...DeviceBuilderOption) (gpu.Device, gpu.Surface, error) {
	runtime.LockOSThread()

	cfg := &deviceConfig{label: "obsidian device"}
	for _, opt := range options {
		opt(cfg)
	}

	d := &device{instance: wgpu.CreateInstance(nil)}
	s := d.instance.CreateSurface(desc)

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    s,
	})
	if err != nil {
		s.Release()
		d.instance.Release()
		return nil, nil, fmt.Errorf("wgpu_device: failed to request adapter: %w", err)
	}
	d.adapter = a
	d.name = a.GetInfo().Name

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: cfg.label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		s.Release()
		a.Release()
		d.instance.Release()
		return nil, nil, fmt.Errorf("wgpu_device: failed to request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	surf := &surface{device: d, surface: s}
	caps := s.GetCapabilities(a)
	if len(caps.Formats) == 0 {
		return nil, nil, fmt.Errorf("wgpu_device: surface reports no formats")
	}
	surf.format = caps.Formats[0]
	surf.alphaMode = caps.AlphaModes[0]
	return d, surf, nil
}

func (d *device) Name() string {
	return d.name
}

func (d *device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Buffer, error) {
	// wgpu requires buffer sizes to be a multiple of 4.
	size := (desc.Size + 3) &^ 3
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  size,
		Usage: bufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_device: failed to create buffer %q: %w", desc.Label, err)
	}
	return &buffer{label: desc.Label, size: desc.Size, buf: buf}, nil
}

func (d *device) CreateBufferInit(desc gpu.BufferDescriptor, data []byte) (gpu.Buffer, error) {
	desc.Size = uint64(len(data))
	desc.Usage |= gpu.BufferUsageCopyDst
	b, err := d.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	if err := d.WriteBuffer(b, 0, data); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (d *device) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*buffer)
	if !ok {
		return errForeign
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("wgpu_device: write of %d bytes at %d overflows buffer %q", len(data), offset, b.label)
	}
	if pad := len(data) % 4; pad != 0 {
		data = append(data[:len(data):len(data)], make([]byte, 4-pad)...)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue.WriteBuffer(b.buf, offset, data)
	return nil
}

func (d *device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Size.IsZero() {
		return nil, fmt.Errorf("wgpu_device: texture %q has zero size", desc.Label)
	}
	layers := uint32(1)
	if desc.Dimension == gpu.TextureDimensionCube {
		layers = 6
	}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: layers,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        textureFormat(desc.Format),
		Usage:         textureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_device: failed to create texture %q: %w", desc.Label, err)
	}

	var viewDesc *wgpu.TextureViewDescriptor
	if desc.Dimension == gpu.TextureDimensionCube {
		viewDesc = &wgpu.TextureViewDescriptor{
			Label:           desc.Label + " cube view",
			Format:          textureFormat(desc.Format),
			Dimension:       wgpu.TextureViewDimensionCube,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: 6,
			Aspect:          wgpu.TextureAspectAll,
		}
	}
	view, err := tex.CreateView(viewDesc)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("wgpu_device: failed to create view for %q: %w", desc.Label, err)
	}
	return &texture{desc: desc, tex: tex, view: view, owned: true}, nil
}

func (d *device) WriteTexture(tex gpu.Texture, layer uint32, data []byte, bytesPerRow uint32) error {
	t, ok := tex.(*texture)
	if !ok {
		return errForeign
	}
	size := t.desc.Size
	if uint64(len(data)) < uint64(bytesPerRow)*uint64(size.Height) {
		return fmt.Errorf("wgpu_device: %d bytes is too small for texture %q", len(data), t.desc.Label)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{Z: layer},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: size.Height,
		},
		&wgpu.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (d *device) CreateSampler(desc gpu.SamplerDescriptor) (gpu.Sampler, error) {
	s, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  addressMode(desc.AddressModeU),
		AddressModeV:  addressMode(desc.AddressModeV),
		AddressModeW:  addressMode(desc.AddressModeW),
		MagFilter:     filterMode(desc.MagFilter),
		MinFilter:     filterMode(desc.MinFilter),
		MipmapFilter:  mipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       compareFunction(desc.Compare),
		MaxAnisotropy: max(desc.MaxAnisotropy, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_device: failed to create sampler %q: %w", desc.Label, err)
	}
	return &sampler{s: s}, nil
}

func (d *device) CreateBindGroupLayout(desc gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entries = append(entries, layoutEntry(e))
	}
	l, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_device: failed to create bind group layout %q: %w", desc.Label, err)
	}
	return &bindGroupLayout{l: l}, nil
}

func (d *device) CreateBindGroup(desc gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q layout: %w", desc.Label, errForeign)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			b, ok := e.Buffer.(*buffer)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: %w", desc.Label, e.Binding, errForeign)
			}
			entry.Buffer = b.buf
			entry.Offset = e.Offset
			entry.Size = wgpu.WholeSize
			if e.Size != 0 {
				entry.Size = e.Size
			}
		case e.Texture != nil:
			t, ok := e.Texture.(*texture)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: %w", desc.Label, e.Binding, errForeign)
			}
			entry.TextureView = t.view
		case e.Sampler != nil:
			s, ok := e.Sampler.(*sampler)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: %w", desc.Label, e.Binding, errForeign)
			}
			entry.Sampler = s.s
		default:
			return nil, fmt.Errorf("wgpu_device: bind group %q binding %d is empty", desc.Label, e.Binding)
		}
		entries = append(entries, entry)
	}

	g, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.l,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_device: failed to create bind group %q: %w", desc.Label, err)
	}
	return &bindGroup{g: g}, nil
}

func (d *device) CreateRenderPipeline(desc gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	layouts := make([]*wgpu.BindGroupLayout, 0, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		bl, ok := l.(*bindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("pipeline %q group %d: %w", desc.Label, i, errForeign)
		}
		layouts = append(layouts, bl.l)
	}
	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_device: failed to create layout for %q: %w", desc.Label, err)
	}

	vs, err := d.shaderModule(desc.Vertex)
	if err != nil {
		pipelineLayout.Release()
		return nil, err
	}
	defer vs.Release()

	rp := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    vertexLayouts(desc.VertexBuffers),
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}

	if desc.Fragment != nil {
		fs, err := d.shaderModule(*desc.Fragment)
		if err != nil {
			pipelineLayout.Release()
			return nil, err
		}
		defer fs.Release()

		targets := make([]wgpu.ColorTargetState, 0, len(desc.ColorTargets))
		for _, t := range desc.ColorTargets {
			state := wgpu.ColorTargetState{
				Format:    textureFormat(t.Format),
				WriteMask: wgpu.ColorWriteMaskAll,
			}
			if t.Blend {
				state.Blend = &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
				}
			}
			targets = append(targets, state)
		}
		rp.Fragment = &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets:    targets,
		}
	}

	if ds := desc.DepthStencil; ds != nil {
		rp.DepthStencil = &wgpu.DepthStencilState{
			Format:              textureFormat(ds.Format),
			DepthWriteEnabled:   ds.DepthWriteEnabled,
			DepthCompare:        compareFunction(ds.DepthCompare),
			DepthBias:           ds.DepthBias,
			DepthBiasSlopeScale: ds.DepthBiasSlopeScale,
			DepthBiasClamp:      ds.DepthBiasClamp,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := d.device.CreateRenderPipeline(rp)
	if err != nil {
		pipelineLayout.Release()
		return nil, fmt.Errorf("wgpu_device: failed to create pipeline %q: %w", desc.Label, err)
	}
	return &renderPipeline{label: desc.Label, p: created, layout: pipelineLayout}, nil
}

func (d *device) shaderModule(fn gpu.ShaderFunction) (*wgpu.ShaderModule, error) {
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fn.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fn.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_device: failed to compile %s: %w", fn.Label, err)
	}
	return m, nil
}

func (d *device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("wgpu_device: failed to create command encoder %q: %w", label, err)
	}
	return &commandEncoder{enc: enc}, nil
}

func (d *device) Submit(buffers ...gpu.CommandBuffer) error {
	cbs := make([]*wgpu.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		cb, ok := b.(*commandBuffer)
		if !ok {
			return errForeign
		}
		cbs = append(cbs, cb.cb)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue.Submit(cbs...)
	return nil
}

func (d *device) Release() {
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
}
