// Package wgpudev implements the hardware backend over WebGPU. Resource
// state transitions are tracked by the driver there, so barriers validate
// nothing and cost nothing; fences map onto queue submission indices and
// device polling.
package wgpudev

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

func init() {
	gpu.Register(gpu.BackendWGPU, 100, func(opts gpu.Options) (gpu.Device, error) {
		return New(opts)
	})
}

var _ gpu.Device = &Device{}

// Device is the WebGPU-backed adapter.
type Device struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	name          string
	software      bool
}

// New opens a WebGPU device. opts.Surface, when set, must be a
// *wgpu.SurfaceDescriptor for the target window.
func New(opts gpu.Options) (*Device, error) {
	d := &Device{}
	d.instance = wgpu.CreateInstance(nil)
	if d.instance == nil {
		return nil, fmt.Errorf("wgpudev: instance creation failed")
	}

	if opts.Surface != nil {
		desc, ok := opts.Surface.(*wgpu.SurfaceDescriptor)
		if !ok {
			d.instance.Release()
			return nil, fmt.Errorf("wgpudev: surface option is %T, want *wgpu.SurfaceDescriptor", opts.Surface)
		}
		d.surface = d.instance.CreateSurface(desc)
	}

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: d.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		d.teardown()
		return nil, fmt.Errorf("wgpudev: no adapter: %w", err)
	}
	d.adapter = adapter

	info := adapter.GetInfo()
	d.name = info.Name
	d.software = info.AdapterType == wgpu.AdapterTypeCPU

	dev, err := adapter.RequestDevice(nil)
	if err != nil {
		d.teardown()
		return nil, fmt.Errorf("wgpudev: device request failed: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	d.surfaceFormat = wgpu.TextureFormatBGRA8Unorm
	if d.surface != nil {
		caps := d.surface.GetCapabilities(adapter)
		if len(caps.Formats) > 0 {
			d.surfaceFormat = caps.Formats[0]
		}
	}
	return d, nil
}

func (d *Device) teardown() {
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.surface != nil {
		d.surface.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
}

// Kind reports whether the adapter the driver picked is a CPU rasterizer.
func (d *Device) Kind() gpu.AdapterKind {
	if d.software {
		return gpu.AdapterSoftware
	}
	return gpu.AdapterHardware
}

// Name returns the adapter name reported by the driver.
func (d *Device) Name() string {
	return d.name
}

// Limits returns nominal descriptor strides. Descriptor heaps are emulated
// as slot tables here, so the strides only describe the addressing contract.
func (d *Device) Limits() gpu.Limits {
	return gpu.Limits{
		RTVDescriptorSize: 32,
		DSVDescriptorSize: 32,
		CBVDescriptorSize: 32,
	}
}

// MSAAQualityLevels reports one quality level for the sample counts WebGPU
// guarantees on renderable formats.
func (d *Device) MSAAQualityLevels(format gpu.Format, sampleCount uint32) uint32 {
	if format == gpu.FormatUnknown {
		return 0
	}
	if sampleCount == 1 || sampleCount == 4 {
		return 1
	}
	return 0
}

// CreateFence creates a submission-index fence.
func (d *Device) CreateFence(initial uint64) (gpu.Fence, error) {
	return &fence{device: d.device, completed: initial, maxSignaled: initial}, nil
}

// CreateCommandQueue wraps the device queue.
func (d *Device) CreateCommandQueue() (gpu.CommandQueue, error) {
	return &commandQueue{device: d, queue: d.queue}, nil
}

// CreateCommandAllocator creates a submission bookkeeping handle. WebGPU
// owns command memory internally, so the allocator only carries lifecycle
// state.
func (d *Device) CreateCommandAllocator() (gpu.CommandAllocator, error) {
	return &commandAllocator{}, nil
}

// CreateCommandList creates a closed deferred-recording list.
func (d *Device) CreateCommandList(allocator gpu.CommandAllocator, initial gpu.PipelineState) (gpu.CommandList, error) {
	alloc, ok := allocator.(*commandAllocator)
	if !ok {
		return nil, fmt.Errorf("wgpudev: foreign command allocator %T", allocator)
	}
	return &commandList{device: d, allocator: alloc, closed: true}, nil
}

// CreateSwapChain configures the window surface as the buffer chain.
func (d *Device) CreateSwapChain(queue gpu.CommandQueue, desc gpu.SwapChainDescriptor) (gpu.SwapChain, error) {
	if d.surface == nil {
		return nil, fmt.Errorf("wgpudev: device was opened without a surface")
	}
	sc := &swapChain{device: d, desc: desc}
	if err := sc.configure(); err != nil {
		return nil, err
	}
	return sc, nil
}

// CreateDescriptorHeap allocates a slot table.
func (d *Device) CreateDescriptorHeap(desc gpu.DescriptorHeapDescriptor) (gpu.DescriptorHeap, error) {
	if desc.NumDescriptors < 1 {
		return nil, fmt.Errorf("wgpudev: descriptor heap %q needs at least one slot", desc.Label)
	}
	return &descriptorHeap{
		label: desc.Label,
		kind:  desc.Type,
		slots: make([]slot, desc.NumDescriptors),
	}, nil
}

// CreateBuffer allocates a wgpu buffer. Upload buffers are fed through
// Queue.WriteBuffer, whose writes are ordered before later submissions, so
// no mapping is held open.
func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Resource, error) {
	usage := bufferUsage(desc.Usage)
	if desc.Kind == gpu.BufferUpload {
		usage |= wgpu.BufferUsageCopyDst
	}
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpudev: buffer %q: %w", desc.Label, err)
	}
	return &bufferResource{label: desc.Label, size: desc.Size, kind: desc.Kind, queue: d.queue, buf: buf}, nil
}

// CreateDepthStencilBuffer allocates a depth texture with a cached view.
func (d *Device) CreateDepthStencilBuffer(desc gpu.DepthStencilDescriptor) (gpu.Resource, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   max(desc.SampleCount, 1),
		Dimension:     wgpu.TextureDimension2D,
		Format:        textureFormat(desc.Format),
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpudev: depth buffer %q: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("wgpudev: depth view %q: %w", desc.Label, err)
	}
	size := uint64(desc.Width) * uint64(desc.Height) * 4 * uint64(max(desc.SampleCount, 1))
	return &textureResource{label: desc.Label, size: size, tex: tex, view: view}, nil
}

// CreateRenderTargetView records the resource into the heap slot.
func (d *Device) CreateRenderTargetView(res gpu.Resource, handle gpu.DescriptorHandle) error {
	return writeSlot(handle, gpu.DescriptorHeapRTV, res, 0, 0)
}

// CreateDepthStencilView records the resource into the heap slot.
func (d *Device) CreateDepthStencilView(res gpu.Resource, handle gpu.DescriptorHandle) error {
	return writeSlot(handle, gpu.DescriptorHeapDSV, res, 0, 0)
}

// CreateConstantBufferView records the buffer range into the heap slot. The
// bind group that actually feeds the shader is built lazily the first time
// the slot is bound.
func (d *Device) CreateConstantBufferView(res gpu.Resource, offset, size uint64, handle gpu.DescriptorHandle) error {
	if size%256 != 0 {
		return fmt.Errorf("wgpudev: constant buffer view size %d is not 256-byte aligned", size)
	}
	return writeSlot(handle, gpu.DescriptorHeapCBV, res, offset, size)
}

// CompileShader creates a WGSL shader module.
func (d *Device) CompileShader(source, label string) (gpu.Shader, error) {
	mod, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpudev: shader %q: %w", label, err)
	}
	return &shader{label: label, module: mod}, nil
}

// CreateRootSignature maps each root parameter to one bind group layout;
// root slot s binds as group s.
func (d *Device) CreateRootSignature(desc gpu.RootSignatureDescriptor) (gpu.RootSignature, error) {
	rs := &rootSignature{}
	for pi, p := range desc.Parameters {
		entries := make([]wgpu.BindGroupLayoutEntry, p.NumDescriptors)
		for i := range entries {
			entries[i] = wgpu.BindGroupLayoutEntry{
				Binding:    uint32(p.BaseRegister + i),
				Visibility: shaderStage(p.Visibility),
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			}
		}
		bgl, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", desc.Label, pi),
			Entries: entries,
		})
		if err != nil {
			rs.Release()
			return nil, fmt.Errorf("wgpudev: root signature %q: %w", desc.Label, err)
		}
		rs.groupLayouts = append(rs.groupLayouts, bgl)
	}
	layout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: rs.groupLayouts,
	})
	if err != nil {
		rs.Release()
		return nil, fmt.Errorf("wgpudev: pipeline layout %q: %w", desc.Label, err)
	}
	rs.layout = layout
	return rs, nil
}

// CreatePipelineState bakes a render pipeline.
func (d *Device) CreatePipelineState(desc gpu.PipelineStateDescriptor) (gpu.PipelineState, error) {
	sh, ok := desc.Shader.(*shader)
	if !ok {
		return nil, fmt.Errorf("wgpudev: pipeline %q has no shader", desc.Label)
	}
	rs, ok := desc.RootSignature.(*rootSignature)
	if !ok {
		return nil, fmt.Errorf("wgpudev: pipeline %q has no root signature", desc.Label)
	}

	attrs := make([]wgpu.VertexAttribute, len(desc.InputLayout))
	for i, e := range desc.InputLayout {
		attrs[i] = wgpu.VertexAttribute{
			Format:         vertexFormat(e.Format),
			Offset:         uint64(e.Offset),
			ShaderLocation: uint32(i),
		}
	}

	pdesc := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: rs.layout,
		Vertex: wgpu.VertexState{
			Module:     sh.module,
			EntryPoint: desc.VSEntryPoint,
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(desc.VertexStride),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes:  attrs,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  primitiveTopology(desc.Topology),
			FrontFace: wgpu.FrontFaceCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: max(desc.SampleCount, 1),
			Mask:  0xFFFFFFFF,
		},
		Fragment: &wgpu.FragmentState{
			Module:     sh.module,
			EntryPoint: desc.PSEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    d.colorFormat(desc.RenderTargetFormat),
				Blend:     &wgpu.BlendStateReplace,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
	}
	if desc.DepthStencilFormat != gpu.FormatUnknown {
		keep := wgpu.StencilFaceState{
			Compare:     wgpu.CompareFunctionAlways,
			FailOp:      wgpu.StencilOperationKeep,
			DepthFailOp: wgpu.StencilOperationKeep,
			PassOp:      wgpu.StencilOperationKeep,
		}
		pdesc.DepthStencil = &wgpu.DepthStencilState{
			Format:            textureFormat(desc.DepthStencilFormat),
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      keep,
			StencilBack:       keep,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		}
	}

	p, err := d.device.CreateRenderPipeline(pdesc)
	if err != nil {
		return nil, fmt.Errorf("wgpudev: pipeline %q: %w", desc.Label, err)
	}
	return &pipelineState{pipeline: p}, nil
}

// colorFormat resolves a color format, substituting the surface's preferred
// format so pipelines always match the swap chain.
func (d *Device) colorFormat(f gpu.Format) wgpu.TextureFormat {
	if f == gpu.FormatBGRA8Unorm || f == gpu.FormatRGBA8Unorm {
		return d.surfaceFormat
	}
	return textureFormat(f)
}

// Release destroys the device and the driver objects under it.
func (d *Device) Release() {
	if d.device != nil {
		d.device.Release()
	}
	d.teardown()
}
