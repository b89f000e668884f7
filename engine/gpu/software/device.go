// Package software implements a CPU reference backend. It does not
// rasterize; it records every executed command and validates resource
// states, fence waits and recording lifecycles, which makes it both the
// fallback adapter on machines without a usable GPU and a deterministic
// test double for the rendering code.
package software

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

func init() {
	gpu.Register(gpu.BackendSoftware, 0, func(opts gpu.Options) (gpu.Device, error) {
		return New(opts)
	})
}

var _ gpu.Device = &Device{}

// Device is the software adapter. Beyond the gpu.Device contract it exposes
// the executed command log and tracked resource states for inspection.
type Device struct {
	width, height uint32
	executed      []Command
}

// New creates a software device. The surface in opts is ignored.
func New(opts gpu.Options) (*Device, error) {
	return &Device{width: opts.Width, height: opts.Height}, nil
}

// Kind reports AdapterSoftware.
func (d *Device) Kind() gpu.AdapterKind {
	return gpu.AdapterSoftware
}

// Name returns the adapter name.
func (d *Device) Name() string {
	return "CPU Reference Adapter"
}

// Limits returns fixed descriptor strides.
func (d *Device) Limits() gpu.Limits {
	return gpu.Limits{
		RTVDescriptorSize: 32,
		DSVDescriptorSize: 32,
		CBVDescriptorSize: 32,
	}
}

// MSAAQualityLevels reports one quality level for 1x and 4x on the known
// formats, zero otherwise.
func (d *Device) MSAAQualityLevels(format gpu.Format, sampleCount uint32) uint32 {
	if format == gpu.FormatUnknown {
		return 0
	}
	if sampleCount == 1 || sampleCount == 4 {
		return 1
	}
	return 0
}

// CreateFence creates a fence at the given initial completed value.
func (d *Device) CreateFence(initial uint64) (gpu.Fence, error) {
	return &fence{completed: initial, maxSignaled: initial}, nil
}

// CreateCommandQueue creates an in-order queue.
func (d *Device) CreateCommandQueue() (gpu.CommandQueue, error) {
	return &commandQueue{device: d}, nil
}

// CreateCommandAllocator creates an allocator.
func (d *Device) CreateCommandAllocator() (gpu.CommandAllocator, error) {
	return &commandAllocator{}, nil
}

// CreateCommandList creates a closed command list over the allocator.
func (d *Device) CreateCommandList(allocator gpu.CommandAllocator, initial gpu.PipelineState) (gpu.CommandList, error) {
	alloc, ok := allocator.(*commandAllocator)
	if !ok {
		return nil, fmt.Errorf("software: foreign command allocator %T", allocator)
	}
	return &commandList{device: d, allocator: alloc, closed: true}, nil
}

// CreateSwapChain creates a chain of persistent in-memory buffers.
func (d *Device) CreateSwapChain(queue gpu.CommandQueue, desc gpu.SwapChainDescriptor) (gpu.SwapChain, error) {
	if desc.BufferCount < 1 {
		return nil, fmt.Errorf("software: swap chain needs at least one buffer, got %d", desc.BufferCount)
	}
	sc := &swapChain{device: d, desc: desc}
	sc.createBuffers()
	return sc, nil
}

// CreateDescriptorHeap allocates a slot table.
func (d *Device) CreateDescriptorHeap(desc gpu.DescriptorHeapDescriptor) (gpu.DescriptorHeap, error) {
	if desc.NumDescriptors < 1 {
		return nil, fmt.Errorf("software: descriptor heap %q needs at least one slot", desc.Label)
	}
	return &descriptorHeap{
		label: desc.Label,
		kind:  desc.Type,
		slots: make([]view, desc.NumDescriptors),
	}, nil
}

// CreateBuffer allocates a buffer with a CPU byte shadow. Upload buffers
// start GENERIC_READ and are writable; default buffers start COMMON.
func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Resource, error) {
	state := gpu.ResourceStateCommon
	if desc.Kind == gpu.BufferUpload {
		state = gpu.ResourceStateGenericRead
	}
	return &resource{
		label: desc.Label,
		size:  desc.Size,
		kind:  desc.Kind,
		state: state,
		data:  make([]byte, desc.Size),
	}, nil
}

// CreateDepthStencilBuffer allocates a depth texture in the COMMON state.
func (d *Device) CreateDepthStencilBuffer(desc gpu.DepthStencilDescriptor) (gpu.Resource, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("software: zero-sized depth buffer %q", desc.Label)
	}
	// 4 bytes per texel per sample covers D24S8.
	size := uint64(desc.Width) * uint64(desc.Height) * 4 * uint64(max(desc.SampleCount, 1))
	return &resource{
		label:   desc.Label,
		size:    size,
		texture: true,
		state:   gpu.ResourceStateCommon,
	}, nil
}

// CreateRenderTargetView records the resource into the heap slot.
func (d *Device) CreateRenderTargetView(res gpu.Resource, handle gpu.DescriptorHandle) error {
	return writeView(handle, gpu.DescriptorHeapRTV, res, 0, 0)
}

// CreateDepthStencilView records the resource into the heap slot.
func (d *Device) CreateDepthStencilView(res gpu.Resource, handle gpu.DescriptorHandle) error {
	return writeView(handle, gpu.DescriptorHeapDSV, res, 0, 0)
}

// CreateConstantBufferView records the buffer range into the heap slot.
// Size must keep the 256-byte alignment.
func (d *Device) CreateConstantBufferView(res gpu.Resource, offset, size uint64, handle gpu.DescriptorHandle) error {
	if size%256 != 0 {
		return fmt.Errorf("software: constant buffer view size %d is not 256-byte aligned", size)
	}
	return writeView(handle, gpu.DescriptorHeapCBV, res, offset, size)
}

// CompileShader stores the source for entry-point checks at pipeline
// creation.
func (d *Device) CompileShader(source, label string) (gpu.Shader, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("software: empty shader source for %q", label)
	}
	return &shader{label: label, source: source}, nil
}

// CreateRootSignature bakes the descriptor.
func (d *Device) CreateRootSignature(desc gpu.RootSignatureDescriptor) (gpu.RootSignature, error) {
	return &rootSignature{desc: desc}, nil
}

// CreatePipelineState validates entry points against the shader source and
// the sample settings against the device.
func (d *Device) CreatePipelineState(desc gpu.PipelineStateDescriptor) (gpu.PipelineState, error) {
	sh, ok := desc.Shader.(*shader)
	if !ok {
		return nil, fmt.Errorf("software: pipeline %q has no shader", desc.Label)
	}
	for _, entry := range []string{desc.VSEntryPoint, desc.PSEntryPoint} {
		if !strings.Contains(sh.source, "fn "+entry) {
			return nil, fmt.Errorf("software: shader %q has no entry point %q", sh.label, entry)
		}
	}
	if q := d.MSAAQualityLevels(desc.RenderTargetFormat, desc.SampleCount); q == 0 {
		return nil, fmt.Errorf("software: unsupported sample count %d for pipeline %q", desc.SampleCount, desc.Label)
	} else if desc.SampleQuality >= q {
		return nil, fmt.Errorf("software: sample quality %d out of range for pipeline %q", desc.SampleQuality, desc.Label)
	}
	return &pipelineState{desc: desc}, nil
}

// Release drops the command log.
func (d *Device) Release() {
	d.executed = nil
}

// Executed returns the commands the queue has executed so far, in order.
func (d *Device) Executed() []Command {
	return d.executed
}

// ClearExecuted empties the command log.
func (d *Device) ClearExecuted() {
	d.executed = d.executed[:0]
}

// StateOf reports the tracked state of a resource created on this device.
func (d *Device) StateOf(res gpu.Resource) gpu.ResourceState {
	if r, ok := res.(*resource); ok {
		return r.state
	}
	return gpu.ResourceStateCommon
}

// BufferData exposes a buffer's CPU shadow for inspection.
func (d *Device) BufferData(res gpu.Resource) []byte {
	if r, ok := res.(*resource); ok {
		return r.data
	}
	return nil
}

func writeView(handle gpu.DescriptorHandle, want gpu.DescriptorHeapType, res gpu.Resource, offset, size uint64) error {
	heap, ok := handle.Heap.(*descriptorHeap)
	if !ok {
		return fmt.Errorf("software: foreign descriptor heap %T", handle.Heap)
	}
	if heap.kind != want {
		return fmt.Errorf("software: heap %q holds %v descriptors, not %v", heap.label, heap.kind, want)
	}
	if handle.Index < 0 || handle.Index >= len(heap.slots) {
		return fmt.Errorf("software: descriptor index %d out of range for heap %q", handle.Index, heap.label)
	}
	heap.slots[handle.Index] = view{res: res, offset: offset, size: size}
	return nil
}
