package gpu

// AdapterKind distinguishes hardware adapters from software rasterizers.
type AdapterKind int

const (
	// AdapterHardware is a real GPU.
	AdapterHardware AdapterKind = iota
	// AdapterSoftware is a CPU fallback rasterizer.
	AdapterSoftware
)

// String returns "hardware" or "software".
func (k AdapterKind) String() string {
	if k == AdapterSoftware {
		return "software"
	}
	return "hardware"
}

// Limits reports per-device constants queried once at device creation.
type Limits struct {
	// RTVDescriptorSize is the stride in bytes between consecutive
	// render-target-view descriptors in a heap.
	RTVDescriptorSize uint32
	// DSVDescriptorSize is the stride for depth-stencil-view descriptors.
	DSVDescriptorSize uint32
	// CBVDescriptorSize is the stride for constant-buffer-view descriptors.
	CBVDescriptorSize uint32
}

// BufferKind selects the memory heap a buffer lives in.
type BufferKind int

const (
	// BufferDefault is GPU-local memory. Not CPU-mappable; populated via
	// CommandList.CopyBuffer from an upload buffer.
	BufferDefault BufferKind = iota
	// BufferUpload is CPU-visible memory the GPU can read from.
	BufferUpload
)

// BufferUsage hints what a buffer will bind as.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageConstant
	BufferUsageCopySrc
	BufferUsageCopyDst
)

// BufferDescriptor describes a buffer allocation.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Kind  BufferKind
	Usage BufferUsage
}

// DepthStencilDescriptor describes a depth/stencil texture allocation.
type DepthStencilDescriptor struct {
	Label         string
	Width, Height uint32
	Format        Format
	SampleCount   uint32
	SampleQuality uint32
	ClearDepth    float32
	ClearStencil  uint8
}

// SwapChainDescriptor describes the presentable buffer chain for a window
// surface.
type SwapChainDescriptor struct {
	Width, Height uint32
	Format        Format
	BufferCount   int
	SampleCount   uint32
	SampleQuality uint32
}

// Device is the root GPU object. All resources, views, pipelines and
// submission machinery are created through it. A Device and everything it
// creates must only be used from a single goroutine.
type Device interface {
	// Kind reports whether this device sits on a hardware or software adapter.
	Kind() AdapterKind

	// Name returns the adapter name for logs.
	Name() string

	// Limits returns the per-device descriptor strides.
	Limits() Limits

	// MSAAQualityLevels returns the number of quality levels the device
	// supports for the given format at the given sample count. Zero means
	// the combination is unsupported.
	//
	// Parameters:
	//   - format: the render-target format to query.
	//   - sampleCount: samples per pixel, e.g. 4.
	//
	// Returns:
	//   - uint32: supported quality level count, 0 if unsupported.
	MSAAQualityLevels(format Format, sampleCount uint32) uint32

	// CreateFence creates a fence with the given initial completed value.
	CreateFence(initial uint64) (Fence, error)

	// CreateCommandQueue creates the queue command lists are executed on.
	CreateCommandQueue() (CommandQueue, error)

	// CreateCommandAllocator creates backing storage for recorded commands.
	// An allocator may only be reset once the GPU has finished all lists
	// recorded against it.
	CreateCommandAllocator() (CommandAllocator, error)

	// CreateCommandList creates a command list in the closed state, recording
	// into the given allocator.
	//
	// Parameters:
	//   - allocator: storage for recorded commands.
	//   - initial: pipeline state bound on the first Reset, may be nil.
	//
	// Returns:
	//   - CommandList: the created list, closed.
	//   - error: creation failure.
	CreateCommandList(allocator CommandAllocator, initial PipelineState) (CommandList, error)

	// CreateSwapChain creates the presentable buffer chain for the surface
	// this device was opened against.
	CreateSwapChain(queue CommandQueue, desc SwapChainDescriptor) (SwapChain, error)

	// CreateDescriptorHeap allocates a contiguous run of descriptors.
	CreateDescriptorHeap(desc DescriptorHeapDescriptor) (DescriptorHeap, error)

	// CreateBuffer allocates a buffer on the requested heap.
	CreateBuffer(desc BufferDescriptor) (Resource, error)

	// CreateDepthStencilBuffer allocates a depth/stencil texture in the
	// COMMON state.
	CreateDepthStencilBuffer(desc DepthStencilDescriptor) (Resource, error)

	// CreateRenderTargetView writes an RTV for the resource into the heap
	// slot the handle points at.
	CreateRenderTargetView(res Resource, handle DescriptorHandle) error

	// CreateDepthStencilView writes a DSV for the resource into the heap
	// slot the handle points at.
	CreateDepthStencilView(res Resource, handle DescriptorHandle) error

	// CreateConstantBufferView writes a CBV covering [offset, offset+size)
	// of the buffer into the heap slot the handle points at. Size must be a
	// multiple of 256.
	CreateConstantBufferView(res Resource, offset, size uint64, handle DescriptorHandle) error

	// CompileShader compiles shader source. Entry points are selected at
	// pipeline creation.
	CompileShader(source, label string) (Shader, error)

	// CreateRootSignature creates the binding contract between root
	// parameters and pipeline resources.
	CreateRootSignature(desc RootSignatureDescriptor) (RootSignature, error)

	// CreatePipelineState bakes shaders, input layout, formats and sample
	// settings into an immutable pipeline object.
	CreatePipelineState(desc PipelineStateDescriptor) (PipelineState, error)

	// Release destroys the device. All child objects must be released first
	// and all GPU work flushed.
	Release()
}
