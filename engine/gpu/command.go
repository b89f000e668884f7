package gpu

// CommandAllocator owns the storage command lists record into. It may only
// be reset once a fence wait has proven the GPU retired every list recorded
// against it.
type CommandAllocator interface {
	// Reset reclaims the allocator's storage for re-recording.
	Reset() error

	// Release frees the allocator.
	Release()
}

// CommandList records GPU commands between Reset and Close. A closed list is
// handed to CommandQueue.Execute; nothing runs on the GPU until then.
type CommandList interface {
	// Reset reopens the list for recording against the given allocator,
	// optionally binding an initial pipeline state. The list must be closed.
	Reset(allocator CommandAllocator, initial PipelineState) error

	// ResourceBarrier records state transitions. Each Transition's Before
	// must match the resource's state when the GPU reaches the barrier.
	ResourceBarrier(transitions ...Transition)

	// SetViewport binds the rasterizer viewport. Reset clears it; it must be
	// bound every recording session.
	SetViewport(v Viewport)

	// SetScissorRect binds the scissor rectangle. Reset clears it as well.
	SetScissorRect(r ScissorRect)

	// ClearRenderTargetView fills the target behind rtv with a color. The
	// resource must be in the RENDER_TARGET state.
	ClearRenderTargetView(rtv DescriptorHandle, color [4]float32)

	// ClearDepthStencilView resets the depth/stencil buffer behind dsv. The
	// resource must be in the DEPTH_WRITE state.
	ClearDepthStencilView(dsv DescriptorHandle, depth float32, stencil uint8)

	// SetRenderTargets binds one color target and one depth/stencil target
	// for subsequent draws.
	SetRenderTargets(rtv DescriptorHandle, dsv DescriptorHandle)

	// SetDescriptorHeaps binds the shader-visible heaps root descriptor
	// tables index into.
	SetDescriptorHeaps(heaps ...DescriptorHeap)

	// SetRootSignature binds the root signature the current pipeline was
	// created against.
	SetRootSignature(rs RootSignature)

	// SetRootDescriptorTable points root parameter slot at a descriptor in
	// a bound shader-visible heap.
	SetRootDescriptorTable(slot int, handle DescriptorHandle)

	// SetVertexBuffer binds the vertex buffer for input slot 0. The resource
	// must be in the GENERIC_READ state.
	SetVertexBuffer(buf Resource, strideBytes, sizeBytes uint32)

	// SetIndexBuffer binds the index buffer. The resource must be in the
	// GENERIC_READ state.
	SetIndexBuffer(buf Resource, format IndexFormat, sizeBytes uint32)

	// SetPrimitiveTopology selects primitive assembly for subsequent draws.
	SetPrimitiveTopology(t PrimitiveTopology)

	// DrawIndexedInstanced records an indexed draw of one or more instances.
	//
	// Parameters:
	//   - indexCount: indices consumed per instance.
	//   - instanceCount: number of instances, usually 1.
	//   - startIndex: first index within the bound index buffer.
	//   - baseVertex: value added to each index before vertex fetch.
	DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32)

	// CopyBuffer records a full-range copy from src to dst. dst must be in
	// the COPY_DEST state.
	CopyBuffer(dst, src Resource, sizeBytes uint64)

	// Close ends recording. Validating backends surface recording errors
	// here. The list must be closed before Execute.
	Close() error

	// Release frees the list.
	Release()
}

// CommandQueue executes closed command lists and signals fences. Work on a
// queue completes in submission order.
type CommandQueue interface {
	// Execute submits closed command lists for execution.
	Execute(lists ...CommandList) error

	// Signal enqueues a fence signal behind all previously submitted work.
	// The fence reaches value only once that work has completed.
	Signal(f Fence, value uint64) error

	// Release frees the queue.
	Release()
}

// SwapChain is the chain of presentable back buffers for a window surface.
type SwapChain interface {
	// BufferCount returns the number of buffers in the chain.
	BufferCount() int

	// CurrentIndex returns the index of the buffer the next frame renders to.
	CurrentIndex() int

	// BackBuffer returns the i-th buffer resource. After a Resize, buffers
	// are new resources in the COMMON state and must be re-viewed.
	BackBuffer(i int) Resource

	// Resize drops the existing buffers and recreates them at the new size.
	// All GPU work referencing the old buffers must be flushed first.
	Resize(width, height, sampleCount, sampleQuality uint32) error

	// Present queues the current back buffer for display and advances
	// CurrentIndex modulo BufferCount. The buffer must be in the PRESENT
	// state.
	Present() error

	// Release frees the chain and its buffers.
	Release()
}
