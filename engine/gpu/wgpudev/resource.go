package wgpudev

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

var (
	_ gpu.Resource       = &bufferResource{}
	_ gpu.ResourceWriter = &bufferResource{}
	_ gpu.Resource       = &textureResource{}
)

// bufferResource wraps a wgpu buffer.
type bufferResource struct {
	label string
	size  uint64
	kind  gpu.BufferKind
	queue *wgpu.Queue
	buf   *wgpu.Buffer
}

func (r *bufferResource) Label() string {
	return r.label
}

func (r *bufferResource) Size() uint64 {
	return r.size
}

func (r *bufferResource) Release() {
	if r.buf != nil {
		r.buf.Release()
		r.buf = nil
	}
}

// WriteAt stages a CPU write. Queue.WriteBuffer orders the copy before any
// command buffer submitted afterwards, which matches the upload-heap
// contract.
func (r *bufferResource) WriteAt(offset uint64, data []byte) error {
	if r.kind != gpu.BufferUpload {
		return gpu.ErrNotMappable
	}
	if r.buf == nil {
		return fmt.Errorf("wgpudev: write to released buffer %q", r.label)
	}
	if offset+uint64(len(data)) > r.size {
		return fmt.Errorf("wgpudev: write [%d, %d) past end of %q (%d bytes)",
			offset, offset+uint64(len(data)), r.label, r.size)
	}
	r.queue.WriteBuffer(r.buf, offset, data)
	return nil
}

// textureResource wraps a texture and its render-attachment view. Surface
// back buffers are represented separately by surfaceBuffer.
type textureResource struct {
	label string
	size  uint64
	tex   *wgpu.Texture
	view  *wgpu.TextureView
}

func (r *textureResource) Label() string {
	return r.label
}

func (r *textureResource) Size() uint64 {
	return r.size
}

func (r *textureResource) Release() {
	if r.view != nil {
		r.view.Release()
		r.view = nil
	}
	if r.tex != nil {
		r.tex.Release()
		r.tex = nil
	}
}

// surfaceBuffer is the stand-in for one swap-chain buffer. The surface only
// exposes the currently acquired texture, so the view is resolved through
// the chain at encode time.
type surfaceBuffer struct {
	chain *swapChain
	index int
}

func (r *surfaceBuffer) Label() string {
	return fmt.Sprintf("back buffer %d", r.index)
}

func (r *surfaceBuffer) Size() uint64 {
	return uint64(r.chain.desc.Width) * uint64(r.chain.desc.Height) * 4
}

func (r *surfaceBuffer) Release() {}

type shader struct {
	label  string
	module *wgpu.ShaderModule
}

func (s *shader) Label() string {
	return s.label
}

func (s *shader) Release() {
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
}

type rootSignature struct {
	groupLayouts []*wgpu.BindGroupLayout
	layout       *wgpu.PipelineLayout
}

func (r *rootSignature) Release() {
	if r.layout != nil {
		r.layout.Release()
		r.layout = nil
	}
	for _, bgl := range r.groupLayouts {
		bgl.Release()
	}
	r.groupLayouts = nil
}

type pipelineState struct {
	pipeline *wgpu.RenderPipeline
}

func (p *pipelineState) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
}

// slot is one descriptor heap entry. CBV slots cache the bind group built
// for them, keyed by the layout it was built against.
type slot struct {
	res    gpu.Resource
	offset uint64
	size   uint64

	group    *wgpu.BindGroup
	groupKey *wgpu.BindGroupLayout
}

type descriptorHeap struct {
	label string
	kind  gpu.DescriptorHeapType
	slots []slot
}

func (h *descriptorHeap) Type() gpu.DescriptorHeapType {
	return h.kind
}

func (h *descriptorHeap) NumDescriptors() int {
	return len(h.slots)
}

func (h *descriptorHeap) Handle(i int) gpu.DescriptorHandle {
	return gpu.DescriptorHandle{Heap: h, Index: i}
}

func (h *descriptorHeap) Release() {
	for i := range h.slots {
		if h.slots[i].group != nil {
			h.slots[i].group.Release()
		}
	}
	h.slots = nil
}

func writeSlot(handle gpu.DescriptorHandle, want gpu.DescriptorHeapType, res gpu.Resource, offset, size uint64) error {
	heap, ok := handle.Heap.(*descriptorHeap)
	if !ok {
		return fmt.Errorf("wgpudev: foreign descriptor heap %T", handle.Heap)
	}
	if heap.kind != want {
		return fmt.Errorf("wgpudev: heap %q holds %v descriptors, not %v", heap.label, heap.kind, want)
	}
	if handle.Index < 0 || handle.Index >= len(heap.slots) {
		return fmt.Errorf("wgpudev: descriptor index %d out of range for heap %q", handle.Index, heap.label)
	}
	if old := heap.slots[handle.Index].group; old != nil {
		old.Release()
	}
	heap.slots[handle.Index] = slot{res: res, offset: offset, size: size}
	return nil
}

func heapSlot(handle gpu.DescriptorHandle) (*descriptorHeap, *slot, error) {
	heap, ok := handle.Heap.(*descriptorHeap)
	if !ok {
		return nil, nil, fmt.Errorf("wgpudev: foreign descriptor heap %T", handle.Heap)
	}
	if handle.Index < 0 || handle.Index >= len(heap.slots) {
		return nil, nil, fmt.Errorf("wgpudev: descriptor index %d out of range for heap %q", handle.Index, heap.label)
	}
	s := &heap.slots[handle.Index]
	if s.res == nil {
		return nil, nil, fmt.Errorf("wgpudev: descriptor %q[%d] was never written", heap.label, handle.Index)
	}
	return heap, s, nil
}
