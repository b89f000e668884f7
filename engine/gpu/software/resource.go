package software

import (
	"fmt"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

var (
	_ gpu.Resource       = &resource{}
	_ gpu.ResourceWriter = &resource{}
)

// resource is a tracked allocation. Buffers carry a CPU byte shadow so copy
// commands actually move data and tests can read the result back.
type resource struct {
	label   string
	size    uint64
	kind    gpu.BufferKind
	texture bool
	state   gpu.ResourceState
	data    []byte
	dead    bool
}

func (r *resource) Label() string {
	return r.label
}

func (r *resource) Size() uint64 {
	return r.size
}

func (r *resource) Release() {
	r.dead = true
	r.data = nil
}

// WriteAt copies into the CPU shadow. Only upload buffers accept writes.
func (r *resource) WriteAt(offset uint64, data []byte) error {
	if r.texture || r.kind != gpu.BufferUpload {
		return gpu.ErrNotMappable
	}
	if r.dead {
		return fmt.Errorf("software: write to released resource %q", r.label)
	}
	if offset+uint64(len(data)) > r.size {
		return fmt.Errorf("software: write [%d, %d) past end of %q (%d bytes)",
			offset, offset+uint64(len(data)), r.label, r.size)
	}
	copy(r.data[offset:], data)
	return nil
}

// stateMatches treats COMMON and PRESENT as interchangeable, matching how
// presentable buffers decay.
func stateMatches(actual, expected gpu.ResourceState) bool {
	if actual == expected {
		return true
	}
	idle := func(s gpu.ResourceState) bool {
		return s == gpu.ResourceStateCommon || s == gpu.ResourceStatePresent
	}
	return idle(actual) && idle(expected)
}

// view is one populated descriptor slot.
type view struct {
	res    gpu.Resource
	offset uint64
	size   uint64
}

type descriptorHeap struct {
	label string
	kind  gpu.DescriptorHeapType
	slots []view
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
	h.slots = nil
}

// resolve returns the resource a handle points at, if the slot was written.
func resolve(handle gpu.DescriptorHandle) (*resource, error) {
	heap, ok := handle.Heap.(*descriptorHeap)
	if !ok {
		return nil, fmt.Errorf("software: foreign descriptor heap %T", handle.Heap)
	}
	if handle.Index < 0 || handle.Index >= len(heap.slots) {
		return nil, fmt.Errorf("software: descriptor index %d out of range for heap %q", handle.Index, heap.label)
	}
	v := heap.slots[handle.Index]
	if v.res == nil {
		return nil, fmt.Errorf("software: descriptor %q[%d] was never written", heap.label, handle.Index)
	}
	res, ok := v.res.(*resource)
	if !ok {
		return nil, fmt.Errorf("software: foreign resource %T in heap %q", v.res, heap.label)
	}
	return res, nil
}

type shader struct {
	label  string
	source string
}

func (s *shader) Label() string {
	return s.label
}

func (s *shader) Release() {}

type rootSignature struct {
	desc gpu.RootSignatureDescriptor
}

func (r *rootSignature) Release() {}

type pipelineState struct {
	desc gpu.PipelineStateDescriptor
}

func (p *pipelineState) Release() {}
