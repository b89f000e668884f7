package gpu

// DescriptorHeapType selects what kind of views a heap holds.
type DescriptorHeapType int

const (
	// DescriptorHeapRTV holds render-target views.
	DescriptorHeapRTV DescriptorHeapType = iota
	// DescriptorHeapDSV holds depth-stencil views.
	DescriptorHeapDSV
	// DescriptorHeapCBV holds constant-buffer views. CBV heaps are
	// shader-visible and may be bound with SetDescriptorHeaps.
	DescriptorHeapCBV
)

// String returns "RTV", "DSV" or "CBV".
func (t DescriptorHeapType) String() string {
	switch t {
	case DescriptorHeapRTV:
		return "RTV"
	case DescriptorHeapDSV:
		return "DSV"
	case DescriptorHeapCBV:
		return "CBV"
	default:
		return "UNKNOWN"
	}
}

// DescriptorHeapDescriptor describes a descriptor heap allocation.
type DescriptorHeapDescriptor struct {
	Label          string
	Type           DescriptorHeapType
	NumDescriptors int
}

// DescriptorHeap is a contiguous run of descriptor slots. Slot i lives at
// the heap start plus i times the device's stride for the heap's type.
type DescriptorHeap interface {
	// Type returns what kind of views this heap holds.
	Type() DescriptorHeapType

	// NumDescriptors returns the heap's capacity.
	NumDescriptors() int

	// Handle returns the handle addressing slot i.
	Handle(i int) DescriptorHandle

	// Release frees the heap.
	Release()
}

// DescriptorHandle addresses one slot of a descriptor heap.
type DescriptorHandle struct {
	Heap  DescriptorHeap
	Index int
}

// Offset returns a handle n slots further into the same heap.
func (h DescriptorHandle) Offset(n int) DescriptorHandle {
	return DescriptorHandle{Heap: h.Heap, Index: h.Index + n}
}
