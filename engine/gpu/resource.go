package gpu

// ResourceState describes how a resource is currently usable by the GPU.
// A resource must be transitioned (via CommandList.ResourceBarrier) into the
// state an operation requires before that operation is recorded.
type ResourceState int

const (
	// ResourceStateCommon is the initial state of freshly created resources.
	ResourceStateCommon ResourceState = iota
	// ResourceStatePresent marks a swap-chain buffer ready for presentation.
	ResourceStatePresent
	// ResourceStateRenderTarget marks a texture writable as a color target.
	ResourceStateRenderTarget
	// ResourceStateDepthWrite marks a texture writable as a depth/stencil target.
	ResourceStateDepthWrite
	// ResourceStateCopyDest marks a resource as the destination of a copy.
	ResourceStateCopyDest
	// ResourceStateGenericRead marks a resource readable by any shader stage
	// or fixed-function unit.
	ResourceStateGenericRead
)

// String returns a short name for the state, for logs and validation errors.
func (s ResourceState) String() string {
	switch s {
	case ResourceStateCommon:
		return "COMMON"
	case ResourceStatePresent:
		return "PRESENT"
	case ResourceStateRenderTarget:
		return "RENDER_TARGET"
	case ResourceStateDepthWrite:
		return "DEPTH_WRITE"
	case ResourceStateCopyDest:
		return "COPY_DEST"
	case ResourceStateGenericRead:
		return "GENERIC_READ"
	default:
		return "UNKNOWN"
	}
}

// Transition describes a single resource state change recorded into a
// command list. Before must match the resource's actual state at the point
// the GPU executes the barrier.
type Transition struct {
	Resource Resource
	Before   ResourceState
	After    ResourceState
}

// Resource is a GPU allocation: a buffer or a texture. Resources are created
// through a Device and released explicitly.
type Resource interface {
	// Label returns the debug name given at creation.
	Label() string

	// Size returns the allocation size in bytes. For textures this is the
	// backend's estimate of the subresource footprint.
	Size() uint64

	// Release frees the allocation. The resource must not be referenced by
	// any command list the GPU has not finished executing.
	Release()
}

// Format identifies a texel or depth/stencil layout.
type Format int

const (
	FormatUnknown Format = iota
	// FormatBGRA8Unorm is the usual swap-chain color format.
	FormatBGRA8Unorm
	// FormatRGBA8Unorm is an alternate color format some surfaces prefer.
	FormatRGBA8Unorm
	// FormatDepth24Stencil8 is the depth/stencil format used for depth buffers.
	FormatDepth24Stencil8
)

// IndexFormat identifies the element width of an index buffer.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// PrimitiveTopology selects how vertices are assembled into primitives.
type PrimitiveTopology int

const (
	TopologyTriangleList PrimitiveTopology = iota
	TopologyLineList
	TopologyPointList
)

// Viewport maps normalized device coordinates onto a rectangle of the render
// target, with a depth range.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// ScissorRect restricts rasterization to a pixel rectangle.
type ScissorRect struct {
	Left, Top     int32
	Right, Bottom int32
}
