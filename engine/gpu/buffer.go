package gpu

import (
	"fmt"

	"github.com/Carmen-Shannon/forge-go/common"
)

// ResourceWriter is implemented by CPU-mappable resources (upload heap).
type ResourceWriter interface {
	// WriteAt copies data into the resource at the given byte offset. The
	// write is visible to GPU reads submitted afterwards.
	WriteAt(offset uint64, data []byte) error
}

// UploadBuffer is a CPU-writable array of fixed-size elements, typically
// used for per-frame constant data. When constant is set, each element is
// padded to the 256-byte constant buffer alignment.
type UploadBuffer struct {
	res         Resource
	writer      ResourceWriter
	elementSize uint32
	count       uint32
}

// NewUploadBuffer allocates an upload-heap buffer holding count elements of
// elementByteSize bytes each.
//
// Parameters:
//   - device: the device to allocate on.
//   - label: debug name.
//   - count: number of elements.
//   - elementByteSize: unpadded size of one element.
//   - constant: pad each element to 256 bytes for constant-buffer binding.
//
// Returns:
//   - *UploadBuffer: the created buffer.
//   - error: allocation failure, or ErrNotMappable if the backend's upload
//     resources do not support CPU writes.
func NewUploadBuffer(device Device, label string, count, elementByteSize uint32, constant bool) (*UploadBuffer, error) {
	size := elementByteSize
	usage := BufferUsage(BufferUsageCopySrc)
	if constant {
		size = common.CalcConstantBufferByteSize(elementByteSize)
		usage |= BufferUsageConstant
	}
	res, err := device.CreateBuffer(BufferDescriptor{
		Label: label,
		Size:  uint64(size) * uint64(count),
		Kind:  BufferUpload,
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	w, ok := res.(ResourceWriter)
	if !ok {
		res.Release()
		return nil, ErrNotMappable
	}
	return &UploadBuffer{res: res, writer: w, elementSize: size, count: count}, nil
}

// Resource returns the underlying buffer resource.
func (b *UploadBuffer) Resource() Resource {
	return b.res
}

// ElementByteSize returns the padded per-element stride.
func (b *UploadBuffer) ElementByteSize() uint32 {
	return b.elementSize
}

// CopyData writes one element's worth of bytes at the given element index.
func (b *UploadBuffer) CopyData(index int, data []byte) error {
	if index < 0 || uint32(index) >= b.count {
		return fmt.Errorf("gpu: upload buffer index %d out of range [0, %d)", index, b.count)
	}
	if uint32(len(data)) > b.elementSize {
		return fmt.Errorf("gpu: element data %d bytes exceeds stride %d", len(data), b.elementSize)
	}
	return b.writer.WriteAt(uint64(index)*uint64(b.elementSize), data)
}

// Release frees the buffer.
func (b *UploadBuffer) Release() {
	b.res.Release()
}

// NewDefaultBuffer creates a GPU-local buffer initialized with data. The
// copy is recorded into list: the buffer transitions COMMON to COPY_DEST,
// receives the data from a staging upload buffer, then transitions to
// GENERIC_READ. The returned uploader must be kept alive until the list has
// been executed and flushed, then released by the caller.
//
// Parameters:
//   - device: the device to allocate on.
//   - list: an open command list the copy is recorded into.
//   - label: debug name for the default buffer.
//   - data: initial contents.
//   - usage: what the default buffer will bind as.
//
// Returns:
//   - Resource: the default-heap buffer, left in GENERIC_READ once the list
//     executes.
//   - Resource: the staging uploader to release after the flush.
//   - error: allocation or write failure.
func NewDefaultBuffer(device Device, list CommandList, label string, data []byte, usage BufferUsage) (Resource, Resource, error) {
	def, err := device.CreateBuffer(BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Kind:  BufferDefault,
		Usage: usage | BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, err
	}
	up, err := device.CreateBuffer(BufferDescriptor{
		Label: label + " uploader",
		Size:  uint64(len(data)),
		Kind:  BufferUpload,
		Usage: BufferUsageCopySrc,
	})
	if err != nil {
		def.Release()
		return nil, nil, err
	}
	w, ok := up.(ResourceWriter)
	if !ok {
		up.Release()
		def.Release()
		return nil, nil, ErrNotMappable
	}
	if err := w.WriteAt(0, data); err != nil {
		up.Release()
		def.Release()
		return nil, nil, err
	}

	list.ResourceBarrier(Transition{Resource: def, Before: ResourceStateCommon, After: ResourceStateCopyDest})
	list.CopyBuffer(def, up, uint64(len(data)))
	list.ResourceBarrier(Transition{Resource: def, Before: ResourceStateCopyDest, After: ResourceStateGenericRead})
	return def, up, nil
}
