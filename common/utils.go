package common

import (
	"cmp"
	"unsafe"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Clamp constrains x to the inclusive range [low, high].
//
// Parameters:
//   - x: the value to constrain
//   - low: the inclusive lower bound
//   - high: the inclusive upper bound
//
// Returns:
//   - T: x limited to the range [low, high]
func Clamp[T cmp.Ordered](x, low, high T) T {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// CalcConstantBufferByteSize rounds a byte size up to the next multiple of
// the hardware constant-buffer allocation granularity (256 bytes).
//
// Parameters:
//   - byteSize: the unaligned size in bytes
//
// Returns:
//   - uint32: the size rounded up to a multiple of 256
func CalcConstantBufferByteSize(byteSize uint32) uint32 {
	return (byteSize + 255) &^ 255
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructSize reports the in-memory size of T in bytes.
//
// Returns:
//   - uint32: the size of T
func StructSize[T any]() uint32 {
	var zero T
	return uint32(unsafe.Sizeof(zero))
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}
