package gpu

import "errors"

// Common device and submission errors.
var (
	// ErrNoAdapter is returned when neither a hardware nor a software
	// adapter could be opened.
	ErrNoAdapter = errors.New("gpu: no usable adapter")

	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("gpu: backend not available")

	// ErrRecorderBusy is returned by CommandRecorder.Begin while a recording
	// session is already open.
	ErrRecorderBusy = errors.New("gpu: command list already recording")

	// ErrAllocatorInFlight is returned by CommandRecorder.Begin while the
	// allocator's previously submitted work has not yet been retired by a
	// completed fence.
	ErrAllocatorInFlight = errors.New("gpu: allocator has unretired work")

	// ErrNotRecording is returned when a close or submit is attempted with
	// no open recording session.
	ErrNotRecording = errors.New("gpu: command list is not recording")

	// ErrFenceNeverSignaled is returned by a wait on a fence value that no
	// queue signal covers; waiting would block forever.
	ErrFenceNeverSignaled = errors.New("gpu: wait on a fence value that was never signaled")

	// ErrInvalidTransition is reported when a resource barrier's before-state
	// does not match the resource's tracked state (validating backends only).
	ErrInvalidTransition = errors.New("gpu: resource barrier does not match tracked state")

	// ErrNotMappable is returned when CPU access is requested on a
	// GPU-local (default heap) resource.
	ErrNotMappable = errors.New("gpu: resource is not CPU-mappable")
)
