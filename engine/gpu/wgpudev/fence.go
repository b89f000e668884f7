package wgpudev

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

var _ gpu.Fence = &fence{}

// pendingSignal ties a fence value to the queue submission it was signaled
// behind.
type pendingSignal struct {
	value      uint64
	queue      *wgpu.Queue
	submission wgpu.SubmissionIndex
}

// fence maps the monotonic-counter contract onto WebGPU submission
// tracking: each signal captures the latest submission index, and waiting
// polls the device until that submission has been processed.
type fence struct {
	device      *wgpu.Device
	completed   uint64
	maxSignaled uint64
	pending     []pendingSignal
}

func (f *fence) CompletedValue() uint64 {
	if len(f.pending) > 0 {
		// A non-blocking poll retires everything when the queue is drained.
		if f.device.Poll(false, nil) {
			f.completed = f.pending[len(f.pending)-1].value
			f.pending = f.pending[:0]
		}
	}
	return f.completed
}

func (f *fence) WaitFor(value uint64) error {
	if value <= f.completed {
		return nil
	}
	if value > f.maxSignaled {
		return fmt.Errorf("%w: value %d, highest signaled %d", gpu.ErrFenceNeverSignaled, value, f.maxSignaled)
	}
	for len(f.pending) > 0 && f.completed < value {
		p := f.pending[0]
		f.pending = f.pending[1:]
		f.device.Poll(true, &wgpu.WrappedSubmissionIndex{
			Queue:           p.queue,
			SubmissionIndex: p.submission,
		})
		f.completed = p.value
	}
	if f.completed < value {
		return fmt.Errorf("%w: value %d, highest signaled %d", gpu.ErrFenceNeverSignaled, value, f.maxSignaled)
	}
	return nil
}

func (f *fence) Release() {
	f.pending = nil
}
