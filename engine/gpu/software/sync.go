package software

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

var (
	_ gpu.CommandQueue = &commandQueue{}
	_ gpu.Fence        = &fence{}
)

// pendingSignal is a fence raise queued behind already-executed work. Work
// itself is applied at Execute; only signal completion is deferred until a
// wait drains the queue, which keeps the CPU/GPU lag observable in tests.
type pendingSignal struct {
	fence *fence
	value uint64
}

type commandQueue struct {
	device *Device
	fifo   []pendingSignal
	dead   bool
}

func (q *commandQueue) Execute(lists ...gpu.CommandList) error {
	if q.dead {
		return errors.New("software: execute on released queue")
	}
	for _, cl := range lists {
		l, ok := cl.(*commandList)
		if !ok {
			return fmt.Errorf("software: foreign command list %T", cl)
		}
		if !l.closed {
			return fmt.Errorf("software: execute of list that was not closed")
		}
		if len(l.errs) > 0 {
			return errors.Join(l.errs...)
		}
		for _, o := range l.ops {
			if err := o.apply(); err != nil {
				return err
			}
			if o.cmd != nil {
				q.device.executed = append(q.device.executed, o.cmd)
			}
		}
	}
	return nil
}

func (q *commandQueue) Signal(f gpu.Fence, value uint64) error {
	if q.dead {
		return errors.New("software: signal on released queue")
	}
	fc, ok := f.(*fence)
	if !ok {
		return fmt.Errorf("software: foreign fence %T", f)
	}
	if value <= fc.maxSignaled {
		return fmt.Errorf("software: fence signal %d is not above previous signal %d", value, fc.maxSignaled)
	}
	fc.queue = q
	fc.maxSignaled = value
	q.fifo = append(q.fifo, pendingSignal{fence: fc, value: value})
	return nil
}

func (q *commandQueue) Release() {
	q.dead = true
	q.fifo = nil
}

type fence struct {
	completed   uint64
	maxSignaled uint64
	queue       *commandQueue
}

func (f *fence) CompletedValue() uint64 {
	return f.completed
}

func (f *fence) WaitFor(value uint64) error {
	if value <= f.completed {
		return nil
	}
	if f.queue == nil || value > f.maxSignaled {
		return fmt.Errorf("%w: value %d, highest signaled %d", gpu.ErrFenceNeverSignaled, value, f.maxSignaled)
	}
	for len(f.queue.fifo) > 0 && f.completed < value {
		item := f.queue.fifo[0]
		f.queue.fifo = f.queue.fifo[1:]
		if item.value > item.fence.completed {
			item.fence.completed = item.value
		}
	}
	if f.completed < value {
		return fmt.Errorf("%w: value %d, highest signaled %d", gpu.ErrFenceNeverSignaled, value, f.maxSignaled)
	}
	return nil
}

func (f *fence) Release() {
	f.queue = nil
}
