package gpu

// Fence is a monotonically increasing GPU completion counter. The queue
// raises it via Signal; the CPU reads or blocks on it to learn how far the
// GPU has progressed.
type Fence interface {
	// CompletedValue returns the highest value the GPU has signaled so far.
	// Never decreases.
	CompletedValue() uint64

	// WaitFor blocks until CompletedValue reaches value. Returns immediately
	// if it already has. Backends that can prove the value will never be
	// signaled return ErrFenceNeverSignaled instead of blocking forever.
	WaitFor(value uint64) error

	// Release frees the fence.
	Release()
}

// FenceTracker pairs a fence with the queue that signals it and owns the
// target value. Flush implements the full CPU/GPU synchronization point:
// after it returns, the GPU has completed every previously submitted command.
type FenceTracker struct {
	queue   CommandQueue
	fence   Fence
	current uint64
}

// NewFenceTracker creates a tracker over queue and fence. The fence's
// initial completed value must equal initial.
func NewFenceTracker(queue CommandQueue, fence Fence, initial uint64) *FenceTracker {
	return &FenceTracker{queue: queue, fence: fence, current: initial}
}

// Fence returns the tracked fence.
func (t *FenceTracker) Fence() Fence {
	return t.fence
}

// CurrentValue returns the most recently signaled target value.
func (t *FenceTracker) CurrentValue() uint64 {
	return t.current
}

// Flush advances the target value, signals it behind all queued work and
// blocks until the GPU reaches it. Skips the wait when the fence already
// caught up.
func (t *FenceTracker) Flush() error {
	t.current++
	if err := t.queue.Signal(t.fence, t.current); err != nil {
		return err
	}
	if t.fence.CompletedValue() < t.current {
		return t.fence.WaitFor(t.current)
	}
	return nil
}
