package gpu

// CommandRecorder owns one allocator/list pair and enforces the recording
// lifecycle: the allocator is only reset after a fence proves the GPU retired
// its previous submission, and the list only reopens once per session.
type CommandRecorder struct {
	allocator CommandAllocator
	list      CommandList
	queue     CommandQueue
	tracker   *FenceTracker

	recording    bool
	submitted    bool
	submitSerial uint64
}

// NewCommandRecorder creates a recorder with a fresh allocator and a closed
// command list on device.
func NewCommandRecorder(device Device, queue CommandQueue, tracker *FenceTracker) (*CommandRecorder, error) {
	alloc, err := device.CreateCommandAllocator()
	if err != nil {
		return nil, err
	}
	list, err := device.CreateCommandList(alloc, nil)
	if err != nil {
		alloc.Release()
		return nil, err
	}
	return &CommandRecorder{
		allocator: alloc,
		list:      list,
		queue:     queue,
		tracker:   tracker,
	}, nil
}

// Begin resets the allocator and reopens the command list with the given
// pipeline state, returning the list ready for recording.
//
// Returns:
//   - CommandList: the open list.
//   - error: ErrRecorderBusy if a session is already open, or
//     ErrAllocatorInFlight if the previous submission has not been retired
//     by a completed fence.
func (r *CommandRecorder) Begin(initial PipelineState) (CommandList, error) {
	if r.recording {
		return nil, ErrRecorderBusy
	}
	if r.submitted && r.tracker.Fence().CompletedValue() <= r.submitSerial {
		return nil, ErrAllocatorInFlight
	}
	if err := r.allocator.Reset(); err != nil {
		return nil, err
	}
	if err := r.list.Reset(r.allocator, initial); err != nil {
		return nil, err
	}
	r.recording = true
	return r.list, nil
}

// EndAndSubmit closes the open list and executes it on the queue. The
// submission is considered in flight until a fence value signaled after it
// completes.
func (r *CommandRecorder) EndAndSubmit() error {
	if !r.recording {
		return ErrNotRecording
	}
	r.recording = false
	if err := r.list.Close(); err != nil {
		return err
	}
	if err := r.queue.Execute(r.list); err != nil {
		return err
	}
	r.submitted = true
	r.submitSerial = r.tracker.CurrentValue()
	return nil
}

// Abort closes and discards the open session without executing it.
func (r *CommandRecorder) Abort() error {
	if !r.recording {
		return ErrNotRecording
	}
	r.recording = false
	return r.list.Close()
}

// List returns the underlying command list. Valid between Begin and
// EndAndSubmit.
func (r *CommandRecorder) List() CommandList {
	return r.list
}

// Release frees the list and allocator. All submitted work must be flushed
// first.
func (r *CommandRecorder) Release() {
	r.list.Release()
	r.allocator.Release()
}
