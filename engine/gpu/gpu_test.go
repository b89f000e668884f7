package gpu_test

import (
	"testing"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
	"github.com/Carmen-Shannon/forge-go/engine/gpu/software"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSoftwareDevice(t *testing.T) *software.Device {
	t.Helper()
	dev, err := gpu.Open(gpu.WithSoftwareAdapter(), gpu.WithSize(800, 600))
	require.NoError(t, err)
	sw, ok := dev.(*software.Device)
	require.True(t, ok, "software backend expected")
	return sw
}

func TestOpenForcedBackend(t *testing.T) {
	dev := newSoftwareDevice(t)
	assert.Equal(t, gpu.AdapterSoftware, dev.Kind())
	assert.Equal(t, "CPU Reference Adapter", dev.Name())

	_, err := gpu.Open(gpu.WithBackend("missing"))
	assert.ErrorIs(t, err, gpu.ErrBackendNotAvailable)
}

func TestRegisteredContainsSoftware(t *testing.T) {
	assert.Contains(t, gpu.Registered(), gpu.BackendSoftware)
}

func TestFenceTrackerFlush(t *testing.T) {
	dev := newSoftwareDevice(t)
	queue, err := dev.CreateCommandQueue()
	require.NoError(t, err)
	fence, err := dev.CreateFence(0)
	require.NoError(t, err)
	tracker := gpu.NewFenceTracker(queue, fence, 0)

	require.NoError(t, tracker.Flush())
	assert.Equal(t, uint64(1), tracker.CurrentValue())
	assert.Equal(t, uint64(1), fence.CompletedValue())

	require.NoError(t, tracker.Flush())
	require.NoError(t, tracker.Flush())
	assert.Equal(t, uint64(3), fence.CompletedValue())
}

func TestFenceWaitWithoutSignal(t *testing.T) {
	dev := newSoftwareDevice(t)
	fence, err := dev.CreateFence(0)
	require.NoError(t, err)
	assert.ErrorIs(t, fence.WaitFor(5), gpu.ErrFenceNeverSignaled)
}

func TestRecorderLifecycle(t *testing.T) {
	dev := newSoftwareDevice(t)
	queue, err := dev.CreateCommandQueue()
	require.NoError(t, err)
	fence, err := dev.CreateFence(0)
	require.NoError(t, err)
	tracker := gpu.NewFenceTracker(queue, fence, 0)
	rec, err := gpu.NewCommandRecorder(dev, queue, tracker)
	require.NoError(t, err)

	_, err = rec.Begin(nil)
	require.NoError(t, err)

	// A second Begin before the session ends is a bug.
	_, err = rec.Begin(nil)
	assert.ErrorIs(t, err, gpu.ErrRecorderBusy)

	require.NoError(t, rec.EndAndSubmit())

	// The allocator stays in flight until a fence retires the submission.
	_, err = rec.Begin(nil)
	assert.ErrorIs(t, err, gpu.ErrAllocatorInFlight)

	require.NoError(t, tracker.Flush())
	_, err = rec.Begin(nil)
	require.NoError(t, err)
	require.NoError(t, rec.Abort())
}

func TestRecorderEndWithoutBegin(t *testing.T) {
	dev := newSoftwareDevice(t)
	queue, err := dev.CreateCommandQueue()
	require.NoError(t, err)
	fence, err := dev.CreateFence(0)
	require.NoError(t, err)
	rec, err := gpu.NewCommandRecorder(dev, queue, gpu.NewFenceTracker(queue, fence, 0))
	require.NoError(t, err)
	assert.ErrorIs(t, rec.EndAndSubmit(), gpu.ErrNotRecording)
	assert.ErrorIs(t, rec.Abort(), gpu.ErrNotRecording)
}

func TestDefaultBufferUpload(t *testing.T) {
	dev := newSoftwareDevice(t)
	queue, err := dev.CreateCommandQueue()
	require.NoError(t, err)
	fence, err := dev.CreateFence(0)
	require.NoError(t, err)
	tracker := gpu.NewFenceTracker(queue, fence, 0)
	rec, err := gpu.NewCommandRecorder(dev, queue, tracker)
	require.NoError(t, err)

	list, err := rec.Begin(nil)
	require.NoError(t, err)

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	def, uploader, err := gpu.NewDefaultBuffer(dev, list, "vertex data", data, gpu.BufferUsageVertex)
	require.NoError(t, err)

	require.NoError(t, rec.EndAndSubmit())
	require.NoError(t, tracker.Flush())
	uploader.Release()

	assert.Equal(t, gpu.ResourceStateGenericRead, dev.StateOf(def))
	assert.Equal(t, data, dev.BufferData(def))

	// The recorded stream is barrier, copy, barrier.
	cmds := dev.Executed()
	require.Len(t, cmds, 3)
	first, ok := cmds[0].(software.Barrier)
	require.True(t, ok)
	require.Len(t, first.Transitions, 1)
	assert.Equal(t, gpu.ResourceStateCommon, first.Transitions[0].Before)
	assert.Equal(t, gpu.ResourceStateCopyDest, first.Transitions[0].After)
	cp, ok := cmds[1].(software.Copy)
	require.True(t, ok)
	assert.Equal(t, uint64(len(data)), cp.Size)
	last, ok := cmds[2].(software.Barrier)
	require.True(t, ok)
	assert.Equal(t, gpu.ResourceStateGenericRead, last.Transitions[0].After)
}

func TestUploadBufferConstantPadding(t *testing.T) {
	dev := newSoftwareDevice(t)

	ub, err := gpu.NewUploadBuffer(dev, "object constants", 2, 64, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(256), ub.ElementByteSize())
	assert.Equal(t, uint64(512), ub.Resource().Size())

	payload := make([]byte, 64)
	payload[0] = 0xAB
	require.NoError(t, ub.CopyData(1, payload))
	assert.Equal(t, byte(0xAB), dev.BufferData(ub.Resource())[256])

	assert.Error(t, ub.CopyData(2, payload), "index past the end")
	assert.Error(t, ub.CopyData(-1, payload))
	assert.Error(t, ub.CopyData(0, make([]byte, 300)), "payload larger than the stride")
}

func TestUploadBufferUnpadded(t *testing.T) {
	dev := newSoftwareDevice(t)
	ub, err := gpu.NewUploadBuffer(dev, "staging", 4, 28, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(28), ub.ElementByteSize())
}
