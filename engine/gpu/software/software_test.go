package software_test

import (
	"testing"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
	"github.com/Carmen-Shannon/forge-go/engine/gpu/software"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	device *software.Device
	queue  gpu.CommandQueue
	alloc  gpu.CommandAllocator
	list   gpu.CommandList
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dev, err := software.New(gpu.Options{Width: 640, Height: 480})
	require.NoError(t, err)
	queue, err := dev.CreateCommandQueue()
	require.NoError(t, err)
	alloc, err := dev.CreateCommandAllocator()
	require.NoError(t, err)
	list, err := dev.CreateCommandList(alloc, nil)
	require.NoError(t, err)
	return &harness{device: dev, queue: queue, alloc: alloc, list: list}
}

func (h *harness) open(t *testing.T) {
	t.Helper()
	require.NoError(t, h.list.Reset(h.alloc, nil))
}

func TestBarrierRejectsWrongBeforeState(t *testing.T) {
	h := newHarness(t)
	buf, err := h.device.CreateBuffer(gpu.BufferDescriptor{
		Label: "mesh", Size: 16, Kind: gpu.BufferDefault, Usage: gpu.BufferUsageVertex,
	})
	require.NoError(t, err)

	h.open(t)
	h.list.ResourceBarrier(gpu.Transition{
		Resource: buf,
		Before:   gpu.ResourceStateRenderTarget,
		After:    gpu.ResourceStateCopyDest,
	})
	require.NoError(t, h.list.Close())
	err = h.queue.Execute(h.list)
	assert.ErrorIs(t, err, gpu.ErrInvalidTransition)

	// The failed barrier must not move the tracked state.
	assert.Equal(t, gpu.ResourceStateCommon, h.device.StateOf(buf))
}

func TestBarrierTreatsCommonAsPresent(t *testing.T) {
	h := newHarness(t)
	sc, err := h.device.CreateSwapChain(h.queue, gpu.SwapChainDescriptor{
		Width: 640, Height: 480, Format: gpu.FormatBGRA8Unorm, BufferCount: 2, SampleCount: 1,
	})
	require.NoError(t, err)

	// Back buffers idle in PRESENT; a barrier out of COMMON is the same
	// idle state and must validate.
	h.open(t)
	h.list.ResourceBarrier(gpu.Transition{
		Resource: sc.BackBuffer(0),
		Before:   gpu.ResourceStateCommon,
		After:    gpu.ResourceStateRenderTarget,
	})
	require.NoError(t, h.list.Close())
	require.NoError(t, h.queue.Execute(h.list))
	assert.Equal(t, gpu.ResourceStateRenderTarget, h.device.StateOf(sc.BackBuffer(0)))
}

func TestDrawWithoutViewportFailsAtClose(t *testing.T) {
	h := newHarness(t)
	h.open(t)
	h.list.DrawIndexedInstanced(36, 1, 0, 0)
	assert.Error(t, h.list.Close())
}

func TestClearRequiresRenderTargetState(t *testing.T) {
	h := newHarness(t)
	sc, err := h.device.CreateSwapChain(h.queue, gpu.SwapChainDescriptor{
		Width: 640, Height: 480, Format: gpu.FormatBGRA8Unorm, BufferCount: 2, SampleCount: 1,
	})
	require.NoError(t, err)
	rtvHeap, err := h.device.CreateDescriptorHeap(gpu.DescriptorHeapDescriptor{
		Label: "rtv", Type: gpu.DescriptorHeapRTV, NumDescriptors: 2,
	})
	require.NoError(t, err)
	require.NoError(t, h.device.CreateRenderTargetView(sc.BackBuffer(0), rtvHeap.Handle(0)))

	// Clear while the buffer is still in PRESENT.
	h.open(t)
	h.list.ClearRenderTargetView(rtvHeap.Handle(0), [4]float32{0, 0, 0, 1})
	require.NoError(t, h.list.Close())
	assert.ErrorIs(t, h.queue.Execute(h.list), gpu.ErrInvalidTransition)
}

func TestRecordOnClosedListSurfacesAtClose(t *testing.T) {
	h := newHarness(t)
	h.list.SetViewport(gpu.Viewport{Width: 10, Height: 10, MaxDepth: 1})
	err := h.queue.Execute(h.list)
	assert.ErrorIs(t, err, gpu.ErrNotRecording)
}

func TestExecuteRejectsOpenList(t *testing.T) {
	h := newHarness(t)
	h.open(t)
	assert.Error(t, h.queue.Execute(h.list))
}

func TestDeferredSignalRetirement(t *testing.T) {
	h := newHarness(t)
	fence, err := h.device.CreateFence(0)
	require.NoError(t, err)

	require.NoError(t, h.queue.Signal(fence, 1))
	require.NoError(t, h.queue.Signal(fence, 2))

	// Completion only advances when something waits.
	assert.Equal(t, uint64(0), fence.CompletedValue())
	require.NoError(t, fence.WaitFor(1))
	assert.Equal(t, uint64(1), fence.CompletedValue())
	require.NoError(t, fence.WaitFor(2))
	assert.Equal(t, uint64(2), fence.CompletedValue())

	assert.ErrorIs(t, fence.WaitFor(3), gpu.ErrFenceNeverSignaled)
}

func TestSignalMustBeMonotonic(t *testing.T) {
	h := newHarness(t)
	fence, err := h.device.CreateFence(0)
	require.NoError(t, err)
	require.NoError(t, h.queue.Signal(fence, 2))
	assert.Error(t, h.queue.Signal(fence, 2))
	assert.Error(t, h.queue.Signal(fence, 1))
}

func TestSwapChainPresentCycle(t *testing.T) {
	h := newHarness(t)
	sc, err := h.device.CreateSwapChain(h.queue, gpu.SwapChainDescriptor{
		Width: 640, Height: 480, Format: gpu.FormatBGRA8Unorm, BufferCount: 2, SampleCount: 1,
	})
	require.NoError(t, err)

	require.Equal(t, 0, sc.CurrentIndex())
	require.NoError(t, sc.Present())
	require.Equal(t, 1, sc.CurrentIndex())
	require.NoError(t, sc.Present())
	require.Equal(t, 0, sc.CurrentIndex())

	cmds := h.device.Executed()
	require.Len(t, cmds, 2)
	assert.Equal(t, software.Present{Buffer: 0}, cmds[0])
	assert.Equal(t, software.Present{Buffer: 1}, cmds[1])
}

func TestSwapChainPresentRequiresPresentState(t *testing.T) {
	h := newHarness(t)
	sc, err := h.device.CreateSwapChain(h.queue, gpu.SwapChainDescriptor{
		Width: 640, Height: 480, Format: gpu.FormatBGRA8Unorm, BufferCount: 2, SampleCount: 1,
	})
	require.NoError(t, err)

	h.open(t)
	h.list.ResourceBarrier(gpu.Transition{
		Resource: sc.BackBuffer(0),
		Before:   gpu.ResourceStatePresent,
		After:    gpu.ResourceStateRenderTarget,
	})
	require.NoError(t, h.list.Close())
	require.NoError(t, h.queue.Execute(h.list))

	assert.ErrorIs(t, sc.Present(), gpu.ErrInvalidTransition)
}

func TestSwapChainResize(t *testing.T) {
	h := newHarness(t)
	sc, err := h.device.CreateSwapChain(h.queue, gpu.SwapChainDescriptor{
		Width: 640, Height: 480, Format: gpu.FormatBGRA8Unorm, BufferCount: 2, SampleCount: 1,
	})
	require.NoError(t, err)
	require.NoError(t, sc.Present())
	require.Equal(t, 1, sc.CurrentIndex())

	assert.Error(t, sc.Resize(0, 300, 1, 0))

	require.NoError(t, sc.Resize(320, 240, 4, 0))
	assert.Equal(t, 0, sc.CurrentIndex(), "resize restarts at buffer 0")
	assert.Equal(t, gpu.ResourceStatePresent, h.device.StateOf(sc.BackBuffer(0)))
}

func TestPipelineEntryPointValidation(t *testing.T) {
	h := newHarness(t)
	sh, err := h.device.CompileShader("fn vs_main() {}\nfn fs_main() {}", "color")
	require.NoError(t, err)

	_, err = h.device.CreatePipelineState(gpu.PipelineStateDescriptor{
		Label: "ok", Shader: sh, VSEntryPoint: "vs_main", PSEntryPoint: "fs_main",
		RenderTargetFormat: gpu.FormatBGRA8Unorm, SampleCount: 1,
	})
	require.NoError(t, err)

	_, err = h.device.CreatePipelineState(gpu.PipelineStateDescriptor{
		Label: "bad entry", Shader: sh, VSEntryPoint: "vs_main", PSEntryPoint: "ps_main",
		RenderTargetFormat: gpu.FormatBGRA8Unorm, SampleCount: 1,
	})
	assert.Error(t, err)

	_, err = h.device.CompileShader("   ", "empty")
	assert.Error(t, err)
}

func TestPipelineSampleValidation(t *testing.T) {
	h := newHarness(t)
	sh, err := h.device.CompileShader("fn vs_main() {}\nfn fs_main() {}", "color")
	require.NoError(t, err)

	_, err = h.device.CreatePipelineState(gpu.PipelineStateDescriptor{
		Label: "8x", Shader: sh, VSEntryPoint: "vs_main", PSEntryPoint: "fs_main",
		RenderTargetFormat: gpu.FormatBGRA8Unorm, SampleCount: 8,
	})
	assert.Error(t, err, "only 1x and 4x are supported")

	_, err = h.device.CreatePipelineState(gpu.PipelineStateDescriptor{
		Label: "bad quality", Shader: sh, VSEntryPoint: "vs_main", PSEntryPoint: "fs_main",
		RenderTargetFormat: gpu.FormatBGRA8Unorm, SampleCount: 4, SampleQuality: 1,
	})
	assert.Error(t, err)
}

func TestMSAAQualityLevels(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, uint32(1), h.device.MSAAQualityLevels(gpu.FormatBGRA8Unorm, 1))
	assert.Equal(t, uint32(1), h.device.MSAAQualityLevels(gpu.FormatBGRA8Unorm, 4))
	assert.Equal(t, uint32(0), h.device.MSAAQualityLevels(gpu.FormatBGRA8Unorm, 2))
	assert.Equal(t, uint32(0), h.device.MSAAQualityLevels(gpu.FormatUnknown, 1))
}

func TestConstantBufferViewAlignment(t *testing.T) {
	h := newHarness(t)
	buf, err := h.device.CreateBuffer(gpu.BufferDescriptor{
		Label: "cb", Size: 256, Kind: gpu.BufferUpload, Usage: gpu.BufferUsageConstant,
	})
	require.NoError(t, err)
	heap, err := h.device.CreateDescriptorHeap(gpu.DescriptorHeapDescriptor{
		Label: "cbv", Type: gpu.DescriptorHeapCBV, NumDescriptors: 1,
	})
	require.NoError(t, err)

	assert.Error(t, h.device.CreateConstantBufferView(buf, 0, 100, heap.Handle(0)))
	assert.NoError(t, h.device.CreateConstantBufferView(buf, 0, 256, heap.Handle(0)))
}

func TestDescriptorHeapBounds(t *testing.T) {
	h := newHarness(t)
	buf, err := h.device.CreateBuffer(gpu.BufferDescriptor{
		Label: "target", Size: 16, Kind: gpu.BufferDefault,
	})
	require.NoError(t, err)
	heap, err := h.device.CreateDescriptorHeap(gpu.DescriptorHeapDescriptor{
		Label: "rtv", Type: gpu.DescriptorHeapRTV, NumDescriptors: 2,
	})
	require.NoError(t, err)

	assert.Error(t, h.device.CreateRenderTargetView(buf, heap.Handle(5)))
	assert.Error(t, h.device.CreateDepthStencilView(buf, heap.Handle(0)), "wrong heap type")
}
