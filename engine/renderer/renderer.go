package renderer

import (
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/forge-go/engine/geometry"
	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

// swapChainBufferCount is the number of presentable buffers; rendering
// alternates between them.
const swapChainBufferCount = 2

// ErrFrameSkipped is returned when a frame's command list could not be
// submitted; the caller drops the frame and continues with the next one.
var ErrFrameSkipped = errors.New("renderer: frame submission failed, frame skipped")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	device   gpu.Device
	queue    gpu.CommandQueue
	tracker  *gpu.FenceTracker
	recorder *gpu.CommandRecorder

	swapChain gpu.SwapChain
	rtvHeap   gpu.DescriptorHeap
	dsvHeap   gpu.DescriptorHeap
	cbvHeap   gpu.DescriptorHeap

	depthBuffer gpu.Resource
	depthReady  bool

	rootSig  gpu.RootSignature
	shader   gpu.Shader
	pipeline gpu.PipelineState

	objectCB *gpu.UploadBuffer

	width, height int
	clearColor    [4]float32
	msaaEnabled   bool
	msaaQuality   uint32

	frameOpen bool
	list      gpu.CommandList
}

// Renderer owns the device, the swap chain and the per-frame command
// machinery, and exposes the frame lifecycle: BeginFrame records target
// transitions and clears, DrawMesh records draws, EndFrame submits, Present
// flips the chain and synchronizes with the GPU. All methods must be called
// from the same goroutine.
type Renderer interface {
	// Device returns the underlying GPU device.
	Device() gpu.Device

	// AspectRatio returns the current back buffer aspect ratio.
	AspectRatio() float32

	// SetClearColor sets the color the back buffer is cleared to each frame.
	SetClearColor(color [4]float32)

	// MSAAEnabled reports whether 4x multisampling is active.
	MSAAEnabled() bool

	// SetMSAA enables or disables 4x multisampling. The swap chain targets
	// and the pipeline are rebuilt, which flushes the GPU.
	//
	// Parameters:
	//   - enabled: the new multisampling state.
	//
	// Returns:
	//   - error: target or pipeline recreation failure.
	SetMSAA(enabled bool) error

	// Resize rebuilds the swap chain buffers, their views and the depth
	// buffer for a new client size. All in-flight GPU work is flushed
	// first. Safe to call repeatedly with the same size.
	//
	// Parameters:
	//   - width: new client width in pixels, must be positive.
	//   - height: new client height in pixels, must be positive.
	//
	// Returns:
	//   - error: flush or target recreation failure.
	Resize(width, height int) error

	// UploadMesh creates the mesh's GPU vertex and index buffers, records
	// the staging copies, submits them and flushes so the buffers are
	// readable before the first frame that draws them. Staging uploaders
	// are disposed before returning.
	//
	// Parameters:
	//   - mesh: the packed mesh to upload.
	//
	// Returns:
	//   - error: buffer creation or submission failure.
	UploadMesh(mesh *geometry.Mesh) error

	// SetObjectConstants writes per-object shader constants into the
	// constant buffer the pipeline reads. Must be a full element write.
	//
	// Parameters:
	//   - data: the constant data, at most one 256-byte aligned element.
	//
	// Returns:
	//   - error: write failure.
	SetObjectConstants(data []byte) error

	// BeginFrame opens the frame: resets the recorder, transitions the
	// current back buffer into RENDER_TARGET, binds and clears the targets
	// and binds the frame's root bindings.
	//
	// Returns:
	//   - error: recorder reuse before retirement or recording failure.
	BeginFrame() error

	// DrawMesh records an indexed draw of one submesh. Must be called
	// between BeginFrame and EndFrame.
	//
	// Parameters:
	//   - mesh: an uploaded mesh.
	//   - submesh: the name of the submesh range to draw.
	//
	// Returns:
	//   - error: unknown submesh, missing GPU buffers or no open frame.
	DrawMesh(mesh *geometry.Mesh, submesh string) error

	// EndFrame transitions the back buffer to PRESENT, closes the command
	// list and submits it. On submission failure the frame is dropped and
	// ErrFrameSkipped is returned; the renderer stays usable.
	EndFrame() error

	// Present flips the swap chain and flushes the command queue, so the
	// next frame can safely reuse the command allocator.
	Present() error

	// Flush blocks until the GPU has completed all submitted work.
	Flush() error

	// Release flushes and frees every GPU object the renderer owns.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer opens a device and builds the full rendering setup: queue,
// fence, command recorder, swap chain, descriptor heaps, depth buffer, root
// signature, shader pipeline and the object constant buffer.
//
// Parameters:
//   - opts: builder options, see With* functions.
//
// Returns:
//   - Renderer: the ready renderer.
//   - error: device or resource creation failure, including gpu.ErrNoAdapter
//     when no backend can be opened.
func NewRenderer(opts ...RendererOption) (Renderer, error) {
	cfg := defaultRendererOptions()
	for _, opt := range opts {
		opt(cfg)
	}

	openOpts := []gpu.Option{gpu.WithSize(uint32(cfg.width), uint32(cfg.height))}
	if cfg.surface != nil {
		openOpts = append(openOpts, gpu.WithSurface(cfg.surface))
	}
	if cfg.backend != "" {
		openOpts = append(openOpts, gpu.WithBackend(cfg.backend))
	}
	device, err := gpu.Open(openOpts...)
	if err != nil {
		return nil, fmt.Errorf("renderer: opening device: %w", err)
	}

	r := &renderer{
		device:      device,
		width:       cfg.width,
		height:      cfg.height,
		clearColor:  cfg.clearColor,
		msaaEnabled: cfg.msaa,
	}
	if err := r.initDevice(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.initPipeline(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.createTargets(); err != nil {
		r.Release()
		return nil, err
	}

	limits := device.Limits()
	log.Printf("[Renderer] adapter %q (%s), descriptor strides rtv=%d dsv=%d cbv=%d",
		device.Name(), device.Kind(), limits.RTVDescriptorSize, limits.DSVDescriptorSize, limits.CBVDescriptorSize)
	return r, nil
}

// initDevice creates the submission machinery and the descriptor heaps.
func (r *renderer) initDevice() error {
	r.msaaQuality = r.device.MSAAQualityLevels(gpu.FormatBGRA8Unorm, 4)
	if r.msaaQuality == 0 {
		return errors.New("renderer: device reports no 4x MSAA support for the back buffer format")
	}

	queue, err := r.device.CreateCommandQueue()
	if err != nil {
		return fmt.Errorf("renderer: command queue: %w", err)
	}
	r.queue = queue

	fence, err := r.device.CreateFence(0)
	if err != nil {
		return fmt.Errorf("renderer: fence: %w", err)
	}
	r.tracker = gpu.NewFenceTracker(queue, fence, 0)

	recorder, err := gpu.NewCommandRecorder(r.device, queue, r.tracker)
	if err != nil {
		return fmt.Errorf("renderer: command recorder: %w", err)
	}
	r.recorder = recorder

	heaps := []struct {
		kind  gpu.DescriptorHeapType
		count int
		label string
		dst   *gpu.DescriptorHeap
	}{
		{gpu.DescriptorHeapRTV, swapChainBufferCount, "rtv heap", &r.rtvHeap},
		{gpu.DescriptorHeapDSV, 1, "dsv heap", &r.dsvHeap},
		{gpu.DescriptorHeapCBV, 1, "cbv heap", &r.cbvHeap},
	}
	for _, h := range heaps {
		heap, err := r.device.CreateDescriptorHeap(gpu.DescriptorHeapDescriptor{
			Label:          h.label,
			Type:           h.kind,
			NumDescriptors: h.count,
		})
		if err != nil {
			return fmt.Errorf("renderer: %s: %w", h.label, err)
		}
		*h.dst = heap
	}
	return nil
}

func (r *renderer) Device() gpu.Device {
	return r.device
}

func (r *renderer) AspectRatio() float32 {
	return float32(r.width) / float32(r.height)
}

func (r *renderer) SetClearColor(color [4]float32) {
	r.clearColor = color
}

func (r *renderer) MSAAEnabled() bool {
	return r.msaaEnabled
}

func (r *renderer) SetMSAA(enabled bool) error {
	if enabled == r.msaaEnabled {
		return nil
	}
	r.msaaEnabled = enabled
	log.Printf("[Renderer] 4x MSAA %v, rebuilding pipeline and targets", enabled)
	if err := r.rebuildPipeline(); err != nil {
		return err
	}
	return r.createTargets()
}

func (r *renderer) SetObjectConstants(data []byte) error {
	return r.objectCB.CopyData(0, data)
}

func (r *renderer) UploadMesh(mesh *geometry.Mesh) error {
	list, err := r.recorder.Begin(nil)
	if err != nil {
		return fmt.Errorf("renderer: upload of %q: %w", mesh.Name, err)
	}

	vb, vup, err := gpu.NewDefaultBuffer(r.device, list, mesh.Name+" vertices", mesh.VertexData, gpu.BufferUsageVertex)
	if err != nil {
		_ = r.recorder.Abort()
		return fmt.Errorf("renderer: vertex buffer for %q: %w", mesh.Name, err)
	}
	ib, iup, err := gpu.NewDefaultBuffer(r.device, list, mesh.Name+" indices", mesh.IndexData, gpu.BufferUsageIndex)
	if err != nil {
		_ = r.recorder.Abort()
		vb.Release()
		vup.Release()
		return fmt.Errorf("renderer: index buffer for %q: %w", mesh.Name, err)
	}
	mesh.VertexBufferGPU = vb
	mesh.IndexBufferGPU = ib
	mesh.VertexUploader = vup
	mesh.IndexUploader = iup

	if err := r.recorder.EndAndSubmit(); err != nil {
		mesh.Release()
		return fmt.Errorf("renderer: upload submission for %q: %w", mesh.Name, err)
	}
	if err := r.tracker.Flush(); err != nil {
		return fmt.Errorf("renderer: upload flush for %q: %w", mesh.Name, err)
	}
	mesh.DisposeUploaders()
	return nil
}

func (r *renderer) Flush() error {
	return r.tracker.Flush()
}

func (r *renderer) Release() {
	if r.tracker != nil {
		_ = r.tracker.Flush()
	}
	if r.objectCB != nil {
		r.objectCB.Release()
	}
	if r.depthBuffer != nil {
		r.depthBuffer.Release()
	}
	if r.swapChain != nil {
		r.swapChain.Release()
	}
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.shader != nil {
		r.shader.Release()
	}
	if r.rootSig != nil {
		r.rootSig.Release()
	}
	for _, h := range []gpu.DescriptorHeap{r.rtvHeap, r.dsvHeap, r.cbvHeap} {
		if h != nil {
			h.Release()
		}
	}
	if r.recorder != nil {
		r.recorder.Release()
	}
	if r.tracker != nil {
		r.tracker.Fence().Release()
	}
	if r.queue != nil {
		r.queue.Release()
	}
	if r.device != nil {
		r.device.Release()
	}
}
