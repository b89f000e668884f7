package renderer

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

// sampleSettings returns the active sample count and quality.
func (r *renderer) sampleSettings() (count, quality uint32) {
	if r.msaaEnabled {
		return 4, r.msaaQuality - 1
	}
	return 1, 0
}

// createTargets builds or rebuilds everything tied to the client size: the
// swap chain buffers and their render target views, and the depth buffer
// with its view. Any in-flight GPU work is flushed first since the old
// buffers are dropped.
func (r *renderer) createTargets() error {
	if err := r.tracker.Flush(); err != nil {
		return fmt.Errorf("renderer: flush before target rebuild: %w", err)
	}

	samples, quality := r.sampleSettings()
	if r.swapChain == nil {
		sc, err := r.device.CreateSwapChain(r.queue, gpu.SwapChainDescriptor{
			Width:         uint32(r.width),
			Height:        uint32(r.height),
			Format:        gpu.FormatBGRA8Unorm,
			BufferCount:   swapChainBufferCount,
			SampleCount:   samples,
			SampleQuality: quality,
		})
		if err != nil {
			return fmt.Errorf("renderer: swap chain: %w", err)
		}
		r.swapChain = sc
	} else {
		if err := r.swapChain.Resize(uint32(r.width), uint32(r.height), samples, quality); err != nil {
			return fmt.Errorf("renderer: swap chain resize: %w", err)
		}
	}

	// Rendering resumes on buffer 0 after a rebuild.
	for i := 0; i < r.swapChain.BufferCount(); i++ {
		if err := r.device.CreateRenderTargetView(r.swapChain.BackBuffer(i), r.rtvHeap.Handle(i)); err != nil {
			return fmt.Errorf("renderer: rtv %d: %w", i, err)
		}
	}

	if r.depthBuffer != nil {
		r.depthBuffer.Release()
	}
	depth, err := r.device.CreateDepthStencilBuffer(gpu.DepthStencilDescriptor{
		Label:         "depth buffer",
		Width:         uint32(r.width),
		Height:        uint32(r.height),
		Format:        gpu.FormatDepth24Stencil8,
		SampleCount:   samples,
		SampleQuality: quality,
		ClearDepth:    1.0,
	})
	if err != nil {
		return fmt.Errorf("renderer: depth buffer: %w", err)
	}
	r.depthBuffer = depth
	r.depthReady = false
	if err := r.device.CreateDepthStencilView(depth, r.dsvHeap.Handle(0)); err != nil {
		return fmt.Errorf("renderer: dsv: %w", err)
	}
	return nil
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("renderer: resize to %dx%d", width, height)
	}
	r.width = width
	r.height = height
	if err := r.createTargets(); err != nil {
		return err
	}
	log.Printf("[Renderer] resized to %dx%d", width, height)
	return nil
}
