package wgpudev

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

var _ gpu.SwapChain = &swapChain{}

// swapChain drives the window surface. The surface only hands out the
// texture for the frame being rendered, so BackBuffer returns stand-ins
// that resolve to the acquired texture at encode time. With multisampling
// on, rendering goes to an internal MSAA texture that resolves into the
// surface.
type swapChain struct {
	device  *Device
	desc    gpu.SwapChainDescriptor
	buffers []*surfaceBuffer
	index   int

	acquired     *wgpu.Texture
	acquiredView *wgpu.TextureView

	msaaTex  *wgpu.Texture
	msaaView *wgpu.TextureView
}

func (sc *swapChain) configure() error {
	d := sc.device
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       sc.desc.Width,
		Height:      sc.desc.Height,
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   wgpu.CompositeAlphaModeAuto,
	})

	sc.releaseMSAA()
	if sc.desc.SampleCount > 1 {
		tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "msaa color",
			Size: wgpu.Extent3D{
				Width:              sc.desc.Width,
				Height:             sc.desc.Height,
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   sc.desc.SampleCount,
			Dimension:     wgpu.TextureDimension2D,
			Format:        d.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("wgpudev: msaa color target: %w", err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return fmt.Errorf("wgpudev: msaa color view: %w", err)
		}
		sc.msaaTex = tex
		sc.msaaView = view
	}

	if sc.buffers == nil {
		sc.buffers = make([]*surfaceBuffer, sc.desc.BufferCount)
		for i := range sc.buffers {
			sc.buffers[i] = &surfaceBuffer{chain: sc, index: i}
		}
	}
	sc.index = 0
	return nil
}

func (sc *swapChain) releaseMSAA() {
	if sc.msaaView != nil {
		sc.msaaView.Release()
		sc.msaaView = nil
	}
	if sc.msaaTex != nil {
		sc.msaaTex.Release()
		sc.msaaTex = nil
	}
}

func (sc *swapChain) releaseAcquired() {
	if sc.acquiredView != nil {
		sc.acquiredView.Release()
		sc.acquiredView = nil
	}
	if sc.acquired != nil {
		sc.acquired.Release()
		sc.acquired = nil
	}
}

// currentView acquires the surface texture for this frame, once, and keeps
// it until Present.
func (sc *swapChain) currentView() (*wgpu.TextureView, error) {
	if sc.acquiredView != nil {
		return sc.acquiredView, nil
	}
	tex, err := sc.device.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("wgpudev: surface texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("wgpudev: surface view: %w", err)
	}
	sc.acquired = tex
	sc.acquiredView = view
	return view, nil
}

func (sc *swapChain) BufferCount() int {
	return sc.desc.BufferCount
}

func (sc *swapChain) CurrentIndex() int {
	return sc.index
}

func (sc *swapChain) BackBuffer(i int) gpu.Resource {
	return sc.buffers[i]
}

func (sc *swapChain) Resize(width, height, sampleCount, sampleQuality uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("wgpudev: swap chain resize to %dx%d", width, height)
	}
	sc.releaseAcquired()
	sc.desc.Width = width
	sc.desc.Height = height
	sc.desc.SampleCount = sampleCount
	sc.desc.SampleQuality = sampleQuality
	return sc.configure()
}

func (sc *swapChain) Present() error {
	if sc.acquired == nil {
		return fmt.Errorf("wgpudev: present with no acquired surface texture")
	}
	sc.device.surface.Present()
	sc.releaseAcquired()
	sc.index = (sc.index + 1) % len(sc.buffers)
	return nil
}

func (sc *swapChain) Release() {
	sc.releaseAcquired()
	sc.releaseMSAA()
	sc.buffers = nil
}

// attachmentViews resolves a color target resource into pass attachment
// views. Surface buffers render into the MSAA texture with the surface as
// resolve target when multisampling is on.
func attachmentViews(res gpu.Resource) (view, resolve *wgpu.TextureView, err error) {
	switch r := res.(type) {
	case *surfaceBuffer:
		if r.index != r.chain.index {
			return nil, nil, fmt.Errorf("wgpudev: back buffer %d bound while buffer %d is current", r.index, r.chain.index)
		}
		surfaceView, err := r.chain.currentView()
		if err != nil {
			return nil, nil, err
		}
		if r.chain.msaaView != nil {
			return r.chain.msaaView, surfaceView, nil
		}
		return surfaceView, nil, nil
	case *textureResource:
		return r.view, nil, nil
	default:
		return nil, nil, fmt.Errorf("wgpudev: color target is %T", res)
	}
}
