package software

import (
	"fmt"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

var _ gpu.SwapChain = &swapChain{}

// swapChain keeps its buffers as persistent tracked resources so the
// present/acquire state protocol can be validated across frames.
type swapChain struct {
	device  *Device
	desc    gpu.SwapChainDescriptor
	buffers []*resource
	index   int
}

func (sc *swapChain) createBuffers() {
	for _, b := range sc.buffers {
		b.Release()
	}
	sc.buffers = make([]*resource, sc.desc.BufferCount)
	size := uint64(sc.desc.Width) * uint64(sc.desc.Height) * 4 * uint64(max(sc.desc.SampleCount, 1))
	for i := range sc.buffers {
		sc.buffers[i] = &resource{
			label:   fmt.Sprintf("back buffer %d", i),
			size:    size,
			texture: true,
			state:   gpu.ResourceStatePresent,
		}
	}
	sc.index = 0
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
		return fmt.Errorf("software: swap chain resize to %dx%d", width, height)
	}
	sc.desc.Width = width
	sc.desc.Height = height
	sc.desc.SampleCount = sampleCount
	sc.desc.SampleQuality = sampleQuality
	sc.createBuffers()
	return nil
}

func (sc *swapChain) Present() error {
	b := sc.buffers[sc.index]
	if !stateMatches(b.state, gpu.ResourceStatePresent) {
		return fmt.Errorf("%w: present of %q in state %v, want PRESENT",
			gpu.ErrInvalidTransition, b.label, b.state)
	}
	sc.device.executed = append(sc.device.executed, Present{Buffer: sc.index})
	sc.index = (sc.index + 1) % len(sc.buffers)
	return nil
}

func (sc *swapChain) Release() {
	for _, b := range sc.buffers {
		b.Release()
	}
	sc.buffers = nil
}
