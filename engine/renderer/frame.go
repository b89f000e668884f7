package renderer

import (
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/forge-go/engine/geometry"
	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

func (r *renderer) BeginFrame() error {
	if r.frameOpen {
		return errors.New("renderer: BeginFrame while a frame is already open")
	}
	list, err := r.recorder.Begin(r.pipeline)
	if err != nil {
		return fmt.Errorf("renderer: frame begin: %w", err)
	}
	r.list = list

	back := r.swapChain.BackBuffer(r.swapChain.CurrentIndex())
	transitions := []gpu.Transition{{
		Resource: back,
		Before:   gpu.ResourceStatePresent,
		After:    gpu.ResourceStateRenderTarget,
	}}
	if !r.depthReady {
		// Fresh depth buffer after creation or resize.
		transitions = append(transitions, gpu.Transition{
			Resource: r.depthBuffer,
			Before:   gpu.ResourceStateCommon,
			After:    gpu.ResourceStateDepthWrite,
		})
		r.depthReady = true
	}
	list.ResourceBarrier(transitions...)

	// Viewport and scissor reset with the command list and must be rebound
	// every frame.
	list.SetViewport(gpu.Viewport{
		Width:    float32(r.width),
		Height:   float32(r.height),
		MaxDepth: 1,
	})
	list.SetScissorRect(gpu.ScissorRect{Right: int32(r.width), Bottom: int32(r.height)})

	rtv := r.rtvHeap.Handle(r.swapChain.CurrentIndex())
	dsv := r.dsvHeap.Handle(0)
	list.ClearRenderTargetView(rtv, r.clearColor)
	list.ClearDepthStencilView(dsv, 1.0, 0)
	list.SetRenderTargets(rtv, dsv)

	list.SetDescriptorHeaps(r.cbvHeap)
	list.SetRootSignature(r.rootSig)
	list.SetRootDescriptorTable(0, r.cbvHeap.Handle(0))

	r.frameOpen = true
	return nil
}

func (r *renderer) DrawMesh(mesh *geometry.Mesh, submesh string) error {
	if !r.frameOpen {
		return errors.New("renderer: DrawMesh outside an open frame")
	}
	if mesh.VertexBufferGPU == nil || mesh.IndexBufferGPU == nil {
		return fmt.Errorf("renderer: mesh %q was never uploaded", mesh.Name)
	}
	sm, ok := mesh.Submesh(submesh)
	if !ok {
		return fmt.Errorf("renderer: mesh %q has no submesh %q", mesh.Name, submesh)
	}

	r.list.SetVertexBuffer(mesh.VertexBufferGPU, mesh.VertexByteStride, mesh.VertexBufferSize)
	r.list.SetIndexBuffer(mesh.IndexBufferGPU, mesh.IndexFormat, mesh.IndexBufferSize)
	r.list.SetPrimitiveTopology(gpu.TopologyTriangleList)
	r.list.DrawIndexedInstanced(sm.IndexCount, 1, sm.StartIndexLocation, sm.BaseVertexLocation)
	return nil
}

func (r *renderer) EndFrame() error {
	if !r.frameOpen {
		return errors.New("renderer: EndFrame without BeginFrame")
	}
	r.frameOpen = false

	back := r.swapChain.BackBuffer(r.swapChain.CurrentIndex())
	r.list.ResourceBarrier(gpu.Transition{
		Resource: back,
		Before:   gpu.ResourceStateRenderTarget,
		After:    gpu.ResourceStatePresent,
	})

	if err := r.recorder.EndAndSubmit(); err != nil {
		log.Printf("[Renderer] dropping frame: %v", err)
		// The list may have partially executed and left the back buffer
		// mid-transition; rebuild the targets so the next frame starts
		// from PRESENT again.
		if rerr := r.createTargets(); rerr != nil {
			return fmt.Errorf("renderer: target recovery after dropped frame: %v", rerr)
		}
		return fmt.Errorf("%w: %v", ErrFrameSkipped, err)
	}
	return nil
}

func (r *renderer) Present() error {
	presentErr := r.swapChain.Present()
	// One frame in flight: wait out the GPU before the next frame reuses
	// the command allocator and the constant buffer. The flush runs even
	// when the flip fails, so the frame's submission still retires.
	if err := r.tracker.Flush(); err != nil {
		return fmt.Errorf("renderer: present flush: %w", err)
	}
	if presentErr != nil {
		return fmt.Errorf("renderer: present: %w", presentErr)
	}
	return nil
}
