package software

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

// Command is one executed GPU command, recorded in the device log. Concrete
// types below carry the arguments tests assert on.
type Command interface {
	isCommand()
}

// Barrier is a logged ResourceBarrier.
type Barrier struct {
	Transitions []gpu.Transition
}

// SetViewport is a logged viewport bind.
type SetViewport struct {
	Viewport gpu.Viewport
}

// SetScissor is a logged scissor bind.
type SetScissor struct {
	Rect gpu.ScissorRect
}

// ClearRenderTarget is a logged color clear.
type ClearRenderTarget struct {
	Target gpu.Resource
	Color  [4]float32
}

// ClearDepthStencil is a logged depth/stencil clear.
type ClearDepthStencil struct {
	Target  gpu.Resource
	Depth   float32
	Stencil uint8
}

// SetTargets is a logged render-target bind.
type SetTargets struct {
	Color gpu.Resource
	Depth gpu.Resource
}

// Draw is a logged indexed draw.
type Draw struct {
	IndexCount    uint32
	InstanceCount uint32
	StartIndex    uint32
	BaseVertex    int32
}

// Copy is a logged buffer copy.
type Copy struct {
	Dst  gpu.Resource
	Src  gpu.Resource
	Size uint64
}

// Present is a logged swap-chain present.
type Present struct {
	Buffer int
}

func (Barrier) isCommand()           {}
func (SetViewport) isCommand()       {}
func (SetScissor) isCommand()        {}
func (ClearRenderTarget) isCommand() {}
func (ClearDepthStencil) isCommand() {}
func (SetTargets) isCommand()        {}
func (Draw) isCommand()              {}
func (Copy) isCommand()              {}
func (Present) isCommand()           {}

var _ gpu.CommandAllocator = &commandAllocator{}

type commandAllocator struct {
	dead bool
}

func (a *commandAllocator) Reset() error {
	if a.dead {
		return errors.New("software: reset of released allocator")
	}
	return nil
}

func (a *commandAllocator) Release() {
	a.dead = true
}

// op pairs a loggable command with its deferred validation/application.
type op struct {
	cmd   Command
	apply func() error
}

var _ gpu.CommandList = &commandList{}

// commandList records ops between Reset and Close. State-dependent
// validation runs at Execute, in submission order; session-shape validation
// (viewport and scissor must be rebound before drawing) is checked while
// recording and surfaced from Close.
type commandList struct {
	device    *Device
	allocator *commandAllocator
	ops       []op
	errs      []error
	closed    bool

	viewportSet bool
	scissorSet  bool
	targetsSet  bool
}

func (l *commandList) Reset(allocator gpu.CommandAllocator, initial gpu.PipelineState) error {
	if !l.closed {
		return gpu.ErrRecorderBusy
	}
	alloc, ok := allocator.(*commandAllocator)
	if !ok {
		return fmt.Errorf("software: foreign command allocator %T", allocator)
	}
	if alloc.dead {
		return errors.New("software: reset against released allocator")
	}
	l.allocator = alloc
	l.ops = l.ops[:0]
	l.errs = l.errs[:0]
	l.closed = false
	l.viewportSet = false
	l.scissorSet = false
	l.targetsSet = false
	return nil
}

func (l *commandList) record(cmd Command, apply func() error) {
	if l.closed {
		l.errs = append(l.errs, fmt.Errorf("%w: %T recorded on closed list", gpu.ErrNotRecording, cmd))
		return
	}
	l.ops = append(l.ops, op{cmd: cmd, apply: apply})
}

func (l *commandList) ResourceBarrier(transitions ...gpu.Transition) {
	ts := append([]gpu.Transition(nil), transitions...)
	l.record(Barrier{Transitions: ts}, func() error {
		for _, t := range ts {
			res, ok := t.Resource.(*resource)
			if !ok {
				return fmt.Errorf("software: foreign resource %T in barrier", t.Resource)
			}
			if !stateMatches(res.state, t.Before) {
				return fmt.Errorf("%w: %q is %v, barrier expects %v",
					gpu.ErrInvalidTransition, res.label, res.state, t.Before)
			}
			res.state = t.After
		}
		return nil
	})
}

func (l *commandList) SetViewport(v gpu.Viewport) {
	l.viewportSet = true
	l.record(SetViewport{Viewport: v}, func() error { return nil })
}

func (l *commandList) SetScissorRect(r gpu.ScissorRect) {
	l.scissorSet = true
	l.record(SetScissor{Rect: r}, func() error { return nil })
}

func (l *commandList) ClearRenderTargetView(rtv gpu.DescriptorHandle, color [4]float32) {
	l.record(nil, func() error {
		res, err := resolve(rtv)
		if err != nil {
			return err
		}
		if res.state != gpu.ResourceStateRenderTarget {
			return fmt.Errorf("%w: clear of %q in state %v, want RENDER_TARGET",
				gpu.ErrInvalidTransition, res.label, res.state)
		}
		l.device.executed = append(l.device.executed, ClearRenderTarget{Target: res, Color: color})
		return nil
	})
}

func (l *commandList) ClearDepthStencilView(dsv gpu.DescriptorHandle, depth float32, stencil uint8) {
	l.record(nil, func() error {
		res, err := resolve(dsv)
		if err != nil {
			return err
		}
		if res.state != gpu.ResourceStateDepthWrite {
			return fmt.Errorf("%w: depth clear of %q in state %v, want DEPTH_WRITE",
				gpu.ErrInvalidTransition, res.label, res.state)
		}
		l.device.executed = append(l.device.executed, ClearDepthStencil{Target: res, Depth: depth, Stencil: stencil})
		return nil
	})
}

func (l *commandList) SetRenderTargets(rtv gpu.DescriptorHandle, dsv gpu.DescriptorHandle) {
	l.targetsSet = true
	l.record(nil, func() error {
		color, err := resolve(rtv)
		if err != nil {
			return err
		}
		depth, err := resolve(dsv)
		if err != nil {
			return err
		}
		if color.state != gpu.ResourceStateRenderTarget {
			return fmt.Errorf("%w: target %q in state %v, want RENDER_TARGET",
				gpu.ErrInvalidTransition, color.label, color.state)
		}
		if depth.state != gpu.ResourceStateDepthWrite {
			return fmt.Errorf("%w: depth target %q in state %v, want DEPTH_WRITE",
				gpu.ErrInvalidTransition, depth.label, depth.state)
		}
		l.device.executed = append(l.device.executed, SetTargets{Color: color, Depth: depth})
		return nil
	})
}

func (l *commandList) SetDescriptorHeaps(heaps ...gpu.DescriptorHeap) {}

func (l *commandList) SetRootSignature(rs gpu.RootSignature) {}

func (l *commandList) SetRootDescriptorTable(slot int, handle gpu.DescriptorHandle) {
	l.record(nil, func() error {
		_, err := resolve(handle)
		return err
	})
}

func (l *commandList) SetVertexBuffer(buf gpu.Resource, strideBytes, sizeBytes uint32) {
	l.record(nil, func() error {
		return requireRead(buf, "vertex buffer")
	})
}

func (l *commandList) SetIndexBuffer(buf gpu.Resource, format gpu.IndexFormat, sizeBytes uint32) {
	l.record(nil, func() error {
		return requireRead(buf, "index buffer")
	})
}

func (l *commandList) SetPrimitiveTopology(t gpu.PrimitiveTopology) {}

func (l *commandList) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32) {
	if !l.viewportSet || !l.scissorSet {
		l.errs = append(l.errs, errors.New("software: draw recorded before viewport and scissor were bound this session"))
	}
	if !l.targetsSet {
		l.errs = append(l.errs, errors.New("software: draw recorded with no render targets bound"))
	}
	l.record(Draw{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		StartIndex:    startIndex,
		BaseVertex:    baseVertex,
	}, func() error { return nil })
}

func (l *commandList) CopyBuffer(dst, src gpu.Resource, sizeBytes uint64) {
	l.record(Copy{Dst: dst, Src: src, Size: sizeBytes}, func() error {
		d, ok := dst.(*resource)
		if !ok {
			return fmt.Errorf("software: foreign copy destination %T", dst)
		}
		s, ok := src.(*resource)
		if !ok {
			return fmt.Errorf("software: foreign copy source %T", src)
		}
		if d.state != gpu.ResourceStateCopyDest {
			return fmt.Errorf("%w: copy destination %q in state %v, want COPY_DEST",
				gpu.ErrInvalidTransition, d.label, d.state)
		}
		if err := requireRead(src, "copy source"); err != nil {
			return err
		}
		if sizeBytes > d.size || sizeBytes > s.size {
			return fmt.Errorf("software: copy of %d bytes exceeds %q (%d) or %q (%d)",
				sizeBytes, d.label, d.size, s.label, s.size)
		}
		copy(d.data[:sizeBytes], s.data[:sizeBytes])
		return nil
	})
}

func (l *commandList) Close() error {
	if l.closed {
		return gpu.ErrNotRecording
	}
	l.closed = true
	return errors.Join(l.errs...)
}

func (l *commandList) Release() {
	l.ops = nil
	l.closed = true
}

func requireRead(res gpu.Resource, role string) error {
	r, ok := res.(*resource)
	if !ok {
		return fmt.Errorf("software: foreign resource %T as %s", res, role)
	}
	if r.state != gpu.ResourceStateGenericRead {
		return fmt.Errorf("%w: %s %q in state %v, want GENERIC_READ",
			gpu.ErrInvalidTransition, role, r.label, r.state)
	}
	return nil
}
