package wgpudev

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

var (
	_ gpu.CommandAllocator = &commandAllocator{}
	_ gpu.CommandList      = &commandList{}
	_ gpu.CommandQueue     = &commandQueue{}
)

// commandAllocator only carries lifecycle state; WebGPU owns the command
// memory behind its encoders.
type commandAllocator struct {
	dead bool
}

func (a *commandAllocator) Reset() error {
	if a.dead {
		return errors.New("wgpudev: reset of released allocator")
	}
	return nil
}

func (a *commandAllocator) Release() {
	a.dead = true
}

// encodeState is the mutable context ops replay into at Close. A render
// pass only opens once targets are known, so binds recorded before
// SetRenderTargets are stashed and applied right after the pass begins.
type encodeState struct {
	enc  *wgpu.CommandEncoder
	pass *wgpu.RenderPassEncoder

	pipeline *pipelineState

	viewport   *gpu.Viewport
	scissor    *gpu.ScissorRect
	rootSig    *rootSignature
	clearColor map[gpu.Resource][4]float32
	clearDepth map[gpu.Resource]float32
}

func (st *encodeState) applyStash() {
	if st.pipeline != nil && st.pipeline.pipeline != nil {
		st.pass.SetPipeline(st.pipeline.pipeline)
	}
	if st.viewport != nil {
		v := st.viewport
		st.pass.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
	}
	if st.scissor != nil {
		r := st.scissor
		st.pass.SetScissorRect(uint32(r.Left), uint32(r.Top), uint32(r.Right-r.Left), uint32(r.Bottom-r.Top))
	}
}

func (st *encodeState) endPass() {
	if st.pass != nil {
		st.pass.End()
		st.pass.Release()
		st.pass = nil
	}
}

// commandList defers recording: ops accumulate between Reset and Close and
// replay into a command encoder at Close. Barriers replay as no-ops.
type commandList struct {
	device    *Device
	allocator *commandAllocator
	ops       []func(*encodeState) error
	initial   gpu.PipelineState
	closed    bool
	finished  *wgpu.CommandBuffer
}

func (l *commandList) Reset(allocator gpu.CommandAllocator, initial gpu.PipelineState) error {
	if !l.closed {
		return gpu.ErrRecorderBusy
	}
	alloc, ok := allocator.(*commandAllocator)
	if !ok {
		return fmt.Errorf("wgpudev: foreign command allocator %T", allocator)
	}
	if alloc.dead {
		return errors.New("wgpudev: reset against released allocator")
	}
	l.allocator = alloc
	l.ops = l.ops[:0]
	l.initial = initial
	l.closed = false
	if l.finished != nil {
		l.finished.Release()
		l.finished = nil
	}
	return nil
}

func (l *commandList) record(op func(*encodeState) error) {
	if !l.closed {
		l.ops = append(l.ops, op)
	}
}

// ResourceBarrier is a no-op: the WebGPU driver tracks resource states.
func (l *commandList) ResourceBarrier(transitions ...gpu.Transition) {}

func (l *commandList) SetViewport(v gpu.Viewport) {
	l.record(func(st *encodeState) error {
		st.viewport = &v
		if st.pass != nil {
			st.pass.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
		}
		return nil
	})
}

func (l *commandList) SetScissorRect(r gpu.ScissorRect) {
	l.record(func(st *encodeState) error {
		st.scissor = &r
		if st.pass != nil {
			st.pass.SetScissorRect(uint32(r.Left), uint32(r.Top), uint32(r.Right-r.Left), uint32(r.Bottom-r.Top))
		}
		return nil
	})
}

// ClearRenderTargetView stages the clear color; it becomes the pass load op
// when the target is bound.
func (l *commandList) ClearRenderTargetView(rtv gpu.DescriptorHandle, color [4]float32) {
	l.record(func(st *encodeState) error {
		_, s, err := heapSlot(rtv)
		if err != nil {
			return err
		}
		st.clearColor[s.res] = color
		return nil
	})
}

func (l *commandList) ClearDepthStencilView(dsv gpu.DescriptorHandle, depth float32, stencil uint8) {
	l.record(func(st *encodeState) error {
		_, s, err := heapSlot(dsv)
		if err != nil {
			return err
		}
		st.clearDepth[s.res] = depth
		return nil
	})
}

// SetRenderTargets begins the render pass. Clears staged for the bound
// resources turn into clearing load ops; anything else loads.
func (l *commandList) SetRenderTargets(rtv gpu.DescriptorHandle, dsv gpu.DescriptorHandle) {
	l.record(func(st *encodeState) error {
		st.endPass()

		_, colorSlot, err := heapSlot(rtv)
		if err != nil {
			return err
		}
		_, depthSlot, err := heapSlot(dsv)
		if err != nil {
			return err
		}

		colorView, resolveView, err := attachmentViews(colorSlot.res)
		if err != nil {
			return err
		}
		depthRes, ok := depthSlot.res.(*textureResource)
		if !ok {
			return fmt.Errorf("wgpudev: depth target %q is not a texture", depthSlot.res.Label())
		}

		color := wgpu.RenderPassColorAttachment{
			View:          colorView,
			ResolveTarget: resolveView,
			LoadOp:        wgpu.LoadOpLoad,
			StoreOp:       wgpu.StoreOpStore,
		}
		if c, ok := st.clearColor[colorSlot.res]; ok {
			color.LoadOp = wgpu.LoadOpClear
			color.ClearValue = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
		}
		depth := &wgpu.RenderPassDepthStencilAttachment{
			View:              depthRes.view,
			DepthLoadOp:       wgpu.LoadOpLoad,
			DepthStoreOp:      wgpu.StoreOpStore,
			StencilLoadOp:     wgpu.LoadOpClear,
			StencilStoreOp:    wgpu.StoreOpStore,
			StencilClearValue: 0,
		}
		if d, ok := st.clearDepth[depthSlot.res]; ok {
			depth.DepthLoadOp = wgpu.LoadOpClear
			depth.DepthClearValue = d
		}

		st.pass = st.enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments:       []wgpu.RenderPassColorAttachment{color},
			DepthStencilAttachment: depth,
		})
		st.applyStash()
		return nil
	})
}

// SetDescriptorHeaps is a no-op: heaps are slot tables and bind groups are
// resolved per descriptor.
func (l *commandList) SetDescriptorHeaps(heaps ...gpu.DescriptorHeap) {}

func (l *commandList) SetRootSignature(rs gpu.RootSignature) {
	l.record(func(st *encodeState) error {
		sig, ok := rs.(*rootSignature)
		if !ok {
			return fmt.Errorf("wgpudev: foreign root signature %T", rs)
		}
		st.rootSig = sig
		return nil
	})
}

// SetRootDescriptorTable binds the slot's constant buffer as bind group
// `slot`. The bind group is built on first use and cached on the
// descriptor.
func (l *commandList) SetRootDescriptorTable(slotIdx int, handle gpu.DescriptorHandle) {
	l.record(func(st *encodeState) error {
		if st.pass == nil {
			return errors.New("wgpudev: descriptor table bound outside a render pass")
		}
		if st.rootSig == nil || slotIdx >= len(st.rootSig.groupLayouts) {
			return fmt.Errorf("wgpudev: no root signature layout for slot %d", slotIdx)
		}
		heap, s, err := heapSlot(handle)
		if err != nil {
			return err
		}
		if heap.kind != gpu.DescriptorHeapCBV {
			return fmt.Errorf("wgpudev: root table handle must point into a CBV heap, got %v", heap.kind)
		}
		layout := st.rootSig.groupLayouts[slotIdx]
		if s.group == nil || s.groupKey != layout {
			buf, ok := s.res.(*bufferResource)
			if !ok {
				return fmt.Errorf("wgpudev: constant buffer view over non-buffer %q", s.res.Label())
			}
			group, err := l.device.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
				Label:  fmt.Sprintf("%s[%d]", heap.label, handle.Index),
				Layout: layout,
				Entries: []wgpu.BindGroupEntry{{
					Binding: 0,
					Buffer:  buf.buf,
					Offset:  s.offset,
					Size:    s.size,
				}},
			})
			if err != nil {
				return fmt.Errorf("wgpudev: bind group for %s[%d]: %w", heap.label, handle.Index, err)
			}
			if s.group != nil {
				s.group.Release()
			}
			s.group = group
			s.groupKey = layout
		}
		st.pass.SetBindGroup(uint32(slotIdx), s.group, nil)
		return nil
	})
}

func (l *commandList) SetVertexBuffer(buf gpu.Resource, strideBytes, sizeBytes uint32) {
	l.record(func(st *encodeState) error {
		b, ok := buf.(*bufferResource)
		if !ok {
			return fmt.Errorf("wgpudev: vertex buffer is %T", buf)
		}
		if st.pass == nil {
			return errors.New("wgpudev: vertex buffer bound outside a render pass")
		}
		st.pass.SetVertexBuffer(0, b.buf, 0, uint64(sizeBytes))
		return nil
	})
}

func (l *commandList) SetIndexBuffer(buf gpu.Resource, format gpu.IndexFormat, sizeBytes uint32) {
	l.record(func(st *encodeState) error {
		b, ok := buf.(*bufferResource)
		if !ok {
			return fmt.Errorf("wgpudev: index buffer is %T", buf)
		}
		if st.pass == nil {
			return errors.New("wgpudev: index buffer bound outside a render pass")
		}
		st.pass.SetIndexBuffer(b.buf, indexFormat(format), 0, uint64(sizeBytes))
		return nil
	})
}

// SetPrimitiveTopology is a no-op: topology is baked into the pipeline.
func (l *commandList) SetPrimitiveTopology(t gpu.PrimitiveTopology) {}

func (l *commandList) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32) {
	l.record(func(st *encodeState) error {
		if st.pass == nil {
			return errors.New("wgpudev: draw outside a render pass")
		}
		st.pass.DrawIndexed(indexCount, instanceCount, startIndex, baseVertex, 0)
		return nil
	})
}

func (l *commandList) CopyBuffer(dst, src gpu.Resource, sizeBytes uint64) {
	l.record(func(st *encodeState) error {
		d, ok := dst.(*bufferResource)
		if !ok {
			return fmt.Errorf("wgpudev: copy destination is %T", dst)
		}
		s, ok := src.(*bufferResource)
		if !ok {
			return fmt.Errorf("wgpudev: copy source is %T", src)
		}
		st.endPass()
		return st.enc.CopyBufferToBuffer(s.buf, 0, d.buf, 0, sizeBytes)
	})
}

// Close replays the recorded ops into a fresh encoder and finishes it into
// a command buffer for Execute.
func (l *commandList) Close() error {
	if l.closed {
		return gpu.ErrNotRecording
	}
	l.closed = true

	enc, err := l.device.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("wgpudev: command encoder: %w", err)
	}
	st := &encodeState{
		enc:        enc,
		clearColor: map[gpu.Resource][4]float32{},
		clearDepth: map[gpu.Resource]float32{},
	}
	if p, ok := l.initial.(*pipelineState); ok {
		st.pipeline = p
	}
	for _, op := range l.ops {
		if err := op(st); err != nil {
			st.endPass()
			enc.Release()
			return err
		}
	}
	st.endPass()

	cmd, err := enc.Finish(nil)
	enc.Release()
	if err != nil {
		return fmt.Errorf("wgpudev: encoder finish: %w", err)
	}
	l.finished = cmd
	return nil
}

func (l *commandList) Release() {
	if l.finished != nil {
		l.finished.Release()
		l.finished = nil
	}
	l.ops = nil
	l.closed = true
}

// commandQueue wraps the wgpu queue and remembers the latest submission
// index so fences can attach to it.
type commandQueue struct {
	device    *Device
	queue     *wgpu.Queue
	submitted bool
	last      wgpu.SubmissionIndex
}

func (q *commandQueue) Execute(lists ...gpu.CommandList) error {
	bufs := make([]*wgpu.CommandBuffer, 0, len(lists))
	owners := make([]*commandList, 0, len(lists))
	for _, cl := range lists {
		l, ok := cl.(*commandList)
		if !ok {
			return fmt.Errorf("wgpudev: foreign command list %T", cl)
		}
		if !l.closed || l.finished == nil {
			return errors.New("wgpudev: execute of list that was not closed")
		}
		bufs = append(bufs, l.finished)
		owners = append(owners, l)
	}
	q.last = q.queue.Submit(bufs...)
	q.submitted = true
	for i, l := range owners {
		bufs[i].Release()
		l.finished = nil
	}
	return nil
}

func (q *commandQueue) Signal(f gpu.Fence, value uint64) error {
	fc, ok := f.(*fence)
	if !ok {
		return fmt.Errorf("wgpudev: foreign fence %T", f)
	}
	if value <= fc.maxSignaled {
		return fmt.Errorf("wgpudev: fence signal %d is not above previous signal %d", value, fc.maxSignaled)
	}
	fc.maxSignaled = value
	if !q.submitted {
		// Nothing in flight; the signal completes immediately.
		fc.completed = value
		return nil
	}
	fc.pending = append(fc.pending, pendingSignal{value: value, queue: q.queue, submission: q.last})
	return nil
}

func (q *commandQueue) Release() {}
