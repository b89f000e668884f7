package renderer_test

import (
	"testing"

	"github.com/Carmen-Shannon/forge-go/common"
	"github.com/Carmen-Shannon/forge-go/engine/geometry"
	"github.com/Carmen-Shannon/forge-go/engine/gpu"
	"github.com/Carmen-Shannon/forge-go/engine/gpu/software"
	"github.com/Carmen-Shannon/forge-go/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, opts ...renderer.RendererOption) (renderer.Renderer, *software.Device) {
	t.Helper()
	opts = append([]renderer.RendererOption{
		renderer.WithSoftwareAdapter(),
		renderer.WithSize(640, 480),
	}, opts...)
	r, err := renderer.NewRenderer(opts...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	dev, ok := r.Device().(*software.Device)
	require.True(t, ok)
	return r, dev
}

func uploadBox(t *testing.T, r renderer.Renderer) *geometry.Mesh {
	t.Helper()
	mesh, err := geometry.BuildMesh("shapes", geometry.Part{Name: "box", Geometry: geometry.Box()})
	require.NoError(t, err)
	require.NoError(t, r.UploadMesh(mesh))
	return mesh
}

func TestUploadMesh(t *testing.T) {
	r, dev := newTestRenderer(t)
	mesh := uploadBox(t, r)

	require.NotNil(t, mesh.VertexBufferGPU)
	require.NotNil(t, mesh.IndexBufferGPU)
	assert.Nil(t, mesh.VertexUploader, "staging buffers are disposed after the flush")
	assert.Nil(t, mesh.IndexUploader)

	assert.Equal(t, gpu.ResourceStateGenericRead, dev.StateOf(mesh.VertexBufferGPU))
	assert.Equal(t, gpu.ResourceStateGenericRead, dev.StateOf(mesh.IndexBufferGPU))
	assert.Equal(t, mesh.VertexData, dev.BufferData(mesh.VertexBufferGPU))
	assert.Equal(t, mesh.IndexData, dev.BufferData(mesh.IndexBufferGPU))
}

func TestFrameCommandStream(t *testing.T) {
	r, dev := newTestRenderer(t)
	mesh := uploadBox(t, r)
	dev.ClearExecuted()

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.DrawMesh(mesh, "box"))
	require.NoError(t, r.EndFrame())

	cmds := dev.Executed()
	require.Len(t, cmds, 8)

	open, ok := cmds[0].(software.Barrier)
	require.True(t, ok)
	require.Len(t, open.Transitions, 2, "first frame also readies the depth buffer")
	assert.Equal(t, gpu.ResourceStatePresent, open.Transitions[0].Before)
	assert.Equal(t, gpu.ResourceStateRenderTarget, open.Transitions[0].After)
	assert.Equal(t, gpu.ResourceStateCommon, open.Transitions[1].Before)
	assert.Equal(t, gpu.ResourceStateDepthWrite, open.Transitions[1].After)

	vp, ok := cmds[1].(software.SetViewport)
	require.True(t, ok)
	assert.Equal(t, float32(640), vp.Viewport.Width)
	assert.Equal(t, float32(480), vp.Viewport.Height)
	assert.Equal(t, float32(1), vp.Viewport.MaxDepth)

	sc, ok := cmds[2].(software.SetScissor)
	require.True(t, ok)
	assert.Equal(t, int32(640), sc.Rect.Right)
	assert.Equal(t, int32(480), sc.Rect.Bottom)

	clear, ok := cmds[3].(software.ClearRenderTarget)
	require.True(t, ok)
	assert.InDelta(t, 0.6902, clear.Color[0], 1e-3)
	assert.InDelta(t, 0.7686, clear.Color[1], 1e-3)
	assert.InDelta(t, 0.8706, clear.Color[2], 1e-3)

	depthClear, ok := cmds[4].(software.ClearDepthStencil)
	require.True(t, ok)
	assert.Equal(t, float32(1), depthClear.Depth)
	assert.Equal(t, uint8(0), depthClear.Stencil)

	_, ok = cmds[5].(software.SetTargets)
	require.True(t, ok)

	draw, ok := cmds[6].(software.Draw)
	require.True(t, ok)
	assert.Equal(t, software.Draw{IndexCount: 36, InstanceCount: 1}, draw)

	closeBarrier, ok := cmds[7].(software.Barrier)
	require.True(t, ok)
	require.Len(t, closeBarrier.Transitions, 1)
	assert.Equal(t, gpu.ResourceStateRenderTarget, closeBarrier.Transitions[0].Before)
	assert.Equal(t, gpu.ResourceStatePresent, closeBarrier.Transitions[0].After)
}

func TestPresentAlternatesBuffers(t *testing.T) {
	r, dev := newTestRenderer(t)
	mesh := uploadBox(t, r)
	dev.ClearExecuted()

	for i := 0; i < 2; i++ {
		require.NoError(t, r.BeginFrame())
		require.NoError(t, r.DrawMesh(mesh, "box"))
		require.NoError(t, r.EndFrame())
		require.NoError(t, r.Present())
	}

	var presents []software.Present
	for _, c := range dev.Executed() {
		if p, ok := c.(software.Present); ok {
			presents = append(presents, p)
		}
	}
	assert.Equal(t, []software.Present{{Buffer: 0}, {Buffer: 1}}, presents)
}

func TestFrameLifecycleErrors(t *testing.T) {
	r, _ := newTestRenderer(t)
	mesh := uploadBox(t, r)

	assert.Error(t, r.EndFrame(), "EndFrame without BeginFrame")
	assert.Error(t, r.DrawMesh(mesh, "box"), "draw outside a frame")

	require.NoError(t, r.BeginFrame())
	assert.Error(t, r.BeginFrame(), "frame already open")
	assert.Error(t, r.DrawMesh(mesh, "pyramid"), "unknown submesh")

	stale := &geometry.Mesh{Name: "stale"}
	assert.Error(t, r.DrawMesh(stale, "box"), "mesh was never uploaded")

	require.NoError(t, r.EndFrame())
	require.NoError(t, r.Present())
}

func TestResize(t *testing.T) {
	r, _ := newTestRenderer(t)
	mesh := uploadBox(t, r)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.DrawMesh(mesh, "box"))
	require.NoError(t, r.EndFrame())
	require.NoError(t, r.Present())

	assert.Error(t, r.Resize(0, 480))
	assert.Error(t, r.Resize(640, -1))

	require.NoError(t, r.Resize(800, 400))
	require.NoError(t, r.Resize(800, 400), "repeating the same size is safe")
	assert.InDelta(t, 2.0, r.AspectRatio(), 1e-6)

	// The rebuilt targets start over: buffer 0 and a fresh depth
	// transition.
	dev := r.Device().(*software.Device)
	dev.ClearExecuted()
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())
	require.NoError(t, r.Present())

	cmds := dev.Executed()
	open, ok := cmds[0].(software.Barrier)
	require.True(t, ok)
	assert.Len(t, open.Transitions, 2)
	last, ok := cmds[len(cmds)-1].(software.Present)
	require.True(t, ok)
	assert.Equal(t, 0, last.Buffer)
}

func TestMSAAToggle(t *testing.T) {
	r, _ := newTestRenderer(t)
	mesh := uploadBox(t, r)

	require.False(t, r.MSAAEnabled())
	require.NoError(t, r.SetMSAA(true))
	assert.True(t, r.MSAAEnabled())
	require.NoError(t, r.SetMSAA(true), "repeat enable is a no-op")

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.DrawMesh(mesh, "box"))
	require.NoError(t, r.EndFrame())
	require.NoError(t, r.Present())

	require.NoError(t, r.SetMSAA(false))
	assert.False(t, r.MSAAEnabled())
}

func TestSetObjectConstants(t *testing.T) {
	r, _ := newTestRenderer(t)

	constants := renderer.ObjectConstants{}
	common.Identity(constants.WorldViewProj[:])
	require.NoError(t, r.SetObjectConstants(common.StructToBytes(&constants)))

	assert.Error(t, r.SetObjectConstants(make([]byte, 512)), "oversized write")
}

// ghostResource satisfies gpu.Resource without belonging to any backend, so
// drawing with it makes the frame's submission fail.
type ghostResource struct{}

func (ghostResource) Label() string { return "ghost" }
func (ghostResource) Size() uint64  { return 0 }
func (ghostResource) Release()      {}

func TestFrameAfterSkippedFrameRenders(t *testing.T) {
	r, dev := newTestRenderer(t)
	mesh := uploadBox(t, r)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.DrawMesh(mesh, "box"))
	require.NoError(t, r.EndFrame())
	require.NoError(t, r.Present())

	bad := &geometry.Mesh{
		Name:            "bad",
		VertexBufferGPU: ghostResource{},
		IndexBufferGPU:  mesh.IndexBufferGPU,
		Submeshes:       mesh.Submeshes,
	}
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.DrawMesh(bad, "box"))
	require.ErrorIs(t, r.EndFrame(), renderer.ErrFrameSkipped)

	// The dropped frame must not poison the ones after it.
	dev.ClearExecuted()
	for i := 0; i < 2; i++ {
		require.NoError(t, r.BeginFrame())
		require.NoError(t, r.DrawMesh(mesh, "box"))
		require.NoError(t, r.EndFrame())
		require.NoError(t, r.Present())
	}

	draws := 0
	for _, c := range dev.Executed() {
		if _, ok := c.(software.Draw); ok {
			draws++
		}
	}
	assert.Equal(t, 2, draws)
}

func TestClearColorOption(t *testing.T) {
	r, dev := newTestRenderer(t, renderer.WithClearColor(0, 0, 0, 1))
	dev.ClearExecuted()

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())

	found := false
	for _, c := range dev.Executed() {
		if clear, ok := c.(software.ClearRenderTarget); ok {
			found = true
			assert.Equal(t, [4]float32{0, 0, 0, 1}, clear.Color)
		}
	}
	assert.True(t, found)

	// A runtime change applies from the next frame on.
	require.NoError(t, r.Present())
	r.SetClearColor([4]float32{1, 0, 0, 1})
	dev.ClearExecuted()
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())
	for _, c := range dev.Executed() {
		if clear, ok := c.(software.ClearRenderTarget); ok {
			assert.Equal(t, [4]float32{1, 0, 0, 1}, clear.Color)
		}
	}
}
