package engine

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/Carmen-Shannon/forge-go/common"
	"github.com/Carmen-Shannon/forge-go/engine/camera"
	"github.com/Carmen-Shannon/forge-go/engine/clock"
	"github.com/Carmen-Shannon/forge-go/engine/geometry"
	"github.com/Carmen-Shannon/forge-go/engine/profiler"
	"github.com/Carmen-Shannon/forge-go/engine/renderer"
	"github.com/Carmen-Shannon/forge-go/engine/window"

	// Register the GPU backends; the renderer picks hardware first and
	// falls back to the software adapter.
	_ "github.com/Carmen-Shannon/forge-go/engine/gpu/software"
	_ "github.com/Carmen-Shannon/forge-go/engine/gpu/wgpudev"
)

// pausedSleep throttles the loop while the window is deactivated.
const pausedSleep = 100 * time.Millisecond

// engine implements the Engine interface.
// Single-threaded: the window's message loop drives timing, input, update
// and rendering, so every GPU object stays on one goroutine.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	camera   camera.OrbitController
	timer    *clock.GameTimer
	profiler *profiler.Profiler

	mesh      *geometry.Mesh
	drawNames []string

	title  string
	paused bool

	// world is the object's world transform, identity for the demo box.
	world [16]float32

	// pendingWidth/Height hold the latest resize event; targets rebuild
	// once per loop iteration rather than per event.
	pendingWidth  int
	pendingHeight int
}

// Engine wires the window, the renderer, the orbit camera, the frame timer
// and the profiler into a running demo loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the underlying renderer.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Run builds the demo geometry, uploads it, and blocks in the message
	// loop until the window closes. Per frame: the timer ticks, a paused
	// engine sleeps, frame stats go to the title once per second, the
	// camera's view feeds the object constants and the frame is recorded,
	// submitted and presented. A failed submission drops that frame.
	//
	// Returns:
	//   - error: geometry upload or fatal render failure
	Run() error
}

var _ Engine = &engine{}

// NewEngine creates the window, opens the renderer against its surface and
// assembles the demo pieces.
//
// Parameters:
//   - opts: builder options, see With* functions.
//
// Returns:
//   - Engine: the ready engine.
//   - error: renderer or device creation failure.
func NewEngine(opts ...EngineOption) (Engine, error) {
	cfg := defaultEngineOptions()
	for _, opt := range opts {
		opt(cfg)
	}

	win := window.NewWindow(
		window.WithTitle(cfg.title),
		window.WithSize(cfg.width, cfg.height),
		window.WithMinSize(200, 200),
	)

	rOpts := []renderer.RendererOption{
		renderer.WithSize(win.Width(), win.Height()),
		renderer.WithMSAA(cfg.msaa),
	}
	if cfg.software {
		rOpts = append(rOpts, renderer.WithSoftwareAdapter())
	} else {
		rOpts = append(rOpts, renderer.WithSurface(win.SurfaceDescriptor()))
	}
	r, err := renderer.NewRenderer(rOpts...)
	if err != nil {
		_ = win.Close()
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &engine{
		window:   win,
		renderer: r,
		camera:   camera.NewOrbitController(),
		timer:    clock.NewGameTimer(),
		title:    cfg.title,
	}
	common.Identity(e.world[:])
	e.profiler = profiler.NewProfiler(
		profiler.WithStatsSink(func(stats string) {
			win.SetTitle(e.title + "    " + stats)
		}),
		profiler.WithHeapLogging(cfg.heapLogging),
	)
	e.wireInput()
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Run() error {
	mesh, err := geometry.BuildMesh("shapes", geometry.Part{Name: "box", Geometry: geometry.Box()})
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := e.renderer.UploadMesh(mesh); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	e.mesh = mesh
	// Draw every submesh in a stable order.
	for name := range mesh.Submeshes {
		e.drawNames = append(e.drawNames, name)
	}
	sort.Strings(e.drawNames)

	e.timer.Reset()
	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()

	_ = e.renderer.Flush()
	e.mesh.Release()
	e.renderer.Release()
	return nil
}

// wireInput connects window events to the camera, the renderer and the
// pause state.
func (e *engine) wireInput() {
	e.window.SetMouseDownCallback(func(button window.MouseButton, x, y int32) {
		if b, ok := cameraButton(button); ok {
			e.camera.OnMouseDown(b, float32(x), float32(y))
		}
	})
	e.window.SetMouseUpCallback(func(button window.MouseButton, x, y int32) {
		if b, ok := cameraButton(button); ok {
			e.camera.OnMouseUp(b)
		}
	})
	e.window.SetMouseMoveCallback(func(x, y int32) {
		e.camera.OnMouseMove(float32(x), float32(y))
	})
	e.window.SetKeyUpCallback(func(keyCode uint32) {
		if keyCode == common.KeyF2 {
			if err := e.renderer.SetMSAA(!e.renderer.MSAAEnabled()); err != nil {
				log.Printf("[Engine] MSAA toggle failed: %v", err)
			}
		}
	})
	e.window.SetActivationCallback(func(active bool) {
		e.paused = !active
		if active {
			e.timer.Start()
		} else {
			e.timer.Stop()
		}
	})
	e.window.SetResizeCallback(func(width, height int) {
		e.pendingWidth = width
		e.pendingHeight = height
	})
}

func cameraButton(b window.MouseButton) (camera.MouseButton, bool) {
	switch b {
	case window.MouseButtonLeft:
		return camera.MouseButtonLeft, true
	case window.MouseButtonRight:
		return camera.MouseButtonRight, true
	default:
		return 0, false
	}
}

// frame is one iteration of the message loop.
func (e *engine) frame() {
	e.timer.Tick()

	if e.paused {
		time.Sleep(pausedSleep)
		return
	}

	if e.pendingWidth > 0 {
		if err := e.renderer.Resize(e.pendingWidth, e.pendingHeight); err != nil {
			log.Printf("[Engine] resize failed: %v", err)
		}
		e.pendingWidth, e.pendingHeight = 0, 0
	}

	e.profiler.Tick()
	e.update()
	if err := e.draw(); err != nil {
		log.Printf("[Engine] %v", err)
	}
}

// update recomputes the object constants from the camera orbit and the
// projection for the current aspect ratio.
func (e *engine) update() {
	var view, proj, worldView, worldViewProj [16]float32
	e.camera.ViewMatrix(view[:])
	common.PerspectiveFovLH(proj[:], 0.25*common.Pi, e.renderer.AspectRatio(), 1, 1000)
	common.Mul4(worldView[:], e.world[:], view[:])
	common.Mul4(worldViewProj[:], worldView[:], proj[:])

	var constants renderer.ObjectConstants
	common.Transpose(constants.WorldViewProj[:], worldViewProj[:])
	if err := e.renderer.SetObjectConstants(common.StructToBytes(&constants)); err != nil {
		log.Printf("[Engine] constant upload failed: %v", err)
	}
}

// draw records and presents one frame. A skipped frame is not fatal.
func (e *engine) draw() error {
	if err := e.renderer.BeginFrame(); err != nil {
		return err
	}
	for _, name := range e.drawNames {
		if err := e.renderer.DrawMesh(e.mesh, name); err != nil {
			return err
		}
	}
	if err := e.renderer.EndFrame(); err != nil {
		if errors.Is(err, renderer.ErrFrameSkipped) {
			return nil
		}
		return err
	}
	return e.renderer.Present()
}
