package renderer

import "github.com/Carmen-Shannon/forge-go/engine/gpu"

// lightSteelBlue is the default clear color.
var lightSteelBlue = [4]float32{0.690196097, 0.768627524, 0.870588303, 1.0}

type rendererOptions struct {
	backend    string
	surface    any
	width      int
	height     int
	clearColor [4]float32
	msaa       bool
}

func defaultRendererOptions() *rendererOptions {
	return &rendererOptions{
		width:      800,
		height:     600,
		clearColor: lightSteelBlue,
	}
}

// RendererOption configures NewRenderer.
type RendererOption func(*rendererOptions)

// WithSurface sets the window surface the swap chain presents to. The
// concrete type is backend-specific; without a surface only the software
// backend can present.
func WithSurface(surface any) RendererOption {
	return func(o *rendererOptions) { o.surface = surface }
}

// WithSize sets the initial back buffer size in pixels.
func WithSize(width, height int) RendererOption {
	return func(o *rendererOptions) {
		o.width = width
		o.height = height
	}
}

// WithBackendName forces a specific GPU backend.
func WithBackendName(name string) RendererOption {
	return func(o *rendererOptions) { o.backend = name }
}

// WithSoftwareAdapter forces the CPU fallback backend.
func WithSoftwareAdapter() RendererOption {
	return func(o *rendererOptions) { o.backend = gpu.BackendSoftware }
}

// WithClearColor sets the per-frame clear color.
func WithClearColor(r, g, b, a float32) RendererOption {
	return func(o *rendererOptions) { o.clearColor = [4]float32{r, g, b, a} }
}

// WithMSAA starts the renderer with 4x multisampling enabled.
func WithMSAA(enabled bool) RendererOption {
	return func(o *rendererOptions) { o.msaa = enabled }
}
