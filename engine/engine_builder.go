package engine

type engineOptions struct {
	title       string
	width       int
	height      int
	msaa        bool
	software    bool
	heapLogging bool
}

func defaultEngineOptions() *engineOptions {
	return &engineOptions{
		title:  "Box Demo",
		width:  800,
		height: 600,
	}
}

// EngineOption configures NewEngine.
type EngineOption func(*engineOptions)

// WithTitle sets the window title; frame stats are appended to it once per
// second.
func WithTitle(title string) EngineOption {
	return func(o *engineOptions) { o.title = title }
}

// WithSize sets the initial window size in pixels.
func WithSize(width, height int) EngineOption {
	return func(o *engineOptions) {
		o.width = width
		o.height = height
	}
}

// WithMSAA starts with 4x multisampling enabled. F2 toggles it at runtime.
func WithMSAA(enabled bool) EngineOption {
	return func(o *engineOptions) { o.msaa = enabled }
}

// WithSoftwareAdapter forces the CPU fallback backend.
func WithSoftwareAdapter() EngineOption {
	return func(o *engineOptions) { o.software = true }
}

// WithHeapLogging also logs heap and GC statistics each stats interval.
func WithHeapLogging(enabled bool) EngineOption {
	return func(o *engineOptions) { o.heapLogging = enabled }
}
