package gpu

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// Well-known backend names.
const (
	// BackendWGPU is the hardware backend.
	BackendWGPU = "wgpu"
	// BackendSoftware is the CPU fallback backend.
	BackendSoftware = "software"
)

// Options carries device-open parameters. Backends read what applies to them.
type Options struct {
	// Surface is the window surface the device presents to. The concrete
	// type is backend-specific; the software backend ignores it.
	Surface any
	// Width and Height are the initial surface extent in pixels.
	Width, Height uint32
	// Backend forces a specific backend by name. Empty selects by priority.
	Backend string
}

// Option mutates Options.
type Option func(*Options)

// WithSurface sets the window surface to present to.
func WithSurface(surface any) Option {
	return func(o *Options) { o.Surface = surface }
}

// WithSize sets the initial surface extent.
func WithSize(width, height uint32) Option {
	return func(o *Options) {
		o.Width = width
		o.Height = height
	}
}

// WithBackend forces a backend by name, bypassing priority selection.
func WithBackend(name string) Option {
	return func(o *Options) { o.Backend = name }
}

// WithSoftwareAdapter forces the CPU fallback backend.
func WithSoftwareAdapter() Option {
	return func(o *Options) { o.Backend = BackendSoftware }
}

// Factory opens a device for one backend.
type Factory func(opts Options) (Device, error)

type registration struct {
	name     string
	priority int
	open     Factory
}

var (
	registryMu sync.Mutex
	registry   = map[string]registration{}
)

// Register makes a backend available to Open. Backends call this from init.
// Higher priority backends are tried first; the software backend registers
// with the lowest priority so it only serves as a fallback.
func Register(name string, priority int, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("gpu: duplicate backend registration: " + name)
	}
	registry[name] = registration{name: name, priority: priority, open: f}
}

// Registered returns the registered backend names, highest priority first.
func Registered() []string {
	regs := snapshot()
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.name
	}
	return names
}

// Open creates a Device. With no explicit backend it tries registered
// backends in priority order and falls back to the next on failure, so a
// machine without a usable GPU still gets the software adapter.
//
// Returns:
//   - Device: the opened device.
//   - error: ErrBackendNotAvailable for an unknown forced backend, or
//     ErrNoAdapter when every backend failed to open.
func Open(opts ...Option) (Device, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	if o.Backend != "" {
		registryMu.Lock()
		reg, ok := registry[o.Backend]
		registryMu.Unlock()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrBackendNotAvailable, o.Backend)
		}
		return reg.open(o)
	}

	var lastErr error
	for _, reg := range snapshot() {
		dev, err := reg.open(o)
		if err == nil {
			return dev, nil
		}
		lastErr = err
		log.Printf("[GPU] backend %s unavailable, trying next: %v", reg.name, err)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAdapter, lastErr)
	}
	return nil, ErrNoAdapter
}

func snapshot() []registration {
	registryMu.Lock()
	regs := make([]registration, 0, len(registry))
	for _, r := range registry {
		regs = append(regs, r)
	}
	registryMu.Unlock()
	sort.Slice(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority > regs[j].priority
		}
		return regs[i].name < regs[j].name
	})
	return regs
}
