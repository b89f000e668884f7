package profiler

import (
	"fmt"
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame rate and memory statistics for performance
// monitoring. Once per update interval it reports average FPS and
// milliseconds per frame to the stats sink (typically the window title) and
// optionally logs heap statistics.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	sink    func(stats string)
	logHeap bool
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - opts: builder options, see With* functions.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProfilerOption configures NewProfiler.
type ProfilerOption func(*Profiler)

// WithStatsSink sets the callback receiving the formatted frame stats line.
func WithStatsSink(sink func(stats string)) ProfilerOption {
	return func(p *Profiler) { p.sink = sink }
}

// WithUpdateInterval overrides how often stats are reported.
func WithUpdateInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) { p.updateInterval = interval }
}

// WithHeapLogging also logs heap usage, allocation rate and GC pauses each
// interval.
func WithHeapLogging(enabled bool) ProfilerOption {
	return func(p *Profiler) { p.logHeap = enabled }
}

// Tick should be called once per frame. When the update interval has
// elapsed it computes average FPS and frame time over the interval, pushes
// them to the stats sink and resets the window.
//
// Returns:
//   - bool: true if stats were reported this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	mspf := elapsed.Seconds() * 1000 / float64(p.frameCount)
	if p.sink != nil {
		p.sink(fmt.Sprintf("fps: %.0f   mspf: %.2f", fps, mspf))
	}

	if p.logHeap {
		p.logHeapStats(fps, elapsed)
	}

	p.frameCount = 0
	p.lastTime = currentTime
	return true
}

func (p *Profiler) logHeapStats(fps float64, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
