// Package clock provides the frame timer driving the main loop.
package clock

import "time"

// GameTimer measures per-frame delta time and total running time, with
// pause support. Time spent stopped is excluded from TotalTime. Not safe
// for concurrent use; the main loop owns it.
type GameTimer struct {
	baseTime time.Time
	stopTime time.Time
	prevTime time.Time
	paused   time.Duration
	delta    time.Duration
	stopped  bool
}

// NewGameTimer creates a timer. Call Reset before the loop starts.
func NewGameTimer() *GameTimer {
	now := time.Now()
	return &GameTimer{baseTime: now, prevTime: now}
}

// Reset restarts the timer from now.
func (t *GameTimer) Reset() {
	now := time.Now()
	t.baseTime = now
	t.prevTime = now
	t.paused = 0
	t.stopped = false
}

// Start resumes a stopped timer. The stopped span is added to the paused
// total so TotalTime keeps excluding it.
func (t *GameTimer) Start() {
	if !t.stopped {
		return
	}
	now := time.Now()
	t.paused += now.Sub(t.stopTime)
	t.prevTime = now
	t.stopped = false
}

// Stop pauses the timer.
func (t *GameTimer) Stop() {
	if t.stopped {
		return
	}
	t.stopTime = time.Now()
	t.stopped = true
}

// Tick advances the timer one frame. While stopped the delta is zero.
func (t *GameTimer) Tick() {
	if t.stopped {
		t.delta = 0
		return
	}
	now := time.Now()
	t.delta = now.Sub(t.prevTime)
	t.prevTime = now
	// Clock adjustments can produce a negative delta.
	if t.delta < 0 {
		t.delta = 0
	}
}

// DeltaTime returns the seconds elapsed between the last two Ticks.
func (t *GameTimer) DeltaTime() float64 {
	return t.delta.Seconds()
}

// TotalTime returns the seconds since Reset, not counting stopped spans.
func (t *GameTimer) TotalTime() float64 {
	if t.stopped {
		return (t.stopTime.Sub(t.baseTime) - t.paused).Seconds()
	}
	return (time.Since(t.baseTime) - t.paused).Seconds()
}

// Stopped reports whether the timer is paused.
func (t *GameTimer) Stopped() bool {
	return t.stopped
}
