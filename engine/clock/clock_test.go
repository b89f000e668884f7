package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickDelta(t *testing.T) {
	timer := NewGameTimer()
	timer.Reset()

	timer.Tick()
	time.Sleep(10 * time.Millisecond)
	timer.Tick()

	assert.GreaterOrEqual(t, timer.DeltaTime(), 0.009)
	assert.Less(t, timer.DeltaTime(), 1.0)
}

func TestStoppedDeltaIsZero(t *testing.T) {
	timer := NewGameTimer()
	timer.Reset()
	timer.Stop()

	time.Sleep(5 * time.Millisecond)
	timer.Tick()
	assert.Zero(t, timer.DeltaTime())
	assert.True(t, timer.Stopped())
}

func TestTotalTimeExcludesStoppedSpans(t *testing.T) {
	timer := NewGameTimer()
	timer.Reset()

	time.Sleep(10 * time.Millisecond)
	timer.Stop()
	frozen := timer.TotalTime()
	assert.GreaterOrEqual(t, frozen, 0.009)

	// Time passing while stopped must not count.
	time.Sleep(20 * time.Millisecond)
	assert.InDelta(t, frozen, timer.TotalTime(), 1e-9)

	timer.Start()
	assert.False(t, timer.Stopped())
	time.Sleep(10 * time.Millisecond)
	total := timer.TotalTime()
	assert.GreaterOrEqual(t, total, 0.019)
	assert.Less(t, total, 0.035, "the stopped span stays excluded")
}

func TestResetClearsPausedTime(t *testing.T) {
	timer := NewGameTimer()
	timer.Stop()
	time.Sleep(5 * time.Millisecond)
	timer.Reset()

	assert.False(t, timer.Stopped())
	assert.Less(t, timer.TotalTime(), 0.005)
}

func TestRedundantStartStop(t *testing.T) {
	timer := NewGameTimer()
	timer.Reset()

	timer.Start()
	assert.False(t, timer.Stopped())

	timer.Stop()
	timer.Stop()
	assert.True(t, timer.Stopped())
}
