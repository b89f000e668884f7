package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
	_ "github.com/Carmen-Shannon/forge-go/engine/gpu/software"
	"github.com/stretchr/testify/require"
)

// failingSwapChain fails exactly one Present and then delegates.
type failingSwapChain struct {
	gpu.SwapChain
	fail bool
}

func (f *failingSwapChain) Present() error {
	if f.fail {
		f.fail = false
		return errors.New("surface lost")
	}
	return f.SwapChain.Present()
}

func TestPresentFailureStillRetiresSubmission(t *testing.T) {
	rr, err := NewRenderer(WithSoftwareAdapter(), WithSize(320, 240))
	require.NoError(t, err)
	t.Cleanup(rr.Release)
	impl := rr.(*renderer)

	require.NoError(t, rr.BeginFrame())
	require.NoError(t, rr.EndFrame())

	impl.swapChain = &failingSwapChain{SwapChain: impl.swapChain, fail: true}
	require.Error(t, rr.Present())

	// The flush must run even when the flip fails, so the next frame can
	// reuse the allocator.
	require.NoError(t, rr.BeginFrame())
	require.NoError(t, rr.EndFrame())
	require.NoError(t, rr.Present())
}
