package camera

import (
	"testing"

	"github.com/Carmen-Shannon/forge-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOrbit(t *testing.T) {
	c := NewOrbitController()
	assert.InDelta(t, 1.5*common.Pi, c.Theta(), 1e-6)
	assert.InDelta(t, common.Pi/4, c.Phi(), 1e-6)
	assert.InDelta(t, 5, c.Radius(), 1e-6)

	x, y, z := c.Position()
	assert.InDelta(t, 0, x, 1e-4)
	assert.InDelta(t, 3.5355, y, 1e-3)
	assert.InDelta(t, -3.5355, z, 1e-3)
}

func TestLeftDragRotates(t *testing.T) {
	c := NewOrbitController(WithRotateSpeed(0.01))
	startTheta := c.Theta()
	startPhi := c.Phi()

	c.OnMouseDown(MouseButtonLeft, 100, 100)
	c.OnMouseMove(110, 120)

	assert.InDelta(t, startTheta+0.1, c.Theta(), 1e-5)
	assert.InDelta(t, startPhi+0.2, c.Phi(), 1e-5)
	assert.InDelta(t, 5, c.Radius(), 1e-6, "rotation never changes the radius")
}

func TestPhiClampedAwayFromPoles(t *testing.T) {
	c := NewOrbitController(WithRotateSpeed(0.01))
	c.OnMouseDown(MouseButtonLeft, 0, 0)

	c.OnMouseMove(0, 10000)
	assert.InDelta(t, common.Pi-0.1, c.Phi(), 1e-5)

	c.OnMouseMove(0, -20000)
	assert.InDelta(t, 0.1, c.Phi(), 1e-5)
}

func TestRightDragZooms(t *testing.T) {
	c := NewOrbitController(WithZoomSpeed(0.01))
	c.OnMouseDown(MouseButtonRight, 0, 0)

	c.OnMouseMove(100, 0)
	assert.InDelta(t, 6, c.Radius(), 1e-4)

	c.OnMouseMove(100, 50)
	assert.InDelta(t, 5.5, c.Radius(), 1e-4)
}

func TestRadiusClamped(t *testing.T) {
	c := NewOrbitController(WithZoomSpeed(1), WithRadiusBounds(3, 15))
	c.OnMouseDown(MouseButtonRight, 0, 0)

	c.OnMouseMove(100, 0)
	assert.InDelta(t, 15, c.Radius(), 1e-6)

	c.OnMouseMove(-100, 0)
	assert.InDelta(t, 3, c.Radius(), 1e-6)
}

func TestMoveWithoutDragIsIgnored(t *testing.T) {
	c := NewOrbitController()
	theta := c.Theta()
	c.OnMouseMove(500, 500)
	assert.Equal(t, theta, c.Theta())
}

func TestMouseUpEndsDrag(t *testing.T) {
	c := NewOrbitController(WithRotateSpeed(0.01))
	c.OnMouseDown(MouseButtonLeft, 0, 0)
	c.OnMouseUp(MouseButtonLeft)

	theta := c.Theta()
	c.OnMouseMove(100, 0)
	assert.Equal(t, theta, c.Theta())
}

func TestMouseUpOtherButtonKeepsDrag(t *testing.T) {
	c := NewOrbitController(WithRotateSpeed(0.01))
	c.OnMouseDown(MouseButtonLeft, 0, 0)
	c.OnMouseUp(MouseButtonRight)

	theta := c.Theta()
	c.OnMouseMove(100, 0)
	assert.NotEqual(t, theta, c.Theta())
}

func TestViewMatrixLooksAtOrigin(t *testing.T) {
	c := NewOrbitController(WithOrbit(0.3, 0.8, 7))
	var view [16]float32
	c.ViewMatrix(view[:])

	x, y, z := c.Position()
	require.InDelta(t, 49, x*x+y*y+z*z, 1e-2)

	// The camera position must land on the view-space origin.
	var eye [4]float32
	in := [4]float32{x, y, z, 1}
	for col := 0; col < 4; col++ {
		for k := 0; k < 4; k++ {
			eye[col] += in[k] * view[k*4+col]
		}
	}
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, eye[i], 1e-4)
	}
}
