package camera

import (
	"sync"

	"github.com/Carmen-Shannon/forge-go/common"
)

// MouseButton identifies which mouse button drives a drag.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
)

// orbitController is the implementation of the OrbitController interface.
type orbitController struct {
	mu *sync.Mutex

	theta  float32
	phi    float32
	radius float32

	minRadius float32
	maxRadius float32

	rotateSpeed float32
	zoomSpeed   float32

	dragging   bool
	dragButton MouseButton
	lastX      float32
	lastY      float32
}

// OrbitController orbits the camera around the origin on a sphere described
// by an azimuth angle, a polar angle and a radius. Dragging with the left
// button rotates; dragging with the right button zooms.
type OrbitController interface {
	// OnMouseDown starts a drag at the given cursor position.
	//
	// Parameters:
	//   - button: the pressed mouse button.
	//   - x, y: cursor position in pixels.
	OnMouseDown(button MouseButton, x, y float32)

	// OnMouseUp ends the drag if button matches the one that started it.
	OnMouseUp(button MouseButton)

	// OnMouseMove updates the orbit from cursor movement while dragging.
	// Left drags rotate by a fixed angle per pixel with the polar angle
	// clamped away from the poles; right drags change the radius within
	// its bounds.
	//
	// Parameters:
	//   - x, y: cursor position in pixels.
	OnMouseMove(x, y float32)

	// Position returns the camera's world-space position on the orbit
	// sphere.
	Position() (x, y, z float32)

	// ViewMatrix writes the left-handed look-at matrix from the camera
	// position to the origin into out, which must hold 16 elements.
	ViewMatrix(out []float32)

	// Theta returns the azimuth angle in radians.
	Theta() float32

	// Phi returns the polar angle in radians.
	Phi() float32

	// Radius returns the orbit radius.
	Radius() float32
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates a controller with the default orbit: azimuth
// 1.5 pi, polar pi/4, radius 5, looking at the origin.
func NewOrbitController(opts ...OrbitOption) OrbitController {
	c := &orbitController{
		mu:          &sync.Mutex{},
		theta:       1.5 * common.Pi,
		phi:         common.Pi / 4,
		radius:      5,
		minRadius:   3,
		maxRadius:   15,
		rotateSpeed: common.Radians(0.25),
		zoomSpeed:   0.005,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *orbitController) OnMouseDown(button MouseButton, x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = true
	c.dragButton = button
	c.lastX = x
	c.lastY = y
}

func (c *orbitController) OnMouseUp(button MouseButton) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dragging && button == c.dragButton {
		c.dragging = false
	}
}

func (c *orbitController) OnMouseMove(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dragging {
		return
	}
	dx := x - c.lastX
	dy := y - c.lastY
	c.lastX = x
	c.lastY = y

	switch c.dragButton {
	case MouseButtonLeft:
		c.theta += c.rotateSpeed * dx
		c.phi += c.rotateSpeed * dy
		// Keep the camera off the poles so the view basis stays stable.
		c.phi = common.Clamp(c.phi, 0.1, common.Pi-0.1)
	case MouseButtonRight:
		c.radius += c.zoomSpeed*dx - c.zoomSpeed*dy
		c.radius = common.Clamp(c.radius, c.minRadius, c.maxRadius)
	}
}

func (c *orbitController) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.SphericalToCartesian(c.radius, c.theta, c.phi)
}

func (c *orbitController) ViewMatrix(out []float32) {
	x, y, z := c.Position()
	common.LookAtLH(out, x, y, z, 0, 0, 0, 0, 1, 0)
}

func (c *orbitController) Theta() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theta
}

func (c *orbitController) Phi() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phi
}

func (c *orbitController) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}
