package camera

// OrbitOption configures NewOrbitController.
type OrbitOption func(*orbitController)

// WithOrbit sets the starting spherical coordinates.
func WithOrbit(theta, phi, radius float32) OrbitOption {
	return func(c *orbitController) {
		c.theta = theta
		c.phi = phi
		c.radius = radius
	}
}

// WithRadiusBounds sets the zoom limits.
func WithRadiusBounds(minRadius, maxRadius float32) OrbitOption {
	return func(c *orbitController) {
		c.minRadius = minRadius
		c.maxRadius = maxRadius
	}
}

// WithRotateSpeed sets the rotation angle per pixel of drag, in radians.
func WithRotateSpeed(radiansPerPixel float32) OrbitOption {
	return func(c *orbitController) { c.rotateSpeed = radiansPerPixel }
}

// WithZoomSpeed sets the radius change per pixel of drag.
func WithZoomSpeed(unitsPerPixel float32) OrbitOption {
	return func(c *orbitController) { c.zoomSpeed = unitsPerPixel }
}
