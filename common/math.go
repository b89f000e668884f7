package common

import (
	"github.com/chewxy/math32"
)

// Pi is the float32 circle constant used throughout the engine.
const Pi = math32.Pi

// Matrices are flat 16-element float32 slices stored in row-major order
// with the row-vector convention (v' = v * M), left-handed. Transpose is
// applied before upload for shaders that consume column-major data.

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m[:16] {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// Row-major, row-vector convention: transforming by out is equivalent to
// transforming by a, then by b.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements, may alias a or b)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[r*4+k] * b[k*4+c]
			}
			buf[r*4+c] = sum
		}
	}
	copy(out, buf[:])
}

// Transpose writes the transpose of m into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements, may alias m)
//   - m: source matrix (16 elements)
func Transpose(out, m []float32) {
	var buf [16]float32
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			buf[c*4+r] = m[r*4+c]
		}
	}
	copy(out, buf[:])
}

// PerspectiveFovLH creates a left-handed perspective projection matrix
// with clip-space depth in [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func PerspectiveFovLH(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2.0)
	for i := range out[:16] {
		out[i] = 0
	}
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (far - near)
	out[11] = 1.0
	out[14] = -near * far / (far - near)
}

// LookAtLH creates a left-handed view matrix looking from eye toward target.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eyeX, eyeY, eyeZ: camera position in world space
//   - atX, atY, atZ: point the camera looks at
//   - upX, upY, upZ: world up direction
func LookAtLH(out []float32, eyeX, eyeY, eyeZ, atX, atY, atZ, upX, upY, upZ float32) {
	// forward = normalize(at - eye)
	fx, fy, fz := atX-eyeX, atY-eyeY, atZ-eyeZ
	fLen := math32.Sqrt(fx*fx + fy*fy + fz*fz)
	fx, fy, fz = fx/fLen, fy/fLen, fz/fLen

	// right = normalize(cross(up, forward))
	rx := upY*fz - upZ*fy
	ry := upZ*fx - upX*fz
	rz := upX*fy - upY*fx
	rLen := math32.Sqrt(rx*rx + ry*ry + rz*rz)
	rx, ry, rz = rx/rLen, ry/rLen, rz/rLen

	// trueUp = cross(forward, right)
	ux := fy*rz - fz*ry
	uy := fz*rx - fx*rz
	uz := fx*ry - fy*rx

	out[0], out[1], out[2], out[3] = rx, ux, fx, 0
	out[4], out[5], out[6], out[7] = ry, uy, fy, 0
	out[8], out[9], out[10], out[11] = rz, uz, fz, 0
	out[12] = -(rx*eyeX + ry*eyeY + rz*eyeZ)
	out[13] = -(ux*eyeX + uy*eyeY + uz*eyeZ)
	out[14] = -(fx*eyeX + fy*eyeY + fz*eyeZ)
	out[15] = 1
}

// SphericalToCartesian converts orbital spherical coordinates to a world
// position (y-up: phi measured down from the +y axis, theta swept around it
// in the xz plane).
//
// Parameters:
//   - radius: distance from the origin
//   - theta: horizontal angle in radians
//   - phi: polar angle in radians
//
// Returns:
//   - x, y, z: the world-space position
func SphericalToCartesian(radius, theta, phi float32) (x, y, z float32) {
	x = radius * math32.Sin(phi) * math32.Cos(theta)
	z = radius * math32.Sin(phi) * math32.Sin(theta)
	y = radius * math32.Cos(phi)
	return
}

// Radians converts degrees to radians.
//
// Parameters:
//   - degrees: the angle in degrees
//
// Returns:
//   - float32: the angle in radians
func Radians(degrees float32) float32 {
	return degrees * (Pi / 180.0)
}
