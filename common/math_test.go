package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// transformRow applies the row-vector convention: v' = v * m.
func transformRow(v [4]float32, m []float32) [4]float32 {
	var out [4]float32
	for c := 0; c < 4; c++ {
		for k := 0; k < 4; k++ {
			out[c] += v[k] * m[k*4+c]
		}
	}
	return out
}

func TestIdentity(t *testing.T) {
	var m [16]float32
	Identity(m[:])
	v := transformRow([4]float32{1, 2, 3, 1}, m[:])
	assert.Equal(t, [4]float32{1, 2, 3, 1}, v)
}

func TestMul4ComposesInOrder(t *testing.T) {
	var translate, scale, combined [16]float32
	Identity(translate[:])
	translate[12], translate[13], translate[14] = 10, 20, 30
	Identity(scale[:])
	scale[0], scale[5], scale[10] = 2, 2, 2

	// Transforming by Mul4(t, s) must equal translating first, then
	// scaling.
	Mul4(combined[:], translate[:], scale[:])
	v := transformRow([4]float32{1, 1, 1, 1}, combined[:])
	assert.Equal(t, [4]float32{22, 42, 62, 1}, v)
}

func TestMul4AliasingSafe(t *testing.T) {
	var a, b [16]float32
	Identity(a[:])
	a[12] = 5
	Identity(b[:])
	b[0] = 3
	Mul4(a[:], a[:], b[:])
	v := transformRow([4]float32{0, 0, 0, 1}, a[:])
	assert.Equal(t, float32(15), v[0])
}

func TestTransposeInvolution(t *testing.T) {
	m := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	out := make([]float32, 16)
	Transpose(out, m)
	assert.Equal(t, float32(5), out[1])
	assert.Equal(t, float32(2), out[4])
	Transpose(out, out)
	assert.Equal(t, m, out)
}

func TestPerspectiveFovLHDepthRange(t *testing.T) {
	var p [16]float32
	PerspectiveFovLH(p[:], 0.25*Pi, 4.0/3.0, 1, 1000)

	nearPoint := transformRow([4]float32{0, 0, 1, 1}, p[:])
	assert.InDelta(t, 0, nearPoint[2]/nearPoint[3], 1e-5, "near plane maps to depth 0")

	farPoint := transformRow([4]float32{0, 0, 1000, 1}, p[:])
	assert.InDelta(t, 1, farPoint[2]/farPoint[3], 1e-5, "far plane maps to depth 1")

	// w carries view-space depth in a left-handed projection.
	assert.InDelta(t, 1000, farPoint[3], 1e-2)
}

func TestLookAtLH(t *testing.T) {
	var view [16]float32
	LookAtLH(view[:], 0, 0, -5, 0, 0, 0, 0, 1, 0)

	eye := transformRow([4]float32{0, 0, -5, 1}, view[:])
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, eye[i], 1e-5, "eye maps to the view-space origin")
	}

	origin := transformRow([4]float32{0, 0, 0, 1}, view[:])
	assert.InDelta(t, 5, origin[2], 1e-5, "target sits ahead on +z")
}

func TestSphericalToCartesian(t *testing.T) {
	// The default orbit: theta 1.5 pi, phi pi/4, radius 5.
	x, y, z := SphericalToCartesian(5, 1.5*Pi, Pi/4)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 3.5355339, y, 1e-4)
	assert.InDelta(t, -3.5355339, z, 1e-4)

	// Points stay on the sphere.
	assert.InDelta(t, 25, x*x+y*y+z*z, 1e-3)
}

func TestRadians(t *testing.T) {
	assert.InDelta(t, Pi, Radians(180), 1e-6)
	assert.InDelta(t, Pi/4, Radians(45), 1e-6)
}
