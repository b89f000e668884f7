package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcConstantBufferByteSize(t *testing.T) {
	cases := map[uint32]uint32{
		1:   256,
		64:  256,
		255: 256,
		256: 256,
		257: 512,
		300: 512,
		512: 512,
	}
	for in, want := range cases {
		assert.Equal(t, want, CalcConstantBufferByteSize(in))
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(3), Clamp(float32(1), 3, 15))
	assert.Equal(t, float32(15), Clamp(float32(20), 3, 15))
	assert.Equal(t, float32(7), Clamp(float32(7), 3, 15))
	assert.Equal(t, 5, Clamp(5, 0, 10))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "fallback", Coalesce("", "fallback"))
	assert.Equal(t, "set", Coalesce("set", "fallback"))
	assert.Equal(t, 4, Coalesce(0, 4))
}

func TestSliceToBytes(t *testing.T) {
	verts := []float32{1, 2, 3}
	b := SliceToBytes(verts)
	assert.Len(t, b, 12)
	assert.Nil(t, SliceToBytes([]float32(nil)))
}

func TestStructToBytes(t *testing.T) {
	type payload struct {
		A float32
		B float32
	}
	b := StructToBytes(&payload{A: 1, B: 2})
	assert.Len(t, b, 8)
}

func TestStructSize(t *testing.T) {
	type mat struct {
		M [16]float32
	}
	assert.Equal(t, uint32(64), StructSize[mat]())
}
