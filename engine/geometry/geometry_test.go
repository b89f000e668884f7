package geometry

import (
	"testing"

	"github.com/Carmen-Shannon/forge-go/engine/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	box := Box()
	assert.Len(t, box.Vertices, 8)
	assert.Len(t, box.Indices, 36)

	// A unit cube centered on the origin.
	for _, v := range box.Vertices {
		for _, p := range v.Position {
			assert.InDelta(t, 1, p*p, 1e-6)
		}
	}
	for _, i := range box.Indices {
		assert.Less(t, int(i), len(box.Vertices))
	}
}

func TestBuildMeshSingle(t *testing.T) {
	mesh, err := BuildMesh("shapes", Part{Name: "box", Geometry: Box()})
	require.NoError(t, err)

	assert.Equal(t, "shapes", mesh.Name)
	assert.Equal(t, uint32(VertexStride), mesh.VertexByteStride)
	assert.Equal(t, gpu.IndexFormatUint16, mesh.IndexFormat)
	assert.Len(t, mesh.VertexData, 8*VertexStride)
	assert.Len(t, mesh.IndexData, 36*2)
	assert.Equal(t, uint32(len(mesh.VertexData)), mesh.VertexBufferSize)
	assert.Equal(t, uint32(len(mesh.IndexData)), mesh.IndexBufferSize)

	sm, ok := mesh.Submesh("box")
	require.True(t, ok)
	assert.Equal(t, Submesh{IndexCount: 36}, sm)

	_, ok = mesh.Submesh("sphere")
	assert.False(t, ok)
}

func TestBuildMeshOffsets(t *testing.T) {
	mesh, err := BuildMesh("scene",
		Part{Name: "first", Geometry: Box()},
		Part{Name: "second", Geometry: Box()},
		Part{Name: "third", Geometry: Box()},
	)
	require.NoError(t, err)

	first, _ := mesh.Submesh("first")
	second, _ := mesh.Submesh("second")
	third, _ := mesh.Submesh("third")

	assert.Equal(t, Submesh{IndexCount: 36}, first)
	assert.Equal(t, Submesh{IndexCount: 36, StartIndexLocation: 36, BaseVertexLocation: 8}, second)
	assert.Equal(t, Submesh{IndexCount: 36, StartIndexLocation: 72, BaseVertexLocation: 16}, third)

	assert.Len(t, mesh.VertexData, 3*8*VertexStride)
	assert.Len(t, mesh.IndexData, 3*36*2)
}

func TestBuildMeshDuplicateName(t *testing.T) {
	_, err := BuildMesh("scene",
		Part{Name: "box", Geometry: Box()},
		Part{Name: "box", Geometry: Box()},
	)
	assert.Error(t, err)
}

func TestBuildMeshNoParts(t *testing.T) {
	_, err := BuildMesh("empty")
	assert.Error(t, err)
}
