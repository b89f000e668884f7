package geometry

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/forge-go/common"
	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

// Vertex is the interleaved vertex layout: position then color.
type Vertex struct {
	Position [3]float32
	Color    [4]float32
}

// VertexStride is the byte stride of one Vertex.
const VertexStride = 3*4 + 4*4

// Submesh addresses one drawable range of a Mesh's shared buffers.
type Submesh struct {
	// IndexCount is the number of indices the range spans.
	IndexCount uint32
	// StartIndexLocation is the first index within the shared index buffer.
	StartIndexLocation uint32
	// BaseVertexLocation is added to every index before vertex fetch.
	BaseVertexLocation int32
}

// Geometry is CPU-side mesh data before packing.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint16
}

// Part names a Geometry for the submesh table.
type Part struct {
	Name     string
	Geometry Geometry
}

// Mesh is a group of geometry parts packed into one vertex buffer and one
// index buffer, drawn per submesh. GPU buffers are filled in by the renderer
// when the mesh is uploaded; the uploaders stay alive until that upload has
// been flushed.
type Mesh struct {
	Name string

	VertexData []byte
	IndexData  []byte

	VertexByteStride uint32
	VertexBufferSize uint32
	IndexFormat      gpu.IndexFormat
	IndexBufferSize  uint32
	Submeshes        map[string]Submesh

	VertexBufferGPU gpu.Resource
	IndexBufferGPU  gpu.Resource
	VertexUploader  gpu.Resource
	IndexUploader   gpu.Resource
}

// Submesh looks up a drawable range by name.
func (m *Mesh) Submesh(name string) (Submesh, bool) {
	s, ok := m.Submeshes[name]
	return s, ok
}

// DisposeUploaders releases the staging buffers once the upload has been
// flushed through the GPU.
func (m *Mesh) DisposeUploaders() {
	if m.VertexUploader != nil {
		m.VertexUploader.Release()
		m.VertexUploader = nil
	}
	if m.IndexUploader != nil {
		m.IndexUploader.Release()
		m.IndexUploader = nil
	}
}

// Release frees the GPU buffers and any remaining uploaders.
func (m *Mesh) Release() {
	m.DisposeUploaders()
	if m.VertexBufferGPU != nil {
		m.VertexBufferGPU.Release()
		m.VertexBufferGPU = nil
	}
	if m.IndexBufferGPU != nil {
		m.IndexBufferGPU.Release()
		m.IndexBufferGPU = nil
	}
}

// packed is one part's serialized buffers, produced by a pool task.
type packed struct {
	vertexData []byte
	indexData  []byte
}

// BuildMesh packs parts into a single Mesh. Serialization of each part runs
// on a worker pool; the merge preserves part order, so submesh offsets are
// deterministic. BuildMesh touches no GPU state and must complete before the
// mesh is uploaded.
//
// Parameters:
//   - name: the mesh name.
//   - parts: the named geometries to pack, in submesh order.
//
// Returns:
//   - *Mesh: the packed mesh with its submesh table.
//   - error: duplicate part names or serialization failure.
func BuildMesh(name string, parts ...Part) (*Mesh, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("geometry: mesh %q has no parts", name)
	}

	// A WaitGroup provides the completion barrier; the pool's own wait is
	// meant for idle shutdown, not per-batch sync.
	pool := worker.NewDynamicWorkerPool(len(parts), len(parts), time.Second)
	results := make([]packed, len(parts))
	var wg sync.WaitGroup
	for i, p := range parts {
		wg.Add(1)
		idx, part := i, p
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				results[idx] = packed{
					vertexData: common.SliceToBytes(part.Geometry.Vertices),
					indexData:  common.SliceToBytes(part.Geometry.Indices),
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	mesh := &Mesh{
		Name:             name,
		VertexByteStride: VertexStride,
		IndexFormat:      gpu.IndexFormatUint16,
		Submeshes:        make(map[string]Submesh, len(parts)),
	}

	var baseVertex int32
	var startIndex uint32
	for i, p := range parts {
		if _, dup := mesh.Submeshes[p.Name]; dup {
			return nil, fmt.Errorf("geometry: mesh %q has duplicate part %q", name, p.Name)
		}
		mesh.VertexData = append(mesh.VertexData, results[i].vertexData...)
		mesh.IndexData = append(mesh.IndexData, results[i].indexData...)
		mesh.Submeshes[p.Name] = Submesh{
			IndexCount:         uint32(len(p.Geometry.Indices)),
			StartIndexLocation: startIndex,
			BaseVertexLocation: baseVertex,
		}
		baseVertex += int32(len(p.Geometry.Vertices))
		startIndex += uint32(len(p.Geometry.Indices))
	}
	mesh.VertexBufferSize = uint32(len(mesh.VertexData))
	mesh.IndexBufferSize = uint32(len(mesh.IndexData))
	return mesh, nil
}
