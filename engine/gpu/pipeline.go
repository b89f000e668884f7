package gpu

// Shader is a compiled shader module. One module can carry multiple entry
// points.
type Shader interface {
	// Label returns the debug name given at compilation.
	Label() string

	// Release frees the module.
	Release()
}

// ShaderVisibility restricts which stages see a root parameter.
type ShaderVisibility int

const (
	VisibilityAll ShaderVisibility = iota
	VisibilityVertex
	VisibilityPixel
)

// RootParameter describes one binding slot of a root signature. Only
// descriptor tables of constant-buffer views are supported.
type RootParameter struct {
	// BaseRegister is the first shader register the table's descriptors
	// bind to.
	BaseRegister int
	// NumDescriptors is the table length.
	NumDescriptors int
	// Visibility restricts the stages that can read the table.
	Visibility ShaderVisibility
}

// RootSignatureDescriptor describes the binding contract for pipelines.
type RootSignatureDescriptor struct {
	Label      string
	Parameters []RootParameter
}

// RootSignature is the baked binding contract.
type RootSignature interface {
	Release()
}

// VertexFormat identifies an input-layout attribute type.
type VertexFormat int

const (
	VertexFormatFloat32x3 VertexFormat = iota
	VertexFormatFloat32x4
)

// InputElement describes one vertex attribute.
type InputElement struct {
	// Name matches the attribute's semantic in the shader.
	Name string
	// Format is the attribute type.
	Format VertexFormat
	// Offset is the attribute's byte offset within a vertex.
	Offset uint32
}

// PipelineStateDescriptor fixes every non-dynamic piece of pipeline
// configuration. Pipelines are immutable once created; toggling sample
// settings means creating a new one.
type PipelineStateDescriptor struct {
	Label         string
	RootSignature RootSignature
	Shader        Shader
	VSEntryPoint  string
	PSEntryPoint  string
	InputLayout   []InputElement
	VertexStride  uint32
	Topology      PrimitiveTopology

	RenderTargetFormat Format
	DepthStencilFormat Format
	SampleCount        uint32
	SampleQuality      uint32
}

// PipelineState is a baked pipeline object.
type PipelineState interface {
	Release()
}
