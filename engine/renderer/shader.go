package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/forge-go/common"
	"github.com/Carmen-Shannon/forge-go/engine/geometry"
	"github.com/Carmen-Shannon/forge-go/engine/gpu"
)

// ObjectConstants is the per-object uniform block. The matrix is uploaded
// transposed, so the shader's column-major layout reproduces the row-vector
// transform.
type ObjectConstants struct {
	WorldViewProj [16]float32
}

// colorShader transforms positions by the object matrix and interpolates
// per-vertex colors.
const colorShader = `
struct ObjectConstants {
    world_view_proj: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> object: ObjectConstants;

struct VertexIn {
    @location(0) position: vec3<f32>,
    @location(1) color: vec4<f32>,
};

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(in: VertexIn) -> VertexOut {
    var out: VertexOut;
    out.position = vec4<f32>(in.position, 1.0) * object.world_view_proj;
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    return in.color;
}
`

// initPipeline compiles the shader, builds the root signature, the pipeline
// and the object constant buffer with its view.
func (r *renderer) initPipeline() error {
	shader, err := r.device.CompileShader(colorShader, "color shader")
	if err != nil {
		return fmt.Errorf("renderer: shader: %w", err)
	}
	r.shader = shader

	rootSig, err := r.device.CreateRootSignature(gpu.RootSignatureDescriptor{
		Label: "object root signature",
		Parameters: []gpu.RootParameter{{
			BaseRegister:   0,
			NumDescriptors: 1,
			Visibility:     gpu.VisibilityVertex,
		}},
	})
	if err != nil {
		return fmt.Errorf("renderer: root signature: %w", err)
	}
	r.rootSig = rootSig

	if err := r.rebuildPipeline(); err != nil {
		return err
	}

	cb, err := gpu.NewUploadBuffer(r.device, "object constants", 1, common.StructSize[ObjectConstants](), true)
	if err != nil {
		return fmt.Errorf("renderer: object constant buffer: %w", err)
	}
	r.objectCB = cb
	return r.device.CreateConstantBufferView(cb.Resource(), 0, uint64(cb.ElementByteSize()), r.cbvHeap.Handle(0))
}

// rebuildPipeline bakes the pipeline for the current sample settings.
// Pipelines are immutable, so the MSAA toggle lands here.
func (r *renderer) rebuildPipeline() error {
	samples, quality := r.sampleSettings()
	pipeline, err := r.device.CreatePipelineState(gpu.PipelineStateDescriptor{
		Label:         "color pipeline",
		RootSignature: r.rootSig,
		Shader:        r.shader,
		VSEntryPoint:  "vs_main",
		PSEntryPoint:  "fs_main",
		InputLayout: []gpu.InputElement{
			{Name: "POSITION", Format: gpu.VertexFormatFloat32x3, Offset: 0},
			{Name: "COLOR", Format: gpu.VertexFormatFloat32x4, Offset: 12},
		},
		VertexStride:       geometry.VertexStride,
		Topology:           gpu.TopologyTriangleList,
		RenderTargetFormat: gpu.FormatBGRA8Unorm,
		DepthStencilFormat: gpu.FormatDepth24Stencil8,
		SampleCount:        samples,
		SampleQuality:      quality,
	})
	if err != nil {
		return fmt.Errorf("renderer: pipeline: %w", err)
	}
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	r.pipeline = pipeline
	return nil
}
