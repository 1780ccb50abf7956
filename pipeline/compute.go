package pipeline

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/internal/logx"
	"github.com/gogpu/termgpu/shader"
)

// ComputePipelineDescriptor describes a compute pipeline.
type ComputePipelineDescriptor struct {
	Label  string
	Shader shader.Executor
}

// ComputePipeline runs a compute shader against buffer attachments.
type ComputePipeline struct {
	label  string
	shader shader.Executor
}

// NewComputePipeline validates desc and builds a pipeline.
func NewComputePipeline(desc *ComputePipelineDescriptor) (*ComputePipeline, error) {
	if desc == nil || desc.Shader == nil {
		return nil, fmt.Errorf("%w: compute pipeline without a shader", ErrInvalidDescriptor)
	}
	if st := desc.Shader.Stage(); st != gputypes.ShaderStageCompute {
		return nil, fmt.Errorf("%w: compute pipeline given a %s shader", ErrInvalidDescriptor, st)
	}
	return &ComputePipeline{label: desc.Label, shader: desc.Shader}, nil
}

// Label returns the descriptor label.
func (p *ComputePipeline) Label() string { return p.label }

// Dispatch invokes the shader exactly once, whatever the extent. Only the
// buffers and push constants of att are visible; images are withheld.
// The extent must be non-empty in every dimension.
func (p *ComputePipeline) Dispatch(extent gputypes.Extent3D, att *shader.Attachments) error {
	if extent.Width == 0 || extent.Height == 0 || extent.DepthOrArrayLayers == 0 {
		return fmt.Errorf("pipeline: dispatch %dx%dx%d: empty extent",
			extent.Width, extent.Height, extent.DepthOrArrayLayers)
	}
	var bound shader.Attachments
	if att != nil {
		bound.Buffers = att.Buffers
		bound.PushConstants = att.PushConstants
	}
	input := make([]byte, p.shader.Inputs().Size)
	output := make([]byte, p.shader.Outputs().Size)
	logx.Logger().Debug("pipeline: dispatch",
		"pipeline", p.label, "width", extent.Width, "height", extent.Height, "depth", extent.DepthOrArrayLayers)
	if err := p.shader.Execute(&bound, input, output); err != nil {
		return fmt.Errorf("pipeline: dispatch %s: %w", p.label, err)
	}
	return nil
}
