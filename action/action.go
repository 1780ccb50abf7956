package action

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/fixedfunc"
	"github.com/gogpu/termgpu/pipeline"
	"github.com/gogpu/termgpu/resource"
	"github.com/gogpu/termgpu/shader"
)

// ActionType identifies an Action variant.
type ActionType uint8

// Action types.
const (
	ActClear ActionType = iota
	ActDraw
	ActDrawIndirect
	ActDispatch
	ActCopyBuffer
	ActCopyBufferToImage
	ActBindVertexBuffers
	ActSetPushConstants
	ActRunFixedFunction
	ActTriggerActionList
	ActPresent
)

var actionTypeNames = [...]string{
	ActClear:             "Clear",
	ActDraw:              "Draw",
	ActDrawIndirect:      "DrawIndirect",
	ActDispatch:          "Dispatch",
	ActCopyBuffer:        "CopyBuffer",
	ActCopyBufferToImage: "CopyBufferToImage",
	ActBindVertexBuffers: "BindVertexBuffers",
	ActSetPushConstants:  "SetPushConstants",
	ActRunFixedFunction:  "RunFixedFunction",
	ActTriggerActionList: "TriggerActionList",
	ActPresent:           "Present",
}

// String returns the name of the action type.
func (t ActionType) String() string {
	if int(t) < len(actionTypeNames) {
		return actionTypeNames[t]
	}
	return "Unknown"
}

// Action is implemented by every action variant.
type Action interface {
	Type() ActionType
}

// Clear fills Image with Texel, or zeroes it when Texel is nil.
type Clear struct {
	Image *resource.Image
	Texel []byte
}

// Type implements Action.
func (Clear) Type() ActionType { return ActClear }

// Draw rasterizes VertexCount/2 boxes per instance into FrameBuffer using
// the run's bound vertex buffers.
type Draw struct {
	Pipeline      *pipeline.RenderPipeline
	Attachments   *shader.Attachments
	FrameBuffer   *resource.FrameBuffer
	VertexCount   uint32
	InstanceCount uint32
}

// Type implements Action.
func (Draw) Type() ActionType { return ActDraw }

// DrawIndirect is Draw with the vertex and instance counts read from Args
// at Offset when the action runs.
type DrawIndirect struct {
	Pipeline    *pipeline.RenderPipeline
	Attachments *shader.Attachments
	FrameBuffer *resource.FrameBuffer
	Args        *resource.Buffer
	Offset      uint64
}

// Type implements Action.
func (DrawIndirect) Type() ActionType { return ActDrawIndirect }

// Dispatch invokes a compute pipeline. Buffers are indexed by binding; a
// nil entry leaves that binding empty.
type Dispatch struct {
	Pipeline *pipeline.ComputePipeline
	Extent   gputypes.Extent3D
	Buffers  []*resource.Buffer
}

// Type implements Action.
func (Dispatch) Type() ActionType { return ActDispatch }

// CopyBuffer copies Size bytes from Src at SrcOffset to Dst at DstOffset.
// Src and Dst may be the same buffer.
type CopyBuffer struct {
	Src       *resource.Buffer
	Dst       *resource.Buffer
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// Type implements Action.
func (CopyBuffer) Type() ActionType { return ActCopyBuffer }

// CopyRegion is one box of texels copied from a buffer into an image.
// A zero BytesPerRow or RowsPerImage in Layout means tightly packed.
type CopyRegion struct {
	Layout gputypes.TextureDataLayout
	Origin gputypes.Origin3D
	Size   gputypes.Extent3D
}

// CopyBufferToImage copies texel data laid out in Format into Image.
// Format must match the image format.
type CopyBufferToImage struct {
	Buffer  *resource.Buffer
	Format  resource.Format
	Image   *resource.Image
	Regions []CopyRegion
}

// Type implements Action.
func (CopyBufferToImage) Type() ActionType { return ActCopyBufferToImage }

// BindVertexBuffers replaces the bound vertex buffers starting at
// FirstIndex. Bindings outside the replaced window are kept.
type BindVertexBuffers struct {
	FirstIndex uint32
	Buffers    []pipeline.VertexBuffer
}

// Type implements Action.
func (BindVertexBuffers) Type() ActionType { return ActBindVertexBuffers }

// SetPushConstants stages Data for the draws and dispatches that follow
// in the same run.
type SetPushConstants struct {
	Data []byte
}

// Type implements Action.
func (SetPushConstants) Type() ActionType { return ActSetPushConstants }

// RunFixedFunction runs a built-in stage with the run payload.
type RunFixedFunction struct {
	Pipeline fixedfunc.Pipeline
}

// Type implements Action.
func (RunFixedFunction) Type() ActionType { return ActRunFixedFunction }

// TriggerActionList runs the current contents of List inline.
type TriggerActionList struct {
	List *List
}

// Type implements Action.
func (TriggerActionList) Type() ActionType { return ActTriggerActionList }

// Present hands FrameBuffer to the runner's presenter.
type Present struct {
	FrameBuffer *resource.FrameBuffer
}

// Type implements Action.
func (Present) Type() ActionType { return ActPresent }
