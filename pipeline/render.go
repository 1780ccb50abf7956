package pipeline

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/shader"
)

// PolygonMode selects which cells of a box are rasterized.
type PolygonMode uint8

const (
	// PolygonModeFill covers every cell of the box.
	PolygonModeFill PolygonMode = iota
	// PolygonModeLine covers only the border cells.
	PolygonModeLine
)

func (m PolygonMode) String() string {
	switch m {
	case PolygonModeFill:
		return "Fill"
	case PolygonModeLine:
		return "Line"
	default:
		return fmt.Sprintf("PolygonMode(%d)", uint8(m))
	}
}

// Topology describes how vertex pairs form primitives.
type Topology uint8

const (
	// TopologyAxisAlignedQuadList treats each vertex pair as opposite
	// corners of a box.
	TopologyAxisAlignedQuadList Topology = iota
	// TopologyLineStrip draws the border of each box, like PolygonModeLine.
	TopologyLineStrip
)

func (t Topology) String() string {
	switch t {
	case TopologyAxisAlignedQuadList:
		return "AxisAlignedQuadList"
	case TopologyLineStrip:
		return "LineStrip"
	default:
		return fmt.Sprintf("Topology(%d)", uint8(t))
	}
}

// VertexBinding describes how one vertex buffer binding steps.
type VertexBinding struct {
	Stride   uint32
	StepMode gputypes.VertexStepMode // Vertex or Instance
}

// VertexAttribute feeds a vertex shader input location from a binding.
type VertexAttribute struct {
	Binding uint32
	Type    *shader.Type
	Offset  uint32
}

// FragmentAttribute forwards a vertex output location to the fragment
// shader input at the same location.
//
// The value is blended between the two corners by
// clamp(fx*Scale[0] + fy*Scale[1], 0, 1), where fx and fy are the cell's
// normalized position inside the box. A zero Scale passes the first
// corner's value unchanged.
type FragmentAttribute struct {
	Type               *shader.Type
	InterpolationScale [2]float32
}

// Viewport is the cell rectangle primitives are rasterized into.
// Cell (x, y) of the viewport lands at (x+OffsetX, y+OffsetY) of the
// framebuffer.
type Viewport struct {
	OffsetX, OffsetY int32
	Width, Height    uint32
}

// Rect is a cell rectangle relative to the viewport.
type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// RenderPipelineDescriptor describes a render pipeline.
type RenderPipelineDescriptor struct {
	Label string

	Vertex   shader.Executor
	Fragment shader.Executor

	VertexBindings     map[uint32]VertexBinding     // binding -> layout
	VertexAttributes   map[uint32]VertexAttribute   // vertex input location -> source
	FragmentAttributes map[uint32]FragmentAttribute // location -> interpolation

	Viewport    Viewport
	Scissors    []Rect // validated against the viewport, never used to clip
	PolygonMode PolygonMode
	Topology    Topology
}

// vertexFetch is a resolved vertex attribute.
type vertexFetch struct {
	location uint32
	inOffset uint32
	attr     VertexAttribute
	binding  VertexBinding
}

// varying is a resolved fragment attribute.
type varying struct {
	location  uint32
	outOffset uint32 // in the vertex output window
	inOffset  uint32 // in the fragment input window
	attr      FragmentAttribute
}

// targets are the fragment output offsets of the three planes, -1 when
// the fragment shader does not write that plane.
type targets struct {
	char, fg, bg int
}

// RenderPipeline is an immutable, validated render pipeline.
//
// RenderPipeline is safe for concurrent use if its executors are.
type RenderPipeline struct {
	label    string
	vertex   shader.Executor
	fragment shader.Executor
	viewport Viewport
	border   bool

	fetches  []vertexFetch
	varyings []varying
	targets  targets
}

// NewRenderPipeline validates desc and builds a pipeline.
func NewRenderPipeline(desc *RenderPipelineDescriptor) (*RenderPipeline, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	}
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidDescriptor, desc.name(), fmt.Sprintf(format, args...))
	}

	if desc.Vertex == nil || desc.Vertex.Stage() != gputypes.ShaderStageVertex {
		return nil, invalid("vertex stage missing or not a vertex shader")
	}
	if desc.Fragment == nil || desc.Fragment.Stage() != gputypes.ShaderStageFragment {
		return nil, invalid("fragment stage missing or not a fragment shader")
	}
	if desc.PolygonMode > PolygonModeLine {
		return nil, invalid("unknown polygon mode %s", desc.PolygonMode)
	}
	if desc.Topology > TopologyLineStrip {
		return nil, invalid("unknown topology %s", desc.Topology)
	}
	vp := desc.Viewport
	if vp.Width == 0 || vp.Height == 0 {
		return nil, invalid("empty viewport")
	}
	for i, s := range desc.Scissors {
		if s.X < 0 || s.Y < 0 || uint64(s.X)+uint64(s.Width) > uint64(vp.Width) || uint64(s.Y)+uint64(s.Height) > uint64(vp.Height) {
			return nil, invalid("scissor %d %+v outside viewport %dx%d", i, s, vp.Width, vp.Height)
		}
	}

	vsIn, vsOut := desc.Vertex.Inputs(), desc.Vertex.Outputs()
	fsIn := desc.Fragment.Inputs()
	for _, b := range []shader.Builtin{shader.BuiltinPositionX, shader.BuiltinPositionY} {
		if _, ok := vsOut.Builtin(b); !ok {
			return nil, invalid("vertex shader does not write %s", b)
		}
	}

	p := &RenderPipeline{
		label:    desc.Label,
		vertex:   desc.Vertex,
		fragment: desc.Fragment,
		viewport: vp,
		border:   desc.PolygonMode == PolygonModeLine || desc.Topology == TopologyLineStrip,
	}

	for _, loc := range sortedKeys(desc.VertexAttributes) {
		attr := desc.VertexAttributes[loc]
		b, ok := desc.VertexBindings[attr.Binding]
		if !ok {
			return nil, invalid("vertex attribute %d uses undeclared binding %d", loc, attr.Binding)
		}
		if b.StepMode != gputypes.VertexStepModeVertex && b.StepMode != gputypes.VertexStepModeInstance {
			return nil, invalid("binding %d has step mode %s", attr.Binding, b.StepMode)
		}
		off, ok := vsIn.Location(loc)
		if !ok {
			return nil, invalid("vertex shader has no input location %d", loc)
		}
		if attr.Type == nil || !attr.Type.Equal(vsIn.LocationTypes[loc]) {
			return nil, invalid("vertex attribute %d is %s, shader declares %s", loc, attr.Type, vsIn.LocationTypes[loc])
		}
		p.fetches = append(p.fetches, vertexFetch{location: loc, inOffset: off, attr: attr, binding: b})
	}

	for _, loc := range sortedKeys(desc.FragmentAttributes) {
		attr := desc.FragmentAttributes[loc]
		outOff, ok := vsOut.Location(loc)
		if !ok {
			return nil, invalid("fragment attribute %d is not a vertex output", loc)
		}
		inOff, ok := fsIn.Location(loc)
		if !ok {
			return nil, invalid("fragment attribute %d is not a fragment input", loc)
		}
		if attr.Type == nil || !attr.Type.Equal(vsOut.LocationTypes[loc]) || !attr.Type.Equal(fsIn.LocationTypes[loc]) {
			return nil, invalid("fragment attribute %d is %s, vertex writes %s, fragment reads %s",
				loc, attr.Type, vsOut.LocationTypes[loc], fsIn.LocationTypes[loc])
		}
		p.varyings = append(p.varyings, varying{location: loc, outOffset: outOff, inOffset: inOff, attr: attr})
	}

	t, err := resolveTargets(desc.Fragment.Outputs())
	if err != nil {
		return nil, invalid("%v", err)
	}
	p.targets = t
	return p, nil
}

func (d *RenderPipelineDescriptor) name() string {
	if d.Label != "" {
		return d.Label
	}
	return "render pipeline"
}

// Label returns the descriptor label.
func (p *RenderPipeline) Label() string { return p.label }

// Viewport returns the pipeline viewport.
func (p *RenderPipeline) Viewport() Viewport { return p.viewport }

var vec3Float = shader.VectorOf(shader.Float(), 3)

// resolveTargets maps fragment outputs to planes. Location 0 is either
// the character or a textel struct {int, vec3<float>, vec3<float>} whose
// trailing members may be omitted; locations 1 and 2 carry the foreground
// and background colours.
func resolveTargets(out *shader.IOMappings) (targets, error) {
	t := targets{char: -1, fg: -1, bg: -1}
	if off, ok := out.Location(0); ok {
		typ := out.LocationTypes[0]
		switch {
		case typ.Equal(shader.Int()):
			t.char = int(off)
		case typ.Kind == shader.KindStruct && len(typ.Members) >= 1 && len(typ.Members) <= 3:
			if !typ.Members[0].Equal(shader.Int()) {
				return t, fmt.Errorf("textel character is %s, want int", typ.Members[0])
			}
			t.char = int(off)
			for i, m := range typ.Members[1:] {
				if !m.Equal(vec3Float) {
					return t, fmt.Errorf("textel member %d is %s, want %s", i+1, m, vec3Float)
				}
			}
			if len(typ.Members) >= 2 {
				t.fg = int(off + typ.MemberOffset(1))
			}
			if len(typ.Members) == 3 {
				t.bg = int(off + typ.MemberOffset(2))
			}
		default:
			return t, fmt.Errorf("fragment output 0 is %s, want int or textel struct", typ)
		}
	}
	for loc, dst := range map[uint32]*int{1: &t.fg, 2: &t.bg} {
		off, ok := out.Location(loc)
		if !ok {
			continue
		}
		if *dst >= 0 {
			return t, fmt.Errorf("fragment output %d duplicates a textel struct member", loc)
		}
		if typ := out.LocationTypes[loc]; !typ.Equal(vec3Float) {
			return t, fmt.Errorf("fragment output %d is %s, want %s", loc, typ, vec3Float)
		}
		*dst = int(off)
	}
	return t, nil
}

func sortedKeys[V any](m map[uint32]V) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
