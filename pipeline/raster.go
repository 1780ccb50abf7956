package pipeline

import (
	"encoding/binary"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/internal/logx"
	"github.com/gogpu/termgpu/resource"
	"github.com/gogpu/termgpu/shader"
)

// VertexBuffer is a buffer bound to a vertex binding slot. A nil Buffer
// leaves the slot unbound.
type VertexBuffer struct {
	Buffer *resource.Buffer
	Offset uint64
}

// DrawInput holds the per-run state a draw reads.
type DrawInput struct {
	// VertexBuffers is indexed by binding number.
	VertexBuffers []VertexBuffer
	// Attachments are visible to both stages.
	Attachments *shader.Attachments
	// Timer is the value of the Timer builtin in seconds.
	Timer float32
}

// DrawStats counts the work done by one draw.
type DrawStats struct {
	VertexInvocations   int
	FragmentInvocations int
	TexelsWritten       int
}

// Add accumulates o into s.
func (s *DrawStats) Add(o DrawStats) {
	s.VertexInvocations += o.VertexInvocations
	s.FragmentInvocations += o.FragmentInvocations
	s.TexelsWritten += o.TexelsWritten
}

// Draw rasterizes vertexCount/2 boxes for each of instanceCount instances
// into fb. An odd trailing vertex is ignored. The first failing shader
// invocation aborts the draw; cells written before it are kept.
func (p *RenderPipeline) Draw(fb *resource.FrameBuffer, in DrawInput, vertexCount, instanceCount uint32) (DrawStats, error) {
	var stats DrawStats
	if fb == nil {
		return stats, ErrNilFrameBuffer
	}
	if err := fb.Validate(); err != nil {
		return stats, fmt.Errorf("pipeline: %s: %w", p.name(), err)
	}

	d := &drawState{
		p:     p,
		fb:    fb,
		in:    in,
		vsIn:  make([]byte, p.vertex.Inputs().Size),
		fsIn:  make([]byte, p.fragment.Inputs().Size),
		fsOut: make([]byte, p.fragment.Outputs().Size),
		stats: &stats,
	}
	for i := range d.vsOut {
		d.vsOut[i] = make([]byte, p.vertex.Outputs().Size)
	}
	for instance := range instanceCount {
		for prim := range vertexCount / 2 {
			if err := d.primitive(instance, prim); err != nil {
				return stats, fmt.Errorf("pipeline: %s: instance %d, primitive %d: %w", p.name(), instance, prim, err)
			}
		}
	}
	logx.Logger().Debug("pipeline: draw",
		"pipeline", p.name(), "vertices", vertexCount, "instances", instanceCount,
		"fragments", stats.FragmentInvocations, "texels", stats.TexelsWritten)
	return stats, nil
}

// DrawIndirect reads vertexCount and instanceCount as two little-endian
// uint32 values at offset of args and draws.
func (p *RenderPipeline) DrawIndirect(fb *resource.FrameBuffer, in DrawInput, args *resource.Buffer, offset uint64) (DrawStats, error) {
	if args == nil {
		return DrawStats{}, fmt.Errorf("pipeline: %s: indirect draw: %w", p.name(), ErrVertexBufferUnbound)
	}
	vertexCount, err := args.Uint32(offset)
	if err != nil {
		return DrawStats{}, fmt.Errorf("pipeline: %s: indirect draw: %w", p.name(), err)
	}
	instanceCount, err := args.Uint32(offset + 4)
	if err != nil {
		return DrawStats{}, fmt.Errorf("pipeline: %s: indirect draw: %w", p.name(), err)
	}
	return p.Draw(fb, in, vertexCount, instanceCount)
}

func (p *RenderPipeline) name() string {
	if p.label != "" {
		return p.label
	}
	return "render pipeline"
}

// drawState holds the scratch windows of one draw.
type drawState struct {
	p     *RenderPipeline
	fb    *resource.FrameBuffer
	in    DrawInput
	vsIn  []byte
	vsOut [2][]byte
	fsIn  []byte
	fsOut []byte
	stats *DrawStats
}

func putBuiltin(window []byte, m *shader.IOMappings, b shader.Builtin, w uint32) {
	if off, ok := m.Builtin(b); ok {
		binary.LittleEndian.PutUint32(window[off:], w)
	}
}

func builtinInt(window []byte, m *shader.IOMappings, b shader.Builtin) int32 {
	off, _ := m.Builtin(b)
	return int32(binary.LittleEndian.Uint32(window[off:]))
}

func (d *drawState) primitive(instance, prim uint32) error {
	p := d.p
	ins, outs := p.vertex.Inputs(), p.vertex.Outputs()
	timer := math32.Float32bits(d.in.Timer)

	var corner [2][2]int32
	for v := range uint32(2) {
		index := prim*2 + v
		clear(d.vsIn)
		putBuiltin(d.vsIn, ins, shader.BuiltinVertexIndex, index)
		putBuiltin(d.vsIn, ins, shader.BuiltinInstanceIndex, instance)
		putBuiltin(d.vsIn, ins, shader.BuiltinTimer, timer)
		for _, f := range p.fetches {
			if err := d.fetch(f, instance, index); err != nil {
				return err
			}
		}
		clear(d.vsOut[v])
		d.stats.VertexInvocations++
		if err := p.vertex.Execute(d.in.Attachments, d.vsIn, d.vsOut[v]); err != nil {
			return fmt.Errorf("vertex %d: %w", index, err)
		}
		corner[v] = [2]int32{
			builtinInt(d.vsOut[v], outs, shader.BuiltinPositionX),
			builtinInt(d.vsOut[v], outs, shader.BuiltinPositionY),
		}
	}
	return d.rasterize(instance, corner[0], corner[1])
}

func (d *drawState) fetch(f vertexFetch, instance, index uint32) error {
	if int(f.attr.Binding) >= len(d.in.VertexBuffers) || d.in.VertexBuffers[f.attr.Binding].Buffer == nil {
		return fmt.Errorf("location %d: binding %d: %w", f.location, f.attr.Binding, ErrVertexBufferUnbound)
	}
	vb := d.in.VertexBuffers[f.attr.Binding]
	step := uint64(index)
	if f.binding.StepMode == gputypes.VertexStepModeInstance {
		step = uint64(instance)
	}
	src, err := vb.Buffer.Slice(vb.Offset+step*uint64(f.binding.Stride)+uint64(f.attr.Offset), uint64(f.attr.Type.Size))
	if err != nil {
		return fmt.Errorf("location %d: %w", f.location, err)
	}
	copy(d.vsIn[f.inOffset:], src)
	return nil
}

// factor normalizes c between from and to; a zero span yields 0.
func factor(c, from, to int64) float32 {
	if to == from {
		return 0
	}
	return float32(c-from) / float32(to-from)
}

func (d *drawState) rasterize(instance uint32, from, to [2]int32) error {
	p := d.p
	x0, x1 := int64(min(from[0], to[0])), int64(max(from[0], to[0]))
	y0, y1 := int64(min(from[1], to[1])), int64(max(from[1], to[1]))
	// Clip to the viewport; the border test still uses the full box.
	cx0, cx1 := max(x0, 0), min(x1, int64(p.viewport.Width)-1)
	cy0, cy1 := max(y0, 0), min(y1, int64(p.viewport.Height)-1)

	ins := p.fragment.Inputs()
	timer := math32.Float32bits(d.in.Timer)
	clear(d.fsIn)
	putBuiltin(d.fsIn, ins, shader.BuiltinInstanceIndex, instance)
	putBuiltin(d.fsIn, ins, shader.BuiltinTimer, timer)

	for y := cy0; y <= cy1; y++ {
		edgeRow := y == y0 || y == y1
		for x := cx0; x <= cx1; x++ {
			if p.border && !edgeRow && x != x0 && x != x1 {
				continue
			}
			fx := factor(x, int64(from[0]), int64(to[0]))
			fy := factor(y, int64(from[1]), int64(to[1]))
			if err := d.fragment(x, y, fx, fy); err != nil {
				return fmt.Errorf("fragment (%d,%d): %w", x, y, err)
			}
		}
	}
	return nil
}

func (d *drawState) fragment(x, y int64, fx, fy float32) error {
	p := d.p
	ins := p.fragment.Inputs()
	putBuiltin(d.fsIn, ins, shader.BuiltinPositionX, uint32(int32(x)))
	putBuiltin(d.fsIn, ins, shader.BuiltinPositionY, uint32(int32(y)))
	for _, v := range p.varyings {
		size := v.attr.Type.Size
		a := d.vsOut[0][v.outOffset : v.outOffset+size]
		b := d.vsOut[1][v.outOffset : v.outOffset+size]
		dst := d.fsIn[v.inOffset : v.inOffset+size]
		s := v.attr.InterpolationScale
		if s == [2]float32{} {
			copy(dst, a)
			continue
		}
		interpolate(dst, a, b, v.attr.Type, min(max(fx*s[0]+fy*s[1], 0), 1))
	}

	clear(d.fsOut)
	d.stats.FragmentInvocations++
	if err := p.fragment.Execute(d.in.Attachments, d.fsIn, d.fsOut); err != nil {
		return err
	}
	return d.write(x+int64(p.viewport.OffsetX), y+int64(p.viewport.OffsetY))
}

// interpolate blends a towards b by t component-wise. Float components
// are linear; int components are computed in float and truncated toward
// zero; anything else is taken from a.
func interpolate(dst, a, b []byte, typ *shader.Type, t float32) {
	kind, n := typ.Kind, uint32(1)
	if typ.Kind == shader.KindVector {
		kind, n = typ.Element.Kind, typ.ElementCount
	}
	if kind != shader.KindFloat && kind != shader.KindInt {
		copy(dst, a)
		return
	}
	for i := range n {
		wa := binary.LittleEndian.Uint32(a[4*i:])
		wb := binary.LittleEndian.Uint32(b[4*i:])
		var w uint32
		if kind == shader.KindFloat {
			fa, fb := math32.Float32frombits(wa), math32.Float32frombits(wb)
			w = math32.Float32bits(fa + (fb-fa)*t)
		} else {
			fa, fb := float32(int32(wa)), float32(int32(wb))
			w = shader.FloatToInt(math32.Float32bits(fa + (fb-fa)*t))
		}
		binary.LittleEndian.PutUint32(dst[4*i:], w)
	}
}

// write copies the fragment outputs into the framebuffer cell (x, y).
// Cells outside the framebuffer are dropped.
func (d *drawState) write(x, y int64) error {
	if x < 0 || y < 0 || x >= int64(d.fb.Width()) || y >= int64(d.fb.Height()) {
		return nil
	}
	t := d.p.targets
	ux, uy := uint32(x), uint32(y)
	planes := []struct {
		img  *resource.Image
		off  int
		size int
	}{
		{d.fb.Character, t.char, 4},
		{d.fb.Foreground, t.fg, 12},
		{d.fb.Background, t.bg, 12},
	}
	wrote := false
	for _, pl := range planes {
		if pl.off < 0 {
			continue
		}
		if err := pl.img.SetTexel(ux, uy, d.fsOut[pl.off:pl.off+pl.size]); err != nil {
			return err
		}
		wrote = true
	}
	if wrote {
		d.stats.TexelsWritten++
	}
	return nil
}
