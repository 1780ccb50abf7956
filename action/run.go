package action

import (
	"context"
	"fmt"

	"github.com/gogpu/termgpu/internal/logx"
	"github.com/gogpu/termgpu/pipeline"
	"github.com/gogpu/termgpu/resource"
	"github.com/gogpu/termgpu/shader"
)

// DefaultMaxDepth is the TriggerActionList nesting limit of a zero Runner.
const DefaultMaxDepth = 8

// Presenter receives framebuffers from Present actions.
type Presenter interface {
	Present(fb *resource.FrameBuffer) error
}

// Runner executes action lists.
type Runner struct {
	// Presenter handles Present actions.
	Presenter Presenter
	// MaxDepth bounds TriggerActionList nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Run executes a snapshot of l against st. The context is checked once
// before the first action; a started run always completes or fails.
func (r *Runner) Run(ctx context.Context, l *List, st *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st == nil {
		st = NewState(nil, 0)
	}
	return r.run(l.Snapshot(), st)
}

func (r *Runner) maxDepth() int {
	if r.MaxDepth > 0 {
		return r.MaxDepth
	}
	return DefaultMaxDepth
}

func (r *Runner) run(snap Snapshot, st *State) error {
	logx.Logger().Debug("action: run",
		"list", snap.Label, "generation", snap.Generation, "actions", len(snap.Actions), "depth", st.depth)
	for i, a := range snap.Actions {
		if err := r.exec(a, st); err != nil {
			return &Error{List: snap.Label, Index: i, Type: a.Type(), Err: err}
		}
	}
	return nil
}

func (r *Runner) exec(a Action, st *State) error {
	switch a := a.(type) {
	case Clear:
		if a.Image == nil {
			return ErrMissingResource
		}
		return a.Image.Clear(a.Texel)
	case Draw:
		if a.Pipeline == nil {
			return ErrMissingResource
		}
		stats, err := a.Pipeline.Draw(a.FrameBuffer, st.drawInput(a.Attachments), a.VertexCount, a.InstanceCount)
		st.Stats.Add(stats)
		return err
	case DrawIndirect:
		if a.Pipeline == nil {
			return ErrMissingResource
		}
		stats, err := a.Pipeline.DrawIndirect(a.FrameBuffer, st.drawInput(a.Attachments), a.Args, a.Offset)
		st.Stats.Add(stats)
		return err
	case Dispatch:
		if a.Pipeline == nil {
			return ErrMissingResource
		}
		att := &shader.Attachments{
			Buffers:       make([][]byte, len(a.Buffers)),
			PushConstants: st.PushConstants,
		}
		for i, b := range a.Buffers {
			if b != nil {
				att.Buffers[i] = b.Bytes()
			}
		}
		return a.Pipeline.Dispatch(a.Extent, att)
	case CopyBuffer:
		return copyBuffer(a)
	case CopyBufferToImage:
		return copyBufferToImage(a)
	case BindVertexBuffers:
		st.BindVertexBuffers(a.FirstIndex, a.Buffers)
		return nil
	case SetPushConstants:
		st.SetPushConstants(a.Data)
		return nil
	case RunFixedFunction:
		if a.Pipeline == nil {
			return ErrMissingResource
		}
		if err := a.Pipeline.Run(st.Payload); err != nil {
			return fmt.Errorf("%s: %w", a.Pipeline.Name(), err)
		}
		return nil
	case TriggerActionList:
		if a.List == nil {
			return ErrMissingResource
		}
		if st.depth+1 > r.maxDepth() {
			return fmt.Errorf("%w: %d", ErrTriggerDepth, r.maxDepth())
		}
		st.depth++
		defer func() { st.depth-- }()
		return r.run(a.List.Snapshot(), st)
	case Present:
		if r.Presenter == nil {
			return ErrNoPresenter
		}
		if a.FrameBuffer == nil {
			return ErrMissingResource
		}
		return r.Presenter.Present(a.FrameBuffer)
	default:
		return fmt.Errorf("action: unknown action %T", a)
	}
}

// drawInput combines per-action attachments with the run's bindings. The
// run's push constants replace those of att when set.
func (st *State) drawInput(att *shader.Attachments) pipeline.DrawInput {
	var bound shader.Attachments
	if att != nil {
		bound = *att
	}
	if st.pushSet {
		bound.PushConstants = st.PushConstants
	}
	return pipeline.DrawInput{
		VertexBuffers: st.VertexBuffers,
		Attachments:   &bound,
		Timer:         st.Timer,
	}
}

func copyBuffer(a CopyBuffer) error {
	if a.Src == nil || a.Dst == nil {
		return ErrMissingResource
	}
	src, err := a.Src.Slice(a.SrcOffset, a.Size)
	if err != nil {
		return err
	}
	return a.Dst.Write(a.DstOffset, src)
}

func copyBufferToImage(a CopyBufferToImage) error {
	if a.Buffer == nil || a.Image == nil {
		return ErrMissingResource
	}
	if a.Format != a.Image.Format() {
		return &resource.FormatError{Op: "CopyBufferToImage", Want: a.Image.Format(), Got: a.Format}
	}
	elem := uint64(a.Format.ElementSize())
	size := a.Image.Size()
	data := a.Image.Data()
	for i, reg := range a.Regions {
		ext := reg.Size
		if ext.DepthOrArrayLayers == 0 {
			ext.DepthOrArrayLayers = 1
		}
		if ext.Width == 0 || ext.Height == 0 {
			continue
		}
		o := reg.Origin
		if uint64(o.X)+uint64(ext.Width) > uint64(size.Width) ||
			uint64(o.Y)+uint64(ext.Height) > uint64(size.Height) ||
			uint64(o.Z)+uint64(ext.DepthOrArrayLayers) > uint64(size.DepthOrArrayLayers) {
			return fmt.Errorf("region %d: %w: %dx%dx%d at (%d,%d,%d) in %dx%dx%d image", i, resource.ErrOutOfBounds,
				ext.Width, ext.Height, ext.DepthOrArrayLayers, o.X, o.Y, o.Z,
				size.Width, size.Height, size.DepthOrArrayLayers)
		}
		row := uint64(ext.Width) * elem
		bpr := uint64(reg.Layout.BytesPerRow)
		if bpr == 0 {
			bpr = row
		}
		if bpr < row {
			return fmt.Errorf("region %d: bytes per row %d below row size %d", i, bpr, row)
		}
		rows := uint64(reg.Layout.RowsPerImage)
		if rows == 0 {
			rows = uint64(ext.Height)
		}
		for z := range ext.DepthOrArrayLayers {
			for y := range ext.Height {
				src, err := a.Buffer.Slice(reg.Layout.Offset+(uint64(z)*rows+uint64(y))*bpr, row)
				if err != nil {
					return fmt.Errorf("region %d: %w", i, err)
				}
				off, err := a.Image.TexelOffset(o.X, o.Y+y, o.Z+z)
				if err != nil {
					return fmt.Errorf("region %d: %w", i, err)
				}
				copy(data[off:off+int(row)], src)
			}
		}
	}
	return nil
}
