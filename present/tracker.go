package present

import (
	"bytes"

	"github.com/gogpu/termgpu/resource"
)

// Tracker remembers the last presented frame and reports changed cells.
// The zero value reports every cell of the first frame.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	prev *resource.FrameBuffer
}

// Reset forgets the previous frame so the next Changes is a full frame.
func (t *Tracker) Reset() { t.prev = nil }

// Changes returns the cells of fb that differ from the previous call, in
// row-major order, and records fb as the new baseline. A size change
// reports every cell.
func (t *Tracker) Changes(fb *resource.FrameBuffer) ([]Cell, error) {
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	full := t.prev == nil || t.prev.Width() != fb.Width() || t.prev.Height() != fb.Height()

	var cells []Cell
	w, h := fb.Width(), fb.Height()
	for y := range h {
		for x := range w {
			if !full && !t.changed(fb, x, y) {
				continue
			}
			tx, err := fb.Textel(x, y)
			if err != nil {
				return nil, err
			}
			cells = append(cells, Cell{X: x, Y: y, Textel: tx})
		}
	}

	if full {
		t.prev = fb.Clone()
	} else {
		copy(t.prev.Character.Data(), fb.Character.Data())
		copy(t.prev.Foreground.Data(), fb.Foreground.Data())
		copy(t.prev.Background.Data(), fb.Background.Data())
	}
	return cells, nil
}

func (t *Tracker) changed(fb *resource.FrameBuffer, x, y uint32) bool {
	for _, planes := range [...][2]*resource.Image{
		{t.prev.Character, fb.Character},
		{t.prev.Foreground, fb.Foreground},
		{t.prev.Background, fb.Background},
	} {
		a, _ := planes[0].Texel(x, y)
		b, _ := planes[1].Texel(x, y)
		if !bytes.Equal(a, b) {
			return true
		}
	}
	return false
}
