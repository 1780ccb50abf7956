package present

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/termgpu/resource"
)

// Snapshot renders frames into an RGBA image using a 7x13 bitmap font.
// If it has an output, every frame is also written there as a PNG.
type Snapshot struct {
	mu   sync.Mutex
	w    io.Writer
	face *basicfont.Face
	img  *image.RGBA
	n    int
}

// NewSnapshot creates a snapshot presenter. w may be nil.
func NewSnapshot(w io.Writer) *Snapshot {
	return &Snapshot{w: w, face: basicfont.Face7x13}
}

// CellSize returns the pixel size of one cell.
func (s *Snapshot) CellSize() image.Point {
	return image.Pt(s.face.Advance, s.face.Height)
}

// Present implements Presenter.
func (s *Snapshot) Present(fb *resource.FrameBuffer) error {
	if err := fb.Validate(); err != nil {
		return fmt.Errorf("present: snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cell := s.CellSize()
	bounds := image.Rect(0, 0, int(fb.Width())*cell.X, int(fb.Height())*cell.Y)
	if s.img == nil || s.img.Bounds() != bounds {
		s.img = image.NewRGBA(bounds)
	}
	d := font.Drawer{Dst: s.img, Face: s.face}
	for y := range fb.Height() {
		for x := range fb.Width() {
			tx, err := fb.Textel(x, y)
			if err != nil {
				return fmt.Errorf("present: snapshot: %w", err)
			}
			org := image.Pt(int(x)*cell.X, int(y)*cell.Y)
			rect := image.Rectangle{Min: org, Max: org.Add(cell)}
			draw.Draw(s.img, rect, image.NewUniform(rgba(tx.Background)), image.Point{}, draw.Src)
			if tx.Rune <= ' ' {
				continue
			}
			d.Src = image.NewUniform(rgba(tx.Foreground))
			d.Dot = fixed.P(org.X, org.Y+s.face.Ascent)
			d.DrawString(string(tx.Rune))
		}
	}
	s.n++
	if s.w != nil {
		if err := png.Encode(s.w, s.img); err != nil {
			return fmt.Errorf("present: snapshot: %w", err)
		}
	}
	return nil
}

// Image returns a copy of the last rendered frame, or nil before the
// first frame.
func (s *Snapshot) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return nil
	}
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// Frames returns the number of frames rendered.
func (s *Snapshot) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Discard validates and drops frames.
type Discard struct {
	mu sync.Mutex
	n  int
}

// Present implements Presenter.
func (d *Discard) Present(fb *resource.FrameBuffer) error {
	if err := fb.Validate(); err != nil {
		return fmt.Errorf("present: discard: %w", err)
	}
	d.mu.Lock()
	d.n++
	d.mu.Unlock()
	return nil
}

// Frames returns the number of frames received.
func (d *Discard) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.n
}
