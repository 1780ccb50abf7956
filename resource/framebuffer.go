package resource

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Textel is the character, foreground and background of one cell.
type Textel struct {
	Rune       rune
	Foreground gputypes.Color
	Background gputypes.Color
}

// FrameBuffer is the three-plane render target of a render pipeline.
type FrameBuffer struct {
	Character  *Image
	Foreground *Image
	Background *Image
}

// NewFrameBuffer allocates a zeroed width x height framebuffer.
func NewFrameBuffer(width, height uint32) *FrameBuffer {
	size := gputypes.NewExtent2D(width, height)
	return &FrameBuffer{
		Character:  MustImage(FormatT32SInt, size),
		Foreground: MustImage(FormatR32G32B32SFloat, size),
		Background: MustImage(FormatR32G32B32SFloat, size),
	}
}

// Validate checks that all planes are present, correctly formatted and
// of the same size.
func (fb *FrameBuffer) Validate() error {
	if fb == nil || fb.Character == nil || fb.Foreground == nil || fb.Background == nil {
		return fmt.Errorf("resource: framebuffer is missing a plane")
	}
	if fb.Character.Format() != FormatT32SInt {
		return &FormatError{Op: "FrameBuffer.Character", Want: FormatT32SInt, Got: fb.Character.Format()}
	}
	if fb.Foreground.Format() != FormatR32G32B32SFloat {
		return &FormatError{Op: "FrameBuffer.Foreground", Want: FormatR32G32B32SFloat, Got: fb.Foreground.Format()}
	}
	if fb.Background.Format() != FormatR32G32B32SFloat {
		return &FormatError{Op: "FrameBuffer.Background", Want: FormatR32G32B32SFloat, Got: fb.Background.Format()}
	}
	size := fb.Character.Size()
	if fb.Foreground.Size() != size || fb.Background.Size() != size {
		return fmt.Errorf("resource: framebuffer planes differ in size")
	}
	return nil
}

// Width returns the width of the character plane.
func (fb *FrameBuffer) Width() uint32 { return fb.Character.Width() }

// Height returns the height of the character plane.
func (fb *FrameBuffer) Height() uint32 { return fb.Character.Height() }

// Resize reallocates all three planes. Contents are lost.
func (fb *FrameBuffer) Resize(width, height uint32) {
	size := gputypes.NewExtent2D(width, height)
	fb.Character.Resize(size)
	fb.Foreground.Resize(size)
	fb.Background.Resize(size)
}

// Textel reads cell (x, y) from all three planes.
func (fb *FrameBuffer) Textel(x, y uint32) (Textel, error) {
	r, err := fb.Character.Rune(x, y)
	if err != nil {
		return Textel{}, err
	}
	fg, err := fb.Foreground.Color(x, y)
	if err != nil {
		return Textel{}, err
	}
	bg, err := fb.Background.Color(x, y)
	if err != nil {
		return Textel{}, err
	}
	return Textel{Rune: r, Foreground: fg, Background: bg}, nil
}

// SetTextel writes cell (x, y) into all three planes.
func (fb *FrameBuffer) SetTextel(x, y uint32, t Textel) error {
	if err := fb.Character.SetRune(x, y, t.Rune); err != nil {
		return err
	}
	if err := fb.Foreground.SetColor(x, y, t.Foreground); err != nil {
		return err
	}
	return fb.Background.SetColor(x, y, t.Background)
}

// Clone returns a deep copy of the framebuffer.
func (fb *FrameBuffer) Clone() *FrameBuffer {
	return &FrameBuffer{
		Character:  fb.Character.Clone(),
		Foreground: fb.Foreground.Clone(),
		Background: fb.Background.Clone(),
	}
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	return &Image{
		size:   img.size,
		format: img.format,
		data:   append([]byte(nil), img.data...),
	}
}
