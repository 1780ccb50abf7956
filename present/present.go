package present

import (
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/resource"
)

// Presenter delivers framebuffers.
type Presenter interface {
	Present(fb *resource.FrameBuffer) error
}

// Cell is one changed framebuffer cell.
type Cell struct {
	X, Y uint32
	resource.Textel
}

// rgba converts a framebuffer colour to 8-bit RGBA. Components are
// clamped to [0, 1] and alpha is opaque.
func rgba(c gputypes.Color) color.RGBA {
	return color.RGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: 0xFF}
}

func channel(v float64) uint8 {
	switch {
	case v != v || v <= 0:
		return 0
	case v >= 1:
		return 0xFF
	}
	return uint8(v*255 + 0.5)
}
