package present

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/text/width"

	"github.com/gogpu/termgpu/internal/logx"
	"github.com/gogpu/termgpu/resource"
)

// AutoProfile asks NewANSI to detect the colour profile of its writer.
const AutoProfile termenv.Profile = -1

// ParseProfile maps a profile name to a termenv profile. The empty
// string and "auto" yield AutoProfile.
func ParseProfile(name string) (termenv.Profile, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return AutoProfile, nil
	case "truecolor":
		return termenv.TrueColor, nil
	case "ansi256":
		return termenv.ANSI256, nil
	case "ansi":
		return termenv.ANSI, nil
	case "ascii":
		return termenv.Ascii, nil
	}
	return AutoProfile, fmt.Errorf("present: unknown colour profile %q", name)
}

// ANSI presents frames on a terminal. Each frame sends only the changed
// cells: a cursor move where the cells are not contiguous, then the rune
// styled with its foreground and background colours. A 0 rune is drawn
// as a space unless it follows a wide rune.
type ANSI struct {
	mu      sync.Mutex
	w       io.Writer
	buf     bytes.Buffer
	out     *termenv.Output
	tracker Tracker
}

// NewANSI creates a presenter writing to w with the given profile.
func NewANSI(w io.Writer, profile termenv.Profile) *ANSI {
	if profile == AutoProfile {
		profile = termenv.NewOutput(w).Profile
	}
	a := &ANSI{w: w}
	a.out = termenv.NewOutput(&a.buf, termenv.WithProfile(profile))
	return a
}

// Profile returns the colour profile in use.
func (a *ANSI) Profile() termenv.Profile { return a.out.Profile }

// Invalidate makes the next frame redraw every cell, e.g. after the
// terminal was cleared.
func (a *ANSI) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracker.Reset()
}

// Present implements Presenter.
func (a *ANSI) Present(fb *resource.FrameBuffer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cells, err := a.tracker.Changes(fb)
	if err != nil {
		return fmt.Errorf("present: ansi: %w", err)
	}
	if len(cells) == 0 {
		return nil
	}

	a.buf.Reset()
	cx, cy := -1, -1
	for _, c := range cells {
		if c.Rune == 0 && continuesWide(fb, c.X, c.Y) {
			continue
		}
		x, y := int(c.X), int(c.Y)
		if x != cx || y != cy {
			a.out.MoveCursor(y+1, x+1)
		}
		r, cellWidth := printable(c.Rune)
		style := a.out.String(string(r)).
			Foreground(a.out.FromColor(rgba(c.Foreground))).
			Background(a.out.FromColor(rgba(c.Background)))
		a.buf.WriteString(style.String())
		cx, cy = x+cellWidth, y
	}
	logx.Logger().Debug("present: ansi frame", "cells", len(cells), "bytes", a.buf.Len())
	if _, err := a.w.Write(a.buf.Bytes()); err != nil {
		a.tracker.Reset()
		return fmt.Errorf("present: ansi: %w", err)
	}
	return nil
}

// continuesWide reports whether the cell left of (x, y) holds a wide
// rune, which makes a 0 at (x, y) its second column. Any other 0 cell
// is blank and is drawn as a space.
func continuesWide(fb *resource.FrameBuffer, x, y uint32) bool {
	if x == 0 {
		return false
	}
	r, err := fb.Character.Rune(x-1, y)
	if err != nil {
		return false
	}
	_, w := printable(r)
	return w == 2
}

// printable substitutes a space for runes a terminal cannot place in a
// cell and reports how many columns r advances the cursor.
func printable(r rune) (rune, int) {
	if r < 0x20 || r == 0x7F || r > 0x10FFFF || (r >= 0xD800 && r <= 0xDFFF) {
		return ' ', 1
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return r, 2
	}
	return r, 1
}
