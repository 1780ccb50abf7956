package fixedfunc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode"

	"github.com/go-text/typesetting/segmenter"
	"golang.org/x/text/width"

	"github.com/gogpu/termgpu/internal/logx"
	"github.com/gogpu/termgpu/resource"
)

// ErrNoDestination is returned by TextSplit.Run without a destination image.
var ErrNoDestination = errors.New("fixedfunc: text split has no destination")

// TextSplit wraps UTF-8 text into the rows of a character image.
//
// Lines break at Unicode line break opportunities and are filled
// greedily to the image width. East Asian wide runes take two cells, the
// second holding 0. Words longer than a row are split. Mandatory breaks
// start a new row. Unused cells become spaces and rows past the image
// height are dropped.
type TextSplit struct {
	// Source holds the text up to its first NUL byte. A nil Source reads
	// the run payload.
	Source *resource.Buffer
	// Destination is a T32_SInt image.
	Destination *resource.Image
	// LineCount, if set, receives the number of rows laid out as a
	// little-endian uint32 at offset 0, including rows that were dropped.
	LineCount *resource.Buffer
}

// Name implements Pipeline.
func (*TextSplit) Name() string { return "text-split" }

// Run implements Pipeline.
func (t *TextSplit) Run(payload []byte) error {
	dst := t.Destination
	if dst == nil {
		return ErrNoDestination
	}
	if dst.Format() != resource.FormatT32SInt {
		return &resource.FormatError{Op: "TextSplit", Want: resource.FormatT32SInt, Got: dst.Format()}
	}
	text := payload
	if t.Source != nil {
		text = t.Source.Bytes()
	}
	for i, c := range text {
		if c == 0 {
			text = text[:i]
			break
		}
	}

	if err := dst.Clear(resource.RuneTexel(' ')); err != nil {
		return err
	}
	l := layout{w: int(dst.Width()), h: int(dst.Height()), img: dst}
	l.run([]rune(string(text)))

	logx.Logger().Debug("fixedfunc: text split", "bytes", len(text), "rows", l.rows, "dropped", l.dropped)
	if t.LineCount != nil {
		var b [4]byte
		// #nosec G115 -- row counts are bounded by the input length
		binary.LittleEndian.PutUint32(b[:], uint32(l.rows))
		if err := t.LineCount.Write(0, b[:]); err != nil {
			return fmt.Errorf("fixedfunc: line count: %w", err)
		}
	}
	return nil
}

// layout is the state of one greedy wrap.
type layout struct {
	w, h     int
	img      *resource.Image
	row, col int
	rows     int // rows containing content or ended by a mandatory break
	dropped  int // runes that can never fit a row
}

func (l *layout) run(text []rune) {
	if l.w == 0 {
		return
	}
	var seg segmenter.Segmenter
	seg.Init(text)
	it := seg.LineIterator()
	for it.Next() {
		line := it.Line()
		word := trimBreaks(line.Text)
		if n := cells(trimSpaces(word)); l.col > 0 && l.col+n > l.w {
			l.newRow()
		}
		for _, r := range word {
			l.put(r)
		}
		if line.IsMandatoryBreak && len(word) < len(line.Text) {
			l.rows = max(l.rows, l.row+1)
			l.newRow()
		}
	}
}

func (l *layout) newRow() {
	l.row++
	l.col = 0
}

func (l *layout) put(r rune) {
	if r == '\t' {
		r = ' '
	}
	n := runeCells(r)
	if n == 0 {
		return
	}
	if n > l.w {
		l.dropped++
		return
	}
	if l.col+n > l.w {
		if r == ' ' {
			// Spaces hang off the end of a row.
			return
		}
		l.newRow()
	}
	l.rows = max(l.rows, l.row+1)
	if l.row < l.h {
		// Coordinates are within the image, so errors cannot occur.
		_ = l.img.SetRune(uint32(l.col), uint32(l.row), r)
		if n == 2 {
			_ = l.img.SetRune(uint32(l.col+1), uint32(l.row), 0)
		}
	}
	l.col += n
}

// runeCells is the number of terminal cells r occupies.
func runeCells(r rune) int {
	switch {
	case unicode.IsControl(r), unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf):
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

func cells(rs []rune) int {
	n := 0
	for _, r := range rs {
		n += runeCells(r)
	}
	return n
}

func isBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

func trimBreaks(rs []rune) []rune {
	for len(rs) > 0 && isBreak(rs[len(rs)-1]) {
		rs = rs[:len(rs)-1]
	}
	return rs
}

func trimSpaces(rs []rune) []rune {
	for len(rs) > 0 && unicode.IsSpace(rs[len(rs)-1]) {
		rs = rs[:len(rs)-1]
	}
	return rs
}
