package fixedfunc

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/resource"
)

func rows(img *resource.Image) []string {
	out := make([]string, img.Height())
	for y := range img.Height() {
		var sb strings.Builder
		for x := range img.Width() {
			r, _ := img.Rune(x, y)
			if r == 0 {
				sb.WriteRune('_')
				continue
			}
			sb.WriteRune(r)
		}
		out[y] = sb.String()
	}
	return out
}

func TestTextSplit(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		w, h  uint32
		want  []string
		lines uint32
	}{
		{"wrap at space", "hello world", 8, 3, []string{"hello   ", "world   ", "        "}, 2},
		{"fits on one row", "hi there", 10, 1, []string{"hi there  "}, 1},
		{"mandatory break", "a\nb", 4, 3, []string{"a   ", "b   ", "    "}, 2},
		{"blank line", "a\n\nb", 2, 3, []string{"a ", "  ", "b "}, 3},
		{"crlf", "a\r\nb", 2, 2, []string{"a ", "b "}, 2},
		{"hard split", "abcdefghij", 4, 3, []string{"abcd", "efgh", "ij  "}, 3},
		{"wide runes", "日本", 5, 1, []string{"日_本_ "}, 1},
		{"wide rune wraps whole", "ab日", 3, 2, []string{"ab ", "日_ "}, 2},
		{"rows beyond height dropped", "a\nb\nc\nd", 2, 2, []string{"a ", "b "}, 4},
		{"empty", "", 3, 1, []string{"   "}, 0},
		{"tab becomes space", "a\tb", 3, 1, []string{"a b"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := resource.MustImage(resource.FormatT32SInt, gputypes.NewExtent2D(tt.w, tt.h))
			count := resource.NewBuffer(4)
			ts := &TextSplit{Destination: img, LineCount: count}
			if err := ts.Run([]byte(tt.text)); err != nil {
				t.Fatalf("Run: %v", err)
			}
			got := rows(img)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
			if n := binary.LittleEndian.Uint32(count.Bytes()); n != tt.lines {
				t.Errorf("line count = %d, want %d", n, tt.lines)
			}
		})
	}
}

func TestTextSplitSourceStopsAtNUL(t *testing.T) {
	src := resource.NewBuffer(16)
	copy(src.Bytes(), "ok")
	img := resource.MustImage(resource.FormatT32SInt, gputypes.NewExtent2D(4, 1))
	ts := &TextSplit{Source: src, Destination: img}
	if err := ts.Run([]byte("ignored payload")); err != nil {
		t.Fatal(err)
	}
	if got := rows(img)[0]; got != "ok  " {
		t.Errorf("row = %q, want %q", got, "ok  ")
	}
}

func TestTextSplitOverwritesPreviousContent(t *testing.T) {
	img := resource.MustImage(resource.FormatT32SInt, gputypes.NewExtent2D(3, 1))
	ts := &TextSplit{Destination: img}
	if err := ts.Run([]byte("xyz")); err != nil {
		t.Fatal(err)
	}
	if err := ts.Run([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if got := rows(img)[0]; got != "a  " {
		t.Errorf("row = %q", got)
	}
}

func TestTextSplitErrors(t *testing.T) {
	if err := (&TextSplit{}).Run(nil); !errors.Is(err, ErrNoDestination) {
		t.Errorf("no destination: err = %v", err)
	}
	colors := resource.MustImage(resource.FormatR32G32B32SFloat, gputypes.NewExtent2D(2, 2))
	if err := (&TextSplit{Destination: colors}).Run([]byte("a")); !errors.Is(err, resource.ErrFormatMismatch) {
		t.Errorf("colour destination: err = %v", err)
	}
	img := resource.MustImage(resource.FormatT32SInt, gputypes.NewExtent2D(2, 1))
	short := resource.NewBuffer(2)
	if err := (&TextSplit{Destination: img, LineCount: short}).Run([]byte("a")); !errors.Is(err, resource.ErrOutOfBounds) {
		t.Errorf("short line count buffer: err = %v", err)
	}
}

func TestRuneCells(t *testing.T) {
	tests := []struct {
		r    rune
		want int
	}{
		{'a', 1},
		{'日', 2},
		{'Ａ', 2}, // fullwidth
		{'\u0301', 0}, // combining acute
		{'\x07', 0},
	}
	for _, tt := range tests {
		if got := runeCells(tt.r); got != tt.want {
			t.Errorf("runeCells(%U) = %d, want %d", tt.r, got, tt.want)
		}
	}
}
