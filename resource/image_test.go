package resource

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestFormatElementSize(t *testing.T) {
	tests := []struct {
		format Format
		want   uint32
	}{
		{FormatT32SInt, 4},
		{FormatR32G32B32SFloat, 12},
		{FormatUndefined, 0},
		{Format(99), 0},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.ElementSize(); got != tt.want {
				t.Errorf("ElementSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewImageDataSize(t *testing.T) {
	img, err := NewImage(FormatR32G32B32SFloat, gputypes.NewExtent2D(20, 10))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	if got, want := len(img.Data()), 12*20*10; got != want {
		t.Errorf("len(Data()) = %d, want %d", got, want)
	}
	if img.Size().DepthOrArrayLayers != 1 {
		t.Errorf("depth = %d, want 1", img.Size().DepthOrArrayLayers)
	}
}

func TestNewImageInvalidFormat(t *testing.T) {
	_, err := NewImage(FormatUndefined, gputypes.NewExtent2D(1, 1))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("NewImage(Undefined) error = %v, want ErrInvalidFormat", err)
	}
}

func TestImageRuneRowMajor(t *testing.T) {
	img := MustImage(FormatT32SInt, gputypes.NewExtent2D(20, 10))
	if err := img.SetRune(5, 9, 753); err != nil {
		t.Fatalf("SetRune: %v", err)
	}
	off, err := img.TexelOffset(5, 9, 0)
	if err != nil {
		t.Fatalf("TexelOffset: %v", err)
	}
	if want := (5 + 9*20) * 4; off != want {
		t.Errorf("TexelOffset(5,9) = %d, want %d", off, want)
	}
	r, err := img.Rune(5, 9)
	if err != nil || r != 753 {
		t.Errorf("Rune(5,9) = %d, %v; want 753", r, err)
	}
}

func TestImageOutOfBounds(t *testing.T) {
	img := MustImage(FormatT32SInt, gputypes.NewExtent2D(4, 4))
	if err := img.SetRune(4, 0, 'x'); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetRune(4,0) error = %v, want ErrOutOfBounds", err)
	}
}

func TestImageFormatMismatch(t *testing.T) {
	img := MustImage(FormatT32SInt, gputypes.NewExtent2D(2, 2))
	err := img.SetColor(0, 0, gputypes.ColorRed)
	if !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("SetColor on T32_SInt error = %v, want ErrFormatMismatch", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Want != FormatR32G32B32SFloat {
		t.Errorf("FormatError = %+v", fe)
	}
}

func TestImageColorRoundTrip(t *testing.T) {
	img := MustImage(FormatR32G32B32SFloat, gputypes.NewExtent2D(3, 3))
	c := gputypes.NewColorRGB(0.25, 0.5, 1)
	if err := img.SetColor(2, 1, c); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	got, err := img.Color(2, 1)
	if err != nil {
		t.Fatalf("Color: %v", err)
	}
	if got != c {
		t.Errorf("Color(2,1) = %v, want %v", got, c)
	}
}

func TestImageResizeLosesContents(t *testing.T) {
	img := MustImage(FormatT32SInt, gputypes.NewExtent2D(2, 2))
	_ = img.SetRune(0, 0, 'a')
	img.Resize(gputypes.NewExtent2D(3, 3))
	if len(img.Data()) != 36 {
		t.Fatalf("len(Data()) = %d, want 36", len(img.Data()))
	}
	if r, _ := img.Rune(0, 0); r != 0 {
		t.Errorf("Rune(0,0) after Resize = %q, want 0", r)
	}
}

func TestImageClear(t *testing.T) {
	img := MustImage(FormatT32SInt, gputypes.NewExtent2D(3, 2))
	if err := img.Clear(RuneTexel('#')); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for y := uint32(0); y < 2; y++ {
		for x := uint32(0); x < 3; x++ {
			if r, _ := img.Rune(x, y); r != '#' {
				t.Errorf("Rune(%d,%d) = %q, want '#'", x, y, r)
			}
		}
	}
	if err := img.Clear([]byte{1}); err == nil {
		t.Error("Clear with short texel should fail")
	}
	if err := img.Clear(nil); err != nil {
		t.Fatalf("Clear(nil): %v", err)
	}
	if r, _ := img.Rune(1, 1); r != 0 {
		t.Errorf("Rune(1,1) after Clear(nil) = %q, want 0", r)
	}
}

func TestFrameBufferTextel(t *testing.T) {
	fb := NewFrameBuffer(4, 3)
	if err := fb.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := Textel{Rune: 'Z', Foreground: gputypes.ColorWhite, Background: gputypes.ColorBlue}
	if err := fb.SetTextel(3, 2, want); err != nil {
		t.Fatalf("SetTextel: %v", err)
	}
	got, err := fb.Textel(3, 2)
	if err != nil {
		t.Fatalf("Textel: %v", err)
	}
	if got != want {
		t.Errorf("Textel(3,2) = %+v, want %+v", got, want)
	}

	clone := fb.Clone()
	_ = fb.SetTextel(3, 2, Textel{})
	if got, _ := clone.Textel(3, 2); got != want {
		t.Errorf("Clone shares storage with original")
	}
}

func TestFrameBufferValidate(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.Foreground = MustImage(FormatT32SInt, gputypes.NewExtent2D(2, 2))
	if err := fb.Validate(); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("Validate() = %v, want ErrFormatMismatch", err)
	}

	fb = NewFrameBuffer(2, 2)
	fb.Background.Resize(gputypes.NewExtent2D(3, 2))
	if err := fb.Validate(); err == nil {
		t.Error("Validate() with mismatched plane sizes = nil, want error")
	}
}
