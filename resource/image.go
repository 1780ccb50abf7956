package resource

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// Image is a texel grid with a fixed format.
// len(Data()) is always Format().ElementSize() * width * height * depth.
type Image struct {
	size   gputypes.Extent3D
	format Format
	data   []byte
}

// NewImage allocates a zeroed image.
// A zero DepthOrArrayLayers is treated as 1.
func NewImage(format Format, size gputypes.Extent3D) (*Image, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
	img := &Image{format: format}
	img.Resize(size)
	return img, nil
}

// MustImage is like NewImage but panics on error.
func MustImage(format Format, size gputypes.Extent3D) *Image {
	img, err := NewImage(format, size)
	if err != nil {
		panic(err)
	}
	return img
}

// Size returns the image dimensions.
func (img *Image) Size() gputypes.Extent3D { return img.size }

// Width returns the image width in texels.
func (img *Image) Width() uint32 { return img.size.Width }

// Height returns the image height in texels.
func (img *Image) Height() uint32 { return img.size.Height }

// Format returns the texel format.
func (img *Image) Format() Format { return img.format }

// Data returns the live backing store. Writes through the returned slice
// mutate the image.
func (img *Image) Data() []byte { return img.data }

// Resize reallocates the backing store for a new size.
// Previous contents are lost; callers repopulate the image.
func (img *Image) Resize(size gputypes.Extent3D) {
	if size.DepthOrArrayLayers == 0 {
		size.DepthOrArrayLayers = 1
	}
	img.size = size
	n := uint64(img.format.ElementSize()) * uint64(size.Width) * uint64(size.Height) * uint64(size.DepthOrArrayLayers)
	img.data = make([]byte, n)
}

// TexelOffset returns the byte offset of texel (x, y, z).
func (img *Image) TexelOffset(x, y, z uint32) (int, error) {
	if x >= img.size.Width || y >= img.size.Height || z >= img.size.DepthOrArrayLayers {
		return 0, fmt.Errorf("%w: texel (%d,%d,%d) in %dx%dx%d image", ErrOutOfBounds,
			x, y, z, img.size.Width, img.size.Height, img.size.DepthOrArrayLayers)
	}
	idx := uint64(x) + uint64(y)*uint64(img.size.Width) +
		uint64(z)*uint64(img.size.Width)*uint64(img.size.Height)
	return int(idx * uint64(img.format.ElementSize())), nil
}

// Texel returns the live bytes of texel (x, y) in the first layer.
func (img *Image) Texel(x, y uint32) ([]byte, error) {
	off, err := img.TexelOffset(x, y, 0)
	if err != nil {
		return nil, err
	}
	return img.data[off : off+int(img.format.ElementSize())], nil
}

// SetTexel copies raw texel bytes to (x, y).
func (img *Image) SetTexel(x, y uint32, texel []byte) error {
	dst, err := img.Texel(x, y)
	if err != nil {
		return err
	}
	if len(texel) != len(dst) {
		return fmt.Errorf("resource: texel is %d bytes, %s needs %d", len(texel), img.format, len(dst))
	}
	copy(dst, texel)
	return nil
}

// Rune reads a character texel.
func (img *Image) Rune(x, y uint32) (rune, error) {
	if img.format != FormatT32SInt {
		return 0, &FormatError{Op: "Rune", Want: FormatT32SInt, Got: img.format}
	}
	t, err := img.Texel(x, y)
	if err != nil {
		return 0, err
	}
	return rune(int32(binary.LittleEndian.Uint32(t))), nil
}

// SetRune writes a character texel.
func (img *Image) SetRune(x, y uint32, r rune) error {
	if img.format != FormatT32SInt {
		return &FormatError{Op: "SetRune", Want: FormatT32SInt, Got: img.format}
	}
	t, err := img.Texel(x, y)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(t, uint32(int32(r)))
	return nil
}

// Color reads a colour texel. Alpha is always 1.
func (img *Image) Color(x, y uint32) (gputypes.Color, error) {
	if img.format != FormatR32G32B32SFloat {
		return gputypes.Color{}, &FormatError{Op: "Color", Want: FormatR32G32B32SFloat, Got: img.format}
	}
	t, err := img.Texel(x, y)
	if err != nil {
		return gputypes.Color{}, err
	}
	return DecodeColor(t), nil
}

// SetColor writes a colour texel. Alpha is ignored.
func (img *Image) SetColor(x, y uint32, c gputypes.Color) error {
	if img.format != FormatR32G32B32SFloat {
		return &FormatError{Op: "SetColor", Want: FormatR32G32B32SFloat, Got: img.format}
	}
	t, err := img.Texel(x, y)
	if err != nil {
		return err
	}
	EncodeColor(t, c)
	return nil
}

// Clear fills every texel with texel, or zeroes the image when texel is nil.
func (img *Image) Clear(texel []byte) error {
	if texel == nil {
		clear(img.data)
		return nil
	}
	size := int(img.format.ElementSize())
	if len(texel) != size {
		return fmt.Errorf("resource: clear texel is %d bytes, %s needs %d", len(texel), img.format, size)
	}
	for off := 0; off+size <= len(img.data); off += size {
		copy(img.data[off:off+size], texel)
	}
	return nil
}

// RuneTexel encodes r as a T32_SInt texel.
func RuneTexel(r rune) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(int32(r)))
	return b
}

// ColorTexel encodes c as an R32G32B32_SFloat texel.
func ColorTexel(c gputypes.Color) []byte {
	b := make([]byte, 12)
	EncodeColor(b, c)
	return b
}

// EncodeColor writes the RGB components of c into dst[0:12].
func EncodeColor(dst []byte, c gputypes.Color) {
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(float32(c.R)))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(float32(c.G)))
	binary.LittleEndian.PutUint32(dst[8:], math.Float32bits(float32(c.B)))
}

// DecodeColor reads an opaque colour from src[0:12].
func DecodeColor(src []byte) gputypes.Color {
	return gputypes.Color{
		R: float64(math.Float32frombits(binary.LittleEndian.Uint32(src[0:]))),
		G: float64(math.Float32frombits(binary.LittleEndian.Uint32(src[4:]))),
		B: float64(math.Float32frombits(binary.LittleEndian.Uint32(src[8:]))),
		A: 1,
	}
}
