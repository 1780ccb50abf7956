package resource

import (
	"errors"
	"fmt"
)

// Format describes the layout of one texel.
type Format uint32

const (
	// FormatUndefined is the zero value and is never valid for an image.
	FormatUndefined Format = iota
	// FormatT32SInt is one little-endian 32-bit Unicode scalar (4 bytes).
	FormatT32SInt
	// FormatR32G32B32SFloat is three little-endian 32-bit floats (12 bytes).
	FormatR32G32B32SFloat
)

// formatNames maps Format values to their string representation.
var formatNames = [...]string{
	FormatUndefined:       "Undefined",
	FormatT32SInt:         "T32_SInt",
	FormatR32G32B32SFloat: "R32G32B32_SFloat",
}

// String returns the string representation of a Format.
func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Unknown(%d)", uint32(f))
}

// ElementSize returns the size of one texel in bytes, or 0 for an
// unknown format.
func (f Format) ElementSize() uint32 {
	switch f {
	case FormatT32SInt:
		return 4
	case FormatR32G32B32SFloat:
		return 12
	default:
		return 0
	}
}

// Valid reports whether f is a known, non-zero format.
func (f Format) Valid() bool {
	return f.ElementSize() != 0
}

// ErrFormatMismatch is the sentinel matched by every FormatError.
var ErrFormatMismatch = errors.New("resource: format mismatch")

// ErrInvalidFormat is returned when an image is created with an unknown format.
var ErrInvalidFormat = errors.New("resource: invalid format")

// ErrOutOfBounds is returned when a texel or byte range lies outside a resource.
var ErrOutOfBounds = errors.New("resource: out of bounds")

// FormatError reports an image or buffer whose format does not match the
// format an operation expects.
type FormatError struct {
	Op   string
	Want Format
	Got  Format
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("resource: %s: format %s, want %s", e.Op, e.Got, e.Want)
}

// Is makes errors.Is(err, ErrFormatMismatch) succeed for any FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormatMismatch
}
