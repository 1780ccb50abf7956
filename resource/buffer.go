package resource

import (
	"encoding/binary"
	"fmt"
)

// Buffer is a mutable byte store used for vertex data, uniforms,
// indirect draw arguments and fixed-function output.
type Buffer struct {
	data []byte
}

// NewBuffer allocates a zeroed buffer of size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// NewBufferFrom wraps a copy of data.
func NewBufferFrom(data []byte) *Buffer {
	return &Buffer{data: append([]byte(nil), data...)}
}

// Bytes returns the live contents.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the buffer size in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Resize changes the buffer size, keeping the common prefix.
func (b *Buffer) Resize(size int) {
	if size <= cap(b.data) {
		old := len(b.data)
		b.data = b.data[:size]
		if size > old {
			clear(b.data[old:])
		}
		return
	}
	data := make([]byte, size)
	copy(data, b.data)
	b.data = data
}

// Slice returns the live bytes [offset, offset+size).
func (b *Buffer) Slice(offset, size uint64) ([]byte, error) {
	end := offset + size
	if end < offset || end > uint64(len(b.data)) {
		return nil, fmt.Errorf("%w: range [%d,%d) of %d-byte buffer", ErrOutOfBounds, offset, end, len(b.data))
	}
	return b.data[offset:end], nil
}

// Write copies p into the buffer at offset.
func (b *Buffer) Write(offset uint64, p []byte) error {
	dst, err := b.Slice(offset, uint64(len(p)))
	if err != nil {
		return err
	}
	copy(dst, p)
	return nil
}

// Uint32 reads a little-endian uint32 at offset.
func (b *Buffer) Uint32(offset uint64) (uint32, error) {
	src, err := b.Slice(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(src), nil
}

// PutUint32 writes a little-endian uint32 at offset.
func (b *Buffer) PutUint32(offset uint64, v uint32) error {
	dst, err := b.Slice(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dst, v)
	return nil
}
