// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"github.com/gogpu/termgpu/resource"
)

// WorkingSetSize is the scratch capacity of one invocation in bytes.
// Every produced value and every Function variable counts against it.
const WorkingSetSize = 4096

// Attachments are the resources bound to one invocation.
type Attachments struct {
	// Images are indexed by Binding decoration.
	Images []*resource.Image
	// Buffers are indexed by Binding decoration.
	Buffers [][]byte
	// PushConstants back every PushConstant variable.
	PushConstants []byte
}

// Image returns the image bound at binding.
func (a *Attachments) Image(binding uint32) (*resource.Image, bool) {
	if int(binding) >= len(a.Images) || a.Images[binding] == nil {
		return nil, false
	}
	return a.Images[binding], true
}

// Memory routes decoded addresses to their backing store for one
// invocation: the working set, the input and output windows, bound
// buffers and push constants.
type Memory struct {
	Attachments *Attachments
	Input       []byte
	Output      []byte
	Local       []byte
}

// Window returns the size-byte region at address a. write requests a
// writable region; Input, UniformConstant, PushConstant and Image storage
// are read-only. id names the pointer for error reporting.
func (m *Memory) Window(id uint32, a Address, size uint32, write bool) ([]byte, error) {
	var (
		base []byte
		off  uint32
	)
	switch a := a.(type) {
	case LocalAddress:
		base, off = m.Local, a.Offset
	case IOAddress:
		if a.Class == StorageInput {
			if write {
				return nil, BindingErrorf(id, "store to Input storage")
			}
			base = m.Input
		} else {
			base = m.Output
		}
		off = a.Offset
	case UniformAddress:
		if write && a.Class != StorageUniform {
			return nil, BindingErrorf(id, "store to %s storage", StorageClassName(a.Class))
		}
		if a.PushConstants() {
			base = m.Attachments.PushConstants
		} else {
			if int(a.Binding) >= len(m.Attachments.Buffers) || m.Attachments.Buffers[a.Binding] == nil {
				return nil, BindingErrorf(id, "no buffer bound at binding %d", a.Binding)
			}
			base = m.Attachments.Buffers[a.Binding]
		}
		off = a.Offset
	case ImageAddress:
		return nil, BindingErrorf(id, "image binding %d is not addressable memory", a.Binding)
	}
	end := uint64(off) + uint64(size)
	if end > uint64(len(base)) {
		return nil, BindingErrorf(id, "access [%d,%d) outside %d-byte region", off, end, len(base))
	}
	return base[off:end], nil
}

// Gather copies the texel at (x, y) of the image bound at binding into dst.
// The bound image must have the declared format and dst must be exactly
// one texel long.
func (m *Memory) Gather(id, binding uint32, format resource.Format, x, y int32, dst []byte) error {
	img, ok := m.Attachments.Image(binding)
	if !ok {
		return BindingErrorf(id, "no image bound at binding %d", binding)
	}
	if img.Format() != format {
		return &resource.FormatError{Op: "Gather", Want: format, Got: img.Format()}
	}
	if size := img.Format().ElementSize(); uint32(len(dst)) != size {
		return TypeErrorf(OpGather, id, "result is %d bytes, %s texel is %d", len(dst), img.Format(), size)
	}
	if x < 0 || y < 0 {
		return BindingErrorf(id, "gather coordinate (%d,%d) is negative", x, y)
	}
	texel, err := img.Texel(uint32(x), uint32(y))
	if err != nil {
		return BindingErrorf(id, "%v", err)
	}
	copy(dst, texel)
	return nil
}
