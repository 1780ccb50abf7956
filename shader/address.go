// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

// UniformPointer packs a binding into the top 8 bits and a byte offset
// into the low 24 bits, so access chains move the offset while the
// binding stays fixed.
type UniformPointer uint32

// MaxUniformOffset is the largest offset a UniformPointer can hold.
const MaxUniformOffset = 1<<24 - 1

// NewUniformPointer builds a UniformPointer.
func NewUniformPointer(binding uint8, offset uint32) UniformPointer {
	return UniformPointer(uint32(binding)<<24 | offset&MaxUniformOffset)
}

// Binding returns the binding index.
func (p UniformPointer) Binding() uint8 { return uint8(p >> 24) }

// Offset returns the byte offset within the binding.
func (p UniformPointer) Offset() uint32 { return uint32(p) & MaxUniformOffset }

// Add returns p moved by delta bytes. ok is false on overflow of the
// 24-bit offset.
func (p UniformPointer) Add(delta uint32) (UniformPointer, bool) {
	off := p.Offset() + delta
	if off > MaxUniformOffset || off < p.Offset() {
		return p, false
	}
	return NewUniformPointer(p.Binding(), off), true
}

// Address is a decoded pointer value. The concrete types are
// LocalAddress, IOAddress, UniformAddress and ImageAddress.
type Address interface {
	address()
}

// LocalAddress is an offset into the invocation's working set.
type LocalAddress struct {
	Offset uint32
}

// IOAddress is an offset into the input or output window.
type IOAddress struct {
	Class  StorageClass // StorageInput or StorageOutput
	Offset uint32
}

// UniformAddress is an offset into a bound buffer or the push constants.
type UniformAddress struct {
	Class   StorageClass
	Binding uint8
	Offset  uint32
}

// ImageAddress names a bound image.
type ImageAddress struct {
	Binding uint32
}

func (LocalAddress) address()   {}
func (IOAddress) address()      {}
func (UniformAddress) address() {}
func (ImageAddress) address()   {}

// PushConstants reports whether the address refers to staged push constants.
func (a UniformAddress) PushConstants() bool {
	return a.Class == StoragePushConstant
}

// ResolveAddress decodes the raw 4-byte value of a pointer of type ptr.
func ResolveAddress(ptr *Type, raw uint32) Address {
	switch sc := ptr.StorageClass; {
	case sc == StorageInput || sc == StorageOutput:
		return IOAddress{Class: sc, Offset: raw}
	case IsUniform(sc):
		up := UniformPointer(raw)
		return UniformAddress{Class: sc, Binding: up.Binding(), Offset: up.Offset()}
	case sc == StorageImage:
		return ImageAddress{Binding: raw}
	default:
		return LocalAddress{Offset: raw}
	}
}

// EncodeAddress is the inverse of ResolveAddress.
func EncodeAddress(a Address) uint32 {
	switch a := a.(type) {
	case LocalAddress:
		return a.Offset
	case IOAddress:
		return a.Offset
	case UniformAddress:
		return uint32(NewUniformPointer(a.Binding, a.Offset))
	case ImageAddress:
		return a.Binding
	default:
		panic("shader: unknown address type")
	}
}

// Offset moves an address by delta bytes. Image addresses cannot move.
func Offset(a Address, delta uint32) (Address, bool) {
	switch a := a.(type) {
	case LocalAddress:
		return LocalAddress{Offset: a.Offset + delta}, true
	case IOAddress:
		return IOAddress{Class: a.Class, Offset: a.Offset + delta}, true
	case UniformAddress:
		up, ok := NewUniformPointer(a.Binding, a.Offset).Add(delta)
		if !ok {
			return a, false
		}
		return UniformAddress{Class: a.Class, Binding: up.Binding(), Offset: up.Offset()}, true
	default:
		return a, false
	}
}

// AccessStep returns the element selected by index idx within t and its
// byte offset. result names the AccessChain for error reporting. Struct
// members must exist; vector components out of range are a binding error.
func AccessStep(result uint32, t *Type, idx uint32) (*Type, uint32, error) {
	switch t.Kind {
	case KindStruct:
		if idx >= uint32(len(t.Members)) {
			return nil, 0, TypeErrorf(OpAccessChain, result, "member %d of %s", idx, t)
		}
		return t.Members[idx], t.MemberOffset(int(idx)), nil
	case KindVector:
		if idx >= t.ElementCount {
			return nil, 0, BindingErrorf(result, "component %d of %s", idx, t)
		}
		return t.Element, idx * t.Element.Size, nil
	case KindRuntimeArray:
		return t.Element, idx * t.Element.Size, nil
	default:
		return nil, 0, TypeErrorf(OpAccessChain, result, "cannot index %s", t)
	}
}
