// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/termgpu/resource"
)

// Kind classifies a Type.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindVector
	KindPointer
	KindImage
	KindRuntimeArray
	KindStruct
)

var kindNames = [...]string{
	KindInt:          "int",
	KindFloat:        "float",
	KindBool:         "bool",
	KindVector:       "vector",
	KindPointer:      "pointer",
	KindImage:        "image",
	KindRuntimeArray: "runtime_array",
	KindStruct:       "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ScalarSize is the size in bytes of int, float and bool values.
const ScalarSize = 4

// PointerSize is the size in bytes of every pointer value, whatever its
// pointee. A pointer holds an encoded address, not a host pointer.
const PointerSize = 4

// Type describes the layout of a shader value.
//
// Sizes are deterministic: scalars, pointers and images are 4 bytes,
// vectors are Element.Size*ElementCount, structs are the sum of their
// members with no padding and runtime arrays are 0.
//
// Types are immutable once built.
type Type struct {
	Kind         Kind
	Size         uint32
	StorageClass StorageClass    // pointers only
	ElementCount uint32          // vectors only
	Element      *Type           // vector, pointer and runtime array element
	Members      []*Type         // structs only
	Format       resource.Format // images only
}

// Int returns the 32-bit signed integer type.
func Int() *Type { return intType }

// Float returns the 32-bit float type.
func Float() *Type { return floatType }

// Bool returns the boolean type.
func Bool() *Type { return boolType }

var (
	intType   = &Type{Kind: KindInt, Size: ScalarSize}
	floatType = &Type{Kind: KindFloat, Size: ScalarSize}
	boolType  = &Type{Kind: KindBool, Size: ScalarSize}
)

// VectorOf returns a vector of n elements of t.
func VectorOf(t *Type, n uint32) *Type {
	return &Type{Kind: KindVector, Size: t.Size * n, ElementCount: n, Element: t}
}

// PointerOf returns a pointer to t in storage class sc.
func PointerOf(t *Type, sc StorageClass) *Type {
	return &Type{Kind: KindPointer, Size: PointerSize, StorageClass: sc, Element: t}
}

// ImageOf returns an image type with the given texel format.
func ImageOf(f resource.Format) *Type {
	return &Type{Kind: KindImage, Size: ScalarSize, Format: f}
}

// RuntimeArrayOf returns an unsized array of t.
func RuntimeArrayOf(t *Type) *Type {
	return &Type{Kind: KindRuntimeArray, Element: t}
}

// StructOf returns a packed struct of the given members.
func StructOf(members ...*Type) *Type {
	var size uint32
	for _, m := range members {
		size += m.Size
	}
	return &Type{Kind: KindStruct, Size: size, Members: members}
}

// IsScalar reports whether t is int, float or bool.
func (t *Type) IsScalar() bool {
	return t.Kind == KindInt || t.Kind == KindFloat || t.Kind == KindBool
}

// IsNumeric reports whether t is int or float.
func (t *Type) IsNumeric() bool {
	return t.Kind == KindInt || t.Kind == KindFloat
}

// MemberOffset returns the byte offset of member i of a struct.
func (t *Type) MemberOffset(i int) uint32 {
	var off uint32
	for _, m := range t.Members[:i] {
		off += m.Size
	}
	return off
}

// Equal reports whether t and o have the same shape.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.Kind != o.Kind || t.Size != o.Size {
		return false
	}
	switch t.Kind {
	case KindVector:
		return t.ElementCount == o.ElementCount && t.Element.Equal(o.Element)
	case KindPointer:
		return t.StorageClass == o.StorageClass && t.Element.Equal(o.Element)
	case KindRuntimeArray:
		return t.Element.Equal(o.Element)
	case KindImage:
		return t.Format == o.Format
	case KindStruct:
		if len(t.Members) != len(o.Members) {
			return false
		}
		for i := range t.Members {
			if !t.Members[i].Equal(o.Members[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String returns a compact description, e.g. "vec3<float>".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t *Type) writeTo(sb *strings.Builder) {
	switch t.Kind {
	case KindVector:
		fmt.Fprintf(sb, "vec%d<", t.ElementCount)
		t.Element.writeTo(sb)
		sb.WriteByte('>')
	case KindPointer:
		fmt.Fprintf(sb, "ptr<%s,", StorageClassName(t.StorageClass))
		t.Element.writeTo(sb)
		sb.WriteByte('>')
	case KindImage:
		fmt.Fprintf(sb, "image<%s>", t.Format)
	case KindRuntimeArray:
		sb.WriteString("array<")
		t.Element.writeTo(sb)
		sb.WriteByte('>')
	case KindStruct:
		sb.WriteString("struct{")
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteByte(',')
			}
			m.writeTo(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString(t.Kind.String())
	}
}

// TypeRegistry interns types so that every distinct shape is built once
// and shared by identity.
//
// TypeRegistry is safe for concurrent use.
type TypeRegistry struct {
	mu    sync.Mutex
	types map[string]*Type
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]*Type)}
}

// Intern returns the registered type equal to t, registering t if it is
// the first of its shape. Nested types are interned too.
func (r *TypeRegistry) Intern(t *Type) *Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.intern(t)
}

func (r *TypeRegistry) intern(t *Type) *Type {
	key := t.String()
	if existing, ok := r.types[key]; ok {
		return existing
	}
	if t.Element != nil {
		t.Element = r.intern(t.Element)
	}
	for i, m := range t.Members {
		t.Members[i] = r.intern(m)
	}
	r.types[key] = t
	return t
}

// Len returns the number of distinct shapes registered.
func (r *TypeRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.types)
}
