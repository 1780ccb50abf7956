// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"testing"

	"github.com/gogpu/termgpu/resource"
)

func TestTypeSizes(t *testing.T) {
	vec3 := VectorOf(Float(), 3)
	tests := []struct {
		name string
		typ  *Type
		want uint32
	}{
		{"int", Int(), 4},
		{"float", Float(), 4},
		{"bool", Bool(), 4},
		{"vec2<int>", VectorOf(Int(), 2), 8},
		{"vec3<float>", vec3, 12},
		{"vec4<float>", VectorOf(Float(), 4), 16},
		{"ptr<vec4>", PointerOf(VectorOf(Float(), 4), StorageFunction), 4},
		{"ptr<struct>", PointerOf(StructOf(Int(), vec3, vec3), StorageOutput), 4},
		{"image", ImageOf(resource.FormatR32G32B32SFloat), 4},
		{"runtime array", RuntimeArrayOf(vec3), 0},
		{"struct{int,vec3}", StructOf(Int(), vec3), 16},
		{"textel", StructOf(Int(), vec3, vec3), 28},
		{"empty struct", StructOf(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.typ.Size != tt.want {
				t.Errorf("%s.Size = %d, want %d", tt.typ, tt.typ.Size, tt.want)
			}
		})
	}
}

func TestVectorSizeIsElementTimesCount(t *testing.T) {
	for _, elem := range []*Type{Int(), Float(), Bool()} {
		for n := uint32(2); n <= 4; n++ {
			if got := VectorOf(elem, n).Size; got != elem.Size*n {
				t.Errorf("VectorOf(%s, %d).Size = %d, want %d", elem, n, got, elem.Size*n)
			}
		}
	}
}

func TestTypeEqualIsStructural(t *testing.T) {
	a := StructOf(Int(), VectorOf(Float(), 3))
	b := StructOf(Int(), VectorOf(Float(), 3))
	if !a.Equal(b) {
		t.Errorf("%s.Equal(%s) = false, want true", a, b)
	}

	tests := []struct {
		name string
		x, y *Type
	}{
		{"int vs float", Int(), Float()},
		{"int vs bool", Int(), Bool()},
		{"vec2 vs vec3", VectorOf(Float(), 2), VectorOf(Float(), 3)},
		{"vec3 int vs float", VectorOf(Int(), 3), VectorOf(Float(), 3)},
		{"pointer class", PointerOf(Int(), StorageInput), PointerOf(Int(), StorageOutput)},
		{"pointer pointee", PointerOf(Int(), StorageInput), PointerOf(Float(), StorageInput)},
		{"image format", ImageOf(resource.FormatT32SInt), ImageOf(resource.FormatR32G32B32SFloat)},
		{"member order", StructOf(Int(), Float()), StructOf(Float(), Int())},
		{"member count", StructOf(Int()), StructOf(Int(), Int())},
		{"nil", Int(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.x.Equal(tt.y) {
				t.Errorf("%s.Equal(%s) = true, want false", tt.x, tt.y)
			}
		})
	}
}

func TestMemberOffset(t *testing.T) {
	s := StructOf(Int(), VectorOf(Float(), 3), VectorOf(Float(), 3))
	for i, want := range []uint32{0, 4, 16} {
		if got := s.MemberOffset(i); got != want {
			t.Errorf("MemberOffset(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestTypeRegistryInterns(t *testing.T) {
	r := NewTypeRegistry()
	a := r.Intern(StructOf(Int(), VectorOf(Float(), 3)))
	b := r.Intern(StructOf(Int(), VectorOf(Float(), 3)))
	if a != b {
		t.Error("Intern returned different pointers for equal shapes")
	}
	v := r.Intern(VectorOf(Float(), 3))
	if a.Members[1] != v {
		t.Error("nested member was not interned")
	}
	if r.Len() != 4 { // int, float, vec3<float>, struct
		t.Errorf("Len() = %d, want 4", r.Len())
	}
}

func TestTypeString(t *testing.T) {
	typ := PointerOf(StructOf(Int(), VectorOf(Float(), 3)), StorageUniform)
	if got, want := typ.String(), "ptr<Uniform,struct{int,vec3<float>}>"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
