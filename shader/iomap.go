// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import "maps"

// IOMappings is the flat byte layout of one side of a shader interface.
//
// Offsets are assigned in variable declaration order and packed with no
// padding. A vertex shader's outputs and the consuming fragment shader's
// inputs must agree on every shared Location.
type IOMappings struct {
	Locations     map[uint32]uint32  // location -> byte offset
	LocationTypes map[uint32]*Type   // location -> value type
	Builtins      map[Builtin]uint32 // builtin -> byte offset
	Size          uint32
}

func newIOMappings() *IOMappings {
	return &IOMappings{
		Locations:     make(map[uint32]uint32),
		LocationTypes: make(map[uint32]*Type),
		Builtins:      make(map[Builtin]uint32),
	}
}

// Location returns the offset of a Location slot.
func (m *IOMappings) Location(loc uint32) (uint32, bool) {
	off, ok := m.Locations[loc]
	return off, ok
}

// Builtin returns the offset of a builtin slot.
func (m *IOMappings) Builtin(b Builtin) (uint32, bool) {
	off, ok := m.Builtins[b]
	return off, ok
}

// Equal reports whether two mappings describe the same layout.
func (m *IOMappings) Equal(o *IOMappings) bool {
	if m.Size != o.Size || !maps.Equal(m.Locations, o.Locations) || !maps.Equal(m.Builtins, o.Builtins) {
		return false
	}
	return maps.EqualFunc(m.LocationTypes, o.LocationTypes, func(a, b *Type) bool { return a.Equal(b) })
}

// mapInterface lays out every variable of class sc. Each one must carry
// exactly one of Location or BuiltIn.
func mapInterface(info *Info, sc StorageClass) (*IOMappings, error) {
	m := newIOMappings()
	for _, v := range info.Variables {
		if v.Class != sc {
			continue
		}
		d := info.Decorations[v.ID]
		t := v.Pointee()
		switch {
		case d.HasLocation && d.HasBuiltin:
			return nil, BindingErrorf(v.ID, "interface variable has both Location and BuiltIn")
		case d.HasLocation:
			if _, dup := m.Locations[d.Location]; dup {
				return nil, BindingErrorf(v.ID, "location %d declared twice", d.Location)
			}
			m.Locations[d.Location] = m.Size
			m.LocationTypes[d.Location] = t
		case d.HasBuiltin:
			if !t.Equal(d.Builtin.Type()) {
				return nil, TypeErrorf(OpVariable, v.ID, "builtin %s declared as %s, want %s", d.Builtin, t, d.Builtin.Type())
			}
			if _, dup := m.Builtins[d.Builtin]; dup {
				return nil, BindingErrorf(v.ID, "builtin %s declared twice", d.Builtin)
			}
			m.Builtins[d.Builtin] = m.Size
		default:
			return nil, BindingErrorf(v.ID, "%s variable has neither Location nor BuiltIn", StorageClassName(sc))
		}
		m.Size += t.Size
	}
	return m, nil
}

// AnalyzeIO returns the input and output mappings of a module.
func AnalyzeIO(m *Module) (inputs, outputs *IOMappings, err error) {
	info, err := m.Analyze()
	if err != nil {
		return nil, nil, err
	}
	return info.Inputs, info.Outputs, nil
}
