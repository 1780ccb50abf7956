// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/resource"
)

// Module is an immutable compiled shader.
//
// A module holds exactly one EntryPoint, the Decorate instructions for its
// variables, a declaration section (types, constants, variables) and a code
// section ending in Return. Modules are produced by a front-end compiler or
// a ModuleBuilder and are never mutated.
type Module struct {
	words []uint32

	once sync.Once
	info *Info
	err  error
}

// NewModule decodes a little-endian byte buffer. The stream must be
// word aligned and every instruction must fit inside it.
func NewModule(data []byte) (*Module, error) {
	if len(data)%4 != 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("module size %d is not a multiple of 4", len(data))}
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return NewModuleWords(words)
}

// NewModuleWords wraps a copy of an encoded word stream.
func NewModuleWords(words []uint32) (*Module, error) {
	m := &Module{words: append([]uint32(nil), words...)}
	r := NewReader(m.words)
	for !r.Done() {
		if err := r.Skip(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Words returns the encoded stream. Callers must not modify it.
func (m *Module) Words() []uint32 { return m.words }

// Bytes returns the module as little-endian bytes.
func (m *Module) Bytes() []byte {
	out := make([]byte, 4*len(m.words))
	for i, w := range m.words {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}

// Hash returns a 64-bit FNV-1a digest of the module contents.
func (m *Module) Hash() uint64 {
	h := fnv.New64a()
	var buf [4]byte
	for _, w := range m.words {
		binary.LittleEndian.PutUint32(buf[:], w)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Reader returns a Reader positioned at the start of the module.
func (m *Module) Reader() *Reader { return NewReader(m.words) }

// DecorationSet holds the decorations attached to one ID.
type DecorationSet struct {
	Location    uint32
	Binding     uint32
	Builtin     Builtin
	HasLocation bool
	HasBinding  bool
	HasBuiltin  bool
}

// Variable describes one module-scope or function variable.
type Variable struct {
	ID      uint32
	Pointer *Type // pointer type of the variable
	Class   StorageClass
}

// Pointee returns the type the variable points to.
func (v Variable) Pointee() *Type { return v.Pointer.Element }

// Info is the static analysis of a module, computed once.
type Info struct {
	Stage       gputypes.ShaderStage
	Interface   []uint32
	Types       map[uint32]*Type
	Decorations map[uint32]DecorationSet
	Variables   []Variable
	Inputs      *IOMappings
	Outputs     *IOMappings

	// Opcodes lists the distinct opcodes used by the module.
	Opcodes map[OpCode]int
}

// Variable returns the variable declared with id.
func (info *Info) Variable(id uint32) (Variable, bool) {
	for _, v := range info.Variables {
		if v.ID == id {
			return v, true
		}
	}
	return Variable{}, false
}

// typeRegistry interns every type decoded from any module.
var typeRegistry = NewTypeRegistry()

// Analyze decodes the structure of the module once and caches the result.
// Both engines call it; analyzing the same module twice yields the same Info.
func (m *Module) Analyze() (*Info, error) {
	m.once.Do(func() {
		m.info, m.err = analyze(m.words)
	})
	return m.info, m.err
}

// Stage returns the entry point stage, or ShaderStageNone when the module
// does not analyze.
func (m *Module) Stage() gputypes.ShaderStage {
	info, err := m.Analyze()
	if err != nil {
		return gputypes.ShaderStageNone
	}
	return info.Stage
}

func analyze(words []uint32) (*Info, error) {
	info := &Info{
		Types:       make(map[uint32]*Type),
		Decorations: make(map[uint32]DecorationSet),
		Opcodes:     make(map[OpCode]int),
	}
	entryPoints := 0
	returned := false
	r := NewReader(words)
	for !r.Done() {
		op, _, err := r.Peek()
		if err != nil {
			return nil, err
		}
		if !op.Valid() {
			return nil, &DecodeError{Offset: r.Offset(), Op: op, Reason: "unknown opcode"}
		}
		info.Opcodes[op]++

		switch {
		case op == OpEntryPoint:
			ep, err := r.ReadEntryPoint()
			if err != nil {
				return nil, err
			}
			entryPoints++
			info.Stage = ep.Stage
			info.Interface = ep.Interface
		case op == OpDecorate:
			d, err := r.ReadDecorate()
			if err != nil {
				return nil, err
			}
			if err := info.decorate(d); err != nil {
				return nil, err
			}
		case op.IsType():
			if err := info.declareType(r, op); err != nil {
				return nil, err
			}
		case op == OpVariable:
			v, err := r.ReadVariable()
			if err != nil {
				return nil, err
			}
			pt, ok := info.Types[v.ResultType]
			if !ok || pt.Kind != KindPointer {
				return nil, TypeErrorf(OpVariable, v.Result, "result type %%%d is not a pointer", v.ResultType)
			}
			info.Variables = append(info.Variables, Variable{ID: v.Result, Pointer: pt, Class: pt.StorageClass})
		case op == OpReturn:
			returned = true
			if err := r.Skip(); err != nil {
				return nil, err
			}
		default:
			if err := r.Skip(); err != nil {
				return nil, err
			}
		}
	}

	if entryPoints != 1 {
		return nil, &DecodeError{Op: OpEntryPoint, Reason: fmt.Sprintf("module has %d entry points, want 1", entryPoints)}
	}
	switch info.Stage {
	case gputypes.ShaderStageVertex, gputypes.ShaderStageFragment, gputypes.ShaderStageCompute:
	default:
		return nil, &DecodeError{Op: OpEntryPoint, Reason: fmt.Sprintf("invalid stage %v", info.Stage)}
	}
	if !returned {
		return nil, &DecodeError{Op: OpReturn, Reason: "module does not end in Return"}
	}

	var err error
	if info.Inputs, err = mapInterface(info, StorageInput); err != nil {
		return nil, err
	}
	if info.Outputs, err = mapInterface(info, StorageOutput); err != nil {
		return nil, err
	}
	return info, nil
}

func (info *Info) decorate(d DecorateInst) error {
	set := info.Decorations[d.Target]
	switch d.Decoration {
	case DecorationLocation:
		set.Location, set.HasLocation = d.Value, true
	case DecorationBinding:
		set.Binding, set.HasBinding = d.Value, true
	case DecorationBuiltin:
		if Builtin(d.Value) >= builtinCount {
			return BindingErrorf(d.Target, "unknown builtin %d", d.Value)
		}
		set.Builtin, set.HasBuiltin = Builtin(d.Value), true
	default:
		// Unknown decorations carry no meaning for execution.
		return nil
	}
	info.Decorations[d.Target] = set
	return nil
}

func (info *Info) lookupType(op OpCode, result, id uint32) (*Type, error) {
	t, ok := info.Types[id]
	if !ok {
		return nil, TypeErrorf(op, result, "type %%%d used before definition", id)
	}
	return t, nil
}

func (info *Info) declareType(r *Reader, op OpCode) error {
	var (
		result uint32
		t      *Type
		err    error
	)
	switch op {
	case OpTypeInt:
		result, err = r.ReadTypeInt()
		t = Int()
	case OpTypeFloat:
		result, err = r.ReadTypeFloat()
		t = Float()
	case OpTypeBool:
		result, err = r.ReadTypeBool()
		t = Bool()
	case OpTypeVector:
		var in TypeVectorInst
		if in, err = r.ReadTypeVector(); err != nil {
			return err
		}
		result = in.Result
		elem, err := info.lookupType(op, result, in.Element)
		if err != nil {
			return err
		}
		if !elem.IsScalar() || in.Count < 2 || in.Count > 4 {
			return TypeErrorf(op, result, "invalid vector of %d x %s", in.Count, elem)
		}
		t = VectorOf(elem, in.Count)
	case OpTypePointer:
		var in TypePointerInst
		if in, err = r.ReadTypePointer(); err != nil {
			return err
		}
		result = in.Result
		if !knownStorageClass(in.StorageClass) {
			return TypeErrorf(op, result, "unknown storage class %d", uint32(in.StorageClass))
		}
		pointee, err := info.lookupType(op, result, in.Pointee)
		if err != nil {
			return err
		}
		t = PointerOf(pointee, in.StorageClass)
	case OpTypeImage:
		var in TypeImageInst
		if in, err = r.ReadTypeImage(); err != nil {
			return err
		}
		result = in.Result
		f := resource.Format(in.Format)
		if !f.Valid() {
			return TypeErrorf(op, result, "unknown image format %d", in.Format)
		}
		t = ImageOf(f)
	case OpTypeRuntimeArray:
		var in TypeRuntimeArrayInst
		if in, err = r.ReadTypeRuntimeArray(); err != nil {
			return err
		}
		result = in.Result
		elem, err := info.lookupType(op, result, in.Element)
		if err != nil {
			return err
		}
		t = RuntimeArrayOf(elem)
	case OpTypeStruct:
		var in TypeStructInst
		if in, err = r.ReadTypeStruct(); err != nil {
			return err
		}
		result = in.Result
		members := make([]*Type, len(in.Members))
		for i, id := range in.Members {
			if members[i], err = info.lookupType(op, result, id); err != nil {
				return err
			}
		}
		t = StructOf(members...)
	}
	if err != nil {
		return err
	}
	if _, dup := info.Types[result]; dup {
		return TypeErrorf(op, result, "type redefined")
	}
	info.Types[result] = typeRegistry.Intern(t)
	return nil
}
