// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/resource"
)

// ModuleBuilder assembles a module section by section and allocates
// result IDs. Types are memoized by shape, so asking twice for the same
// type returns the same ID. Result types of code instructions are
// inferred from their operands.
//
// Example:
//
//	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
//	x := b.AddLoad(b.AddInputBuiltin(shader.BuiltinPositionX))
//	b.AddStore(b.AddOutput(b.AddTypeInt(), 0), x)
//	m, err := b.Build()
type ModuleBuilder struct {
	stage  gputypes.ShaderStage
	nextID uint32

	iface        []uint32
	decorations  Writer
	declarations Writer
	code         Writer

	typeIDs  map[string]uint32
	types    map[uint32]*Type  // type ID -> type
	valueTyp map[uint32]uint32 // value ID -> type ID
	consts   map[uint32][]uint32
}

// NewModuleBuilder starts a module for the given stage.
func NewModuleBuilder(stage gputypes.ShaderStage) *ModuleBuilder {
	return &ModuleBuilder{
		stage:    stage,
		nextID:   1,
		typeIDs:  make(map[string]uint32),
		types:    make(map[uint32]*Type),
		valueTyp: make(map[uint32]uint32),
		consts:   make(map[uint32][]uint32),
	}
}

// AllocID reserves a fresh result ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// TypeOf returns the type ID of a value produced by the builder.
func (b *ModuleBuilder) TypeOf(value uint32) uint32 { return b.valueTyp[value] }

// Type returns the type declared with id.
func (b *ModuleBuilder) Type(id uint32) *Type { return b.types[id] }

func (b *ModuleBuilder) mustType(id uint32) *Type {
	t, ok := b.types[id]
	if !ok {
		panic(fmt.Sprintf("shader: ModuleBuilder: %%%d is not a type", id))
	}
	return t
}

// declare returns the ID of t, emitting its declaration the first time.
func (b *ModuleBuilder) declare(t *Type, emit func(id uint32)) uint32 {
	key := t.String()
	if id, ok := b.typeIDs[key]; ok {
		return id
	}
	id := b.AllocID()
	emit(id)
	b.typeIDs[key] = id
	b.types[id] = t
	return id
}

// AddTypeInt declares the integer type.
func (b *ModuleBuilder) AddTypeInt() uint32 {
	return b.declare(Int(), b.declarations.WriteTypeInt)
}

// AddTypeFloat declares the float type.
func (b *ModuleBuilder) AddTypeFloat() uint32 {
	return b.declare(Float(), b.declarations.WriteTypeFloat)
}

// AddTypeBool declares the boolean type.
func (b *ModuleBuilder) AddTypeBool() uint32 {
	return b.declare(Bool(), b.declarations.WriteTypeBool)
}

// AddTypeVector declares a vector of count elements.
func (b *ModuleBuilder) AddTypeVector(element, count uint32) uint32 {
	t := VectorOf(b.mustType(element), count)
	return b.declare(t, func(id uint32) { b.declarations.WriteTypeVector(id, element, count) })
}

// AddTypePointer declares a pointer type.
func (b *ModuleBuilder) AddTypePointer(sc StorageClass, pointee uint32) uint32 {
	t := PointerOf(b.mustType(pointee), sc)
	return b.declare(t, func(id uint32) { b.declarations.WriteTypePointer(id, sc, pointee) })
}

// AddTypeImage declares an image type.
func (b *ModuleBuilder) AddTypeImage(f resource.Format) uint32 {
	return b.declare(ImageOf(f), func(id uint32) { b.declarations.WriteTypeImage(id, uint32(f)) })
}

// AddTypeRuntimeArray declares an unsized array type.
func (b *ModuleBuilder) AddTypeRuntimeArray(element uint32) uint32 {
	t := RuntimeArrayOf(b.mustType(element))
	return b.declare(t, func(id uint32) { b.declarations.WriteTypeRuntimeArray(id, element) })
}

// AddTypeStruct declares a packed struct type.
func (b *ModuleBuilder) AddTypeStruct(members ...uint32) uint32 {
	ts := make([]*Type, len(members))
	for i, m := range members {
		ts[i] = b.mustType(m)
	}
	return b.declare(StructOf(ts...), func(id uint32) { b.declarations.WriteTypeStruct(id, members...) })
}

// AddType declares t and every type it refers to.
func (b *ModuleBuilder) AddType(t *Type) uint32 {
	switch t.Kind {
	case KindInt:
		return b.AddTypeInt()
	case KindFloat:
		return b.AddTypeFloat()
	case KindBool:
		return b.AddTypeBool()
	case KindVector:
		return b.AddTypeVector(b.AddType(t.Element), t.ElementCount)
	case KindPointer:
		return b.AddTypePointer(t.StorageClass, b.AddType(t.Element))
	case KindImage:
		return b.AddTypeImage(t.Format)
	case KindRuntimeArray:
		return b.AddTypeRuntimeArray(b.AddType(t.Element))
	default:
		members := make([]uint32, len(t.Members))
		for i, m := range t.Members {
			members[i] = b.AddType(m)
		}
		return b.AddTypeStruct(members...)
	}
}

// AddConstant declares a constant of typ from raw value words.
func (b *ModuleBuilder) AddConstant(typ uint32, value ...uint32) uint32 {
	id := b.AllocID()
	b.declarations.WriteConstant(typ, id, value...)
	b.valueTyp[id] = typ
	b.consts[id] = value
	return id
}

// AddConstantInt declares an integer constant.
func (b *ModuleBuilder) AddConstantInt(v int32) uint32 {
	return b.AddConstant(b.AddTypeInt(), uint32(v))
}

// AddConstantFloat declares a float constant.
func (b *ModuleBuilder) AddConstantFloat(v float32) uint32 {
	return b.AddConstant(b.AddTypeFloat(), math32.Float32bits(v))
}

// AddConstantBool declares a boolean constant.
func (b *ModuleBuilder) AddConstantBool(v bool) uint32 {
	var w uint32
	if v {
		w = 1
	}
	return b.AddConstant(b.AddTypeBool(), w)
}

// AddConstantVector declares a float vector constant.
func (b *ModuleBuilder) AddConstantVector(values ...float32) uint32 {
	words := make([]uint32, len(values))
	for i, v := range values {
		words[i] = math32.Float32bits(v)
	}
	// #nosec G115 -- vectors hold at most 4 components
	return b.AddConstant(b.AddTypeVector(b.AddTypeFloat(), uint32(len(values))), words...)
}

// AddDecorate attaches a decoration to target.
func (b *ModuleBuilder) AddDecorate(target uint32, d Decoration, value uint32) {
	b.decorations.WriteDecorate(target, d, value)
}

// AddVariable declares a variable of class sc pointing to pointee.
// Input and Output variables join the entry point interface.
func (b *ModuleBuilder) AddVariable(sc StorageClass, pointee uint32) uint32 {
	ptr := b.AddTypePointer(sc, pointee)
	id := b.AllocID()
	b.declarations.WriteVariable(ptr, id)
	b.valueTyp[id] = ptr
	if sc == StorageInput || sc == StorageOutput {
		b.iface = append(b.iface, id)
	}
	return id
}

// AddInput declares an Input variable at a Location.
func (b *ModuleBuilder) AddInput(typ, location uint32) uint32 {
	id := b.AddVariable(StorageInput, typ)
	b.AddDecorate(id, DecorationLocation, location)
	return id
}

// AddOutput declares an Output variable at a Location.
func (b *ModuleBuilder) AddOutput(typ, location uint32) uint32 {
	id := b.AddVariable(StorageOutput, typ)
	b.AddDecorate(id, DecorationLocation, location)
	return id
}

// AddInputBuiltin declares a builtin Input variable.
func (b *ModuleBuilder) AddInputBuiltin(bi Builtin) uint32 {
	id := b.AddVariable(StorageInput, b.AddType(bi.Type()))
	b.AddDecorate(id, DecorationBuiltin, uint32(bi))
	return id
}

// AddOutputBuiltin declares a builtin Output variable.
func (b *ModuleBuilder) AddOutputBuiltin(bi Builtin) uint32 {
	id := b.AddVariable(StorageOutput, b.AddType(bi.Type()))
	b.AddDecorate(id, DecorationBuiltin, uint32(bi))
	return id
}

// AddUniform declares a Uniform (writable) buffer variable at binding.
func (b *ModuleBuilder) AddUniform(typ, binding uint32) uint32 {
	id := b.AddVariable(StorageUniform, typ)
	b.AddDecorate(id, DecorationBinding, binding)
	return id
}

// AddUniformConstant declares a read-only buffer variable at binding.
func (b *ModuleBuilder) AddUniformConstant(typ, binding uint32) uint32 {
	id := b.AddVariable(StorageUniformConstant, typ)
	b.AddDecorate(id, DecorationBinding, binding)
	return id
}

// AddPushConstant declares a variable backed by the push constants.
func (b *ModuleBuilder) AddPushConstant(typ uint32) uint32 {
	return b.AddVariable(StoragePushConstant, typ)
}

// AddImage declares an image variable at binding.
func (b *ModuleBuilder) AddImage(f resource.Format, binding uint32) uint32 {
	id := b.AddVariable(StorageImage, b.AddTypeImage(f))
	b.AddDecorate(id, DecorationBinding, binding)
	return id
}

// AddLocal declares a Function variable.
func (b *ModuleBuilder) AddLocal(typ uint32) uint32 {
	return b.AddVariable(StorageFunction, typ)
}

func (b *ModuleBuilder) result(typ uint32) uint32 {
	id := b.AllocID()
	b.valueTyp[id] = typ
	return id
}

// pointee returns the pointee type ID of a pointer value.
func (b *ModuleBuilder) pointee(ptr uint32) uint32 {
	t := b.mustType(b.valueTyp[ptr])
	return b.AddType(t.Element)
}

// AddLoad reads through ptr.
func (b *ModuleBuilder) AddLoad(ptr uint32) uint32 {
	typ := b.pointee(ptr)
	id := b.result(typ)
	b.code.WriteLoad(typ, id, ptr)
	return id
}

// AddStore writes value through ptr.
func (b *ModuleBuilder) AddStore(ptr, value uint32) {
	b.code.WriteStore(ptr, value)
}

// AddBinary emits an arithmetic or comparison instruction. Comparisons
// produce a bool; arithmetic produces the type of x.
func (b *ModuleBuilder) AddBinary(op OpCode, x, y uint32) uint32 {
	typ := b.valueTyp[x]
	if op.IsComparison() {
		typ = b.AddTypeBool()
	}
	id := b.result(typ)
	b.code.WriteBinary(op, typ, id, x, y)
	return id
}

// AddUnary emits Negate, Abs, IntToFloat or FloatToInt.
func (b *ModuleBuilder) AddUnary(op OpCode, x uint32) uint32 {
	typ := b.valueTyp[x]
	switch op {
	case OpIntToFloat:
		typ = b.AddTypeFloat()
	case OpFloatToInt:
		typ = b.AddTypeInt()
	}
	id := b.result(typ)
	b.code.WriteUnary(op, typ, id, x)
	return id
}

// AddConditional selects t when cond is 0 and f otherwise.
func (b *ModuleBuilder) AddConditional(cond, t, f uint32) uint32 {
	typ := b.valueTyp[t]
	id := b.result(typ)
	b.code.WriteConditional(typ, id, cond, t, f)
	return id
}

// AddCompositeConstruct packs components into a vector of type vec.
func (b *ModuleBuilder) AddCompositeConstruct(vec uint32, components ...uint32) uint32 {
	id := b.result(vec)
	b.code.WriteCompositeConstruct(vec, id, components...)
	return id
}

// AddAccessChain derives a pointer to element index of base. index is a
// value ID holding an integer; it must be a constant when base points to
// a struct.
func (b *ModuleBuilder) AddAccessChain(base, index uint32) uint32 {
	bt := b.mustType(b.valueTyp[base])
	elem := bt.Element.Element
	if bt.Element.Kind == KindStruct {
		v, ok := b.consts[index]
		if !ok || len(v) != 1 || int(v[0]) >= len(bt.Element.Members) {
			panic("shader: ModuleBuilder: struct access chain needs a constant member index")
		}
		elem = bt.Element.Members[v[0]]
	}
	typ := b.AddTypePointer(bt.StorageClass, b.AddType(elem))
	id := b.result(typ)
	b.code.WriteAccessChain(typ, id, base, index)
	return id
}

// AddAccessChainConst derives a pointer to element i of base using an
// integer constant index.
func (b *ModuleBuilder) AddAccessChainConst(base uint32, i int32) uint32 {
	return b.AddAccessChain(base, b.AddConstantInt(i))
}

// AddVectorShuffle selects components from v1 and v2. A single
// component yields a scalar.
func (b *ModuleBuilder) AddVectorShuffle(v1, v2 uint32, components ...uint32) uint32 {
	elem := b.AddType(b.mustType(b.valueTyp[v1]).Element)
	typ := elem
	if len(components) > 1 {
		// #nosec G115 -- shuffles select at most 4 components
		typ = b.AddTypeVector(elem, uint32(len(components)))
	}
	id := b.result(typ)
	b.code.WriteVectorShuffle(typ, id, v1, v2, components...)
	return id
}

// AddGather reads a texel of image at an ivec2 coordinate.
func (b *ModuleBuilder) AddGather(image, coordinate uint32) uint32 {
	var typ uint32
	if b.mustType(b.valueTyp[image]).Format == resource.FormatR32G32B32SFloat {
		typ = b.AddTypeVector(b.AddTypeFloat(), 3)
	} else {
		typ = b.AddTypeInt()
	}
	id := b.result(typ)
	b.code.WriteGather(typ, id, image, coordinate)
	return id
}

// Words assembles the module stream without validating it.
func (b *ModuleBuilder) Words() []uint32 {
	var w Writer
	w.WriteEntryPoint(b.stage, b.iface...)
	w.words = append(w.words, b.decorations.Words()...)
	w.words = append(w.words, b.declarations.Words()...)
	w.words = append(w.words, b.code.Words()...)
	w.WriteReturn()
	return w.words
}

// Build assembles and validates the module.
func (b *ModuleBuilder) Build() (*Module, error) {
	m, err := NewModuleWords(b.Words())
	if err != nil {
		return nil, err
	}
	if _, err := m.Analyze(); err != nil {
		return nil, err
	}
	return m, nil
}

// MustBuild is like Build but panics on error.
func (b *ModuleBuilder) MustBuild() *Module {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
