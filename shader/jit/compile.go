// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jit

import (
	"encoding/binary"
	"errors"

	"github.com/gogpu/termgpu/shader"
)

// value is what the compiler knows about a result ID.
type value struct {
	t     *shader.Type
	slot  int      // first frame word
	konst []uint32 // set when the value is known at compile time
	ptr   ioPtr    // valid when resolved
	// resolved marks pointers whose address is known at compile time:
	// interface variables and access chains into them.
	resolved bool
}

// ioPtr is a resolved Input or Output address.
type ioPtr struct {
	class  shader.StorageClass
	offset uint32
}

// compiler translates one module. Errors that an interpreter would only
// report at execution time become a failing step at the same position,
// and compilation stops there since nothing after it can run.
type compiler struct {
	info     *shader.Info
	values   map[uint32]*value
	steps    []step
	template []uint32
	used     uint32
	stopped  bool
}

func compile(m *shader.Module) (*program, error) {
	info, err := m.Analyze()
	if err != nil {
		return nil, err
	}
	c := &compiler{info: info, values: make(map[uint32]*value)}
	r := m.Reader()
	for !r.Done() && !c.stopped {
		err := c.instruction(r)
		if errors.Is(err, shader.ErrUnsupportedOpcode) {
			return nil, err
		}
		if err != nil {
			c.fail(err)
		}
	}
	return newProgram(m, info, c.steps, c.template), nil
}

func unsupported(op shader.OpCode) error {
	return &shader.UnsupportedOpcodeError{Backend: shader.BackendJIT, Op: op}
}

func (c *compiler) instruction(r *shader.Reader) error {
	op, _, err := r.Peek()
	if err != nil {
		return err
	}
	switch {
	case op == shader.OpEntryPoint, op == shader.OpDecorate, op.IsType():
		return r.Skip()
	case op == shader.OpConstant:
		return c.constant(r)
	case op == shader.OpVariable:
		return c.variable(r)
	case op == shader.OpLoad:
		return c.load(r)
	case op == shader.OpStore:
		return c.store(r)
	case op.IsBinaryArithmetic():
		return c.arith(r, op)
	case op == shader.OpNegate, op == shader.OpAbs:
		return c.unary(r, op)
	case op == shader.OpCompositeConstruct:
		return c.compositeConstruct(r)
	case op == shader.OpAccessChain:
		return c.accessChain(r)
	case op == shader.OpReturn:
		c.stopped = true
		return r.ReadReturn()
	case op.Valid():
		return unsupported(op)
	default:
		return &shader.DecodeError{Offset: r.Offset(), Op: op, Reason: "unknown opcode"}
	}
}

func (c *compiler) emit(s step) { c.steps = append(c.steps, s) }

func (c *compiler) fail(err error) {
	c.emit(func(*frame) error { return err })
	c.stopped = true
}

// define reserves frame slots for a new value. Allocation is accounted
// against shader.WorkingSetSize so a module exhausts the working set at
// the same instruction on every backend.
func (c *compiler) define(op shader.OpCode, id uint32, t *shader.Type) (*value, error) {
	if _, dup := c.values[id]; dup {
		return nil, shader.TypeErrorf(op, id, "result ID defined twice")
	}
	if t.Size > shader.WorkingSetSize-c.used {
		return nil, shader.ErrWorkingSetFull
	}
	c.used += t.Size
	v := &value{t: t, slot: len(c.template)}
	c.template = append(c.template, make([]uint32, t.Size/4)...)
	c.values[id] = v
	return v, nil
}

func (c *compiler) defineConst(op shader.OpCode, id uint32, t *shader.Type, words ...uint32) error {
	v, err := c.define(op, id, t)
	if err != nil {
		return err
	}
	v.konst = words
	copy(c.template[v.slot:], words)
	return nil
}

func (c *compiler) value(id uint32) (*value, error) {
	v, ok := c.values[id]
	if !ok {
		return nil, shader.BindingErrorf(id, "value used before definition")
	}
	return v, nil
}

func (c *compiler) scalar(id uint32) (*value, error) {
	v, err := c.value(id)
	if err != nil {
		return nil, err
	}
	if v.t.Size != shader.ScalarSize {
		return nil, shader.TypeErrorf(shader.OpNop, id, "%s is not a scalar", v.t)
	}
	return v, nil
}

func (c *compiler) resultType(op shader.OpCode, result, typeID uint32) (*shader.Type, error) {
	t, ok := c.info.Types[typeID]
	if !ok {
		return nil, shader.TypeErrorf(op, result, "result type %%%d is not a type", typeID)
	}
	return t, nil
}

func (c *compiler) pointer(op shader.OpCode, id uint32) (*value, error) {
	v, err := c.value(id)
	if err != nil {
		return nil, err
	}
	if v.t.Kind != shader.KindPointer {
		return nil, shader.TypeErrorf(op, id, "%s is not a pointer", v.t)
	}
	if !v.resolved {
		return nil, unsupported(op)
	}
	return v, nil
}

func (c *compiler) constant(r *shader.Reader) error {
	in, err := r.ReadConstant()
	if err != nil {
		return err
	}
	t, err := c.resultType(shader.OpConstant, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if uint32(len(in.Value))*4 != t.Size {
		return shader.TypeErrorf(shader.OpConstant, in.Result, "%d value words for %s", len(in.Value), t)
	}
	return c.defineConst(shader.OpConstant, in.Result, t, in.Value...)
}

func (c *compiler) variable(r *shader.Reader) error {
	in, err := r.ReadVariable()
	if err != nil {
		return err
	}
	t, err := c.resultType(shader.OpVariable, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if t.Kind != shader.KindPointer {
		return shader.TypeErrorf(shader.OpVariable, in.Result, "%s is not a pointer", t)
	}
	m := c.info.Inputs
	switch t.StorageClass {
	case shader.StorageInput:
	case shader.StorageOutput:
		m = c.info.Outputs
	default:
		return unsupported(shader.OpVariable)
	}

	d := c.info.Decorations[in.Result]
	off, ok := uint32(0), false
	switch {
	case d.HasLocation:
		off, ok = m.Location(d.Location)
	case d.HasBuiltin:
		off, ok = m.Builtin(d.Builtin)
	}
	if !ok {
		return shader.BindingErrorf(in.Result, "%s variable has neither Location nor BuiltIn", shader.StorageClassName(t.StorageClass))
	}
	v, err := c.define(shader.OpVariable, in.Result, t)
	if err != nil {
		return err
	}
	v.ptr, v.resolved = ioPtr{class: t.StorageClass, offset: off}, true
	return nil
}

// window selects the byte region a pointer addresses and checks that
// size bytes fit.
func window(f *frame, id uint32, p ioPtr, size uint32) ([]byte, error) {
	base := f.out
	if p.class == shader.StorageInput {
		base = f.in
	}
	end := uint64(p.offset) + uint64(size)
	if end > uint64(len(base)) {
		return nil, shader.BindingErrorf(id, "access [%d,%d) outside %d-byte region", p.offset, end, len(base))
	}
	return base[p.offset:end], nil
}

func (c *compiler) load(r *shader.Reader) error {
	in, err := r.ReadLoad()
	if err != nil {
		return err
	}
	p, err := c.pointer(shader.OpLoad, in.Pointer)
	if err != nil {
		return err
	}
	t, err := c.resultType(shader.OpLoad, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if !t.Equal(p.t.Element) {
		return shader.TypeErrorf(shader.OpLoad, in.Result, "loads %s through %s", t, p.t)
	}
	if t.Kind == shader.KindPointer {
		// A loaded pointer is only known at run time.
		return unsupported(shader.OpLoad)
	}
	v, err := c.define(shader.OpLoad, in.Result, t)
	if err != nil {
		return err
	}
	id, ptr, size, slot := in.Pointer, p.ptr, t.Size, v.slot
	c.emit(func(f *frame) error {
		src, err := window(f, id, ptr, size)
		if err != nil {
			return err
		}
		for i := range int(size / 4) {
			f.words[slot+i] = binary.LittleEndian.Uint32(src[4*i:])
		}
		return nil
	})
	return nil
}

func (c *compiler) store(r *shader.Reader) error {
	in, err := r.ReadStore()
	if err != nil {
		return err
	}
	p, err := c.pointer(shader.OpStore, in.Pointer)
	if err != nil {
		return err
	}
	v, err := c.value(in.Value)
	if err != nil {
		return err
	}
	if !v.t.Equal(p.t.Element) {
		return shader.TypeErrorf(shader.OpStore, in.Pointer, "stores %s through %s", v.t, p.t)
	}
	if p.ptr.class == shader.StorageInput {
		return shader.BindingErrorf(in.Pointer, "store to Input storage")
	}
	id, ptr, size, slot := in.Pointer, p.ptr, v.t.Size, v.slot
	c.emit(func(f *frame) error {
		dst, err := window(f, id, ptr, size)
		if err != nil {
			return err
		}
		for i := range int(size / 4) {
			binary.LittleEndian.PutUint32(dst[4*i:], f.words[slot+i])
		}
		return nil
	})
	return nil
}

func (c *compiler) arith(r *shader.Reader, op shader.OpCode) error {
	in, err := r.ReadBinary(op)
	if err != nil {
		return err
	}
	a, err := c.scalar(in.A)
	if err != nil {
		return err
	}
	b, err := c.scalar(in.B)
	if err != nil {
		return err
	}
	if !a.t.Equal(b.t) {
		return shader.TypeErrorf(op, in.Result, "operands %s and %s differ", a.t, b.t)
	}
	if !a.t.IsNumeric() {
		return shader.TypeErrorf(op, in.Result, "arithmetic on %s", a.t)
	}
	rt, err := c.resultType(op, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if !rt.Equal(a.t) {
		return shader.TypeErrorf(op, in.Result, "result %s from %s operands", rt, a.t)
	}
	kind := a.t.Kind
	if a.konst != nil && b.konst != nil {
		w, err := shader.Arith(op, kind, a.konst[0], b.konst[0])
		if err != nil {
			return err
		}
		return c.defineConst(op, in.Result, rt, w)
	}

	sa, sb := a.slot, b.slot
	v, derr := c.define(op, in.Result, rt)
	if derr != nil {
		// The kernel runs before the result slot is claimed.
		c.emit(func(f *frame) error {
			if _, err := shader.Arith(op, kind, f.words[sa], f.words[sb]); err != nil {
				return err
			}
			return derr
		})
		c.stopped = true
		return nil
	}
	sd := v.slot
	c.emit(func(f *frame) error {
		w, err := shader.Arith(op, kind, f.words[sa], f.words[sb])
		if err != nil {
			return err
		}
		f.words[sd] = w
		return nil
	})
	return nil
}

func (c *compiler) unary(r *shader.Reader, op shader.OpCode) error {
	in, err := r.ReadUnary(op)
	if err != nil {
		return err
	}
	a, err := c.scalar(in.A)
	if err != nil {
		return err
	}
	if !a.t.IsNumeric() {
		return shader.TypeErrorf(op, in.Result, "%s of %s", op, a.t)
	}
	rt, err := c.resultType(op, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if !rt.Equal(a.t) {
		return shader.TypeErrorf(op, in.Result, "result %s from %s operand", rt, a.t)
	}
	kernel := shader.Abs
	if op == shader.OpNegate {
		kernel = shader.Negate
	}
	kind := a.t.Kind
	if a.konst != nil {
		return c.defineConst(op, in.Result, rt, kernel(kind, a.konst[0]))
	}
	v, err := c.define(op, in.Result, rt)
	if err != nil {
		return err
	}
	sa, sd := a.slot, v.slot
	c.emit(func(f *frame) error {
		f.words[sd] = kernel(kind, f.words[sa])
		return nil
	})
	return nil
}

func (c *compiler) compositeConstruct(r *shader.Reader) error {
	in, err := r.ReadCompositeConstruct()
	if err != nil {
		return err
	}
	rt, err := c.resultType(shader.OpCompositeConstruct, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if rt.Kind != shader.KindVector {
		return shader.TypeErrorf(shader.OpCompositeConstruct, in.Result, "result %s is not a vector", rt)
	}
	if uint32(len(in.Components)) != rt.ElementCount {
		return shader.TypeErrorf(shader.OpCompositeConstruct, in.Result, "%d components for %s", len(in.Components), rt)
	}
	comps := make([]*value, len(in.Components))
	folded := make([]uint32, 0, len(in.Components))
	for i, id := range in.Components {
		v, err := c.value(id)
		if err != nil {
			return err
		}
		if !v.t.Equal(rt.Element) {
			return shader.TypeErrorf(shader.OpCompositeConstruct, in.Result, "component %%%d is %s, want %s", id, v.t, rt.Element)
		}
		comps[i] = v
		if folded != nil && v.konst != nil {
			folded = append(folded, v.konst...)
		} else {
			folded = nil
		}
	}
	if folded != nil {
		return c.defineConst(shader.OpCompositeConstruct, in.Result, rt, folded...)
	}
	v, err := c.define(shader.OpCompositeConstruct, in.Result, rt)
	if err != nil {
		return err
	}
	srcs := make([]int, len(comps))
	for i, cv := range comps {
		srcs[i] = cv.slot
	}
	dst := v.slot
	c.emit(func(f *frame) error {
		for i, s := range srcs {
			f.words[dst+i] = f.words[s]
		}
		return nil
	})
	return nil
}

func (c *compiler) accessChain(r *shader.Reader) error {
	in, err := r.ReadAccessChain()
	if err != nil {
		return err
	}
	if len(in.Indexes) != 1 {
		return shader.TypeErrorf(shader.OpAccessChain, in.Result, "%d indexes, want exactly 1", len(in.Indexes))
	}
	base, err := c.pointer(shader.OpAccessChain, in.Base)
	if err != nil {
		return err
	}
	idx, err := c.scalar(in.Indexes[0])
	if err != nil {
		return err
	}
	if idx.t.Kind != shader.KindInt {
		return shader.TypeErrorf(shader.OpAccessChain, in.Result, "index is %s, want int", idx.t)
	}
	if idx.konst == nil {
		return unsupported(shader.OpAccessChain)
	}
	i := int32(idx.konst[0])
	if i < 0 {
		return shader.BindingErrorf(in.Result, "negative index %d", i)
	}
	elem, delta, err := shader.AccessStep(in.Result, base.t.Element, uint32(i))
	if err != nil {
		return err
	}
	rt, err := c.resultType(shader.OpAccessChain, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if rt.Kind != shader.KindPointer || rt.StorageClass != base.t.StorageClass || !rt.Element.Equal(elem) {
		return shader.TypeErrorf(shader.OpAccessChain, in.Result, "result %s, want pointer to %s in %s",
			rt, elem, shader.StorageClassName(base.t.StorageClass))
	}
	v, err := c.define(shader.OpAccessChain, in.Result, rt)
	if err != nil {
		return err
	}
	v.ptr, v.resolved = ioPtr{class: base.ptr.class, offset: base.ptr.offset + delta}, true
	return nil
}
