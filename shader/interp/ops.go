// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interp

import (
	"encoding/binary"

	"github.com/gogpu/termgpu/resource"
	"github.com/gogpu/termgpu/shader"
)

func (v *invocation) constant(r *shader.Reader) error {
	in, err := r.ReadConstant()
	if err != nil {
		return err
	}
	t, err := v.resultType(shader.OpConstant, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if uint32(len(in.Value))*4 != t.Size {
		return shader.TypeErrorf(shader.OpConstant, in.Result, "%d value words for %s", len(in.Value), t)
	}
	dst, err := v.define(shader.OpConstant, in.Result, t)
	if err != nil {
		return err
	}
	for i, w := range in.Value {
		binary.LittleEndian.PutUint32(dst[4*i:], w)
	}
	return nil
}

func (v *invocation) variable(r *shader.Reader) error {
	in, err := r.ReadVariable()
	if err != nil {
		return err
	}
	ptr, err := v.resultType(shader.OpVariable, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if ptr.Kind != shader.KindPointer {
		return shader.TypeErrorf(shader.OpVariable, in.Result, "%s is not a pointer", ptr)
	}
	raw, err := v.resolveVariable(in.Result, ptr)
	if err != nil {
		return err
	}
	dst, err := v.define(shader.OpVariable, in.Result, ptr)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dst, raw)
	return nil
}

// resolveVariable computes the raw pointer value of a variable from its
// storage class and decorations.
func (v *invocation) resolveVariable(id uint32, ptr *shader.Type) (uint32, error) {
	d := v.info.Decorations[id]
	switch sc := ptr.StorageClass; sc {
	case shader.StorageInput, shader.StorageOutput:
		m := v.info.Inputs
		if sc == shader.StorageOutput {
			m = v.info.Outputs
		}
		switch {
		case d.HasLocation:
			if off, ok := m.Location(d.Location); ok {
				return off, nil
			}
		case d.HasBuiltin:
			if off, ok := m.Builtin(d.Builtin); ok {
				return off, nil
			}
		}
		return 0, shader.BindingErrorf(id, "%s variable has neither Location nor BuiltIn", shader.StorageClassName(sc))
	case shader.StorageUniform, shader.StorageUniformConstant:
		if !d.HasBinding {
			return 0, shader.BindingErrorf(id, "%s variable has no Binding", shader.StorageClassName(sc))
		}
		if d.Binding >= shader.PushConstantBinding {
			return 0, shader.BindingErrorf(id, "binding %d out of range", d.Binding)
		}
		return uint32(shader.NewUniformPointer(uint8(d.Binding), 0)), nil
	case shader.StoragePushConstant:
		return uint32(shader.NewUniformPointer(shader.PushConstantBinding, 0)), nil
	case shader.StorageImage:
		if !d.HasBinding {
			return 0, shader.BindingErrorf(id, "Image variable has no Binding")
		}
		return d.Binding, nil
	default:
		return v.alloc(ptr.Element.Size)
	}
}

// pointer returns the decoded address and pointer type of a value.
func (v *invocation) pointer(op shader.OpCode, id uint32) (shader.Address, *shader.Type, error) {
	b, t, err := v.value(id)
	if err != nil {
		return nil, nil, err
	}
	if t.Kind != shader.KindPointer {
		return nil, nil, shader.TypeErrorf(op, id, "%s is not a pointer", t)
	}
	return shader.ResolveAddress(t, binary.LittleEndian.Uint32(b)), t, nil
}

func (v *invocation) load(r *shader.Reader) error {
	in, err := r.ReadLoad()
	if err != nil {
		return err
	}
	addr, ptr, err := v.pointer(shader.OpLoad, in.Pointer)
	if err != nil {
		return err
	}
	t, err := v.resultType(shader.OpLoad, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if !t.Equal(ptr.Element) {
		return shader.TypeErrorf(shader.OpLoad, in.Result, "loads %s through %s", t, ptr)
	}
	if img, ok := addr.(shader.ImageAddress); ok {
		if t.Kind != shader.KindImage {
			return shader.TypeErrorf(shader.OpLoad, in.Result, "Image storage holds %s", t)
		}
		return v.defineWord(shader.OpLoad, in.Result, t, img.Binding)
	}
	src, err := v.mem.Window(in.Pointer, addr, t.Size, false)
	if err != nil {
		return err
	}
	dst, err := v.define(shader.OpLoad, in.Result, t)
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

func (v *invocation) store(r *shader.Reader) error {
	in, err := r.ReadStore()
	if err != nil {
		return err
	}
	addr, ptr, err := v.pointer(shader.OpStore, in.Pointer)
	if err != nil {
		return err
	}
	src, t, err := v.value(in.Value)
	if err != nil {
		return err
	}
	if !t.Equal(ptr.Element) {
		return shader.TypeErrorf(shader.OpStore, in.Pointer, "stores %s through %s", t, ptr)
	}
	dst, err := v.mem.Window(in.Pointer, addr, t.Size, true)
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

// scalarOperands loads two scalar operands of identical numeric type.
func (v *invocation) scalarOperands(op shader.OpCode, result, a, b uint32) (uint32, uint32, *shader.Type, error) {
	x, ta, err := v.word(a)
	if err != nil {
		return 0, 0, nil, err
	}
	y, tb, err := v.word(b)
	if err != nil {
		return 0, 0, nil, err
	}
	if !ta.Equal(tb) {
		return 0, 0, nil, shader.TypeErrorf(op, result, "operands %s and %s differ", ta, tb)
	}
	return x, y, ta, nil
}

func (v *invocation) arith(r *shader.Reader, op shader.OpCode) error {
	in, err := r.ReadBinary(op)
	if err != nil {
		return err
	}
	x, y, t, err := v.scalarOperands(op, in.Result, in.A, in.B)
	if err != nil {
		return err
	}
	if !t.IsNumeric() {
		return shader.TypeErrorf(op, in.Result, "arithmetic on %s", t)
	}
	rt, err := v.resultType(op, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if !rt.Equal(t) {
		return shader.TypeErrorf(op, in.Result, "result %s from %s operands", rt, t)
	}
	w, err := shader.Arith(op, t.Kind, x, y)
	if err != nil {
		return err
	}
	return v.defineWord(op, in.Result, rt, w)
}

func (v *invocation) unary(r *shader.Reader, op shader.OpCode) error {
	in, err := r.ReadUnary(op)
	if err != nil {
		return err
	}
	x, t, err := v.word(in.A)
	if err != nil {
		return err
	}
	if !t.IsNumeric() {
		return shader.TypeErrorf(op, in.Result, "%s of %s", op, t)
	}
	rt, err := v.resultType(op, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if !rt.Equal(t) {
		return shader.TypeErrorf(op, in.Result, "result %s from %s operand", rt, t)
	}
	if op == shader.OpNegate {
		return v.defineWord(op, in.Result, rt, shader.Negate(t.Kind, x))
	}
	return v.defineWord(op, in.Result, rt, shader.Abs(t.Kind, x))
}

func (v *invocation) compare(r *shader.Reader, op shader.OpCode) error {
	in, err := r.ReadBinary(op)
	if err != nil {
		return err
	}
	x, y, t, err := v.scalarOperands(op, in.Result, in.A, in.B)
	if err != nil {
		return err
	}
	if !t.IsNumeric() && (op != shader.OpEquals || t.Kind != shader.KindBool) {
		return shader.TypeErrorf(op, in.Result, "comparison of %s", t)
	}
	rt, err := v.resultType(op, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if rt.Kind != shader.KindBool {
		return shader.TypeErrorf(op, in.Result, "comparison result is %s, want bool", rt)
	}
	return v.defineWord(op, in.Result, rt, shader.Compare(op, t.Kind, x, y))
}

func (v *invocation) conditional(r *shader.Reader) error {
	in, err := r.ReadConditional()
	if err != nil {
		return err
	}
	cond, ct, err := v.word(in.Cond)
	if err != nil {
		return err
	}
	if ct.Kind != shader.KindBool && ct.Kind != shader.KindInt {
		return shader.TypeErrorf(shader.OpConditional, in.Result, "condition is %s", ct)
	}
	tv, tt, err := v.value(in.True)
	if err != nil {
		return err
	}
	fv, ft, err := v.value(in.False)
	if err != nil {
		return err
	}
	if !tt.Equal(ft) {
		return shader.TypeErrorf(shader.OpConditional, in.Result, "branches %s and %s differ", tt, ft)
	}
	rt, err := v.resultType(shader.OpConditional, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if !rt.Equal(tt) {
		return shader.TypeErrorf(shader.OpConditional, in.Result, "result %s from %s branches", rt, tt)
	}
	src := fv
	if shader.Selects(cond) {
		src = tv
	}
	dst, err := v.define(shader.OpConditional, in.Result, rt)
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

func (v *invocation) compositeConstruct(r *shader.Reader) error {
	in, err := r.ReadCompositeConstruct()
	if err != nil {
		return err
	}
	rt, err := v.resultType(shader.OpCompositeConstruct, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if rt.Kind != shader.KindVector {
		return shader.TypeErrorf(shader.OpCompositeConstruct, in.Result, "result %s is not a vector", rt)
	}
	if uint32(len(in.Components)) != rt.ElementCount {
		return shader.TypeErrorf(shader.OpCompositeConstruct, in.Result, "%d components for %s", len(in.Components), rt)
	}
	// Validate before allocating so a failure leaves no half-built value.
	for _, c := range in.Components {
		_, ct, err := v.value(c)
		if err != nil {
			return err
		}
		if !ct.Equal(rt.Element) {
			return shader.TypeErrorf(shader.OpCompositeConstruct, in.Result, "component %%%d is %s, want %s", c, ct, rt.Element)
		}
	}
	dst, err := v.define(shader.OpCompositeConstruct, in.Result, rt)
	if err != nil {
		return err
	}
	size := rt.Element.Size
	for i, c := range in.Components {
		src, _, _ := v.value(c)
		copy(dst[uint32(i)*size:], src)
	}
	return nil
}

func (v *invocation) accessChain(r *shader.Reader) error {
	in, err := r.ReadAccessChain()
	if err != nil {
		return err
	}
	if len(in.Indexes) != 1 {
		return shader.TypeErrorf(shader.OpAccessChain, in.Result, "%d indexes, want exactly 1", len(in.Indexes))
	}
	addr, ptr, err := v.pointer(shader.OpAccessChain, in.Base)
	if err != nil {
		return err
	}
	idxWord, it, err := v.word(in.Indexes[0])
	if err != nil {
		return err
	}
	if it.Kind != shader.KindInt {
		return shader.TypeErrorf(shader.OpAccessChain, in.Result, "index is %s, want int", it)
	}
	idx := int32(idxWord)
	if idx < 0 {
		return shader.BindingErrorf(in.Result, "negative index %d", idx)
	}

	elem, delta, err := shader.AccessStep(in.Result, ptr.Element, uint32(idx))
	if err != nil {
		return err
	}
	rt, err := v.resultType(shader.OpAccessChain, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if rt.Kind != shader.KindPointer || rt.StorageClass != ptr.StorageClass || !rt.Element.Equal(elem) {
		return shader.TypeErrorf(shader.OpAccessChain, in.Result, "result %s, want pointer to %s in %s",
			rt, elem, shader.StorageClassName(ptr.StorageClass))
	}
	derived, ok := shader.Offset(addr, delta)
	if !ok {
		return shader.BindingErrorf(in.Result, "cannot offset %T by %d", addr, delta)
	}
	return v.defineWord(shader.OpAccessChain, in.Result, rt, shader.EncodeAddress(derived))
}

func (v *invocation) vectorShuffle(r *shader.Reader) error {
	in, err := r.ReadVectorShuffle()
	if err != nil {
		return err
	}
	a, at, err := v.value(in.V1)
	if err != nil {
		return err
	}
	b, bt, err := v.value(in.V2)
	if err != nil {
		return err
	}
	if at.Kind != shader.KindVector || bt.Kind != shader.KindVector || !at.Element.Equal(bt.Element) {
		return shader.TypeErrorf(shader.OpVectorShuffle, in.Result, "shuffle of %s and %s", at, bt)
	}
	n := len(in.Components)
	if n == 0 || n > 4 {
		return shader.TypeErrorf(shader.OpVectorShuffle, in.Result, "%d components, want 1 to 4", n)
	}
	rt, err := v.resultType(shader.OpVectorShuffle, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	wantVector := rt.Kind == shader.KindVector && rt.ElementCount == uint32(n) && rt.Element.Equal(at.Element)
	wantScalar := n == 1 && rt.Equal(at.Element)
	if !wantVector && !wantScalar {
		return shader.TypeErrorf(shader.OpVectorShuffle, in.Result, "result %s for %d components of %s", rt, n, at.Element)
	}
	size := at.Element.Size
	for _, c := range in.Components {
		if c >= at.ElementCount+bt.ElementCount {
			return shader.TypeErrorf(shader.OpVectorShuffle, in.Result, "component %d out of range", c)
		}
	}
	dst, err := v.define(shader.OpVectorShuffle, in.Result, rt)
	if err != nil {
		return err
	}
	for i, c := range in.Components {
		src, k := a, c
		if c >= at.ElementCount {
			src, k = b, c-at.ElementCount
		}
		copy(dst[uint32(i)*size:], src[k*size:(k+1)*size])
	}
	return nil
}

func (v *invocation) gather(r *shader.Reader) error {
	in, err := r.ReadGather()
	if err != nil {
		return err
	}
	binding, imgT, err := v.word(in.Image)
	if err != nil {
		return err
	}
	if imgT.Kind != shader.KindImage {
		return shader.TypeErrorf(shader.OpGather, in.Result, "image operand is %s", imgT)
	}
	coord, ct, err := v.value(in.Coordinate)
	if err != nil {
		return err
	}
	if ct.Kind != shader.KindVector || ct.ElementCount != 2 || ct.Element.Kind != shader.KindInt {
		return shader.TypeErrorf(shader.OpGather, in.Result, "coordinate is %s, want vec2<int>", ct)
	}
	rt, err := v.resultType(shader.OpGather, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if !rt.Equal(texelType(imgT.Format)) {
		return shader.TypeErrorf(shader.OpGather, in.Result, "result %s for %s texels", rt, imgT.Format)
	}
	dst, err := v.define(shader.OpGather, in.Result, rt)
	if err != nil {
		return err
	}
	x := int32(binary.LittleEndian.Uint32(coord[0:]))
	y := int32(binary.LittleEndian.Uint32(coord[4:]))
	return v.mem.Gather(in.Result, binding, imgT.Format, x, y, dst)
}

// texelType is the value type Gather produces for a format.
func texelType(f resource.Format) *shader.Type {
	if f == resource.FormatR32G32B32SFloat {
		return shader.VectorOf(shader.Float(), 3)
	}
	return shader.Int()
}

func (v *invocation) convert(r *shader.Reader, op shader.OpCode) error {
	in, err := r.ReadUnary(op)
	if err != nil {
		return err
	}
	x, t, err := v.word(in.A)
	if err != nil {
		return err
	}
	from, to := shader.KindInt, shader.KindFloat
	if op == shader.OpFloatToInt {
		from, to = to, from
	}
	if t.Kind != from {
		return shader.TypeErrorf(op, in.Result, "operand is %s, want %s", t, from)
	}
	rt, err := v.resultType(op, in.Result, in.ResultType)
	if err != nil {
		return err
	}
	if rt.Kind != to {
		return shader.TypeErrorf(op, in.Result, "result is %s, want %s", rt, to)
	}
	if op == shader.OpIntToFloat {
		return v.defineWord(op, in.Result, rt, shader.IntToFloat(x))
	}
	return v.defineWord(op, in.Result, rt, shader.FloatToInt(x))
}

func (v *invocation) defineWord(op shader.OpCode, id uint32, t *shader.Type, w uint32) error {
	dst, err := v.define(op, id, t)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dst, w)
	return nil
}
