// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interp

import (
	"encoding/binary"

	"github.com/gogpu/termgpu/shader"
)

// invocation is the per-Execute state: the working set arena and the
// value tables. Instances are pooled and fully reset between calls, so no
// state crosses invocations.
type invocation struct {
	info *shader.Info
	ws   [WorkingSetSize]byte
	top  uint32

	offsets map[uint32]uint32       // value ID -> working set offset
	types   map[uint32]*shader.Type // value ID -> value type
	mem     shader.Memory
}

func newInvocation(info *shader.Info) *invocation {
	return &invocation{
		info:    info,
		offsets: make(map[uint32]uint32),
		types:   make(map[uint32]*shader.Type),
	}
}

func (v *invocation) reset(att *shader.Attachments, input, output []byte) {
	clear(v.offsets)
	clear(v.types)
	clear(v.ws[:v.top])
	v.top = 0
	v.mem = shader.Memory{Attachments: att, Input: input, Output: output, Local: v.ws[:]}
}

// alloc bump-allocates size bytes of the working set.
func (v *invocation) alloc(size uint32) (uint32, error) {
	if size > WorkingSetSize-v.top {
		return 0, shader.ErrWorkingSetFull
	}
	off := v.top
	v.top += size
	return off, nil
}

// define reserves the slot of a new value.
func (v *invocation) define(op shader.OpCode, id uint32, t *shader.Type) ([]byte, error) {
	if _, dup := v.offsets[id]; dup {
		return nil, shader.TypeErrorf(op, id, "result ID defined twice")
	}
	off, err := v.alloc(t.Size)
	if err != nil {
		return nil, err
	}
	v.offsets[id] = off
	v.types[id] = t
	return v.ws[off : off+t.Size], nil
}

// value returns the bytes and type of a defined value.
func (v *invocation) value(id uint32) ([]byte, *shader.Type, error) {
	off, ok := v.offsets[id]
	if !ok {
		return nil, nil, shader.BindingErrorf(id, "value used before definition")
	}
	t := v.types[id]
	return v.ws[off : off+t.Size], t, nil
}

func (v *invocation) word(id uint32) (uint32, *shader.Type, error) {
	b, t, err := v.value(id)
	if err != nil {
		return 0, nil, err
	}
	if t.Size != shader.ScalarSize {
		return 0, t, shader.TypeErrorf(shader.OpNop, id, "%s is not a scalar", t)
	}
	return binary.LittleEndian.Uint32(b), t, nil
}

// resultType resolves the result type operand of an instruction.
func (v *invocation) resultType(op shader.OpCode, result, typeID uint32) (*shader.Type, error) {
	t, ok := v.info.Types[typeID]
	if !ok {
		return nil, shader.TypeErrorf(op, result, "result type %%%d is not a type", typeID)
	}
	return t, nil
}

func (v *invocation) run(r *shader.Reader) error {
	for !r.Done() {
		op, _, err := r.Peek()
		if err != nil {
			return err
		}
		switch {
		case op == shader.OpEntryPoint, op == shader.OpDecorate, op.IsType():
			err = r.Skip()
		case op == shader.OpConstant:
			err = v.constant(r)
		case op == shader.OpVariable:
			err = v.variable(r)
		case op == shader.OpLoad:
			err = v.load(r)
		case op == shader.OpStore:
			err = v.store(r)
		case op.IsBinaryArithmetic():
			err = v.arith(r, op)
		case op == shader.OpNegate, op == shader.OpAbs:
			err = v.unary(r, op)
		case op.IsComparison():
			err = v.compare(r, op)
		case op == shader.OpConditional:
			err = v.conditional(r)
		case op == shader.OpCompositeConstruct:
			err = v.compositeConstruct(r)
		case op == shader.OpAccessChain:
			err = v.accessChain(r)
		case op == shader.OpVectorShuffle:
			err = v.vectorShuffle(r)
		case op == shader.OpGather:
			err = v.gather(r)
		case op == shader.OpIntToFloat, op == shader.OpFloatToInt:
			err = v.convert(r, op)
		case op == shader.OpReturn:
			return r.ReadReturn()
		default:
			return &shader.DecodeError{Offset: r.Offset(), Op: op, Reason: "unknown opcode"}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
