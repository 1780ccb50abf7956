// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"github.com/gogpu/gputypes"
)

// Reader decodes an instruction stream one instruction at a time.
//
// Read methods validate the opcode and word count of the instruction at
// the cursor and advance past it. On error the cursor does not move.
// Skip advances past any instruction using only its header, so callers
// can scan for the instructions they care about.
type Reader struct {
	words []uint32
	pos   int
}

// NewReader returns a Reader positioned at the first word.
func NewReader(words []uint32) *Reader {
	return &Reader{words: words}
}

// Done reports whether the cursor is at the end of the stream.
func (r *Reader) Done() bool { return r.pos >= len(r.words) }

// Offset returns the word offset of the cursor.
func (r *Reader) Offset() int { return r.pos }

// Reset moves the cursor back to the first word.
func (r *Reader) Reset() { r.pos = 0 }

// Peek returns the opcode and word count of the instruction at the cursor.
func (r *Reader) Peek() (OpCode, int, error) {
	if r.Done() {
		return OpNop, 0, &DecodeError{Offset: r.pos, Reason: "unexpected end of stream"}
	}
	op, n := SplitHeader(r.words[r.pos])
	if n == 0 {
		return op, n, &DecodeError{Offset: r.pos, Op: op, Reason: "zero word count"}
	}
	if r.pos+n > len(r.words) {
		return op, n, &DecodeError{Offset: r.pos, Op: op, WordCount: n, Reason: "instruction runs past end of stream"}
	}
	return op, n, nil
}

// Skip advances past the instruction at the cursor.
func (r *Reader) Skip() error {
	_, n, err := r.Peek()
	if err != nil {
		return err
	}
	r.pos += n
	return nil
}

// ReadRaw returns the opcode and operands of the instruction at the cursor
// without validating them. The operand slice aliases the stream.
func (r *Reader) ReadRaw() (OpCode, []uint32, error) {
	op, n, err := r.Peek()
	if err != nil {
		return op, nil, err
	}
	operands := r.words[r.pos+1 : r.pos+n]
	r.pos += n
	return op, operands, nil
}

// expect checks the opcode at the cursor and that it carries exactly
// operands operand words, or at least operands when variadic is set.
func (r *Reader) expect(want OpCode, operands int, variadic bool) ([]uint32, error) {
	op, n, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if op != want {
		return nil, &DecodeError{Offset: r.pos, Op: op, Want: want, WordCount: n}
	}
	if (!variadic && n != operands+1) || (variadic && n < operands+1) {
		return nil, &DecodeError{Offset: r.pos, Op: op, WordCount: n, Reason: "word count mismatch"}
	}
	ops := r.words[r.pos+1 : r.pos+n]
	r.pos += n
	return ops, nil
}

// EntryPointInst is a decoded EntryPoint.
type EntryPointInst struct {
	Stage     gputypes.ShaderStage
	Interface []uint32
}

// ReadEntryPoint decodes an EntryPoint.
func (r *Reader) ReadEntryPoint() (EntryPointInst, error) {
	ops, err := r.expect(OpEntryPoint, 1, true)
	if err != nil {
		return EntryPointInst{}, err
	}
	return EntryPointInst{Stage: gputypes.ShaderStage(ops[0]), Interface: ops[1:]}, nil
}

// DecorateInst is a decoded Decorate.
type DecorateInst struct {
	Target     uint32
	Decoration Decoration
	Value      uint32
}

// ReadDecorate decodes a Decorate.
func (r *Reader) ReadDecorate() (DecorateInst, error) {
	ops, err := r.expect(OpDecorate, 3, false)
	if err != nil {
		return DecorateInst{}, err
	}
	return DecorateInst{Target: ops[0], Decoration: Decoration(ops[1]), Value: ops[2]}, nil
}

// ReadTypeInt decodes a TypeInt and returns its result ID.
func (r *Reader) ReadTypeInt() (uint32, error) { return r.readResultOnly(OpTypeInt) }

// ReadTypeFloat decodes a TypeFloat and returns its result ID.
func (r *Reader) ReadTypeFloat() (uint32, error) { return r.readResultOnly(OpTypeFloat) }

// ReadTypeBool decodes a TypeBool and returns its result ID.
func (r *Reader) ReadTypeBool() (uint32, error) { return r.readResultOnly(OpTypeBool) }

func (r *Reader) readResultOnly(op OpCode) (uint32, error) {
	ops, err := r.expect(op, 1, false)
	if err != nil {
		return 0, err
	}
	return ops[0], nil
}

// TypeVectorInst is a decoded TypeVector.
type TypeVectorInst struct {
	Result, Element, Count uint32
}

// ReadTypeVector decodes a TypeVector.
func (r *Reader) ReadTypeVector() (TypeVectorInst, error) {
	ops, err := r.expect(OpTypeVector, 3, false)
	if err != nil {
		return TypeVectorInst{}, err
	}
	return TypeVectorInst{Result: ops[0], Element: ops[1], Count: ops[2]}, nil
}

// TypePointerInst is a decoded TypePointer.
type TypePointerInst struct {
	Result       uint32
	StorageClass StorageClass
	Pointee      uint32
}

// ReadTypePointer decodes a TypePointer.
func (r *Reader) ReadTypePointer() (TypePointerInst, error) {
	ops, err := r.expect(OpTypePointer, 3, false)
	if err != nil {
		return TypePointerInst{}, err
	}
	return TypePointerInst{Result: ops[0], StorageClass: StorageClass(ops[1]), Pointee: ops[2]}, nil
}

// TypeImageInst is a decoded TypeImage.
type TypeImageInst struct {
	Result, Format uint32
}

// ReadTypeImage decodes a TypeImage.
func (r *Reader) ReadTypeImage() (TypeImageInst, error) {
	ops, err := r.expect(OpTypeImage, 2, false)
	if err != nil {
		return TypeImageInst{}, err
	}
	return TypeImageInst{Result: ops[0], Format: ops[1]}, nil
}

// TypeRuntimeArrayInst is a decoded TypeRuntimeArray.
type TypeRuntimeArrayInst struct {
	Result, Element uint32
}

// ReadTypeRuntimeArray decodes a TypeRuntimeArray.
func (r *Reader) ReadTypeRuntimeArray() (TypeRuntimeArrayInst, error) {
	ops, err := r.expect(OpTypeRuntimeArray, 2, false)
	if err != nil {
		return TypeRuntimeArrayInst{}, err
	}
	return TypeRuntimeArrayInst{Result: ops[0], Element: ops[1]}, nil
}

// TypeStructInst is a decoded TypeStruct.
type TypeStructInst struct {
	Result  uint32
	Members []uint32
}

// ReadTypeStruct decodes a TypeStruct.
func (r *Reader) ReadTypeStruct() (TypeStructInst, error) {
	ops, err := r.expect(OpTypeStruct, 1, true)
	if err != nil {
		return TypeStructInst{}, err
	}
	return TypeStructInst{Result: ops[0], Members: ops[1:]}, nil
}

// ConstantInst is a decoded Constant.
type ConstantInst struct {
	ResultType, Result uint32
	Value              []uint32
}

// ReadConstant decodes a Constant.
func (r *Reader) ReadConstant() (ConstantInst, error) {
	ops, err := r.expect(OpConstant, 2, true)
	if err != nil {
		return ConstantInst{}, err
	}
	return ConstantInst{ResultType: ops[0], Result: ops[1], Value: ops[2:]}, nil
}

// VariableInst is a decoded Variable.
type VariableInst struct {
	ResultType, Result uint32
}

// ReadVariable decodes a Variable.
func (r *Reader) ReadVariable() (VariableInst, error) {
	ops, err := r.expect(OpVariable, 2, false)
	if err != nil {
		return VariableInst{}, err
	}
	return VariableInst{ResultType: ops[0], Result: ops[1]}, nil
}

// LoadInst is a decoded Load.
type LoadInst struct {
	ResultType, Result, Pointer uint32
}

// ReadLoad decodes a Load.
func (r *Reader) ReadLoad() (LoadInst, error) {
	ops, err := r.expect(OpLoad, 3, false)
	if err != nil {
		return LoadInst{}, err
	}
	return LoadInst{ResultType: ops[0], Result: ops[1], Pointer: ops[2]}, nil
}

// StoreInst is a decoded Store.
type StoreInst struct {
	Pointer, Value uint32
}

// ReadStore decodes a Store.
func (r *Reader) ReadStore() (StoreInst, error) {
	ops, err := r.expect(OpStore, 2, false)
	if err != nil {
		return StoreInst{}, err
	}
	return StoreInst{Pointer: ops[0], Value: ops[1]}, nil
}

// BinaryInst is a decoded arithmetic or comparison instruction.
type BinaryInst struct {
	Op                       OpCode
	ResultType, Result, A, B uint32
}

// ReadBinary decodes the two-operand instruction op.
func (r *Reader) ReadBinary(op OpCode) (BinaryInst, error) {
	ops, err := r.expect(op, 4, false)
	if err != nil {
		return BinaryInst{}, err
	}
	return BinaryInst{Op: op, ResultType: ops[0], Result: ops[1], A: ops[2], B: ops[3]}, nil
}

// UnaryInst is a decoded Negate, Abs, IntToFloat or FloatToInt.
type UnaryInst struct {
	Op                    OpCode
	ResultType, Result, A uint32
}

// ReadUnary decodes the one-operand instruction op.
func (r *Reader) ReadUnary(op OpCode) (UnaryInst, error) {
	ops, err := r.expect(op, 3, false)
	if err != nil {
		return UnaryInst{}, err
	}
	return UnaryInst{Op: op, ResultType: ops[0], Result: ops[1], A: ops[2]}, nil
}

// ConditionalInst is a decoded Conditional.
type ConditionalInst struct {
	ResultType, Result, Cond, True, False uint32
}

// ReadConditional decodes a Conditional.
func (r *Reader) ReadConditional() (ConditionalInst, error) {
	ops, err := r.expect(OpConditional, 5, false)
	if err != nil {
		return ConditionalInst{}, err
	}
	return ConditionalInst{ResultType: ops[0], Result: ops[1], Cond: ops[2], True: ops[3], False: ops[4]}, nil
}

// CompositeConstructInst is a decoded CompositeConstruct.
type CompositeConstructInst struct {
	ResultType, Result uint32
	Components         []uint32
}

// ReadCompositeConstruct decodes a CompositeConstruct.
func (r *Reader) ReadCompositeConstruct() (CompositeConstructInst, error) {
	ops, err := r.expect(OpCompositeConstruct, 2, true)
	if err != nil {
		return CompositeConstructInst{}, err
	}
	return CompositeConstructInst{ResultType: ops[0], Result: ops[1], Components: ops[2:]}, nil
}

// AccessChainInst is a decoded AccessChain.
type AccessChainInst struct {
	ResultType, Result, Base uint32
	Indexes                  []uint32
}

// ReadAccessChain decodes an AccessChain.
func (r *Reader) ReadAccessChain() (AccessChainInst, error) {
	ops, err := r.expect(OpAccessChain, 3, true)
	if err != nil {
		return AccessChainInst{}, err
	}
	return AccessChainInst{ResultType: ops[0], Result: ops[1], Base: ops[2], Indexes: ops[3:]}, nil
}

// VectorShuffleInst is a decoded VectorShuffle.
type VectorShuffleInst struct {
	ResultType, Result, V1, V2 uint32
	Components                 []uint32
}

// ReadVectorShuffle decodes a VectorShuffle.
func (r *Reader) ReadVectorShuffle() (VectorShuffleInst, error) {
	ops, err := r.expect(OpVectorShuffle, 4, true)
	if err != nil {
		return VectorShuffleInst{}, err
	}
	return VectorShuffleInst{ResultType: ops[0], Result: ops[1], V1: ops[2], V2: ops[3], Components: ops[4:]}, nil
}

// GatherInst is a decoded Gather.
type GatherInst struct {
	ResultType, Result, Image, Coordinate uint32
}

// ReadGather decodes a Gather.
func (r *Reader) ReadGather() (GatherInst, error) {
	ops, err := r.expect(OpGather, 4, false)
	if err != nil {
		return GatherInst{}, err
	}
	return GatherInst{ResultType: ops[0], Result: ops[1], Image: ops[2], Coordinate: ops[3]}, nil
}

// ReadReturn decodes a Return.
func (r *Reader) ReadReturn() error {
	_, err := r.expect(OpReturn, 0, false)
	return err
}
