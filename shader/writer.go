// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"encoding/binary"

	"github.com/gogpu/gputypes"
)

// Writer appends encoded instructions to a word stream.
//
// Every Write method emits a header word (opcode | wordCount<<16)
// followed by its operands. The zero value is ready to use.
type Writer struct {
	words []uint32
}

// NewWriter returns a Writer with room for capacity words.
func NewWriter(capacity int) *Writer {
	return &Writer{words: make([]uint32, 0, capacity)}
}

// Len returns the number of words written.
func (w *Writer) Len() int { return len(w.words) }

// Words returns the encoded stream. The slice aliases the writer.
func (w *Writer) Words() []uint32 { return w.words }

// Bytes returns the stream as little-endian bytes.
func (w *Writer) Bytes() []byte {
	out := make([]byte, 4*len(w.words))
	for i, word := range w.words {
		binary.LittleEndian.PutUint32(out[4*i:], word)
	}
	return out
}

// WriteRaw appends an instruction with arbitrary operands.
func (w *Writer) WriteRaw(op OpCode, operands ...uint32) {
	w.words = append(w.words, Header(op, 1+len(operands)))
	w.words = append(w.words, operands...)
}

// WriteEntryPoint declares the shader stage and its interface variables.
func (w *Writer) WriteEntryPoint(stage gputypes.ShaderStage, interfaceIDs ...uint32) {
	w.WriteRaw(OpEntryPoint, append([]uint32{uint32(stage)}, interfaceIDs...)...)
}

// WriteDecorate attaches a Location, Binding or BuiltIn to target.
func (w *Writer) WriteDecorate(target uint32, d Decoration, value uint32) {
	w.WriteRaw(OpDecorate, target, uint32(d), value)
}

// WriteTypeInt declares the 32-bit integer type.
func (w *Writer) WriteTypeInt(result uint32) { w.WriteRaw(OpTypeInt, result) }

// WriteTypeFloat declares the 32-bit float type.
func (w *Writer) WriteTypeFloat(result uint32) { w.WriteRaw(OpTypeFloat, result) }

// WriteTypeBool declares the boolean type.
func (w *Writer) WriteTypeBool(result uint32) { w.WriteRaw(OpTypeBool, result) }

// WriteTypeVector declares a vector of count elements.
func (w *Writer) WriteTypeVector(result, element, count uint32) {
	w.WriteRaw(OpTypeVector, result, element, count)
}

// WriteTypePointer declares a pointer to pointee in storage class sc.
func (w *Writer) WriteTypePointer(result uint32, sc StorageClass, pointee uint32) {
	w.WriteRaw(OpTypePointer, result, uint32(sc), pointee)
}

// WriteTypeImage declares an image type. format is a resource.Format value.
func (w *Writer) WriteTypeImage(result, format uint32) {
	w.WriteRaw(OpTypeImage, result, format)
}

// WriteTypeRuntimeArray declares an unsized array.
func (w *Writer) WriteTypeRuntimeArray(result, element uint32) {
	w.WriteRaw(OpTypeRuntimeArray, result, element)
}

// WriteTypeStruct declares a packed struct.
func (w *Writer) WriteTypeStruct(result uint32, members ...uint32) {
	w.WriteRaw(OpTypeStruct, append([]uint32{result}, members...)...)
}

// WriteConstant declares a constant from raw value words.
func (w *Writer) WriteConstant(resultType, result uint32, value ...uint32) {
	w.WriteRaw(OpConstant, append([]uint32{resultType, result}, value...)...)
}

// WriteVariable declares a variable; resultType must be a pointer type.
func (w *Writer) WriteVariable(resultType, result uint32) {
	w.WriteRaw(OpVariable, resultType, result)
}

// WriteLoad reads through pointer.
func (w *Writer) WriteLoad(resultType, result, pointer uint32) {
	w.WriteRaw(OpLoad, resultType, result, pointer)
}

// WriteStore writes value through pointer.
func (w *Writer) WriteStore(pointer, value uint32) {
	w.WriteRaw(OpStore, pointer, value)
}

// WriteBinary emits a two-operand instruction: arithmetic or comparison.
func (w *Writer) WriteBinary(op OpCode, resultType, result, a, b uint32) {
	w.WriteRaw(op, resultType, result, a, b)
}

// WriteUnary emits a one-operand instruction: Negate, Abs or a conversion.
func (w *Writer) WriteUnary(op OpCode, resultType, result, a uint32) {
	w.WriteRaw(op, resultType, result, a)
}

// WriteConditional selects trueValue when cond is 0, falseValue otherwise.
func (w *Writer) WriteConditional(resultType, result, cond, trueValue, falseValue uint32) {
	w.WriteRaw(OpConditional, resultType, result, cond, trueValue, falseValue)
}

// WriteCompositeConstruct packs components into a vector.
func (w *Writer) WriteCompositeConstruct(resultType, result uint32, components ...uint32) {
	w.WriteRaw(OpCompositeConstruct, append([]uint32{resultType, result}, components...)...)
}

// WriteAccessChain derives a pointer into base.
func (w *Writer) WriteAccessChain(resultType, result, base uint32, indexes ...uint32) {
	w.WriteRaw(OpAccessChain, append([]uint32{resultType, result, base}, indexes...)...)
}

// WriteVectorShuffle selects components from v1 and v2.
func (w *Writer) WriteVectorShuffle(resultType, result, v1, v2 uint32, components ...uint32) {
	w.WriteRaw(OpVectorShuffle, append([]uint32{resultType, result, v1, v2}, components...)...)
}

// WriteGather reads the texel of image at an ivec2 coordinate.
func (w *Writer) WriteGather(resultType, result, image, coordinate uint32) {
	w.WriteRaw(OpGather, resultType, result, image, coordinate)
}

// WriteReturn ends the code section.
func (w *Writer) WriteReturn() { w.WriteRaw(OpReturn) }
