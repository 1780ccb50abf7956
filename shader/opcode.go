// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import "fmt"

// OpCode identifies an instruction in the shader bytecode.
// It occupies the low 16 bits of an instruction header word.
type OpCode uint16

const (
	OpNop OpCode = iota

	// Module structure
	OpEntryPoint // Stage and interface variable IDs
	OpDecorate   // Location, Binding or BuiltIn metadata for an ID

	// Types
	OpTypeInt          // 32-bit signed integer
	OpTypeFloat        // 32-bit IEEE-754 float
	OpTypeBool         // 32-bit boolean (0 or 1)
	OpTypeVector       // Element type and component count
	OpTypePointer      // Storage class and pointee type
	OpTypeImage        // Texel format
	OpTypeRuntimeArray // Unsized array of an element type
	OpTypeStruct       // Packed member types

	// Values and memory
	OpConstant // Literal value words
	OpVariable // Pointer to storage
	OpLoad     // Read through a pointer
	OpStore    // Write through a pointer

	// Arithmetic
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpMod
	OpNegate
	OpAbs

	// Comparison and selection
	OpEquals
	OpGreaterThan
	OpLessThan
	OpConditional

	// Composites
	OpCompositeConstruct
	OpAccessChain
	OpVectorShuffle

	// Images and conversions
	OpGather
	OpIntToFloat
	OpFloatToInt

	OpReturn

	opCount
)

// opNames maps OpCode values to their mnemonic.
var opNames = [...]string{
	OpNop:                "Nop",
	OpEntryPoint:         "EntryPoint",
	OpDecorate:           "Decorate",
	OpTypeInt:            "TypeInt",
	OpTypeFloat:          "TypeFloat",
	OpTypeBool:           "TypeBool",
	OpTypeVector:         "TypeVector",
	OpTypePointer:        "TypePointer",
	OpTypeImage:          "TypeImage",
	OpTypeRuntimeArray:   "TypeRuntimeArray",
	OpTypeStruct:         "TypeStruct",
	OpConstant:           "Constant",
	OpVariable:           "Variable",
	OpLoad:               "Load",
	OpStore:              "Store",
	OpAdd:                "Add",
	OpSubtract:           "Subtract",
	OpMultiply:           "Multiply",
	OpDivide:             "Divide",
	OpMod:                "Mod",
	OpNegate:             "Negate",
	OpAbs:                "Abs",
	OpEquals:             "Equals",
	OpGreaterThan:        "GreaterThan",
	OpLessThan:           "LessThan",
	OpConditional:        "Conditional",
	OpCompositeConstruct: "CompositeConstruct",
	OpAccessChain:        "AccessChain",
	OpVectorShuffle:      "VectorShuffle",
	OpGather:             "Gather",
	OpIntToFloat:         "IntToFloat",
	OpFloatToInt:         "FloatToInt",
	OpReturn:             "Return",
}

// String returns the mnemonic of the opcode.
func (op OpCode) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("Unknown(%d)", uint16(op))
}

// Valid reports whether op is a known opcode.
func (op OpCode) Valid() bool {
	return op > OpNop && op < opCount
}

// IsType reports whether op declares a type.
func (op OpCode) IsType() bool {
	return op >= OpTypeInt && op <= OpTypeStruct
}

// IsBinaryArithmetic reports whether op is Add, Subtract, Multiply, Divide or Mod.
func (op OpCode) IsBinaryArithmetic() bool {
	return op >= OpAdd && op <= OpMod
}

// IsComparison reports whether op is Equals, GreaterThan or LessThan.
func (op OpCode) IsComparison() bool {
	return op >= OpEquals && op <= OpLessThan
}

// Header packs an opcode and a total word count into an instruction header.
func Header(op OpCode, wordCount int) uint32 {
	return uint32(op) | uint32(wordCount)<<16
}

// SplitHeader unpacks an instruction header word.
func SplitHeader(word uint32) (OpCode, int) {
	return OpCode(word & 0xFFFF), int(word >> 16)
}
