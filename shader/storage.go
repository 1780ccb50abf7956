// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"fmt"

	"github.com/gogpu/naga/spirv"
)

// StorageClass is the address space of a variable. Values follow the
// SPIR-V numbering so modules can be inspected with SPIR-V tooling.
type StorageClass = spirv.StorageClass

// Storage classes understood by the engines.
const (
	StorageUniformConstant = spirv.StorageClassUniformConstant
	StorageInput           = spirv.StorageClassInput
	StorageUniform         = spirv.StorageClassUniform
	StorageOutput          = spirv.StorageClassOutput
	StorageFunction        = spirv.StorageClassFunction
	StoragePushConstant    = spirv.StorageClassPushConstant
	StorageImage           = spirv.StorageClassImage
)

// StorageClassName returns the name of a storage class.
func StorageClassName(sc StorageClass) string {
	switch sc {
	case StorageUniformConstant:
		return "UniformConstant"
	case StorageInput:
		return "Input"
	case StorageUniform:
		return "Uniform"
	case StorageOutput:
		return "Output"
	case StorageFunction:
		return "Function"
	case StoragePushConstant:
		return "PushConstant"
	case StorageImage:
		return "Image"
	default:
		return fmt.Sprintf("StorageClass(%d)", uint32(sc))
	}
}

// knownStorageClass reports whether sc is one of the classes above.
func knownStorageClass(sc StorageClass) bool {
	switch sc {
	case StorageUniformConstant, StorageInput, StorageUniform, StorageOutput,
		StorageFunction, StoragePushConstant, StorageImage:
		return true
	}
	return false
}

// IsUniform reports whether pointers of class sc hold a UniformPointer.
func IsUniform(sc StorageClass) bool {
	return sc == StorageUniform || sc == StorageUniformConstant || sc == StoragePushConstant
}

// Decoration is the kind of metadata attached by a Decorate instruction.
type Decoration = spirv.Decoration

// Decorations understood by the engines.
const (
	DecorationBuiltin  = spirv.DecorationBuiltIn
	DecorationLocation = spirv.DecorationLocation
	DecorationBinding  = spirv.DecorationBinding
)

// DecorationName returns the name of a decoration kind.
func DecorationName(d Decoration) string {
	switch d {
	case DecorationBuiltin:
		return "BuiltIn"
	case DecorationLocation:
		return "Location"
	case DecorationBinding:
		return "Binding"
	default:
		return fmt.Sprintf("Decoration(%d)", uint32(d))
	}
}

// Builtin identifies a per-invocation value supplied by the pipeline.
// Every builtin is 4 bytes.
type Builtin uint32

const (
	BuiltinVertexIndex   Builtin = iota // int, index of the vertex in the draw
	BuiltinInstanceIndex                // int, index of the instance
	BuiltinPositionX                    // int, cell column
	BuiltinPositionY                    // int, cell row
	BuiltinTimer                        // float, seconds since engine start

	builtinCount
)

var builtinNames = [...]string{
	BuiltinVertexIndex:   "VertexIndex",
	BuiltinInstanceIndex: "InstanceIndex",
	BuiltinPositionX:     "PositionX",
	BuiltinPositionY:     "PositionY",
	BuiltinTimer:         "Timer",
}

func (b Builtin) String() string {
	if b < builtinCount {
		return builtinNames[b]
	}
	return fmt.Sprintf("Builtin(%d)", uint32(b))
}

// Type returns the value type of the builtin.
func (b Builtin) Type() *Type {
	if b == BuiltinTimer {
		return Float()
	}
	return Int()
}

// PushConstantBinding is the binding used in the UniformPointer of a
// PushConstant variable. Push constants are not bound by decoration.
const PushConstantBinding = 0xFF
