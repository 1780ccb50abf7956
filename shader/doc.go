// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader defines the bytecode, type system and execution contract
// of the termgpu shader virtual machine.
//
// # Encoding
//
// A module is a stream of little-endian 32-bit words. Every instruction
// starts with a header word holding the opcode in the low 16 bits and the
// total word count (header included) in the high 16 bits, followed by its
// operands. Readers can step over any instruction by word count alone.
//
// Writer and Reader encode and decode individual instructions;
// ModuleBuilder assembles whole modules with ID allocation and type
// memoization.
//
// # Types and storage
//
// Type sizes are deterministic: scalars, pointers and images take 4 bytes,
// vectors and structs are packed without padding, runtime arrays take 0.
// Storage classes and decoration kinds reuse SPIR-V numbering.
// A pointer value is an encoded address, decoded by ResolveAddress into one
// of LocalAddress, IOAddress, UniformAddress or ImageAddress.
//
// # Execution
//
// Executor is implemented by the interpreter (package shader/interp) and
// the closure compiler (package shader/jit). Backends register themselves
// on import; NewExecutor picks the highest-priority backend and falls back
// when a backend reports ErrUnsupportedOpcode. Both engines share the
// arithmetic kernels in this package and therefore agree bit for bit.
//
// The instruction set has no branches, loops or calls. Every invocation is
// a straight line from the first instruction to Return.
package shader
