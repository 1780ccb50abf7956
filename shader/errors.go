// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	// ErrDecode is matched by every DecodeError.
	ErrDecode = errors.New("shader: decode error")

	// ErrBinding is matched by every BindingError.
	ErrBinding = errors.New("shader: binding error")

	// ErrType is matched by every TypeError.
	ErrType = errors.New("shader: type error")

	// ErrUnsupportedOpcode is returned by backends that cannot compile
	// an instruction. Callers fall back to another backend on it.
	ErrUnsupportedOpcode = errors.New("shader: unsupported opcode")

	// ErrDivideByZero is returned by integer Divide and Mod with a zero divisor.
	ErrDivideByZero = errors.New("shader: integer divide by zero")

	// ErrWorkingSetFull is returned when an invocation exceeds its scratch capacity.
	ErrWorkingSetFull = errors.New("shader: working set exhausted")

	// ErrNoBackend is returned when no registered backend accepts a module.
	ErrNoBackend = errors.New("shader: no backend available")
)

// DecodeError reports malformed bytecode: an unexpected opcode, a word
// count that does not match the instruction or a truncated stream.
type DecodeError struct {
	Offset    int    // word offset of the instruction
	Op        OpCode // opcode found
	Want      OpCode // opcode expected, OpNop when any
	WordCount int
	Reason    string
}

func (e *DecodeError) Error() string {
	if e.Want != OpNop && e.Want != e.Op {
		return fmt.Sprintf("shader: decode at word %d: got %s, want %s", e.Offset, e.Op, e.Want)
	}
	return fmt.Sprintf("shader: decode %s at word %d (word count %d): %s", e.Op, e.Offset, e.WordCount, e.Reason)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// BindingError reports a variable that cannot be resolved: a missing
// decoration, an unbound resource or an access outside a bound resource.
type BindingError struct {
	ID     uint32
	Reason string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("shader: binding %%%d: %s", e.ID, e.Reason)
}

func (e *BindingError) Is(target error) bool { return target == ErrBinding }

// TypeError reports an operand or result type that does not satisfy an
// instruction.
type TypeError struct {
	Op     OpCode
	ID     uint32
	Reason string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("shader: %s %%%d: %s", e.Op, e.ID, e.Reason)
}

func (e *TypeError) Is(target error) bool { return target == ErrType }

// UnsupportedOpcodeError is returned by a backend for an instruction it
// does not implement.
type UnsupportedOpcodeError struct {
	Backend string
	Op      OpCode
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("shader: %s backend does not support %s", e.Backend, e.Op)
}

func (e *UnsupportedOpcodeError) Is(target error) bool { return target == ErrUnsupportedOpcode }

// TypeErrorf builds a TypeError.
func TypeErrorf(op OpCode, id uint32, format string, args ...any) error {
	return &TypeError{Op: op, ID: id, Reason: fmt.Sprintf(format, args...)}
}

// BindingErrorf builds a BindingError.
func BindingErrorf(id uint32, format string, args ...any) error {
	return &BindingError{ID: id, Reason: fmt.Sprintf(format, args...)}
}
