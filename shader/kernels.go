// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"math"

	"github.com/chewxy/math32"
)

// The kernels below operate on raw 32-bit value words. Both execution
// engines call them so that results agree bit for bit.

// Arith applies a binary arithmetic opcode to two scalars of kind k.
// Integer arithmetic wraps on overflow.
func Arith(op OpCode, k Kind, a, b uint32) (uint32, error) {
	if k == KindFloat {
		x, y := math32.Float32frombits(a), math32.Float32frombits(b)
		var r float32
		switch op {
		case OpAdd:
			r = x + y
		case OpSubtract:
			r = x - y
		case OpMultiply:
			r = x * y
		case OpDivide:
			r = x / y
		case OpMod:
			r = math32.Mod(x, y)
		default:
			return 0, TypeErrorf(op, 0, "not a binary arithmetic opcode")
		}
		return math32.Float32bits(r), nil
	}

	x, y := int32(a), int32(b)
	var r int32
	switch op {
	case OpAdd:
		r = x + y
	case OpSubtract:
		r = x - y
	case OpMultiply:
		r = x * y
	case OpDivide, OpMod:
		if y == 0 {
			return 0, ErrDivideByZero
		}
		// MinInt32 / -1 overflows; wrap like the other operations.
		if x == math.MinInt32 && y == -1 {
			if op == OpDivide {
				r = x
			}
			break
		}
		if op == OpDivide {
			r = x / y
		} else {
			r = x % y
		}
	default:
		return 0, TypeErrorf(op, 0, "not a binary arithmetic opcode")
	}
	return uint32(r), nil
}

// Negate returns -a for a scalar of kind k.
func Negate(k Kind, a uint32) uint32 {
	if k == KindFloat {
		return math32.Float32bits(-math32.Float32frombits(a))
	}
	return uint32(-int32(a))
}

// Abs returns |a| for a scalar of kind k. Abs(MinInt32) is MinInt32.
func Abs(k Kind, a uint32) uint32 {
	if k == KindFloat {
		return math32.Float32bits(math32.Abs(math32.Float32frombits(a)))
	}
	if x := int32(a); x < 0 {
		return uint32(-x)
	}
	return a
}

// Compare applies Equals, GreaterThan or LessThan and returns 0 or 1.
func Compare(op OpCode, k Kind, a, b uint32) uint32 {
	var r bool
	switch k {
	case KindFloat:
		x, y := math32.Float32frombits(a), math32.Float32frombits(b)
		switch op {
		case OpEquals:
			r = x == y
		case OpGreaterThan:
			r = x > y
		case OpLessThan:
			r = x < y
		}
	default:
		x, y := int32(a), int32(b)
		switch op {
		case OpEquals:
			r = x == y
		case OpGreaterThan:
			r = x > y
		case OpLessThan:
			r = x < y
		}
	}
	if r {
		return 1
	}
	return 0
}

// Selects reports whether Conditional picks its true operand.
// A condition word of 0 selects true.
func Selects(cond uint32) bool {
	return cond == 0
}

// IntToFloat converts a signed integer word to a float word.
func IntToFloat(a uint32) uint32 {
	return math32.Float32bits(float32(int32(a)))
}

// FloatToInt converts a float word to a signed integer word, truncating
// toward zero. NaN converts to 0 and out-of-range values saturate.
func FloatToInt(a uint32) uint32 {
	f := math32.Float32frombits(a)
	switch {
	case math32.IsNaN(f):
		return 0
	case f >= 2147483648:
		return uint32(math.MaxInt32)
	case f <= -2147483648:
		return uint32(1 << 31)
	}
	return uint32(int32(math32.Trunc(f)))
}
