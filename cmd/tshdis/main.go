// Command tshdis disassembles termgpu shader bytecode.
//
// Usage:
//
//	tshdis shader.tsh
//
// Each instruction is printed on one line, prefixed with its word offset.
// IDs are shown as %N and storage classes, decorations, builtins and
// image formats by name.
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/resource"
	"github.com/gogpu/termgpu/shader"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: tshdis <file>")
		os.Exit(2)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(data)%4 != 0 {
		fmt.Fprintf(os.Stderr, "tshdis: %d bytes is not a whole number of words\n", len(data))
		os.Exit(1)
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if err := disassemble(os.Stdout, words); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// disassemble walks words with Skip only, so it also lists instructions
// whose operands would not decode.
func disassemble(w io.Writer, words []uint32) error {
	fmt.Fprintf(w, "; %d words\n", len(words))
	r := shader.NewReader(words)
	for !r.Done() {
		off := r.Offset()
		op, n, err := r.Peek()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%5d: %s\n", off, format(op, words[off+1:off+n]))
		if err := r.Skip(); err != nil {
			return err
		}
	}
	return nil
}

func format(op shader.OpCode, operands []uint32) string {
	var b strings.Builder
	b.WriteString(op.String())
	id := func(v uint32) { fmt.Fprintf(&b, " %%%d", v) }
	lit := func(v uint32) { fmt.Fprintf(&b, " %d", v) }
	name := func(s string) { b.WriteString(" " + s) }
	rest := func(from int, each func(uint32)) {
		for _, v := range operands[min(from, len(operands)):] {
			each(v)
		}
	}

	switch op {
	case shader.OpEntryPoint:
		if len(operands) > 0 {
			name(gputypes.ShaderStage(operands[0]).String())
		}
		rest(1, id)
	case shader.OpDecorate:
		if len(operands) != 3 {
			rest(0, lit)
			break
		}
		id(operands[0])
		d := shader.Decoration(operands[1])
		name(shader.DecorationName(d))
		if d == shader.DecorationBuiltin {
			name(shader.Builtin(operands[2]).String())
		} else {
			lit(operands[2])
		}
	case shader.OpTypePointer:
		if len(operands) != 3 {
			rest(0, lit)
			break
		}
		id(operands[0])
		name(shader.StorageClassName(shader.StorageClass(operands[1])))
		id(operands[2])
	case shader.OpTypeImage:
		if len(operands) != 2 {
			rest(0, lit)
			break
		}
		id(operands[0])
		name(resource.Format(operands[1]).String())
	case shader.OpTypeVector:
		if len(operands) != 3 {
			rest(0, lit)
			break
		}
		id(operands[0])
		id(operands[1])
		lit(operands[2])
	case shader.OpConstant:
		if len(operands) < 2 {
			rest(0, lit)
			break
		}
		id(operands[0])
		id(operands[1])
		rest(2, func(v uint32) { fmt.Fprintf(&b, " 0x%08x", v) })
	case shader.OpVectorShuffle:
		if len(operands) < 4 {
			rest(0, id)
			break
		}
		for _, v := range operands[:4] {
			id(v)
		}
		rest(4, lit)
	default:
		rest(0, id)
	}
	return b.String()
}
