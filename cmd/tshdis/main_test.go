package main

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/resource"
	"github.com/gogpu/termgpu/shader"
)

func TestDisassemble(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	x := b.AddLoad(b.AddInputBuiltin(shader.BuiltinPositionX))
	b.AddStore(b.AddOutput(i32, 0), b.AddBinary(shader.OpAdd, x, b.AddConstantInt(1)))
	b.AddImage(resource.FormatT32SInt, 2)

	var out bytes.Buffer
	if err := disassemble(&out, b.Words()); err != nil {
		t.Fatalf("disassemble() = %v", err)
	}
	text := out.String()
	for _, pattern := range []string{
		`(?m)^\s+0: EntryPoint Fragment( %\d+)+$`,
		`Decorate %\d+ BuiltIn PositionX\n`,
		`Decorate %\d+ Location 0\n`,
		`Decorate %\d+ Binding 2\n`,
		`TypePointer %\d+ Output %\d+\n`,
		`TypeImage %\d+ T32_SInt\n`,
		`Constant %\d+ %\d+ 0x00000001\n`,
		`Add %\d+ %\d+ %\d+ %\d+\n`,
		`Return\n$`,
	} {
		if !regexp.MustCompile(pattern).MatchString(text) {
			t.Errorf("output does not match %q:\n%s", pattern, text)
		}
	}
}

func TestDisassembleTruncated(t *testing.T) {
	words := []uint32{shader.Header(shader.OpReturn, 1), shader.Header(shader.OpLoad, 4), 1}
	var out bytes.Buffer
	err := disassemble(&out, words)
	var derr *shader.DecodeError
	if !errors.As(err, &derr) || derr.Offset != 1 {
		t.Errorf("disassemble() = %v, want DecodeError at offset 1", err)
	}
	if !strings.Contains(out.String(), "0: Return") {
		t.Errorf("instructions before the error not listed:\n%s", out.String())
	}
}

func TestFormatOperands(t *testing.T) {
	tests := []struct {
		op       shader.OpCode
		operands []uint32
		want     string
	}{
		{shader.OpTypeVector, []uint32{4, 2, 3}, "TypeVector %4 %2 3"},
		{shader.OpVectorShuffle, []uint32{5, 6, 7, 7, 0, 1}, "VectorShuffle %5 %6 %7 %7 0 1"},
		{shader.OpDecorate, []uint32{9}, "Decorate 9"},
		{shader.OpReturn, nil, "Return"},
	}
	for _, tt := range tests {
		if got := format(tt.op, tt.operands); got != tt.want {
			t.Errorf("format(%s, %v) = %q, want %q", tt.op, tt.operands, got, tt.want)
		}
	}
}
