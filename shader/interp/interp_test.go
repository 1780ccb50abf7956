// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interp

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/resource"
	"github.com/gogpu/termgpu/shader"
)

func mustInterp(t *testing.T, b *shader.ModuleBuilder) *Interpreter {
	t.Helper()
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	in, err := New(m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return in
}

func putInts(vals ...int32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(v))
	}
	return b
}

func intAt(b []byte, off int) int32 { return int32(binary.LittleEndian.Uint32(b[off:])) }

func floatAt(b []byte, off int) float32 { return math32.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }

func TestBackendRegistered(t *testing.T) {
	if !shader.HasBackend(shader.BackendInterpreter) {
		t.Fatal("interpreter backend not registered")
	}
}

func TestGatherFromCharacterImage(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	px := b.AddInputBuiltin(shader.BuiltinPositionX)
	py := b.AddInputBuiltin(shader.BuiltinPositionY)
	img := b.AddImage(resource.FormatT32SInt, 0)
	out := b.AddOutput(i32, 0)
	coord := b.AddCompositeConstruct(b.AddTypeVector(i32, 2), b.AddLoad(px), b.AddLoad(py))
	b.AddStore(out, b.AddGather(b.AddLoad(img), coord))
	in := mustInterp(t, b)

	chars := resource.MustImage(resource.FormatT32SInt, gputypes.NewExtent2D(20, 10))
	if err := chars.SetRune(5, 9, 753); err != nil {
		t.Fatal(err)
	}
	att := &shader.Attachments{Images: []*resource.Image{chars}}
	output := make([]byte, 4)
	if err := in.Execute(att, putInts(5, 9), output); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := intAt(output, 0); got != 753 {
		t.Errorf("gathered %d, want 753", got)
	}

	err := in.Execute(att, putInts(20, 0), output)
	if !errors.Is(err, shader.ErrBinding) {
		t.Errorf("out of bounds gather: err = %v, want ErrBinding", err)
	}
	err = in.Execute(&shader.Attachments{}, putInts(0, 0), output)
	if !errors.Is(err, shader.ErrBinding) {
		t.Errorf("unbound image: err = %v, want ErrBinding", err)
	}
	colors := resource.MustImage(resource.FormatR32G32B32SFloat, gputypes.NewExtent2D(20, 10))
	err = in.Execute(&shader.Attachments{Images: []*resource.Image{colors}}, putInts(0, 0), output)
	if !errors.Is(err, resource.ErrFormatMismatch) {
		t.Errorf("wrong format: err = %v, want ErrFormatMismatch", err)
	}
}

func TestAccessChainIntoTextelStruct(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	vec3 := b.AddTypeVector(b.AddTypeFloat(), 3)
	out := b.AddOutput(b.AddTypeStruct(i32, vec3, vec3), 0)
	b.AddStore(b.AddAccessChainConst(out, 1), b.AddConstantVector(0.25, 0.5, 1))
	in := mustInterp(t, b)

	if in.Outputs().Size != 28 {
		t.Fatalf("output size = %d, want 28", in.Outputs().Size)
	}
	output := make([]byte, 28)
	for i := range output {
		output[i] = 0xAA
	}
	if err := in.Execute(nil, nil, output); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []float32{0.25, 0.5, 1}
	for i, w := range want {
		if got := floatAt(output, 4+4*i); got != w {
			t.Errorf("fg[%d] = %v, want %v", i, got, w)
		}
	}
	for _, i := range []int{0, 3, 16, 27} {
		if output[i] != 0xAA {
			t.Errorf("byte %d overwritten", i)
		}
	}
}

func TestConditionalSelectsTrueOnZero(t *testing.T) {
	tests := []struct {
		name string
		cond int32
		want int32
	}{
		{"zero", 0, 11},
		{"one", 1, 22},
		{"negative", -1, 22},
	}
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	c := b.AddLoad(b.AddInput(i32, 0))
	b.AddStore(b.AddOutput(i32, 0), b.AddConditional(c, b.AddConstantInt(11), b.AddConstantInt(22)))
	in := mustInterp(t, b)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := make([]byte, 4)
			if err := in.Execute(nil, putInts(tt.cond), output); err != nil {
				t.Fatal(err)
			}
			if got := intAt(output, 0); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComparisonFeedsConditional(t *testing.T) {
	// Equals yields 1 when equal, so the false branch is taken.
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	x := b.AddLoad(b.AddInput(i32, 0))
	eq := b.AddBinary(shader.OpEquals, x, b.AddConstantInt(3))
	b.AddStore(b.AddOutput(i32, 0), b.AddConditional(eq, b.AddConstantInt(100), b.AddConstantInt(200)))
	in := mustInterp(t, b)

	output := make([]byte, 4)
	for _, c := range []struct{ in, want int32 }{{3, 200}, {4, 100}} {
		if err := in.Execute(nil, putInts(c.in), output); err != nil {
			t.Fatal(err)
		}
		if got := intAt(output, 0); got != c.want {
			t.Errorf("x=%d: got %d, want %d", c.in, got, c.want)
		}
	}
}

func TestUniformAndPushConstantReads(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	buf := b.AddUniformConstant(b.AddTypeRuntimeArray(i32), 1)
	pc := b.AddPushConstant(b.AddTypeStruct(i32, i32))
	idx := b.AddLoad(b.AddAccessChainConst(pc, 1))
	elem := b.AddLoad(b.AddAccessChain(buf, idx))
	b.AddStore(b.AddOutput(i32, 0), b.AddBinary(shader.OpAdd, elem, b.AddLoad(b.AddAccessChainConst(pc, 0))))
	in := mustInterp(t, b)

	att := &shader.Attachments{
		Buffers:       [][]byte{nil, putInts(10, 20, 30)},
		PushConstants: putInts(1000, 2),
	}
	output := make([]byte, 4)
	if err := in.Execute(att, nil, output); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := intAt(output, 0); got != 1030 {
		t.Errorf("got %d, want 1030", got)
	}

	att.PushConstants = putInts(0, 3)
	if err := in.Execute(att, nil, output); !errors.Is(err, shader.ErrBinding) {
		t.Errorf("index past buffer end: err = %v, want ErrBinding", err)
	}
	att.Buffers = nil
	if err := in.Execute(att, nil, output); !errors.Is(err, shader.ErrBinding) {
		t.Errorf("missing buffer: err = %v, want ErrBinding", err)
	}
}

func TestUniformStoreIsVisible(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageCompute)
	i32 := b.AddTypeInt()
	buf := b.AddUniform(b.AddTypeRuntimeArray(i32), 0)
	p := b.AddAccessChainConst(buf, 2)
	b.AddStore(p, b.AddBinary(shader.OpMultiply, b.AddLoad(p), b.AddConstantInt(-3)))
	in := mustInterp(t, b)

	data := putInts(1, 2, 7)
	if err := in.Execute(&shader.Attachments{Buffers: [][]byte{data}}, nil, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := intAt(data, 8); got != -21 {
		t.Errorf("buffer[2] = %d, want -21", got)
	}
}

func TestReadOnlyStores(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *shader.ModuleBuilder) uint32
	}{
		{"input", func(b *shader.ModuleBuilder) uint32 { return b.AddInput(b.AddTypeInt(), 0) }},
		{"uniform constant", func(b *shader.ModuleBuilder) uint32 { return b.AddUniformConstant(b.AddTypeInt(), 0) }},
		{"push constant", func(b *shader.ModuleBuilder) uint32 { return b.AddPushConstant(b.AddTypeInt()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
			p := tt.build(b)
			b.AddStore(p, b.AddConstantInt(1))
			in := mustInterp(t, b)
			att := &shader.Attachments{Buffers: [][]byte{make([]byte, 4)}, PushConstants: make([]byte, 4)}
			err := in.Execute(att, make([]byte, 4), nil)
			if !errors.Is(err, shader.ErrBinding) {
				t.Errorf("err = %v, want ErrBinding", err)
			}
		})
	}
}

func TestFunctionVariablesStartZeroed(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	local := b.AddLocal(i32)
	out := b.AddOutput(i32, 0)
	b.AddStore(out, b.AddLoad(local))
	b.AddStore(local, b.AddConstantInt(9))
	in := mustInterp(t, b)

	for range 3 {
		output := make([]byte, 4)
		if err := in.Execute(nil, nil, output); err != nil {
			t.Fatal(err)
		}
		if got := intAt(output, 0); got != 0 {
			t.Fatalf("local leaked across invocations: %d", got)
		}
	}
}

func TestArithmeticAndConversions(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	f32 := b.AddTypeFloat()
	i32 := b.AddTypeInt()
	x := b.AddLoad(b.AddInput(f32, 0))
	scaled := b.AddBinary(shader.OpMultiply, x, b.AddConstantFloat(2.5))
	neg := b.AddUnary(shader.OpNegate, scaled)
	b.AddStore(b.AddOutput(i32, 0), b.AddUnary(shader.OpFloatToInt, neg))
	b.AddStore(b.AddOutput(f32, 1), b.AddUnary(shader.OpAbs, neg))
	in := mustInterp(t, b)

	input := make([]byte, 4)
	binary.LittleEndian.PutUint32(input, math32.Float32bits(3))
	output := make([]byte, 8)
	if err := in.Execute(nil, input, output); err != nil {
		t.Fatal(err)
	}
	if got := intAt(output, 0); got != -7 {
		t.Errorf("FloatToInt(-7.5) = %d, want -7", got)
	}
	if got := floatAt(output, 4); got != 7.5 {
		t.Errorf("Abs(-7.5) = %v, want 7.5", got)
	}
}

func TestVectorShuffle(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	vec3 := b.AddTypeVector(b.AddTypeFloat(), 3)
	a := b.AddConstantVector(1, 2, 3)
	c := b.AddConstantVector(4, 5, 6)
	b.AddStore(b.AddOutput(vec3, 0), b.AddVectorShuffle(a, c, 5, 0, 3))
	b.AddStore(b.AddOutput(b.AddTypeFloat(), 1), b.AddVectorShuffle(a, c, 1))
	in := mustInterp(t, b)

	output := make([]byte, 16)
	if err := in.Execute(nil, nil, output); err != nil {
		t.Fatal(err)
	}
	want := []float32{6, 1, 4, 2}
	for i, w := range want {
		if got := floatAt(output, 4*i); got != w {
			t.Errorf("component %d = %v, want %v", i, got, w)
		}
	}
}

func TestIntegerDivideByZero(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	x := b.AddLoad(b.AddInput(i32, 0))
	b.AddStore(b.AddOutput(i32, 0), b.AddBinary(shader.OpDivide, b.AddConstantInt(10), x))
	in := mustInterp(t, b)

	output := make([]byte, 4)
	if err := in.Execute(nil, putInts(0), output); !errors.Is(err, shader.ErrDivideByZero) {
		t.Errorf("err = %v, want ErrDivideByZero", err)
	}
	if err := in.Execute(nil, putInts(-3), output); err != nil || intAt(output, 0) != -3 {
		t.Errorf("10 / -3 = %d, %v; want -3", intAt(output, 0), err)
	}
}

func TestTypeMismatchRejected(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	f32 := b.AddTypeFloat()
	out := b.AddOutput(i32, 0)
	one := b.AddConstantInt(1)
	half := b.AddConstant(f32, math32.Float32bits(0.5))
	// Hand-written Add of an int and a float, which the builder would not infer.
	sum := b.AllocID()
	var w shader.Writer
	w.WriteBinary(shader.OpAdd, i32, sum, one, half)
	w.WriteStore(out, sum)
	w.WriteReturn()
	words := b.Words()
	words = append(words[:len(words)-1], w.Words()...)

	m, err := shader.NewModuleWords(words)
	if err != nil {
		t.Fatalf("NewModuleWords: %v", err)
	}
	in, err := New(m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := in.Execute(nil, nil, make([]byte, 4)); !errors.Is(err, shader.ErrType) {
		t.Errorf("err = %v, want ErrType", err)
	}
}

func TestShortWindowsRejected(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	b.AddStore(b.AddOutput(i32, 0), b.AddLoad(b.AddInput(i32, 0)))
	in := mustInterp(t, b)

	if err := in.Execute(nil, nil, make([]byte, 4)); !errors.Is(err, shader.ErrBinding) {
		t.Errorf("short input: err = %v", err)
	}
	if err := in.Execute(nil, make([]byte, 4), nil); !errors.Is(err, shader.ErrBinding) {
		t.Errorf("short output: err = %v", err)
	}
}

func TestMissingBindingDecoration(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	buf := b.AddVariable(shader.StorageUniformConstant, i32)
	b.AddStore(b.AddOutput(i32, 0), b.AddLoad(buf))
	in := mustInterp(t, b)

	err := in.Execute(&shader.Attachments{Buffers: [][]byte{make([]byte, 4)}}, nil, make([]byte, 4))
	var be *shader.BindingError
	if !errors.As(err, &be) || be.ID != buf {
		t.Errorf("err = %v, want BindingError for %%%d", err, buf)
	}
}
