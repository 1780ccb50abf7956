// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jit

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/termgpu/resource"
	"github.com/gogpu/termgpu/shader"
	"github.com/gogpu/termgpu/shader/interp"
)

func floats(vals ...float32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[4*i:], math32.Float32bits(v))
	}
	return b
}

func ints(vals ...int32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(v))
	}
	return b
}

// textelShader writes a character derived from the cell position and a
// scaled foreground color into a textel struct.
func textelShader(t *testing.T) *shader.Module {
	t.Helper()
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	f32 := b.AddTypeFloat()
	vec3 := b.AddTypeVector(f32, 3)
	px := b.AddLoad(b.AddInputBuiltin(shader.BuiltinPositionX))
	py := b.AddLoad(b.AddInputBuiltin(shader.BuiltinPositionY))
	timer := b.AddLoad(b.AddInputBuiltin(shader.BuiltinTimer))
	color := b.AddLoad(b.AddInput(vec3, 0))
	out := b.AddOutput(b.AddTypeStruct(i32, vec3, vec3), 0)

	ch := b.AddBinary(shader.OpAdd, b.AddConstantInt('A'), b.AddBinary(shader.OpMod, b.AddBinary(shader.OpAdd, px, py), b.AddConstantInt(26)))
	b.AddStore(b.AddAccessChainConst(out, 0), ch)
	b.AddStore(b.AddAccessChainConst(out, 1), color)

	red := b.AddLoad(b.AddAccessChainConst(b.AddInput(vec3, 1), 0))
	bg := b.AddCompositeConstruct(vec3,
		b.AddUnary(shader.OpAbs, b.AddBinary(shader.OpSubtract, red, timer)),
		b.AddBinary(shader.OpDivide, timer, b.AddConstantFloat(3)),
		b.AddUnary(shader.OpNegate, b.AddConstantFloat(0.5)))
	b.AddStore(b.AddAccessChainConst(out, 2), bg)
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

// word describes how a random input word is drawn.
type word uint8

const (
	intWord word = iota
	floatWord
)

var (
	specialInts   = []int32{0, 1, -1, 2, -3, 7, math.MinInt32, math.MaxInt32}
	specialFloats = []float32{0, math32.Float32frombits(1 << 31), 1, -1.5, 0.25, math32.Inf(1), math32.Inf(-1), math32.NaN(), math.MaxFloat32}
)

func randomInput(rng *rand.Rand, layout []word) []byte {
	b := make([]byte, 4*len(layout))
	for i, w := range layout {
		var v uint32
		switch {
		case w == intWord && rng.IntN(2) == 0:
			v = uint32(specialInts[rng.IntN(len(specialInts))])
		case w == intWord:
			v = uint32(rng.Int32N(2001) - 1000)
		case rng.IntN(2) == 0:
			v = math32.Float32bits(specialFloats[rng.IntN(len(specialFloats))])
		default:
			v = math32.Float32bits(rng.Float32()*200 - 100)
		}
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return b
}

// errClass maps an execution error to its sentinel so both engines can
// be compared without matching messages.
func errClass(err error) error {
	for _, class := range []error{shader.ErrDivideByZero, shader.ErrBinding, shader.ErrType, shader.ErrWorkingSetFull, shader.ErrDecode} {
		if errors.Is(err, class) {
			return class
		}
	}
	return err
}

// arithShader stores every arithmetic result of two runtime operands.
func arithShader(float bool) func(t *testing.T) *shader.Module {
	return func(t *testing.T) *shader.Module {
		b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
		typ := b.AddTypeInt()
		if float {
			typ = b.AddTypeFloat()
		}
		x := b.AddLoad(b.AddInput(typ, 0))
		y := b.AddLoad(b.AddInput(typ, 1))
		// Outputs are declared up front so a failing division leaves the
		// earlier stores in place on both engines.
		ops := []shader.OpCode{shader.OpAdd, shader.OpSubtract, shader.OpMultiply, shader.OpDivide, shader.OpMod}
		outs := make([]uint32, len(ops)+1)
		for i := range outs {
			outs[i] = b.AddOutput(typ, uint32(i))
		}
		for i, op := range ops {
			b.AddStore(outs[i], b.AddBinary(op, x, y))
		}
		b.AddStore(outs[len(ops)], b.AddUnary(shader.OpNegate, b.AddBinary(shader.OpMod, y, x)))
		return b.MustBuild()
	}
}

// outputLoadShader reads back what it stored.
func outputLoadShader(t *testing.T) *shader.Module {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	first := b.AddOutput(i32, 0)
	second := b.AddOutput(i32, 1)
	b.AddStore(first, b.AddLoad(b.AddInput(i32, 0)))
	x := b.AddLoad(first)
	b.AddStore(second, b.AddBinary(shader.OpMultiply, x, x))
	b.AddStore(first, b.AddBinary(shader.OpSubtract, b.AddLoad(second), x))
	return b.MustBuild()
}

// swizzleShader reverses an input vector through access chains.
func swizzleShader(t *testing.T) *shader.Module {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	f32 := b.AddTypeFloat()
	vec3 := b.AddTypeVector(f32, 3)
	in := b.AddInput(vec3, 0)
	out := b.AddOutput(vec3, 0)
	for i := range int32(3) {
		b.AddStore(b.AddAccessChainConst(out, 2-i), b.AddLoad(b.AddAccessChainConst(in, i)))
	}
	sum := b.AddBinary(shader.OpAdd, b.AddLoad(b.AddAccessChainConst(in, 0)), b.AddLoad(b.AddAccessChainConst(out, 0)))
	b.AddStore(b.AddOutput(f32, 1), b.AddUnary(shader.OpAbs, sum))
	return b.MustBuild()
}

func TestMatchesInterpreter(t *testing.T) {
	tests := []struct {
		name   string
		build  func(t *testing.T) *shader.Module
		layout []word
	}{
		{"textel struct", textelShader, []word{intWord, intWord, floatWord, floatWord, floatWord, floatWord, floatWord, floatWord, floatWord}},
		{"int arithmetic", arithShader(false), []word{intWord, intWord}},
		{"float arithmetic", arithShader(true), []word{floatWord, floatWord}},
		{"output loads", outputLoadShader, []word{intWord}},
		{"vector access chains", swizzleShader, []word{floatWord, floatWord, floatWord}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.build(t)
			je, err := New(m)
			require.NoError(t, err)
			ie, err := interp.New(m)
			require.NoError(t, err)
			require.True(t, je.Inputs().Equal(ie.Inputs()))
			require.True(t, je.Outputs().Equal(ie.Outputs()))

			rng := rand.New(rand.NewPCG(1, uint64(len(tt.name))))
			size := ie.Outputs().Size
			for i := range 500 {
				in := randomInput(rng, tt.layout)
				want := make([]byte, size)
				got := make([]byte, size)
				werr := ie.Execute(nil, in, want)
				gerr := je.Execute(nil, in, got)
				require.Equal(t, errClass(werr), errClass(gerr), "run %d input %v", i, in)
				require.Equal(t, want, got, "run %d input %v", i, in)
			}
		})
	}
}

func TestIntOverflowMatchesInterpreter(t *testing.T) {
	m := arithShader(false)(t)
	je, err := New(m)
	require.NoError(t, err)
	ie, err := interp.New(m)
	require.NoError(t, err)

	for _, in := range [][2]int32{{math.MinInt32, -1}, {-7, 2}, {7, -2}, {math.MaxInt32, 2}} {
		want, got := make([]byte, 24), make([]byte, 24)
		require.NoError(t, ie.Execute(nil, ints(in[0], in[1]), want))
		require.NoError(t, je.Execute(nil, ints(in[0], in[1]), got))
		assert.Equal(t, want, got, "%d op %d", in[0], in[1])
	}

	out := make([]byte, 24)
	require.NoError(t, je.Execute(nil, ints(-7, 2), out))
	assert.Equal(t, int32(-3), int32(binary.LittleEndian.Uint32(out[12:])), "divide truncates")
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(out[16:])), "mod takes the dividend's sign")
}

func TestDivideByZeroMatchesInterpreter(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	out := b.AddOutput(i32, 0)
	b.AddStore(out, b.AddConstantInt(1))
	b.AddStore(out, b.AddBinary(shader.OpMod, b.AddLoad(b.AddInput(i32, 0)), b.AddConstantInt(0)))
	m := b.MustBuild()

	je, err := New(m)
	require.NoError(t, err)
	ie, err := interp.New(m)
	require.NoError(t, err)

	got, want := make([]byte, 4), make([]byte, 4)
	assert.ErrorIs(t, je.Execute(nil, ints(5), got), shader.ErrDivideByZero)
	assert.ErrorIs(t, ie.Execute(nil, ints(5), want), shader.ErrDivideByZero)
	assert.Equal(t, want, got, "stores before the failing instruction are kept")
}

func TestConstantDivideByZeroFailsAtExecute(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	b.AddStore(b.AddOutput(i32, 0), b.AddBinary(shader.OpDivide, b.AddConstantInt(1), b.AddConstantInt(0)))

	e, err := New(b.MustBuild())
	require.NoError(t, err)
	assert.ErrorIs(t, e.Execute(nil, nil, make([]byte, 4)), shader.ErrDivideByZero)
}

func TestConstantFolding(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	f32 := b.AddTypeFloat()
	x := b.AddBinary(shader.OpMultiply, b.AddConstantFloat(1.5), b.AddConstantFloat(4))
	y := b.AddUnary(shader.OpNegate, x)
	b.AddStore(b.AddOutput(f32, 0), b.AddBinary(shader.OpAdd, x, y))
	b.AddStore(b.AddOutput(b.AddTypeVector(f32, 3), 1), b.AddCompositeConstruct(b.AddTypeVector(f32, 3), x, y, x))

	e, err := New(b.MustBuild())
	require.NoError(t, err)
	assert.Len(t, e.prog.steps, 2, "only the stores remain")

	out := make([]byte, 16)
	require.NoError(t, e.Execute(nil, nil, out))
	assert.Equal(t, floats(0, 6, -6, 6), out)
}

func TestUnsupportedModules(t *testing.T) {
	tests := []struct {
		name  string
		op    shader.OpCode
		build func(b *shader.ModuleBuilder)
	}{
		{"image variable", shader.OpVariable, func(b *shader.ModuleBuilder) {
			img := b.AddLoad(b.AddImage(resource.FormatT32SInt, 0))
			coord := b.AddConstant(b.AddTypeVector(b.AddTypeInt(), 2), 0, 0)
			b.AddStore(b.AddOutput(b.AddTypeInt(), 0), b.AddGather(img, coord))
		}},
		{"function variable", shader.OpVariable, func(b *shader.ModuleBuilder) {
			b.AddLocal(b.AddTypeInt())
		}},
		{"comparison", shader.OpLessThan, func(b *shader.ModuleBuilder) {
			b.AddBinary(shader.OpLessThan, b.AddConstantInt(1), b.AddConstantInt(2))
		}},
		{"loaded pointer", shader.OpLoad, func(b *shader.ModuleBuilder) {
			loadedPointerShader(b)
		}},
		{"dynamic index", shader.OpAccessChain, func(b *shader.ModuleBuilder) {
			i32 := b.AddTypeInt()
			idx := b.AddLoad(b.AddInput(i32, 0))
			b.AddAccessChain(b.AddOutput(b.AddTypeVector(b.AddTypeFloat(), 3), 0), idx)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
			tt.build(b)
			m := b.MustBuild()

			_, err := New(m)
			require.ErrorIs(t, err, shader.ErrUnsupportedOpcode)
			var ue *shader.UnsupportedOpcodeError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, shader.BackendJIT, ue.Backend)
			assert.Equal(t, tt.op, ue.Op)

			exec, err := shader.NewExecutor(m)
			require.NoError(t, err)
			assert.IsType(t, &interp.Interpreter{}, exec)
		})
	}
}

// loadedPointerShader stores 7 through an Output pointer read from the
// Input window, so the destination is only known at run time.
func loadedPointerShader(b *shader.ModuleBuilder) {
	i32 := b.AddTypeInt()
	b.AddOutput(i32, 0)
	b.AddOutput(i32, 1)
	ptr := b.AddLoad(b.AddInput(b.AddTypePointer(shader.StorageOutput, i32), 0))
	b.AddStore(ptr, b.AddConstantInt(7))
}

func TestLoadedPointerRunsOnInterpreter(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	loadedPointerShader(b)
	m := b.MustBuild()

	exec, err := shader.NewExecutor(m)
	require.NoError(t, err)
	require.IsType(t, &interp.Interpreter{}, exec)

	out := make([]byte, 8)
	require.NoError(t, exec.Execute(nil, ints(4), out))
	assert.Equal(t, ints(0, 7), out, "the store lands where the loaded pointer points")
}

func TestNewExecutorPrefersJIT(t *testing.T) {
	exec, err := shader.NewExecutor(textelShader(t))
	require.NoError(t, err)
	assert.IsType(t, &Executor{}, exec)
}

func TestProgramsAreCached(t *testing.T) {
	m1 := textelShader(t)
	m2, err := shader.NewModuleWords(m1.Words())
	require.NoError(t, err)

	e1, err := New(m1)
	require.NoError(t, err)
	e2, err := New(m2)
	require.NoError(t, err)
	assert.Same(t, e1.prog, e2.prog)
	assert.Same(t, m2, e2.Module())
}

func TestStoreToInputFails(t *testing.T) {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	in := b.AddInput(i32, 0)
	b.AddStore(in, b.AddConstantInt(1))
	e, err := New(b.MustBuild())
	require.NoError(t, err)
	assert.ErrorIs(t, e.Execute(nil, make([]byte, 4), nil), shader.ErrBinding)
}

func TestConcurrentExecute(t *testing.T) {
	e, err := New(textelShader(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := append(ints(int32(g), 0), floats(0, 0, 0, 0, 0, 0, 0)...)
			out := make([]byte, 28)
			for range 100 {
				if err := e.Execute(nil, in, out); err != nil {
					t.Error(err)
					return
				}
				if ch := int32(binary.LittleEndian.Uint32(out)); ch != 'A'+int32(g) {
					t.Errorf("goroutine %d: char %d", g, ch)
					return
				}
			}
		}()
	}
	wg.Wait()
}
