// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package jit compiles shader modules into straight-line Go closures.
//
// Compilation resolves every Input and Output address, lays out a fixed
// frame of 32-bit slots and folds arithmetic on constants, so Execute
// only moves words and runs the shared arithmetic kernels. Modules that
// use anything outside that subset fail to compile with an
// *shader.UnsupportedOpcodeError, which lets shader.NewExecutor fall back
// to the interpreter.
//
// Importing the package registers it as the "jit" backend:
//
//	import _ "github.com/gogpu/termgpu/shader/jit"
package jit

import (
	"slices"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/internal/cache"
	"github.com/gogpu/termgpu/internal/logx"
	"github.com/gogpu/termgpu/shader"
)

// programCacheSize bounds the number of compiled modules kept alive.
const programCacheSize = 256

var programs = cache.New[uint64, *program](programCacheSize)

func init() {
	shader.RegisterBackend(shader.BackendJIT, func() shader.Backend { return Backend{} })
}

// Backend compiles modules into Executors.
type Backend struct{}

// Name implements shader.Backend.
func (Backend) Name() string { return shader.BackendJIT }

// Compile implements shader.Backend.
func (Backend) Compile(m *shader.Module) (shader.Executor, error) {
	return New(m)
}

// Executor runs a compiled module.
//
// Executor is safe for concurrent use.
type Executor struct {
	module *shader.Module
	prog   *program
}

// New compiles m, reusing an earlier compilation of identical bytecode.
func New(m *shader.Module) (*Executor, error) {
	hash := m.Hash()
	compiled := false
	p, err := programs.GetOrCreate(hash, func() (*program, error) {
		compiled = true
		return compile(m)
	})
	if err != nil {
		return nil, err
	}
	if compiled {
		s := programs.Stats()
		logx.Logger().Debug("jit: program cache",
			"len", s.Len, "hits", s.Hits, "misses", s.Misses, "evictions", s.Evictions)
	}
	if !slices.Equal(p.words, m.Words()) {
		// Hash collision: compile privately.
		if p, err = compile(m); err != nil {
			return nil, err
		}
	}
	return &Executor{module: m, prog: p}, nil
}

// Stage implements shader.Executor.
func (e *Executor) Stage() gputypes.ShaderStage { return e.prog.info.Stage }

// Inputs implements shader.Executor.
func (e *Executor) Inputs() *shader.IOMappings { return e.prog.info.Inputs }

// Outputs implements shader.Executor.
func (e *Executor) Outputs() *shader.IOMappings { return e.prog.info.Outputs }

// Module implements shader.Executor.
func (e *Executor) Module() *shader.Module { return e.module }

// Execute implements shader.Executor. Compiled programs never touch
// attachments.
func (e *Executor) Execute(_ *shader.Attachments, input, output []byte) error {
	p := e.prog
	if uint32(len(input)) < p.info.Inputs.Size {
		return shader.BindingErrorf(0, "input window is %d bytes, interface needs %d", len(input), p.info.Inputs.Size)
	}
	if uint32(len(output)) < p.info.Outputs.Size {
		return shader.BindingErrorf(0, "output window is %d bytes, interface needs %d", len(output), p.info.Outputs.Size)
	}

	f := p.frames.Get().(*frame)
	defer p.frames.Put(f)
	copy(f.words, p.template)
	f.in, f.out = input, output
	defer func() { f.in, f.out = nil, nil }()

	for _, s := range p.steps {
		if err := s(f); err != nil {
			return err
		}
	}
	return nil
}

// frame is the per-invocation slot array of a program.
type frame struct {
	words   []uint32
	in, out []byte
}

type step func(f *frame) error

// program is the compiled, shareable form of a module.
type program struct {
	words    []uint32
	info     *shader.Info
	steps    []step
	template []uint32 // initial frame, constants pre-filled
	frames   sync.Pool
}

func newProgram(m *shader.Module, info *shader.Info, steps []step, template []uint32) *program {
	p := &program{words: m.Words(), info: info, steps: steps, template: template}
	n := len(template)
	p.frames.New = func() any { return &frame{words: make([]uint32, n)} }
	logx.Logger().Debug("jit: compiled module",
		"hash", m.Hash(), "steps", len(steps), "slots", n)
	return p
}
