// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package interp is the reference shader engine. It walks the instruction
// stream of a module once per invocation and checks every operand type.
//
// Importing the package registers it as the "interpreter" backend:
//
//	import _ "github.com/gogpu/termgpu/shader/interp"
package interp

import (
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/shader"
)

// WorkingSetSize is the size of the arena backing one invocation.
const WorkingSetSize = shader.WorkingSetSize

func init() {
	shader.RegisterBackend(shader.BackendInterpreter, func() shader.Backend { return Backend{} })
}

// Backend compiles modules into Interpreters.
type Backend struct{}

// Name implements shader.Backend.
func (Backend) Name() string { return shader.BackendInterpreter }

// Compile implements shader.Backend. The interpreter accepts every module
// that analyzes.
func (Backend) Compile(m *shader.Module) (shader.Executor, error) {
	return New(m)
}

// Interpreter executes a module by walking its bytecode.
//
// Interpreter is safe for concurrent use.
type Interpreter struct {
	module *shader.Module
	info   *shader.Info
	pool   sync.Pool
}

// New prepares m for interpretation.
func New(m *shader.Module) (*Interpreter, error) {
	info, err := m.Analyze()
	if err != nil {
		return nil, err
	}
	in := &Interpreter{module: m, info: info}
	in.pool.New = func() any { return newInvocation(info) }
	return in, nil
}

// Stage implements shader.Executor.
func (in *Interpreter) Stage() gputypes.ShaderStage { return in.info.Stage }

// Inputs implements shader.Executor.
func (in *Interpreter) Inputs() *shader.IOMappings { return in.info.Inputs }

// Outputs implements shader.Executor.
func (in *Interpreter) Outputs() *shader.IOMappings { return in.info.Outputs }

// Module implements shader.Executor.
func (in *Interpreter) Module() *shader.Module { return in.module }

// Execute implements shader.Executor.
func (in *Interpreter) Execute(att *shader.Attachments, input, output []byte) error {
	if uint32(len(input)) < in.info.Inputs.Size {
		return shader.BindingErrorf(0, "input window is %d bytes, interface needs %d", len(input), in.info.Inputs.Size)
	}
	if uint32(len(output)) < in.info.Outputs.Size {
		return shader.BindingErrorf(0, "output window is %d bytes, interface needs %d", len(output), in.info.Outputs.Size)
	}
	if att == nil {
		att = &shader.Attachments{}
	}

	inv := in.pool.Get().(*invocation)
	defer in.pool.Put(inv)
	inv.reset(att, input, output)
	return inv.run(in.module.Reader())
}
