// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/termgpu/internal/logx"
)

// Executor runs one compiled shader.
//
// Execute performs a single invocation: it reads input (laid out by
// Inputs), writes output (laid out by Outputs) and may read or write the
// attachments. input and output must be at least Inputs().Size and
// Outputs().Size bytes. Output bytes the shader does not store keep their
// previous contents.
//
// Implementations are safe for concurrent use; each Execute call owns its
// scratch state.
type Executor interface {
	Execute(att *Attachments, input, output []byte) error
	Stage() gputypes.ShaderStage
	Inputs() *IOMappings
	Outputs() *IOMappings
	Module() *Module
}

// Backend compiles modules into executors.
type Backend interface {
	// Name returns the registry name of the backend.
	Name() string
	// Compile prepares m for execution. Backends that cannot handle an
	// instruction return an error matching ErrUnsupportedOpcode.
	Compile(m *Module) (Executor, error)
}

// Backend names registered by the sub-packages.
const (
	BackendJIT         = "jit"
	BackendInterpreter = "interpreter"
)

// DefaultBackendPriority is the order NewExecutor tries backends in.
var DefaultBackendPriority = []string{BackendJIT, BackendInterpreter}

var backends = gpucontext.NewRegistry[Backend](gpucontext.WithPriority(DefaultBackendPriority...))

// RegisterBackend makes a backend available by name.
// It is typically called from init() in the backend package:
//
//	func init() {
//	    shader.RegisterBackend(shader.BackendInterpreter, func() shader.Backend {
//	        return Backend{}
//	    })
//	}
//
// RegisterBackend panics if factory is nil.
func RegisterBackend(name string, factory func() Backend) {
	if factory == nil {
		panic("shader: RegisterBackend factory is nil")
	}
	backends.Register(name, factory)
}

// UnregisterBackend removes a backend. Primarily useful in tests.
func UnregisterBackend(name string) {
	backends.Unregister(name)
}

// HasBackend reports whether a backend is registered under name.
func HasBackend(name string) bool {
	return backends.Has(name)
}

// Backends returns the names of all registered backends.
func Backends() []string {
	return backends.Available()
}

// NewExecutor compiles m with the highest-priority backend that accepts it.
// A backend that rejects the module with ErrUnsupportedOpcode is skipped;
// any other compile error is returned.
func NewExecutor(m *Module) (Executor, error) {
	return NewExecutorWith(m, DefaultBackendPriority...)
}

// NewExecutorWith is like NewExecutor with an explicit backend order.
// Unregistered names are ignored.
func NewExecutorWith(m *Module, priority ...string) (Executor, error) {
	if _, err := m.Analyze(); err != nil {
		return nil, err
	}
	var unsupported error
	for _, name := range priority {
		if !backends.Has(name) {
			continue
		}
		b := backends.Get(name)
		exec, err := b.Compile(m)
		if err == nil {
			logx.Logger().Debug("shader: compiled module",
				"backend", name, "stage", m.Stage(), "words", len(m.Words()))
			return exec, nil
		}
		if !errors.Is(err, ErrUnsupportedOpcode) {
			return nil, fmt.Errorf("shader: %s backend: %w", name, err)
		}
		logx.Logger().Debug("shader: backend fell back", "backend", name, "reason", err)
		unsupported = err
	}
	if unsupported != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoBackend, unsupported)
	}
	return nil, fmt.Errorf("%w (forgotten import of shader/interp?)", ErrNoBackend)
}
