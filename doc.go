// Package termgpu renders text-mode user interfaces with GPU-style
// shaders executed in software.
//
// # Overview
//
// A terminal screen is a FrameBuffer of three planes: characters,
// foreground colours and background colours. Vertex and fragment shaders,
// written in a small SPIR-V-like bytecode, are rasterized into it by
// render pipelines. Compute shaders transform buffers. Action lists tie
// the steps together and run whenever data arrives on a pipe or a timer
// fires.
//
// # Quick Start
//
//	e, err := termgpu.New(termgpu.WithOutput(os.Stdout))
//	...
//	vs, _ := e.Compile(vertexModule)
//	fs, _ := e.Compile(fragmentModule)
//	rp, _ := pipeline.NewRenderPipeline(&pipeline.RenderPipelineDescriptor{Vertex: vs, Fragment: fs, ...})
//
//	list := action.NewList("frame")
//	list.Append(
//	    action.BindVertexBuffers{Buffers: []pipeline.VertexBuffer{{Buffer: quads}}},
//	    action.Draw{Pipeline: rp, FrameBuffer: fb, VertexCount: 2, InstanceCount: 1},
//	    action.Present{FrameBuffer: fb},
//	)
//	input := e.BindPipe("input", list)
//	go e.Run(ctx)
//	err = input.Send(ctx, keystrokes)
//
// # Packages
//
//   - shader: bytecode, types, interface analysis and the Executor contract
//   - shader/interp: the reference interpreter
//   - shader/jit: a compile-once closure backend for a subset of opcodes
//   - resource: images, buffers, framebuffers and handle pools
//   - pipeline: render and compute pipelines
//   - fixedfunc: built-in stages such as line-wrapping text
//   - action: action lists and their runner
//   - present: delta tracking and presenter backends
//   - schedule: the serial run queue, pipes and timers
//
// # Configuration
//
// Engines take functional options and a Config, which can be loaded from
// TOML with LoadConfig.
//
// # Logging
//
// termgpu is silent by default. SetLogger enables structured logging via
// log/slog for every package.
package termgpu
