// Package pipeline runs shader executors over terminal framebuffers.
//
// A RenderPipeline turns pairs of vertices into axis-aligned boxes of
// cells. The vertex shader places each corner through the PositionX and
// PositionY builtins; every covered cell then runs the fragment shader,
// whose outputs become the cell's character, foreground and background.
//
//	p, err := pipeline.NewRenderPipeline(&pipeline.RenderPipelineDescriptor{
//		Vertex:   vs,
//		Fragment: fs,
//		VertexBindings: map[uint32]pipeline.VertexBinding{
//			0: {Stride: 8, StepMode: gputypes.VertexStepModeVertex},
//		},
//		VertexAttributes: map[uint32]pipeline.VertexAttribute{
//			0: {Binding: 0, Type: shader.VectorOf(shader.Int(), 2)},
//		},
//		Viewport: pipeline.Viewport{Width: 80, Height: 24},
//	})
//	stats, err := p.Draw(fb, pipeline.DrawInput{VertexBuffers: vbs}, 2, 1)
//
// There is no depth test, blending or scissor clipping. Cells outside the
// viewport or the framebuffer are skipped.
//
// A ComputePipeline runs its shader exactly once per Dispatch.
package pipeline
