package pipeline

import "errors"

var (
	// ErrInvalidDescriptor is returned when a pipeline descriptor fails
	// validation.
	ErrInvalidDescriptor = errors.New("pipeline: invalid descriptor")

	// ErrVertexBufferUnbound is returned when a draw fetches an attribute
	// from a binding with no buffer.
	ErrVertexBufferUnbound = errors.New("pipeline: vertex buffer not bound")

	// ErrNilFrameBuffer is returned by Draw without a target.
	ErrNilFrameBuffer = errors.New("pipeline: nil framebuffer")
)
