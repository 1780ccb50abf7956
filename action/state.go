package action

import (
	"bytes"

	"github.com/gogpu/termgpu/pipeline"
)

// State is the scratch shared by the actions of one run, including lists
// triggered inline. It is never reused across runs.
type State struct {
	// VertexBuffers is indexed by binding number.
	VertexBuffers []pipeline.VertexBuffer
	// PushConstants are the bytes of the latest SetPushConstants. They
	// replace the push constants of later draws once set, even when empty.
	PushConstants []byte
	// Payload is the data that triggered the run; nil for timer runs.
	Payload []byte
	// Timer is the Timer builtin value for draws in this run.
	Timer float32
	// Stats accumulates the work of every draw in the run.
	Stats pipeline.DrawStats

	depth   int
	pushSet bool
}

// NewState returns the state for a run triggered by payload at timer.
func NewState(payload []byte, timer float32) *State {
	return &State{Payload: payload, Timer: timer}
}

// SetPushConstants stages a copy of data for the draws and dispatches
// that follow.
func (s *State) SetPushConstants(data []byte) {
	s.PushConstants = bytes.Clone(data)
	if s.PushConstants == nil {
		s.PushConstants = []byte{}
	}
	s.pushSet = true
}

// Depth returns the current TriggerActionList nesting level.
func (s *State) Depth() int { return s.depth }

// BindVertexBuffers splices bufs into the bound set at first. Bindings
// before first and after first+len(bufs) are kept. Slots skipped when
// first is past the end stay unbound.
func (s *State) BindVertexBuffers(first uint32, bufs []pipeline.VertexBuffer) {
	end := int(first) + len(bufs)
	if end > len(s.VertexBuffers) {
		grown := make([]pipeline.VertexBuffer, end)
		copy(grown, s.VertexBuffers)
		s.VertexBuffers = grown
	}
	copy(s.VertexBuffers[first:end], bufs)
}
