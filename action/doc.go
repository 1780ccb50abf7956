// Package action holds the side effects a pipe or timer performs: clearing
// images, drawing, dispatching compute shaders, copying data, running
// fixed-function stages, triggering other lists and presenting frames.
//
// # Lists
//
// A List is an ordered sequence of Action values. Writers mutate it under
// a single-writer lock and every mutation bumps a generation counter.
// Runs execute a Snapshot, so a run never observes a half-rebuilt list:
//
//	list := action.NewList("frame")
//	list.Rebuild(func(b *action.Builder) {
//	    b.Add(action.Clear{Image: fb.Character, Texel: resource.RuneTexel(' ')})
//	    b.Add(action.Draw{Pipeline: rp, FrameBuffer: fb, VertexCount: 2, InstanceCount: 1})
//	    b.Add(action.Present{FrameBuffer: fb})
//	})
//
// # Runs
//
// A Runner executes a list against a fresh State. Actions run strictly in
// order. The first failing action aborts the run and is reported as an
// *Error carrying its index and type. Nothing is rolled back.
//
// Vertex buffer bindings and push constants live in the State and are
// forgotten when the run ends. TriggerActionList runs another list inline
// against the same State, up to Runner.MaxDepth levels deep.
package action
