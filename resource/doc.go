// Package resource holds the mutable memory objects shaders and actions
// operate on: texel images, byte buffers and the three-plane framebuffer.
//
// # Images
//
// An Image is a w*h*d grid of texels stored row-major in a little-endian
// byte slice. Two formats exist:
//
//   - FormatT32SInt: one 32-bit Unicode scalar per texel (character plane)
//   - FormatR32G32B32SFloat: three 32-bit floats R, G, B (colour planes)
//
// Resize reallocates the backing store and discards previous contents.
//
// # FrameBuffer
//
// A FrameBuffer groups a Character, a Foreground and a Background image of
// identical size, all addressed by the same (x + y*width) index.
//
// # Pool
//
// Pool hands out typed references (ImageRef, BufferRef) so that callers
// can name resources by integer handle, the way a session layer would.
//
// Images, buffers and framebuffers are not safe for concurrent mutation.
// Serialize access through a single run queue per resource graph.
package resource
