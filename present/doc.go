// Package present delivers framebuffers to their viewers.
//
// A Presenter receives the framebuffer of every Present action. Tracker
// computes which cells changed since the previous frame so presenters
// can send deltas instead of whole screens.
//
// Presenters are created by name from a registry, following the
// database/sql driver pattern:
//
//	p, err := present.New("ansi", present.Config{Output: os.Stdout, Profile: "truecolor"})
//
// Built-in backends:
//
//   - ansi: cursor addressing and colours on a terminal via termenv
//   - snapshot: renders cells with a bitmap font into an *image.RGBA
//   - discard: counts frames and drops them
package present
