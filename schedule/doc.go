// Package schedule serializes the runs of one resource graph.
//
// Every run, whether triggered by data arriving on a Pipe or by a Timer
// tick, goes through a single Queue and executes to completion before the
// next one starts. Runs therefore never race on the images, buffers and
// action lists they share.
//
// Pipe.Send waits for its run and returns the run's error. Timers do not
// wait; with tick coalescing enabled a tick that arrives while the
// previous tick of the same timer is still queued or running is dropped.
// Stopping a timer prevents future ticks but never interrupts a run.
//
//	s := schedule.New(schedule.Options{CoalesceTicks: true})
//	blink, err := s.Every("blink", 500*time.Millisecond, redraw)
//	input := s.Pipe("input", onInput)
//	go s.Run(ctx)
//	err := input.Send(ctx, payload)
package schedule
