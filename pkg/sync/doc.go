// ABOUTME: Clock primitives package
// ABOUTME: Monotonic and frame-loop time sources plus offset calibration
// Package sync provides the clock primitives the timing authority is built on.
//
// A MonotonicClock is safe to read from any goroutine, including an audio
// callback. A GameClock is the frame loop's own time base. A Calibrator
// measures the offset between the two once per frame so readings taken on the
// audio thread can be compared with frame-loop time.
//
// Example:
//
//	mono := sync.NewMonotonicClock()
//	game := sync.NewGameClock(0)
//	cal := sync.NewCalibrator(mono, game)
//
//	// once per frame
//	game.BeginFrame()
//	cal.Refresh()
//
//	// on the audio thread
//	stamp := cal.Translate(mono.Now())
package sync
