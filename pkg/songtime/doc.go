// ABOUTME: Song time authority package
// ABOUTME: Keeps a frame-loop song clock locked to buffer-clocked audio playback
// Package songtime provides the timing authority for rhythm games.
//
// Audio runs on a device callback goroutine with its own buffer clock; game
// logic runs on a frame loop. The Authority schedules playback on a future
// buffer boundary, records the instant audio actually began, measures how
// stale the frame loop is through a one-shot latency ping from the audio
// goroutine, and catches the song time up at a fixed multiplier after a
// frame-loop stall instead of jumping it.
//
// The frame loop owns Play, Pause, Update and CurrentTime. OnAudioBuffer is
// installed as the device callback. The two sides share only single-writer
// atomics; no locks are taken on either path.
//
// Example:
//
//	auth := songtime.New(device, mono, game, songtime.Config{})
//	auth.Play()
//
//	for range frames {
//	    game.BeginFrame()
//	    auth.Update()
//	    t := auth.CurrentTime()
//	}
package songtime
