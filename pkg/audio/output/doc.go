// ABOUTME: Playback device package
// ABOUTME: Provides the Device interface with oto and simulated implementations
// Package output provides buffer-clocked playback devices.
//
// A Device reports a buffer clock that advances once per audio callback,
// accepts a scheduled start on that clock, and reports whether it is
// currently producing sound.
//
// Example:
//
//	dev := output.NewOto(output.OtoConfig{SampleRate: 48000, Channels: 2})
//	err := dev.Open()
//	err = dev.Load(track)
//	err = dev.ScheduleStart(dev.BufferClock()+0.02, 0)
package output
