// ABOUTME: Playback device interface definition
// ABOUTME: The buffer-clocked primitive the timing authority schedules against
package output

import "errors"

var (
	// ErrNotOpen is returned when a device is used before it is opened
	ErrNotOpen = errors.New("output not initialized")

	// ErrAlreadyScheduled is returned when a start is scheduled while another is outstanding
	ErrAlreadyScheduled = errors.New("playback start already scheduled")

	// ErrNoTrack is returned when a start is scheduled with nothing loaded
	ErrNoTrack = errors.New("no track loaded")
)

// Device is a playback primitive driven by a fixed-size buffer callback.
//
// BufferClock advances by one buffer period per callback. The function set
// with SetCallback runs on the audio goroutine once per buffer, before the
// buffer clock advances, and must not block.
type Device interface {
	// ScheduleStart requests playback of the loaded track from position
	// (seconds into the track) once the buffer clock reaches at.
	ScheduleStart(at, position float64) error

	// BufferClock returns the buffer-boundary clock in seconds
	BufferClock() float64

	// IsProducingSound reports whether track audio is being rendered
	IsProducingSound() bool

	// Stop cancels any scheduled start and silences playback
	Stop() error

	// SetCallback installs the per-buffer hook
	SetCallback(fn func())
}

// Mixer is implemented by devices with software volume control
type Mixer interface {
	SetVolume(volume int)
	SetMuted(muted bool)
}
