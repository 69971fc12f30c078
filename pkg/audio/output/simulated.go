// ABOUTME: Simulated playback device
// ABOUTME: Deterministic buffer clock for headless runs and tests
package output

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
)

// Simulated renders audio without a sound card. Buffers are produced either
// one at a time with Step or on a wall-clock ticker with Run.
type Simulated struct {
	engine *engine

	mu     sync.Mutex
	volume int
	muted  bool
}

// NewSimulated creates a simulated device with the given callback size
func NewSimulated(format audio.Format, blockFrames int) *Simulated {
	return &Simulated{
		engine: newEngine(format, blockFrames),
		volume: 100,
	}
}

// Load installs the track to play
func (s *Simulated) Load(track *audio.Track) error {
	if err := s.engine.load(track); err != nil {
		return fmt.Errorf("failed to load track: %w", err)
	}
	return nil
}

// Period returns the buffer period in seconds
func (s *Simulated) Period() float64 {
	return float64(s.engine.blockFrames) / float64(s.engine.format.SampleRate)
}

// Step runs one buffer callback and returns the rendered block. The slice is
// reused by the next Step.
func (s *Simulated) Step() []float32 {
	return s.engine.render()
}

// Run produces buffers at the real-time rate until ctx is cancelled
func (s *Simulated) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.Period() * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// ScheduleStart implements Device
func (s *Simulated) ScheduleStart(at, position float64) error {
	return s.engine.scheduleStart(at, position)
}

// BufferClock implements Device
func (s *Simulated) BufferClock() float64 {
	return s.engine.bufferClock()
}

// IsProducingSound implements Device
func (s *Simulated) IsProducingSound() bool {
	return s.engine.isProducing()
}

// Stop implements Device
func (s *Simulated) Stop() error {
	s.engine.stop()
	return nil
}

// SetCallback implements Device
func (s *Simulated) SetCallback(fn func()) {
	s.engine.setCallback(fn)
}

// SetVolume sets the volume (0-100)
func (s *Simulated) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	s.mu.Lock()
	s.volume = volume
	s.engine.setGain(getVolumeMultiplier(s.volume, s.muted))
	s.mu.Unlock()
}

// SetMuted sets mute state
func (s *Simulated) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.engine.setGain(getVolumeMultiplier(s.volume, s.muted))
	s.mu.Unlock()
}
