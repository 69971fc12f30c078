// ABOUTME: Offset calibration between the monotonic clock and frame-loop time
// ABOUTME: Refreshed every frame so audio-thread stamps stay comparable
package sync

import (
	"log"
	"math"
	"sync/atomic"
)

// Calibrator tracks the offset between a thread-safe monotonic clock and the
// frame loop's real-time clock. Refresh is called only by the frame loop; Now
// and Offset may be called from any goroutine.
type Calibrator struct {
	mono  Source
	frame Source

	offset atomic.Uint64 // float64 bits: mono - frame
	drift  atomic.Uint64 // float64 bits: change of offset at the last refresh

	refreshes atomic.Int64
}

// NewCalibrator creates a calibrator and takes the first measurement
func NewCalibrator(mono, frame Source) *Calibrator {
	c := &Calibrator{
		mono:  mono,
		frame: frame,
	}
	c.Refresh()
	return c
}

// Refresh recomputes offset = mono.Now() - frame.Now()
func (c *Calibrator) Refresh() {
	measured := c.mono.Now() - c.frame.Now()

	n := c.refreshes.Add(1)
	if n > 1 {
		c.drift.Store(math.Float64bits(measured - c.Offset()))
	}
	c.offset.Store(math.Float64bits(measured))

	if n == 1 {
		log.Printf("Clock calibration: initial offset=%.6fs", measured)
	}
}

// Offset returns the latest monotonic-minus-frame offset in seconds
func (c *Calibrator) Offset() float64 {
	return math.Float64frombits(c.offset.Load())
}

// Now reads the monotonic clock and translates it into frame-loop time.
// Safe to call from the audio thread.
func (c *Calibrator) Now() float64 {
	return c.Translate(c.mono.Now())
}

// Translate converts a monotonic reading into frame-loop time using the
// latest offset. Safe to call from the audio thread.
func (c *Calibrator) Translate(monoSample float64) float64 {
	return monoSample - c.Offset()
}

// Stats returns the current offset, the offset change seen at the last
// refresh, and the number of refreshes so far
func (c *Calibrator) Stats() (offset, drift float64, refreshes int64) {
	return c.Offset(), math.Float64frombits(c.drift.Load()), c.refreshes.Load()
}
