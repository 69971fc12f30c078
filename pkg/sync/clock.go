// ABOUTME: Monotonic and frame-loop clock sources
// ABOUTME: Seconds-based time readings used by the timing authority
package sync

import (
	"math"
	"sync/atomic"
	"time"
)

// DefaultMaxFrameDelta caps the frame time advance of a single frame.
const DefaultMaxFrameDelta = 1.0 / 3.0

// Source reports a time reading in seconds.
type Source interface {
	Now() float64
}

// FrameSource is the frame loop's time base. Now is real time; FrameTime is
// the time at the start of the current frame.
type FrameSource interface {
	Source
	FrameTime() float64
}

// MonotonicClock reads the process monotonic clock. It is safe for
// concurrent use and never blocks.
type MonotonicClock struct {
	origin time.Time
}

// NewMonotonicClock creates a clock whose zero is the moment of creation
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{origin: time.Now()}
}

// Now returns seconds elapsed since the clock was created
func (c *MonotonicClock) Now() float64 {
	return time.Since(c.origin).Seconds()
}

// GameClock is a frame-loop clock. Real time keeps running during a stall,
// but frame time only advances by at most maxDelta per frame.
type GameClock struct {
	origin    time.Time
	maxDelta  float64
	lastReal  float64
	frameTime atomic.Uint64
}

// NewGameClock creates a frame clock. A maxDelta <= 0 selects DefaultMaxFrameDelta.
func NewGameClock(maxDelta float64) *GameClock {
	if maxDelta <= 0 {
		maxDelta = DefaultMaxFrameDelta
	}
	return &GameClock{
		origin:   time.Now(),
		maxDelta: maxDelta,
	}
}

// Now returns unscaled real time since startup
func (g *GameClock) Now() float64 {
	return time.Since(g.origin).Seconds()
}

// FrameTime returns the time at the start of the current frame
func (g *GameClock) FrameTime() float64 {
	return math.Float64frombits(g.frameTime.Load())
}

// BeginFrame advances frame time. Must be called from the frame loop only.
func (g *GameClock) BeginFrame() float64 {
	now := g.Now()
	delta := now - g.lastReal
	g.lastReal = now

	if delta < 0 {
		delta = 0
	}
	if delta > g.maxDelta {
		delta = g.maxDelta
	}

	ft := g.FrameTime() + delta
	g.frameTime.Store(math.Float64bits(ft))
	return delta
}

// MaxDelta returns the per-frame clamp
func (g *GameClock) MaxDelta() float64 {
	return g.maxDelta
}
