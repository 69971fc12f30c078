// ABOUTME: Drift catch-up controller
// ABOUTME: Erases measured lag by advancing song time at a fixed multiplier
package songtime

import (
	"log"
	"math"
)

const (
	// DefaultCatchUpRate is the song time multiplier while catching up
	DefaultCatchUpRate = 2.0

	// DefaultTolerance is how far the refined lag estimate may disagree with
	// the ping lag before the ping lag is used instead
	DefaultTolerance = 0.1
)

// CatchUp decides per tick whether song time advances at the normal rate or
// at the catch-up rate. It is owned by the frame loop.
type CatchUp struct {
	rate      float64
	tolerance float64

	lagRemaining float64
	active       float64 // current multiplier, 0 when not catching up
	episodes     int
}

// NewCatchUp creates a controller. Zero or invalid values select the defaults.
func NewCatchUp(rate, tolerance float64) *CatchUp {
	if rate <= 1 {
		rate = DefaultCatchUpRate
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &CatchUp{
		rate:      rate,
		tolerance: tolerance,
	}
}

// Observe hands a measured lag to the controller. rawLag is the ping
// estimate and refinedLag the realized-start estimate, both taken as the lag
// left after this tick's normal advance; period is the buffer period.
// Returns true if a catch-up episode started.
func (c *CatchUp) Observe(rawLag, refinedLag, period float64) bool {
	if c.Active() || period <= 0 || !(rawLag > period) {
		return false
	}

	lag := refinedLag
	if math.Abs(refinedLag-rawLag) > c.tolerance {
		lag = rawLag
	}
	if !(lag > period) {
		return false
	}

	c.lagRemaining = lag
	c.active = c.rate
	c.episodes++

	if lag > c.tolerance {
		log.Printf("Stall detected: lag=%.3fs (ping=%.3fs, refined=%.3fs), catching up at %.1fx",
			lag, rawLag, refinedLag, c.rate)
	}
	return true
}

// Step returns how far song time advances for a tick of rawDelta seconds.
// While catching up this is min(rawDelta*rate, rawDelta+lagRemaining). Only
// the advance beyond rawDelta is taken off the remaining lag, since the
// audio moved on by rawDelta during the tick.
func (c *CatchUp) Step(rawDelta float64) float64 {
	if rawDelta < 0 {
		rawDelta = 0
	}
	if !c.Active() {
		return rawDelta
	}

	extra := math.Min(rawDelta*(c.active-1), c.lagRemaining)
	c.lagRemaining -= extra
	if c.lagRemaining <= 0 {
		c.lagRemaining = 0
		c.active = 0
	}
	return rawDelta + extra
}

// Active reports whether a catch-up episode is in progress
func (c *CatchUp) Active() bool {
	return c.active != 0
}

// LagRemaining returns the lag still to be erased, in seconds
func (c *CatchUp) LagRemaining() float64 {
	return c.lagRemaining
}

// Rate returns the configured catch-up multiplier
func (c *CatchUp) Rate() float64 {
	return c.rate
}

// Episodes returns how many catch-up episodes have started
func (c *CatchUp) Episodes() int {
	return c.episodes
}

// Reset abandons any catch-up in progress
func (c *CatchUp) Reset() {
	c.lagRemaining = 0
	c.active = 0
}
