// ABOUTME: Beat counter polling the song clock
// ABOUTME: Fires once per beat interval crossing of the authoritative song time
package beat

import "math"

// DefaultTolerance is the window used by Within, in seconds
const DefaultTolerance = 0.05

// Clock is the song time a counter polls
type Clock interface {
	CurrentTime() float64
	IsPlaying() bool
}

// Counter reports beats of a fixed tempo against a song clock
type Counter struct {
	clock     Clock
	interval  float64
	tolerance float64
	last      int64

	// OnBeat is called from Update with the index of the beat just reached
	OnBeat func(beat int64)
}

// NewCounter creates a counter for the given tempo in beats per minute
func NewCounter(clock Clock, bpm float64) *Counter {
	if bpm <= 0 {
		bpm = 120
	}
	return &Counter{
		clock:     clock,
		interval:  60.0 / bpm,
		tolerance: DefaultTolerance,
		last:      -1,
	}
}

// Update polls the clock and fires OnBeat if a new beat has been reached.
// Several beats crossed in one call fire once, for the latest.
func (c *Counter) Update() bool {
	if !c.clock.IsPlaying() {
		return false
	}

	beat := int64(math.Floor(c.clock.CurrentTime()/c.interval + 1e-9))
	if beat <= c.last {
		return false
	}

	c.last = beat
	if c.OnBeat != nil {
		c.OnBeat(beat)
	}
	return true
}

// Within reports whether t lies inside the tolerance window after a beat
func (c *Counter) Within(t float64) bool {
	return math.Abs(math.Mod(t, c.interval)) < c.tolerance
}

// SetTolerance sets the Within window in seconds
func (c *Counter) SetTolerance(tolerance float64) {
	c.tolerance = tolerance
}

// Interval returns the beat interval in seconds
func (c *Counter) Interval() float64 {
	return c.interval
}

// Beat returns the index of the last beat fired, or -1
func (c *Counter) Beat() int64 {
	return c.last
}

// Reset forgets the last beat so the current one fires again
func (c *Counter) Reset() {
	c.last = -1
}
