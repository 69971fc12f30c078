// ABOUTME: One-slot latency ping from the audio goroutine to the frame loop
// ABOUTME: Lock-free handshake built from two single-writer counters
package songtime

import (
	"math"
	"sync/atomic"
)

// latencyPing holds at most one outstanding ping. A ping is outstanding
// while posted != consumed. posted, stamp and generation are written only by
// the audio goroutine; consumed is written only by the frame loop.
type latencyPing struct {
	posted     atomic.Uint64
	consumed   atomic.Uint64
	stamp      atomic.Uint64 // float64 bits, frame-loop time
	generation atomic.Uint64
	dropped    atomic.Uint64
}

// post stamps a new ping unless one is still outstanding. Audio goroutine only.
func (p *latencyPing) post(stamp float64, generation uint64) bool {
	posted := p.posted.Load()
	if posted != p.consumed.Load() {
		p.dropped.Add(1)
		return false
	}

	p.stamp.Store(math.Float64bits(stamp))
	p.generation.Store(generation)
	p.posted.Store(posted + 1)
	return true
}

// consume takes the outstanding ping, if any. Frame loop only.
func (p *latencyPing) consume() (stamp float64, generation uint64, ok bool) {
	posted := p.posted.Load()
	if posted == p.consumed.Load() {
		return 0, 0, false
	}

	stamp = math.Float64frombits(p.stamp.Load())
	generation = p.generation.Load()
	p.consumed.Store(posted)
	return stamp, generation, true
}

// pending reports whether a ping is outstanding
func (p *latencyPing) pending() bool {
	return p.posted.Load() != p.consumed.Load()
}

// drain discards an outstanding ping. Frame loop only.
func (p *latencyPing) drain() {
	p.consumed.Store(p.posted.Load())
}
