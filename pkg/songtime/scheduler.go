// ABOUTME: Buffer-aligned playback scheduler
// ABOUTME: Estimates the buffer period and records the realized start per session
package songtime

import (
	"math"
	"sync/atomic"

	"github.com/Resonate-Protocol/songclock/pkg/audio/output"
)

const (
	// periodEpsilon is how close two period measurements must be to count as equal
	periodEpsilon = 1e-9

	// scheduleLeadPeriods is how many buffer periods ahead a start is scheduled
	scheduleLeadPeriods = 2
)

// schedule is an immutable ScheduledStart published to the audio goroutine
type schedule struct {
	at         float64
	position   float64
	generation uint64
}

// Scheduler picks a buffer-aligned start instant and tracks when audio
// actually began.
//
// Audio goroutine writes: period estimate, realizedAt, realizedGen.
// Frame loop writes: generation, scheduled.
type Scheduler struct {
	generation atomic.Uint64
	scheduled  atomic.Pointer[schedule]

	period       atomic.Uint64 // float64 bits, latest measurement
	stablePeriod atomic.Uint64 // float64 bits, 0 until two measurements agree
	realizedAt   atomic.Uint64 // float64 bits, frame-loop time
	realizedGen  atomic.Uint64 // generation realizedAt belongs to; published last

	// audio goroutine only
	lastClock  float64
	haveClock  bool
	lastPeriod float64
}

// NewScheduler creates a scheduler in its first session
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.generation.Store(1)
	return s
}

// observe records one audio callback's buffer clock reading. It returns the
// generation of the outstanding schedule if the next buffer boundary reaches
// it. Audio goroutine only.
func (s *Scheduler) observe(clock float64) (generation uint64, due bool) {
	if s.haveClock {
		period := clock - s.lastClock
		stable := 0.0
		if period > 0 && math.Abs(period-s.lastPeriod) <= periodEpsilon {
			stable = period
		}
		s.lastPeriod = period
		s.period.Store(math.Float64bits(period))
		s.stablePeriod.Store(math.Float64bits(stable))
	}
	s.lastClock = clock
	s.haveClock = true

	sched := s.scheduled.Load()
	if sched == nil {
		return 0, false
	}

	next := clock + s.lastPeriod
	if next+periodEpsilon < sched.at {
		return 0, false
	}
	return sched.generation, true
}

// realize records the start instant for generation if it has not been
// recorded yet. Audio goroutine only.
func (s *Scheduler) realize(generation uint64, at float64) bool {
	if s.realizedGen.Load() == generation {
		return false
	}
	s.realizedAt.Store(math.Float64bits(at))
	s.realizedGen.Store(generation)
	return true
}

// trySchedule submits a start two buffer periods ahead once the period is
// stable. Frame loop only.
func (s *Scheduler) trySchedule(device output.Device, position float64) (bool, error) {
	if s.scheduled.Load() != nil {
		return false, nil
	}

	period := s.StablePeriod()
	if period <= 0 {
		return false, nil
	}

	at := device.BufferClock() + scheduleLeadPeriods*period
	if err := device.ScheduleStart(at, position); err != nil {
		return false, err
	}

	s.scheduled.Store(&schedule{
		at:         at,
		position:   position,
		generation: s.generation.Load(),
	})
	return true, nil
}

// invalidate clears the outstanding schedule and starts a new session so
// late audio-side writes from the old one are ignored. Frame loop only.
func (s *Scheduler) invalidate() {
	s.scheduled.Store(nil)
	s.generation.Add(1)
}

// Realized returns the realized start of the current session, in frame-loop time
func (s *Scheduler) Realized() (float64, bool) {
	gen := s.realizedGen.Load()
	at := math.Float64frombits(s.realizedAt.Load())
	if gen != s.generation.Load() || s.realizedGen.Load() != gen {
		return 0, false
	}
	return at, true
}

// Scheduled returns the outstanding ScheduledStart and its track position
func (s *Scheduler) Scheduled() (at, position float64, ok bool) {
	sched := s.scheduled.Load()
	if sched == nil {
		return 0, 0, false
	}
	return sched.at, sched.position, true
}

// Generation returns the current session generation
func (s *Scheduler) Generation() uint64 {
	return s.generation.Load()
}

// Period returns the latest buffer period measurement
func (s *Scheduler) Period() float64 {
	return math.Float64frombits(s.period.Load())
}

// StablePeriod returns the buffer period once two consecutive measurements
// agree, otherwise 0
func (s *Scheduler) StablePeriod() float64 {
	return math.Float64frombits(s.stablePeriod.Load())
}
