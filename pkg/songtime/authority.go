// ABOUTME: Timing authority facade driven once per frame
// ABOUTME: Owns calibration, scheduling, ping handling and catch-up for one device
package songtime

import (
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/songclock/pkg/audio/output"
	"github.com/Resonate-Protocol/songclock/pkg/sync"
)

// Config holds timing authority configuration
type Config struct {
	CatchUpRate float64 // song time multiplier while catching up (default 2)
	Tolerance   float64 // max refined/ping lag disagreement in seconds (default 0.1)
}

// Stats is a snapshot of authority state for display and logging
type Stats struct {
	State          State
	SessionID      string
	CurrentTime    float64
	SourceOffset   float64
	BufferPeriod   float64
	ScheduledStart float64
	RealizedStart  float64
	Realized       bool
	LagRemaining   float64
	LastLag        float64
	CatchUps       int
	PingsDropped   uint64
	ClockOffset    float64
	ClockDrift     float64
	LastError      string
}

// Authority produces the song time for a frame loop. Play, Pause, Update,
// CurrentTime, State and Stats belong to the frame loop. OnAudioBuffer runs
// on the device's audio goroutine and is installed by New.
type Authority struct {
	device     output.Device
	mono       sync.Source
	frame      sync.FrameSource
	calibrator *sync.Calibrator
	scheduler  *Scheduler
	catchUp    *CatchUp
	ping       latencyPing

	// frame loop only
	state         State
	sessionID     string
	currentTime   float64
	sourceOffset  float64
	started       bool
	lastFrameTime float64
	lastLag       float64
	lastError     string
}

// New creates an authority for device and installs its audio callback.
// mono must be safe to read from any goroutine; frame is the frame loop's
// time base.
func New(device output.Device, mono sync.Source, frame sync.FrameSource, config Config) *Authority {
	a := &Authority{
		device:        device,
		mono:          mono,
		frame:         frame,
		calibrator:    sync.NewCalibrator(mono, frame),
		scheduler:     NewScheduler(),
		catchUp:       NewCatchUp(config.CatchUpRate, config.Tolerance),
		lastFrameTime: frame.FrameTime(),
	}
	device.SetCallback(a.OnAudioBuffer)
	return a
}

// OnAudioBuffer is the per-buffer hook. It measures the buffer period,
// records the realized start once the next boundary reaches the scheduled
// start, and posts a latency ping when none is outstanding.
func (a *Authority) OnAudioBuffer() {
	generation, due := a.scheduler.observe(a.device.BufferClock())
	if !due {
		return
	}

	now := a.calibrator.Translate(a.mono.Now())
	a.scheduler.realize(generation, now)
	a.ping.post(now, generation)
}

// Play requests playback from the carried-over position. No-op unless idle.
func (a *Authority) Play() {
	if a.state != Idle {
		return
	}

	a.sessionID = uuid.New().String()
	a.state = Armed
	log.Printf("Playback armed: session=%s, position=%.3fs", a.sessionID, a.sourceOffset)
}

// Pause stops playback and remembers the current song time for the next
// Play. No-op while idle.
func (a *Authority) Pause() {
	if a.state == Idle {
		return
	}

	a.sourceOffset = a.CurrentTime()

	// The schedule must be gone before the device stops so a late callback
	// cannot realize it.
	a.scheduler.invalidate()
	if err := a.device.Stop(); err != nil {
		a.setError(fmt.Errorf("failed to stop device: %w", err))
	}

	a.ping.drain()
	a.catchUp.Reset()
	a.currentTime = 0
	a.started = false
	a.state = Idle

	log.Printf("Playback paused: session=%s, position=%.3fs", a.sessionID, a.sourceOffset)
}

// Update runs one frame tick: calibrate, schedule if armed, consume any
// ping, then advance song time.
func (a *Authority) Update() {
	a.calibrator.Refresh()

	frameTime := a.frame.FrameTime()
	rawDelta := math.Max(0, frameTime-a.lastFrameTime)
	a.lastFrameTime = frameTime

	if a.state == Armed {
		a.schedule()
	}

	realizedAt, realized := a.scheduler.Realized()

	if stamp, generation, ok := a.ping.consume(); ok {
		a.handlePing(stamp, generation, realizedAt, realized, rawDelta)
	}

	if !realized {
		return
	}

	if !a.started {
		a.currentTime = a.sourceOffset + math.Max(0, a.frame.Now()-realizedAt)
		a.started = true
		log.Printf("Playback started: session=%s, realized=%.6f, time=%.3fs",
			a.sessionID, realizedAt, a.currentTime)
		return
	}

	a.currentTime += a.catchUp.Step(rawDelta)

	if a.state == Stalled && !a.catchUp.Active() {
		a.state = Playing
		if a.lastLag > a.catchUp.tolerance {
			log.Printf("Caught up: session=%s, time=%.3fs", a.sessionID, a.currentTime)
		}
	}
}

func (a *Authority) schedule() {
	ok, err := a.scheduler.trySchedule(a.device, a.sourceOffset)
	if err != nil {
		a.setError(fmt.Errorf("failed to schedule start: %w", err))
		return
	}
	if !ok {
		return
	}

	at, _, _ := a.scheduler.Scheduled()
	a.state = Playing
	log.Printf("Playback scheduled: session=%s, start=%.6f, period=%.6fs",
		a.sessionID, at, a.scheduler.StablePeriod())
}

// handlePing measures lag against the position song time reaches after this
// tick's normal advance of rawDelta.
func (a *Authority) handlePing(stamp float64, generation uint64, realizedAt float64, realized bool, rawDelta float64) {
	if generation != a.scheduler.Generation() || !realized || !a.started {
		return
	}
	if a.state != Playing {
		return
	}

	now := a.frame.Now()
	rawLag := math.Max(0, now-stamp-rawDelta)
	refinedLag := (now - realizedAt) + a.sourceOffset - (a.currentTime + rawDelta)

	if a.catchUp.Observe(rawLag, refinedLag, a.scheduler.StablePeriod()) {
		a.lastLag = a.catchUp.LagRemaining()
		a.state = Stalled
	}
}

// setError records err, logging it only when it differs from the last one
func (a *Authority) setError(err error) {
	msg := err.Error()
	if msg != a.lastError {
		log.Printf("Timing authority: %v", err)
	}
	a.lastError = msg
}

// IsPlaying reports whether the device is producing sound. This can differ
// from State while a start is scheduled but not yet audible.
func (a *Authority) IsPlaying() bool {
	return a.device.IsProducingSound()
}

// CurrentTime returns the song time in seconds. Before audio has started in
// this session it is the carried-over position.
func (a *Authority) CurrentTime() float64 {
	if !a.started {
		return a.sourceOffset
	}
	return a.currentTime
}

// State returns the synchronization state
func (a *Authority) State() State {
	return a.state
}

// Stats returns a snapshot of the authority state
func (a *Authority) Stats() Stats {
	offset, drift, _ := a.calibrator.Stats()
	scheduled, _, _ := a.scheduler.Scheduled()
	realizedAt, realized := a.scheduler.Realized()

	return Stats{
		State:          a.state,
		SessionID:      a.sessionID,
		CurrentTime:    a.CurrentTime(),
		SourceOffset:   a.sourceOffset,
		BufferPeriod:   a.scheduler.Period(),
		ScheduledStart: scheduled,
		RealizedStart:  realizedAt,
		Realized:       realized,
		LagRemaining:   a.catchUp.LagRemaining(),
		LastLag:        a.lastLag,
		CatchUps:       a.catchUp.Episodes(),
		PingsDropped:   a.ping.dropped.Load(),
		ClockOffset:    offset,
		ClockDrift:     drift,
		LastError:      a.lastError,
	}
}
