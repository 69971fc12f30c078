// ABOUTME: Frame loop driving the timing authority
// ABOUTME: Ticks the game clock, authority, beat counter and pulse once per frame
package app

import (
	"context"
	"log"
	"time"

	"github.com/Resonate-Protocol/songclock/internal/ui"
	"github.com/Resonate-Protocol/songclock/pkg/audio/output"
	"github.com/Resonate-Protocol/songclock/pkg/beat"
	"github.com/Resonate-Protocol/songclock/pkg/songtime"
	"github.com/Resonate-Protocol/songclock/pkg/sync"
)

// Config holds frame loop configuration
type Config struct {
	Title         string
	FPS           int           // frames per second (default 60)
	BPM           float64       // beat counter tempo (default 120)
	MaxFrameDelta float64       // per-frame time clamp in seconds (default 1/3)
	StallDuration time.Duration // length of an injected stall (default 500ms)
	StatusEvery   int           // frames between status updates (default 6)
	CatchUpRate   float64
	Tolerance     float64
}

// FrameClock is the game clock as seen by the runner
type FrameClock interface {
	sync.FrameSource
	BeginFrame() float64
}

// Runner owns the frame loop. Everything except Stall, Commands and the
// device's audio callback runs on the goroutine calling Tick or Run.
type Runner struct {
	config  Config
	device  output.Device
	clock   FrameClock
	auth    *songtime.Authority
	counter *beat.Counter
	pulse   beat.Pulse

	commands chan ui.Command
	stalls   chan time.Duration
	sleep    func(time.Duration)
	frames   int64

	// OnStatus receives a snapshot every StatusEvery frames
	OnStatus func(ui.StatusMsg)
}

// NewRunner creates a frame loop for device using the process clocks
func NewRunner(device output.Device, config Config) *Runner {
	if config.MaxFrameDelta <= 0 {
		config.MaxFrameDelta = sync.DefaultMaxFrameDelta
	}
	return NewRunnerWithClock(device, config, sync.NewMonotonicClock(), sync.NewGameClock(config.MaxFrameDelta))
}

// NewRunnerWithClock creates a frame loop on the given clocks. mono must be
// safe to read from the audio goroutine.
func NewRunnerWithClock(device output.Device, config Config, mono sync.Source, clock FrameClock) *Runner {
	if config.FPS <= 0 {
		config.FPS = 60
	}
	if config.BPM <= 0 {
		config.BPM = 120
	}
	if config.StallDuration <= 0 {
		config.StallDuration = 500 * time.Millisecond
	}
	if config.StatusEvery <= 0 {
		config.StatusEvery = 6
	}

	auth := songtime.New(device, mono, clock, songtime.Config{
		CatchUpRate: config.CatchUpRate,
		Tolerance:   config.Tolerance,
	})

	r := &Runner{
		config:   config,
		device:   device,
		clock:    clock,
		auth:     auth,
		counter:  beat.NewCounter(auth, config.BPM),
		commands: make(chan ui.Command, 10),
		stalls:   make(chan time.Duration, 1),
		sleep:    time.Sleep,
	}
	r.counter.OnBeat = func(int64) { r.pulse.Trigger() }
	return r
}

// Authority returns the timing authority driven by this runner
func (r *Runner) Authority() *songtime.Authority {
	return r.auth
}

// Commands returns the channel user commands are read from
func (r *Runner) Commands() chan ui.Command {
	return r.commands
}

// Stall requests that the next frame blocks for d. A d <= 0 uses the
// configured stall duration. Safe to call from any goroutine.
func (r *Runner) Stall(d time.Duration) {
	if d <= 0 {
		d = r.config.StallDuration
	}
	select {
	case r.stalls <- d:
	default:
	}
}

// Run ticks at the configured rate until ctx is cancelled
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.config.FPS))
	defer ticker.Stop()

	log.Printf("Frame loop started: %d fps, %.0f bpm", r.config.FPS, r.config.BPM)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Frame loop stopped after %d frames", r.frames)
			return nil
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick runs one frame
func (r *Runner) Tick() {
	r.handleCommands()

	select {
	case d := <-r.stalls:
		log.Printf("Injecting frame stall: %v", d)
		r.sleep(d)
	default:
	}

	delta := r.clock.BeginFrame()
	r.auth.Update()
	r.counter.Update()
	r.pulse.Decay(delta)

	r.frames++
	if r.OnStatus != nil && r.frames%int64(r.config.StatusEvery) == 0 {
		r.OnStatus(r.Status())
	}
}

func (r *Runner) handleCommands() {
	for {
		select {
		case cmd := <-r.commands:
			r.apply(cmd)
		default:
			return
		}
	}
}

func (r *Runner) apply(cmd ui.Command) {
	switch cmd.Kind {
	case ui.CommandTogglePlay:
		if r.auth.State() == songtime.Idle {
			r.auth.Play()
		} else {
			r.auth.Pause()
		}
	case ui.CommandStall:
		r.Stall(0)
	case ui.CommandVolume:
		mixer, ok := r.device.(output.Mixer)
		if !ok {
			log.Printf("Device has no volume control")
			return
		}
		mixer.SetVolume(cmd.Volume)
		mixer.SetMuted(cmd.Muted)
	}
}

// Status returns a snapshot for the TUI
func (r *Runner) Status() ui.StatusMsg {
	return ui.StatusMsg{
		Title:   r.config.Title,
		Stats:   r.auth.Stats(),
		Audible: r.auth.IsPlaying(),
		Beat:    r.counter.Beat(),
		Pulse:   r.pulse.Size(),
	}
}

// Frames returns the number of frames run
func (r *Runner) Frames() int64 {
	return r.frames
}
