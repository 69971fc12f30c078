// ABOUTME: Tests for the frame loop runner
// ABOUTME: Tests playback start, beats, commands and injected stalls
package app

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Resonate-Protocol/songclock/internal/ui"
	"github.com/Resonate-Protocol/songclock/pkg/audio"
	"github.com/Resonate-Protocol/songclock/pkg/audio/output"
	"github.com/Resonate-Protocol/songclock/pkg/songtime"
)

// fakeClock is a game clock advanced by the test
type fakeClock struct {
	real     float64
	frame    float64
	last     float64
	maxDelta float64
}

func (c *fakeClock) Now() float64       { return c.real }
func (c *fakeClock) FrameTime() float64 { return c.frame }

func (c *fakeClock) BeginFrame() float64 {
	delta := c.real - c.last
	c.last = c.real
	if delta > c.maxDelta {
		delta = c.maxDelta
	}
	c.frame += delta
	return delta
}

type fakeMono struct {
	clock *fakeClock
}

func (m *fakeMono) Now() float64 { return m.clock.real + 50 }

type testRig struct {
	t      *testing.T
	sim    *output.Simulated
	clock  *fakeClock
	runner *Runner
	ms     int
}

func newTestRig(t *testing.T, config Config) *testRig {
	t.Helper()

	sim := output.NewSimulated(audio.Format{SampleRate: 1000, Channels: 1}, 10)
	samples := make([]float32, 30000)
	for i := range samples {
		samples[i] = 0.25
	}
	if err := sim.Load(&audio.Track{Format: audio.Format{SampleRate: 1000, Channels: 1}, Samples: samples}); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	clock := &fakeClock{maxDelta: 0.1}
	rig := &testRig{t: t, sim: sim, clock: clock}
	rig.runner = NewRunnerWithClock(sim, config, &fakeMono{clock: clock}, clock)
	rig.runner.sleep = rig.advance
	return rig
}

// advance moves real time in 10ms buffer steps, running a callback per step
func (r *testRig) advance(d time.Duration) {
	for steps := int(d / (10 * time.Millisecond)); steps > 0; steps-- {
		r.sim.Step()
		r.ms += 10
		r.clock.real = float64(r.ms) / 1000
	}
}

// frames runs n frames of 20ms
func (r *testRig) frames(n int) {
	for i := 0; i < n; i++ {
		r.advance(20 * time.Millisecond)
		r.runner.Tick()
	}
}

func TestRunnerStartsPlayback(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.runner.Authority().Play()

	rig.frames(10)

	auth := rig.runner.Authority()
	if auth.State() != songtime.Playing {
		t.Fatalf("expected playing, got %s", auth.State())
	}
	if !auth.IsPlaying() {
		t.Error("expected device to produce sound")
	}
	if auth.CurrentTime() <= 0 {
		t.Errorf("expected song time to advance, got %f", auth.CurrentTime())
	}
	if rig.runner.Frames() != 10 {
		t.Errorf("expected 10 frames, got %d", rig.runner.Frames())
	}
}

func TestRunnerFiresBeats(t *testing.T) {
	rig := newTestRig(t, Config{BPM: 120})
	rig.runner.Authority().Play()

	// 1.2 seconds of frames
	rig.frames(60)

	status := rig.runner.Status()
	if status.Beat != 2 {
		t.Errorf("expected beat 2 after ~1.1s of song time, got %d (t=%f)",
			status.Beat, status.Stats.CurrentTime)
	}
	if status.Pulse <= 0 || status.Pulse > 1 {
		t.Errorf("expected decaying pulse in (0, 1], got %f", status.Pulse)
	}
}

func TestRunnerTogglePlay(t *testing.T) {
	rig := newTestRig(t, Config{})

	rig.runner.Commands() <- ui.Command{Kind: ui.CommandTogglePlay}
	rig.frames(10)
	auth := rig.runner.Authority()
	if auth.State() != songtime.Playing {
		t.Fatalf("expected playing after toggle, got %s", auth.State())
	}

	paused := auth.CurrentTime()
	rig.runner.Commands() <- ui.Command{Kind: ui.CommandTogglePlay}
	rig.frames(1)
	if auth.State() != songtime.Idle {
		t.Fatalf("expected idle after second toggle, got %s", auth.State())
	}
	if auth.CurrentTime() < paused {
		t.Errorf("song time went backwards on pause: %f < %f", auth.CurrentTime(), paused)
	}
	if auth.IsPlaying() {
		t.Error("expected device stopped")
	}
}

func TestRunnerVolumeCommand(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.runner.Authority().Play()
	rig.frames(10)

	rig.runner.Commands() <- ui.Command{Kind: ui.CommandVolume, Volume: 50, Muted: true}
	rig.runner.Tick()

	if block := rig.sim.Step(); block[0] != 0 {
		t.Errorf("expected muted output, got %f", block[0])
	}

	rig.runner.Commands() <- ui.Command{Kind: ui.CommandVolume, Volume: 50}
	rig.runner.Tick()

	if block := rig.sim.Step(); block[0] != 0.125 {
		t.Errorf("expected half volume sample 0.125, got %f", block[0])
	}
}

func TestRunnerInjectedStallIsCaughtUp(t *testing.T) {
	rig := newTestRig(t, Config{StallDuration: 500 * time.Millisecond})
	rig.runner.Authority().Play()
	rig.frames(30)

	before := rig.runner.Authority().CurrentTime()
	realBefore := rig.clock.real
	rig.runner.Commands() <- ui.Command{Kind: ui.CommandStall}
	rig.runner.Tick() // blocks for the stall
	rig.frames(1)

	auth := rig.runner.Authority()
	if auth.State() != songtime.Stalled {
		t.Fatalf("expected stalled after injected stall, got %s", auth.State())
	}

	for i := 0; i < 100 && auth.State() == songtime.Stalled; i++ {
		rig.frames(1)
	}
	if auth.State() != songtime.Playing {
		t.Fatalf("expected recovery to playing, got %s", auth.State())
	}

	stats := auth.Stats()
	if stats.LastLag < 0.39 {
		t.Errorf("expected measured lag near the stall minus the clamped delta, got %f", stats.LastLag)
	}
	if stats.CatchUps != 1 {
		t.Errorf("expected one catch-up, got %d", stats.CatchUps)
	}

	advanced := auth.CurrentTime() - before
	elapsed := rig.clock.real - realBefore
	if math.Abs(elapsed-advanced) > 0.001 {
		t.Errorf("expected song time to cover the stall: advanced %f over %f of audio", advanced, elapsed)
	}
}

func TestRunnerPublishesStatus(t *testing.T) {
	rig := newTestRig(t, Config{Title: "tone", StatusEvery: 5})

	var got []ui.StatusMsg
	rig.runner.OnStatus = func(msg ui.StatusMsg) { got = append(got, msg) }

	rig.frames(12)

	if len(got) != 2 {
		t.Fatalf("expected 2 status updates, got %d", len(got))
	}
	if got[0].Title != "tone" {
		t.Errorf("expected title 'tone', got '%s'", got[0].Title)
	}
}

func TestRunnerRunStopsOnCancel(t *testing.T) {
	rig := newTestRig(t, Config{FPS: 200})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := rig.runner.Run(ctx); err != nil {
		t.Errorf("expected nil error on cancel, got %v", err)
	}
	if rig.runner.Frames() == 0 {
		t.Error("expected frames to run")
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	sim := output.NewSimulated(audio.Format{SampleRate: 1000, Channels: 1}, 10)
	r := NewRunner(sim, Config{})

	if r.config.FPS != 60 || r.config.BPM != 120 || r.config.StatusEvery != 6 {
		t.Errorf("unexpected defaults: %+v", r.config)
	}
	if r.config.StallDuration != 500*time.Millisecond {
		t.Errorf("expected 500ms stall, got %v", r.config.StallDuration)
	}
	if r.Authority().State() != songtime.Idle {
		t.Errorf("expected idle authority, got %s", r.Authority().State())
	}
}
