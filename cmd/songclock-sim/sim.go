// ABOUTME: Deterministic stall simulation on a virtual timeline
// ABOUTME: Interleaves audio buffers and frames in microseconds and records the song time trace
package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/Resonate-Protocol/songclock/internal/app"
	"github.com/Resonate-Protocol/songclock/pkg/audio"
	"github.com/Resonate-Protocol/songclock/pkg/audio/encode"
	"github.com/Resonate-Protocol/songclock/pkg/audio/output"
)

// monoOrigin shifts the virtual monotonic clock so calibration has work to do
const monoOrigin = 1000.0

// Scenario describes one simulated run
type Scenario struct {
	Duration      time.Duration
	FPS           int
	BufferMs      int
	SampleRate    int
	StallAt       time.Duration // 0 disables the stall
	StallFor      time.Duration
	MaxFrameDelta float64
	CatchUpRate   float64
	Tolerance     float64
	BPM           float64
	TraceEvery    int // frames between trace lines, 0 disables
}

// Summary is the outcome of a run
type Summary struct {
	Frames       int64
	Buffers      int64
	FinalTime    float64
	MaxDeficit   float64
	FinalDeficit float64
	MaxAhead     float64
	CatchUps     int
	LastLag      float64
	PingsDropped uint64
	Beats        int64
	Monotonic    bool
}

// virtualClock is a frame clock on the simulated timeline
type virtualClock struct {
	us       int64
	frame    float64
	lastReal float64
	maxDelta float64
}

func (c *virtualClock) Now() float64       { return float64(c.us) / 1e6 }
func (c *virtualClock) FrameTime() float64 { return c.frame }

func (c *virtualClock) BeginFrame() float64 {
	now := c.Now()
	delta := math.Min(now-c.lastReal, c.maxDelta)
	c.lastReal = now
	c.frame += delta
	return delta
}

type virtualMono struct {
	clock *virtualClock
}

func (m virtualMono) Now() float64 { return m.clock.Now() + monoOrigin }

// simulate runs the scenario against track. Trace lines go to trace and
// rendered audio to wav when they are non-nil.
func simulate(sc Scenario, track *audio.Track, trace io.Writer, wav *encode.WAVWriter) (Summary, error) {
	format := audio.Format{SampleRate: sc.SampleRate, Channels: track.Format.Channels}
	sim := output.NewSimulated(format, sc.SampleRate*sc.BufferMs/1000)
	if err := sim.Load(track); err != nil {
		return Summary{}, err
	}

	clock := &virtualClock{maxDelta: sc.MaxFrameDelta}
	runner := app.NewRunnerWithClock(sim, app.Config{
		FPS:           sc.FPS,
		BPM:           sc.BPM,
		MaxFrameDelta: sc.MaxFrameDelta,
		CatchUpRate:   sc.CatchUpRate,
		Tolerance:     sc.Tolerance,
	}, virtualMono{clock: clock}, clock)
	auth := runner.Authority()
	auth.Play()

	endUs := sc.Duration.Microseconds()
	frameUs := int64(1e6) / int64(sc.FPS)
	audioUs := int64(sc.BufferMs) * 1000
	stallAt := sc.StallAt.Microseconds()
	stalled := sc.StallAt <= 0

	var nextAudio, nextFrame int64
	summary := Summary{Monotonic: true}
	prev := 0.0

	if trace != nil {
		fmt.Fprintf(trace, "%8s %10s %10s %-8s %9s %9s %5s\n",
			"frame", "real", "song", "state", "lag_ms", "behind_ms", "beat")
	}

	for nextAudio < endUs || nextFrame < endUs {
		if nextAudio <= nextFrame {
			clock.us = nextAudio
			block := sim.Step()
			summary.Buffers++
			nextAudio += audioUs

			if wav != nil {
				if err := wav.Write(block); err != nil {
					return summary, err
				}
			}
			continue
		}

		clock.us = nextFrame
		runner.Tick()
		summary.Frames++
		nextFrame += frameUs

		stats := auth.Stats()
		if stats.CurrentTime < prev {
			summary.Monotonic = false
		}
		prev = stats.CurrentTime

		if stats.Realized {
			behind := clock.Now() - stats.RealizedStart + stats.SourceOffset - stats.CurrentTime
			summary.MaxDeficit = math.Max(summary.MaxDeficit, behind)
			summary.MaxAhead = math.Max(summary.MaxAhead, -behind)
			summary.FinalDeficit = behind
		}

		if trace != nil && sc.TraceEvery > 0 && summary.Frames%int64(sc.TraceEvery) == 0 {
			status := runner.Status()
			fmt.Fprintf(trace, "%8d %10.4f %10.4f %-8s %9.1f %9.1f %5d\n",
				summary.Frames, clock.Now(), stats.CurrentTime, stats.State,
				stats.LagRemaining*1000, summary.FinalDeficit*1000, status.Beat)
		}

		if !stalled && clock.us >= stallAt {
			stalled = true
			nextFrame += sc.StallFor.Microseconds()
			if trace != nil {
				fmt.Fprintf(trace, "--- frame loop stalled for %v at %.3fs ---\n", sc.StallFor, clock.Now())
			}
		}
	}

	stats := auth.Stats()
	summary.FinalTime = stats.CurrentTime
	summary.CatchUps = stats.CatchUps
	summary.LastLag = stats.LastLag
	summary.PingsDropped = stats.PingsDropped
	summary.Beats = runner.Status().Beat + 1
	return summary, nil
}
