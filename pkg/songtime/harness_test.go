// ABOUTME: Deterministic test harness for the timing authority
// ABOUTME: Interleaves audio callbacks and frame ticks on a microsecond timeline
package songtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
	"github.com/Resonate-Protocol/songclock/pkg/audio/output"
)

const (
	testSampleRate  = 1000
	testBlockFrames = 10
	testPeriodUs    = 10000
	testPeriod      = 0.01
	testMonoOffset  = 100.0
)

// testClock is a hand-driven frame-loop time base
type testClock struct {
	now   float64
	frame float64
}

func (c *testClock) Now() float64       { return c.now }
func (c *testClock) FrameTime() float64 { return c.frame }

// monoClock reads the same instant as a testClock on a shifted origin
type monoClock struct {
	clock *testClock
}

func (m *monoClock) Now() float64 { return m.clock.now + testMonoOffset }

// recordingDevice records the positions passed to ScheduleStart
type recordingDevice struct {
	output.Device
	positions []float64
}

func (r *recordingDevice) ScheduleStart(at, position float64) error {
	r.positions = append(r.positions, position)
	return r.Device.ScheduleStart(at, position)
}

func newTestSimulated(t *testing.T) *output.Simulated {
	t.Helper()
	sim := output.NewSimulated(audio.Format{SampleRate: testSampleRate, Channels: 1}, testBlockFrames)

	samples := make([]float32, testSampleRate*60)
	for i := range samples {
		samples[i] = 0.5
	}
	err := sim.Load(&audio.Track{
		Format:  audio.Format{SampleRate: testSampleRate, Channels: 1},
		Samples: samples,
	})
	require.NoError(t, err)
	return sim
}

// harness runs audio callbacks every testPeriodUs of simulated real time and
// frame ticks whenever asked, with frame deltas clamped like a game clock.
type harness struct {
	t         *testing.T
	clock     *testClock
	sim       *output.Simulated
	device    *recordingDevice
	auth      *Authority
	us        int64
	nextAudio int64
	lastReal  float64
	maxDelta  float64
}

func newHarness(t *testing.T, maxDelta float64) *harness {
	t.Helper()
	clock := &testClock{}
	sim := newTestSimulated(t)
	device := &recordingDevice{Device: sim}

	return &harness{
		t:        t,
		clock:    clock,
		sim:      sim,
		device:   device,
		auth:     New(device, &monoClock{clock: clock}, clock, Config{}),
		maxDelta: maxDelta,
	}
}

// advance moves real time forward, running every audio callback that falls due
func (h *harness) advance(us int64) {
	end := h.us + us
	for h.nextAudio <= end {
		h.clock.now = float64(h.nextAudio) / 1e6
		h.sim.Step()
		h.nextAudio += testPeriodUs
	}
	h.us = end
	h.clock.now = float64(end) / 1e6
}

// frame begins a frame and runs one authority update
func (h *harness) frame() {
	delta := h.clock.now - h.lastReal
	h.lastReal = h.clock.now
	if delta > h.maxDelta {
		delta = h.maxDelta
	}
	h.clock.frame += delta
	h.auth.Update()
}

func (h *harness) tick(us int64) {
	h.advance(us)
	h.frame()
}

// runUntilStarted ticks until song time is being produced
func (h *harness) runUntilStarted(tickUs int64) {
	for i := 0; i < 100; i++ {
		h.tick(tickUs)
		if h.auth.started {
			return
		}
	}
	h.t.Fatalf("playback never started, state=%s", h.auth.State())
}

// elapsed returns real time since the realized start plus the source offset
func (h *harness) elapsed() float64 {
	at, ok := h.auth.scheduler.Realized()
	require.True(h.t, ok)
	return h.clock.now - at + h.auth.sourceOffset
}
