// ABOUTME: Buffer-clocked track renderer shared by playback devices
// ABOUTME: Renders silence until the scheduled boundary, then track frames
package output

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
	"github.com/Resonate-Protocol/songclock/pkg/audio/resample"
)

// engine renders fixed-size blocks of a track against a frame-counting
// buffer clock. Fields written by ScheduleStart/Stop are atomics read by the
// audio goroutine; cursor and playSession belong to the audio goroutine.
type engine struct {
	format      audio.Format
	blockFrames int

	track    atomic.Pointer[audio.Track]
	callback atomic.Pointer[func()]

	rendered   atomic.Int64  // frames rendered, the buffer clock
	startFrame atomic.Int64  // device frame where playback begins
	startPos   atomic.Int64  // track frame to begin from
	session    atomic.Uint64 // bumped on every ScheduleStart/Stop
	armed      atomic.Bool
	producing  atomic.Uint64 // session last heard, 0 for none
	gain       atomic.Uint64 // float64 bits

	// audio goroutine only
	playSession uint64
	cursor      int
	scratch     []float32
}

func newEngine(format audio.Format, blockFrames int) *engine {
	e := &engine{
		format:      format,
		blockFrames: blockFrames,
		scratch:     make([]float32, blockFrames*format.Channels),
	}
	e.gain.Store(math.Float64bits(1.0))
	return e
}

// load installs the track to play, converting its sample rate if needed
func (e *engine) load(track *audio.Track) error {
	if track == nil {
		return ErrNoTrack
	}
	if track.Format.Channels != e.format.Channels {
		return fmt.Errorf("track has %d channels, device has %d", track.Format.Channels, e.format.Channels)
	}
	e.track.Store(resample.Track(track, e.format.SampleRate))
	return nil
}

func (e *engine) setCallback(fn func()) {
	if fn == nil {
		e.callback.Store(nil)
		return
	}
	e.callback.Store(&fn)
}

func (e *engine) bufferClock() float64 {
	return float64(e.rendered.Load()) / float64(e.format.SampleRate)
}

func (e *engine) scheduleStart(at, position float64) error {
	track := e.track.Load()
	if track == nil {
		return ErrNoTrack
	}
	if e.armed.Load() {
		return ErrAlreadyScheduled
	}

	e.startFrame.Store(int64(math.Round(at * float64(e.format.SampleRate))))
	e.startPos.Store(int64(track.FrameAt(position)))
	e.session.Add(1)
	e.armed.Store(true)
	return nil
}

func (e *engine) stop() {
	e.armed.Store(false)
	e.session.Add(1)
	e.producing.Store(0)
}

// isProducing reports whether the current session has rendered track audio.
// A store from a render that raced with stop names an old session and so
// never reads as producing.
func (e *engine) isProducing() bool {
	heard := e.producing.Load()
	return heard != 0 && heard == e.session.Load()
}

func (e *engine) setGain(g float64) {
	e.gain.Store(math.Float64bits(g))
}

// render runs the callback and fills scratch with the next block
func (e *engine) render() []float32 {
	if fn := e.callback.Load(); fn != nil {
		(*fn)()
	}

	for i := range e.scratch {
		e.scratch[i] = 0
	}

	clock := e.rendered.Load()
	defer e.rendered.Add(int64(e.blockFrames))

	if !e.armed.Load() {
		e.producing.Store(0)
		return e.scratch
	}

	session := e.session.Load()
	if session != e.playSession {
		e.playSession = session
		e.cursor = int(e.startPos.Load())
	}

	track := e.track.Load()
	start := e.startFrame.Load()
	gain := float32(math.Float64frombits(e.gain.Load()))
	channels := e.format.Channels
	frames := track.Frames()

	heard, ended := false, false
	for i := 0; i < e.blockFrames; i++ {
		if clock+int64(i) < start {
			continue
		}
		if e.cursor >= frames {
			ended = true
			break
		}
		for ch := 0; ch < channels; ch++ {
			e.scratch[i*channels+ch] = audio.Clamp(track.Samples[e.cursor*channels+ch] * gain)
		}
		e.cursor++
		heard = true
	}

	switch {
	case ended:
		e.producing.Store(0)
	case heard:
		e.producing.Store(session)
	}
	return e.scratch
}
