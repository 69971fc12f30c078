// ABOUTME: Oto-based playback device
// ABOUTME: Buffer-clocked track playback with software volume control using oto
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// OtoConfig configures the oto device
type OtoConfig struct {
	SampleRate int // default 48000
	Channels   int // default 2
	BufferMs   int // callback period in milliseconds, default 10
}

// Oto plays a track through oto. oto pulls audio through Read on its own
// goroutine; each rendered block is one buffer callback.
type Oto struct {
	config OtoConfig
	engine *engine

	otoCtx *oto.Context
	player *oto.Player

	// audio goroutine only
	buf     []byte
	pending []byte

	mu     sync.Mutex
	volume int
	muted  bool
	ready  bool
}

// NewOto creates a new oto device. Open must be called before use.
func NewOto(config OtoConfig) *Oto {
	if config.SampleRate == 0 {
		config.SampleRate = 48000
	}
	if config.Channels == 0 {
		config.Channels = 2
	}
	if config.BufferMs == 0 {
		config.BufferMs = 10
	}

	format := audio.Format{SampleRate: config.SampleRate, Channels: config.Channels}
	blockFrames := config.SampleRate * config.BufferMs / 1000
	e := newEngine(format, blockFrames)

	return &Oto{
		config: config,
		engine: e,
		buf:    make([]byte, blockFrames*config.Channels*4),
		volume: 100,
	}
}

// Open creates the oto context and starts pulling buffers
func (o *Oto) Open() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ready {
		log.Printf("Audio output already initialized, reusing context")
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   o.config.SampleRate,
		ChannelCount: o.config.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(o.config.BufferMs) * time.Millisecond,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.player = ctx.NewPlayer(o)
	o.player.SetBufferSize(len(o.buf))
	o.player.Play()
	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels, %dms buffers",
		o.config.SampleRate, o.config.Channels, o.config.BufferMs)

	return nil
}

// Load installs the track to play
func (o *Oto) Load(track *audio.Track) error {
	if err := o.engine.load(track); err != nil {
		return fmt.Errorf("failed to load track: %w", err)
	}
	log.Printf("Track loaded: %.2fs", track.Duration())
	return nil
}

// Read implements io.Reader for oto.Player. Runs on the audio goroutine.
func (o *Oto) Read(p []byte) (int, error) {
	if len(o.pending) == 0 {
		block := o.engine.render()
		o.pending = o.buf[:len(block)*4]
		for i, s := range block {
			binary.LittleEndian.PutUint32(o.pending[i*4:], math.Float32bits(s))
		}
	}

	n := copy(p, o.pending)
	o.pending = o.pending[n:]
	return n, nil
}

// ScheduleStart implements Device
func (o *Oto) ScheduleStart(at, position float64) error {
	o.mu.Lock()
	ready := o.ready
	o.mu.Unlock()

	if !ready {
		return ErrNotOpen
	}
	return o.engine.scheduleStart(at, position)
}

// BufferClock implements Device
func (o *Oto) BufferClock() float64 {
	return o.engine.bufferClock()
}

// IsProducingSound implements Device
func (o *Oto) IsProducingSound() bool {
	return o.engine.isProducing()
}

// Stop implements Device
func (o *Oto) Stop() error {
	o.engine.stop()
	return nil
}

// SetCallback implements Device
func (o *Oto) SetCallback(fn func()) {
	o.engine.setCallback(fn)
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.engine.stop()

	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Printf("Warning: player close error: %v", err)
		}
		o.player = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			log.Printf("Warning: oto suspend error: %v", err)
		}
	}
	o.ready = false
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	o.mu.Lock()
	o.volume = volume
	o.engine.setGain(getVolumeMultiplier(o.volume, o.muted))
	o.mu.Unlock()

	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.mu.Lock()
	o.muted = muted
	o.engine.setGain(getVolumeMultiplier(o.volume, o.muted))
	o.mu.Unlock()

	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (o *Oto) GetVolume() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
