// ABOUTME: Calibration tone generator
// ABOUTME: Renders a chord on every beat of a fixed-tempo note pattern
package tone

import (
	"math"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
)

const (
	// DefaultTempo is the calibration tempo in beats per minute
	DefaultTempo = 120.0

	// DefaultSustain is how long each note sounds, in seconds
	DefaultSustain = 0.1

	// DefaultAmplitude is the peak amplitude of each chord partial
	DefaultAmplitude = 0.15

	DefaultMeasures        = 16
	DefaultNotesPerMeasure = 4
	DefaultSampleRate      = 44100
	DefaultChannels        = 2

	// fadeFraction is the share of the sustain spent fading out
	fadeFraction = 0.125

	// tailSeconds of silence follow the last note
	tailSeconds = 1.0
)

// DefaultChord is A2, F5 and A5
var DefaultChord = []float64{110.00, 698.46, 880.00}

// Config holds generator configuration
type Config struct {
	Tempo           float64
	Sustain         float64
	Amplitude       float64
	Measures        int
	NotesPerMeasure int
	SampleRate      int
	Channels        int
	Chord           []float64
}

// Generator renders the calibration pattern. It holds no playback state.
type Generator struct {
	config Config
}

// New creates a generator, filling unset fields with defaults
func New(config Config) *Generator {
	if config.Tempo <= 0 {
		config.Tempo = DefaultTempo
	}
	if config.Sustain <= 0 {
		config.Sustain = DefaultSustain
	}
	if config.Amplitude <= 0 {
		config.Amplitude = DefaultAmplitude
	}
	if config.Measures <= 0 {
		config.Measures = DefaultMeasures
	}
	if config.NotesPerMeasure <= 0 {
		config.NotesPerMeasure = DefaultNotesPerMeasure
	}
	if config.SampleRate <= 0 {
		config.SampleRate = DefaultSampleRate
	}
	if config.Channels <= 0 {
		config.Channels = DefaultChannels
	}
	if len(config.Chord) == 0 {
		config.Chord = DefaultChord
	}
	return &Generator{config: config}
}

// Config returns the effective configuration
func (g *Generator) Config() Config {
	return g.config
}

// BeatInterval returns the time between beats in seconds
func (g *Generator) BeatInterval() float64 {
	return 60.0 / g.config.Tempo
}

// NoteTimes returns the note onsets in seconds. The pattern starts after
// one empty measure.
func (g *Generator) NoteTimes() []float64 {
	measure := g.BeatInterval() * 4
	perNote := measure / float64(g.config.NotesPerMeasure)

	notes := make([]float64, 0, g.config.Measures*g.config.NotesPerMeasure)
	start := measure
	for m := 0; m < g.config.Measures; m++ {
		for n := 0; n < g.config.NotesPerMeasure; n++ {
			notes = append(notes, start+float64(n)*perNote)
		}
		start += measure
	}
	return notes
}

// Render produces a track with the chord sounding at every onset
func (g *Generator) Render(notes []float64) *audio.Track {
	cfg := g.config
	format := audio.Format{SampleRate: cfg.SampleRate, Channels: cfg.Channels}

	length := tailSeconds
	if len(notes) > 0 {
		length += notes[len(notes)-1]
	}
	frames := int(math.Ceil(length * float64(cfg.SampleRate)))
	samples := make([]float32, frames*cfg.Channels)

	sustainFrames := int(math.Ceil(cfg.Sustain * float64(cfg.SampleRate)))
	fadeFrames := cfg.Sustain * fadeFraction * float64(cfg.SampleRate)
	fadeStart := float64(sustainFrames) - fadeFrames

	for _, note := range notes {
		start := int(math.Round(note * float64(cfg.SampleRate)))
		for k := 0; k < sustainFrames; k++ {
			frame := start + k
			if frame < 0 || frame >= frames {
				continue
			}

			amplitude := cfg.Amplitude
			if float64(k) >= fadeStart {
				amplitude *= math.Max(0, 1-(float64(k)-fadeStart+1)/fadeFrames)
			}

			var value float64
			for _, freq := range cfg.Chord {
				value += math.Sin(2*math.Pi*freq*float64(k)/float64(cfg.SampleRate)) * amplitude
			}

			for ch := 0; ch < cfg.Channels; ch++ {
				i := frame*cfg.Channels + ch
				samples[i] = audio.Clamp(samples[i] + float32(value))
			}
		}
	}

	return &audio.Track{Format: format, Samples: samples}
}

// Track renders the default note pattern
func (g *Generator) Track() *audio.Track {
	return g.Render(g.NoteTimes())
}
