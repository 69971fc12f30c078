// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Converts loaded tracks to the playback device rate
package resample

import "github.com/Resonate-Protocol/songclock/pkg/audio"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts interleaved input samples at inputRate into output at
// outputRate. Returns the number of output samples written.
func (r *Resampler) Resample(input []float32, output []float32) int {
	if len(input) == 0 || r.channels <= 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0
	for outIdx < outputFrames {
		inputIdx := int(r.position)
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := float32(r.position - float64(inputIdx))
		for ch := 0; ch < r.channels; ch++ {
			s1 := input[inputIdx*r.channels+ch]
			s2 := input[(inputIdx+1)*r.channels+ch]
			output[outIdx*r.channels+ch] = s1*(1-frac) + s2*frac
		}

		outIdx++
		r.position += r.ratio
	}

	// Keep the fractional part for the next chunk
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// Track returns a copy of t at the given sample rate. Tracks already at that
// rate are returned as-is.
func Track(t *audio.Track, sampleRate int) *audio.Track {
	if t == nil || t.Format.SampleRate == sampleRate || sampleRate <= 0 {
		return t
	}

	r := New(t.Format.SampleRate, sampleRate, t.Format.Channels)
	out := make([]float32, r.OutputSamplesNeeded(len(t.Samples)))
	n := r.Resample(t.Samples, out)

	return &audio.Track{
		Format:  audio.Format{SampleRate: sampleRate, Channels: t.Format.Channels},
		Samples: out[:n],
	}
}
