// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats and in-memory tracks
package audio

import "math"

// Format describes a PCM stream
type Format struct {
	SampleRate int
	Channels   int
}

// FrameDuration returns the duration of one frame in seconds
func (f Format) FrameDuration() float64 {
	if f.SampleRate <= 0 {
		return 0
	}
	return 1.0 / float64(f.SampleRate)
}

// Track is a fully decoded piece of audio held in memory. Samples are
// interleaved float32 values in [-1, 1].
type Track struct {
	Format  Format
	Samples []float32
}

// Frames returns the number of frames in the track
func (t *Track) Frames() int {
	if t == nil || t.Format.Channels <= 0 {
		return 0
	}
	return len(t.Samples) / t.Format.Channels
}

// Duration returns the track length in seconds
func (t *Track) Duration() float64 {
	if t == nil || t.Format.SampleRate <= 0 {
		return 0
	}
	return float64(t.Frames()) / float64(t.Format.SampleRate)
}

// FrameAt converts a position in seconds to a frame index, clamped to the track
func (t *Track) FrameAt(position float64) int {
	if t == nil || position <= 0 {
		return 0
	}
	frame := int(math.Round(position * float64(t.Format.SampleRate)))
	if frame > t.Frames() {
		frame = t.Frames()
	}
	return frame
}

// Remix returns the track with the given channel count. Output channel c
// takes input channel c modulo the input channel count.
func (t *Track) Remix(channels int) *Track {
	if t == nil || channels <= 0 || t.Format.Channels == channels {
		return t
	}

	src := t.Format.Channels
	frames := t.Frames()
	samples := make([]float32, frames*channels)
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			samples[f*channels+c] = t.Samples[f*src+c%src]
		}
	}

	return &Track{
		Format:  Format{SampleRate: t.Format.SampleRate, Channels: channels},
		Samples: samples,
	}
}

// SampleFromInt16 converts a 16-bit sample to float32
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768.0
}

// SampleFromInt32 converts a sample of the given bit depth to float32
func SampleFromInt32(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	scale := float64(int64(1) << uint(bitDepth-1))
	return float32(float64(sample) / scale)
}

// Clamp limits a sample to [-1, 1]
func Clamp(sample float32) float32 {
	if sample > 1 {
		return 1
	}
	if sample < -1 {
		return -1
	}
	return sample
}
