// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and Track types and sample conversion functions
// Package audio provides the in-memory audio types shared by the decoders,
// the tone generator and the playback devices.
//
//   - Format: sample rate and channel count of a PCM stream
//   - Track: fully decoded interleaved float32 audio
//
// Example:
//
//	track := &audio.Track{
//	    Format:  audio.Format{SampleRate: 48000, Channels: 2},
//	    Samples: samples,
//	}
//	start := track.FrameAt(12.5)
package audio
