// ABOUTME: Raw PCM track loader
// ABOUTME: Decodes 16-bit little-endian interleaved PCM to float32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
)

// LoadPCM reads a raw 16-bit little-endian PCM file
func LoadPCM(path string, format audio.Format) (*audio.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodePCM(data, format)
}

// DecodePCM converts 16-bit little-endian bytes to a track
func DecodePCM(data []byte, format audio.Format) (*audio.Track, error) {
	if format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid pcm format: %dHz %dch", format.SampleRate, format.Channels)
	}

	numSamples := len(data) / 2
	numSamples -= numSamples % format.Channels

	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}

	return &audio.Track{Format: format, Samples: samples}, nil
}
