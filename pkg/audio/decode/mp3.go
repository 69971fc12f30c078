// ABOUTME: MP3 track loader
// ABOUTME: Decodes MP3 files to float32 samples with go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// LoadMP3 decodes an MP3 file
func LoadMP3(path string) (*audio.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeMP3(f)
}

// DecodeMP3 decodes an MP3 stream. go-mp3 always produces 16-bit
// little-endian stereo.
func DecodeMP3(r io.Reader) (*audio.Track, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	numSamples := len(data) / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}

	return &audio.Track{
		Format:  audio.Format{SampleRate: decoder.SampleRate(), Channels: 2},
		Samples: samples,
	}, nil
}
