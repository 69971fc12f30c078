// ABOUTME: FLAC track loader
// ABOUTME: Decodes FLAC files frame by frame with mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
	"github.com/mewkiz/flac"
)

// LoadFLAC decodes a FLAC file
func LoadFLAC(path string) (*audio.Track, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flac stream: %w", err)
	}
	defer stream.Close()

	return decodeFLAC(stream)
}

// DecodeFLAC decodes a FLAC stream
func DecodeFLAC(r io.Reader) (*audio.Track, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flac stream: %w", err)
	}
	return decodeFLAC(stream)
}

func decodeFLAC(stream *flac.Stream) (*audio.Track, error) {
	channels := int(stream.Info.NChannels)
	bitDepth := int(stream.Info.BitsPerSample)

	if channels == 0 {
		return nil, fmt.Errorf("flac stream has no channels")
	}

	samples := make([]float32, 0, int(stream.Info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac frame decode error: %w", err)
		}

		blockSize := len(frame.Subframes[0].Samples)
		for i := 0; i < blockSize; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.SampleFromInt32(frame.Subframes[ch].Samples[i], bitDepth))
			}
		}
	}

	return &audio.Track{
		Format:  audio.Format{SampleRate: int(stream.Info.SampleRate), Channels: channels},
		Samples: samples,
	}, nil
}
