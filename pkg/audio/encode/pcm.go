// ABOUTME: PCM audio encoder
// ABOUTME: Encodes float32 samples to 16-bit or 24-bit little-endian PCM bytes
package encode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
)

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	bitDepth int
}

// NewPCM creates a new PCM encoder
func NewPCM(bitDepth int) (Encoder, error) {
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}

	return &PCMEncoder{
		bitDepth: bitDepth,
	}, nil
}

// Encode converts float32 samples to PCM bytes
func (e *PCMEncoder) Encode(samples []float32) ([]byte, error) {
	bytesPerSample := e.bitDepth / 8
	output := make([]byte, len(samples)*bytesPerSample)

	for i, sample := range samples {
		v := quantize(sample, e.bitDepth)
		if e.bitDepth == 24 {
			output[i*3] = byte(v)
			output[i*3+1] = byte(v >> 8)
			output[i*3+2] = byte(v >> 16)
		} else {
			binary.LittleEndian.PutUint16(output[i*2:], uint16(int16(v)))
		}
	}
	return output, nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}

// quantize scales a sample to a signed integer of the given bit depth
func quantize(sample float32, bitDepth int) int32 {
	max := float64(int32(1)<<(bitDepth-1)) - 1
	return int32(math.Round(float64(audio.Clamp(sample)) * max))
}
