// ABOUTME: WAV file writer
// ABOUTME: Streams PCM blocks into a RIFF/WAVE file and patches sizes on close
package encode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
)

const wavHeaderSize = 44

// WAVWriter writes interleaved float32 blocks as a PCM WAV file
type WAVWriter struct {
	w        io.WriteSeeker
	encoder  Encoder
	format   audio.Format
	bitDepth int
	written  int64
}

// NewWAV writes a WAV header to w and returns a writer for sample blocks
func NewWAV(w io.WriteSeeker, format audio.Format, bitDepth int) (*WAVWriter, error) {
	encoder, err := NewPCM(bitDepth)
	if err != nil {
		return nil, err
	}
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("invalid format: %d Hz, %d channels", format.SampleRate, format.Channels)
	}

	ww := &WAVWriter{
		w:        w,
		encoder:  encoder,
		format:   format,
		bitDepth: bitDepth,
	}
	if err := ww.writeHeader(); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	return ww, nil
}

// Write appends a block of interleaved samples
func (ww *WAVWriter) Write(samples []float32) error {
	data, err := ww.encoder.Encode(samples)
	if err != nil {
		return err
	}
	n, err := ww.w.Write(data)
	ww.written += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return nil
}

// Close fills in the chunk sizes. It does not close the underlying writer.
func (ww *WAVWriter) Close() error {
	if _, err := ww.w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to header: %w", err)
	}
	if err := ww.writeHeader(); err != nil {
		return fmt.Errorf("failed to update WAV header: %w", err)
	}
	if _, err := ww.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}
	return ww.encoder.Close()
}

func (ww *WAVWriter) writeHeader() error {
	blockAlign := ww.format.Channels * ww.bitDepth / 8
	header := make([]byte, wavHeaderSize)

	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(36+ww.written))
	copy(header[8:], "WAVE")
	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16)
	binary.LittleEndian.PutUint16(header[20:], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:], uint16(ww.format.Channels))
	binary.LittleEndian.PutUint32(header[24:], uint32(ww.format.SampleRate))
	binary.LittleEndian.PutUint32(header[28:], uint32(ww.format.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:], uint16(ww.bitDepth))
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(ww.written))

	_, err := ww.w.Write(header)
	return err
}
