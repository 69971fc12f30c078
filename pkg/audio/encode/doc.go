// ABOUTME: Audio encoder package for exporting rendered audio
// ABOUTME: Provides the Encoder interface, PCM encoding and a WAV writer
// Package encode turns rendered float32 audio into bytes.
//
// Supports: PCM (16-bit and 24-bit little-endian) and WAV files wrapping it.
//
// Example:
//
//	w, err := encode.NewWAV(file, format, 16)
//	err = w.Write(block)
//	err = w.Close()
package encode
