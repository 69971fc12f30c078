// ABOUTME: Tests for raw PCM loading
// ABOUTME: Tests 16-bit decoding, frame alignment and format validation
package decode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
)

func TestDecodePCM16Bit(t *testing.T) {
	format := audio.Format{SampleRate: 48000, Channels: 2}

	// 0x4000 = 16384 -> 0.5, 0xC000 = -16384 -> -0.5
	input := []byte{0x00, 0x40, 0x00, 0xC0}
	track, err := DecodePCM(input, format)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(track.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(track.Samples))
	}
	if track.Samples[0] != 0.5 {
		t.Errorf("expected 0.5, got %f", track.Samples[0])
	}
	if track.Samples[1] != -0.5 {
		t.Errorf("expected -0.5, got %f", track.Samples[1])
	}
}

func TestDecodePCMDropsPartialFrame(t *testing.T) {
	format := audio.Format{SampleRate: 48000, Channels: 2}

	// Three 16-bit samples: the last one is half a stereo frame
	track, err := DecodePCM(make([]byte, 6), format)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if track.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", track.Frames())
	}
}

func TestDecodePCMInvalidFormat(t *testing.T) {
	_, err := DecodePCM([]byte{0, 0}, audio.Format{})
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestLoadPCMFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.pcm")
	if err := os.WriteFile(path, make([]byte, 44100*4), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	track, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if track.Duration() != 1.0 {
		t.Errorf("expected 1s track, got %f", track.Duration())
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("song.ogg")
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.flac")); err == nil {
		t.Fatal("expected error for missing flac file")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatal("expected error for missing mp3 file")
	}
}
