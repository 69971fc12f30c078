// ABOUTME: Tests for audio types
// ABOUTME: Tests track length math and sample conversions
package audio

import (
	"math"
	"testing"
)

func TestTrackFramesAndDuration(t *testing.T) {
	track := &Track{
		Format:  Format{SampleRate: 100, Channels: 2},
		Samples: make([]float32, 400),
	}

	if track.Frames() != 200 {
		t.Errorf("expected 200 frames, got %d", track.Frames())
	}
	if track.Duration() != 2.0 {
		t.Errorf("expected duration 2.0, got %f", track.Duration())
	}
}

func TestNilTrack(t *testing.T) {
	var track *Track
	if track.Frames() != 0 || track.Duration() != 0 || track.FrameAt(1) != 0 {
		t.Error("expected zero values for nil track")
	}
}

func TestTrackFrameAt(t *testing.T) {
	track := &Track{
		Format:  Format{SampleRate: 1000, Channels: 1},
		Samples: make([]float32, 5000),
	}

	tests := []struct {
		position float64
		expected int
	}{
		{0, 0},
		{-1, 0},
		{1.5, 1500},
		{12.34, 5000}, // past the end clamps
	}

	for _, tt := range tests {
		if got := track.FrameAt(tt.position); got != tt.expected {
			t.Errorf("FrameAt(%f): expected %d, got %d", tt.position, tt.expected, got)
		}
	}
}

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		input    int16
		expected float32
	}{
		{0, 0},
		{-32768, -1},
		{16384, 0.5},
	}

	for _, tt := range tests {
		if got := SampleFromInt16(tt.input); got != tt.expected {
			t.Errorf("SampleFromInt16(%d): expected %f, got %f", tt.input, tt.expected, got)
		}
	}
}

func TestSampleFromInt32(t *testing.T) {
	if got := SampleFromInt32(-8388608, 24); got != -1 {
		t.Errorf("expected -1 for 24-bit minimum, got %f", got)
	}
	if got := SampleFromInt32(4194304, 24); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Errorf("expected 0.5, got %f", got)
	}
	if got := SampleFromInt32(1, 0); got != 0 {
		t.Errorf("expected 0 for invalid bit depth, got %f", got)
	}
}

func TestFormatFrameDuration(t *testing.T) {
	if d := (Format{SampleRate: 100}).FrameDuration(); d != 0.01 {
		t.Errorf("expected 0.01, got %f", d)
	}
	if d := (Format{}).FrameDuration(); d != 0 {
		t.Errorf("expected 0 for zero rate, got %f", d)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(1.5) != 1 || Clamp(-1.5) != -1 || Clamp(0.25) != 0.25 {
		t.Error("Clamp returned unexpected values")
	}
}

func TestRemix(t *testing.T) {
	mono := &Track{Format: Format{SampleRate: 100, Channels: 1}, Samples: []float32{0.1, 0.2}}

	stereo := mono.Remix(2)
	expected := []float32{0.1, 0.1, 0.2, 0.2}
	if stereo.Format.Channels != 2 || len(stereo.Samples) != len(expected) {
		t.Fatalf("unexpected remix result %+v", stereo)
	}
	for i := range expected {
		if stereo.Samples[i] != expected[i] {
			t.Errorf("sample %d: expected %f, got %f", i, expected[i], stereo.Samples[i])
		}
	}

	back := stereo.Remix(1)
	if back.Frames() != 2 || back.Samples[1] != 0.2 {
		t.Errorf("unexpected downmix %+v", back)
	}

	if mono.Remix(1) != mono {
		t.Error("expected same track when channel count matches")
	}
}
