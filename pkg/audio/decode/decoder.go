// ABOUTME: Track loader entry point
// ABOUTME: Picks a decoder by file extension and returns an in-memory track
package decode

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/songclock/pkg/audio"
)

// PCMFormat is the format assumed for raw .pcm/.raw files
var PCMFormat = audio.Format{SampleRate: 44100, Channels: 2}

// Load decodes a whole audio file into memory
func Load(path string) (*audio.Track, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		track *audio.Track
		err   error
	)

	switch ext {
	case ".mp3":
		track, err = LoadMP3(path)
	case ".flac":
		track, err = LoadFLAC(path)
	case ".pcm", ".raw":
		track, err = LoadPCM(path, PCMFormat)
	default:
		return nil, fmt.Errorf("unsupported track format: %q", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return track, nil
}
