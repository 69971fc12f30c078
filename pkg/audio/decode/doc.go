// ABOUTME: Track loader package for file-based music sources
// ABOUTME: Provides MP3, FLAC and raw PCM loaders producing audio.Track
// Package decode loads whole audio files into memory as audio.Track values
// ready to hand to a playback device.
//
// Supports: MP3 (go-mp3), FLAC (mewkiz/flac), raw 16-bit PCM.
//
// Example:
//
//	track, err := decode.Load("song.mp3")
package decode
