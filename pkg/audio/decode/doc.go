// ABOUTME: Audio import package for multiple container support
// ABOUTME: Streams a file in packets and produces a mono audio.Clip
// Package decode imports encoded audio files into mono clips.
//
// Supports: MP3 (go-mp3), FLAC (mewkiz/flac), WAV (go-audio/wav) and
// Ogg Opus (hraban/opus).
//
// Each file is streamed in fixed-size packets. Every packet is decoded to
// interleaved samples and down-mixed by taking the first sample of every
// frame. A packet that fails to decode is logged and skipped; an I/O or
// container failure aborts the import.
//
// Example:
//
//	clip, err := decode.Import("song.mp3")
//	if err != nil {
//	    log.Fatalf("failed to import audio: %v", err)
//	}
package decode
