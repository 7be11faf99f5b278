// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the Clip type, the stride down-mix and sample conversions
// Package audio provides the decoded audio clip used by playback and analysis.
//
// A Clip is always mono float32 in [-1, 1]. Decoders down-mix by taking the
// first channel of every interleaved frame (DownmixStride), and playback
// resamples the clip to the device rate before installing its callback.
//
// Example:
//
//	clip, err := decode.Import("song.mp3")
//	clip = clip.Resample(48000)
package audio
