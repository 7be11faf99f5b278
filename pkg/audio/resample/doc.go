// ABOUTME: Mono resampling package using linear interpolation
// ABOUTME: Converts float32 audio between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation between consecutive samples. The output length
// is floor(len * outputRate / inputRate).
//
// Example:
//
//	r := resample.New(44100, 48000)
//	out := r.Resample(samples)
package resample
