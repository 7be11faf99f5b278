// ABOUTME: Package spectrum computes magnitude spectra of the playing audio
// ABOUTME: Time-indexed analysis over the clip buffer and a live-fill buffer fed by the callback
// Package spectrum turns a short slice of the playing audio into a
// magnitude-per-bin vector.
//
// Indexed reads a window from the read-only clip buffer at the clock
// position, applies a Hann window and normalizes the loudest bin to 800.
// LiveBuffer is filled from the audio callback and transformed as is.
// Analyzer runs either one on its own cadence and publishes the latest
// result without locks.
package spectrum
