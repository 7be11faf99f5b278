// ABOUTME: Package playback streams a decoded clip to an output device
// ABOUTME: Real-time callback with try-lock state, throttled and completion observers
// Package playback owns the playback state shared between the device
// callback and the observer registration API.
//
// The callback never blocks. When the state lock is contended the block
// is filled with silence and the cursor does not move.
package playback
