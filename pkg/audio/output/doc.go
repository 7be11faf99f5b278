// ABOUTME: Audio output package for callback-driven playback devices
// ABOUTME: Provides the Backend/Device interfaces and malgo, oto, PortAudio backends
// Package output opens the default system audio device and drives a
// real-time fill callback.
//
// A Backend opens a Device at the device's native sample rate and channel
// count where the backend can query them (malgo, PortAudio) or at a
// configured format (oto). Device.Start installs a FillFunc that the audio
// thread calls for every block; the callback must never block.
//
// Example:
//
//	dev, err := output.NewMalgo().Open()
//	err = dev.Start(func(out []float32, channels int) {
//	    // write len(out)/channels frames
//	})
//	defer dev.Close()
package output
