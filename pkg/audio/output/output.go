// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for callback-driven playback backends
package output

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevice means the system has no playback device
	ErrNoDevice = errors.New("no output device available")

	// ErrNoSupportedConfig means the device reported no usable format
	ErrNoSupportedConfig = errors.New("no supported output configuration")
)

// DeviceError is a fatal failure while opening or starting a device
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// FillFunc writes one block of interleaved float32 samples. out holds
// len(out)/channels frames. It runs on the audio thread.
type FillFunc func(out []float32, channels int)

// Backend opens playback devices
type Backend interface {
	// Name identifies the backend in logs
	Name() string

	// Open opens the default playback device
	Open() (Device, error)
}

// Device is an opened playback device
type Device interface {
	// SampleRate returns the device sample rate in Hz
	SampleRate() int

	// Channels returns the device channel count
	Channels() int

	// Start installs fill and starts the stream
	Start(fill FillFunc) error

	// Close stops the stream and releases the device
	Close() error
}

// New returns the backend with the given name. sampleRate and channels
// only apply to backends that cannot query the device format.
func New(name string, sampleRate, channels int) (Backend, error) {
	switch name {
	case "", "malgo":
		return NewMalgo(), nil
	case "oto":
		return NewOto(sampleRate, channels), nil
	case "portaudio":
		return NewPortAudio(), nil
	default:
		return nil, fmt.Errorf("unknown output backend: %s", name)
	}
}

// silence zeroes a block
func silence(out []float32) {
	for i := range out {
		out[i] = 0
	}
}
