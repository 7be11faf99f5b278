//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"
)

// PortAudio backend (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio backend
func NewPortAudio() Backend {
	return &PortAudio{}
}

func (p *PortAudio) Name() string { return "portaudio" }

// Open always fails without the portaudio build tag
func (p *PortAudio) Open() (Device, error) {
	return nil, &DeviceError{Op: "open", Err: fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")}
}
