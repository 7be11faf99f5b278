// ABOUTME: Playback engine opening a device and installing the fill callback
// ABOUTME: Resamples clips to the device rate before playing them
package playback

import (
	"fmt"
	"log"

	"github.com/Resonate-Protocol/lanescope/pkg/audio"
	"github.com/Resonate-Protocol/lanescope/pkg/audio/output"
	"github.com/Resonate-Protocol/lanescope/pkg/clock"
)

// Tap receives the mono frames of every delivered block. Fill runs on the
// audio thread and must not block.
type Tap interface {
	Fill(frames []float32)
}

// Engine plays clips on devices opened from a backend
type Engine struct {
	backend output.Backend
	clock   *clock.SampleClock
	tap     Tap
}

// Option configures an Engine
type Option func(*Engine)

// WithClock makes the callback advance c instead of a clock created per play
func WithClock(c *clock.SampleClock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithTap hands every delivered block to t
func WithTap(t Tap) Option {
	return func(e *Engine) {
		e.tap = t
	}
}

// New creates an engine over backend
func New(backend output.Backend, opts ...Option) *Engine {
	e := &Engine{backend: backend}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Play opens the default device, resamples clip to its rate and starts
// the stream. Any failure is fatal for this clip.
func (e *Engine) Play(clip *audio.Clip) (*Handle, error) {
	device, err := e.backend.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s output: %w", e.backend.Name(), err)
	}

	rate := device.SampleRate()
	resampled := clip.Resample(rate)
	if resampled != clip {
		log.Printf("Resampled %s: %dHz -> %dHz (%d samples)", clip.Name, clip.SampleRate, rate, len(resampled.Samples))
	}

	clk := e.clock
	if clk == nil {
		clk = clock.NewSampleClock(rate)
	} else if clk.SampleRate() != rate {
		log.Printf("Warning: clock counts at %dHz but device runs at %dHz", clk.SampleRate(), rate)
	}

	h := newHandle(device, newState(resampled.Samples, rate), clk, e.tap)

	if err := device.Start(h.process); err != nil {
		device.Close()
		return nil, fmt.Errorf("failed to start playback: %w", err)
	}

	log.Printf("Playing %s: %d samples at %dHz, %d channels", clip.Name, len(resampled.Samples), rate, device.Channels())
	return h, nil
}
