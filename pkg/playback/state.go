// ABOUTME: Playback state shared by the device callback and registration API
// ABOUTME: Cursor, sample buffer and observer lists under one mutex
package playback

import (
	"sync"
)

type state struct {
	mu sync.Mutex

	cursor     int
	samples    []float32
	sampleRate int

	changed   []*Listener
	trigger   int // cursor at the last changed notification
	threshold int

	done  []*Listener
	fired map[*Listener]bool
}

func newState(samples []float32, sampleRate int) *state {
	threshold := sampleRate / 100
	if threshold < 1 {
		threshold = 1
	}
	return &state{
		samples:    samples,
		sampleRate: sampleRate,
		threshold:  threshold,
		fired:      make(map[*Listener]bool),
	}
}

// finished reports whether the cursor reached the end. Caller holds mu.
func (s *state) finished() bool {
	return s.cursor >= len(s.samples)
}

// pendingDone marks and returns the done listeners not yet fired. Caller holds mu.
func (s *state) pendingDone(dst []*Listener) []*Listener {
	for _, l := range s.done {
		if !s.fired[l] {
			s.fired[l] = true
			dst = append(dst, l)
		}
	}
	return dst
}

// advance writes one block and returns the listeners to notify. Caller holds mu.
func (s *state) advance(out []float32, channels int, dst []*Listener) []*Listener {
	frames := len(out) / channels
	for f := 0; f < frames; f++ {
		var v float32
		if s.cursor < len(s.samples) {
			v = s.samples[s.cursor]
			s.cursor++
		}
		frame := out[f*channels : f*channels+channels]
		for c := range frame {
			frame[c] = v
		}
	}
	// trailing partial frame
	silence(out[frames*channels:])

	if s.finished() {
		dst = s.pendingDone(dst)
	}
	if s.cursor-s.trigger >= s.threshold {
		dst = append(dst, s.changed...)
		s.trigger = s.cursor
	}
	return dst
}

func silence(out []float32) {
	for i := range out {
		out[i] = 0
	}
}
