// ABOUTME: Handle to a playing clip
// ABOUTME: Owns the output device, exposes cursor and clock, manages observers
package playback

import (
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/lanescope/pkg/audio/output"
	"github.com/Resonate-Protocol/lanescope/pkg/clock"
)

// Handle controls one playing clip. Dropping it without Close leaves the
// device running.
type Handle struct {
	device output.Device
	state  *state
	clock  *clock.SampleClock
	tap    Tap

	cursor atomic.Int64
	doneCh chan struct{}

	// audio thread only
	notify []*Listener
	mono   []float32

	closeOnce sync.Once
	closeErr  error
}

func newHandle(device output.Device, st *state, clk *clock.SampleClock, tap Tap) *Handle {
	h := &Handle{
		device: device,
		state:  st,
		clock:  clk,
		tap:    tap,
		doneCh: make(chan struct{}),
	}
	h.OnDone(NewListener(func() { close(h.doneCh) }))
	return h
}

// process is the device fill callback
func (h *Handle) process(out []float32, channels int) {
	if channels <= 0 {
		return
	}

	if !h.state.mu.TryLock() {
		silence(out)
		return
	}
	notify := h.state.advance(out, channels, h.notify[:0])
	cursor := h.state.cursor
	h.state.mu.Unlock()

	frames := len(out) / channels
	h.clock.Advance(frames)
	h.cursor.Store(int64(cursor))

	if h.tap != nil {
		if cap(h.mono) < frames {
			h.mono = make([]float32, frames)
		}
		mono := h.mono[:frames]
		for f := range mono {
			mono[f] = out[f*channels]
		}
		h.tap.Fill(mono)
	}

	for _, l := range notify {
		l.call()
	}
	h.notify = notify[:0]
}

// OnDone registers l to run once when playback reaches the end. If it
// already has, l runs now on the caller's goroutine. A listener that has
// fired never fires again, even after Remove and re-registration.
func (h *Handle) OnDone(l *Listener) {
	st := h.state
	st.mu.Lock()
	if contains(st.done, l) {
		st.mu.Unlock()
		return
	}
	st.done = append(st.done, l)
	fire := st.finished() && !st.fired[l]
	if fire {
		st.fired[l] = true
	}
	st.mu.Unlock()

	if fire {
		l.call()
	}
}

// OnChanged registers l to run on the audio thread each time the cursor
// has advanced by a hundredth of a second of samples
func (h *Handle) OnChanged(l *Listener) {
	st := h.state
	st.mu.Lock()
	defer st.mu.Unlock()
	if !contains(st.changed, l) {
		st.changed = append(st.changed, l)
	}
}

// OnDoneFunc registers fn as a done observer and returns its listener
func (h *Handle) OnDoneFunc(fn func()) *Listener {
	l := NewListener(fn)
	h.OnDone(l)
	return l
}

// OnChangedFunc registers fn as a changed observer and returns its listener
func (h *Handle) OnChangedFunc(fn func()) *Listener {
	l := NewListener(fn)
	h.OnChanged(l)
	return l
}

// Remove unsubscribes l from both observer lists
func (h *Handle) Remove(l *Listener) {
	st := h.state
	st.mu.Lock()
	defer st.mu.Unlock()
	st.changed = without(st.changed, l)
	st.done = without(st.done, l)
}

// Clock returns the clock the callback advances
func (h *Handle) Clock() *clock.SampleClock { return h.clock }

// Samples returns the resampled buffer. It must not be modified.
func (h *Handle) Samples() []float32 { return h.state.samples }

// SampleRate returns the device rate the buffer plays at
func (h *Handle) SampleRate() int { return h.state.sampleRate }

// Channels returns the device channel count
func (h *Handle) Channels() int { return h.device.Channels() }

// Cursor returns the index of the next sample to play
func (h *Handle) Cursor() int { return int(h.cursor.Load()) }

// Done is closed when playback reaches the end of the buffer
func (h *Handle) Done() <-chan struct{} { return h.doneCh }

// Close stops the stream. Safe to call more than once.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.closeErr = h.device.Close()
	})
	return h.closeErr
}
