// ABOUTME: Shared millisecond clock for playback, analysis and projection
// ABOUTME: Sample-driven clock advanced by the audio callback plus a wall-clock fallback
package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock reports a monotonically non-decreasing tick in milliseconds
type Clock interface {
	NowMs() int64
}

// SampleClock counts frames delivered to the output device. The audio
// callback is the only writer; readers on any goroutine see a value that
// never goes backwards.
type SampleClock struct {
	frames     atomic.Int64
	sampleRate int64
}

// NewSampleClock creates a clock for a stream at sampleRate Hz
func NewSampleClock(sampleRate int) *SampleClock {
	if sampleRate <= 0 {
		sampleRate = 1
	}
	return &SampleClock{sampleRate: int64(sampleRate)}
}

// Advance moves the clock forward by n frames. Negative values are ignored.
func (c *SampleClock) Advance(n int) {
	if n <= 0 {
		return
	}
	c.frames.Add(int64(n))
}

// Frames returns the number of frames delivered so far
func (c *SampleClock) Frames() int64 {
	return c.frames.Load()
}

// SampleRate returns the rate the clock counts at
func (c *SampleClock) SampleRate() int {
	return int(c.sampleRate)
}

// NowMs returns elapsed playback time in milliseconds
func (c *SampleClock) NowMs() int64 {
	return c.frames.Load() * 1000 / c.sampleRate
}

// Elapsed returns elapsed playback time in seconds
func (c *SampleClock) Elapsed() float64 {
	return float64(c.frames.Load()) / float64(c.sampleRate)
}

// TimerClock ticks with the monotonic wall clock from its first use.
// Used where no audio stream drives time, such as offline inspection.
type TimerClock struct {
	once  sync.Once
	start time.Time
	now   func() time.Time
}

// NewTimerClock creates a wall-clock tick source
func NewTimerClock() *TimerClock {
	return &TimerClock{now: time.Now}
}

// NowMs returns milliseconds since the first call
func (c *TimerClock) NowMs() int64 {
	c.once.Do(func() { c.start = c.now() })
	return c.now().Sub(c.start).Milliseconds()
}

// Fixed is a clock stuck at one tick
type Fixed int64

// NowMs returns the fixed tick
func (f Fixed) NowMs() int64 {
	return int64(f)
}
