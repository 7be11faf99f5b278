// ABOUTME: Background spectrum analyzer loop
// ABOUTME: Fixed-sleep cadence, publishes the latest spectrum through an atomic pointer
package spectrum

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

// DefaultInterval is the analyzer sleep between spectra
const DefaultInterval = 5 * time.Millisecond

// Mode selects the analysis design
type Mode int

const (
	// ModeIndexed reads the clip buffer at the clock position
	ModeIndexed Mode = iota
	// ModeLive transforms the buffer filled by the audio callback
	ModeLive
)

func (m Mode) String() string {
	switch m {
	case ModeIndexed:
		return "indexed"
	case ModeLive:
		return "live"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a flag value to a Mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "indexed":
		return ModeIndexed, nil
	case "live":
		return ModeLive, nil
	default:
		return 0, fmt.Errorf("unknown analyzer mode: %s", s)
	}
}

// Elapsed reports playback time in seconds
type Elapsed interface {
	Elapsed() float64
}

// Analyzer computes spectra until its context is cancelled
type Analyzer struct {
	mode     Mode
	interval time.Duration
	compute  func() []uint32
	latest   atomic.Pointer[[]uint32]
}

// NewIndexedAnalyzer runs ix at the position reported by clk
func NewIndexedAnalyzer(ix *Indexed, clk Elapsed, interval time.Duration) *Analyzer {
	return newAnalyzer(ModeIndexed, interval, func() []uint32 {
		return ix.Compute(clk.Elapsed())
	})
}

// NewLiveAnalyzer runs a transform over buf
func NewLiveAnalyzer(buf *LiveBuffer, interval time.Duration) *Analyzer {
	live := NewLive(buf)
	return newAnalyzer(ModeLive, interval, live.Compute)
}

func newAnalyzer(mode Mode, interval time.Duration, compute func() []uint32) *Analyzer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Analyzer{mode: mode, interval: interval, compute: compute}
}

// Mode returns the analysis design in use
func (a *Analyzer) Mode() Mode {
	return a.mode
}

// Step computes and publishes one spectrum
func (a *Analyzer) Step() []uint32 {
	s := a.compute()
	a.latest.Store(&s)
	return s
}

// Latest returns the most recent spectrum, or nil before the first step
func (a *Analyzer) Latest() []uint32 {
	if p := a.latest.Load(); p != nil {
		return *p
	}
	return nil
}

// Run computes spectra until ctx is done
func (a *Analyzer) Run(ctx context.Context) {
	log.Printf("Spectrum analyzer started (%s, every %v)", a.mode, a.interval)
	defer log.Printf("Spectrum analyzer stopped")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			a.Step()
			timer.Reset(a.interval)
		}
	}
}
