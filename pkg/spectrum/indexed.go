// ABOUTME: Time-indexed spectrum over the clip buffer
// ABOUTME: Hann window and real FFT from go-dsp, loudest bin normalized to 800
package spectrum

import (
	"errors"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// DefaultSize is the default FFT window length
const DefaultSize = 1024

// Peak is the value the loudest bin maps to after normalization
const Peak = 800

// ErrInvalidSize means the window length is not a positive power of two
var ErrInvalidSize = errors.New("fft size must be a power of two of at least 2")

// Indexed computes spectra from a fixed buffer at a given playback time
type Indexed struct {
	samples    []float32
	sampleRate float64
	size       int
	hann       []float64
	frame      []float64
}

// NewIndexed analyzes samples played at sampleRate with windows of size.
// samples must not change while the analyzer uses it.
func NewIndexed(samples []float32, sampleRate, size int) (*Indexed, error) {
	if !isPowerOfTwo(size) {
		return nil, ErrInvalidSize
	}
	return &Indexed{
		samples:    samples,
		sampleRate: float64(sampleRate),
		size:       size,
		hann:       window.Hann(size),
		frame:      make([]float64, size),
	}, nil
}

// Size returns the window length
func (x *Indexed) Size() int {
	return x.size
}

// Compute returns size/2 normalized bins for the window starting at
// elapsed seconds. Not safe for concurrent use.
func (x *Indexed) Compute(elapsed float64) []uint32 {
	offset := int(math.Floor(elapsed * x.sampleRate))
	for i := range x.frame {
		idx := offset + i
		if idx >= 0 && idx < len(x.samples) {
			x.frame[i] = float64(x.samples[idx]) * x.hann[i]
		} else {
			x.frame[i] = 0
		}
	}

	coeffs := fft.FFTReal(x.frame)

	bins := make([]uint64, x.size/2)
	var peak uint64
	for i := range bins {
		bins[i] = uint64(squaredMagnitude(coeffs[i]))
		if bins[i] > peak {
			peak = bins[i]
		}
	}

	return normalize(bins, peak)
}

// normalize scales bins so peak maps to Peak
func normalize(bins []uint64, peak uint64) []uint32 {
	if peak < 1 {
		peak = 1
	}
	out := make([]uint32, len(bins))
	for i, b := range bins {
		out[i] = uint32(b * Peak / peak)
	}
	return out
}

func squaredMagnitude(c complex128) float64 {
	re, im := real(c), imag(c)
	return re*re + im*im
}

func isPowerOfTwo(n int) bool {
	return n > 1 && n&(n-1) == 0
}
