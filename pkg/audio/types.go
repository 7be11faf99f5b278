// ABOUTME: Audio type definitions
// ABOUTME: Defines the mono Clip produced by decoding and sample conversions
package audio

import (
	"github.com/Resonate-Protocol/lanescope/pkg/audio/resample"
)

const (
	// Full-scale divisors for integer PCM
	Scale16Bit = 32768.0   // 2^15
	Scale24Bit = 8388608.0 // 2^23
)

// Clip is a decoded mono audio buffer. A Clip is immutable once produced:
// nothing writes to Samples after decode returns.
type Clip struct {
	Name       string
	Samples    []float32 // mono, [-1, 1]
	SampleRate int
}

// Duration returns the clip length in milliseconds
func (c *Clip) Duration() int64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return int64(len(c.Samples)) * 1000 / int64(c.SampleRate)
}

// Resample returns a clip at targetRate using linear interpolation.
// Resampling to the clip's own rate returns the clip itself.
func (c *Clip) Resample(targetRate int) *Clip {
	if targetRate == c.SampleRate || targetRate <= 0 || c.SampleRate <= 0 {
		return c
	}

	r := resample.New(c.SampleRate, targetRate)
	return &Clip{
		Name:       c.Name,
		Samples:    r.Resample(c.Samples),
		SampleRate: targetRate,
	}
}

// SampleFromInt16 converts a 16-bit PCM sample to [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(float64(sample) / Scale16Bit)
}

// SampleFromInt converts a signed PCM sample of the given bit depth to [-1, 1)
func SampleFromInt(sample int, bitDepth int) float32 {
	if bitDepth <= 1 {
		return 0
	}
	scale := float64(int64(1) << uint(bitDepth-1))
	return float32(float64(sample) / scale)
}

// DownmixStride reduces interleaved samples to mono by taking every Nth
// sample starting at index 0. It does not average channels.
func DownmixStride(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(interleaved))
		copy(out, interleaved)
		return out
	}

	out := make([]float32, 0, (len(interleaved)+channels-1)/channels)
	for i := 0; i < len(interleaved); i += channels {
		out = append(out, interleaved[i])
	}
	return out
}
