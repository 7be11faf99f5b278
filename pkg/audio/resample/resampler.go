// ABOUTME: Linear resampler for mono float32 audio
// ABOUTME: Interpolates between consecutive samples at the output/input ratio
package resample

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	step       float64 // input samples advanced per output sample
}

// New creates a new resampler
func New(inputRate, outputRate int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		step:       float64(inputRate) / float64(outputRate),
	}
}

// OutputLen returns the number of samples Resample produces for n input samples
func (r *Resampler) OutputLen(n int) int {
	if r.inputRate <= 0 {
		return 0
	}
	return int(int64(n) * int64(r.outputRate) / int64(r.inputRate))
}

// Resample converts the whole input buffer. The interpolation window starts
// on the first two input samples and slides forward as the read position
// crosses each input index; past the end the last sample is held.
func (r *Resampler) Resample(input []float32) []float32 {
	out := make([]float32, r.OutputLen(len(input)))
	if len(input) == 0 || len(out) == 0 {
		return out
	}

	// Seed the window from the first two samples
	idx := 0
	prev := input[0]
	next := prev
	if len(input) > 1 {
		next = input[1]
	}

	pos := 0.0
	for i := range out {
		for int(pos) > idx {
			idx++
			prev = next
			if idx+1 < len(input) {
				next = input[idx+1]
			}
		}

		frac := float32(pos - float64(idx))
		out[i] = prev + (next-prev)*frac
		pos = float64(i+1) * r.step
	}

	return out
}
