// ABOUTME: Live-fill spectrum buffer written by the audio callback
// ABOUTME: Try-lock fill, brief-lock snapshot, in-place gonum FFT on a private copy
package spectrum

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// LiveBuffer is a ring of complex samples. The audio side writes with a
// try-lock and drops its block on contention.
type LiveBuffer struct {
	mu   sync.Mutex
	data []complex128
	pos  int

	dropped uint64 // guarded by mu
}

// NewLiveBuffer creates a buffer of size complex samples
func NewLiveBuffer(size int) (*LiveBuffer, error) {
	if !isPowerOfTwo(size) {
		return nil, ErrInvalidSize
	}
	return &LiveBuffer{data: make([]complex128, size)}, nil
}

// Size returns the buffer length
func (b *LiveBuffer) Size() int {
	return len(b.data)
}

// Fill writes one real sample per frame at the rolling position. It
// returns false without writing when the buffer is locked.
func (b *LiveBuffer) Fill(frames []float32) bool {
	if !b.mu.TryLock() {
		return false
	}
	for _, v := range frames {
		b.data[b.pos] = complex(float64(v), 0)
		b.pos++
		if b.pos == len(b.data) {
			b.pos = 0
		}
	}
	b.mu.Unlock()
	return true
}

// Snapshot copies the buffer into dst, reallocating when dst is too small
func (b *LiveBuffer) Snapshot(dst []complex128) []complex128 {
	if cap(dst) < len(b.data) {
		dst = make([]complex128, len(b.data))
	}
	dst = dst[:len(b.data)]

	b.mu.Lock()
	copy(dst, b.data)
	b.mu.Unlock()
	return dst
}

// Tap adapts the buffer to the playback tap, which has no use for the
// contention result
type Tap struct {
	Buffer *LiveBuffer
}

// Fill forwards frames to the buffer
func (t Tap) Fill(frames []float32) {
	t.Buffer.Fill(frames)
}

// Live transforms snapshots of a LiveBuffer
type Live struct {
	buf  *LiveBuffer
	fft  *fourier.CmplxFFT
	work []complex128
}

// NewLive creates a transform over buf
func NewLive(buf *LiveBuffer) *Live {
	return &Live{
		buf: buf,
		fft: fourier.NewCmplxFFT(buf.Size()),
	}
}

// Compute snapshots the buffer, transforms it in place and returns the
// squared magnitudes of the first half of the bins. Not safe for
// concurrent use.
func (l *Live) Compute() []uint32 {
	l.work = l.buf.Snapshot(l.work)
	l.fft.Coefficients(l.work, l.work)

	out := make([]uint32, len(l.work)/2)
	for i := range out {
		m := squaredMagnitude(l.work[i])
		if m > math.MaxUint32 {
			m = math.MaxUint32
		}
		out[i] = uint32(m)
	}
	return out
}
