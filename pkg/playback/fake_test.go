// ABOUTME: Fake output backend for playback tests
// ABOUTME: Captures the fill callback so tests can drive blocks by hand
package playback

import (
	"errors"

	"github.com/Resonate-Protocol/lanescope/pkg/audio/output"
)

type fakeBackend struct {
	rate     int
	channels int
	openErr  error
	startErr error
	device   *fakeDevice
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Open() (output.Device, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.device = &fakeDevice{rate: b.rate, channels: b.channels, startErr: b.startErr}
	return b.device, nil
}

type fakeDevice struct {
	rate     int
	channels int
	startErr error
	fill     output.FillFunc
	closed   int
}

func (d *fakeDevice) SampleRate() int { return d.rate }
func (d *fakeDevice) Channels() int   { return d.channels }

func (d *fakeDevice) Start(fill output.FillFunc) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.fill = fill
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed++
	return nil
}

// pull runs one callback of the given frame count and returns the block
func (d *fakeDevice) pull(frames int) []float32 {
	out := make([]float32, frames*d.channels)
	for i := range out {
		out[i] = 9 // garbage the callback must overwrite
	}
	d.fill(out, d.channels)
	return out
}

var errFakeStart = errors.New("fake start failure")

type recordingTap struct {
	blocks [][]float32
}

func (r *recordingTap) Fill(frames []float32) {
	r.blocks = append(r.blocks, append([]float32(nil), frames...))
}
