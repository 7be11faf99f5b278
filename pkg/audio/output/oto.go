// ABOUTME: Oto-based audio output implementation
// ABOUTME: Drives the fill callback from oto's pull reader at a configured format
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	defaultOtoSampleRate = 48000
	defaultOtoChannels   = 2
)

// Oto backend using oto library. oto cannot report a device's native
// format, so the context is opened at the configured rate and channels.
type Oto struct {
	sampleRate int
	channels   int
}

// NewOto creates a new Oto backend; zero values fall back to 48kHz stereo
func NewOto(sampleRate, channels int) Backend {
	if sampleRate <= 0 {
		sampleRate = defaultOtoSampleRate
	}
	if channels <= 0 {
		channels = defaultOtoChannels
	}
	return &Oto{sampleRate: sampleRate, channels: channels}
}

func (o *Oto) Name() string { return "oto" }

// Open creates the oto context. oto allows one context per process.
func (o *Oto) Open() (Device, error) {
	op := &oto.NewContextOptions{
		SampleRate:   o.sampleRate,
		ChannelCount: o.channels,
		Format:       oto.FormatFloat32LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, &DeviceError{Op: "init context", Err: fmt.Errorf("failed to create oto context: %w", err)}
	}

	<-readyChan

	log.Printf("Audio output opened: %dHz, %d channels (oto)", o.sampleRate, o.channels)

	return &otoDevice{
		otoCtx:     ctx,
		sampleRate: o.sampleRate,
		channels:   o.channels,
	}, nil
}

type otoDevice struct {
	otoCtx     *oto.Context
	player     *oto.Player
	sampleRate int
	channels   int
	closeOnce  sync.Once
}

func (d *otoDevice) SampleRate() int { return d.sampleRate }
func (d *otoDevice) Channels() int   { return d.channels }

func (d *otoDevice) Start(fill FillFunc) error {
	d.player = d.otoCtx.NewPlayer(&fillReader{fill: fill, channels: d.channels})
	d.player.Play()
	if err := d.player.Err(); err != nil {
		return &DeviceError{Op: "start", Err: err}
	}
	return nil
}

func (d *otoDevice) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.player != nil {
			d.player.Pause()
			err = d.player.Close()
		}
		if suspendErr := d.otoCtx.Suspend(); suspendErr != nil {
			log.Printf("Warning: oto suspend error: %v", suspendErr)
		}
	})
	return err
}

// fillReader adapts a FillFunc to the io.Reader oto pulls from its
// playback goroutine
type fillReader struct {
	fill     FillFunc
	channels int
	block    []float32
}

func (r *fillReader) Read(p []byte) (int, error) {
	frames := len(p) / (4 * r.channels)
	if frames == 0 {
		return 0, nil
	}

	n := frames * r.channels
	if cap(r.block) < n {
		r.block = make([]float32, n)
	}
	block := r.block[:n]
	r.fill(block, r.channels)

	for i, v := range block {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return n * 4, nil
}
