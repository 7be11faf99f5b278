// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo to open the default device at its native format
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// Malgo backend using malgo/miniaudio library
type Malgo struct{}

// NewMalgo creates a new Malgo backend
func NewMalgo() Backend {
	return &Malgo{}
}

func (m *Malgo) Name() string { return "malgo" }

// Open initializes miniaudio and the default playback device. Sample rate
// and channel count are left at zero so miniaudio picks the device's
// native format.
func (m *Malgo) Open() (Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, &DeviceError{Op: "init context", Err: err}
	}

	infos, err := ctx.Context.Devices(malgo.Playback)
	if err != nil {
		freeContext(ctx)
		return nil, &DeviceError{Op: "enumerate", Err: err}
	}
	if len(infos) == 0 {
		freeContext(ctx)
		return nil, ErrNoDevice
	}

	d := &malgoDevice{ctx: ctx}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 0
	deviceConfig.SampleRate = 0
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			d.dataCallback(pOutputSample, frameCount)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		freeContext(ctx)
		return nil, &DeviceError{Op: "init device", Err: err}
	}

	d.device = device
	d.sampleRate = int(device.SampleRate())
	d.channels = int(device.PlaybackChannels())

	format := device.PlaybackFormat()
	if d.sampleRate == 0 || d.channels == 0 || format != malgo.FormatF32 {
		log.Printf("Unsupported device format: %dHz, %d channels, %s", d.sampleRate, d.channels, formatName(format))
		device.Uninit()
		freeContext(ctx)
		return nil, ErrNoSupportedConfig
	}

	log.Printf("Audio output opened: %dHz, %d channels (malgo)", d.sampleRate, d.channels)

	return d, nil
}

type malgoDevice struct {
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate int
	channels   int

	fill    atomic.Pointer[FillFunc]
	scratch []float32 // touched only by the audio thread

	closeOnce sync.Once
}

func (d *malgoDevice) SampleRate() int { return d.sampleRate }
func (d *malgoDevice) Channels() int   { return d.channels }

func (d *malgoDevice) Start(fill FillFunc) error {
	d.fill.Store(&fill)
	if err := d.device.Start(); err != nil {
		return &DeviceError{Op: "start", Err: err}
	}
	return nil
}

// dataCallback is called by malgo to fill the output buffer
func (d *malgoDevice) dataCallback(pOutput []byte, frameCount uint32) {
	n := int(frameCount) * d.channels
	if cap(d.scratch) < n {
		d.scratch = make([]float32, n)
	}
	block := d.scratch[:n]

	if fill := d.fill.Load(); fill != nil {
		(*fill)(block, d.channels)
	} else {
		silence(block)
	}

	for i, v := range block {
		binary.LittleEndian.PutUint32(pOutput[i*4:], math.Float32bits(v))
	}
}

func (d *malgoDevice) Close() error {
	d.closeOnce.Do(func() {
		if err := d.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		d.device.Uninit()
		freeContext(d.ctx)
	})
	return nil
}

func freeContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	ctx.Free()
}

// formatName returns human-readable format name
func formatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatS24:
		return "S24"
	case malgo.FormatS32:
		return "S32"
	case malgo.FormatF32:
		return "F32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}
