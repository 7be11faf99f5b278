//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Opens a callback stream on the default output device at its native format
package output

import (
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio backend
type PortAudio struct{}

// NewPortAudio creates a new PortAudio backend
func NewPortAudio() Backend {
	return &PortAudio{}
}

func (p *PortAudio) Name() string { return "portaudio" }

// Open initializes PortAudio and queries the default output device
func (p *PortAudio) Open() (Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, &DeviceError{Op: "initialize", Err: err}
	}

	info, err := portaudio.DefaultOutputDevice()
	if err != nil || info == nil {
		portaudio.Terminate()
		return nil, ErrNoDevice
	}

	rate := int(info.DefaultSampleRate)
	channels := info.MaxOutputChannels
	if channels > 2 {
		channels = 2
	}
	if rate <= 0 || channels <= 0 {
		portaudio.Terminate()
		return nil, ErrNoSupportedConfig
	}

	log.Printf("Audio output opened: %dHz, %d channels (portaudio: %s)", rate, channels, info.Name)

	return &portAudioDevice{sampleRate: rate, channels: channels}, nil
}

type portAudioDevice struct {
	stream     *portaudio.Stream
	sampleRate int
	channels   int
	closeOnce  sync.Once
}

func (d *portAudioDevice) SampleRate() int { return d.sampleRate }
func (d *portAudioDevice) Channels() int   { return d.channels }

func (d *portAudioDevice) Start(fill FillFunc) error {
	channels := d.channels
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(d.sampleRate), 0, func(out []float32) {
		fill(out, channels)
	})
	if err != nil {
		return &DeviceError{Op: "open stream", Err: err}
	}

	d.stream = stream
	if err := stream.Start(); err != nil {
		return &DeviceError{Op: "start", Err: err}
	}
	return nil
}

func (d *portAudioDevice) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.stream != nil {
			if stopErr := d.stream.Stop(); stopErr != nil {
				log.Printf("Warning: portaudio stop error: %v", stopErr)
			}
			err = d.stream.Close()
		}
		if termErr := portaudio.Terminate(); termErr != nil && err == nil {
			err = termErr
		}
	})
	return err
}
