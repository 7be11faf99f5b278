// ABOUTME: WAV packet source
// ABOUTME: Reads PCM WAV data in fixed-size buffers using go-audio/wav
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/lanescope/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavPacketFrames is the number of frames read per packet
const wavPacketFrames = 4096

type wavSource struct {
	decoder *wav.Decoder
	buf     *goaudio.IntBuffer
	rate    int
	chans   int
	depth   int
}

func openWAV(r io.ReadSeeker) (packetSource, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		if err := decoder.Err(); err != nil {
			return nil, fmt.Errorf("failed to read WAV header: %w", err)
		}
		return nil, errors.New("invalid WAV file")
	}

	chans := int(decoder.NumChans)
	rate := int(decoder.SampleRate)

	return &wavSource{
		decoder: decoder,
		buf: &goaudio.IntBuffer{
			Data:   make([]int, wavPacketFrames*max(chans, 1)),
			Format: &goaudio.Format{NumChannels: chans, SampleRate: rate},
		},
		rate:  rate,
		chans: chans,
		depth: int(decoder.BitDepth),
	}, nil
}

func (s *wavSource) SampleRate() int { return s.rate }
func (s *wavSource) Channels() int   { return s.chans }

func (s *wavSource) ReadPacket() ([]float32, error) {
	n, err := s.decoder.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		// WAV has no packet framing; any read failure is an I/O failure
		return nil, fmt.Errorf("failed to read WAV data: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = audio.SampleFromInt(s.buf.Data[i], s.depth)
	}
	return samples, nil
}

func (s *wavSource) Close() error { return nil }
