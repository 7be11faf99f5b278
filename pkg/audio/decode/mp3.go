// ABOUTME: MP3 packet source
// ABOUTME: Decodes MP3 to interleaved float samples using go-mp3
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/lanescope/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// mp3PacketBytes is the PCM packet size; a multiple of one stereo 16-bit frame
const mp3PacketBytes = 4096

type mp3Source struct {
	decoder *mp3.Decoder
	buf     []byte
	eof     bool
}

func openMP3(r io.ReadSeeker) (packetSource, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	return &mp3Source{
		decoder: decoder,
		buf:     make([]byte, mp3PacketBytes),
	}, nil
}

// SampleRate returns the stream rate
func (s *mp3Source) SampleRate() int { return s.decoder.SampleRate() }

// Channels is always 2: go-mp3 outputs stereo 16-bit PCM
func (s *mp3Source) Channels() int { return 2 }

func (s *mp3Source) ReadPacket() ([]float32, error) {
	if s.eof {
		return nil, io.EOF
	}

	n, err := io.ReadFull(s.decoder, s.buf)
	if err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			// Short final packet
			s.eof = true
		default:
			return nil, classify(err)
		}
	}

	// Drop a trailing partial sample
	numSamples := n / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(s.buf[i*2:])))
	}

	return samples, nil
}

func (s *mp3Source) Close() error { return nil }
