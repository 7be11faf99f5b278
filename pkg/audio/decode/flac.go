// ABOUTME: FLAC packet source
// ABOUTME: Decodes FLAC frame by frame using mewkiz/flac
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/lanescope/pkg/audio"
	"github.com/mewkiz/flac"
)

type flacSource struct {
	stream     *flac.Stream
	sampleRate int
	channels   int
	bitDepth   int
}

func openFLAC(r io.ReadSeeker) (packetSource, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	return &flacSource{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bitDepth:   int(info.BitsPerSample),
	}, nil
}

func (s *flacSource) SampleRate() int { return s.sampleRate }
func (s *flacSource) Channels() int   { return s.channels }

// ReadPacket decodes one FLAC frame
func (s *flacSource) ReadPacket() ([]float32, error) {
	frame, err := s.stream.ParseNext()
	if err != nil {
		return nil, classify(err)
	}

	if len(frame.Subframes) < s.channels {
		return nil, &PacketError{Err: fmt.Errorf("frame has %d subframes, expected %d", len(frame.Subframes), s.channels)}
	}

	blockSize := int(frame.BlockSize)
	samples := make([]float32, 0, blockSize*s.channels)
	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < s.channels; ch++ {
			sub := frame.Subframes[ch].Samples
			if i >= len(sub) {
				return nil, &PacketError{Err: fmt.Errorf("subframe %d short: %d < %d", ch, len(sub), blockSize)}
			}
			samples = append(samples, audio.SampleFromInt(int(sub[i]), s.bitDepth))
		}
	}

	return samples, nil
}

func (s *flacSource) Close() error {
	return s.stream.Close()
}
