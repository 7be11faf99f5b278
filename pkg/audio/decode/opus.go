// ABOUTME: Ogg Opus packet source
// ABOUTME: Decodes Ogg Opus files with libopusfile via hraban/opus
package decode

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/hraban/opus.v2"
)

const (
	// libopusfile always decodes at 48kHz
	opusSampleRate = 48000

	// 120ms at 48kHz, the largest Opus frame
	opusPacketFrames = 5760
)

type opusSource struct {
	stream   *opus.Stream
	channels int
	buf      []float32
}

func openOpus(r io.ReadSeeker) (packetSource, error) {
	br := bufio.NewReader(r)

	channels, err := opusChannels(br)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(br)
	if err != nil {
		return nil, fmt.Errorf("failed to open Ogg Opus stream: %w", err)
	}

	return &opusSource{
		stream:   stream,
		channels: channels,
		buf:      make([]float32, opusPacketFrames*channels),
	}, nil
}

// opusChannels reads the channel count from the OpusHead identification
// header on the first Ogg page without consuming it
func opusChannels(br *bufio.Reader) (int, error) {
	head, err := br.Peek(128)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("failed to read Ogg header: %w", err)
	}

	idx := bytes.Index(head, []byte("OpusHead"))
	// magic(8) + version(1) + channel count(1)
	if idx < 0 || idx+10 > len(head) {
		return 0, errors.New("missing OpusHead header")
	}

	channels := int(head[idx+9])
	if channels == 0 {
		return 0, errors.New("OpusHead reports zero channels")
	}
	return channels, nil
}

func (s *opusSource) SampleRate() int { return opusSampleRate }
func (s *opusSource) Channels() int   { return s.channels }

func (s *opusSource) ReadPacket() ([]float32, error) {
	// n is samples per channel
	n, err := s.stream.ReadFloat32(s.buf)
	if err != nil {
		return nil, classify(err)
	}

	samples := make([]float32, n*s.channels)
	copy(samples, s.buf[:n*s.channels])
	return samples, nil
}

func (s *opusSource) Close() error {
	return s.stream.Close()
}
