// ABOUTME: Packet-streaming importer shared by all formats
// ABOUTME: Applies the skip-bad-packet / abort-on-I/O policy and the stride down-mix
package decode

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/lanescope/pkg/audio"
)

// maxBadPackets bounds consecutive undecodable packets before the import
// is treated as a broken container
const maxBadPackets = 64

// ErrUnsupportedFormat is returned for file extensions with no decoder
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Error is a fatal import failure for a file
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PacketError marks a single packet that could not be decoded. The importer
// skips it and continues with the next packet.
type PacketError struct {
	Err error
}

func (e *PacketError) Error() string {
	return fmt.Sprintf("bad packet: %v", e.Err)
}

func (e *PacketError) Unwrap() error {
	return e.Err
}

// packetSource yields interleaved packets from one container format
type packetSource interface {
	SampleRate() int
	Channels() int
	// ReadPacket returns the next packet of interleaved samples. It returns
	// io.EOF at end of stream and *PacketError for a skippable packet.
	ReadPacket() ([]float32, error)
	Close() error
}

type openFunc func(r io.ReadSeeker) (packetSource, error)

var formats = map[string]openFunc{
	".mp3":  openMP3,
	".flac": openFLAC,
	".wav":  openWAV,
	".ogg":  openOpus,
	".opus": openOpus,
}

// Importer decodes files into clips
type Importer struct {
	// Progress, if set, is called after each packet with the bytes consumed
	// from the file so far and the file size
	Progress func(read, total int64)
}

// Import decodes the file at path with default settings
func Import(path string) (*audio.Clip, error) {
	var im Importer
	return im.Import(path)
}

// Import decodes the file at path into a mono clip
func (im *Importer) Import(path string) (*audio.Clip, error) {
	ext := strings.ToLower(filepath.Ext(path))
	open, ok := formats[ext]
	if !ok {
		return nil, &Error{Path: path, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("failed to open audio file: %w", err)}
	}
	defer f.Close()

	var total int64
	if info, err := f.Stat(); err == nil {
		total = info.Size()
	}
	pr := &progressReader{rs: f, total: total, fn: im.Progress}

	src, err := open(pr)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	defer src.Close()

	samples, err := readAll(src, pr.report)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	log.Printf("Imported %s: %d samples at %d Hz (%d channels down-mixed)",
		name, len(samples), src.SampleRate(), src.Channels())

	return &audio.Clip{
		Name:       name,
		Samples:    samples,
		SampleRate: src.SampleRate(),
	}, nil
}

// readAll drains src packet by packet into one mono buffer
func readAll(src packetSource, progress func()) ([]float32, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	if src.SampleRate() <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", src.SampleRate())
	}

	var mono []float32
	bad := 0
	skipped := 0

	for {
		packet, err := src.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			var pe *PacketError
			if !errors.As(err, &pe) {
				return nil, err
			}

			bad++
			skipped++
			if bad > maxBadPackets {
				return nil, fmt.Errorf("too many consecutive bad packets: %w", err)
			}
			log.Printf("Skipping undecodable packet: %v", err)
			continue
		}

		bad = 0
		mono = append(mono, audio.DownmixStride(packet, channels)...)
		if progress != nil {
			progress()
		}
	}

	if skipped > 0 {
		log.Printf("Import finished with %d skipped packets", skipped)
	}

	return mono, nil
}

// classify turns a decoder error into EOF, a fatal I/O error, or a
// skippable packet error
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return io.EOF
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, fs.ErrClosed) {
		return err
	}

	return &PacketError{Err: err}
}

// progressReader counts bytes consumed from the underlying file
type progressReader struct {
	rs    io.ReadSeeker
	pos   int64
	total int64
	fn    func(read, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.rs.Read(b)
	p.pos += int64(n)
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.rs.Seek(offset, whence)
	if err == nil {
		p.pos = pos
	}
	return pos, err
}

func (p *progressReader) report() {
	if p.fn != nil {
		p.fn(p.pos, p.total)
	}
}
