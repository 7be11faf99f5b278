// ABOUTME: Audio output interface tests
// ABOUTME: Verifies backend selection, error types and the oto fill adapter
package output

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestBackendsImplementBackend(t *testing.T) {
	var _ Backend = (*Malgo)(nil)
	var _ Backend = (*Oto)(nil)
	var _ Backend = (*PortAudio)(nil)
}

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"", "malgo"},
		{"malgo", "malgo"},
		{"oto", "oto"},
		{"portaudio", "portaudio"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			b, err := New(tt.name, 0, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Name() != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, b.Name())
			}
		})
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New("jack", 0, 0); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewOtoDefaults(t *testing.T) {
	o := NewOto(0, 0).(*Oto)
	if o.sampleRate != 48000 || o.channels != 2 {
		t.Errorf("expected 48000Hz stereo defaults, got %dHz %dch", o.sampleRate, o.channels)
	}
}

func TestDeviceErrorUnwrap(t *testing.T) {
	err := &DeviceError{Op: "start", Err: ErrNoSupportedConfig}
	if !errors.Is(err, ErrNoSupportedConfig) {
		t.Error("expected DeviceError to unwrap to its cause")
	}
	if err.Error() != "audio device start: no supported output configuration" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestFillReaderEncodesFloat32(t *testing.T) {
	calls := 0
	r := &fillReader{
		channels: 2,
		fill: func(out []float32, channels int) {
			calls++
			if channels != 2 {
				t.Errorf("expected 2 channels, got %d", channels)
			}
			for i := range out {
				out[i] = float32(i) * 0.25
			}
		},
	}

	// 3 stereo frames plus 2 stray bytes
	p := make([]byte, 3*2*4+2)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 24 {
		t.Errorf("expected 24 bytes, got %d", n)
	}
	if calls != 1 {
		t.Errorf("expected one fill call, got %d", calls)
	}

	for i := 0; i < 6; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if v != float32(i)*0.25 {
			t.Errorf("sample %d: expected %v, got %v", i, float32(i)*0.25, v)
		}
	}
}

func TestFillReaderShortBuffer(t *testing.T) {
	r := &fillReader{channels: 2, fill: func(out []float32, channels int) {
		t.Error("fill should not be called for a sub-frame buffer")
	}}

	n, err := r.Read(make([]byte, 7))
	if n != 0 || err != nil {
		t.Errorf("expected 0, nil; got %d, %v", n, err)
	}
}

func TestPortAudioStubFails(t *testing.T) {
	// Only meaningful without the portaudio tag; with it Open talks to hardware
	if _, ok := NewPortAudio().(*PortAudio); !ok {
		t.Fatal("expected *PortAudio")
	}
}

func TestSilence(t *testing.T) {
	block := []float32{1, 2, 3}
	silence(block)
	for i, v := range block {
		if v != 0 {
			t.Errorf("sample %d not silenced: %v", i, v)
		}
	}
}
