// ABOUTME: Tests for audio types
// ABOUTME: Tests clip resampling, stride down-mix and sample conversion
package audio

import "testing"

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected float32
	}{
		{"zero", 0, 0},
		{"half", 16384, 0.5},
		{"negative half", -16384, -0.5},
		{"min", -32768, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestSampleFromInt(t *testing.T) {
	if got := SampleFromInt(1<<22, 24); got != 0.5 {
		t.Errorf("24-bit half scale: expected 0.5, got %v", got)
	}
	if got := SampleFromInt(-128, 8); got != -1 {
		t.Errorf("8-bit min: expected -1, got %v", got)
	}
	if got := SampleFromInt(5, 0); got != 0 {
		t.Errorf("invalid bit depth: expected 0, got %v", got)
	}
}

func TestDownmixStrideTakesFirstChannel(t *testing.T) {
	interleaved := []float32{0.1, 0.9, 0.2, 0.8, 0.3, 0.7}

	mono := DownmixStride(interleaved, 2)

	expected := []float32{0.1, 0.2, 0.3}
	if len(mono) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(mono))
	}
	for i := range expected {
		if mono[i] != expected[i] {
			t.Errorf("sample %d: expected %v, got %v", i, expected[i], mono[i])
		}
	}
}

func TestDownmixStridePartialFrame(t *testing.T) {
	// A trailing partial frame still contributes its first sample
	mono := DownmixStride([]float32{1, 2, 3, 4, 5, 6, 7}, 3)

	expected := []float32{1, 4, 7}
	if len(mono) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(mono))
	}
	for i := range expected {
		if mono[i] != expected[i] {
			t.Errorf("sample %d: expected %v, got %v", i, expected[i], mono[i])
		}
	}
}

func TestDownmixStrideMonoCopies(t *testing.T) {
	in := []float32{1, 2}
	out := DownmixStride(in, 1)
	out[0] = 9
	if in[0] != 1 {
		t.Error("mono down-mix should not alias the input")
	}
}

func TestResampleSameRateIsIdentity(t *testing.T) {
	clip := &Clip{Name: "tone", Samples: []float32{0.1, -0.2, 0.3, -0.4}, SampleRate: 48000}

	out := clip.Resample(48000)

	if len(out.Samples) != len(clip.Samples) {
		t.Fatalf("expected %d samples, got %d", len(clip.Samples), len(out.Samples))
	}
	for i := range clip.Samples {
		if out.Samples[i] != clip.Samples[i] {
			t.Errorf("sample %d: expected %v, got %v", i, clip.Samples[i], out.Samples[i])
		}
	}
	if out.SampleRate != 48000 {
		t.Errorf("expected rate 48000, got %d", out.SampleRate)
	}
}

func TestResampleLength(t *testing.T) {
	samples := make([]float32, 44100)
	clip := &Clip{Name: "ramp", Samples: samples, SampleRate: 44100}

	out := clip.Resample(48000)

	if len(out.Samples) != 48000 {
		t.Errorf("expected 48000 samples, got %d", len(out.Samples))
	}
	if out.SampleRate != 48000 {
		t.Errorf("expected rate 48000, got %d", out.SampleRate)
	}
	if out.Name != "ramp" {
		t.Errorf("expected name to carry over, got %q", out.Name)
	}
	if len(clip.Samples) != 44100 {
		t.Error("source clip was modified")
	}
}

func TestClipDuration(t *testing.T) {
	clip := &Clip{Samples: make([]float32, 1500), SampleRate: 1000}
	if d := clip.Duration(); d != 1500 {
		t.Errorf("expected 1500ms, got %d", d)
	}

	empty := &Clip{}
	if d := empty.Duration(); d != 0 {
		t.Errorf("expected 0ms for zero rate, got %d", d)
	}
}
