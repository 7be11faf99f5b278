// ABOUTME: Tests for the chart parser
// ABOUTME: Covers metadata, instant and held events, lanes and malformed lines
package chart

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleChart = `osu file format v14

[General]
AudioFilename: audio.mp3
Mode: 3

[Metadata]
Title:Test Song
Artist: Someone
Creator: mapper
Version: Hard

[Difficulty]
HPDrainRate:8
CircleSize:7
OverallDifficulty:8.5
ApproachRate:5
SliderTickRate:1

[Events]
// Background and Video events
0,0,"bg.jpg",0,0

[TimingPoints]
120,500,4,2,0,60,1,0
620,-100,4,2,0,60,0,0

[HitObjects]
36,192,1000,1,0,0:0:0:0:
256,192,1500,128,0,2000:0:0:0:0:
475,192,2500,5,0,0:0:0:0:
`

func TestParseMetadata(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleChart))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := c.Metadata
	if c.FormatVersion != 14 {
		t.Errorf("expected format version 14, got %d", c.FormatVersion)
	}
	if m.AudioFilename != "audio.mp3" {
		t.Errorf("expected audio.mp3, got %q", m.AudioFilename)
	}
	if m.Mode != 3 {
		t.Errorf("expected mode 3, got %d", m.Mode)
	}
	if m.Title != "Test Song" || m.Artist != "Someone" || m.Creator != "mapper" || m.Version != "Hard" {
		t.Errorf("unexpected metadata: %+v", m)
	}
	if m.OverallDifficulty != 8.5 {
		t.Errorf("expected OD 8.5, got %v", m.OverallDifficulty)
	}
	if m.Background != "bg.jpg" {
		t.Errorf("expected bg.jpg, got %q", m.Background)
	}
	if c.Keys() != 7 {
		t.Errorf("expected 7 keys, got %d", c.Keys())
	}
}

func TestParseEvents(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleChart))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []HitEvent{
		{Kind: Instant, X: 36, Y: 192, TimeMs: 1000},
		{Kind: Held, X: 256, Y: 192, TimeMs: 1500, EndTimeMs: 2000},
		{Kind: Instant, X: 475, Y: 192, TimeMs: 2500},
	}

	events := c.Events()
	if len(events) != len(expected) {
		t.Fatalf("expected %d events, got %d", len(expected), len(events))
	}
	for i := range expected {
		if events[i] != expected[i] {
			t.Errorf("event %d: expected %+v, got %+v", i, expected[i], events[i])
		}
	}

	if c.LengthMs() != 2500 {
		t.Errorf("expected length 2500, got %d", c.LengthMs())
	}
}

func TestEventsReturnsCopy(t *testing.T) {
	c, _ := Parse(strings.NewReader(sampleChart))

	events := c.Events()
	events[0].TimeMs = 99999

	if c.Events()[0].TimeMs != 1000 {
		t.Error("expected chart events to be unaffected by caller mutation")
	}
}

func TestParseTimingPoints(t *testing.T) {
	c, _ := Parse(strings.NewReader(sampleChart))

	if len(c.TimingPoints) != 2 {
		t.Fatalf("expected 2 timing points, got %d", len(c.TimingPoints))
	}
	if bpm := c.TimingPoints[0].BPM(); bpm != 120 {
		t.Errorf("expected 120 BPM, got %v", bpm)
	}
	if c.TimingPoints[1].Uninherited {
		t.Error("expected second point inherited")
	}
	if c.TimingPoints[1].BPM() != 0 {
		t.Error("expected inherited point to report 0 BPM")
	}
}

func TestHoldFlagWithoutColonIsInstant(t *testing.T) {
	c, err := Parse(strings.NewReader("[HitObjects]\n64,192,100,128,0,2000\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Events()[0].Kind != Instant {
		t.Error("expected instant event when params carry no end time")
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		sentinel error
	}{
		{"too few fields", "64,192,100,1,0", ErrTooFewFields},
		{"non-numeric x", "abc,192,100,1,0,0:0:0:0:", nil},
		{"negative time", "64,192,-5,1,0,0:0:0:0:", nil},
		{"non-numeric end", "64,192,100,128,0,x:0:0:0:0:", nil},
		{"end before start", "64,192,100,128,0,50:0:0:0:0:", ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "osu file format v14\n\n[HitObjects]\n" + tt.line + "\n"
			_, err := Parse(strings.NewReader(input))

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Line != 4 {
				t.Errorf("expected line 4, got %d", perr.Line)
			}
			if perr.Text != tt.line {
				t.Errorf("expected text %q, got %q", tt.line, perr.Text)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestDefaultKeys(t *testing.T) {
	c, err := Parse(strings.NewReader("[General]\nAudioFilename: a.ogg\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Keys() != DefaultKeys {
		t.Errorf("expected %d keys, got %d", DefaultKeys, c.Keys())
	}
	if c.Len() != 0 {
		t.Errorf("expected no events, got %d", c.Len())
	}
}

func TestLane(t *testing.T) {
	c := &Chart{keys: 4}

	tests := []struct {
		x        uint32
		expected int
	}{
		{0, 0},
		{64, 0},
		{127, 0},
		{128, 1},
		{192, 1},
		{320, 2},
		{448, 3},
		{511, 3},
		{512, 3},
		{9999, 3},
	}

	for _, tt := range tests {
		if lane := c.Lane(tt.x); lane != tt.expected {
			t.Errorf("x=%d: expected lane %d, got %d", tt.x, tt.expected, lane)
		}
	}
}

func TestUnknownSectionIgnored(t *testing.T) {
	input := "[Colours]\nCombo1 : 255,0,0\n[Mystery]\nwhatever\n[HitObjects]\n64,192,100,1,0,0:0:0:0:\n"
	c, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 event, got %d", c.Len())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.osu")
	if err := os.WriteFile(path, []byte(sampleChart), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 events, got %d", c.Len())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.osu")); err == nil {
		t.Error("expected error for missing file")
	}
}
