// ABOUTME: Chart model for timed hit events
// ABOUTME: Immutable HitEvent values plus header metadata and lane mapping
package chart

import (
	"fmt"
	"math"
)

// PlayfieldWidth is the osu! playfield width that x positions span
const PlayfieldWidth = 512

// DefaultKeys is the lane count when the chart does not name one
const DefaultKeys = 4

// Kind distinguishes single-hit events from events with a duration
type Kind int

const (
	Instant Kind = iota
	Held
)

func (k Kind) String() string {
	switch k {
	case Instant:
		return "instant"
	case Held:
		return "held"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// HitEvent is one timed object. EndTimeMs is only meaningful for Held
// events and is never before TimeMs.
type HitEvent struct {
	Kind      Kind
	X         uint32
	Y         uint32
	TimeMs    int64
	EndTimeMs int64
}

// TimingPoint is one line of the [TimingPoints] section
type TimingPoint struct {
	TimeMs      int64
	BeatLength  float64
	Meter       int
	Uninherited bool
}

// BPM returns beats per minute for uninherited points, 0 otherwise
func (tp TimingPoint) BPM() float64 {
	if !tp.Uninherited || tp.BeatLength <= 0 {
		return 0
	}
	return 60000 / tp.BeatLength
}

// Metadata holds the header fields the player reads
type Metadata struct {
	AudioFilename string
	Mode          int

	Title   string
	Artist  string
	Creator string
	Version string

	HPDrainRate       float64
	CircleSize        float64
	OverallDifficulty float64
	ApproachRate      float64
	SliderTickRate    float64

	Background string
}

// Chart is a parsed chart. It is read-only after Parse returns.
type Chart struct {
	FormatVersion int
	Metadata      Metadata
	TimingPoints  []TimingPoint

	events []HitEvent
	keys   int
}

// Events returns a copy of the events in file order
func (c *Chart) Events() []HitEvent {
	out := make([]HitEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Len returns the number of events
func (c *Chart) Len() int {
	return len(c.events)
}

// Keys returns the lane count
func (c *Chart) Keys() int {
	return c.keys
}

// Lane maps an x position to a lane in [0, Keys())
func (c *Chart) Lane(x uint32) int {
	lane := int(math.Floor(float64(x) * float64(c.keys) / PlayfieldWidth))
	if lane < 0 {
		return 0
	}
	if lane >= c.keys {
		return c.keys - 1
	}
	return lane
}

// LengthMs returns the time the last event ends
func (c *Chart) LengthMs() int64 {
	var end int64
	for _, ev := range c.events {
		t := ev.TimeMs
		if ev.Kind == Held {
			t = ev.EndTimeMs
		}
		if t > end {
			end = t
		}
	}
	return end
}
