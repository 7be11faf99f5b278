// ABOUTME: Frame building from the shared clock, spectrum and chart
// ABOUTME: Read-only snapshot of everything a renderer draws for one tick
package render

import (
	"github.com/Resonate-Protocol/lanescope/pkg/chart"
	"github.com/Resonate-Protocol/lanescope/pkg/clock"
	"github.com/Resonate-Protocol/lanescope/pkg/projector"
)

const (
	DefaultWindowMs    = 500
	DefaultTrackHeight = 500
)

// SpectrumSource publishes the latest spectrum
type SpectrumSource interface {
	Latest() []uint32
}

// Note is a visible event placed in its lane
type Note struct {
	Lane     int                `json:"lane"`
	Kind     chart.Kind         `json:"kind"`
	Geometry projector.Geometry `json:"geometry"`
}

// Frame is everything drawn for one tick. Spectrum is shared with the
// analyzer and must not be modified.
type Frame struct {
	TickMs   int64    `json:"tick_ms"`
	Spectrum []uint32 `json:"spectrum,omitempty"`
	Notes    []Note   `json:"notes"`
}

// Builder assembles frames. Spectrum may be nil.
type Builder struct {
	Clock       clock.Clock
	Spectrum    SpectrumSource
	Chart       *chart.Chart
	WindowMs    int64
	TrackHeight float64

	events []chart.HitEvent
}

// NewBuilder creates a builder with default window and track height
func NewBuilder(clk clock.Clock, spectrum SpectrumSource, c *chart.Chart) *Builder {
	return &Builder{
		Clock:       clk,
		Spectrum:    spectrum,
		Chart:       c,
		WindowMs:    DefaultWindowMs,
		TrackHeight: DefaultTrackHeight,
	}
}

// Build snapshots the current tick
func (b *Builder) Build() Frame {
	if b.WindowMs <= 0 {
		b.WindowMs = DefaultWindowMs
	}
	if b.TrackHeight <= 0 {
		b.TrackHeight = DefaultTrackHeight
	}
	if b.events == nil && b.Chart != nil {
		b.events = b.Chart.Events()
	}

	now := b.Clock.NowMs()
	f := Frame{TickMs: now, Notes: []Note{}}
	if b.Spectrum != nil {
		f.Spectrum = b.Spectrum.Latest()
	}

	for _, p := range projector.ProjectChart(b.events, now, b.WindowMs, b.TrackHeight) {
		f.Notes = append(f.Notes, Note{
			Lane:     b.Chart.Lane(p.Event.X),
			Kind:     p.Event.Kind,
			Geometry: p.Geometry,
		})
	}
	return f
}
