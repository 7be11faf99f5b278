// ABOUTME: Projects chart events onto a scrolling lookahead window
// ABOUTME: Pure time-to-geometry mapping for instant markers and held bars
package projector

import (
	"github.com/Resonate-Protocol/lanescope/pkg/chart"
)

const (
	// MarkerWidth is the horizontal extent of every event, growing left of x
	MarkerWidth = -64
	// MarkerHeight is the vertical extent of an instant marker, growing up from y
	MarkerHeight = -32
)

// Geometry is an anchored rectangle. W and H may be negative, in which
// case the rectangle extends left or up from (X, Y).
type Geometry struct {
	X, Y float64
	W, H float64
}

// Rect is a rectangle with non-negative extents
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Bounds returns the rectangle with negative extents folded into the origin
func (g Geometry) Bounds() Rect {
	r := Rect{X: g.X, Y: g.Y, Width: g.W, Height: g.H}
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Project maps ev at nowMs onto a track of trackHeight pixels showing the
// next windowMs milliseconds. The bottom of the track is now. windowMs
// must be positive.
func Project(ev chart.HitEvent, nowMs, windowMs int64, trackHeight float64) (Geometry, bool) {
	x := float64(ev.X)
	now := float64(nowMs)
	window := float64(windowMs)

	switch ev.Kind {
	case chart.Held:
		if !(nowMs+windowMs > ev.TimeMs && nowMs < ev.EndTimeMs) {
			return Geometry{}, false
		}

		head := float64(ev.EndTimeMs) - (now + window)
		tail := float64(ev.TimeMs) - now

		top := 0.0
		if head < 0 {
			top = -head / window * trackHeight
		}

		var height float64
		if tail <= 0 {
			height = trackHeight - top
		} else {
			height = (trackHeight - tail/window*trackHeight) - top
		}

		return Geometry{X: x, Y: top, W: MarkerWidth, H: height}, true

	default:
		if !(nowMs < ev.TimeMs && ev.TimeMs <= nowMs+windowMs) {
			return Geometry{}, false
		}

		y := trackHeight - (float64(ev.TimeMs)-now)/window*trackHeight
		return Geometry{X: x, Y: y, W: MarkerWidth, H: MarkerHeight}, true
	}
}

// Projected is a visible event with its geometry
type Projected struct {
	Event    chart.HitEvent
	Geometry Geometry
}

// ProjectChart projects every visible event in chart order
func ProjectChart(events []chart.HitEvent, nowMs, windowMs int64, trackHeight float64) []Projected {
	var out []Projected
	for _, ev := range events {
		if g, ok := Project(ev, nowMs, windowMs, trackHeight); ok {
			out = append(out, Projected{Event: ev, Geometry: g})
		}
	}
	return out
}
