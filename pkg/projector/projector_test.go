// ABOUTME: Tests for the lookahead projection
// ABOUTME: Instant visibility boundaries, held bar clipping and bounds normalization
package projector

import (
	"math"
	"testing"

	"github.com/Resonate-Protocol/lanescope/pkg/chart"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestProjectInstant(t *testing.T) {
	ev := chart.HitEvent{Kind: chart.Instant, X: 256, TimeMs: 300}

	tests := []struct {
		name    string
		now     int64
		visible bool
		y       float64
	}{
		{"approaching", 0, true, 200},
		{"at window edge", -200, true, 0},
		{"beyond window", -201, false, 0},
		{"at now is gone", 300, false, 0},
		{"just before", 299, true, 499},
		{"past", 400, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := Project(ev, tt.now, 500, 500)
			if ok != tt.visible {
				t.Fatalf("expected visible=%v, got %v", tt.visible, ok)
			}
			if !ok {
				return
			}
			if !almostEqual(g.Y, tt.y) {
				t.Errorf("expected y %v, got %v", tt.y, g.Y)
			}
			if g.X != 256 || g.W != MarkerWidth || g.H != MarkerHeight {
				t.Errorf("unexpected marker geometry: %+v", g)
			}
		})
	}
}

func TestProjectHeld(t *testing.T) {
	tests := []struct {
		name    string
		start   int64
		end     int64
		now     int64
		visible bool
		top     float64
		height  float64
	}{
		// onset approaching, tail beyond the window
		{"entering", 100, 600, 0, true, 0, 400},
		// whole interval inside the window
		{"inside", 100, 400, 0, true, 100, 300},
		// being held, tail beyond the window
		{"held full", 100, 900, 200, true, 0, 500},
		// being held, tail inside the window
		{"leaving", 100, 400, 200, true, 300, 200},
		{"onset outside window", 600, 900, 0, false, 0, 0},
		{"onset at window edge", 500, 900, 0, false, 0, 0},
		{"ended", 100, 400, 400, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := chart.HitEvent{Kind: chart.Held, X: 64, TimeMs: tt.start, EndTimeMs: tt.end}
			g, ok := Project(ev, tt.now, 500, 500)
			if ok != tt.visible {
				t.Fatalf("expected visible=%v, got %v", tt.visible, ok)
			}
			if !ok {
				return
			}
			if !almostEqual(g.Y, tt.top) {
				t.Errorf("expected top %v, got %v", tt.top, g.Y)
			}
			if !almostEqual(g.H, tt.height) {
				t.Errorf("expected height %v, got %v", tt.height, g.H)
			}
			if g.W != MarkerWidth {
				t.Errorf("expected width %d, got %v", MarkerWidth, g.W)
			}
		})
	}
}

func TestProjectHeldScalesWithTrackHeight(t *testing.T) {
	ev := chart.HitEvent{Kind: chart.Held, TimeMs: 100, EndTimeMs: 400}
	g, ok := Project(ev, 0, 500, 1000)
	if !ok {
		t.Fatal("expected visible")
	}
	if !almostEqual(g.Y, 200) || !almostEqual(g.H, 600) {
		t.Errorf("expected top 200 height 600, got %+v", g)
	}
}

func TestBounds(t *testing.T) {
	g := Geometry{X: 100, Y: 200, W: MarkerWidth, H: MarkerHeight}
	r := g.Bounds()

	expected := Rect{X: 36, Y: 168, Width: 64, Height: 32}
	if r != expected {
		t.Errorf("expected %+v, got %+v", expected, r)
	}

	pos := Geometry{X: 1, Y: 2, W: 3, H: 4}.Bounds()
	if pos != (Rect{X: 1, Y: 2, Width: 3, Height: 4}) {
		t.Errorf("expected positive extents unchanged, got %+v", pos)
	}
}

func TestProjectChartKeepsOrderAndSkipsHidden(t *testing.T) {
	events := []chart.HitEvent{
		{Kind: chart.Instant, X: 1, TimeMs: 50},
		{Kind: chart.Instant, X: 2, TimeMs: 5000},
		{Kind: chart.Held, X: 3, TimeMs: 10, EndTimeMs: 700},
		{Kind: chart.Instant, X: 4, TimeMs: 0},
	}

	out := ProjectChart(events, 0, 500, 500)
	if len(out) != 2 {
		t.Fatalf("expected 2 visible events, got %d", len(out))
	}
	if out[0].Event.X != 1 || out[1].Event.X != 3 {
		t.Errorf("unexpected order: %v, %v", out[0].Event.X, out[1].Event.X)
	}
}
