// ABOUTME: Tests for frame building and the render loop
// ABOUTME: Uses a fixed clock and a canned chart
package render

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/lanescope/pkg/chart"
	"github.com/Resonate-Protocol/lanescope/pkg/clock"
)

type fixedSpectrum []uint32

func (f fixedSpectrum) Latest() []uint32 { return f }

const testChart = `[Difficulty]
CircleSize:4

[HitObjects]
64,192,300,1,0,0:0:0:0:
448,192,100,128,0,400:0:0:0:0:
192,192,5000,1,0,0:0:0:0:
`

func loadChart(t *testing.T) *chart.Chart {
	t.Helper()
	c, err := chart.Parse(strings.NewReader(testChart))
	if err != nil {
		t.Fatalf("failed to parse chart: %v", err)
	}
	return c
}

func TestBuildFrame(t *testing.T) {
	b := NewBuilder(clock.Fixed(0), fixedSpectrum{1, 2, 3}, loadChart(t))

	f := b.Build()
	if f.TickMs != 0 {
		t.Errorf("expected tick 0, got %d", f.TickMs)
	}
	if len(f.Spectrum) != 3 {
		t.Errorf("expected spectrum of 3, got %d", len(f.Spectrum))
	}
	if len(f.Notes) != 2 {
		t.Fatalf("expected 2 visible notes, got %d", len(f.Notes))
	}

	instant := f.Notes[0]
	if instant.Lane != 0 || instant.Kind != chart.Instant || instant.Geometry.Y != 200 {
		t.Errorf("unexpected instant note: %+v", instant)
	}

	held := f.Notes[1]
	if held.Lane != 3 || held.Kind != chart.Held {
		t.Errorf("unexpected held note: %+v", held)
	}
	if held.Geometry.Y != 100 || held.Geometry.H != 300 {
		t.Errorf("expected bar top 100 height 300, got %+v", held.Geometry)
	}
}

func TestBuildWithoutSpectrum(t *testing.T) {
	b := NewBuilder(clock.Fixed(10000), nil, loadChart(t))

	f := b.Build()
	if f.Spectrum != nil {
		t.Error("expected no spectrum")
	}
	if f.Notes == nil || len(f.Notes) != 0 {
		t.Errorf("expected empty non-nil notes, got %v", f.Notes)
	}
}

func TestBuildAppliesDefaults(t *testing.T) {
	b := &Builder{Clock: clock.Fixed(0), Chart: loadChart(t)}
	b.Build()

	if b.WindowMs != DefaultWindowMs || b.TrackHeight != DefaultTrackHeight {
		t.Errorf("expected defaults, got %d/%v", b.WindowMs, b.TrackHeight)
	}
}

func TestLoopPushesToSinks(t *testing.T) {
	b := NewBuilder(clock.Fixed(0), nil, loadChart(t))

	var mu sync.Mutex
	counts := make([]int, 2)
	sink := func(i int) Sink {
		return SinkFunc(func(f Frame) {
			mu.Lock()
			counts[i]++
			mu.Unlock()
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewLoop(b).Run(ctx, time.Millisecond, sink(0), sink(1))
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		ready := counts[0] >= 3 && counts[1] >= 3
		mu.Unlock()
		if ready {
			break
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if counts[0] < 3 || counts[1] < 3 {
		t.Errorf("expected both sinks to receive frames, got %v", counts)
	}
}
