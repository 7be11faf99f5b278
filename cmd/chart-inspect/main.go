// ABOUTME: Offline chart inspector
// ABOUTME: Parses a chart and prints its metadata and the events visible at a tick
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/Resonate-Protocol/lanescope/internal/render"
	"github.com/Resonate-Protocol/lanescope/pkg/chart"
	"github.com/Resonate-Protocol/lanescope/pkg/clock"
)

var (
	chartPath   = flag.String("chart", "", "Chart file (.osu)")
	tick        = flag.Int64("at", 0, "Tick in milliseconds to project")
	windowMs    = flag.Int64("window-ms", render.DefaultWindowMs, "Lookahead window in milliseconds")
	trackHeight = flag.Float64("track-height", render.DefaultTrackHeight, "Track height in pixels")
)

func main() {
	flag.Parse()

	if *chartPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: chart-inspect -chart song.osu [-at ms]")
		os.Exit(2)
	}

	ch, err := chart.Load(*chartPath)
	if err != nil {
		log.Fatalf("Failed to load chart: %v", err)
	}

	inspect(os.Stdout, ch, *tick, *windowMs, *trackHeight)
}

func inspect(w io.Writer, ch *chart.Chart, tick, window int64, height float64) {
	m := ch.Metadata
	fmt.Fprintf(w, "%s - %s [%s] by %s\n", m.Artist, m.Title, m.Version, m.Creator)
	fmt.Fprintf(w, "format v%d, mode %d, %d keys, audio %q\n", ch.FormatVersion, m.Mode, ch.Keys(), m.AudioFilename)
	fmt.Fprintf(w, "%d events, %d timing points, length %dms\n", ch.Len(), len(ch.TimingPoints), ch.LengthMs())
	for _, tp := range ch.TimingPoints {
		if bpm := tp.BPM(); bpm > 0 {
			fmt.Fprintf(w, "  %8dms  %.2f BPM  %d/4\n", tp.TimeMs, bpm, tp.Meter)
		}
	}
	fmt.Fprintln(w)

	b := render.NewBuilder(clock.Fixed(tick), nil, ch)
	b.WindowMs = window
	b.TrackHeight = height
	frame := b.Build()

	fmt.Fprintf(w, "visible at %dms (window %dms, height %.0f): %d\n", frame.TickMs, window, height, len(frame.Notes))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LANE\tKIND\tX\tY\tW\tH")
	for _, n := range frame.Notes {
		g := n.Geometry
		fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.1f\t%.0f\t%.1f\n", n.Lane, n.Kind, g.X, g.Y, g.W, g.H)
	}
	tw.Flush()
}
