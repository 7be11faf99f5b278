// ABOUTME: Entry point for the lanescope player
// ABOUTME: Parses CLI flags, sets up logging and runs chart playback
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Resonate-Protocol/lanescope/internal/app"
	"github.com/Resonate-Protocol/lanescope/internal/render"
	"github.com/Resonate-Protocol/lanescope/internal/ui"
	"github.com/Resonate-Protocol/lanescope/internal/version"
	"github.com/Resonate-Protocol/lanescope/pkg/spectrum"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var (
	chartPath   = flag.String("chart", "", "Chart file (.osu)")
	audioPath   = flag.String("audio", "", "Audio file (default: AudioFilename next to the chart)")
	backend     = flag.String("backend", "malgo", "Audio output backend: malgo, oto or portaudio")
	sampleRate  = flag.Int("rate", 48000, "Output sample rate (oto only)")
	channels    = flag.Int("channels", 2, "Output channels (oto only)")
	windowMs    = flag.Int64("window-ms", render.DefaultWindowMs, "Lookahead window in milliseconds")
	trackHeight = flag.Float64("track-height", render.DefaultTrackHeight, "Track height in pixels")
	analyzer    = flag.String("analyzer", "indexed", "Spectrum analyzer: indexed or live")
	fftSize     = flag.Int("fft-size", spectrum.DefaultSize, "FFT window length (power of two)")
	feedPort    = flag.Int("feed-port", 0, "Serve frames over WebSocket on this port (0 disables)")
	feedName    = flag.String("name", "", "Feed friendly name (default: hostname-lanescope)")
	enableMDNS  = flag.Bool("mdns", false, "Advertise the feed via mDNS")
	logFile     = flag.String("log-file", "lanescope.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *chartPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: lanescope -chart song.osu [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	mode, err := spectrum.ParseMode(*analyzer)
	if err != nil {
		log.Fatalf("Invalid -analyzer: %v", err)
	}

	name := *feedName
	if name == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		name = fmt.Sprintf("%s-lanescope", hostname)
	}

	log.Printf("Starting %s: %s", version.String(), *chartPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			log.Printf("Shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg := app.Config{
		ChartPath:    *chartPath,
		AudioPath:    *audioPath,
		Backend:      *backend,
		SampleRate:   *sampleRate,
		Channels:     *channels,
		WindowMs:     *windowMs,
		TrackHeight:  *trackHeight,
		AnalyzerMode: mode,
		FFTSize:      *fftSize,
		FeedPort:     *feedPort,
		FeedName:     name,
		EnableMDNS:   *enableMDNS,
		UseTUI:       useTUI,
	}

	var sinks []render.Sink
	var tuiProg *tea.Program
	var tuiDone sync.WaitGroup

	if useTUI {
		controls := ui.NewControls()
		tuiProg, err = ui.Run(controls)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}

		tuiDone.Add(1)
		go func() {
			defer tuiDone.Done()
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			cancel()
		}()

		go func() {
			select {
			case <-controls.Quit:
				log.Printf("Received quit signal from TUI")
				cancel()
			case <-ctx.Done():
			}
		}()

		sinks = append(sinks, ui.NewSink(tuiProg))
		cfg.OnFeedClients = func(n int) {
			tuiProg.Send(ui.StatusMsg{FeedClients: &n})
		}
		cfg.OnStatus = func(s app.Status) {
			tuiProg.Send(ui.StatusMsg{
				Title:       s.Title,
				Artist:      s.Artist,
				Version:     s.Version,
				Format:      s.Format,
				Keys:        s.Keys,
				TrackHeight: s.TrackHeight,
				WindowMs:    s.WindowMs,
				FeedAddr:    s.FeedAddr,
			})
		}
	} else {
		progress, finish := decodeProgress()
		cfg.Progress = progress
		cfg.OnStatus = func(s app.Status) {
			finish()
			log.Printf("Playing %s - %s [%s] on %s", s.Artist, s.Title, s.Version, s.Format)
		}
		cfg.OnFeedClients = func(n int) {
			log.Printf("Feed clients: %d", n)
		}
	}

	runErr := app.Run(ctx, cfg, sinks...)

	if tuiProg != nil {
		tuiProg.Quit()
		tuiDone.Wait()
	}

	if runErr != nil {
		log.Fatalf("Playback failed: %v", runErr)
	}

	log.Printf("Player stopped")
}

// decodeProgress renders a byte progress bar for the audio import. The
// bar is created on the first report, once the file size is known.
func decodeProgress() (func(read, total int64), func()) {
	var (
		p   *mpb.Progress
		bar *mpb.Bar
	)

	report := func(read, total int64) {
		if bar == nil {
			if total <= 0 {
				return
			}
			p = mpb.New(mpb.WithWidth(64))
			bar = p.AddBar(total,
				mpb.PrependDecorators(
					decor.Name("Decoding: "),
					decor.CountersKibiByte("% .1f / % .1f"),
				),
				mpb.AppendDecorators(
					decor.Percentage(),
				),
			)
		}
		bar.SetCurrent(read)
	}

	finish := func() {
		if bar == nil {
			return
		}
		bar.SetTotal(-1, true)
		p.Wait()
	}

	return report, finish
}
