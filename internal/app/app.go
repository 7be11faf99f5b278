// ABOUTME: Application orchestration
// ABOUTME: Loads chart and audio, starts playback, analysis, rendering and the feed
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/Resonate-Protocol/lanescope/internal/protocol"
	"github.com/Resonate-Protocol/lanescope/internal/render"
	"github.com/Resonate-Protocol/lanescope/internal/server"
	"github.com/Resonate-Protocol/lanescope/pkg/audio/decode"
	"github.com/Resonate-Protocol/lanescope/pkg/audio/output"
	"github.com/Resonate-Protocol/lanescope/pkg/chart"
	"github.com/Resonate-Protocol/lanescope/pkg/playback"
	"github.com/Resonate-Protocol/lanescope/pkg/spectrum"
)

// ErrNoAudio means neither the config nor the chart names an audio file
var ErrNoAudio = errors.New("chart names no audio file and none was given")

// Config holds application configuration
type Config struct {
	ChartPath string
	AudioPath string // default: AudioFilename next to the chart

	Backend    string // "malgo", "oto" or "portaudio"
	SampleRate int    // oto only
	Channels   int    // oto only

	WindowMs    int64
	TrackHeight float64

	AnalyzerMode     spectrum.Mode
	FFTSize          int
	AnalyzerInterval time.Duration
	RenderInterval   time.Duration

	FeedPort   int // 0 disables the feed
	FeedName   string
	EnableMDNS bool

	UseTUI bool

	// Output overrides Backend when set
	Output output.Backend

	// Progress receives decode progress in bytes
	Progress func(read, total int64)

	// OnStatus is called once playback has started
	OnStatus func(Status)

	// OnFeedClients receives the feed's client count whenever it changes
	OnFeedClients func(count int)
}

// Status describes the running session
type Status struct {
	Title       string
	Artist      string
	Version     string
	Format      string
	Keys        int
	WindowMs    int64
	TrackHeight float64
	FeedAddr    string
}

// applyDefaults fills unset fields
func (c *Config) applyDefaults() {
	if c.WindowMs <= 0 {
		c.WindowMs = render.DefaultWindowMs
	}
	if c.TrackHeight <= 0 {
		c.TrackHeight = render.DefaultTrackHeight
	}
	if c.FFTSize <= 0 {
		c.FFTSize = spectrum.DefaultSize
	}
	if c.AnalyzerInterval <= 0 {
		c.AnalyzerInterval = spectrum.DefaultInterval
	}
	if c.RenderInterval <= 0 {
		c.RenderInterval = render.DefaultInterval
	}
	if c.FeedName == "" {
		c.FeedName = "lanescope"
	}
}

// AudioPath resolves the audio file for c against the loaded chart
func AudioPath(cfg Config, ch *chart.Chart) (string, error) {
	if cfg.AudioPath != "" {
		return cfg.AudioPath, nil
	}
	if ch.Metadata.AudioFilename == "" {
		return "", ErrNoAudio
	}
	return filepath.Join(filepath.Dir(cfg.ChartPath), ch.Metadata.AudioFilename), nil
}

// Run plays the chart's audio to completion or until ctx is done, pushing
// frames to sinks and to the feed when enabled. Failing to start playback
// is fatal.
func Run(ctx context.Context, cfg Config, sinks ...render.Sink) error {
	cfg.applyDefaults()

	ch, err := chart.Load(cfg.ChartPath)
	if err != nil {
		return err
	}
	log.Printf("Loaded chart: %s - %s [%s], %d events, %d keys",
		ch.Metadata.Artist, ch.Metadata.Title, ch.Metadata.Version, ch.Len(), ch.Keys())

	audioPath, err := AudioPath(cfg, ch)
	if err != nil {
		return err
	}

	im := decode.Importer{Progress: cfg.Progress}
	clip, err := im.Import(audioPath)
	if err != nil {
		return fmt.Errorf("failed to import audio: %w", err)
	}

	backend := cfg.Output
	if backend == nil {
		backend, err = output.New(cfg.Backend, cfg.SampleRate, cfg.Channels)
		if err != nil {
			return err
		}
	}

	var opts []playback.Option
	var live *spectrum.LiveBuffer
	if cfg.AnalyzerMode == spectrum.ModeLive {
		live, err = spectrum.NewLiveBuffer(cfg.FFTSize)
		if err != nil {
			return err
		}
		opts = append(opts, playback.WithTap(spectrum.Tap{Buffer: live}))
	}

	handle, err := playback.New(backend, opts...).Play(clip)
	if err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	defer handle.Close()

	var analyzer *spectrum.Analyzer
	if live != nil {
		analyzer = spectrum.NewLiveAnalyzer(live, cfg.AnalyzerInterval)
	} else {
		ix, err := spectrum.NewIndexed(handle.Samples(), handle.SampleRate(), cfg.FFTSize)
		if err != nil {
			return err
		}
		analyzer = spectrum.NewIndexedAnalyzer(ix, handle.Clock(), cfg.AnalyzerInterval)
	}

	builder := render.NewBuilder(handle.Clock(), analyzer, ch)
	builder.WindowMs = cfg.WindowMs
	builder.TrackHeight = cfg.TrackHeight

	var wg sync.WaitGroup

	status := Status{
		Title:       ch.Metadata.Title,
		Artist:      ch.Metadata.Artist,
		Version:     ch.Metadata.Version,
		Format:      fmt.Sprintf("%dHz %dch %s", handle.SampleRate(), handle.Channels(), backend.Name()),
		Keys:        ch.Keys(),
		WindowMs:    cfg.WindowMs,
		TrackHeight: cfg.TrackHeight,
	}

	var feed *server.Server
	if cfg.FeedPort > 0 {
		feed = server.New(server.Config{
			Port:             cfg.FeedPort,
			Name:             cfg.FeedName,
			EnableMDNS:       cfg.EnableMDNS,
			OnClientsChanged: cfg.OnFeedClients,
			Session: protocol.SessionHello{
				Title:       ch.Metadata.Title,
				Artist:      ch.Metadata.Artist,
				Keys:        ch.Keys(),
				WindowMs:    cfg.WindowMs,
				TrackHeight: cfg.TrackHeight,
			},
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := feed.Start(); err != nil {
				log.Printf("Frame feed failed: %v", err)
			}
		}()
		sinks = append(sinks, feed)
		status.FeedAddr = fmt.Sprintf(":%d", cfg.FeedPort)
	}

	if cfg.OnStatus != nil {
		cfg.OnStatus(status)
	}

	runCtx, cancel := context.WithCancel(ctx)

	wg.Add(2)
	go func() {
		defer wg.Done()
		analyzer.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		render.NewLoop(builder).Run(runCtx, cfg.RenderInterval, sinks...)
	}()

	reason := "playback finished"
	select {
	case <-handle.Done():
		log.Printf("Playback finished at %dms", handle.Clock().NowMs())
	case <-ctx.Done():
		reason = "stopped"
		log.Printf("Playback stopped at %dms", handle.Clock().NowMs())
	}

	cancel()
	if feed != nil {
		feed.End(reason)
		feed.Stop()
	}
	wg.Wait()

	return nil
}
