// ABOUTME: Render polling loop
// ABOUTME: Builds a frame per tick and pushes it to every sink
package render

import (
	"context"
	"log"
	"time"
)

// DefaultInterval is the render cadence, about 60 frames per second
const DefaultInterval = 16 * time.Millisecond

// Sink consumes frames. Push must not block for long.
type Sink interface {
	Push(f Frame)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(f Frame)

// Push calls fn
func (fn SinkFunc) Push(f Frame) {
	fn(f)
}

// Loop polls a builder on its own cadence
type Loop struct {
	builder *Builder
}

// NewLoop creates a loop over b
func NewLoop(b *Builder) *Loop {
	return &Loop{builder: b}
}

// Run pushes a frame to every sink each interval until ctx is done
func (l *Loop) Run(ctx context.Context, interval time.Duration, sinks ...Sink) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	log.Printf("Render loop started (every %v, %d sinks)", interval, len(sinks))
	defer log.Printf("Render loop stopped")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f := l.builder.Build()
			for _, s := range sinks {
				s.Push(f)
			}
		}
	}
}
