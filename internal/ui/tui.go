// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and feeds it frames from the render loop
package ui

import (
	"github.com/Resonate-Protocol/lanescope/internal/render"
	"github.com/Resonate-Protocol/lanescope/pkg/chart"
	tea "github.com/charmbracelet/bubbletea"
)

// Controls carries user intent out of the TUI
type Controls struct {
	Quit chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Quit: make(chan struct{}, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Controls) Model {
	return Model{
		keys:        chart.DefaultKeys,
		trackHeight: render.DefaultTrackHeight,
		windowMs:    render.DefaultWindowMs,
		controls:    ctrl,
	}
}

// Run creates the TUI program. The caller starts it with p.Run().
func Run(ctrl *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}

// Sink forwards frames to a running program
type Sink struct {
	program *tea.Program
}

// NewSink creates a render sink for p
func NewSink(p *tea.Program) *Sink {
	return &Sink{program: p}
}

// Push sends the frame to the program
func (s *Sink) Push(f render.Frame) {
	s.program.Send(FrameMsg{Frame: f})
}
