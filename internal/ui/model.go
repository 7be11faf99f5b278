// ABOUTME: Bubbletea model for the lane display
// ABOUTME: Draws scrolling lanes, the spectrum row and playback status from frames
package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/Resonate-Protocol/lanescope/internal/render"
	"github.com/Resonate-Protocol/lanescope/pkg/chart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	laneWidth    = 6
	reservedRows = 7 // header, spectrum, judgement line, help
	minTrackRows = 4
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	spectrumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Model represents the TUI state
type Model struct {
	// Track
	title   string
	artist  string
	version string
	format  string

	// Layout
	keys        int
	trackHeight float64
	windowMs    int64

	// Latest frame
	frame  render.Frame
	frames int64

	// Feed
	feedAddr    string
	feedClients int

	showDebug bool
	quitting  bool
	controls  *Controls

	width  int
	height int
}

// FrameMsg delivers a rendered frame
type FrameMsg struct {
	Frame render.Frame
}

// StatusMsg updates TUI state. Zero fields are left unchanged.
type StatusMsg struct {
	Title       string
	Artist      string
	Version     string
	Format      string
	Keys        int
	TrackHeight float64
	WindowMs    int64
	FeedAddr    string
	FeedClients *int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case FrameMsg:
		m.frame = msg.Frame
		m.frames++
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping playback...\n"
	}
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderLanes())
	b.WriteString(m.renderSpectrum())

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

// renderHeader renders track metadata and the clock
func (m Model) renderHeader() string {
	var b strings.Builder

	title := m.title
	if title == "" {
		title = "(untitled)"
	}
	if m.artist != "" {
		title = m.artist + " - " + title
	}
	if m.version != "" {
		title += " [" + m.version + "]"
	}
	b.WriteString(titleStyle.Render(truncate(title, m.width)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Time: "))
	b.WriteString(valueStyle.Render(formatTick(m.frame.TickMs)))
	if m.format != "" {
		b.WriteString(headerStyle.Render("  Output: "))
		b.WriteString(valueStyle.Render(m.format))
	}
	if m.feedAddr != "" {
		b.WriteString(headerStyle.Render("  Feed: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%s (%d)", m.feedAddr, m.feedClients)))
	}
	b.WriteString("\n\n")

	return b.String()
}

// trackRows returns how many terminal rows the lanes span
func (m Model) trackRows() int {
	rows := m.height - reservedRows
	if m.showDebug {
		rows--
	}
	if rows < minTrackRows {
		rows = minTrackRows
	}
	return rows
}

// renderLanes scales note geometry from track pixels to terminal rows
func (m Model) renderLanes() string {
	rows := m.trackRows()
	keys := m.keys
	if keys <= 0 {
		keys = chart.DefaultKeys
	}
	height := m.trackHeight
	if height <= 0 {
		height = render.DefaultTrackHeight
	}

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", keys*laneWidth))
	}

	for _, n := range m.frame.Notes {
		if n.Lane < 0 || n.Lane >= keys {
			continue
		}
		bounds := n.Geometry.Bounds()
		top := int(math.Floor(bounds.Y / height * float64(rows)))
		bottom := int(math.Ceil((bounds.Y+bounds.Height)/height*float64(rows))) - 1

		fill := '█'
		if n.Kind == chart.Instant {
			// a marker occupies the row holding its center
			fill = '▆'
			top = int(math.Floor((bounds.Y + bounds.Height/2) / height * float64(rows)))
			if top >= rows {
				top = rows - 1
			}
			bottom = top
		}

		if top < 0 {
			top = 0
		}
		if bottom >= rows {
			bottom = rows - 1
		}
		for r := top; r <= bottom; r++ {
			for c := 1; c < laneWidth-1; c++ {
				grid[r][n.Lane*laneWidth+c] = fill
			}
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString("│")
		for k := 0; k < keys; k++ {
			b.WriteString(string(row[k*laneWidth : (k+1)*laneWidth]))
			b.WriteString("│")
		}
		b.WriteString("\n")
	}
	b.WriteString("└" + strings.Repeat(strings.Repeat("─", laneWidth)+"┴", keys-1) + strings.Repeat("─", laneWidth) + "┘\n")

	return b.String()
}

// renderSpectrum draws one row of bars across the lane width
func (m Model) renderSpectrum() string {
	keys := m.keys
	if keys <= 0 {
		keys = chart.DefaultKeys
	}
	width := keys*laneWidth + keys + 1
	return " " + spectrumStyle.Render(spectrumBar(m.frame.Spectrum, width)) + "\n"
}

// spectrumBar downsamples bins into width columns scaled to the loudest column
func spectrumBar(bins []uint32, width int) string {
	if width <= 0 {
		return ""
	}
	if len(bins) == 0 {
		return strings.Repeat(" ", width)
	}

	cols := make([]uint64, width)
	var peak uint64
	for c := range cols {
		start := c * len(bins) / width
		end := (c + 1) * len(bins) / width
		if end <= start {
			end = start + 1
		}
		var v uint64
		for _, bin := range bins[start:end] {
			if uint64(bin) > v {
				v = uint64(bin)
			}
		}
		cols[c] = v
		if v > peak {
			peak = v
		}
	}
	if peak < 1 {
		peak = 1
	}

	out := make([]rune, width)
	top := uint64(len(barChars) - 1)
	for c, v := range cols {
		out[c] = barChars[v*top/peak]
	}
	return string(out)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("d:Debug  q:Quit") + "\n"
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return valueStyle.Render(fmt.Sprintf("tick=%dms window=%dms notes=%d bins=%d frames=%d",
		m.frame.TickMs, m.windowMs, len(m.frame.Notes), len(m.frame.Spectrum), m.frames)) + "\n"
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.controls != nil {
			select {
			case m.controls.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Title != "" {
		m.title = msg.Title
		m.artist = msg.Artist
		m.version = msg.Version
	}
	if msg.Format != "" {
		m.format = msg.Format
	}
	if msg.Keys > 0 {
		m.keys = msg.Keys
	}
	if msg.TrackHeight > 0 {
		m.trackHeight = msg.TrackHeight
	}
	if msg.WindowMs > 0 {
		m.windowMs = msg.WindowMs
	}
	if msg.FeedAddr != "" {
		m.feedAddr = msg.FeedAddr
	}
	if msg.FeedClients != nil {
		m.feedClients = *msg.FeedClients
	}
}

// Utility functions
func formatTick(ms int64) string {
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}

func truncate(s string, length int) string {
	r := []rune(s)
	if length <= 3 || len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}
