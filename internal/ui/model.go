// ABOUTME: Bubbletea model for the dance floor TUI
// ABOUTME: Holds the latest frame, renders header, floor and help, and turns keys into commands
package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dancefloor/pkg/dance"
	"github.com/harperreed/dancefloor/pkg/formation"
)

const (
	headerLines = 4
	helpLines   = 1
	speedStep   = 0.1
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Model represents the TUI state
type Model struct {
	ctrl Controller

	// Connection, for watchers
	remote     bool
	connected  bool
	serverName string
	dropped    uint64

	// Metadata
	title  string
	artist string

	frame     dance.Frame
	haveFrame bool
	paused    bool
	lastErr   string

	showDebug bool
	styled    bool
	grid      *Grid

	width  int
	height int
}

// FrameMsg delivers a new floor snapshot
type FrameMsg dance.Frame

// MetadataMsg updates the now-playing line
type MetadataMsg struct {
	Title  string
	Artist string
	Paused bool
}

// StatusMsg updates connection state
type StatusMsg struct {
	Connected  *bool
	ServerName string
	Dropped    uint64
}

// NewModel creates a TUI model. ctrl may be nil for a view-only floor.
func NewModel(ctrl Controller) Model {
	return Model{ctrl: ctrl, styled: true}
}

// NewRemoteModel creates a model that shows connection state
func NewRemoteModel(ctrl Controller, serverName string) Model {
	m := NewModel(ctrl)
	m.remote = true
	m.serverName = serverName
	return m
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
		m.grid = NewGrid(m.floorSize())
	case FrameMsg:
		m.frame = dance.Frame(msg)
		m.haveFrame = true
	case MetadataMsg:
		m.title = msg.Title
		m.artist = msg.Artist
		m.paused = msg.Paused
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Connected != nil {
		m.connected = *msg.Connected
	}
	if msg.ServerName != "" {
		m.serverName = msg.ServerName
	}
	m.dropped = msg.Dropped
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderFloor())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Dancefloor"))
	if m.remote {
		status := "disconnected"
		if m.connected {
			status = "connected to " + m.serverName
		}
		b.WriteString(dimStyle.Render(" · " + status))
	}
	b.WriteString("  ")
	track := m.title
	if m.artist != "" {
		track = m.artist + " - " + m.title
	}
	if track == "" {
		track = "(no metadata)"
	}
	b.WriteString(truncate(track, 48))
	if m.paused {
		b.WriteString(errStyle.Render(" [paused]"))
	}
	b.WriteString("\n")

	f := m.frame
	syncText := f.SyncMode
	if f.SyncMove != "" {
		syncText += " (" + f.SyncMove + ")"
	}
	if f.SyncLeft > 0 {
		syncText += fmt.Sprintf(" %.1fs", f.SyncLeft)
	}
	b.WriteString(fmt.Sprintf("%s %d in %s  %s %s  %s %s  %s %.1fx  %s %s\n",
		labelStyle.Render("Dancers:"), len(f.Dancers), f.Formation,
		labelStyle.Render("Sync:"), syncText,
		labelStyle.Render("Auto:"), onOff(f.AutoSync),
		labelStyle.Render("Speed:"), f.Speed,
		labelStyle.Render("Effects:"), onOff(f.Particles),
	))

	b.WriteString(fmt.Sprintf("%s [%s]  %s [%s]  %s [%s]  %s [%s]\n",
		labelStyle.Render("Bass"), renderBar(f.Bands.Bass, 1, 10),
		labelStyle.Render("Mid"), renderBar(f.Bands.Mid, 1, 10),
		labelStyle.Render("High"), renderBar(f.Bands.High, 1, 10),
		labelStyle.Render("Ultra"), renderBar(f.Bands.UltraHigh, 1, 10),
	))

	if m.showDebug {
		b.WriteString(dimStyle.Render(fmt.Sprintf("tick %d  canvas %.0fx%.0f  dropped %d",
			f.Tick, f.Canvas.Width, f.Canvas.Height, m.dropped)))
	} else if m.lastErr != "" {
		b.WriteString(errStyle.Render(m.lastErr))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) floorSize() (cols, rows int) {
	rows = m.height - headerLines - helpLines
	if rows < 5 {
		rows = 5
	}
	return m.width, rows
}

func (m Model) renderFloor() string {
	cols, rows := m.floorSize()
	if !m.haveFrame {
		return strings.Repeat("\n", rows-1)
	}

	g := m.grid
	if g == nil || g.cols != cols || g.rows != rows {
		g = NewGrid(cols, rows)
	}
	Render(g, m.frame, m.frame.Particles)
	return g.String(m.styled)
}

func (m Model) renderHelp() string {
	help := "s:Sync  a:Auto  p:Effects  +/-:Dancers  [/]:Speed  v:Aspect  space:Pause  d:Debug  q:Quit"
	if m.ctrl == nil {
		help = "d:Debug  q:Quit"
	}
	return dimStyle.Render(help)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
		return m, nil
	}

	if m.ctrl == nil {
		return m, nil
	}

	f := m.frame
	var cmd *dance.Command
	switch msg.String() {
	case "s":
		cmd = &dance.Command{Name: dance.CmdSync, On: f.SyncMode != dance.ManualSync.String()}
	case "a":
		cmd = &dance.Command{Name: dance.CmdAutoSync, On: !f.AutoSync}
	case "p":
		cmd = &dance.Command{Name: dance.CmdParticles, On: !f.Particles}
	case "+", "=":
		if len(f.Dancers) < dance.MaxCount {
			cmd = &dance.Command{Name: dance.CmdCount, Count: len(f.Dancers) + 1}
		}
	case "-", "_":
		if len(f.Dancers) > 1 {
			cmd = &dance.Command{Name: dance.CmdCount, Count: len(f.Dancers) - 1}
		}
	case "]":
		cmd = &dance.Command{Name: dance.CmdSpeed, Speed: stepSpeed(f.Speed, speedStep)}
	case "[":
		cmd = &dance.Command{Name: dance.CmdSpeed, Speed: stepSpeed(f.Speed, -speedStep)}
	case "v":
		cmd = &dance.Command{Name: dance.CmdAspect, Aspect: string(aspectOf(f.Canvas).Toggle())}
	case " ":
		m.paused = !m.paused
		m.setErr(m.ctrl.SetPaused(m.paused))
	}

	if cmd != nil {
		m.setErr(m.ctrl.Control(*cmd))
	}
	return m, nil
}

func (m *Model) setErr(err error) {
	if err != nil {
		m.lastErr = err.Error()
		return
	}
	m.lastErr = ""
}

// stepSpeed nudges speed, rounding to one decimal and staying in range
func stepSpeed(speed, delta float64) float64 {
	v := math.Round((speed+delta)*10) / 10
	return math.Max(dance.MinSpeed, math.Min(dance.MaxSpeed, v))
}

func aspectOf(c formation.Canvas) formation.Aspect {
	if c.Height > c.Width {
		return formation.Portrait
	}
	return formation.Landscape
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func renderBar(value, max float64, width int) string {
	filled := int(math.Round(value / max * float64(width)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}
