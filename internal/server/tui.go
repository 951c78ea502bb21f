// ABOUTME: Server TUI for displaying connected watchers and floor stats
// ABOUTME: Real-time server status display using bubbletea
package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ServerTUI manages the server TUI
type ServerTUI struct {
	program  *tea.Program
	updates  chan ServerStatus
	quitChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// ServerStatus holds server state for the TUI
type ServerStatus struct {
	Name    string
	Port    int
	Clients []ClientInfo
	Track   string
	Paused  bool

	Dancers   int
	Formation string
	SyncMode  string
	SyncMove  string

	Ticks        uint64
	Frozen       uint64
	AudioDropped uint64
	FramesSent   uint64
}

// ClientInfo holds watcher information for display
type ClientInfo struct {
	Name    string
	ID      string
	Dropped uint64
}

type tuiModel struct {
	status    ServerStatus
	startTime time.Time
	quitting  bool
	quitChan  chan struct{}
}

type tickMsg time.Time
type statusMsg ServerStatus

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	clientHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	warnStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (m tuiModel) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			select {
			case m.quitChan <- struct{}{}:
			default:
			}
			return m, tea.Quit
		}

	case tickMsg:
		return m, tickEvery()

	case statusMsg:
		m.status = ServerStatus(msg)
		return m, nil
	}

	return m, nil
}

func (m tuiModel) View() string {
	if m.quitting {
		return "Shutting down server...\n"
	}

	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(headerStyle.Render(label + ": "))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render("Dancefloor Server"))
	b.WriteString("\n\n")

	field("Server", m.status.Name)
	field("Port", fmt.Sprintf("%d", m.status.Port))
	field("Uptime", time.Since(m.startTime).Round(time.Second).String())

	track := m.status.Track
	if m.status.Paused {
		track += " (paused)"
	}
	field("Playing", track)
	b.WriteString("\n")

	field("Dancers", fmt.Sprintf("%d in %s", m.status.Dancers, m.status.Formation))
	syncText := m.status.SyncMode
	if m.status.SyncMove != "" {
		syncText += " / " + m.status.SyncMove
	}
	field("Sync", syncText)
	field("Ticks", fmt.Sprintf("%d (frozen %d)", m.status.Ticks, m.status.Frozen))
	field("Frames sent", fmt.Sprintf("%d", m.status.FramesSent))
	if m.status.AudioDropped > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("Audio chunks dropped: %d", m.status.AudioDropped)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(clientHeaderStyle.Render(fmt.Sprintf("Connected Watchers (%d)", len(m.status.Clients))))
	b.WriteString("\n\n")

	if len(m.status.Clients) == 0 {
		b.WriteString(valueStyle.Render("  No watchers connected"))
		b.WriteString("\n")
	} else {
		for _, c := range m.status.Clients {
			b.WriteString(fmt.Sprintf("  • %s", c.Name))
			b.WriteString(valueStyle.Render(fmt.Sprintf(" (%s, %d dropped)", shortID(c.ID), c.Dropped)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press 'q' or Ctrl+C to quit"))

	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// NewServerTUI creates a new server TUI
func NewServerTUI() *ServerTUI {
	return &ServerTUI{
		updates:  make(chan ServerStatus, 10),
		quitChan: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start runs the TUI until Stop or the user quits
func (t *ServerTUI) Start(initial ServerStatus) error {
	m := tuiModel{
		status:    initial,
		startTime: time.Now(),
		quitChan:  t.quitChan,
	}

	t.program = tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		for {
			select {
			case <-t.done:
				return
			case status := <-t.updates:
				t.program.Send(statusMsg(status))
			}
		}
	}()

	_, err := t.program.Run()
	return err
}

// Update sends a status update to the TUI without blocking
func (t *ServerTUI) Update(status ServerStatus) {
	select {
	case <-t.done:
	case t.updates <- status:
	default:
	}
}

// Stop stops the TUI
func (t *ServerTUI) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
		if t.program != nil {
			t.program.Quit()
		}
	})
}

// QuitChan returns the channel that signals when the user wants to quit
func (t *ServerTUI) QuitChan() <-chan struct{} {
	return t.quitChan
}
