// ABOUTME: TUI initialization and frame pumping
// ABOUTME: Wraps the bubbletea program and feeds it frames and metadata
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/dancefloor/pkg/dance"
)

// NewProgram creates the full-screen floor program
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

// Pump forwards frames to the program until ctx ends or frames closes
func Pump(ctx context.Context, p *tea.Program, frames <-chan dance.Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			p.Send(FrameMsg(f))
		}
	}
}
