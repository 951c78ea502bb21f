// ABOUTME: Routes key-driven floor commands to a local stage or a remote server
// ABOUTME: Both the standalone floor and the watcher share the same TUI through this
package ui

import (
	"github.com/harperreed/dancefloor/internal/client"
	"github.com/harperreed/dancefloor/internal/stage"
	"github.com/harperreed/dancefloor/pkg/dance"
)

// Controller receives commands from the TUI
type Controller interface {
	Control(cmd dance.Command) error
	SetPaused(paused bool) error
}

// StageController drives a stage in this process
type StageController struct {
	Stage *stage.Stage
}

func (c StageController) Control(cmd dance.Command) error {
	return c.Stage.Control(cmd)
}

func (c StageController) SetPaused(paused bool) error {
	c.Stage.Pause(paused)
	return nil
}

// RemoteController forwards commands over a watcher connection
type RemoteController struct {
	Client *client.Client
}

func (c RemoteController) Control(cmd dance.Command) error {
	return c.Client.SendControl(cmd)
}

func (c RemoteController) SetPaused(paused bool) error {
	return c.Client.SendPause(paused)
}
