// ABOUTME: Control commands that change ensemble settings between ticks
// ABOUTME: Shared by the terminal UI, the websocket watcher and config reloads
package dance

import (
	"encoding/json"
	"fmt"

	"github.com/harperreed/dancefloor/pkg/formation"
)

// Command names.
const (
	CmdCount        = "count"
	CmdSpeed        = "speed"
	CmdSync         = "sync"
	CmdAutoSync     = "auto_sync"
	CmdParticles    = "particles"
	CmdAspect       = "aspect"
	CmdDistribution = "distribution"
)

// Command is one control change. Only the field matching Name is read.
type Command struct {
	Name         string        `json:"name"`
	Count        int           `json:"count,omitempty"`
	Speed        float64       `json:"speed,omitempty"`
	On           bool          `json:"on,omitempty"`
	Aspect       string        `json:"aspect,omitempty"`
	Distribution *Distribution `json:"distribution,omitempty"`
}

func (c Command) String() string {
	b, err := json.Marshal(c)
	if err != nil {
		return c.Name
	}
	return string(b)
}

// Apply executes a command against the ensemble.
func (e *Ensemble) Apply(c Command) error {
	switch c.Name {
	case CmdCount:
		return e.SetCount(c.Count)
	case CmdSpeed:
		e.SetSpeed(c.Speed)
	case CmdSync:
		e.SetSync(c.On)
	case CmdAutoSync:
		e.SetAutoSync(c.On)
	case CmdParticles:
		e.SetParticles(c.On)
	case CmdAspect:
		a, err := formation.ParseAspect(c.Aspect)
		if err != nil {
			return err
		}
		return e.SetAspect(a)
	case CmdDistribution:
		if c.Distribution == nil {
			return fmt.Errorf("distribution command without weights")
		}
		return e.SetDistribution(*c.Distribution)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Name)
	}
	return nil
}
