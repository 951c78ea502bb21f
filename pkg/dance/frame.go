// ABOUTME: Immutable pose snapshots handed to renderers and watchers
// ABOUTME: Copies entity state so consumers never alias engine buffers
package dance

import (
	"github.com/harperreed/dancefloor/pkg/formation"
	"github.com/harperreed/dancefloor/pkg/spectrum"
)

// Pose is one dancer's renderable state for a tick.
type Pose struct {
	ID          int         `json:"id"`
	Personality Personality `json:"personality"`
	Move        string      `json:"move"`
	Hue         float64     `json:"hue"`

	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`

	Bounce        float64 `json:"bounce"`
	ArmAngle      float64 `json:"arm_angle"`
	LegAngle      float64 `json:"leg_angle"`
	BodyTilt      float64 `json:"body_tilt"`
	HeadBob       float64 `json:"head_bob"`
	HeadNod       float64 `json:"head_nod"`
	HipSwing      float64 `json:"hip_swing"`
	ShoulderShrug float64 `json:"shoulder_shrug"`
	Rotation      float64 `json:"rotation"`
	StepHeight    float64 `json:"step_height"`
	StepPhase     float64 `json:"step_phase"`

	LeftHand  Gesture `json:"left_hand"`
	RightHand Gesture `json:"right_hand"`
	Walking   bool    `json:"walking"`
	Synced    bool    `json:"synced"`

	Trail     []TrailPoint `json:"trail,omitempty"`
	Particles []Particle   `json:"particles,omitempty"`
}

// Frame is the whole floor for one tick.
type Frame struct {
	Tick      uint64           `json:"tick"`
	Canvas    formation.Canvas `json:"canvas"`
	Formation string           `json:"formation"`
	Bands     spectrum.Bands   `json:"bands"`
	SyncMode  string           `json:"sync_mode"`
	SyncMove  string           `json:"sync_move,omitempty"`
	// SyncLeft is the time remaining in an auto-sync episode
	SyncLeft  float64          `json:"sync_left,omitempty"`
	AutoSync  bool             `json:"auto_sync"`
	Speed     float64          `json:"speed"`
	Particles bool             `json:"particles"`
	Dancers   []Pose           `json:"dancers"`
}

// PoseOf copies the renderable state out of an entity.
func PoseOf(e *Entity) Pose {
	p := Pose{
		ID:            e.ID,
		Personality:   e.Personality,
		Move:          e.CurrentMove,
		Hue:           e.ColorHue,
		X:             e.X,
		Y:             e.Y,
		Scale:         e.Scale * e.SizeVariation,
		Bounce:        e.Bounce,
		ArmAngle:      e.ArmAngle,
		LegAngle:      e.LegAngle,
		BodyTilt:      e.BodyTilt,
		HeadBob:       e.HeadBob,
		HeadNod:       e.HeadNod,
		HipSwing:      e.HipSwing,
		ShoulderShrug: e.ShoulderShrug,
		Rotation:      e.Rotation,
		StepHeight:    e.StepHeight,
		StepPhase:     e.StepPhase,
		LeftHand:      e.LeftHand,
		RightHand:     e.RightHand,
		Walking:       e.IsWalking,
		Synced:        e.Synced,
	}
	if len(e.Trail) > 0 {
		p.Trail = append([]TrailPoint(nil), e.Trail...)
	}
	if len(e.Particles) > 0 {
		p.Particles = append([]Particle(nil), e.Particles...)
	}
	return p
}

// Snapshot copies the current floor state.
func (e *Ensemble) Snapshot() Frame {
	f := Frame{
		Tick:      e.tick,
		Canvas:    e.canvas,
		Formation: formation.KindFor(len(e.dancers)).String(),
		Bands:     e.bands,
		SyncMode:  e.sync.Mode().String(),
		AutoSync:  e.sync.AutoEnabled,
		Speed:     e.opts.Speed,
		Particles: e.opts.Particles,
		Dancers:   make([]Pose, len(e.dancers)),
	}
	if e.sync.Active() {
		f.SyncMove = e.sync.Move
	}
	if e.sync.Mode() == AutoSync {
		f.SyncLeft = e.sync.AutoRemaining()
	}
	for i, d := range e.dancers {
		f.Dancers[i] = PoseOf(d)
	}
	return f
}
