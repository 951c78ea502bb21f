// ABOUTME: Dancer entity record and its per-tick update pipeline
// ABOUTME: Phase, baseline kinematics, move selection, locomotion, gestures and effects
package dance

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/pkg/formation"
	"github.com/harperreed/dancefloor/pkg/spectrum"
)

// SyncPhaseSpread offsets each dancer from the shared phase so synced
// dancers do not alias into a single figure.
const SyncPhaseSpread = 0.05

// Entity is one dancer. All fields are plain state mutated by the free
// functions in this package; nothing here is safe for concurrent use.
type Entity struct {
	ID int

	X, Y      float64
	BaseY     float64
	OriginalX float64
	Scale     float64

	DancePhase   float64
	WalkPhase    float64
	StepPhase    float64
	SpinPhase    float64
	GesturePhase float64
	MovePhases   map[string]float64

	SpeedVariation float64
	SizeVariation  float64
	PhaseOffset    float64
	ColorHue       float64
	Personality    Personality

	CurrentMove string
	MoveTimer   float64
	Breaking    bool
	FreezeTime  float64
	RobotWave   bool

	// Pose parameters, rewritten every tick.
	Bounce        float64
	ArmAngle      float64
	LegAngle      float64
	BodyTilt      float64
	HeadBob       float64
	HeadNod       float64
	HipSwing      float64
	ShoulderShrug float64
	Rotation      float64
	DriftX        float64
	StepHeight    float64

	IsWalking      bool
	WalkDirection  float64
	WalkSpeed      float64
	WalkTimer      float64
	NextWalkToggle float64
	BoundaryLeft   float64
	BoundaryRight  float64

	LeftHand  Gesture
	RightHand Gesture
	FistPump  float64

	Trail     []TrailPoint
	Particles []Particle

	Synced bool
}

// NewEntity creates a dancer at a formation slot with randomised traits.
func NewEntity(id int, slot formation.Slot, scale float64, p Personality, rng *rand.Rand) *Entity {
	e := &Entity{
		ID:            id,
		X:             slot.X,
		Y:             slot.Y,
		BaseY:         slot.Y,
		OriginalX:     slot.X,
		Scale:         math.Max(0.1, scale),
		BoundaryLeft:  slot.Left,
		BoundaryRight: slot.Right,
		MovePhases:    make(map[string]float64),
		Personality:   p,
		CurrentMove:   MoveIdle,
		WalkDirection: 1,
		LeftHand:      GestureNormal,
		RightHand:     GestureNormal,
	}

	e.SpeedVariation = 0.8 + 0.4*rng.Float64()
	e.SizeVariation = 0.9 + 0.2*rng.Float64()
	e.PhaseOffset = 2 * math.Pi * rng.Float64()
	e.ColorHue = 360 * rng.Float64()
	e.DancePhase = e.PhaseOffset
	e.WalkSpeed = 0.8 * e.SpeedVariation
	e.NextWalkToggle = nextWalkToggle(rng)

	return e
}

// Step carries the inputs shared by every dancer during one tick.
type Step struct {
	Bands     spectrum.Bands
	DT        float64 // seconds
	Speed     float64 // speed multiplier
	Particles bool
	Sync      *SyncCoordinator
	Moves     *MoveRegistry
}

// Update advances the dancer by one tick.
func Update(e *Entity, s Step, rng *rand.Rand) {
	b := s.Bands
	e.Synced = s.Sync != nil && s.Sync.Active()

	if e.Synced {
		e.DancePhase = s.Sync.Phase + SyncPhaseSpread*e.PhaseOffset
	} else {
		e.DancePhase += PhaseIncrement(b, s.Speed*e.SpeedVariation)
	}

	Baseline(e, b)

	if e.Synced {
		e.setMove(s.Sync.Move)
	} else {
		ChooseMove(e, b, s.DT*s.Speed, rng)
	}

	moves := s.Moves
	if moves == nil {
		moves = builtinMoves
	}
	// An unregistered move keeps the baseline pose.
	if err := moves.Execute(e, b.Intensity()); err != nil && moves.firstMiss(e.CurrentMove) {
		logrus.WithFields(logrus.Fields{
			"function": "dance.Update",
			"move":     e.CurrentMove,
		}).WithError(err).Debug("Move not in registry; keeping baseline pose")
	}

	UpdateLocomotion(e, b, s, rng)
	UpdateGestures(e, b, rng)
	UpdateEffects(e, b, s.Particles, rng)
}

var builtinMoves = DefaultMoves()

// PhaseIncrement is the per-tick dance phase advance for the given features
// and combined speed factor.
func PhaseIncrement(b spectrum.Bands, speed float64) float64 {
	return (0.02 + 0.05*b.Bass + 0.025*b.Mid) * speed
}

// Baseline writes the move-independent kinematics for the current phase and
// clears the parameters only some moves set.
func Baseline(e *Entity, b spectrum.Bands) {
	phase := e.DancePhase
	speed := e.SpeedVariation

	e.Bounce = b.Bass * 45 * (1 + 0.3*math.Sin(0.2*phase))
	e.ArmAngle = math.Sin(0.8*phase*speed) * b.Mid * (math.Pi / 1.2)
	e.LegAngle = math.Sin(1.2*phase*speed) * b.Bass * (math.Pi / 2.5)
	e.HeadBob = math.Sin(2*phase*speed) * b.High * 6
	e.HipSwing = math.Sin(0.5*phase*speed) * b.Mid * 12

	e.BodyTilt = 0
	e.HeadNod = 0
	e.ShoulderShrug = 0
	e.Rotation = 0
	e.DriftX = 0
}

// setMove switches the current move, arming or clearing the breaking state.
func (e *Entity) setMove(move string) {
	if move == "" || move == e.CurrentMove {
		return
	}
	e.CurrentMove = move
	e.FreezeTime = 0
	e.Breaking = move == MoveBreaking
}
