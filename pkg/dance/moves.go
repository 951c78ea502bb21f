// ABOUTME: Move registry mapping move tags to kinematic functions
// ABOUTME: Each move advances its own phase and overrides a few pose parameters
package dance

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Move tags.
const (
	MoveIdle      = "idle"
	MoveBreaking  = "breaking"
	MoveWindmill  = "windmill"
	MoveFreeze    = "freeze"
	MoveToprock   = "toprock"
	MoveWave      = "wave"
	MoveBodywave  = "bodywave"
	MoveArmwave   = "armwave"
	MoveRobot     = "robot"
	MoveJump      = "jump"
	MoveBounce    = "bounce"
	MoveHop       = "hop"
	MoveSkip      = "skip"
	MoveLeap      = "leap"
	MoveSpin      = "spin"
	MoveTwirl     = "twirl"
	MovePirouette = "pirouette"
	MoveTurn      = "turn"
	MoveGroove    = "groove"
	MoveSway      = "sway"
	MoveShimmy    = "shimmy"
	MoveMoonwalk  = "moonwalk"
	MoveSlide     = "slide"
	MoveWalk      = "walk"
)

const (
	// BreakingStep is added to FreezeTime on every breaking invocation.
	BreakingStep = 0.1
	// BreakingLength ends the breaking move once FreezeTime reaches it.
	BreakingLength = 2.0
)

// MoveFunc advances a move by one tick at the given intensity, writing the
// pose parameters it owns on top of the baseline kinematics.
type MoveFunc func(e *Entity, intensity float64)

// MoveRegistry maps move tags to their functions.
type MoveRegistry struct {
	moves map[string]MoveFunc

	mu     sync.Mutex
	missed map[string]bool
}

// NewMoveRegistry returns an empty registry.
func NewMoveRegistry() *MoveRegistry {
	return &MoveRegistry{
		moves:  make(map[string]MoveFunc),
		missed: make(map[string]bool),
	}
}

// firstMiss records an unregistered tag and reports whether it is new.
func (r *MoveRegistry) firstMiss(tag string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missed[tag] {
		return false
	}
	r.missed[tag] = true
	return true
}

// Register adds or replaces a move.
func (r *MoveRegistry) Register(tag string, fn MoveFunc) {
	r.moves[tag] = fn
}

// Lookup returns the function for tag.
func (r *MoveRegistry) Lookup(tag string) (MoveFunc, bool) {
	fn, ok := r.moves[tag]
	return fn, ok
}

// Tags lists registered moves in sorted order.
func (r *MoveRegistry) Tags() []string {
	tags := make([]string, 0, len(r.moves))
	for tag := range r.moves {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Execute runs the entity's current move. Unknown moves leave the baseline
// pose untouched.
func (r *MoveRegistry) Execute(e *Entity, intensity float64) error {
	fn, ok := r.moves[e.CurrentMove]
	if !ok {
		return fmt.Errorf("move %q not registered", e.CurrentMove)
	}
	fn(e, intensity)
	return nil
}

// DefaultMoves returns a registry holding every built-in move.
func DefaultMoves() *MoveRegistry {
	r := NewMoveRegistry()
	r.Register(MoveIdle, idle)
	r.Register(MoveBreaking, breaking)
	r.Register(MoveWindmill, windmill)
	r.Register(MoveFreeze, freeze)
	r.Register(MoveToprock, toprock)
	r.Register(MoveWave, wave)
	r.Register(MoveBodywave, bodywave)
	r.Register(MoveArmwave, armwave)
	r.Register(MoveRobot, robot)
	r.Register(MoveJump, jump)
	r.Register(MoveBounce, bounce)
	r.Register(MoveHop, hop)
	r.Register(MoveSkip, skip)
	r.Register(MoveLeap, leap)
	r.Register(MoveSpin, spin)
	r.Register(MoveTwirl, twirl)
	r.Register(MovePirouette, pirouette)
	r.Register(MoveTurn, turn)
	r.Register(MoveGroove, groove)
	r.Register(MoveSway, sway)
	r.Register(MoveShimmy, shimmy)
	r.Register(MoveMoonwalk, moonwalk)
	r.Register(MoveSlide, slide)
	r.Register(MoveWalk, walk)
	return r
}

// advance moves the named phase odometer forward and returns its new value.
func (e *Entity) advance(tag string, increment, intensity float64) float64 {
	e.MovePhases[tag] += increment * intensity
	return e.MovePhases[tag]
}

func idle(e *Entity, i float64) {
	p := e.advance(MoveIdle, 0.05, 1)
	e.HeadNod = math.Sin(p) * 2 * i
}

func breaking(e *Entity, i float64) {
	e.Breaking = true
	e.FreezeTime += BreakingStep

	p := e.advance(MoveBreaking, 0.15, i)
	e.BodyTilt = math.Sin(p) * 0.6 * i
	e.LegAngle = math.Sin(p*2) * math.Pi / 2 * i
	e.ArmAngle = math.Cos(p) * math.Pi / 2
	e.Bounce = math.Abs(math.Sin(p)) * 20 * i

	if e.FreezeTime >= BreakingLength-1e-9 {
		e.CurrentMove = MoveIdle
		e.Breaking = false
		e.FreezeTime = 0
	}
}

func windmill(e *Entity, i float64) {
	p := e.advance(MoveWindmill, 0.2, i)
	e.ArmAngle = math.Mod(p, 2*math.Pi)
	e.LegAngle = math.Sin(p) * math.Pi / 3
	e.BodyTilt = math.Sin(p) * 0.5
	e.Bounce = 10 * i
}

func freeze(e *Entity, i float64) {
	p := e.advance(MoveFreeze, 0.02, i)
	e.BodyTilt = 0.8
	e.ArmAngle = math.Pi / 2
	e.LegAngle = math.Pi / 4
	e.Bounce = 0
	e.HeadNod = math.Sin(p*4) * 2 * i
}

func toprock(e *Entity, i float64) {
	p := e.advance(MoveToprock, 0.15, i)
	e.LegAngle = math.Sin(p) * math.Pi / 4 * (0.5 + i)
	e.ArmAngle = math.Sin(p+math.Pi/2) * math.Pi / 3
	e.Bounce = math.Abs(math.Sin(p)) * 15 * i
	e.HipSwing = math.Sin(p) * 8
}

func wave(e *Entity, i float64) {
	p := e.advance(MoveWave, 0.12, i)
	if e.RobotWave {
		p = math.Floor(p/(math.Pi/4)) * (math.Pi / 4)
	}
	e.ArmAngle = math.Sin(p) * math.Pi / 1.5 * i
	e.ShoulderShrug = math.Sin(p+math.Pi/2) * 5
	e.BodyTilt = math.Sin(p) * 0.15
}

func bodywave(e *Entity, i float64) {
	p := e.advance(MoveBodywave, 0.1, i)
	e.BodyTilt = math.Sin(p) * 0.3 * i
	e.HipSwing = math.Sin(p-math.Pi/2) * 15 * i
	e.HeadBob = math.Sin(p+math.Pi/2) * 6
	e.ShoulderShrug = math.Sin(p) * 4
}

func armwave(e *Entity, i float64) {
	p := e.advance(MoveArmwave, 0.15, i)
	e.ArmAngle = math.Sin(p) * math.Pi / 1.5 * i
	e.ShoulderShrug = math.Sin(p+math.Pi/3) * 6 * i
}

var robotArms = [4]float64{0, math.Pi / 4, math.Pi / 2, math.Pi / 4}

func robot(e *Entity, i float64) {
	p := e.advance(MoveRobot, 0.08, i)
	step := int(math.Floor(p))
	e.ArmAngle = robotArms[step&3]
	e.LegAngle = 0
	e.BodyTilt = 0
	e.HeadNod = float64((step&1)*2-1) * 3
	e.Bounce = float64(step&1) * 5 * i
}

func jump(e *Entity, i float64) {
	p := e.advance(MoveJump, 0.2, i)
	lift := math.Abs(math.Sin(p))
	e.Bounce = lift*60*i + 10
	e.LegAngle = -lift * math.Pi / 4
	e.ArmAngle = lift * math.Pi / 1.2
}

func bounce(e *Entity, i float64) {
	p := e.advance(MoveBounce, 0.25, i)
	e.Bounce = math.Abs(math.Sin(p)) * 30 * i
	e.ArmAngle = math.Sin(p) * math.Pi / 6
	e.HeadBob = math.Sin(p*2) * 4
}

func hop(e *Entity, i float64) {
	p := e.advance(MoveHop, 0.22, i)
	e.Bounce = math.Max(0, math.Sin(p)) * 35 * i
	e.LegAngle = math.Pi / 6
	e.ArmAngle = math.Sin(p) * math.Pi / 4
}

func skip(e *Entity, i float64) {
	p := e.advance(MoveSkip, 0.18, i)
	e.Bounce = math.Abs(math.Sin(p)) * 25 * i
	e.LegAngle = math.Sin(p) * math.Pi / 3
	e.ArmAngle = -math.Sin(p) * math.Pi / 3
}

func leap(e *Entity, i float64) {
	p := e.advance(MoveLeap, 0.12, i)
	air := math.Max(0, math.Sin(p))
	e.Bounce = air * 70 * i
	e.LegAngle = math.Sin(p) * math.Pi / 2.5
	e.ArmAngle = air * math.Pi / 1.5
}

func spin(e *Entity, i float64) {
	e.SpinPhase += 0.3 * i
	e.Rotation = e.SpinPhase
	e.ArmAngle = math.Pi / 2
	e.Bounce = 5 * i
}

func twirl(e *Entity, i float64) {
	p := e.advance(MoveTwirl, 0.25, i)
	e.Rotation = p
	e.ArmAngle = math.Pi / 1.2
	e.LegAngle = math.Pi / 8
}

func pirouette(e *Entity, i float64) {
	p := e.advance(MovePirouette, 0.35, i)
	e.Rotation = p
	e.ArmAngle = math.Pi
	e.LegAngle = math.Pi / 4
	e.Bounce = 15 * i
}

func turn(e *Entity, i float64) {
	p := e.advance(MoveTurn, 0.1, i)
	e.Rotation = p
	e.HipSwing = math.Sin(p) * 6
}

func groove(e *Entity, i float64) {
	p := e.advance(MoveGroove, 0.1, i)
	e.HipSwing = math.Sin(p) * 15 * i
	e.Bounce = math.Abs(math.Sin(p*2)) * 20 * i
	e.ShoulderShrug = math.Sin(p*2) * 5
	e.HeadNod = math.Sin(p*2) * 4
}

func sway(e *Entity, i float64) {
	p := e.advance(MoveSway, 0.06, i)
	e.BodyTilt = math.Sin(p) * 0.25 * i
	e.HipSwing = math.Sin(p) * 10
	e.ArmAngle = math.Sin(p) * math.Pi / 6
}

func shimmy(e *Entity, i float64) {
	p := e.advance(MoveShimmy, 0.4, i)
	e.ShoulderShrug = math.Sin(p) * 8 * i
	e.HipSwing = math.Sin(p*0.5) * 4
}

// moonwalk glides against the facing direction.
func moonwalk(e *Entity, i float64) {
	p := e.advance(MoveMoonwalk, 0.1, i)
	e.LegAngle = math.Sin(p) * math.Pi / 6
	e.DriftX = -e.WalkDirection * 1.2 * (0.5 + i)
}

func slide(e *Entity, i float64) {
	p := e.advance(MoveSlide, 0.08, i)
	e.LegAngle = math.Sin(p) * math.Pi / 8
	e.BodyTilt = math.Sin(p) * 0.1
	e.DriftX = e.WalkDirection * math.Abs(math.Sin(p)) * 2 * i
}

func walk(e *Entity, i float64) {
	p := e.advance(MoveWalk, 0.15, i)
	e.LegAngle = math.Sin(p) * math.Pi / 4
	e.ArmAngle = -math.Sin(p) * math.Pi / 6
	e.DriftX = e.WalkDirection * 0.8 * (0.5 + i)
}
