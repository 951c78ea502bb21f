// ABOUTME: Dancer personalities and the per-entity move selection policy
// ABOUTME: Weighted personality sampling plus trigger and dwell rules per archetype
package dance

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/harperreed/dancefloor/pkg/spectrum"
)

// Personality is a behavioural archetype governing move selection.
type Personality string

const (
	Breakdancer Personality = "breakdancer"
	Waver       Personality = "waver"
	Jumper      Personality = "jumper"
	Spinner     Personality = "spinner"
	Groover     Personality = "groover"
)

// Personalities lists the archetypes in distribution order.
var Personalities = [...]Personality{Breakdancer, Waver, Jumper, Spinner, Groover}

// Distribution weights each personality in Personalities order. Weights need
// not sum to anything in particular; all-zero means uniform.
type Distribution [5]float64

// EvenDistribution gives every personality the same share.
func EvenDistribution() Distribution {
	return Distribution{20, 20, 20, 20, 20}
}

// Validate rejects negative or non-finite weights.
func (d Distribution) Validate() error {
	for i, w := range d {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("invalid weight %v for %s", w, Personalities[i])
		}
	}
	return nil
}

// Sample draws a personality proportionally to the weights.
func (d Distribution) Sample(rng *rand.Rand) Personality {
	total := 0.0
	for _, w := range d {
		total += w
	}
	if total <= 0 {
		return Personalities[rng.Intn(len(Personalities))]
	}

	r := rng.Float64() * total
	for i, w := range d {
		if r < w {
			return Personalities[i]
		}
		r -= w
	}
	// Rounding can leave r at the very top of the range.
	for i := len(d) - 1; i >= 0; i-- {
		if d[i] > 0 {
			return Personalities[i]
		}
	}
	return Personalities[0]
}

// Dwell is how long, in seconds, a dancer of this personality keeps a
// randomly chosen move before picking another.
func (p Personality) Dwell() float64 {
	switch p {
	case Breakdancer, Spinner:
		return 3
	case Waver:
		return 2
	case Jumper:
		return 2.5
	default:
		return 1.5
	}
}

var randomMoves = map[Personality][]string{
	Breakdancer: {MoveWindmill, MoveFreeze, MoveToprock},
	Waver:       {MoveBodywave, MoveArmwave, MoveRobot},
	Jumper:      {MoveHop, MoveSkip, MoveLeap},
	Spinner:     {MoveTwirl, MovePirouette, MoveTurn},
	Groover:     {MoveSway, MoveShimmy, MoveMoonwalk, MoveSlide, MoveWalk},
}

// ChooseMove applies the personality rules for one tick. elapsed is the tick
// duration already scaled by the speed multiplier. The first matching rule
// wins; when none fires the current move is kept. A dancer mid-breaking is
// left alone until the move finishes.
func ChooseMove(e *Entity, b spectrum.Bands, elapsed float64, rng *rand.Rand) {
	e.MoveTimer += elapsed
	if e.Breaking {
		return
	}

	switch e.Personality {
	case Breakdancer:
		if b.Bass > 0.6 && rng.Float64() < 0.1 {
			e.setMove(MoveBreaking)
			return
		}
		if e.MoveTimer > Breakdancer.Dwell() && b.Intensity() > 0.4 {
			e.dwellSwitch(rng)
		}

	case Waver:
		if b.Mid > 0.5 {
			if e.CurrentMove != MoveWave {
				e.RobotWave = rng.Float64() < 0.3
			}
			e.setMove(MoveWave)
			return
		}
		if e.MoveTimer > Waver.Dwell() {
			e.dwellSwitch(rng)
		}

	case Jumper:
		if b.Bass > 0.5 && rng.Float64() < 0.2 {
			e.setMove(MoveJump)
			return
		}
		if b.High > 0.4 {
			e.setMove(MoveBounce)
			return
		}
		if e.MoveTimer > Jumper.Dwell() {
			e.dwellSwitch(rng)
		}

	case Spinner:
		if b.UltraHigh > 0.3 {
			e.setMove(MoveSpin)
			return
		}
		if e.MoveTimer > Spinner.Dwell() {
			e.dwellSwitch(rng)
		}

	case Groover:
		if b.Mid > 0.4 {
			e.setMove(MoveGroove)
			return
		}
		if e.MoveTimer > Groover.Dwell() {
			e.dwellSwitch(rng)
		}
	}
}

func (e *Entity) dwellSwitch(rng *rand.Rand) {
	moves := randomMoves[e.Personality]
	if len(moves) == 0 {
		return
	}
	e.setMove(moves[rng.Intn(len(moves))])
	e.MoveTimer = 0
}
