// ABOUTME: Per-tick hand gesture selection layered on top of the dance move
// ABOUTME: Rules re-roll every tick from normal hands; later rules overwrite earlier ones
package dance

import (
	"math"
	"math/rand"

	"github.com/harperreed/dancefloor/pkg/spectrum"
)

// Gesture is a transient hand pose.
type Gesture string

const (
	GestureNormal   Gesture = "normal"
	GestureClap     Gesture = "clap"
	GesturePoint    Gesture = "point"
	GestureWave     Gesture = "wave"
	GestureFistPump Gesture = "fist_pump"
	GestureThumbsUp Gesture = "thumbs_up"
	GesturePeace    Gesture = "peace"
	GestureRock     Gesture = "rock"
	GestureSnap     Gesture = "snap"
	GestureJazz     Gesture = "jazz_hands"
	GesturePointUp  Gesture = "point_up"
	GestureFist     Gesture = "fist"
)

const fistPumpDecay = 0.9

// UpdateGestures picks both hands for this tick.
func UpdateGestures(e *Entity, b spectrum.Bands, rng *rand.Rand) {
	e.GesturePhase += 0.1 * e.SpeedVariation
	e.LeftHand = GestureNormal
	e.RightHand = GestureNormal

	if b.Bass > 0.6 && math.Sin(e.GesturePhase*4) > 0 && rng.Float64() < 0.3 {
		e.LeftHand = GestureClap
		e.RightHand = GestureClap
	}

	if b.Mid > 0.5 && rng.Float64() < 0.2 {
		e.RightHand = GesturePoint
	}

	if b.High > 0.4 && math.Sin(e.GesturePhase*2) > 0.5 {
		e.LeftHand = GestureWave
	}

	if b.Energy() > 1.5 && rng.Float64() < 0.1 {
		e.FistPump = 1
	} else {
		e.FistPump *= fistPumpDecay
	}
	if e.FistPump > 0.5 {
		e.RightHand = GestureFistPump
	}

	switch e.CurrentMove {
	case MoveGroove:
		if rng.Float64() < 0.1 {
			e.RightHand = GestureThumbsUp
		}
	case MoveWave:
		if rng.Float64() < 0.15 {
			e.LeftHand = GesturePeace
		}
	case MoveBreaking, MoveJump:
		if rng.Float64() < 0.1 {
			e.LeftHand = GestureRock
			e.RightHand = GestureRock
		}
	}

	switch e.Personality {
	case Groover:
		if rng.Float64() < 0.05 {
			e.RightHand = GestureSnap
		}
	case Waver:
		if b.Mid > 0.3 && rng.Float64() < 0.03 {
			e.LeftHand = GestureJazz
			e.RightHand = GestureJazz
		}
	case Spinner:
		if e.CurrentMove == MoveSpin && rng.Float64() < 0.05 {
			e.RightHand = GesturePointUp
		}
	case Breakdancer:
		if b.Bass > 0.5 && rng.Float64() < 0.03 {
			e.LeftHand = GestureFist
		}
	}
}
