// ABOUTME: Per-dancer walk/idle toggling with boundary reflection
// ABOUTME: Also applies move drift and eases idle dancers back to their slot
package dance

import (
	"math"
	"math/rand"

	"github.com/harperreed/dancefloor/pkg/spectrum"
)

const (
	walkStartChance = 0.3
	walkStopChance  = 0.2
	returnSpeed     = 1.5
	stepHeightScale = 8.0
)

func nextWalkToggle(rng *rand.Rand) float64 {
	return 3 + 4*rng.Float64()
}

// UpdateLocomotion moves the dancer horizontally for one tick. Walking is
// only considered while the floor is not synced; synced dancers stop and
// drift back to their slot.
func UpdateLocomotion(e *Entity, b spectrum.Bands, s Step, rng *rand.Rand) {
	if e.Synced {
		e.IsWalking = false
		e.WalkTimer = 0
	} else {
		e.WalkTimer += s.DT
		if e.WalkTimer >= e.NextWalkToggle {
			e.WalkTimer = 0
			e.NextWalkToggle = nextWalkToggle(rng)
			if !e.IsWalking {
				if rng.Float64() < walkStartChance {
					e.IsWalking = true
					if rng.Float64() < 0.5 {
						e.WalkDirection = -1
					} else {
						e.WalkDirection = 1
					}
				}
			} else if rng.Float64() < walkStopChance {
				e.IsWalking = false
			}
		}
	}

	dx := e.DriftX * s.Speed
	if e.IsWalking {
		e.WalkPhase += 0.1 * s.Speed
		e.StepPhase += 0.15 * s.Speed * e.SpeedVariation
		dx += e.WalkSpeed * s.Speed * (1 + 0.5*b.Bass) * e.WalkDirection
	} else if dx == 0 {
		e.easeHome(returnSpeed * s.Speed)
	}
	if dx != 0 {
		e.X += dx
		e.reflect(dx)
	}

	if e.IsWalking {
		e.StepHeight = math.Abs(math.Sin(e.StepPhase)) * stepHeightScale
	} else {
		e.StepHeight = 0
	}
}

// reflect clamps X to the boundaries and turns the dancer around when the
// last displacement dx pushed outward. Walking and drift both scale with
// WalkDirection, so one flip sends the dancer back inward.
func (e *Entity) reflect(dx float64) {
	if e.X <= e.BoundaryLeft {
		e.X = e.BoundaryLeft
		if dx < 0 {
			e.WalkDirection = -e.WalkDirection
		}
	}
	if e.X >= e.BoundaryRight {
		e.X = e.BoundaryRight
		if dx > 0 {
			e.WalkDirection = -e.WalkDirection
		}
	}
}

func (e *Entity) easeHome(speed float64) {
	d := e.OriginalX - e.X
	if math.Abs(d) <= speed {
		e.X = e.OriginalX
		return
	}
	if d > 0 {
		e.X += speed
	} else {
		e.X -= speed
	}
}
