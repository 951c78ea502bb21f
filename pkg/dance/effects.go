// ABOUTME: Motion trails and bass-triggered particles owned by each dancer
// ABOUTME: Bounded buffers with decaying alpha and particle life
package dance

import (
	"math"
	"math/rand"

	"github.com/harperreed/dancefloor/pkg/spectrum"
)

const (
	MaxTrail      = 15
	MaxParticles  = 50
	MinParticleR  = 0.5
	trailDecay    = 0.85
	trailCutoff   = 0.05
	particleFade  = 0.02
	gravity       = 0.1
	spawnBurstMax = 3
)

// TrailPoint is a faded copy of the dancer's head position.
type TrailPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Alpha float64 `json:"alpha"`
}

// Particle is a short-lived spark thrown off on heavy bass.
type Particle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Life   float64 `json:"life"`
	Radius float64 `json:"radius"`
	Hue    float64 `json:"hue"`
}

// UpdateEffects ages trails and particles and spawns new ones when enabled.
func UpdateEffects(e *Entity, b spectrum.Bands, enabled bool, rng *rand.Rand) {
	kept := e.Trail[:0]
	for _, p := range e.Trail {
		p.Alpha *= trailDecay
		if p.Alpha >= trailCutoff {
			kept = append(kept, p)
		}
	}
	e.Trail = kept

	if enabled && b.Intensity() > 0.3 {
		hx, hy := e.headPosition()
		e.Trail = append(e.Trail, TrailPoint{X: hx, Y: hy, Alpha: 1})
		if len(e.Trail) > MaxTrail {
			e.Trail = append(e.Trail[:0], e.Trail[len(e.Trail)-MaxTrail:]...)
		}
	}

	alive := e.Particles[:0]
	for _, p := range e.Particles {
		p.X += p.VX
		p.Y += p.VY
		p.VY += gravity
		p.Life -= particleFade
		p.Radius = math.Max(MinParticleR, p.Radius*0.99)
		if p.Life > 0 {
			alive = append(alive, p)
		}
	}
	e.Particles = alive

	if enabled && b.Bass > 0.7 && rng.Float64() < 0.3 {
		n := 1 + rng.Intn(spawnBurstMax)
		hx, hy := e.headPosition()
		for i := 0; i < n && len(e.Particles) < MaxParticles; i++ {
			e.Particles = append(e.Particles, Particle{
				X:      hx,
				Y:      hy,
				VX:     (rng.Float64() - 0.5) * 4,
				VY:     -1 - rng.Float64()*4,
				Life:   1,
				Radius: math.Max(MinParticleR, (2+rng.Float64()*3)*e.Scale),
				Hue:    math.Mod(e.ColorHue+rng.Float64()*60-30+360, 360),
			})
		}
	}
}

// ClearEffects drops all trail points and particles.
func (e *Entity) ClearEffects() {
	e.Trail = nil
	e.Particles = nil
}

func (e *Entity) headPosition() (float64, float64) {
	s := e.Scale * e.SizeVariation
	return e.X + e.HipSwing*s, e.Y - (e.Bounce+bodyLength+headRadius-e.HeadBob)*s
}
