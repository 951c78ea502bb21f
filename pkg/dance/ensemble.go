// ABOUTME: The dancer ensemble: formation rebuilds, per-tick update and snapshots
// ABOUTME: Single writer that owns the dancers, the sync coordinator and the RNG
package dance

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/pkg/formation"
	"github.com/harperreed/dancefloor/pkg/spectrum"
)

const (
	MinSpeed = 0.1
	MaxSpeed = 2.0
	MaxCount = 200
)

// Options configures an ensemble.
type Options struct {
	Count        int              `json:"count" yaml:"count"`
	Aspect       formation.Aspect `json:"aspect" yaml:"aspect"`
	Speed        float64          `json:"speed" yaml:"speed"`
	Sync         bool             `json:"sync" yaml:"sync"`
	AutoSync     bool             `json:"auto_sync" yaml:"auto_sync"`
	Particles    bool             `json:"particles" yaml:"particles"`
	Distribution Distribution     `json:"distribution" yaml:"distribution"`
	Seed         int64            `json:"seed" yaml:"seed"` // 0 seeds from the clock
}

// DefaultOptions returns a small landscape floor with auto sync on.
func DefaultOptions() Options {
	return Options{
		Count:        5,
		Aspect:       formation.Landscape,
		Speed:        1,
		AutoSync:     true,
		Particles:    true,
		Distribution: EvenDistribution(),
	}
}

// Ensemble drives all dancers. It is not safe for concurrent use.
type Ensemble struct {
	opts   Options
	rng    *rand.Rand
	canvas formation.Canvas
	moves  *MoveRegistry

	dancers []*Entity
	sync    *SyncCoordinator
	bands   spectrum.Bands
	tick    uint64
}

// NewEnsemble validates opts and builds the first formation.
func NewEnsemble(opts Options) (*Ensemble, error) {
	if opts.Count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, opts.Count)
	}
	if opts.Aspect == "" {
		opts.Aspect = formation.Landscape
	}
	if _, err := formation.ParseAspect(string(opts.Aspect)); err != nil {
		return nil, err
	}
	if err := opts.Distribution.Validate(); err != nil {
		return nil, err
	}
	if opts.Speed == 0 {
		opts.Speed = 1
	}
	opts.Speed = clampSpeed(opts.Speed)
	if opts.Count > MaxCount {
		opts.Count = MaxCount
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Ensemble{
		opts:  opts,
		rng:   rand.New(rand.NewSource(seed)),
		moves: DefaultMoves(),
		sync:  NewSyncCoordinator(),
	}
	e.sync.Manual = opts.Sync
	e.sync.AutoEnabled = opts.AutoSync
	e.rebuild()

	return e, nil
}

// Moves exposes the registry so callers can register extra moves.
func (e *Ensemble) Moves() *MoveRegistry {
	return e.moves
}

// Options returns the current settings.
func (e *Ensemble) Options() Options {
	return e.opts
}

// Canvas returns the current canvas extents.
func (e *Ensemble) Canvas() formation.Canvas {
	return e.canvas
}

// Dancers returns the live entities in index order.
func (e *Ensemble) Dancers() []*Entity {
	return e.dancers
}

// SyncState returns the shared coordinator.
func (e *Ensemble) SyncState() *SyncCoordinator {
	return e.sync
}

// Bands returns the features used by the last applied tick.
func (e *Ensemble) Bands() spectrum.Bands {
	return e.bands
}

// Tick runs one update pass. When the sample is empty the floor freezes
// and Tick reports false.
func (e *Ensemble) Tick(sample []byte, dt float64) bool {
	b, ok := spectrum.Extract(sample)
	if !ok {
		return false
	}
	e.TickBands(b, dt)
	return true
}

// TickBands runs one update pass with precomputed features.
func (e *Ensemble) TickBands(b spectrum.Bands, dt float64) {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	e.bands = b
	e.tick++

	e.sync.Update(b, dt, e.opts.Speed, e.rng)

	step := Step{
		Bands:     b,
		DT:        dt,
		Speed:     e.opts.Speed,
		Particles: e.opts.Particles,
		Sync:      e.sync,
		Moves:     e.moves,
	}
	for _, d := range e.dancers {
		Update(d, step, e.rng)
	}
}

// SetCount rebuilds the floor with n dancers.
func (e *Ensemble) SetCount(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}
	if n > MaxCount {
		n = MaxCount
	}
	if n == e.opts.Count {
		return nil
	}
	e.opts.Count = n
	e.rebuild()
	return nil
}

// SetAspect rebuilds the floor for a new aspect mode.
func (e *Ensemble) SetAspect(a formation.Aspect) error {
	if _, err := formation.ParseAspect(string(a)); err != nil {
		return err
	}
	if a == e.opts.Aspect {
		return nil
	}
	e.opts.Aspect = a
	e.rebuild()
	return nil
}

// SetSpeed sets the speed multiplier, clamped to [MinSpeed, MaxSpeed].
func (e *Ensemble) SetSpeed(v float64) {
	e.opts.Speed = clampSpeed(v)
}

// SetSync toggles manual sync.
func (e *Ensemble) SetSync(on bool) {
	e.opts.Sync = on
	e.sync.Manual = on
}

// SetAutoSync enables or disables auto-sync episodes.
func (e *Ensemble) SetAutoSync(on bool) {
	e.opts.AutoSync = on
	e.sync.AutoEnabled = on
}

// SetParticles toggles trails and particles. Turning them off clears the
// existing ones.
func (e *Ensemble) SetParticles(on bool) {
	e.opts.Particles = on
	if !on {
		for _, d := range e.dancers {
			d.ClearEffects()
		}
	}
}

// SetDistribution changes the personality weights used by the next rebuild
// and reassigns personalities in place.
func (e *Ensemble) SetDistribution(d Distribution) error {
	if err := d.Validate(); err != nil {
		return err
	}
	e.opts.Distribution = d
	for _, dancer := range e.dancers {
		p := d.Sample(e.rng)
		if p != dancer.Personality {
			dancer.Personality = p
			dancer.Breaking = false
			dancer.FreezeTime = 0
			dancer.CurrentMove = MoveIdle
			dancer.MoveTimer = 0
		}
	}
	return nil
}

// rebuild discards every dancer and lays out a fresh formation.
func (e *Ensemble) rebuild() {
	e.canvas = e.opts.Aspect.Canvas()
	total := e.opts.Count
	scale := formation.ScaleFor(total, e.canvas)

	e.dancers = make([]*Entity, total)
	for i := range e.dancers {
		slot := formation.Assign(i, total, e.canvas)
		p := e.opts.Distribution.Sample(e.rng)
		e.dancers[i] = NewEntity(i, slot, scale, p, e.rng)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Ensemble.rebuild",
		"count":     total,
		"aspect":    e.opts.Aspect,
		"formation": formation.KindFor(total).String(),
		"scale":     scale,
	}).Debug("Ensemble rebuilt")
}

func clampSpeed(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return math.Max(MinSpeed, math.Min(MaxSpeed, v))
}
