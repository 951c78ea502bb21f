// ABOUTME: Floor-wide synchronisation of dance phase and move
// ABOUTME: Manual sync toggle plus an energy-triggered auto-sync episode state machine
package dance

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/pkg/spectrum"
)

// SyncMode is the coordinator's current state.
type SyncMode int

const (
	Individual SyncMode = iota
	ManualSync
	AutoSync
)

func (m SyncMode) String() string {
	switch m {
	case ManualSync:
		return "manual"
	case AutoSync:
		return "auto"
	default:
		return "individual"
	}
}

const (
	AutoSyncCooldown     = 5.0
	AutoSyncEnterEnergy  = 1.8
	AutoSyncEnterBass    = 0.8
	AutoSyncExitEnergy   = 0.5
	AutoSyncMinDuration  = 3.0
	AutoSyncDurationSpan = 4.0

	syncMoveInterval = 2.0
	syncForceEnergy  = 1.5
)

var (
	bassSyncMoves = []string{MoveJump, MoveBounce, MoveBreaking}
	midSyncMoves  = []string{MoveWave, MoveGroove, MoveRobot}
	baseSyncMoves = []string{MoveGroove, MoveWave, MoveBounce, MoveSway, MoveSpin, MoveJump, MoveRobot, MoveShimmy}
)

// SyncCoordinator owns the shared phase and move. The ensemble updates it
// once per tick before any dancer reads it; dancers never write to it.
type SyncCoordinator struct {
	Phase float64
	Move  string

	Manual      bool
	AutoEnabled bool

	autoActive   bool
	autoTimer    float64
	autoDuration float64
	sinceEpisode float64

	moveTimer float64
	wasActive bool
}

// NewSyncCoordinator returns a coordinator in individual mode with the
// auto-sync cooldown already satisfied.
func NewSyncCoordinator() *SyncCoordinator {
	return &SyncCoordinator{
		Move:         MoveGroove,
		sinceEpisode: AutoSyncCooldown,
	}
}

// Mode reports the current state. Manual sync takes precedence.
func (s *SyncCoordinator) Mode() SyncMode {
	switch {
	case s.Manual:
		return ManualSync
	case s.autoActive:
		return AutoSync
	default:
		return Individual
	}
}

// Active reports whether dancers should follow the shared phase and move.
func (s *SyncCoordinator) Active() bool {
	return s.Manual || s.autoActive
}

// AutoRemaining is the time left in the current auto-sync episode.
func (s *SyncCoordinator) AutoRemaining() float64 {
	if !s.autoActive {
		return 0
	}
	return s.autoDuration - s.autoTimer
}

// AutoDuration is the drawn length of the current auto-sync episode.
func (s *SyncCoordinator) AutoDuration() float64 {
	return s.autoDuration
}

// Update advances the coordinator by one tick using ensemble-wide features.
func (s *SyncCoordinator) Update(b spectrum.Bands, dt, speed float64, rng *rand.Rand) {
	energy := b.Energy()

	switch {
	case !s.AutoEnabled:
		if s.autoActive {
			s.endEpisode("disabled")
		}
	case s.Manual:
		// Manual sync suspends the auto state machine.
	case s.autoActive:
		s.autoTimer += dt
		if s.autoTimer >= s.autoDuration {
			s.endEpisode("duration elapsed")
		} else if energy < AutoSyncExitEnergy {
			s.endEpisode("energy dropped")
		}
	default:
		s.sinceEpisode += dt
		if s.sinceEpisode >= AutoSyncCooldown && (energy > AutoSyncEnterEnergy || b.Bass > AutoSyncEnterBass) {
			s.autoActive = true
			s.autoTimer = 0
			s.autoDuration = AutoSyncMinDuration + AutoSyncDurationSpan*rng.Float64()
			logrus.WithFields(logrus.Fields{
				"function": "SyncCoordinator.Update",
				"energy":   energy,
				"bass":     b.Bass,
				"duration": s.autoDuration,
			}).Debug("Auto sync episode started")
		}
	}

	active := s.Active()
	if !active {
		s.wasActive = false
		return
	}

	s.Phase += PhaseIncrement(b, speed)
	s.moveTimer += dt

	// Loud passages reselect on every tick
	if !s.wasActive || s.moveTimer >= syncMoveInterval || energy > syncForceEnergy {
		s.selectMove(b, rng)
	}
	s.wasActive = true
}

func (s *SyncCoordinator) endEpisode(reason string) {
	logrus.WithFields(logrus.Fields{
		"function": "SyncCoordinator.Update",
		"reason":   reason,
		"length":   s.autoTimer,
	}).Debug("Auto sync episode ended")

	s.autoActive = false
	s.autoTimer = 0
	s.sinceEpisode = 0
}

// selectMove picks the shared move biased by the dominant band.
func (s *SyncCoordinator) selectMove(b spectrum.Bands, rng *rand.Rand) {
	s.moveTimer = 0
	switch b.Dominant() {
	case "bass":
		s.Move = bassSyncMoves[rng.Intn(len(bassSyncMoves))]
	case "mid":
		s.Move = midSyncMoves[rng.Intn(len(midSyncMoves))]
	case "ultra_high":
		s.Move = MoveSpin
	default:
		s.Move = baseSyncMoves[rng.Intn(len(baseSyncMoves))]
	}
}
