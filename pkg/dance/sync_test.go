// ABOUTME: Tests for the sync coordinator state machine
// ABOUTME: Entry thresholds, episode hysteresis, cooldown and move bias
package dance

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dancefloor/pkg/spectrum"
)

const tick = 1.0 / 60

var (
	loud   = spectrum.Bands{Bass: 0.9, Mid: 0.6, High: 0.4, UltraHigh: 0.2}
	medium = spectrum.Bands{Bass: 0.3, Mid: 0.3, High: 0.2, UltraHigh: 0.1}
	quiet  = spectrum.Bands{Bass: 0.1, Mid: 0.1, High: 0.05}
)

func newAutoSync() (*SyncCoordinator, *rand.Rand) {
	s := NewSyncCoordinator()
	s.AutoEnabled = true
	return s, rand.New(rand.NewSource(21))
}

func TestSyncStartsIndividual(t *testing.T) {
	s := NewSyncCoordinator()
	assert.Equal(t, Individual, s.Mode())
	assert.False(t, s.Active())

	rng := rand.New(rand.NewSource(1))
	s.Update(loud, tick, 1, rng)
	assert.False(t, s.Active(), "auto sync disabled")
}

func TestAutoSyncEntryThresholds(t *testing.T) {
	tests := []struct {
		name  string
		bands spectrum.Bands
		want  bool
	}{
		{"energy above 1.8", spectrum.Bands{Bass: 0.5, Mid: 0.5, High: 0.5, UltraHigh: 0.4}, true},
		{"bass above 0.8", spectrum.Bands{Bass: 0.85}, true},
		{"energy just under 1.8", spectrum.Bands{Bass: 0.44, Mid: 0.44, High: 0.44, UltraHigh: 0.44}, false},
		{"medium", medium, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rng := newAutoSync()
			s.Update(tt.bands, tick, 1, rng)
			assert.Equal(t, tt.want, s.Active())
			if tt.want {
				assert.Equal(t, AutoSync, s.Mode())
				assert.GreaterOrEqual(t, s.AutoDuration(), 3.0)
				assert.LessOrEqual(t, s.AutoDuration(), 7.0)
			}
		})
	}
}

func TestAutoSyncHoldsForDrawnDuration(t *testing.T) {
	s, rng := newAutoSync()
	s.Update(loud, tick, 1, rng)
	require.True(t, s.Active())
	duration := s.AutoDuration()
	assert.InDelta(t, duration, s.AutoRemaining(), 1e-12)

	// Medium energy neither re-triggers nor drops below the exit threshold.
	elapsed := 0.0
	for s.Active() {
		s.Update(medium, tick, 1, rng)
		elapsed += tick
		require.Less(t, elapsed, 8.0)
	}
	assert.GreaterOrEqual(t, elapsed, duration-1e-9)
	assert.Less(t, elapsed, duration+tick+1e-9)
	assert.Zero(t, s.AutoRemaining())
}

func TestAutoSyncExitsOnLowEnergy(t *testing.T) {
	s, rng := newAutoSync()
	s.Update(loud, tick, 1, rng)
	require.True(t, s.Active())

	s.Update(medium, tick, 1, rng)
	require.True(t, s.Active())

	s.Update(quiet, tick, 1, rng)
	assert.False(t, s.Active())
	assert.Equal(t, Individual, s.Mode())
}

func TestAutoSyncCooldownBlocksReentry(t *testing.T) {
	s, rng := newAutoSync()
	s.Update(loud, tick, 1, rng)
	s.Update(quiet, tick, 1, rng)
	require.False(t, s.Active())

	// Loud music right after an episode must not restart it for 5s.
	elapsed := 0.0
	for !s.Active() {
		s.Update(loud, tick, 1, rng)
		elapsed += tick
		require.Less(t, elapsed, 6.0)
	}
	assert.GreaterOrEqual(t, elapsed, AutoSyncCooldown-1e-9)
	assert.Less(t, elapsed, AutoSyncCooldown+2*tick)
}

func TestManualSyncOverridesAuto(t *testing.T) {
	s, rng := newAutoSync()
	s.Manual = true
	s.Update(quiet, tick, 1, rng)
	assert.Equal(t, ManualSync, s.Mode())
	assert.True(t, s.Active())

	before := s.Phase
	s.Update(quiet, tick, 1, rng)
	assert.InDelta(t, PhaseIncrement(quiet, 1), s.Phase-before, 1e-12)
}

func TestDisablingAutoSyncEndsEpisode(t *testing.T) {
	s, rng := newAutoSync()
	s.Update(loud, tick, 1, rng)
	require.True(t, s.Active())

	s.AutoEnabled = false
	s.Update(loud, tick, 1, rng)
	assert.False(t, s.Active())
}

func TestSyncMoveBiasedByDominantBand(t *testing.T) {
	tests := []struct {
		name  string
		bands spectrum.Bands
		allow []string
	}{
		{"bass", spectrum.Bands{Bass: 0.9, Mid: 0.2}, bassSyncMoves},
		{"mid", spectrum.Bands{Bass: 0.2, Mid: 0.9}, midSyncMoves},
		{"ultra high", spectrum.Bands{UltraHigh: 0.9}, []string{MoveSpin}},
		{"high falls back to base set", spectrum.Bands{High: 0.9}, baseSyncMoves},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSyncCoordinator()
			rng := rand.New(rand.NewSource(4))
			for i := 0; i < 50; i++ {
				s.selectMove(tt.bands, rng)
				assert.Contains(t, tt.allow, s.Move)
			}
		})
	}
}

func TestSyncMoveReselectedEveryTwoSeconds(t *testing.T) {
	s := NewSyncCoordinator()
	s.Manual = true
	rng := rand.New(rand.NewSource(4))

	s.Update(medium, tick, 1, rng)
	s.Move = "sentinel"
	for i := 0; i < 110; i++ {
		s.Update(medium, tick, 1, rng)
	}
	assert.Equal(t, "sentinel", s.Move)
	for i := 0; i < 20; i++ {
		s.Update(medium, tick, 1, rng)
	}
	assert.NotEqual(t, "sentinel", s.Move)
}

func TestLoudEnergyReselectsEveryTick(t *testing.T) {
	s := NewSyncCoordinator()
	s.Manual = true
	rng := rand.New(rand.NewSource(4))
	s.Update(medium, tick, 1, rng)

	// energy 1.80, above the 1.5 force threshold but well inside the 2s interval
	bands := spectrum.Bands{Bass: 0.9, Mid: 0.5, High: 0.3, UltraHigh: 0.1}
	require.Greater(t, bands.Energy(), 1.5)
	for i := 0; i < 20; i++ {
		s.Move = "sentinel"
		s.Update(bands, tick, 1, rng)
		assert.Contains(t, bassSyncMoves, s.Move, "tick %d", i)
	}

	// just under the threshold the move holds
	edge := spectrum.Bands{Bass: 0.55, Mid: 0.5, High: 0.3, UltraHigh: 0.1}
	require.Less(t, edge.Energy(), 1.5)
	s.Move = "sentinel"
	s.Update(edge, tick, 1, rng)
	assert.Equal(t, "sentinel", s.Move)
}
