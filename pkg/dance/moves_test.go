// ABOUTME: Tests for the move registry and individual move functions
// ABOUTME: Covers breaking termination, phase odometers and drift moves
package dance

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dancefloor/pkg/formation"
)

func testEntity(t *testing.T, p Personality) *Entity {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	slot := formation.Slot{X: 640, Y: 430, Left: 540, Right: 740}
	return NewEntity(0, slot, 1, p, rng)
}

func TestDefaultMovesRegistersEverything(t *testing.T) {
	r := DefaultMoves()
	tags := r.Tags()
	assert.Len(t, tags, 24)

	for _, set := range randomMoves {
		for _, m := range set {
			_, ok := r.Lookup(m)
			assert.True(t, ok, "personality move %s", m)
		}
	}
	for _, m := range baseSyncMoves {
		_, ok := r.Lookup(m)
		assert.True(t, ok, "sync move %s", m)
	}
}

func TestBreakingEndsOnTwentiethInvocation(t *testing.T) {
	r := DefaultMoves()
	e := testEntity(t, Breakdancer)
	e.setMove(MoveBreaking)
	require.True(t, e.Breaking)

	for i := 1; i < 20; i++ {
		require.NoError(t, r.Execute(e, 0.8))
		assert.Equal(t, MoveBreaking, e.CurrentMove, "invocation %d", i)
		assert.True(t, e.Breaking, "invocation %d", i)
	}

	require.NoError(t, r.Execute(e, 0.8))
	assert.Equal(t, MoveIdle, e.CurrentMove)
	assert.False(t, e.Breaking)
	assert.Zero(t, e.FreezeTime)
}

func TestMovePhasesAreIndependent(t *testing.T) {
	r := DefaultMoves()
	e := testEntity(t, Groover)

	e.CurrentMove = MoveGroove
	require.NoError(t, r.Execute(e, 1))
	require.NoError(t, r.Execute(e, 1))
	groovePhase := e.MovePhases[MoveGroove]
	assert.InDelta(t, 0.2, groovePhase, 1e-12)

	e.CurrentMove = MoveSway
	require.NoError(t, r.Execute(e, 0.5))
	assert.InDelta(t, 0.03, e.MovePhases[MoveSway], 1e-12)
	assert.Equal(t, groovePhase, e.MovePhases[MoveGroove])
}

func TestZeroIntensityFreezesMovePhase(t *testing.T) {
	r := DefaultMoves()
	e := testEntity(t, Waver)
	e.CurrentMove = MoveWave
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Execute(e, 0))
	}
	assert.Zero(t, e.MovePhases[MoveWave])
}

func TestRobotWaveIsQuantized(t *testing.T) {
	r := DefaultMoves()
	smooth := testEntity(t, Waver)
	robotic := testEntity(t, Waver)
	smooth.CurrentMove, robotic.CurrentMove = MoveWave, MoveWave
	robotic.RobotWave = true

	// The first tick stays inside the first quantization step.
	require.NoError(t, r.Execute(smooth, 1))
	require.NoError(t, r.Execute(robotic, 1))
	assert.NotZero(t, smooth.ArmAngle)
	assert.Zero(t, robotic.ArmAngle)
}

func TestDriftMovesFollowWalkDirection(t *testing.T) {
	r := DefaultMoves()
	for _, move := range []string{MoveWalk, MoveSlide} {
		e := testEntity(t, Groover)
		e.CurrentMove = move
		e.WalkDirection = -1
		for i := 0; i < 3; i++ {
			require.NoError(t, r.Execute(e, 1))
		}
		assert.Negative(t, e.DriftX, move)
	}

	e := testEntity(t, Groover)
	e.CurrentMove = MoveMoonwalk
	e.WalkDirection = 1
	require.NoError(t, r.Execute(e, 1))
	assert.Negative(t, e.DriftX)
}

func TestSpinSetsRotation(t *testing.T) {
	r := DefaultMoves()
	e := testEntity(t, Spinner)
	e.CurrentMove = MoveSpin
	require.NoError(t, r.Execute(e, 1))
	require.NoError(t, r.Execute(e, 1))
	assert.InDelta(t, 0.6, e.Rotation, 1e-12)
	assert.Equal(t, e.SpinPhase, e.Rotation)
}

func TestExecuteUnknownMove(t *testing.T) {
	r := DefaultMoves()
	e := testEntity(t, Groover)
	e.CurrentMove = "moonjump"
	assert.Error(t, r.Execute(e, 1))
}

func TestRegisterCustomMove(t *testing.T) {
	r := NewMoveRegistry()
	r.Register("lean", func(e *Entity, i float64) {
		e.BodyTilt = 0.4 * i
	})
	e := testEntity(t, Groover)
	e.CurrentMove = "lean"
	require.NoError(t, r.Execute(e, 0.5))
	assert.InDelta(t, 0.2, e.BodyTilt, 1e-12)
	assert.Equal(t, []string{"lean"}, r.Tags())
}

func TestUnregisteredMoveLoggedOncePerTag(t *testing.T) {
	hook := test.NewGlobal()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
		logrus.SetLevel(level)
	})

	r := NewMoveRegistry()
	r.Register(MoveIdle, idle)
	e := testEntity(t, Groover)
	rng := rand.New(rand.NewSource(3))
	coord := NewSyncCoordinator()
	coord.Manual = true
	coord.Move = "ghost"
	step := Step{DT: tick, Speed: 1, Sync: coord, Moves: r}

	misses := func(tag string) int {
		n := 0
		for _, entry := range hook.AllEntries() {
			if entry.Data["move"] == tag {
				assert.Equal(t, logrus.DebugLevel, entry.Level)
				n++
			}
		}
		return n
	}

	for i := 0; i < 5; i++ {
		Update(e, step, rng)
	}
	require.Equal(t, "ghost", e.CurrentMove)
	assert.Equal(t, 1, misses("ghost"))

	coord.Move = "phantom"
	Update(e, step, rng)
	Update(e, step, rng)
	assert.Equal(t, 1, misses("ghost"))
	assert.Equal(t, 1, misses("phantom"))
}
