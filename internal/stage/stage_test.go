// ABOUTME: Tests for the stage tick loop
// ABOUTME: Frames from the test beat, freezing on silence, controls, subscribers and pause
package stage

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dancefloor/internal/source"
	"github.com/harperreed/dancefloor/pkg/audio/output"
	"github.com/harperreed/dancefloor/pkg/dance"
)

// deadSource never produces audio
type deadSource struct{}

func (deadSource) Read([]int32) (int, error)          { return 0, io.EOF }
func (deadSource) SampleRate() int                    { return 48000 }
func (deadSource) Channels() int                      { return 2 }
func (deadSource) Metadata() (string, string, string) { return "dead", "", "" }
func (deadSource) Close() error                       { return nil }

func newEnsemble(t *testing.T) *dance.Ensemble {
	t.Helper()
	opts := dance.DefaultOptions()
	opts.Seed = 11
	ens, err := dance.NewEnsemble(opts)
	require.NoError(t, err)
	return ens
}

func TestAdvanceDancesToTheBeat(t *testing.T) {
	s := New(newEnsemble(t), source.NewBeat(120, 1), Config{})
	before := s.Latest()

	s.Advance(120)
	after := s.Latest()

	assert.Equal(t, uint64(120), after.Tick)
	assert.NotEqual(t, before.Dancers, after.Dancers)
	assert.Positive(t, after.Bands.Bass+after.Bands.Mid+after.Bands.High)
	assert.Equal(t, uint64(120), s.Stats().Ticks)
	assert.Zero(t, s.Stats().Frozen)
}

func TestSilentSourceFreezesFloor(t *testing.T) {
	s := New(newEnsemble(t), deadSource{}, Config{})
	before := s.Latest()

	s.Advance(30)
	assert.Equal(t, before, s.Latest())
	assert.Equal(t, uint64(30), s.Stats().Frozen)
}

func TestPCMBufferCoversOneTick(t *testing.T) {
	s := New(newEnsemble(t), source.NewBeat(120, 1), Config{FrameRate: 30})
	assert.Len(t, s.pcm, 1600*2)
	assert.Equal(t, 30, s.FrameRate())
	assert.InDelta(t, 1.0/30, s.dt, 1e-12)
}

func TestControlsApplyOnNextTick(t *testing.T) {
	s := New(newEnsemble(t), source.NewBeat(120, 1), Config{})

	require.NoError(t, s.Control(dance.Command{Name: dance.CmdCount, Count: 12}))
	require.NoError(t, s.Control(dance.Command{Name: "moonwalk"}))
	assert.Len(t, s.Latest().Dancers, 5)

	s.Advance(1)
	assert.Len(t, s.Latest().Dancers, 12)
	assert.Equal(t, "diamond", s.Latest().Formation)
}

func TestControlQueueFull(t *testing.T) {
	s := New(newEnsemble(t), deadSource{}, Config{})
	var err error
	for i := 0; i <= controlQueueSize; i++ {
		err = s.Control(dance.Command{Name: dance.CmdSpeed, Speed: 1})
	}
	assert.ErrorIs(t, err, ErrControlQueueFull)
}

func TestSubscribeAndCancel(t *testing.T) {
	s := New(newEnsemble(t), source.NewBeat(120, 1), Config{})
	frames, cancel := s.Subscribe(4)
	assert.Equal(t, 1, s.Stats().Subscribers)

	s.Advance(10)
	got := 0
	for len(frames) > 0 {
		<-frames
		got++
	}
	assert.Equal(t, 4, got, "slow subscriber keeps only what fits")

	cancel()
	cancel()
	_, open := <-frames
	assert.False(t, open)
	assert.Zero(t, s.Stats().Subscribers)
}

func TestRunPlaysAndPublishes(t *testing.T) {
	out := output.NewDiscard()
	s := New(newEnsemble(t), source.NewBeat(120, 1), Config{FrameRate: 100, Output: out})
	frames, cancel := s.Subscribe(64)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case f := <-frames:
		assert.Positive(t, f.Tick)
	case <-time.After(2 * time.Second):
		t.Fatal("no frame published")
	}

	require.Eventually(t, func() bool { return out.Written() > 0 }, 2*time.Second, 10*time.Millisecond)

	stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPauseFreezesButAppliesControls(t *testing.T) {
	s := New(newEnsemble(t), source.NewBeat(120, 1), Config{FrameRate: 100})
	s.Pause(true)
	assert.True(t, s.Paused())

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.NoError(t, s.Control(dance.Command{Name: dance.CmdCount, Count: 3}))
	require.Eventually(t, func() bool { return len(s.Latest().Dancers) == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, s.Stats().Ticks)

	stop()
	<-done
}
