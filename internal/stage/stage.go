// ABOUTME: Host tick loop that turns audio into dance frames
// ABOUTME: Pulls PCM, feeds playback and the analyser, ticks the ensemble and publishes snapshots
package stage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/internal/source"
	"github.com/harperreed/dancefloor/pkg/audio"
	"github.com/harperreed/dancefloor/pkg/audio/output"
	"github.com/harperreed/dancefloor/pkg/dance"
	"github.com/harperreed/dancefloor/pkg/spectrum"
)

const (
	// DefaultFrameRate is the nominal engine tick rate
	DefaultFrameRate = 60

	controlQueueSize  = 32
	playbackQueueSize = 8
)

// ErrControlQueueFull is returned when controls arrive faster than ticks drain them
var ErrControlQueueFull = errors.New("control queue full")

// Config holds stage settings
type Config struct {
	FrameRate int
	FFTSize   int
	// Output plays the audio; nil runs silent
	Output output.Output
}

// Stats counts loop activity
type Stats struct {
	Ticks        uint64
	Frozen       uint64
	AudioDropped uint64
	Subscribers  int
}

// Stage owns the ensemble and is its only writer
type Stage struct {
	ens      *dance.Ensemble
	src      source.Source
	out      output.Output
	analyzer *spectrum.Analyzer

	frameRate int
	dt        float64

	pcm      []int32
	mono     []float64
	spectrum []byte

	controls chan dance.Command
	playback chan []int32

	subsMu sync.Mutex
	subs   map[int]chan dance.Frame
	nextID int

	paused atomic.Bool
	latest atomic.Pointer[dance.Frame]

	ticks        atomic.Uint64
	frozen       atomic.Uint64
	audioDropped atomic.Uint64
	readErrs     int
}

// New creates a stage. The source must already run at audio.DefaultSampleRate.
func New(ens *dance.Ensemble, src source.Source, cfg Config) *Stage {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = DefaultFrameRate
	}
	f := audio.Format{SampleRate: src.SampleRate(), Channels: src.Channels()}

	s := &Stage{
		ens:       ens,
		src:       src,
		out:       cfg.Output,
		analyzer:  spectrum.NewAnalyzer(spectrum.AnalyzerConfig{FFTSize: cfg.FFTSize}),
		frameRate: cfg.FrameRate,
		dt:        1 / float64(cfg.FrameRate),
		pcm:       make([]int32, f.FramesPer(cfg.FrameRate)*f.Channels),
		controls:  make(chan dance.Command, controlQueueSize),
		playback:  make(chan []int32, playbackQueueSize),
		subs:      make(map[int]chan dance.Frame),
	}
	first := ens.Snapshot()
	s.latest.Store(&first)
	return s
}

// Run ticks at the frame rate until ctx is cancelled
func (s *Stage) Run(ctx context.Context) error {
	title, _, _ := s.src.Metadata()
	logrus.WithFields(logrus.Fields{
		"function":   "Stage.Run",
		"fps":        s.frameRate,
		"fft_size":   s.analyzer.FFTSize(),
		"source":     title,
		"samplerate": s.src.SampleRate(),
	}).Info("Stage starting")

	var wg sync.WaitGroup
	if s.out != nil {
		if err := s.out.Open(s.src.SampleRate(), s.src.Channels()); err != nil {
			return fmt.Errorf("failed to open audio output: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.play(ctx)
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(s.frameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.WithField("ticks", s.ticks.Load()).Info("Stage stopping")
			wg.Wait()
			return nil
		case <-ticker.C:
			if s.paused.Load() {
				if s.applyControls() {
					s.publish()
				}
				continue
			}
			s.step()
		}
	}
}

// Advance runs n ticks back to back without waiting for the clock.
// It must not be called while Run is active.
func (s *Stage) Advance(n int) {
	for i := 0; i < n; i++ {
		s.step()
	}
}

// step runs one tick: controls, audio, analysis, engine, publish
func (s *Stage) step() {
	s.applyControls()

	n, err := s.src.Read(s.pcm)
	if err != nil {
		s.readErrs++
		// Log the first failure and then every few seconds
		if s.readErrs == 1 || s.readErrs%(s.frameRate*5) == 0 {
			logrus.WithFields(logrus.Fields{
				"function": "Stage.step",
				"errors":   s.readErrs,
			}).WithError(err).Warn("Audio source read failed; floor frozen")
		}
	} else {
		s.readErrs = 0
	}

	var sample []byte
	if n > 0 {
		pcm := s.pcm[:n]
		if s.out != nil {
			s.queuePlayback(pcm)
		}
		s.mono = audio.MonoFloat(pcm, s.src.Channels(), s.mono)
		s.analyzer.Write(s.mono)
		s.spectrum = s.analyzer.ByteFrequencyData(s.spectrum)
		sample = s.spectrum
	}

	s.ticks.Add(1)
	if !s.ens.Tick(sample, s.dt) {
		s.frozen.Add(1)
	}
	s.publish()
}

// queuePlayback hands a copy to the playback goroutine, dropping when it lags
func (s *Stage) queuePlayback(pcm []int32) {
	buf := make([]int32, len(pcm))
	copy(buf, pcm)
	select {
	case s.playback <- buf:
	default:
		s.audioDropped.Add(1)
	}
}

func (s *Stage) play(ctx context.Context) {
	defer s.out.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case buf := <-s.playback:
			if err := s.out.Write(buf); err != nil {
				logrus.WithError(err).Error("Audio output write failed")
				return
			}
		}
	}
}

// applyControls drains queued commands and reports whether any applied
func (s *Stage) applyControls() bool {
	applied := false
	for {
		select {
		case cmd := <-s.controls:
			if err := s.ens.Apply(cmd); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Stage.applyControls",
					"command":  cmd.String(),
				}).WithError(err).Warn("Control rejected")
				continue
			}
			logrus.WithField("command", cmd.String()).Debug("Control applied")
			applied = true
		default:
			return applied
		}
	}
}

func (s *Stage) publish() {
	frame := s.ens.Snapshot()
	s.latest.Store(&frame)

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- frame:
		default:
			// Slow subscribers skip frames
		}
	}
}

// Control queues a command for the next tick
func (s *Stage) Control(cmd dance.Command) error {
	select {
	case s.controls <- cmd:
		return nil
	default:
		return ErrControlQueueFull
	}
}

// Subscribe returns a channel of frames and a cancel func that closes it
func (s *Stage) Subscribe(buffer int) (<-chan dance.Frame, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan dance.Frame, buffer)

	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

// Pause stops ticking; the floor freezes and audio stops until resumed
func (s *Stage) Pause(paused bool) {
	if s.paused.Swap(paused) != paused {
		logrus.WithField("paused", paused).Info("Stage pause toggled")
	}
}

// Paused reports whether ticking is suspended
func (s *Stage) Paused() bool {
	return s.paused.Load()
}

// Latest returns the most recently published frame
func (s *Stage) Latest() dance.Frame {
	return *s.latest.Load()
}

// FrameRate returns the tick rate
func (s *Stage) FrameRate() int {
	return s.frameRate
}

// Metadata returns the source's title, artist and album
func (s *Stage) Metadata() (title, artist, album string) {
	return s.src.Metadata()
}

// Stats returns loop counters
func (s *Stage) Stats() Stats {
	s.subsMu.Lock()
	subs := len(s.subs)
	s.subsMu.Unlock()
	return Stats{
		Ticks:        s.ticks.Load(),
		Frozen:       s.frozen.Load(),
		AudioDropped: s.audioDropped.Load(),
		Subscribers:  subs,
	}
}
