// ABOUTME: Local floor orchestration for the dancefloor binary
// ABOUTME: Builds the ensemble, source, playback and stage from config and runs them with the TUI
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/internal/config"
	"github.com/harperreed/dancefloor/internal/source"
	"github.com/harperreed/dancefloor/internal/stage"
	"github.com/harperreed/dancefloor/internal/ui"
	"github.com/harperreed/dancefloor/pkg/audio/output"
	"github.com/harperreed/dancefloor/pkg/dance"
)

const statsInterval = 5 * time.Second

// BuildStage assembles a stage from cfg. Playback is attached only when
// withAudio is set and the config does not mute audio.
func BuildStage(cfg config.Config, withAudio bool) (*stage.Stage, source.Source, error) {
	opts, err := cfg.EnsembleOptions()
	if err != nil {
		return nil, nil, err
	}
	ens, err := dance.NewEnsemble(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create ensemble: %w", err)
	}

	src, err := source.New(cfg.Audio, source.Options{BPM: cfg.BPM, Seed: cfg.Seed})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audio source: %w", err)
	}

	var out output.Output
	if withAudio && !cfg.MuteAudio {
		out = output.NewOto()
	}

	st := stage.New(ens, src, stage.Config{
		FrameRate: cfg.FrameRate,
		FFTSize:   cfg.FFTSize,
		Output:    out,
	})
	return st, src, nil
}

// Floor runs a stage in this process with audio and an optional TUI
type Floor struct {
	config config.Config
	stage  *stage.Stage
	source source.Source
}

// NewFloor creates a local floor
func NewFloor(cfg config.Config) (*Floor, error) {
	st, src, err := BuildStage(cfg, true)
	if err != nil {
		return nil, err
	}
	return &Floor{config: cfg, stage: st, source: src}, nil
}

// Stage returns the floor's stage
func (f *Floor) Stage() *stage.Stage {
	return f.stage
}

// Run ticks the floor until ctx ends or the TUI quits
func (f *Floor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer f.source.Close()

	// The stage ending for any reason stops the TUI or stats loop too
	stageErr := make(chan error, 1)
	go func() {
		stageErr <- f.stage.Run(ctx)
		cancel()
	}()

	var uiErr error
	if f.config.NoTUI {
		f.logStats(ctx)
	} else {
		uiErr = f.runTUI(ctx)
	}

	cancel()
	if err := <-stageErr; err != nil {
		return err
	}
	return uiErr
}

func (f *Floor) runTUI(ctx context.Context) error {
	p := ui.NewProgram(ui.NewModel(ui.StageController{Stage: f.stage}))

	frames, unsubscribe := f.stage.Subscribe(2)
	defer unsubscribe()
	go ui.Pump(ctx, p, frames)

	title, artist, _ := f.stage.Metadata()
	go p.Send(ui.MetadataMsg{Title: title, Artist: artist})

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}

// logStats reports floor activity in place of the TUI
func (f *Floor) logStats(ctx context.Context) {
	title, artist, _ := f.stage.Metadata()
	logrus.WithFields(logrus.Fields{
		"title":  title,
		"artist": artist,
	}).Info("Floor running without TUI")

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	lastMode := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := f.stage.Latest()
			stats := f.stage.Stats()
			entry := logrus.WithFields(logrus.Fields{
				"ticks":     stats.Ticks,
				"frozen":    stats.Frozen,
				"dropped":   stats.AudioDropped,
				"dancers":   len(frame.Dancers),
				"formation": frame.Formation,
				"sync":      frame.SyncMode,
				"bass":      fmt.Sprintf("%.2f", frame.Bands.Bass),
			})
			if frame.SyncMode != lastMode {
				entry = entry.WithField("sync_move", frame.SyncMove)
				lastMode = frame.SyncMode
			}
			entry.Info("Floor stats")
		}
	}
}
