// ABOUTME: Audio-reactive stick-figure dance engine
// ABOUTME: Entities, move registry, personalities, locomotion, gestures, sync and ensemble
// Package dance animates a crowd of stick figures from band features.
//
// Each tick the Ensemble extracts band features from a byte spectrum,
// advances the shared SyncCoordinator once, then updates every Entity in
// index order: phase and baseline kinematics, move selection (personality
// policy or the shared sync move), the move function from the registry,
// locomotion, gestures and effects. Snapshot returns a Frame of Poses which
// renderers turn into joints with Pose.Skeleton.
//
// Kinematic increments are applied per tick (the engine is designed for a
// fixed 60 Hz host loop). Dwell and walk timers use the tick's dt in seconds.
//
// The package holds no locks. Hosts serialize Tick, Snapshot and Apply.
//
// Example:
//
//	ens, err := dance.NewEnsemble(dance.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	ens.Tick(spectrumBytes, 1.0/60)
//	frame := ens.Snapshot()
package dance

import "errors"

var (
	// ErrInvalidCount is returned when a dancer count below 1 is requested.
	ErrInvalidCount = errors.New("dancer count must be at least 1")

	// ErrUnknownCommand is returned by Apply for unrecognised commands.
	ErrUnknownCommand = errors.New("unknown command")
)
