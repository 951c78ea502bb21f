// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for playback backends plus a discarding backend
package output

import "sync/atomic"

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write outputs audio samples (blocks until written)
	Write(samples []int32) error

	// SetVolume sets the volume (0-100)
	SetVolume(volume int)

	// SetMuted sets mute state
	SetMuted(muted bool)

	// Close releases output resources
	Close() error
}

// Discard is an Output that drops every sample. Headless hosts use it so the
// stage loop runs the same path with or without a sound card.
type Discard struct {
	written atomic.Int64
}

// NewDiscard creates a discarding output
func NewDiscard() *Discard {
	return &Discard{}
}

func (d *Discard) Open(sampleRate, channels int) error { return nil }

func (d *Discard) Write(samples []int32) error {
	d.written.Add(int64(len(samples)))
	return nil
}

func (d *Discard) SetVolume(volume int) {}
func (d *Discard) SetMuted(muted bool)  {}
func (d *Discard) Close() error         { return nil }

// Written returns the number of samples accepted so far
func (d *Discard) Written() int64 {
	return d.written.Load()
}
