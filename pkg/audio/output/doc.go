// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Output interface, an oto backend and a discarding backend
// Package output provides audio playback.
//
// Oto plays through the system sound device; Discard accepts and drops
// samples for headless runs.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(48000, 2)
//	err = out.Write(samples)
package output
