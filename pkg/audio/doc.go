// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and sample conversion functions shared by decoders and sources
// Package audio provides the sample representation shared by the decoders,
// sources and playback output.
//
// Samples are int32 values left-justified in the 24-bit range, interleaved by
// channel. Decoders emit that form whatever the source bit depth, playback
// converts back to 16-bit, and the spectrum analyser consumes a mono float
// downmix:
//
//	mono = audio.MonoFloat(frame, format.Channels, mono)
//	analyzer.Write(mono)
package audio
