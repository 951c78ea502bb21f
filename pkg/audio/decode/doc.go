// ABOUTME: Audio file decoding package
// ABOUTME: Streams MP3, FLAC, WAV, Ogg/Opus and raw PCM files as int32 samples
// Package decode turns encoded audio files into interleaved PCM streams.
//
// Supports: MP3, FLAC, WAV, Ogg/Opus and raw 16-bit little-endian PCM.
//
// Every decoder implements Stream and emits int32 samples in the 24-bit
// range, whatever the source bit depth. Streams end with io.EOF; looping is
// the caller's job.
//
// Example:
//
//	stream, err := decode.Open("track.flac")
//	buf := make([]int32, 4096)
//	n, err := stream.Read(buf)
package decode
