// ABOUTME: Stream interface and file dispatch
// ABOUTME: Opens an audio file and picks a decoder by extension
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/dancefloor/pkg/audio"
)

// ErrUnsupportedFormat is returned by Open for extensions with no decoder
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Stream yields decoded PCM samples
type Stream interface {
	// Read fills samples with interleaved PCM and returns the count written.
	// It returns io.EOF once the stream is exhausted.
	Read(samples []int32) (int, error)

	// Format describes the decoded samples
	Format() audio.Format

	// Close releases the stream and its underlying reader
	Close() error
}

// Extensions lists the file extensions Open understands
func Extensions() []string {
	return []string{".mp3", ".flac", ".wav", ".opus", ".ogg", ".pcm"}
}

// Open opens path and wraps it in the decoder for its extension
func Open(path string) (Stream, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var newStream func(io.Reader) (Stream, error)
	switch ext {
	case ".mp3":
		newStream = func(r io.Reader) (Stream, error) { return NewMP3(r) }
	case ".flac":
		newStream = func(r io.Reader) (Stream, error) { return NewFLAC(r) }
	case ".wav":
		newStream = func(r io.Reader) (Stream, error) { return NewWAV(r) }
	case ".opus", ".ogg":
		newStream = func(r io.Reader) (Stream, error) { return NewOpus(r) }
	case ".pcm":
		newStream = func(r io.Reader) (Stream, error) { return NewPCM(r), nil }
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(Extensions(), ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	s, err := newStream(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// closeReader closes r when it owns a resource
func closeReader(r io.Reader) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
