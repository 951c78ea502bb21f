// ABOUTME: Looping file source built on the stream decoders
// ABOUTME: Reopens the file at end of stream so the floor keeps dancing
package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/pkg/audio/decode"
)

// FileSource reads from an audio file and loops at EOF
type FileSource struct {
	path   string
	stream decode.Stream
	title  string
	loops  int
}

// NewFile opens path with the decoder matching its extension
func NewFile(path string) (*FileSource, error) {
	stream, err := decode.Open(path)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(path)
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	f := stream.Format()

	logrus.WithFields(logrus.Fields{
		"title":       title,
		"codec":       f.Codec,
		"sample_rate": f.SampleRate,
		"channels":    f.Channels,
		"bit_depth":   f.BitDepth,
	}).Info("Loaded audio file")

	return &FileSource{
		path:   path,
		stream: stream,
		title:  title,
	}, nil
}

func (s *FileSource) Read(samples []int32) (int, error) {
	n, err := s.stream.Read(samples)
	if !errors.Is(err, io.EOF) {
		return n, err
	}
	if n > 0 {
		return n, nil
	}

	// Loop the audio - reopen from the start
	if err := s.rewind(); err != nil {
		return 0, err
	}
	n, err = s.stream.Read(samples)
	if errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("audio file %s has no samples: %w", s.title, err)
	}
	return n, err
}

func (s *FileSource) rewind() error {
	s.stream.Close()
	stream, err := decode.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to reopen for loop: %w", err)
	}
	s.stream = stream
	s.loops++
	logrus.WithFields(logrus.Fields{"title": s.title, "loop": s.loops}).Debug("Looping audio file")
	return nil
}

func (s *FileSource) SampleRate() int { return s.stream.Format().SampleRate }
func (s *FileSource) Channels() int   { return s.stream.Format().Channels }
func (s *FileSource) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}
func (s *FileSource) Close() error {
	return s.stream.Close()
}

// Loops returns how many times the file has wrapped around
func (s *FileSource) Loops() int { return s.loops }
