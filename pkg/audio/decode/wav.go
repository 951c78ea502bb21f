// ABOUTME: WAV stream decoder
// ABOUTME: Decodes RIFF/WAVE files through beep's wav package
package decode

import (
	"fmt"
	"io"

	"github.com/gopxl/beep/wav"

	"github.com/harperreed/dancefloor/pkg/audio"
)

// WAVStream decodes WAV audio
type WAVStream struct {
	decoder interface {
		Stream(samples [][2]float64) (int, bool)
		Err() error
		Close() error
	}
	frames [][2]float64
	format audio.Format
}

// NewWAV creates a WAV stream reading from r. Mono files are duplicated to stereo.
func NewWAV(r io.Reader) (*WAVStream, error) {
	decoder, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create wav decoder: %w", err)
	}

	return &WAVStream{
		decoder: decoder,
		format: audio.Format{
			Codec:      "wav",
			SampleRate: int(format.SampleRate),
			Channels:   2,
			BitDepth:   format.Precision * 8,
		},
	}, nil
}

// Read converts beep float frames to int32 stereo samples
func (s *WAVStream) Read(samples []int32) (int, error) {
	want := len(samples) / 2
	if want == 0 {
		return 0, nil
	}
	if cap(s.frames) < want {
		s.frames = make([][2]float64, want)
	}
	frames := s.frames[:want]

	n, ok := s.decoder.Stream(frames)
	for i := 0; i < n; i++ {
		samples[2*i] = audio.SampleFromFloat(frames[i][0])
		samples[2*i+1] = audio.SampleFromFloat(frames[i][1])
	}

	if !ok {
		if err := s.decoder.Err(); err != nil {
			return 2 * n, fmt.Errorf("wav decode failed: %w", err)
		}
		if n == 0 {
			return 0, io.EOF
		}
	}
	return 2 * n, nil
}

// Format returns the decoded format
func (s *WAVStream) Format() audio.Format { return s.format }

// Close releases the beep decoder, which also closes the underlying reader
func (s *WAVStream) Close() error {
	return s.decoder.Close()
}
