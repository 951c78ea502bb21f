// ABOUTME: Audio source abstraction for streaming from files, URLs or a generated beat
// ABOUTME: Picks a source for a path or URL and normalises its sample rate
package source

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/pkg/audio"
)

// Source provides PCM audio samples
type Source interface {
	// Read reads interleaved PCM samples (24-bit range in int32). Returns number of samples read or error.
	Read(samples []int32) (int, error)
	// SampleRate returns the sample rate of the audio
	SampleRate() int
	// Channels returns the number of channels
	Channels() int
	// Metadata returns title, artist, album
	Metadata() (title, artist, album string)
	// Close closes the audio source
	Close() error
}

// Options tune source creation
type Options struct {
	// BPM of the generated beat used when no path is given
	BPM float64
	// Seed for the beat's noise voices; 0 uses a fixed default
	Seed int64
}

// New creates a source for a file path or HTTP URL.
// An empty path gives the generated test beat. The result always runs at
// audio.DefaultSampleRate.
func New(pathOrURL string, opts Options) (Source, error) {
	var (
		src Source
		err error
	)

	switch {
	case pathOrURL == "":
		src = NewBeat(opts.BPM, opts.Seed)
	case strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://"):
		if strings.Contains(pathOrURL, ".m3u8") {
			logrus.WithField("url", pathOrURL).Info("Streaming from HLS URL")
			src, err = NewFFmpeg(pathOrURL)
		} else {
			logrus.WithField("url", pathOrURL).Info("Streaming from HTTP URL")
			src, err = NewHTTPMP3(pathOrURL)
		}
	default:
		if _, statErr := os.Stat(pathOrURL); statErr != nil {
			return nil, fmt.Errorf("audio file not found: %w", statErr)
		}
		src, err = NewFile(pathOrURL)
	}
	if err != nil {
		return nil, err
	}

	return Normalize(src, audio.DefaultSampleRate), nil
}

// Normalize wraps src in a resampler when it does not already run at rate
func Normalize(src Source, rate int) Source {
	if src.SampleRate() == rate {
		return src
	}
	logrus.WithFields(logrus.Fields{
		"function": "source.Normalize",
		"from":     src.SampleRate(),
		"to":       rate,
	}).Info("Resampling source")
	return NewResampled(src, rate)
}
