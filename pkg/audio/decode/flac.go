// ABOUTME: FLAC stream decoder
// ABOUTME: Decodes FLAC frames with mewkiz/flac to 24-bit int32 samples
package decode

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/harperreed/dancefloor/pkg/audio"
)

// FLACStream decodes FLAC audio frame by frame
type FLACStream struct {
	r       io.Reader
	stream  *flac.Stream
	pending []int32
	format  audio.Format
}

// NewFLAC creates a FLAC stream reading from r
func NewFLAC(r io.Reader) (*FLACStream, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create flac decoder: %w", err)
	}

	info := stream.Info
	return &FLACStream{
		r:      r,
		stream: stream,
		format: audio.Format{
			Codec:      "flac",
			SampleRate: int(info.SampleRate),
			Channels:   int(info.NChannels),
			BitDepth:   int(info.BitsPerSample),
		},
	}, nil
}

// Read fills samples, carrying any leftover of a parsed frame into the next call
func (s *FLACStream) Read(samples []int32) (int, error) {
	written := 0
	for written < len(samples) {
		if len(s.pending) == 0 {
			if err := s.parseFrame(); err != nil {
				if err == io.EOF && written > 0 {
					return written, nil
				}
				return written, err
			}
		}
		n := copy(samples[written:], s.pending)
		s.pending = s.pending[n:]
		written += n
	}
	return written, nil
}

func (s *FLACStream) parseFrame() error {
	frame, err := s.stream.ParseNext()
	if err != nil {
		return err
	}

	channels := s.format.Channels
	block := int(frame.BlockSize)
	out := s.pending[:0]
	for i := 0; i < block; i++ {
		for ch := 0; ch < channels; ch++ {
			out = append(out, to24Bit(frame.Subframes[ch].Samples[i], s.format.BitDepth))
		}
	}
	s.pending = out
	return nil
}

// to24Bit rescales a sample of the given bit depth into the 24-bit range
func to24Bit(sample int32, bitDepth int) int32 {
	shift := bitDepth - 24
	switch {
	case shift > 0:
		return sample >> shift
	case shift < 0:
		return sample << -shift
	}
	return sample
}

// Format returns the stream info as a Format
func (s *FLACStream) Format() audio.Format { return s.format }

// Close closes the underlying reader
func (s *FLACStream) Close() error { return closeReader(s.r) }
