// ABOUTME: Raw PCM stream decoder
// ABOUTME: Reads headerless 16-bit little-endian stereo PCM at 48kHz
package decode

import (
	"encoding/binary"
	"io"

	"github.com/harperreed/dancefloor/pkg/audio"
)

// PCMStream decodes raw s16le interleaved samples
type PCMStream struct {
	r      io.Reader
	buf    []byte
	format audio.Format
}

// NewPCM wraps r as 48kHz stereo 16-bit PCM
func NewPCM(r io.Reader) *PCMStream {
	return &PCMStream{
		r: r,
		format: audio.Format{
			Codec:      "pcm",
			SampleRate: audio.DefaultSampleRate,
			Channels:   audio.DefaultChannels,
			BitDepth:   16,
		},
	}
}

// Read converts PCM bytes to int32 samples
func (s *PCMStream) Read(samples []int32) (int, error) {
	need := len(samples) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	n, err := io.ReadFull(s.r, buf)
	count := n / 2
	for i := 0; i < count; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(buf[i*2:])))
	}

	if err == io.ErrUnexpectedEOF {
		err = nil
		if count == 0 {
			err = io.EOF
		}
	}
	return count, err
}

// Format returns the fixed raw PCM format
func (s *PCMStream) Format() audio.Format { return s.format }

// Close closes the underlying reader
func (s *PCMStream) Close() error { return closeReader(s.r) }
