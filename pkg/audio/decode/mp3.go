// ABOUTME: MP3 stream decoder
// ABOUTME: Decodes MP3 with go-mp3 to int32 stereo samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/harperreed/dancefloor/pkg/audio"
)

// MP3Stream decodes MP3 audio
type MP3Stream struct {
	r       io.Reader
	decoder *mp3.Decoder
	buf     []byte
	format  audio.Format
}

// NewMP3 creates an MP3 stream reading from r
func NewMP3(r io.Reader) (*MP3Stream, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	return &MP3Stream{
		r:       r,
		decoder: decoder,
		format: audio.Format{
			Codec:      "mp3",
			SampleRate: decoder.SampleRate(),
			Channels:   2, // go-mp3 always emits stereo
			BitDepth:   16,
		},
	}, nil
}

// Read converts decoded MP3 bytes to int32 samples
func (s *MP3Stream) Read(samples []int32) (int, error) {
	need := len(samples) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	n, err := io.ReadFull(s.decoder, buf)
	count := n / 2
	for i := 0; i < count; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(buf[i*2:])))
	}

	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	if err == io.EOF && count > 0 {
		err = nil
	}
	return count, err
}

// Format returns the decoded format
func (s *MP3Stream) Format() audio.Format { return s.format }

// Close closes the underlying reader
func (s *MP3Stream) Close() error { return closeReader(s.r) }
