// ABOUTME: Ogg/Opus stream decoder
// ABOUTME: Decodes Ogg Opus files with hraban/opus to int32 samples at 48kHz
package decode

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/hraban/opus.v2"

	"github.com/harperreed/dancefloor/pkg/audio"
)

// opusHeadPeek is how far into the file the OpusHead packet is searched for
const opusHeadPeek = 512

var errNoOpusHead = errors.New("no OpusHead packet in first ogg page")

// OpusStream decodes Ogg-encapsulated Opus audio
type OpusStream struct {
	r      io.Reader
	stream *opus.Stream
	pcm16  []int16
	format audio.Format
}

// NewOpus creates an Opus stream reading from r
func NewOpus(r io.Reader) (*OpusStream, error) {
	br := bufio.NewReaderSize(r, opusHeadPeek)
	channels, err := opusChannels(br)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(br)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus stream: %w", err)
	}

	return &OpusStream{
		r:      r,
		stream: stream,
		format: audio.Format{
			Codec:      "opus",
			SampleRate: audio.DefaultSampleRate,
			Channels:   channels,
			BitDepth:   16,
		},
	}, nil
}

// opusChannels reads the channel count from the OpusHead identification header
func opusChannels(br *bufio.Reader) (int, error) {
	head, _ := br.Peek(opusHeadPeek)
	idx := bytes.Index(head, []byte("OpusHead"))
	if idx < 0 || idx+9 >= len(head) {
		return 0, errNoOpusHead
	}
	channels := int(head[idx+9])
	if channels < 1 {
		return 0, fmt.Errorf("invalid opus channel count %d", channels)
	}
	return channels, nil
}

// Read converts decoded Opus frames to int32 samples
func (s *OpusStream) Read(samples []int32) (int, error) {
	if cap(s.pcm16) < len(samples) {
		s.pcm16 = make([]int16, len(samples))
	}
	pcm := s.pcm16[:len(samples)]

	n, err := s.stream.Read(pcm)
	if err != nil {
		return 0, err
	}

	count := n * s.format.Channels
	for i := 0; i < count; i++ {
		samples[i] = audio.SampleFromInt16(pcm[i])
	}
	return count, nil
}

// Format returns the decoded format
func (s *OpusStream) Format() audio.Format { return s.format }

// Close releases the opus stream and the underlying reader
func (s *OpusStream) Close() error {
	if err := s.stream.Close(); err != nil {
		return err
	}
	return closeReader(s.r)
}
