// ABOUTME: Network sources for HTTP MP3 streams and ffmpeg-decoded live streams
// ABOUTME: Streams end at EOF instead of looping
package source

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/pkg/audio"
	"github.com/harperreed/dancefloor/pkg/audio/decode"
)

// httpTimeout bounds the initial connection, not the stream itself
const httpTimeout = 15 * time.Second

// HTTPMP3Source streams MP3 from an HTTP URL
type HTTPMP3Source struct {
	url    string
	stream *decode.MP3Stream
}

// NewHTTPMP3 creates a new HTTP MP3 streaming source
func NewHTTPMP3(url string) (*HTTPMP3Source, error) {
	client := &http.Client{
		Transport: &http.Transport{ResponseHeaderTimeout: httpTimeout},
	}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTTP stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	stream, err := decode.NewMP3(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to decode MP3 stream: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"url":         url,
		"sample_rate": stream.Format().SampleRate,
	}).Info("Streaming MP3 from HTTP")

	return &HTTPMP3Source{url: url, stream: stream}, nil
}

func (s *HTTPMP3Source) Read(samples []int32) (int, error) {
	return s.stream.Read(samples)
}

func (s *HTTPMP3Source) SampleRate() int { return s.stream.Format().SampleRate }
func (s *HTTPMP3Source) Channels() int   { return s.stream.Format().Channels }
func (s *HTTPMP3Source) Metadata() (string, string, string) {
	return "HTTP Stream", "HTTP Stream", ""
}
func (s *HTTPMP3Source) Close() error { return s.stream.Close() }

// FFmpegSource streams audio from any URL/format using ffmpeg.
// Supports HLS (.m3u8), DASH, and other streaming protocols.
type FFmpegSource struct {
	url    string
	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
	buf    []byte
}

// NewFFmpeg starts ffmpeg decoding url to 48kHz stereo s16le on stdout
func NewFFmpeg(url string) (*FFmpegSource, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	cmd := exec.Command("ffmpeg",
		"-loglevel", "error",
		"-i", url,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", audio.DefaultSampleRate),
		"-ac", fmt.Sprintf("%d", audio.DefaultChannels),
		"-")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	logrus.WithField("url", url).Info("Streaming via ffmpeg")

	return &FFmpegSource{
		url:    url,
		cmd:    cmd,
		stdout: stdout,
		reader: bufio.NewReader(stdout),
	}, nil
}

func (s *FFmpegSource) Read(samples []int32) (int, error) {
	need := len(samples) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	n, err := io.ReadFull(s.reader, buf)
	if err != nil && n == 0 {
		return 0, err
	}

	count := n / 2
	for i := 0; i < count; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(buf[i*2:])))
	}
	return count, nil
}

func (s *FFmpegSource) SampleRate() int { return audio.DefaultSampleRate }
func (s *FFmpegSource) Channels() int   { return audio.DefaultChannels }
func (s *FFmpegSource) Metadata() (string, string, string) {
	return "Live Stream", "Live Stream", ""
}
func (s *FFmpegSource) Close() error {
	if s.stdout != nil {
		s.stdout.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}
	return nil
}
