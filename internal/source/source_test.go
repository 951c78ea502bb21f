// ABOUTME: Tests for audio sources
// ABOUTME: Generated beat, looping files, resampling and HTTP failures
package source

import (
	"bytes"
	"encoding/binary"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dancefloor/pkg/audio"
)

// writeWAV writes a 16-bit stereo WAV with a constant sample value
func writeWAV(t *testing.T, dir string, sampleRate, frames int, value int16) string {
	t.Helper()
	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = value
	}
	var data bytes.Buffer
	require.NoError(t, binary.Write(&data, binary.LittleEndian, samples))

	var b bytes.Buffer
	w := func(v any) { require.NoError(t, binary.Write(&b, binary.LittleEndian, v)) }
	b.WriteString("RIFF")
	w(uint32(36 + data.Len()))
	b.WriteString("WAVEfmt ")
	w(uint32(16))
	w(uint16(1))
	w(uint16(2))
	w(uint32(sampleRate))
	w(uint32(sampleRate * 4))
	w(uint16(4))
	w(uint16(16))
	b.WriteString("data")
	w(uint32(data.Len()))
	b.Write(data.Bytes())

	path := filepath.Join(dir, "loop.wav")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

func rms(samples []int32) float64 {
	var sum float64
	for _, s := range samples {
		f := audio.SampleToFloat(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestBeatFillsStereoBuffer(t *testing.T) {
	s := NewBeat(0, 0)
	assert.Equal(t, DefaultBPM, s.BPM())
	assert.Equal(t, 48000, s.SampleRate())
	assert.Equal(t, 2, s.Channels())

	buf := make([]int32, 1601)
	n, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1600, n)
	for i := 0; i < n; i += 2 {
		require.Equal(t, buf[i], buf[i+1])
	}

	title, _, album := s.Metadata()
	assert.Equal(t, "Test Beat", title)
	assert.Equal(t, "120 BPM", album)
}

func TestBeatIsDeterministic(t *testing.T) {
	a, b := NewBeat(128, 9), NewBeat(128, 9)
	bufA, bufB := make([]int32, 4800), make([]int32, 4800)
	for i := 0; i < 10; i++ {
		_, _ = a.Read(bufA)
		_, _ = b.Read(bufB)
		require.Equal(t, bufA, bufB)
	}
}

func TestBeatIsLoudestOnTheBeat(t *testing.T) {
	s := NewBeat(120, 3)
	// One beat at 120 BPM is half a second: 24000 frames
	beat := make([]int32, 24000*2)
	_, err := s.Read(beat)
	require.NoError(t, err)

	onset := rms(beat[:2400*2])
	tail := rms(beat[18000*2:])
	assert.Greater(t, onset, 3*tail)
}

func TestNormalizeKeepsMatchingRate(t *testing.T) {
	s := NewBeat(100, 1)
	assert.Same(t, s, Normalize(s, 48000))
	assert.IsType(t, &ResampledSource{}, Normalize(s, 44100))
}

func TestResampledFillsBuffer(t *testing.T) {
	r := NewResampled(NewBeat(120, 1), 44100)
	assert.Equal(t, 44100, r.SampleRate())
	assert.Equal(t, 2, r.Channels())

	buf := make([]int32, 1470)
	for i := 0; i < 20; i++ {
		n, err := r.Read(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
	}
	title, _, _ := r.Metadata()
	assert.Equal(t, "Test Beat", title)
}

func TestNewEmptyPathGivesBeat(t *testing.T) {
	s, err := New("", Options{BPM: 90})
	require.NoError(t, err)
	defer s.Close()
	require.IsType(t, &BeatSource{}, s)
	assert.Equal(t, 90.0, s.(*BeatSource).BPM())
}

func TestNewMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.mp3"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewResamplesForeignRate(t *testing.T) {
	path := writeWAV(t, t.TempDir(), 44100, 4410, 1000)
	s, err := New(path, Options{})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, audio.DefaultSampleRate, s.SampleRate())
	title, _, _ := s.Metadata()
	assert.Equal(t, "loop", title)
}

func TestFileSourceLoops(t *testing.T) {
	path := writeWAV(t, t.TempDir(), 48000, 100, -2000)
	f, err := NewFile(path)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]int32, 64)
	total := 0
	for i := 0; i < 20; i++ {
		n, err := f.Read(buf)
		require.NoError(t, err)
		require.Positive(t, n)
		total += n
		for _, v := range buf[:n] {
			require.Negative(t, v)
		}
	}
	assert.Greater(t, total, 200)
	assert.Positive(t, f.Loops())
}

func TestHTTPSourceRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/stream.mp3", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
