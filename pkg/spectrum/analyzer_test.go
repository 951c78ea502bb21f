// ABOUTME: Tests for the FFT spectrum analyser
// ABOUTME: Checks sizing, silence, tone localisation and smoothing
package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func TestNewAnalyzerDefaults(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{})
	assert.Equal(t, DefaultFFTSize, a.FFTSize())
	assert.Equal(t, DefaultFFTSize/2, a.Bins())
	assert.Equal(t, DefaultSmoothing, a.cfg.Smoothing)
	assert.Equal(t, DefaultMinDecibels, a.cfg.MinDecibels)
	assert.Equal(t, DefaultMaxDecibels, a.cfg.MaxDecibels)
}

func TestFFTSizeRoundsToPowerOfTwo(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 512},
		{1, 32},
		{300, 512},
		{1024, 1024},
		{1 << 20, 32768},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewAnalyzer(AnalyzerConfig{FFTSize: tt.in}).FFTSize(), "size %d", tt.in)
	}
}

func TestSilenceProducesZeroSpectrum(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{})
	a.Write(make([]float64, 1024))

	bins := a.ByteFrequencyData(nil)
	require.Len(t, bins, 256)
	for i, v := range bins {
		assert.Zero(t, v, "bin %d", i)
	}
}

func TestToneLandsInExpectedBin(t *testing.T) {
	const sampleRate = 48000.0
	a := NewAnalyzer(AnalyzerConfig{FFTSize: 512, Smoothing: 0.01, MinDecibels: -100, MaxDecibels: 0})

	// Bin width is 48000/512 = 93.75 Hz, so 937.5 Hz is bin 10.
	a.Write(sine(937.5, sampleRate, 512))
	bins := a.ByteFrequencyData(nil)

	peak := 0
	for i, v := range bins {
		if v > bins[peak] {
			peak = i
		}
	}
	assert.Equal(t, 10, peak)
	assert.Greater(t, bins[10], byte(200))
	assert.Less(t, bins[200], bins[10])
}

func TestSmoothingRisesGradually(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{FFTSize: 512, MinDecibels: -100, MaxDecibels: 0})
	a.Write(sine(937.5, 48000, 512))

	first := a.ByteFrequencyData(nil)[10]
	var later byte
	for i := 0; i < 20; i++ {
		later = a.ByteFrequencyData(nil)[10]
	}
	assert.Greater(t, later, first)
}

func TestByteFrequencyDataReusesBuffer(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{FFTSize: 256})
	buf := make([]byte, 0, 512)
	out := a.ByteFrequencyData(buf)
	assert.Len(t, out, 128)
	assert.Equal(t, &buf[:1][0], &out[0])
}

func TestResetClearsHistory(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{})
	a.Write(sine(440, 48000, 2048))
	a.ByteFrequencyData(nil)

	a.Reset()
	for _, v := range a.ByteFrequencyData(nil) {
		assert.Zero(t, v)
	}
}
