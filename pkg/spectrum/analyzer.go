// ABOUTME: Windowed FFT analyser producing a 0-255 magnitude spectrum
// ABOUTME: Rolling input window, Blackman window, temporal smoothing and dB mapping
package spectrum

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	DefaultFFTSize     = 512
	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0

	// MinBandFFTSize yields enough bins for every band
	MinBandFFTSize = 2 * FullSampleSize
	MaxFFTSize     = maxFFTSize

	minFFTSize = 32
	maxFFTSize = 32768
)

// AnalyzerConfig tunes the analyser. Zero values select the defaults.
type AnalyzerConfig struct {
	FFTSize     int     // rounded up to a power of two
	Smoothing   float64 // time constant in (0,1)
	MinDecibels float64
	MaxDecibels float64
}

// Analyzer keeps the most recent FFTSize mono samples and produces a byte
// spectrum of FFTSize/2 bins on demand. It is not safe for concurrent use.
type Analyzer struct {
	cfg AnalyzerConfig

	fft    *fourier.FFT
	window []float64

	ring   []float64
	pos    int
	frame  []float64
	coeffs []complex128

	smoothed []float64
}

// NewAnalyzer creates an analyser with the given configuration.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	cfg.FFTSize = normalizeFFTSize(cfg.FFTSize)
	if cfg.Smoothing <= 0 || cfg.Smoothing >= 1 {
		cfg.Smoothing = DefaultSmoothing
	}
	if cfg.MinDecibels == 0 && cfg.MaxDecibels == 0 {
		cfg.MinDecibels = DefaultMinDecibels
		cfg.MaxDecibels = DefaultMaxDecibels
	}
	if cfg.MaxDecibels <= cfg.MinDecibels {
		cfg.MaxDecibels = cfg.MinDecibels + 70
	}

	n := cfg.FFTSize
	return &Analyzer{
		cfg:      cfg,
		fft:      fourier.NewFFT(n),
		window:   blackman(n),
		ring:     make([]float64, n),
		frame:    make([]float64, n),
		coeffs:   make([]complex128, n/2+1),
		smoothed: make([]float64, n/2),
	}
}

// FFTSize returns the effective transform size.
func (a *Analyzer) FFTSize() int {
	return a.cfg.FFTSize
}

// Bins returns the number of spectrum bins produced (FFTSize/2).
func (a *Analyzer) Bins() int {
	return a.cfg.FFTSize / 2
}

// Write appends mono samples in [-1,1] to the rolling window.
func (a *Analyzer) Write(mono []float64) {
	n := len(a.ring)
	// Only the newest n samples can influence the next transform.
	if len(mono) > n {
		mono = mono[len(mono)-n:]
	}
	for _, s := range mono {
		a.ring[a.pos] = s
		a.pos = (a.pos + 1) % n
	}
}

// ByteFrequencyData fills dst with the current byte spectrum and returns it.
// dst is grown when it is shorter than Bins().
func (a *Analyzer) ByteFrequencyData(dst []byte) []byte {
	bins := a.Bins()
	if cap(dst) < bins {
		dst = make([]byte, bins)
	}
	dst = dst[:bins]

	n := len(a.ring)
	for i := 0; i < n; i++ {
		a.frame[i] = a.ring[(a.pos+i)%n] * a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	tau := a.cfg.Smoothing
	dbRange := a.cfg.MaxDecibels - a.cfg.MinDecibels
	for k := 0; k < bins; k++ {
		mag := cmplx.Abs(a.coeffs[k]) / float64(n)
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*mag

		if a.smoothed[k] <= 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(a.smoothed[k])
		scaled := 255 * (db - a.cfg.MinDecibels) / dbRange
		dst[k] = byte(math.Max(0, math.Min(255, scaled)))
	}

	return dst
}

// Reset clears the input window and smoothing history.
func (a *Analyzer) Reset() {
	for i := range a.ring {
		a.ring[i] = 0
	}
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
	a.pos = 0
}

func normalizeFFTSize(n int) int {
	if n <= 0 {
		return DefaultFFTSize
	}
	size := minFFTSize
	for size < n && size < maxFFTSize {
		size <<= 1
	}
	return size
}

// blackman returns the Blackman window (alpha 0.16) of length n.
func blackman(n int) []float64 {
	const alpha = 0.16
	a0 := (1 - alpha) / 2
	a1 := 0.5
	a2 := alpha / 2

	w := make([]float64, n)
	for i := range w {
		x := float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return w
}
