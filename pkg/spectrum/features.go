// ABOUTME: Four-band feature extraction from a byte frequency spectrum
// ABOUTME: Bass, mid, high and ultra-high means normalised to [0,1]
package spectrum

// Nominal bin ranges, half-open [start, end).
const (
	BassStart      = 0
	BassEnd        = 10
	MidEnd         = 50
	HighEnd        = 100
	UltraHighEnd   = 150
	FullSampleSize = UltraHighEnd
)

// Bands holds the per-frame band energies, each in [0,1].
type Bands struct {
	Bass      float64 `json:"bass"`
	Mid       float64 `json:"mid"`
	High      float64 `json:"high"`
	UltraHigh float64 `json:"ultra_high"`
}

// Energy is the sum of all four bands (0..4).
func (b Bands) Energy() float64 {
	return b.Bass + b.Mid + b.High + b.UltraHigh
}

// Intensity is the mean of bass, mid and high; it drives move amplitudes.
func (b Bands) Intensity() float64 {
	return (b.Bass + b.Mid + b.High) / 3
}

// Dominant names the strongest band. Ties resolve to "" so callers can fall
// back to a neutral choice.
func (b Bands) Dominant() string {
	switch {
	case b.Bass > b.Mid && b.Bass > b.High && b.Bass > b.UltraHigh:
		return "bass"
	case b.Mid > b.Bass && b.Mid > b.High && b.Mid > b.UltraHigh:
		return "mid"
	case b.High > b.Bass && b.High > b.Mid && b.High > b.UltraHigh:
		return "high"
	case b.UltraHigh > b.Bass && b.UltraHigh > b.Mid && b.UltraHigh > b.High:
		return "ultra_high"
	}
	return ""
}

// Extract reduces a byte spectrum to band energies.
//
// Each band is the mean over its full nominal width; bins past the end of a
// short sample count as zero. An empty sample yields ok=false and the caller
// should keep its previous state.
func Extract(sample []byte) (Bands, bool) {
	if len(sample) == 0 {
		return Bands{}, false
	}

	return Bands{
		Bass:      bandMean(sample, BassStart, BassEnd),
		Mid:       bandMean(sample, BassEnd, MidEnd),
		High:      bandMean(sample, MidEnd, HighEnd),
		UltraHigh: bandMean(sample, HighEnd, UltraHighEnd),
	}, true
}

func bandMean(sample []byte, start, end int) float64 {
	sum := 0
	for i := start; i < end && i < len(sample); i++ {
		sum += int(sample[i])
	}
	return float64(sum) / float64(end-start) / 255.0
}
