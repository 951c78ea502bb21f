// ABOUTME: Generated drum loop used when no audio file is given
// ABOUTME: Kick, snare, hi-hat and a bass pulse so every band has something to react to
package source

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/harperreed/dancefloor/pkg/audio"
)

const (
	// DefaultBPM is the tempo of the generated beat
	DefaultBPM = 120.0

	defaultBeatSeed = 1
	beatsPerBar     = 4
	beatGain        = 0.8
)

// BeatSource generates a four-on-the-floor pattern at 48kHz stereo
type BeatSource struct {
	mu          sync.Mutex
	bpm         float64
	sampleIndex uint64
	rng         *rand.Rand
	lastNoise   float64
}

// NewBeat creates a beat generator. A bpm of zero or less uses DefaultBPM.
func NewBeat(bpm float64, seed int64) *BeatSource {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	if seed == 0 {
		seed = defaultBeatSeed
	}
	return &BeatSource{
		bpm: bpm,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// BPM returns the generated tempo
func (s *BeatSource) BPM() float64 { return s.bpm }

func (s *BeatSource) Read(samples []int32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(samples) / audio.DefaultChannels
	for i := 0; i < frames; i++ {
		v := audio.SampleFromFloat(s.next())
		samples[i*2] = v
		samples[i*2+1] = v
	}
	return frames * audio.DefaultChannels, nil
}

// next renders one mono sample and advances the clock
func (s *BeatSource) next() float64 {
	t := float64(s.sampleIndex) / audio.DefaultSampleRate
	s.sampleIndex++

	beatLen := 60 / s.bpm
	beat := int(t / beatLen)
	tb := t - float64(beat)*beatLen
	th := math.Mod(tb, beatLen/2)

	noise := s.rng.Float64()*2 - 1
	hiss := noise - s.lastNoise
	s.lastNoise = noise

	var v float64

	// Kick: pitch drops from 120Hz to 50Hz
	v += 0.9 * math.Sin(2*math.Pi*(50*tb+70.0/18*(1-math.Exp(-18*tb)))) * math.Exp(-8*tb)

	// Snare on the back beat
	if beat%beatsPerBar == 1 || beat%beatsPerBar == 3 {
		v += 0.4*noise*math.Exp(-20*tb) + 0.25*math.Sin(2*math.Pi*180*tb)*math.Exp(-15*tb)
	}

	// Hi-hat on every eighth
	v += 0.15 * hiss * math.Exp(-60*th)

	// Bass pulse on every eighth, swelling over the bar
	v += 0.2 * math.Sin(2*math.Pi*110*t) * math.Exp(-6*th) * (0.5 + 0.5*math.Sin(2*math.Pi*t/(beatLen*beatsPerBar)))

	return math.Max(-1, math.Min(1, v*beatGain))
}

func (s *BeatSource) SampleRate() int { return audio.DefaultSampleRate }
func (s *BeatSource) Channels() int   { return audio.DefaultChannels }
func (s *BeatSource) Metadata() (string, string, string) {
	return "Test Beat", "dancefloor", fmt.Sprintf("%.0f BPM", s.bpm)
}
func (s *BeatSource) Close() error { return nil }
