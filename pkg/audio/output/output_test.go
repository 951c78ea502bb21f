// ABOUTME: Audio output tests
// ABOUTME: Interface conformance, volume scaling and the discarding backend
package output

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harperreed/dancefloor/pkg/audio"
)

func TestBackendsImplementOutput(t *testing.T) {
	var _ Output = (*Oto)(nil)
	var _ Output = (*Discard)(nil)
}

func TestNewOtoDefaults(t *testing.T) {
	out := NewOto()
	assert.Equal(t, 100, out.Volume())
	assert.False(t, out.Muted())
	assert.Error(t, out.Write([]int32{1, 2}), "write before open")
}

func TestOtoVolumeClamped(t *testing.T) {
	out := NewOto()
	out.SetVolume(150)
	assert.Equal(t, 100, out.Volume())
	out.SetVolume(-5)
	assert.Equal(t, 0, out.Volume())
	out.SetMuted(true)
	assert.True(t, out.Muted())
}

func TestVolumeMultiplier(t *testing.T) {
	assert.Equal(t, 0.0, getVolumeMultiplier(80, true))
	assert.Equal(t, 0.5, getVolumeMultiplier(50, false))
	assert.Equal(t, 1.0, getVolumeMultiplier(100, false))
}

func TestScaleSampleClips(t *testing.T) {
	tests := []struct {
		name       string
		sample     int32
		multiplier float64
		expected   int32
	}{
		{"half", 1000, 0.5, 500},
		{"muted", audio.Max24Bit, 0, 0},
		{"clip high", audio.Max24Bit, 2, audio.Max24Bit},
		{"clip low", audio.Min24Bit, 2, audio.Min24Bit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scaleSample(tt.sample, tt.multiplier))
		})
	}
}

func TestDiscardCountsSamples(t *testing.T) {
	d := NewDiscard()
	assert.NoError(t, d.Open(48000, 2))
	assert.NoError(t, d.Write(make([]int32, 1600)))
	assert.NoError(t, d.Write(make([]int32, 400)))
	assert.Equal(t, int64(2000), d.Written())
	assert.NoError(t, d.Close())
}
