// ABOUTME: Audio type definitions
// ABOUTME: Stream formats, sample conversions and the mono downmix used for analysis
package audio

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23

	// DefaultSampleRate is the rate every source is normalised to before playback and analysis
	DefaultSampleRate = 48000
	// DefaultChannels is the channel count of normalised sources
	DefaultChannels = 2
)

// Format describes a decoded audio stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// FramesPer returns how many frames (samples per channel) cover one tick at the given rate
func (f Format) FramesPer(ticksPerSecond int) int {
	if ticksPerSecond <= 0 || f.SampleRate <= 0 {
		return 0
	}
	return f.SampleRate / ticksPerSecond
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// SampleToFloat maps a 24-bit sample onto [-1, 1)
func SampleToFloat(sample int32) float64 {
	return float64(sample) / float64(Max24Bit+1)
}

// SampleFromFloat maps [-1, 1] onto the 24-bit range, clipping outside it
func SampleFromFloat(v float64) int32 {
	s := int64(v * float64(Max24Bit+1))
	if s > Max24Bit {
		s = Max24Bit
	} else if s < Min24Bit {
		s = Min24Bit
	}
	return int32(s)
}

// MonoFloat averages interleaved frames down to one float channel in [-1, 1).
// dst is reused when it has enough capacity. A trailing partial frame is dropped.
func MonoFloat(samples []int32, channels int, dst []float64) []float64 {
	if channels < 1 {
		channels = 1
	}
	frames := len(samples) / channels
	if cap(dst) < frames {
		dst = make([]float64, frames)
	}
	dst = dst[:frames]

	for i := 0; i < frames; i++ {
		var sum int64
		for c := 0; c < channels; c++ {
			sum += int64(samples[i*channels+c])
		}
		dst[i] = SampleToFloat(int32(sum / int64(channels)))
	}
	return dst
}
