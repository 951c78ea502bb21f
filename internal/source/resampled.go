// ABOUTME: Resampling wrapper for sources at a foreign sample rate
// ABOUTME: Pulls from the inner source until the caller's buffer is full
package source

import (
	"errors"
	"io"

	"github.com/harperreed/dancefloor/pkg/audio/resample"
)

// ResampledSource wraps a Source and resamples to a target sample rate
type ResampledSource struct {
	source      Source
	resampler   *resample.Resampler
	targetRate  int
	inputBuffer []int32
}

// NewResampled creates a resampling wrapper around src
func NewResampled(src Source, targetRate int) *ResampledSource {
	inputRate := src.SampleRate()
	channels := src.Channels()

	// 100ms of input per pull
	inputSamples := (inputRate * channels * 100) / 1000

	return &ResampledSource{
		source:      src,
		resampler:   resample.New(inputRate, targetRate, channels),
		targetRate:  targetRate,
		inputBuffer: make([]int32, inputSamples),
	}
}

func (r *ResampledSource) Read(samples []int32) (int, error) {
	channels := r.source.Channels()
	produced := 0

	for produced < len(samples)-channels+1 {
		need := r.resampler.InputSamplesNeeded(len(samples)-produced) + channels
		if need > len(r.inputBuffer) {
			need = len(r.inputBuffer)
		}

		n, err := r.source.Read(r.inputBuffer[:need])
		produced += r.resampler.Resample(r.inputBuffer[:n], samples[produced:])
		if err != nil {
			if errors.Is(err, io.EOF) && produced > 0 {
				return produced, nil
			}
			return produced, err
		}
		if n == 0 {
			break
		}
	}
	return produced, nil
}

func (r *ResampledSource) SampleRate() int {
	return r.targetRate
}

func (r *ResampledSource) Channels() int {
	return r.source.Channels()
}

func (r *ResampledSource) Metadata() (string, string, string) {
	return r.source.Metadata()
}

func (r *ResampledSource) Close() error {
	return r.source.Close()
}
