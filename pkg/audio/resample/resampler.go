// ABOUTME: Linear resampler for converting audio sample rates
// ABOUTME: Used by the format converter to bring streams to the session rate
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	if channels < 1 {
		channels = 1
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// OutputFrames returns the number of frames Resample produces for inputFrames
func (r *Resampler) OutputFrames(inputFrames int) int {
	if inputFrames <= 0 {
		return 0
	}
	n := int(math.Round(float64(inputFrames) / r.ratio))
	if n < 1 {
		n = 1
	}
	return n
}

// Resample converts interleaved samples at inputRate to outputRate.
// A trailing partial frame is dropped.
func (r *Resampler) Resample(input []int16) []int16 {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return nil
	}
	if r.inputRate == r.outputRate {
		out := make([]int16, inputFrames*r.channels)
		copy(out, input)
		return out
	}

	outputFrames := r.OutputFrames(inputFrames)
	output := make([]int16, outputFrames*r.channels)
	last := inputFrames - 1

	for outIdx := 0; outIdx < outputFrames; outIdx++ {
		pos := float64(outIdx) * r.ratio
		idx := int(pos)
		if idx > last {
			idx = last
		}
		next := idx + 1
		if next > last {
			next = last
		}
		frac := pos - float64(idx)
		if frac > 1 {
			frac = 1
		}

		for ch := 0; ch < r.channels; ch++ {
			s1 := float64(input[idx*r.channels+ch])
			s2 := float64(input[next*r.channels+ch])
			output[outIdx*r.channels+ch] = int16(math.Round(s1*(1.0-frac) + s2*frac))
		}
	}
	return output
}
