// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts whole 16-bit buffers between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation over interleaved 16-bit frames. Handles both
// upsampling and downsampling of complete buffers.
//
// Example:
//
//	r := resample.New(22050, 44100, 2)
//	out := r.Resample(samples)
package resample
