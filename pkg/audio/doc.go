// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Codec and Stream types and 16-bit sample helpers
// Package audio provides fundamental audio types shared by the resource model,
// the converter and the playback engine.
//
// This package defines:
//   - Codec: sample encoding of a wave file object (PCM, UBI, PSX, DSP, IMA, MP3)
//   - Format: codec, sample rate, channel count, bit depth and endianness
//   - Stream: an owned byte buffer with its format, the runtime playback unit
//
// The canonical runtime format is 16-bit signed little-endian PCM:
//
//	format := audio.Canonical(44100, 2)
//	if !stream.Format.IsCanonical() {
//	    // convert first
//	}
package audio
