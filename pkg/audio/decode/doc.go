// ABOUTME: Format converter package
// ABOUTME: Decodes stored wave data and normalizes it to the canonical mixing format
// Package decode converts audio streams to the canonical runtime format.
//
// Supports: PCM (8, 16 and 24-bit, either endianness) and MP3. Any other
// codec fails with an hx.UnsupportedCodecError.
//
// Decoders turn encoded bytes into interleaved int16 samples; the Converter
// then maps channels, resamples and re-encodes as 16-bit little-endian PCM.
//
// Example:
//
//	conv := decode.NewConverter(logger)
//	out, err := conv.Convert(stream, audio.Canonical(44100, 2))
package decode
