// ABOUTME: Audio output package for callback-driven playback
// ABOUTME: Provides the Device interface and oto, malgo, PortAudio and manual backends
// Package output provides audio playback devices.
//
// Devices pull canonical 16-bit little-endian PCM from a Source at their own
// cadence. Supported backends:
//   - oto (default): pure Go on most platforms
//   - malgo: miniaudio via cgo
//   - portaudio: requires the portaudio build tag
//   - null: a wall-clock driven device that discards output
//   - Manual: advanced explicitly by the caller (tests and offline render)
//
// Example:
//
//	dev, err := output.New("oto")
//	err = dev.Open(output.Spec{SampleRate: 44100, Channels: 2}, engine)
//	err = dev.Pause(true)
//	err = dev.Close()
package output
