// ABOUTME: Playback engine package
// ABOUTME: Stream queue, real-time mixing engine and the controller session
// Package playback turns resolved wave file objects into audio.
//
// Three layers cooperate:
//   - Queue holds the streams of one playback session and the byte counters
//   - Engine is the output.Source a device pulls from; it mixes the head
//     stream into device buffers and drives repeat and end-of-queue handling
//   - Player is the controller: it resolves, loads and converts streams
//     outside the engine lock, then splices them in and opens the device
//
// Example:
//
//	p := playback.New(store, bank, dev, logs, playback.Config{})
//	err := p.Play(ctx, eventID)
//	p.SetRepeat(true)
//	err = p.Stop()
package playback
