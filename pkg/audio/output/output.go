// ABOUTME: Audio device interface definition
// ABOUTME: Common pull-based interface for audio playback backends
package output

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Source fills device buffers. Pull must not block; it returns the number
// of bytes that carry audio, the rest of buf is silence.
type Source interface {
	Pull(buf []byte) int
}

// Spec is the requested device format. Samples are always signed 16-bit
// little-endian.
type Spec struct {
	SampleRate int
	Channels   int
	// BufferFrames is the preferred callback size; 0 lets the backend choose
	BufferFrames int
}

// BytesPerFrame returns the size of one interleaved frame
func (s Spec) BytesPerFrame() int {
	return s.Channels * 2
}

// BufferFor returns the frame count covering d at the spec's rate
func (s Spec) BufferFor(d time.Duration) int {
	return int(int64(s.SampleRate) * int64(d) / int64(time.Second))
}

func (s Spec) String() string {
	return fmt.Sprintf("%dHz %dch S16LE", s.SampleRate, s.Channels)
}

func (s Spec) validate() error {
	if s.SampleRate <= 0 || s.Channels <= 0 {
		return fmt.Errorf("invalid device spec %s", s)
	}
	return nil
}

// Status of a device
type Status int

const (
	Stopped Status = iota
	Paused
	Playing
)

func (s Status) String() string {
	switch s {
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	default:
		return "stopped"
	}
}

// Device is an audio output that pulls from a Source once opened
type Device interface {
	// Open starts pulling from src
	Open(spec Spec, src Source) error

	// Pause mutes the device without releasing it
	Pause(paused bool) error

	// Close stops pulling. No Pull is in flight once Close returns.
	Close() error

	Status() Status
}

// FormatLocker is implemented by devices that cannot change format after
// their first Open
type FormatLocker interface {
	LockedSpec() (Spec, bool)
}

// New returns the device for a backend name
func New(backend string) (Device, error) {
	switch strings.ToLower(backend) {
	case "", "oto":
		return NewOto(), nil
	case "malgo":
		return NewMalgo(), nil
	case "portaudio":
		return NewPortAudio(), nil
	case "null":
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("unknown output backend %q", backend)
	}
}

// gate serializes callbacks against Pause and Close. Backends call fill
// from their audio thread.
type gate struct {
	mu     sync.Mutex
	src    Source
	paused bool
}

func (g *gate) fill(buf []byte) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.src == nil || g.paused {
		clear(buf)
		return 0
	}
	return g.src.Pull(buf)
}

func (g *gate) open(src Source) {
	g.mu.Lock()
	g.src = src
	g.paused = false
	g.mu.Unlock()
}

func (g *gate) setPaused(p bool) {
	g.mu.Lock()
	g.paused = p
	g.mu.Unlock()
}

// close detaches the source; it waits for an in-flight fill to finish
func (g *gate) close() {
	g.mu.Lock()
	g.src = nil
	g.mu.Unlock()
}

func (g *gate) status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case g.src == nil:
		return Stopped
	case g.paused:
		return Paused
	default:
		return Playing
	}
}
