//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform audio output using PortAudio callbacks
package output

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/hxtool/hxplay/pkg/audio"
)

// PortAudio output implementation
type PortAudio struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	scratch []byte
	gate    gate
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

// Open initializes PortAudio
func (p *PortAudio) Open(spec Spec, src Source) error {
	if err := spec.validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return fmt.Errorf("portaudio output already open")
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	frames := spec.BufferFrames
	if frames <= 0 {
		frames = 1024
	}
	p.scratch = make([]byte, frames*spec.BytesPerFrame())
	p.gate.open(src)

	stream, err := portaudio.OpenDefaultStream(0, spec.Channels, float64(spec.SampleRate), frames, p.callback)
	if err != nil {
		p.gate.close()
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		p.gate.close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	return nil
}

func (p *PortAudio) callback(out []int16) {
	buf := p.scratch
	if need := len(out) * 2; need <= len(buf) {
		buf = buf[:need]
	}
	p.gate.fill(buf)
	for i := range out {
		if i*2+1 < len(buf) {
			out[i] = audio.Int16LE(buf[i*2:])
		} else {
			out[i] = 0
		}
	}
}

// Pause mutes output
func (p *PortAudio) Pause(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return fmt.Errorf("portaudio output not open")
	}
	p.gate.setPaused(paused)
	return nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gate.close()
	if p.stream == nil {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		return err
	}
	if err := p.stream.Close(); err != nil {
		return err
	}
	p.stream = nil
	return portaudio.Terminate()
}

func (p *PortAudio) Status() Status {
	return p.gate.status()
}
