// ABOUTME: Oto-based audio output implementation
// ABOUTME: Feeds an oto player from the pull source through an io.Reader
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using oto library
type Oto struct {
	mu     sync.Mutex
	otoCtx *oto.Context
	spec   Spec
	player *oto.Player
	gate   gate
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{}
}

// otoReader adapts the gate to the io.Reader oto pulls from
type otoReader struct {
	g *gate
}

func (r otoReader) Read(p []byte) (int, error) {
	r.g.fill(p)
	return len(p), nil
}

// Open initializes the output device
func (o *Oto) Open(spec Spec, src Source) error {
	if err := spec.validate(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		return fmt.Errorf("oto output already open")
	}

	// oto only allows one context per process; a format change keeps the
	// existing context
	if o.otoCtx != nil && (o.spec.SampleRate != spec.SampleRate || o.spec.Channels != spec.Channels) {
		log.Printf("Warning: format change detected (%s -> %s) but oto doesn't support reinitialization. Continuing with existing context.",
			o.spec, spec)
	}

	if o.otoCtx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   spec.SampleRate,
			ChannelCount: spec.Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		if spec.BufferFrames > 0 {
			op.BufferSize = time.Duration(spec.BufferFrames) * time.Second / time.Duration(spec.SampleRate)
		}
		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			return fmt.Errorf("failed to create oto context: %w", err)
		}
		<-readyChan
		o.otoCtx = ctx
		o.spec = spec
		log.Printf("Audio output initialized: %s", spec)
	} else if err := o.otoCtx.Resume(); err != nil {
		return fmt.Errorf("failed to resume oto context: %w", err)
	}

	o.gate.open(src)
	o.player = o.otoCtx.NewPlayer(otoReader{g: &o.gate})
	if o.spec.BufferFrames > 0 {
		o.player.SetBufferSize(o.spec.BufferFrames * o.spec.BytesPerFrame())
	}
	o.player.Play()
	return nil
}

// LockedSpec returns the format of the process-wide oto context
func (o *Oto) LockedSpec() (Spec, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.spec, o.otoCtx != nil
}

// Pause mutes output while keeping the player
func (o *Oto) Pause(paused bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return fmt.Errorf("oto output not open")
	}
	o.gate.setPaused(paused)
	return nil
}

// Close releases the player; the context stays alive for the next Open
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.gate.close()
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	if o.otoCtx != nil {
		if serr := o.otoCtx.Suspend(); serr != nil {
			log.Printf("Warning: oto suspend error: %v", serr)
		}
	}
	return err
}

func (o *Oto) Status() Status {
	return o.gate.status()
}
