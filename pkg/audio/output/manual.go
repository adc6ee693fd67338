// ABOUTME: Caller-driven and wall-clock driven devices without audio hardware
// ABOUTME: Manual backs tests and offline rendering; Null paces a Manual in real time
package output

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Manual is a device whose callbacks are issued by the caller through Tick
type Manual struct {
	// OpenErr, when set, makes Open fail with it
	OpenErr error

	mu    sync.Mutex
	spec  Spec
	opens int
	gate  gate
}

// NewManual creates a manual device
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Open(spec Spec, src Source) error {
	if err := spec.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenErr != nil {
		return m.OpenErr
	}
	if m.gate.status() != Stopped {
		return fmt.Errorf("manual output already open")
	}
	m.spec = spec
	m.opens++
	m.gate.open(src)
	return nil
}

func (m *Manual) Pause(paused bool) error {
	if m.gate.status() == Stopped {
		return fmt.Errorf("manual output not open")
	}
	m.gate.setPaused(paused)
	return nil
}

func (m *Manual) Close() error {
	m.gate.close()
	return nil
}

func (m *Manual) Status() Status {
	return m.gate.status()
}

// Spec returns the format of the last Open
func (m *Manual) Spec() Spec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spec
}

// Opens counts successful Open calls
func (m *Manual) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

// Tick issues one callback of n bytes and returns the buffer and the
// number of audio bytes the source filled. A closed device yields silence.
func (m *Manual) Tick(n int) ([]byte, int) {
	buf := make([]byte, n)
	filled := m.gate.fill(buf)
	return buf, filled
}

// Null is a device that pulls from its source at wall-clock cadence and
// discards the audio
type Null struct {
	*Manual
	period time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewNull creates a null device issuing a callback every 20ms
func NewNull() *Null {
	return &Null{Manual: NewManual(), period: 20 * time.Millisecond}
}

func (d *Null) Open(spec Spec, src Source) error {
	if err := d.Manual.Open(spec, src); err != nil {
		return err
	}
	size := spec.BufferFor(d.period) * spec.BytesPerFrame()
	if size <= 0 {
		size = spec.BytesPerFrame()
	}

	d.mu.Lock()
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	stop, done := d.stop, d.done
	d.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(d.period)
		defer ticker.Stop()
		buf := make([]byte, size)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				d.gate.fill(buf)
			}
		}
	}()
	log.Printf("Audio output initialized: %s (null)", spec)
	return nil
}

func (d *Null) Close() error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return d.Manual.Close()
}
