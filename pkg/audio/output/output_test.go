// ABOUTME: Audio output interface tests
// ABOUTME: Verifies device implementations and the manual device's callback gating
package output

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSource struct {
	pulls atomic.Int32
}

func (s *countingSource) Pull(buf []byte) int {
	s.pulls.Add(1)
	for i := range buf {
		buf[i] = 0x11
	}
	return len(buf)
}

func TestImplementsDevice(t *testing.T) {
	var _ Device = (*PortAudio)(nil)
	var _ Device = (*Oto)(nil)
	var _ Device = (*Malgo)(nil)
	var _ Device = (*Manual)(nil)
	var _ Device = (*Null)(nil)
	var _ FormatLocker = (*Oto)(nil)
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "oto", "malgo", "portaudio", "null", "NULL"} {
		dev, err := New(name)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", name, err)
		}
		if dev == nil {
			t.Fatalf("New(%q) returned nil", name)
		}
	}
	if _, err := New("jack"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{Stopped: "stopped", Paused: "paused", Playing: "playing"}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

func TestSpec(t *testing.T) {
	spec := Spec{SampleRate: 44100, Channels: 2}
	if spec.BytesPerFrame() != 4 {
		t.Errorf("expected 4 bytes per frame, got %d", spec.BytesPerFrame())
	}
	if got := spec.BufferFor(50 * time.Millisecond); got != 2205 {
		t.Errorf("expected 2205 frames, got %d", got)
	}
	if spec.String() != "44100Hz 2ch S16LE" {
		t.Errorf("unexpected spec string %q", spec.String())
	}
}

func TestManualLifecycle(t *testing.T) {
	dev := NewManual()
	src := &countingSource{}

	if err := dev.Pause(true); err == nil {
		t.Fatal("expected pause on closed device to fail")
	}
	if err := dev.Open(Spec{}, src); err == nil {
		t.Fatal("expected invalid spec to fail")
	}
	if err := dev.Open(Spec{SampleRate: 8000, Channels: 1}, src); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if dev.Status() != Playing {
		t.Fatalf("expected playing, got %s", dev.Status())
	}
	if err := dev.Open(Spec{SampleRate: 8000, Channels: 1}, src); err == nil {
		t.Fatal("expected second open to fail")
	}

	buf, n := dev.Tick(8)
	if n != 8 || buf[0] != 0x11 {
		t.Fatalf("expected filled buffer, got n=%d buf=%v", n, buf)
	}

	if err := dev.Pause(true); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if dev.Status() != Paused {
		t.Fatalf("expected paused, got %s", dev.Status())
	}
	buf, n = dev.Tick(8)
	if n != 0 || buf[0] != 0 {
		t.Fatal("paused device must output silence without pulling")
	}
	if src.pulls.Load() != 1 {
		t.Fatalf("expected 1 pull, got %d", src.pulls.Load())
	}

	dev.Pause(false)
	dev.Close()
	if dev.Status() != Stopped {
		t.Fatalf("expected stopped, got %s", dev.Status())
	}
	if _, n := dev.Tick(8); n != 0 {
		t.Fatal("closed device must not pull")
	}
	if dev.Opens() != 1 {
		t.Fatalf("expected 1 open, got %d", dev.Opens())
	}
}

func TestManualOpenErr(t *testing.T) {
	boom := errors.New("no device")
	dev := &Manual{OpenErr: boom}
	if err := dev.Open(Spec{SampleRate: 8000, Channels: 1}, &countingSource{}); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if dev.Status() != Stopped {
		t.Fatal("failed open must leave device stopped")
	}
}

func TestNullPullsInRealTime(t *testing.T) {
	dev := NewNull()
	dev.period = time.Millisecond
	src := &countingSource{}

	if err := dev.Open(Spec{SampleRate: 8000, Channels: 1}, src); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for src.pulls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	dev.Close()

	pulls := src.pulls.Load()
	if pulls < 3 {
		t.Fatalf("expected at least 3 pulls, got %d", pulls)
	}
	time.Sleep(5 * time.Millisecond)
	if src.pulls.Load() != pulls {
		t.Fatal("pulls continued after close")
	}
}

func TestPortAudioStub(t *testing.T) {
	dev := NewPortAudio()
	if dev == nil {
		t.Fatal("NewPortAudio returned nil")
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}
