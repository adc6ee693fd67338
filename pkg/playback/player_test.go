package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/hxtool/hxplay/pkg/audio/output"
	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventWave    hx.ID = 0xE1
	eventProgram hx.ID = 0xE2
	eventMixed   hx.ID = 0xE3
	eventEmpty   hx.ID = 0xE4
	eventMono    hx.ID = 0xE5
)

// testStore wires:
//
//	E1 -> W1 -> F1 (1000 bytes)
//	E2 -> P1 -> [W2 -> F2 (500), missing, W3 -> F3 (700)]
//	E3 -> P2 -> [W4 -> F4 (UBI), W2 -> F2]
//	E4 -> W5 -> missing
//	E5 -> W6 -> F6 (22050Hz mono, 100 bytes)
func testStore(t *testing.T) *hx.Memory {
	t.Helper()
	canonical := audio.Canonical(44100, 2)
	file := func(id hx.ID, f audio.Format, size int) *hx.Entry {
		return &hx.Entry{ID: id, Class: hx.ClassWaveFileObject, Data: &hx.WaveFileObject{Format: f, Data: pcmStream(uint64(id), size).Data}}
	}
	wave := func(id, def hx.ID) *hx.Entry {
		return &hx.Entry{ID: id, Class: hx.ClassWaveResource, Data: &hx.WaveResourceData{Default: def}}
	}
	event := func(id hx.ID, name string, link hx.ID) *hx.Entry {
		return &hx.Entry{ID: id, Class: hx.ClassEvent, Data: &hx.EventResourceData{Name: name, Link: link}}
	}
	program := func(id hx.ID, links ...hx.ID) *hx.Entry {
		return &hx.Entry{ID: id, Class: hx.ClassProgram, Data: &hx.ProgramResourceData{Links: links}}
	}

	entries := []*hx.Entry{
		event(eventWave, "Play_Wave", 0xA1), wave(0xA1, 0xF1), file(0xF1, canonical, 1000),
		event(eventProgram, "Play_Program", 0xB1), program(0xB1, 0xA2, 0xDEAD, 0xA3),
		wave(0xA2, 0xF2), wave(0xA3, 0xF3), file(0xF2, canonical, 500), file(0xF3, canonical, 700),
		event(eventMixed, "Play_Mixed", 0xB2), program(0xB2, 0xA4, 0xA2),
		wave(0xA4, 0xF4), file(0xF4, audio.Format{Codec: audio.CodecUBI, SampleRate: 44100, Channels: 2, BitDepth: 4}, 64),
		event(eventEmpty, "Play_Nothing", 0xA5), wave(0xA5, 0xBEEF),
		event(eventMono, "Play_Mono", 0xA6), wave(0xA6, 0xF6), file(0xF6, audio.Canonical(22050, 1), 100),
	}
	m := hx.NewMemory()
	for _, e := range entries {
		require.NoError(t, m.Append(e))
	}
	return m
}

type fixture struct {
	player *Player
	device *output.Manual
	logs   *eventlog.Log

	mu     sync.Mutex
	states []State
}

func newFixture(t *testing.T, config Config) *fixture {
	t.Helper()
	f := &fixture{device: output.NewManual(), logs: eventlog.New(0)}
	f.logs.SetMirror(false)
	config.OnStateChange = func(s State) {
		f.mu.Lock()
		f.states = append(f.states, s)
		f.mu.Unlock()
	}
	f.player = New(testStore(t), nil, f.device, f.logs, config)
	t.Cleanup(func() { f.player.Close() })
	return f
}

func (f *fixture) transitions() []State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]State(nil), f.states...)
}

func (f *fixture) count(level eventlog.Level) int {
	n := 0
	for _, e := range f.logs.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// drain ticks the device until the engine stops filling buffers
func (f *fixture) drain(t *testing.T, size int) int {
	t.Helper()
	total := 0
	for i := 0; i < 10000; i++ {
		_, n := f.device.Tick(size)
		if n == 0 {
			return total
		}
		total += n
	}
	t.Fatal("queue never drained")
	return total
}

func (f *fixture) waitIdle(t *testing.T) {
	t.Helper()
	assert.Eventually(t, func() bool {
		return f.player.State() == Idle && f.device.Status() == output.Stopped
	}, time.Second, time.Millisecond)
}

func TestPlaySingleWave(t *testing.T) {
	f := newFixture(t, Config{Volume: 1})
	ctx := context.Background()

	require.NoError(t, f.player.Play(ctx, eventWave))
	assert.Equal(t, Playing, f.player.State())
	assert.Equal(t, output.Playing, f.device.Status())
	assert.Equal(t, output.Spec{SampleRate: 44100, Channels: 2, BufferFrames: 2205}, f.device.Spec())

	assert.Equal(t, 1000, f.drain(t, 256))
	f.waitIdle(t)
	assert.Equal(t, []State{Playing, Idle}, f.transitions())

	_, ok := f.player.Current()
	assert.False(t, ok)
}

func TestPlayProgramSkipsMissingLink(t *testing.T) {
	f := newFixture(t, Config{Volume: 1})

	require.NoError(t, f.player.Play(context.Background(), eventProgram))
	snap := f.player.Snapshot()
	assert.Equal(t, 1200, snap.Length)
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, []string{hx.ID(0xF2).String(), hx.ID(0xF3).String()}, snap.Queue)
	assert.Equal(t, 1, f.count(eventlog.Warning))
	assert.Equal(t, 0, f.count(eventlog.Error))

	assert.Equal(t, 1200, f.drain(t, 300))
	f.waitIdle(t)
}

func TestPlayDropsUnsupportedCodec(t *testing.T) {
	f := newFixture(t, Config{Volume: 1})

	require.NoError(t, f.player.Play(context.Background(), eventMixed))
	snap := f.player.Snapshot()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, 500, snap.Length)
	assert.Equal(t, []string{hx.ID(0xF2).String()}, snap.Queue)
	assert.Equal(t, 1, f.count(eventlog.Error))

	assert.Equal(t, 500, f.drain(t, 128))
}

func TestPlayNothingPlayable(t *testing.T) {
	f := newFixture(t, Config{})

	require.NoError(t, f.player.Play(context.Background(), eventEmpty))
	assert.Equal(t, Idle, f.player.State())
	assert.Equal(t, output.Stopped, f.device.Status())
	assert.Equal(t, 0, f.device.Opens())
	assert.Equal(t, 2, f.count(eventlog.Warning))
}

func TestPlayResolveErrors(t *testing.T) {
	f := newFixture(t, Config{})

	err := f.player.Play(context.Background(), 0x999)
	assert.True(t, errors.Is(err, hx.ErrNotFound))

	err = f.player.Play(context.Background(), 0xA1)
	assert.True(t, errors.Is(err, hx.ErrInvalidClass))
	assert.Equal(t, 2, f.count(eventlog.Error))
}

func TestPlayDeviceError(t *testing.T) {
	f := newFixture(t, Config{})
	f.device.OpenErr = errors.New("no such device")

	err := f.player.Play(context.Background(), eventWave)
	require.Error(t, err)
	assert.True(t, errors.Is(err, hx.ErrDevice))
	assert.Equal(t, Idle, f.player.State())

	snap := f.player.Snapshot()
	assert.Equal(t, 0, snap.Count)
	assert.Equal(t, 0, snap.Length)
}

func TestStopDuringPlayback(t *testing.T) {
	f := newFixture(t, Config{})
	require.NoError(t, f.player.Play(context.Background(), eventProgram))
	f.device.Tick(100)

	require.NoError(t, f.player.Stop())
	assert.Equal(t, Idle, f.player.State())
	assert.Equal(t, output.Stopped, f.device.Status())
	assert.Equal(t, 0, f.player.Snapshot().Count)

	require.NoError(t, f.player.Stop())
	assert.Equal(t, []State{Playing, Idle}, f.transitions())
}

func TestPlayReplacesCurrentSession(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	require.NoError(t, f.player.Play(ctx, eventWave))
	require.NoError(t, f.player.Play(ctx, eventProgram))

	cur, ok := f.player.Current()
	require.True(t, ok)
	assert.Equal(t, eventProgram, cur.ID)
	assert.Equal(t, 1200, f.player.Snapshot().Length)
	assert.Equal(t, 2, f.device.Opens())
}

func TestToggle(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	require.NoError(t, f.player.Toggle(ctx, eventWave))
	assert.Equal(t, Playing, f.player.State())

	require.NoError(t, f.player.Toggle(ctx, eventWave))
	assert.Equal(t, Idle, f.player.State())

	require.NoError(t, f.player.Toggle(ctx, eventWave))
	require.NoError(t, f.player.Toggle(ctx, eventProgram))
	cur, _ := f.player.Current()
	assert.Equal(t, eventProgram, cur.ID)
}

func TestReplay(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	assert.True(t, errors.Is(f.player.Replay(ctx), hx.ErrNotFound))

	require.NoError(t, f.player.Play(ctx, eventWave))
	require.NoError(t, f.player.Stop())
	require.NoError(t, f.player.Replay(ctx))
	cur, ok := f.player.Current()
	require.True(t, ok)
	assert.Equal(t, eventWave, cur.ID)
}

func TestPauseResume(t *testing.T) {
	f := newFixture(t, Config{})
	require.NoError(t, f.player.Pause(), "pause while idle is a no-op")

	require.NoError(t, f.player.Play(context.Background(), eventWave))
	f.device.Tick(400)

	require.NoError(t, f.player.Pause())
	assert.Equal(t, Paused, f.player.State())
	assert.Equal(t, output.Paused, f.device.Status())

	buf, n := f.device.Tick(400)
	assert.Equal(t, 0, n)
	assert.Equal(t, make([]byte, 400), buf)
	assert.Equal(t, 400, f.player.Snapshot().Delivered)

	require.NoError(t, f.player.TogglePause())
	assert.Equal(t, Playing, f.player.State())
	_, n = f.device.Tick(400)
	assert.Equal(t, 400, n)
	assert.Equal(t, 800, f.player.Snapshot().Delivered)
}

func TestRepeatKeepsPlaying(t *testing.T) {
	f := newFixture(t, Config{Repeat: true})
	require.NoError(t, f.player.Play(context.Background(), eventWave))

	total := 0
	for i := 0; i < 10; i++ {
		_, n := f.device.Tick(500)
		total += n
	}
	assert.Equal(t, 5000, total)
	assert.Equal(t, Playing, f.player.State())
	assert.Equal(t, 5, f.player.Snapshot().Cycles)

	f.player.SetRepeat(false)
	f.drain(t, 500)
	f.waitIdle(t)
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t, Config{})
	idle := f.player.Snapshot()
	assert.Equal(t, "idle", idle.State)
	assert.Equal(t, 0.5, idle.Volume)

	require.NoError(t, f.player.Play(context.Background(), eventWave))
	f.device.Tick(400)
	f.player.SetVolume(0.25)

	snap := f.player.Snapshot()
	assert.Equal(t, "playing", snap.State)
	assert.Equal(t, "Play_Wave", snap.EventName)
	assert.Equal(t, eventWave.String(), snap.Event)
	assert.NotEmpty(t, snap.Session)
	assert.Equal(t, "B:400/1000", snap.Bytes())
	assert.Equal(t, "Q:0/1", snap.Position())
	assert.InDelta(t, 0.4, snap.Progress, 1e-9)
	assert.Equal(t, time.Duration(600)*time.Second/(2*44100*2), snap.Remaining)
	assert.Equal(t, 0.25, snap.Volume)
}

func TestSessionFormat(t *testing.T) {
	f := newFixture(t, Config{SampleRate: 44100, Channels: 2})
	require.NoError(t, f.player.Play(context.Background(), eventMono))
	assert.Equal(t, 44100, f.device.Spec().SampleRate)
	assert.Equal(t, 2, f.device.Spec().Channels)
	// 50 mono frames at 22050Hz become 100 stereo frames at 44100Hz
	assert.Equal(t, 400, f.player.Snapshot().Length)
	assert.Equal(t, 1, f.count(eventlog.Info))
}

func TestSetStoreStopsPlayback(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	require.NoError(t, f.player.Play(ctx, eventWave))

	require.NoError(t, f.player.SetStore(hx.NewMemory(), nil))
	assert.Equal(t, Idle, f.player.State())
	assert.True(t, errors.Is(f.player.Play(ctx, eventWave), hx.ErrNotFound))
	assert.True(t, errors.Is(f.player.Replay(ctx), hx.ErrNotFound))
}
