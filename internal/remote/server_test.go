package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxtool/hxplay/internal/protocol"
	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
	"github.com/hxtool/hxplay/pkg/playback"
)

type fakeController struct {
	mu     sync.Mutex
	calls  []string
	state  string
	repeat bool
	volume float64
	played hx.ID
}

func (f *fakeController) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeController) Play(_ context.Context, id hx.ID) error {
	f.mu.Lock()
	f.played = id
	f.state = "playing"
	f.mu.Unlock()
	f.record("play")
	return nil
}

func (f *fakeController) Stop() error {
	f.mu.Lock()
	f.state = "idle"
	f.mu.Unlock()
	f.record("stop")
	return nil
}

func (f *fakeController) Pause() error  { f.record("pause"); return nil }
func (f *fakeController) Resume() error { f.record("resume"); return nil }

func (f *fakeController) SetRepeat(on bool) {
	f.mu.Lock()
	f.repeat = on
	f.mu.Unlock()
	f.record("repeat")
}

func (f *fakeController) SetVolume(v float64) {
	f.mu.Lock()
	f.volume = v
	f.mu.Unlock()
	f.record("volume")
}

func (f *fakeController) Snapshot() playback.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := f.state
	if state == "" {
		state = "idle"
	}
	return playback.Snapshot{State: state, Repeat: f.repeat, Volume: f.volume}
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func lookup(ref string) (hx.ID, error) {
	if ref == "Play_Music" {
		return 0xE1, nil
	}
	return hx.ParseID(ref)
}

type fixture struct {
	ctrl   *fakeController
	events *eventlog.Log
	server *Server
	url    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := &fakeController{}
	events := eventlog.New(32)
	srv := New(Config{Name: "test", Store: "bank.yaml", StatusInterval: 20 * time.Millisecond}, ctrl, lookup, events)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return &fixture{
		ctrl:   ctrl,
		events: events,
		server: srv,
		url:    "ws" + strings.TrimPrefix(ts.URL, "http") + Path,
	}
}

func (f *fixture) dial(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, f.url)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func waitLog(t *testing.T, c *Client, match func(protocol.LogEntry) bool) protocol.LogEntry {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-c.Logs:
			if match(e) {
				return e
			}
		case <-deadline:
			t.Fatal("timed out waiting for log entry")
		}
	}
}

func waitStatus(t *testing.T, c *Client, match func(protocol.Status) bool) protocol.Status {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-c.Status:
			if match(s) {
				return s
			}
		case <-deadline:
			t.Fatal("timed out waiting for status")
		}
	}
}

func TestHelloAndInitialStatus(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)

	assert.Equal(t, "test", c.Hello().Name)
	assert.Equal(t, "bank.yaml", c.Hello().Store)
	assert.NotEmpty(t, c.Hello().ServerID)

	s := waitStatus(t, c, func(protocol.Status) bool { return true })
	assert.Equal(t, "idle", s.State)

	require.Eventually(t, func() bool { return f.server.Clients() == 1 }, time.Second, 10*time.Millisecond)
}

func TestPlayCommand(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)

	require.NoError(t, c.Play("Play_Music"))
	waitStatus(t, c, func(s protocol.Status) bool { return s.State == "playing" })

	f.ctrl.mu.Lock()
	assert.Equal(t, hx.ID(0xE1), f.ctrl.played)
	f.ctrl.mu.Unlock()
}

func TestPlayByHexID(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)

	require.NoError(t, c.Play("0x00000000000000E2"))
	require.Eventually(t, func() bool {
		f.ctrl.mu.Lock()
		defer f.ctrl.mu.Unlock()
		return f.ctrl.played == 0xE2
	}, time.Second, 10*time.Millisecond)
}

func TestPlayLookupFailure(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)

	require.NoError(t, c.Play("no such event"))
	e := waitLog(t, c, func(e protocol.LogEntry) bool { return e.Level == "error" })
	assert.Contains(t, e.Message, "no such event")
	assert.NotContains(t, f.ctrl.Calls(), "play")
}

func TestControlCommands(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)

	require.NoError(t, c.Pause())
	require.NoError(t, c.Resume())
	require.NoError(t, c.Repeat(true))
	require.NoError(t, c.Volume(0.25))
	require.NoError(t, c.Stop())

	require.Eventually(t, func() bool { return len(f.ctrl.Calls()) == 5 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"pause", "resume", "repeat", "volume", "stop"}, f.ctrl.Calls())

	s := waitStatus(t, c, func(s protocol.Status) bool { return s.Repeat })
	assert.Equal(t, 0.25, s.Volume)
}

func TestUnknownTypeAnsweredToSenderOnly(t *testing.T) {
	f := newFixture(t)
	sender := f.dial(t)
	other := f.dial(t)
	require.Eventually(t, func() bool { return f.server.Clients() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, sender.Send(protocol.Message{Type: "rewind"}))
	e := waitLog(t, sender, func(e protocol.LogEntry) bool { return e.Level == "error" })
	assert.Contains(t, e.Message, "rewind")

	select {
	case e := <-other.Logs:
		t.Fatalf("other client received %+v", e)
	case <-time.After(150 * time.Millisecond):
	}
	assert.Empty(t, f.events.Entries())
}

func TestInvalidPayload(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)

	require.NoError(t, c.Send(protocol.Message{Type: protocol.TypeVolume, Payload: json.RawMessage(`"loud"`)}))
	waitLog(t, c, func(e protocol.LogEntry) bool { return e.Level == "error" })
	assert.Empty(t, f.ctrl.Calls())
}

func TestLogFeedReachesAllClients(t *testing.T) {
	f := newFixture(t)
	clients := []*Client{f.dial(t), f.dial(t)}
	require.Eventually(t, func() bool { return f.server.Clients() == 2 }, time.Second, 10*time.Millisecond)

	f.events.Statusf("Loaded %s in %.2f seconds.", "bank.yaml", 0.5)

	for i, c := range clients {
		e := waitLog(t, c, func(e protocol.LogEntry) bool { return e.Level == "status" })
		assert.Equal(t, "Loaded bank.yaml in 0.50 seconds.", e.Message, fmt.Sprintf("client %d", i))
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)
	require.Eventually(t, func() bool { return f.server.Clients() == 1 }, time.Second, 10*time.Millisecond)

	f.server.Close()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client not disconnected")
	}
}
