package eventlog

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLog(capacity int) *Log {
	l := New(capacity)
	l.SetMirror(false)
	return l
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "status", Status.String())
	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "level(9)", Level(9).String())
}

func TestLogfAppends(t *testing.T) {
	l := quietLog(0)
	l.Logf(Info, "Loaded %s in %.2f seconds.", "a.yaml", 0.5)
	l.Logf(Warning, "skip")

	got := l.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, Info, got[0].Level)
	assert.Equal(t, "Loaded a.yaml in 0.50 seconds.", got[0].Message)
	assert.Equal(t, Warning, got[1].Level)
	assert.False(t, got[0].Time.IsZero())
}

func TestLevelHelpers(t *testing.T) {
	l := quietLog(0)
	l.Add(Status, "100%% literal")
	l.Statusf("s")
	l.Infof("i")
	l.Warnf("w")
	l.Errorf("e")

	got := l.Entries()
	require.Len(t, got, 5)
	assert.Equal(t, "100%% literal", got[0].Message)
	levels := []Level{Status, Status, Info, Warning, Error}
	for i, want := range levels {
		assert.Equal(t, want, got[i].Level)
	}
}

func TestLogCapacity(t *testing.T) {
	l := quietLog(3)
	for i := 0; i < 5; i++ {
		l.Logf(Status, "%d", i)
	}
	got := l.Entries()
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].Message)
	assert.Equal(t, "4", got[2].Message)
}

func TestLogClear(t *testing.T) {
	l := quietLog(0)
	l.Logf(Error, "boom")
	l.Clear()
	assert.Empty(t, l.Entries())
	l.Clear()
	assert.Empty(t, l.Entries())
}

func TestSubscribe(t *testing.T) {
	l := quietLog(0)
	ch, cancel := l.Subscribe(1)

	l.Logf(Info, "first")
	l.Logf(Info, "dropped") // buffer full; must not block

	select {
	case e := <-ch:
		assert.Equal(t, "first", e.Message)
	case <-time.After(time.Second):
		t.Fatal("no entry delivered")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	l.Logf(Info, "after cancel")
	assert.Len(t, l.Entries(), 3)
}

func TestMirrorToStandardLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := New(0)
	l.Logf(Warning, "no %s", "variants")
	assert.Contains(t, buf.String(), "[warning] no variants")

	buf.Reset()
	l.SetMirror(false)
	l.Logf(Warning, "silent")
	assert.Empty(t, buf.String())
}

func TestDiscard(t *testing.T) {
	Discard.Logf(Error, "ignored %d", 1)
}
