package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/hxtool/hxplay/pkg/audio/wavimport"
	"github.com/hxtool/hxplay/pkg/hx"
)

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestRenderSinglePass(t *testing.T) {
	out := filepath.Join(t.TempDir(), "music.wav")
	stdout, err := execute(t, "render", testStore, "Play_Music", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Rendered")

	s, err := wavimport.Load(out)
	require.NoError(t, err)
	assert.Equal(t, audio.Canonical(44100, 2), s.Format)
	assert.Len(t, s.Data, 16)
}

func TestRenderCycles(t *testing.T) {
	out := filepath.Join(t.TempDir(), "music.wav")
	_, err := execute(t, "render", testStore, "Play_Music", "-o", out, "--cycles", "3")
	require.NoError(t, err)

	s, err := wavimport.Load(out)
	require.NoError(t, err)
	require.Len(t, s.Data, 48)
	assert.Equal(t, s.Data[:16], s.Data[16:32])
	assert.Equal(t, s.Data[:16], s.Data[32:])
}

func TestRenderProgramConvertsToSessionFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ambience.wav")
	_, err := execute(t, "render", testStore, "Play_Ambience", "-o", out)
	require.NoError(t, err)

	s, err := wavimport.Load(out)
	require.NoError(t, err)
	assert.Equal(t, audio.Canonical(22050, 1), s.Format)
	assert.Len(t, s.Data, 16)
}

func TestRenderNothing(t *testing.T) {
	_, err := execute(t, "render", testStore, "Play_Broken", "-o", filepath.Join(t.TempDir(), "x.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to render")
}

func TestRenderRequiresOutput(t *testing.T) {
	_, err := execute(t, "render", testStore, "Play_Music")
	assert.Error(t, err)
}

func TestExportSQLiteRoundTrip(t *testing.T) {
	db := filepath.Join(t.TempDir(), "bank.db")
	_, err := execute(t, "export", testStore, "-o", db)
	require.NoError(t, err)

	out, err := execute(t, "list", "--all", db)
	require.NoError(t, err)
	golden(t).Assert(t, "list_all", []byte(out))
}

func TestExportWave(t *testing.T) {
	out := filepath.Join(t.TempDir(), "f3.wav")
	_, err := execute(t, "export", testStore, "--wave", "0xF3", "-o", out)
	require.NoError(t, err)

	s, err := wavimport.Load(out)
	require.NoError(t, err)
	assert.Equal(t, audio.Canonical(22050, 1), s.Format)
	assert.Len(t, s.Data, 16)
}

func TestImportReplacesSamples(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "new.wav")
	src := &audio.Stream{Format: audio.Canonical(48000, 2), Data: []byte{1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0, 7, 0, 8, 0}}
	f, err := os.Create(wavPath)
	require.NoError(t, err)
	require.NoError(t, wavimport.WriteWAV(f, src))
	require.NoError(t, f.Close())

	out := filepath.Join(dir, "patched.yaml")
	stdout, err := execute(t, "import", testStore, "0xF1", wavPath, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Replaced 00000000000000F1")

	store, err := hx.Open(out)
	require.NoError(t, err)
	defer store.Close()
	e, ok := store.Entry(0xF1)
	require.True(t, ok)
	wf, ok := e.WaveFile()
	require.True(t, ok)
	assert.Equal(t, 48000, wf.Format.SampleRate)
	assert.Equal(t, src.Data, wf.Data)
	assert.Equal(t, 10, store.Len())
}

func TestImportRejectsEvent(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "new.wav")
	f, err := os.Create(wavPath)
	require.NoError(t, err)
	require.NoError(t, wavimport.WriteWAV(f, &audio.Stream{Format: audio.Canonical(44100, 1), Data: []byte{1, 0, 2, 0}}))
	require.NoError(t, f.Close())

	_, err = execute(t, "import", testStore, "0xE1", wavPath, "-o", filepath.Join(dir, "out.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, hx.ErrInvalidClass)
}

func TestRefuseOverwriteSource(t *testing.T) {
	_, err := execute(t, "export", testStore, "-o", testStore)
	assert.Error(t, err)
}

func TestPlayOnNullBackend(t *testing.T) {
	out, err := execute(t, "--backend", "null", "play", testStore, "Play_Music")
	require.NoError(t, err)
	assert.Contains(t, out, "Playing Play_Music")
}

func TestPlayNothing(t *testing.T) {
	_, err := execute(t, "--backend", "null", "play", testStore, "Play_Broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to play")
}
