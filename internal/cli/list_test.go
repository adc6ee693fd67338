package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxtool/hxplay/pkg/hx"
)

func TestListGolden(t *testing.T) {
	out, err := execute(t, "list", testStore)
	require.NoError(t, err)
	golden(t).Assert(t, "list", []byte(out))
}

func TestListAllGolden(t *testing.T) {
	out, err := execute(t, "list", "--all", testStore)
	require.NoError(t, err)
	golden(t).Assert(t, "list_all", []byte(out))
}

func TestListMissingStore(t *testing.T) {
	_, err := execute(t, "list", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestTreeGolden(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"tree_music", "Play_Music"},
		{"tree_ambience", "Play_Ambience"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "tree", testStore, tt.entry)
			require.NoError(t, err)
			golden(t).Assert(t, tt.name, []byte(out))
		})
	}
}

func TestTreeByHexID(t *testing.T) {
	byName, err := execute(t, "tree", testStore, "Play_Music")
	require.NoError(t, err)
	byID, err := execute(t, "tree", testStore, "0x00000000000000E1")
	require.NoError(t, err)
	assert.Equal(t, byName, byID)
}

func TestTreeDepth(t *testing.T) {
	out, err := execute(t, "tree", "--depth", "1", testStore, "Play_Music")
	require.NoError(t, err)
	assert.Len(t, splitLines(out), 2)
}

func TestTreeUnknownEntry(t *testing.T) {
	_, err := execute(t, "tree", testStore, "Play_Nothing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, hx.ErrNotFound))
}
