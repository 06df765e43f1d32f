package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	return NewStore(path, zap.NewNop()), path
}

func TestStore_RoundTrip(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Save("b.csv", 5))

	cp, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, "b.csv", cp.SourceFile)
	assert.Equal(t, 5, cp.Line)
}

func TestStore_SaveOverwrites(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Save("a.csv", 2))
	require.NoError(t, store.Save("a.csv", 3))

	cp, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, 3, cp.Line)
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newStore(t)

	_, ok := store.Load()
	assert.False(t, ok)
}

func TestStore_LoadCorrupt(t *testing.T) {
	store, path := newStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, ok := store.Load()
	assert.False(t, ok)
}

func TestStore_LoadIncomplete(t *testing.T) {
	store, path := newStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"source_file":"","line":0}`), 0644))

	_, ok := store.Load()
	assert.False(t, ok)
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	store, path := newStore(t)

	assert.Error(t, store.Save("", 3))
	assert.Error(t, store.Save("a.csv", 0))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Clear(t *testing.T) {
	store, path := newStore(t)
	require.NoError(t, store.Save("a.csv", 2))

	store.Clear()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing an absent checkpoint is a no-op.
	store.Clear()
}
