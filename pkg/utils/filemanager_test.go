package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	return NewFileManager(
		filepath.Join(root, "drop"),
		filepath.Join(root, "output"),
		filepath.Join(root, "archive"),
		zap.NewNop(),
	)
}

func TestEnsureDirectories_Idempotent(t *testing.T) {
	fm := newManager(t)

	require.NoError(t, fm.EnsureDirectories())
	require.NoError(t, fm.EnsureDirectories())

	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.ArchiveDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPendingFiles_SortedAndFiltered(t *testing.T) {
	fm := newManager(t)
	require.NoError(t, fm.EnsureDirectories())

	for _, name := range []string{"c.csv", "a.csv", "b.xlsx", "notes.txt", "ignore.json"} {
		require.NoError(t, os.WriteFile(fm.InputPath(name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "sub.csv"), 0755))

	files, err := fm.PendingFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.xlsx", "c.csv"}, files)
}

func TestArchiveInputFile_DatedSubfolder(t *testing.T) {
	fm := newManager(t)
	require.NoError(t, fm.EnsureDirectories())
	require.NoError(t, os.WriteFile(fm.InputPath("done.csv"), []byte("x"), 0644))

	dst, err := fm.ArchiveInputFile("done.csv")
	require.NoError(t, err)

	dated := filepath.Join(fm.ArchiveDir, time.Now().Format(ArchiveDateLayout), "done.csv")
	assert.Equal(t, dated, dst)
	assert.True(t, FileExists(dst))
	assert.False(t, FileExists(fm.InputPath("done.csv")))
}

func TestCheckpointPath(t *testing.T) {
	fm := newManager(t)
	assert.Equal(t, filepath.Join(fm.OutputDir, "checkpoint.json"), fm.CheckpointPath())
}
