package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSink(t *testing.T) (*RecordSink, string) {
	t.Helper()
	dir := t.TempDir()
	s := New(func() (string, error) { return dir, nil }, zap.NewNop())
	return s, dir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestFlush_WritesSkippedAndErrors(t *testing.T) {
	s, dir := newSink(t)

	s.RecordSkip("a.csv", map[string]string{"name": "Acme", "city": "Boston"}, "Missing business reference")
	s.RecordError("a.csv", map[string]string{"name": "Globex", "city": ""}, "boom")
	require.True(t, s.Pending())

	s.Flush()
	assert.False(t, s.Pending())

	skipped := readCSV(t, filepath.Join(dir, SkippedFile))
	require.Len(t, skipped, 2)
	assert.Equal(t, []string{"source_file", "city", "name", "reason"}, skipped[0])
	assert.Equal(t, []string{"a.csv", "Boston", "Acme", "Missing business reference"}, skipped[1])

	errored := readCSV(t, filepath.Join(dir, ErrorsFile))
	require.Len(t, errored, 2)
	assert.Equal(t, []string{"source_file", "city", "name", "error"}, errored[0])
	assert.Equal(t, []string{"a.csv", "", "Globex", "boom"}, errored[1])
}

func TestFlush_HeaderWrittenOnce(t *testing.T) {
	s, dir := newSink(t)

	s.RecordSkip("a.csv", map[string]string{"name": "Acme"}, "r1")
	s.Flush()
	s.RecordSkip("b.csv", map[string]string{"name": "Globex"}, "r2")
	s.Flush()

	rows := readCSV(t, filepath.Join(dir, SkippedFile))
	require.Len(t, rows, 3)
	assert.Equal(t, "source_file", rows[0][0])
	assert.Equal(t, "a.csv", rows[1][0])
	assert.Equal(t, "b.csv", rows[2][0])
}

func TestFlush_EmptyIsNoop(t *testing.T) {
	s, dir := newSink(t)

	s.Flush()

	assert.NoFileExists(t, filepath.Join(dir, SkippedFile))
	assert.NoFileExists(t, filepath.Join(dir, ErrorsFile))
}

func TestFlush_WholeFileError(t *testing.T) {
	s, dir := newSink(t)

	s.RecordError("broken.csv", nil, "File read error: unreadable")
	s.Flush()

	rows := readCSV(t, filepath.Join(dir, ErrorsFile))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"source_file", "error"}, rows[0])
	assert.Equal(t, []string{"broken.csv", "File read error: unreadable"}, rows[1])
}

func TestFlush_ClearsEvenWhenDirUnavailable(t *testing.T) {
	s := New(func() (string, error) { return "", os.ErrPermission }, zap.NewNop())

	s.RecordSkip("a.csv", map[string]string{"name": "Acme"}, "r1")
	s.Flush()

	assert.False(t, s.Pending())
}
