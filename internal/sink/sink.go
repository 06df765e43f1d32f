// =============================================================================
// Compliance Batch Processor - Skip/Error Record Sink
// =============================================================================
//
// The sink accumulates two independent audit collections per source file:
//
//   - skipped: rows that failed validation (a synthetic non-compliant
//     report was still produced for them), and
//   - errored: rows (or whole files) that failed unexpectedly and produced
//     no report.
//
// Flush appends the buffers to archive/<MM-DD-YYYY>/skipped.csv and
// errors.csv, writing a header row only when the destination is new or
// empty, then clears the buffers regardless of write success — a failed
// flush loses that batch's audit entries and is logged as an error, not
// retried. Buffers are never persisted across restarts; the batch driver
// flushes eagerly so the checkpoint cannot advance past unrecorded
// entries.
//
// Audit columns are emitted in sorted order with the reason/error column
// last, so append-only files stay consistent across runs.
//
// =============================================================================

package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// Audit file names inside the dated archive subfolder.
const (
	SkippedFile = "skipped.csv"
	ErrorsFile  = "errors.csv"
)

// Entry is one audit record: the original row data plus the reason a skip
// happened or the error that occurred.
type Entry struct {
	Row    map[string]string
	Detail string
}

// ArchiveDirFunc supplies the dated archive subfolder at flush time,
// creating it if needed.
type ArchiveDirFunc func() (string, error)

// RecordSink buffers skip and error entries grouped by source file.
type RecordSink struct {
	archiveDir ArchiveDirFunc
	log        *zap.Logger
	skipped    map[string][]Entry
	errored    map[string][]Entry
}

// New returns an empty RecordSink flushing into the directory supplied by
// archiveDir.
func New(archiveDir ArchiveDirFunc, log *zap.Logger) *RecordSink {
	return &RecordSink{
		archiveDir: archiveDir,
		log:        log,
		skipped:    make(map[string][]Entry),
		errored:    make(map[string][]Entry),
	}
}

// RecordSkip buffers a validation-failure entry for sourceFile.
func (s *RecordSink) RecordSkip(sourceFile string, row map[string]string, reason string) {
	s.skipped[sourceFile] = append(s.skipped[sourceFile], Entry{Row: row, Detail: reason})
}

// RecordError buffers an unexpected-failure entry for sourceFile. A
// whole-file failure passes a nil row.
func (s *RecordSink) RecordError(sourceFile string, row map[string]string, errMsg string) {
	s.errored[sourceFile] = append(s.errored[sourceFile], Entry{Row: row, Detail: errMsg})
}

// Pending reports whether any entries are buffered.
func (s *RecordSink) Pending() bool {
	return len(s.skipped) > 0 || len(s.errored) > 0
}

// Flush appends all buffered entries to the dated audit files and clears
// the buffers. Write failures are logged only.
func (s *RecordSink) Flush() {
	if !s.Pending() {
		return
	}

	dir, err := s.archiveDir()
	if err != nil {
		s.log.Error("cannot resolve archive folder, audit entries lost", zap.Error(err))
		s.clear()
		return
	}

	s.append(filepath.Join(dir, SkippedFile), s.skipped, "reason")
	s.append(filepath.Join(dir, ErrorsFile), s.errored, "error")
	s.clear()
}

// append writes one collection to an audit file, with a header row only if
// the file is new or empty.
func (s *RecordSink) append(path string, records map[string][]Entry, detailColumn string) {
	if len(records) == 0 {
		return
	}

	columns := s.columns(records)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		s.log.Error("cannot open audit file", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.log.Error("cannot stat audit file", zap.String("path", path), zap.Error(err))
		return
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		w.Write(append(append([]string{"source_file"}, columns...), detailColumn))
	}

	total := 0
	for _, sourceFile := range sortedKeys(records) {
		for _, entry := range records[sourceFile] {
			line := make([]string, 0, len(columns)+2)
			line = append(line, sourceFile)
			for _, col := range columns {
				line = append(line, entry.Row[col])
			}
			line = append(line, entry.Detail)
			w.Write(line)
			total++
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		s.log.Error("failed writing audit records", zap.String("path", path), zap.Error(err))
		return
	}
	s.log.Info("appended audit records", zap.String("path", path), zap.Int("count", total))
}

// columns returns the sorted union of row keys across all buffered entries.
func (s *RecordSink) columns(records map[string][]Entry) []string {
	seen := make(map[string]struct{})
	for _, entries := range records {
		for _, e := range entries {
			for k := range e.Row {
				seen[k] = struct{}{}
			}
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return columns
}

func (s *RecordSink) clear() {
	s.skipped = make(map[string][]Entry)
	s.errored = make(map[string][]Entry)
}

func sortedKeys(m map[string][]Entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
