// =============================================================================
// Compliance Batch Processor - Checkpoint Store
// =============================================================================
//
// The checkpoint is the only durable cross-run state: the last line number
// fully completed within the named source file. Lines are 1-indexed with
// the header row as line 1, so a checkpoint at line N means everything up
// to and including N is done and processing resumes at N+1.
//
// DURABILITY:
//   Save writes to a temp file in the same directory and renames it into
//   place, so a crash mid-write leaves either the old checkpoint or the new
//   one, never a torn file. Even so, a corrupt or missing checkpoint is
//   never fatal: Load treats it as "no checkpoint" and the batch starts
//   from the beginning.
//
// Save failures are logged, not returned as fatal: the row's result
// artifact is already durable, and the worst case is reprocessing that one
// row on resume (at-least-once).
//
// =============================================================================

package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Checkpoint records the last fully completed line of a source file.
type Checkpoint struct {
	// SourceFile is the base name of the in-progress input file.
	SourceFile string `json:"source_file"`

	// Line is the 1-indexed number of the last completed line, counting
	// the header row as line 1.
	Line int `json:"line"`
}

// Store persists a single checkpoint at a fixed path.
type Store struct {
	path string
	log  *zap.Logger
}

// NewStore returns a Store writing to path (normally
// <output dir>/checkpoint.json).
func NewStore(path string, log *zap.Logger) *Store {
	return &Store{path: path, log: log}
}

// Save atomically overwrites the checkpoint. Failures are logged and
// returned, but callers treat them as non-fatal for the current row.
func (s *Store) Save(sourceFile string, line int) error {
	if sourceFile == "" || line <= 0 {
		err := fmt.Errorf("refusing checkpoint: file=%q line=%d", sourceFile, line)
		s.log.Error("invalid checkpoint", zap.Error(err))
		return err
	}

	data, err := json.Marshal(Checkpoint{SourceFile: sourceFile, Line: line})
	if err != nil {
		s.log.Error("marshal checkpoint", zap.Error(err))
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		s.log.Error("write checkpoint", zap.String("path", tmp), zap.Error(err))
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Error("rename checkpoint", zap.String("path", s.path), zap.Error(err))
		return err
	}

	s.log.Debug("checkpoint saved",
		zap.String("source_file", sourceFile),
		zap.Int("line", line))
	return nil
}

// Load reads the current checkpoint. A missing, unreadable, or corrupt
// checkpoint file yields (zero, false): the batch starts over rather than
// failing.
func (s *Store) Load() (Checkpoint, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Error("read checkpoint", zap.String("path", s.path), zap.Error(err))
		}
		return Checkpoint{}, false
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		s.log.Error("corrupt checkpoint, starting over",
			zap.String("path", s.path), zap.Error(err))
		return Checkpoint{}, false
	}
	if cp.SourceFile == "" || cp.Line <= 0 {
		s.log.Warn("incomplete checkpoint, starting over",
			zap.String("source_file", cp.SourceFile), zap.Int("line", cp.Line))
		return Checkpoint{}, false
	}
	return cp, true
}

// Clear removes the checkpoint after a clean batch run. Removal failures
// are logged only.
func (s *Store) Clear() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Error("remove checkpoint", zap.String("path", s.path), zap.Error(err))
		return
	}
	s.log.Debug("checkpoint cleared", zap.String("path", s.path))
}
