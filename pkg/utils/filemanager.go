// =============================================================================
// Compliance Batch Processor - File Manager Utility
// =============================================================================
//
// This module owns the pipeline's directory layout:
//   - drop/     pending input files, processed in lexicographic name order
//   - output/   one report artifact per row, plus the checkpoint file
//   - archive/  completed inputs and audit files under MM-DD-YYYY subfolders
//
// ORDERING IS LOAD-BEARING:
//   PendingFiles sorts names ascending because the checkpoint encodes "this
//   file and everything with a smaller name is done". Any change to the
//   ordering breaks crash recovery.
//
// Directory creation failures are fatal to startup; archive failures are
// not (the row results are already durable by the time a file is archived).
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/entityops/compliance-batch/internal/parser"
)

// ArchiveDateLayout is the layout of the dated archive subfolders (MM-DD-YYYY).
const ArchiveDateLayout = "01-02-2006"

// FileManager handles directory lifecycle and file movement for the pipeline.
type FileManager struct {
	// InputDir is the drop directory holding pending input files.
	InputDir string

	// OutputDir receives report artifacts and hosts the checkpoint file.
	OutputDir string

	// ArchiveDir receives completed inputs and audit files, under dated
	// subfolders.
	ArchiveDir string

	log *zap.Logger
}

// NewFileManager creates a FileManager over the three pipeline directories.
func NewFileManager(inputDir, outputDir, archiveDir string, log *zap.Logger) *FileManager {
	return &FileManager{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		log:        log,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the input, output, and archive directories if
// they don't exist. Failure here is fatal to the caller: without the
// directories none of the durability guarantees hold.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.ArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// PendingFiles returns the base names of recognized input files in the
// drop directory, sorted lexicographically ascending.
func (fm *FileManager) PendingFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !parser.Recognized(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// InputPath returns the full path of a pending file by name.
func (fm *FileManager) InputPath(name string) string {
	return filepath.Join(fm.InputDir, name)
}

// CheckpointPath returns the path of the checkpoint file in the output
// directory.
func (fm *FileManager) CheckpointPath() string {
	return filepath.Join(fm.OutputDir, "checkpoint.json")
}

// ArchiveSubdir returns today's dated archive subfolder, creating it if
// needed.
func (fm *FileManager) ArchiveSubdir() (string, error) {
	dir := filepath.Join(fm.ArchiveDir, time.Now().Format(ArchiveDateLayout))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	return dir, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a completed input file into today's dated archive
// subfolder and returns the destination path.
//
// Callers treat failure as non-fatal: the per-row artifacts are already on
// disk, so a stuck source file only means it will be noticed again on the
// next run.
func (fm *FileManager) ArchiveInputFile(name string) (string, error) {
	subdir, err := fm.ArchiveSubdir()
	if err != nil {
		return "", err
	}
	src := fm.InputPath(name)
	dst := filepath.Join(subdir, name)

	if err := os.Rename(src, dst); err != nil {
		// Cross-device moves can't rename; fall back to copy and delete.
		if err := copyFile(src, dst); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(src); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	fm.log.Info("archived input file", zap.String("file", name), zap.String("dest", dst))
	return dst, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst, syncing the destination.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
