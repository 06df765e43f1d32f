// =============================================================================
// Compliance Batch Processor - Delimited File Parsers
// =============================================================================
//
// This package reads drop-folder input files row by row. Two formats are
// recognized: CSV (comma-delimited, stdlib encoding/csv) and XLSX
// (first worksheet, via excelize). Both are exposed through the same
// RowReader so the batch driver never cares which format a file is.
//
// LINE NUMBERING:
//   Lines are 1-indexed counting the header row as line 1, so the first
//   data row is line 2. The checkpoint store records these same numbers,
//   which is what makes resume arithmetic trivial.
//
// Readers stream rather than slurp: resuming a large file past a
// checkpoint should not require materializing every prior row.
//
// =============================================================================

package parser

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RowReader iterates the data rows of one input file.
type RowReader interface {
	// Headers returns the column names from the header row, in file order.
	Headers() []string

	// Next returns the next data row as a map of original column name to
	// value, along with its 1-indexed line number (first data row is 2).
	// It returns io.EOF after the last row.
	Next() (map[string]string, int, error)

	// Close releases the underlying file.
	Close() error
}

// Extensions lists the recognized input file extensions, lowercase.
var Extensions = []string{".csv", ".xlsx"}

// Recognized reports whether name has a recognized input extension.
func Recognized(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Open returns a RowReader for the file at path, dispatching on extension.
func Open(path string) (RowReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return OpenCSV(path)
	case ".xlsx":
		return OpenXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported input file %s", filepath.Base(path))
	}
}

// rowMap zips headers and values into a row map. Short rows read as empty
// strings for the trailing columns; values beyond the header width are
// dropped.
func rowMap(headers, values []string) map[string]string {
	row := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(values) {
			row[h] = values[i]
		} else {
			row[h] = ""
		}
	}
	return row
}
