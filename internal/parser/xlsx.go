package parser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// xlsxReader streams data rows from the first worksheet of an XLSX file.
type xlsxReader struct {
	file    *excelize.File
	rows    *excelize.Rows
	headers []string
	line    int
}

// OpenXLSX opens an XLSX workbook and consumes the header row of its first
// worksheet. Only the first sheet is read; compliance exports are single
// sheet workbooks.
func OpenXLSX(path string) (RowReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("workbook has no sheets: %s", path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	if !rows.Next() {
		rows.Close()
		f.Close()
		return nil, fmt.Errorf("empty sheet: %s", path)
	}
	headers, err := rows.Columns()
	if err != nil {
		rows.Close()
		f.Close()
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	return &xlsxReader{file: f, rows: rows, headers: headers, line: 1}, nil
}

func (x *xlsxReader) Headers() []string {
	return x.headers
}

func (x *xlsxReader) Next() (map[string]string, int, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, x.line + 1, fmt.Errorf("failed to read row: %w", err)
		}
		return nil, 0, io.EOF
	}
	values, err := x.rows.Columns()
	if err != nil {
		return nil, x.line + 1, fmt.Errorf("failed to read row: %w", err)
	}
	x.line++
	return rowMap(x.headers, values), x.line, nil
}

func (x *xlsxReader) Close() error {
	x.rows.Close()
	return x.file.Close()
}
