package parser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// csvReader streams data rows from a CSV file.
type csvReader struct {
	file    *os.File
	reader  *csv.Reader
	headers []string
	line    int
}

// OpenCSV opens a CSV file and consumes its header row.
func OpenCSV(path string) (RowReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := csv.NewReader(bufio.NewReader(file))
	// Input files from upstream systems are ragged often enough that a
	// strict column count would reject whole files; short rows pad out to
	// the header width instead.
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headers, err := r.Read()
	if err != nil {
		file.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("empty file: %s", path)
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	return &csvReader{file: file, reader: r, headers: headers, line: 1}, nil
}

func (c *csvReader) Headers() []string {
	return c.headers
}

func (c *csvReader) Next() (map[string]string, int, error) {
	values, err := c.reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		return nil, c.line + 1, fmt.Errorf("failed to read row: %w", err)
	}
	c.line++
	return rowMap(c.headers, values), c.line, nil
}

func (c *csvReader) Close() error {
	return c.file.Close()
}
