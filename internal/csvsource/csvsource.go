// Package csvsource parses uploaded CSV files into raw rows for the bulk
// importer. Real uploads are dirty: BOM prefixes, unescaped quotes, rows
// with too few or too many fields. The parser is deliberately lenient so a
// handful of broken lines never aborts a whole import; hard parse errors are
// skipped and counted, width drift is repaired by padding or truncating to
// the header.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"crmconsole/internal/rowmap"
)

// ErrEmpty reports a CSV with no data rows, which is fatal to an import run.
var ErrEmpty = errors.New("csvsource: no data rows")

// Result is the parsed content of one CSV source.
type Result struct {
	// Headers are the trimmed column labels in file order.
	Headers []string

	// Rows are the data rows, one Row per line, keyed by header label.
	// Cells missing from short lines are empty strings.
	Rows []rowmap.Row

	// Skipped counts lines dropped due to hard parse errors.
	Skipped int
}

// Parse reads an entire CSV document. The first non-empty record is the
// header row. It returns ErrEmpty when the file has headers but no data
// rows, and a wrapped error when the header itself is unreadable.
func Parse(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate variable widths; we fit rows ourselves
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csvsource: read header: %w", err)
	}
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}
	headers = rowmap.StripHeaderBOM(headers)

	res := &Result{Headers: headers}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Soft-fail this line and continue.
			res.Skipped++
			continue
		}
		if isBlank(rec) {
			continue
		}
		res.Rows = append(res.Rows, rowFor(headers, rec))
	}

	if len(res.Rows) == 0 {
		return nil, ErrEmpty
	}
	return res, nil
}

// rowFor builds a Row from one record, padding short records with empty
// cells and ignoring extra fields beyond the header width. Unnamed columns
// are dropped.
func rowFor(headers []string, rec []string) rowmap.Row {
	row := make(rowmap.Row, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(rec) {
			row[h] = rec[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
