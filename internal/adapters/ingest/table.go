package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// Format names a tabular encoding.
type Format string

// Supported table formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFormat resolves a user supplied format name. Empty means auto-detect.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromName infers a format from a file extension. Unknown
// extensions return "" so the content is sniffed instead.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	}
	return ""
}

// Sniff guesses the format of data: a leading '[' means JSON records.
func Sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatCSV
}

// Table is a decoded record table. Values are strings for CSV input and
// JSON scalars (json.Number for numbers) for JSON input.
type Table struct {
	Columns []string
	Rows    []map[string]any

	present map[string]struct{}
}

func newTable(cols []string, rows []map[string]any) *Table {
	t := &Table{Columns: cols, Rows: rows, present: make(map[string]struct{}, len(cols))}
	for _, c := range cols {
		t.present[c] = struct{}{}
	}
	return t
}

// Has reports whether col is a column of the table.
func (t *Table) Has(col string) bool {
	_, ok := t.present[col]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Value returns the cell at row i, column col.
func (t *Table) Value(i int, col string) (any, bool) {
	v, ok := t.Rows[i][col]
	return v, ok
}

// DecodeTable decodes data in format f, auto-detecting when f is empty.
func DecodeTable(data []byte, f Format) (*Table, error) {
	if f == "" {
		f = Sniff(data)
	}
	switch f {
	case FormatCSV:
		return DecodeCSV(bytes.NewReader(data))
	case FormatJSON:
		return DecodeJSON(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// DecodeCSV reads a headed CSV table. Short rows leave trailing cells absent.
func DecodeCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return newTable(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: csv header: %v", ErrDecode, err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, string(utf8BOM))
		}
		cols[i] = strings.TrimSpace(h)
	}

	var rows []map[string]any
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %v", ErrDecode, err)
		}
		row := make(map[string]any, len(cols))
		for i, v := range rec {
			if i < len(cols) {
				row[cols[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return newTable(cols, rows), nil
}

// DecodeJSON reads a JSON array of flat objects. Columns are the union of
// all keys; keys new to a record are appended in lexical order.
func DecodeJSON(data []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: json records: %v", ErrDecode, err)
	}

	var cols []string
	seen := make(map[string]struct{})
	for _, rec := range records {
		var fresh []string
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		cols = append(cols, fresh...)
	}
	return newTable(cols, records), nil
}
