package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ============================================================================
// CSV: delimited text with a header row
// ============================================================================
// Consumer reads the bytes from wherever they live (upload, disk, stdin).
// This file converts them into a typed Table and back.
// ============================================================================

// ParseError reports malformed tabular input. It is fatal to the load that
// produced it; the caller keeps whatever dataset it had before.
type ParseError struct {
	File string
	Line int // 1-based, 0 when not tied to a line
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrNoColumns is returned for input without a header row.
var ErrNoColumns = errors.New("no columns to parse from file")

// ParseCSV parses delimited text. A zero delimiter is sniffed from the
// header line among comma, semicolon, tab and pipe.
func ParseCSV(name string, data []byte, delimiter rune) (*Table, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{File: name, Err: ErrNoColumns}
	}
	if delimiter == 0 {
		delimiter = sniffDelimiter(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, wrapCSVError(name, err)
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapCSVError(name, err)
		}
		if len(rec) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, &ParseError{
				File: name,
				Line: line,
				Err:  fmt.Errorf("expected %d fields, saw %d", len(header), len(rec)),
			}
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" && len(header) > 1 {
			continue // blank line
		}
		records = append(records, rec)
	}

	return FromRecords(name, header, records), nil
}

func wrapCSVError(name string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{File: name, Line: perr.Line, Err: perr.Err}
	}
	if err == io.EOF {
		return &ParseError{File: name, Err: ErrNoColumns}
	}
	return &ParseError{File: name, Err: err}
}

// sniffDelimiter picks the candidate that occurs most often in the first line.
func sniffDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(first, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// WriteCSV writes the table as comma-separated text with a header row.
// Missing values are written as empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	return writeDelimited(w, t, ',')
}

// writeDelimited quotes fields the way ParseCSV reads them back.
func writeDelimited(w io.Writer, t *Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(t.ColumnNames()); err != nil {
		return err
	}
	row := make([]string, len(t.Columns))
	for i := 0; i < t.RowCount(); i++ {
		for j, c := range t.Columns {
			row[j] = FormatValue(c.Values[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
