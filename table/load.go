package table

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format names a serialization of a Table.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// FormatFromName guesses the format from a file name's extension.
// Unknown extensions are treated as comma-separated text.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsv", ".tab":
		return FormatTSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	}
	return FormatCSV
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatTSV, FormatXLSX, FormatSQLite:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want csv, tsv, xlsx or sqlite)", s)
}

// Load parses an uploaded file into a Table keyed by its name.
func Load(name string, data []byte) (*Table, error) {
	switch FormatFromName(name) {
	case FormatXLSX:
		return ParseXLSX(name, data)
	case FormatTSV:
		return ParseCSV(name, data, '\t')
	case FormatSQLite:
		return nil, &ParseError{File: name, Err: fmt.Errorf("sqlite is an export-only format")}
	}
	return ParseCSV(name, data, 0)
}

// Write serializes the table in a streamable format.
// SQLite needs a file path and goes through WriteSQLite instead.
func Write(w io.Writer, t *Table, format Format) error {
	switch format {
	case FormatCSV, "":
		return WriteCSV(w, t)
	case FormatTSV:
		return writeTSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	}
	return fmt.Errorf("format %q cannot be streamed", format)
}

// WriteFile exports the table to path in format, or in the format implied by
// the path's extension when format is empty. SQLite files hold the table as
// relation "data".
func WriteFile(path string, t *Table, format Format) error {
	if format == "" {
		format = FormatFromName(path)
	}
	if format == FormatSQLite {
		return WriteSQLite(path, "data", t)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, t, format); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ContentType returns the MIME type used for downloads.
func (f Format) ContentType() string {
	switch f {
	case FormatTSV:
		return "text/tab-separated-values"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatSQLite:
		return "application/vnd.sqlite3"
	}
	return "text/csv"
}

// DownloadName is the file name offered for an exported working table.
func DownloadName(f Format) string {
	if f == "" {
		f = FormatCSV
	}
	return "transformed_data." + string(f)
}

func writeTSV(w io.Writer, t *Table) error {
	return writeDelimited(w, t, '\t')
}
