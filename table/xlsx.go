package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first sheet of a workbook. The first row is the header.
func ParseXLSX(name string, data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{File: name, Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &ParseError{File: name, Err: errors.New("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{File: name, Err: err}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &ParseError{File: name, Err: ErrNoColumns}
	}

	header := rows[0]
	records := rows[1:]
	for i, rec := range records {
		if len(rec) > len(header) {
			return nil, &ParseError{
				File: name,
				Line: i + 2,
				Err:  fmt.Errorf("expected %d cells, saw %d", len(header), len(rec)),
			}
		}
	}
	return FromRecords(name, header, records), nil
}

// WriteXLSX writes the table to a single-sheet workbook.
// Numbers and booleans keep their cell types; missing values stay empty.
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(t.Columns))
	for i, name := range t.ColumnNames() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r := 0; r < t.RowCount(); r++ {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		row := make([]any, len(t.Columns))
		for c, col := range t.Columns {
			if v := col.Values[r]; v != nil {
				row[c] = v
			}
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	return f.Write(w)
}
