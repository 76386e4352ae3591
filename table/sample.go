package table

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ============================================================================
// SAMPLE + PREVIEW: What the model sees, what the user sees
// ============================================================================
// Sample is a column-oriented JSON snippet of the first rows:
//   {"age": {"0": 17, "1": 20}, "name": {"0": "Ann", "1": "Bo"}}
// Column order follows the table, not map order.
// Preview is the render-ready form used by the TUI and HTTP surfaces.
// ============================================================================

// DefaultSampleRows is how many rows go into a prompt sample.
const DefaultSampleRows = 5

// Sample serializes the first n rows column by column.
func Sample(t *Table, n int) string {
	if n <= 0 {
		n = DefaultSampleRows
	}
	head := t.Head(n)

	var b strings.Builder
	b.WriteByte('{')
	for ci, c := range head.Columns {
		if ci > 0 {
			b.WriteString(", ")
		}
		writeJSON(&b, c.Name)
		b.WriteString(": {")
		for ri, v := range c.Values {
			if ri > 0 {
				b.WriteString(", ")
			}
			writeJSON(&b, strconv.Itoa(ri))
			b.WriteString(": ")
			writeJSON(&b, v)
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')
	return b.String()
}

func writeJSON(b *strings.Builder, v any) {
	out, err := json.Marshal(v)
	if err != nil {
		out, _ = json.Marshal(FormatValue(v))
	}
	b.Write(out)
}

// ColumnInfo describes one column for display.
type ColumnInfo struct {
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Missing int    `json:"missing"`
}

// Preview is a rendered, possibly truncated view of a table.
type Preview struct {
	Name      string       `json:"name"`
	Columns   []ColumnInfo `json:"columns"`
	Rows      [][]string   `json:"rows"`
	TotalRows int          `json:"totalRows"`
	Truncated bool         `json:"truncated"`
}

// BuildPreview renders the first n rows as strings. n <= 0 means all rows.
func BuildPreview(t *Table, n int) Preview {
	total := t.RowCount()
	if n <= 0 || n > total {
		n = total
	}

	cols := make([]ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		missing := 0
		for _, v := range c.Values {
			if v == nil {
				missing++
			}
		}
		cols[i] = ColumnInfo{Name: c.Name, Kind: c.Kind, Missing: missing}
	}

	rows := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(t.Columns))
		for c, col := range t.Columns {
			row[c] = FormatValue(col.Values[r])
		}
		rows[r] = row
	}

	return Preview{
		Name:      t.Name,
		Columns:   cols,
		Rows:      rows,
		TotalRows: total,
		Truncated: n < total,
	}
}
