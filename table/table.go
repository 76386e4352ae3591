package table

import (
	"fmt"
	"math"
	"strconv"
)

// ============================================================================
// TABLE: In-memory dataset with named, typed columns
// ============================================================================
// A Table is what gets uploaded, transformed and downloaded. Cells hold one of
// nil (missing), float64, string or bool. Values are immutable scalars, so a
// deep copy only needs fresh slices.
// ============================================================================

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumber Kind = "number"
	KindString Kind = "string"
	KindBool   Kind = "bool"
	KindMixed  Kind = "mixed" // values of more than one type
)

// Column is a named sequence of values sharing a Kind.
type Column struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Values []any  `json:"values"`
}

// Table is an ordered collection of equally long columns.
// Name carries the identity of the file the table was loaded from.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// New builds a table and checks that every column has the same length
// and a unique name. Column kinds are re-inferred from the values.
func New(name string, columns ...Column) (*Table, error) {
	t := &Table{Name: name, Columns: make([]Column, len(columns))}
	for i, c := range columns {
		values := make([]any, len(c.Values))
		for j, v := range c.Values {
			values[j] = Normalize(v)
		}
		t.Columns[i] = Column{Name: c.Name, Kind: InferKind(values), Values: values}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate reports structural problems: ragged columns or duplicate names.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	rows := -1
	for _, c := range t.Columns {
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if rows >= 0 && len(c.Values) != rows {
			return fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), rows)
		}
		rows = len(c.Values)
	}
	return nil
}

// RowCount returns the number of rows. A table without columns has none.
func (t *Table) RowCount() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnNames returns column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil, false
	}
	return &t.Columns[i], true
}

// Row returns row i as a column-name → value map.
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		row[c.Name] = c.Values[i]
	}
	return row
}

// Clone returns a deep copy that shares no slices with t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Name: t.Name, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		values := make([]any, len(c.Values))
		copy(values, c.Values)
		out.Columns[i] = Column{Name: c.Name, Kind: c.Kind, Values: values}
	}
	return out
}

// Head returns a copy of the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.RowCount() {
		n = t.RowCount()
	}
	out := &Table{Name: t.Name, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		values := make([]any, n)
		copy(values, c.Values[:n])
		out.Columns[i] = Column{Name: c.Name, Kind: c.Kind, Values: values}
	}
	return out
}

// Equal reports content equality: same column names, kinds and values in
// the same order. The table name is not compared.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Columns) != len(o.Columns) {
		return false
	}
	for i := range t.Columns {
		a, b := t.Columns[i], o.Columns[i]
		if a.Name != b.Name || a.Kind != b.Kind || len(a.Values) != len(b.Values) {
			return false
		}
		for j := range a.Values {
			if !ValuesEqual(a.Values[j], b.Values[j]) {
				return false
			}
		}
	}
	return true
}

// ============================================================================
// VALUES
// ============================================================================

// Normalize maps Go scalars onto the cell representation.
// All numeric types become float64; NaN becomes nil.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		return x
	case float32:
		return Normalize(float64(x))
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case string, bool:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// InferKind returns the kind shared by all non-nil values.
// An all-missing column is a string column.
func InferKind(values []any) Kind {
	var kind Kind
	for _, v := range values {
		var k Kind
		switch v.(type) {
		case nil:
			continue
		case float64:
			k = KindNumber
		case bool:
			k = KindBool
		default:
			k = KindString
		}
		if kind == "" {
			kind = k
		} else if kind != k {
			return KindMixed
		}
	}
	if kind == "" {
		return KindString
	}
	return kind
}

// ValuesEqual compares two cells after normalization.
func ValuesEqual(a, b any) bool {
	return Normalize(a) == Normalize(b)
}

// FormatValue renders a cell for CSV output and display.
// Whole numbers print without decimals.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
