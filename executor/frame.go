package executor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/wrangle/table"
)

// ============================================================================
// FRAME: The allow-listed operation surface bound to `df`
// ============================================================================
// Statements can only call the exported methods below. Each method returns a
// new Frame, so chains like
//
//   df.Filter("age >= 18").Drop("city").Sort("age", true)
//
// read left to right and never alias an earlier step. Row expressions are
// strings compiled against the current columns.
// ============================================================================

// Frame wraps a table for use inside a statement.
type Frame struct {
	t *table.Table
}

func newFrame(t *table.Table) *Frame {
	return &Frame{t: t}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.t.RowCount() }

// Columns returns the column names in order.
func (f *Frame) Columns() []string { return f.t.ColumnNames() }

// Filter keeps the rows for which pred is true.
func (f *Frame) Filter(pred string) (*Frame, error) {
	p, err := compileRow(f.t, pred)
	if err != nil {
		return nil, err
	}
	var keep []int
	for i := 0; i < f.Len(); i++ {
		ok, err := p.test(i)
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return f.take(keep), nil
}

// Drop removes columns.
func (f *Frame) Drop(cols ...string) (*Frame, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("Drop needs at least one column")
	}
	if err := f.requireColumns(cols); err != nil {
		return nil, err
	}
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	out := &table.Table{Name: f.t.Name}
	for _, c := range f.t.Columns {
		if !drop[c.Name] {
			out.Columns = append(out.Columns, c)
		}
	}
	return newFrame(out), nil
}

// Select keeps the given columns in the given order.
func (f *Frame) Select(cols ...string) (*Frame, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("Select needs at least one column")
	}
	if err := f.requireColumns(cols); err != nil {
		return nil, err
	}
	out := &table.Table{Name: f.t.Name, Columns: make([]table.Column, 0, len(cols))}
	seen := make(map[string]bool, len(cols))
	for _, name := range cols {
		if seen[name] {
			return nil, fmt.Errorf("column %q selected twice", name)
		}
		seen[name] = true
		c, _ := f.t.Column(name)
		out.Columns = append(out.Columns, *c)
	}
	return newFrame(out), nil
}

// Rename changes a column name.
func (f *Frame) Rename(from, to string) (*Frame, error) {
	if err := f.requireColumns([]string{from}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(to) == "" {
		return nil, fmt.Errorf("new column name is empty")
	}
	if from != to && f.t.ColumnIndex(to) >= 0 {
		return nil, fmt.Errorf("column %q already exists", to)
	}
	out := f.t.Clone()
	out.Columns[out.ColumnIndex(from)].Name = to
	return newFrame(out), nil
}

// Derive adds a column computed per row, or overwrites an existing one in place.
func (f *Frame) Derive(name, expression string) (*Frame, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("derived column name is empty")
	}
	p, err := compileRow(f.t, expression)
	if err != nil {
		return nil, err
	}
	values := make([]any, f.Len())
	for i := range values {
		v, err := p.value(i)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	col := table.Column{Name: name, Kind: table.InferKind(values), Values: values}

	out := f.t.Clone()
	if i := out.ColumnIndex(name); i >= 0 {
		out.Columns[i] = col
	} else {
		out.Columns = append(out.Columns, col)
	}
	return newFrame(out), nil
}

// Sort orders rows by one column. The sort is stable and missing values go
// last in both directions.
func (f *Frame) Sort(col string, desc bool) (*Frame, error) {
	c, ok := f.t.Column(col)
	if !ok {
		return nil, missingColumn(col)
	}
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := c.Values[idx[a]], c.Values[idx[b]]
		if va == nil || vb == nil {
			return va != nil && vb == nil
		}
		if desc {
			return compareValues(vb, va) < 0
		}
		return compareValues(va, vb) < 0
	})
	return f.take(idx), nil
}

// Head keeps the first n rows. A negative n keeps all but the last -n rows.
func (f *Frame) Head(n int) *Frame {
	lo, hi := 0, clampRows(n, f.Len())
	return f.take(span(lo, hi))
}

// Tail keeps the last n rows. A negative n keeps all but the first -n rows.
func (f *Frame) Tail(n int) *Frame {
	total := f.Len()
	return f.take(span(total-clampRows(n, total), total))
}

// Dedupe drops rows that repeat an earlier row on cols, or on every column
// when none are given. The first occurrence is kept.
func (f *Frame) Dedupe(cols ...string) (*Frame, error) {
	cols, err := f.columnsOrAll(cols)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var keep []int
	for i := 0; i < f.Len(); i++ {
		key := f.rowKey(i, cols)
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, i)
	}
	return f.take(keep), nil
}

// DropNA drops rows with a missing value in any of cols, or in any column
// when none are given.
func (f *Frame) DropNA(cols ...string) (*Frame, error) {
	cols, err := f.columnsOrAll(cols)
	if err != nil {
		return nil, err
	}
	var keep []int
rows:
	for i := 0; i < f.Len(); i++ {
		for _, name := range cols {
			c, _ := f.t.Column(name)
			if c.Values[i] == nil {
				continue rows
			}
		}
		keep = append(keep, i)
	}
	return f.take(keep), nil
}

// FillNA replaces missing values in col.
func (f *Frame) FillNA(col string, value any) (*Frame, error) {
	value = table.Normalize(value)
	return f.mapColumn(col, func(v any) (any, error) {
		if v == nil {
			return value, nil
		}
		return v, nil
	})
}

// Replace swaps every cell equal to from for to.
func (f *Frame) Replace(col string, from, to any) (*Frame, error) {
	from, to = table.Normalize(from), table.Normalize(to)
	return f.mapColumn(col, func(v any) (any, error) {
		if table.ValuesEqual(v, from) {
			return to, nil
		}
		return v, nil
	})
}

// Cast converts a column to "number", "string" or "bool". Missing values
// stay missing.
func (f *Frame) Cast(col, kind string) (*Frame, error) {
	var conv func(any) (any, error)
	switch table.Kind(strings.ToLower(kind)) {
	case table.KindNumber:
		conv = toNumber
	case table.KindString:
		conv = func(v any) (any, error) { return table.FormatValue(v), nil }
	case table.KindBool:
		conv = toBool
	default:
		return nil, fmt.Errorf("cannot cast to %q (want number, string or bool)", kind)
	}
	return f.mapColumn(col, func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		return conv(v)
	})
}

// ============================================================================
// HELPERS
// ============================================================================

func missingColumn(name string) error {
	return fmt.Errorf("column %q not found", name)
}

func (f *Frame) requireColumns(cols []string) error {
	for _, c := range cols {
		if f.t.ColumnIndex(c) < 0 {
			return missingColumn(c)
		}
	}
	return nil
}

func (f *Frame) columnsOrAll(cols []string) ([]string, error) {
	if len(cols) == 0 {
		return f.t.ColumnNames(), nil
	}
	if err := f.requireColumns(cols); err != nil {
		return nil, err
	}
	return cols, nil
}

// take builds a frame from the given row indices, in order.
func (f *Frame) take(rows []int) *Frame {
	out := &table.Table{Name: f.t.Name, Columns: make([]table.Column, len(f.t.Columns))}
	for ci, c := range f.t.Columns {
		values := make([]any, len(rows))
		for i, r := range rows {
			values[i] = c.Values[r]
		}
		out.Columns[ci] = table.Column{Name: c.Name, Kind: c.Kind, Values: values}
	}
	return newFrame(out)
}

func (f *Frame) mapColumn(col string, fn func(any) (any, error)) (*Frame, error) {
	out := f.t.Clone()
	ci := out.ColumnIndex(col)
	if ci < 0 {
		return nil, missingColumn(col)
	}
	c := &out.Columns[ci]
	for i, v := range c.Values {
		nv, err := fn(v)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", col, i, err)
		}
		c.Values[i] = nv
	}
	c.Kind = table.InferKind(c.Values)
	return newFrame(out), nil
}

func (f *Frame) rowKey(i int, cols []string) string {
	var b strings.Builder
	for _, name := range cols {
		c, _ := f.t.Column(name)
		v := c.Values[i]
		fmt.Fprintf(&b, "%T:%s\x00", v, table.FormatValue(v))
	}
	return b.String()
}

func clampRows(n, total int) int {
	if n < 0 {
		n = total + n
	}
	if n < 0 {
		return 0
	}
	if n > total {
		return total
	}
	return n
}

func span(lo, hi int) []int {
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}

// compareValues orders two non-nil cells. Values of different types order
// by type: bool, number, string.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	return strings.Compare(table.FormatValue(a), table.FormatValue(b))
}

func typeRank(v any) int {
	switch v.(type) {
	case bool:
		return 0
	case float64:
		return 1
	}
	return 2
}

func toNumber(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case bool:
		if x {
			return 1.0, nil
		}
		return 0.0, nil
	}
	s := strings.TrimSpace(table.FormatValue(v))
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %q to number", s)
	}
	return n, nil
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	}
	s := strings.ToLower(strings.TrimSpace(table.FormatValue(v)))
	switch s {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return nil, fmt.Errorf("cannot convert %q to bool", s)
}
