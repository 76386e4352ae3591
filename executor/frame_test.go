package executor

import (
	"testing"

	"github.com/spektr-org/wrangle/table"
)

func frameOf(t *testing.T, cols ...table.Column) *Frame {
	t.Helper()
	tbl, err := table.New("t", cols...)
	if err != nil {
		t.Fatalf("table.New failed: %v", err)
	}
	return newFrame(tbl)
}

func values(t *testing.T, f *Frame, col string) []any {
	t.Helper()
	c, ok := f.t.Column(col)
	if !ok {
		t.Fatalf("column %q missing", col)
	}
	return c.Values
}

func equalValues(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !table.ValuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestFilterTreatsMissingAsFalse(t *testing.T) {
	f := frameOf(t, table.Column{Name: "score", Values: []any{5, nil, 9}})
	out, err := f.Filter("score > 4")
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if got := values(t, out, "score"); !equalValues(got, []any{5, 9}) {
		t.Errorf("score = %v, want [5 9]", got)
	}
}

func TestRuntimeErrorsIgnoreUnrelatedMissing(t *testing.T) {
	f := frameOf(t,
		table.Column{Name: "code", Values: []any{1, "x"}},
		table.Column{Name: "note", Values: []any{"ok", nil}},
	)
	if _, err := f.Filter("code * 2 > 1"); err == nil {
		t.Error("Filter: expected the runtime error on row 1 to surface")
	}
	if _, err := f.Derive("double", "code * 2"); err == nil {
		t.Error("Derive: expected the runtime error on row 1 to surface")
	}
}

func TestDeriveMissingThroughEnvLookup(t *testing.T) {
	f := frameOf(t,
		table.Column{Name: "unit price", Values: []any{2, nil}},
		table.Column{Name: "qty", Values: []any{3, 4}},
	)
	out, err := f.Derive("total", `$env["unit price"] * qty`)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got := values(t, out, "total"); !equalValues(got, []any{6, nil}) {
		t.Errorf("total = %v, want [6 <nil>]", got)
	}
}

func TestFilterRejectsNonBool(t *testing.T) {
	f := frameOf(t, table.Column{Name: "score", Values: []any{5, 9}})
	if _, err := f.Filter("score * 2"); err == nil {
		t.Error("expected error for a non-boolean predicate")
	}
}

func TestDeriveMissingYieldsMissing(t *testing.T) {
	f := frameOf(t,
		table.Column{Name: "price", Values: []any{2, nil}},
		table.Column{Name: "qty", Values: []any{3, 4}},
	)
	out, err := f.Derive("total", "price * qty")
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got := values(t, out, "total"); !equalValues(got, []any{6, nil}) {
		t.Errorf("total = %v, want [6 <nil>]", got)
	}
	if _, ok := f.t.Column("total"); ok {
		t.Error("Derive modified its receiver")
	}
}

func TestDeriveColumnWithSpaces(t *testing.T) {
	f := frameOf(t, table.Column{Name: "Unit Price", Values: []any{1.5, 2}})
	out, err := f.Derive("double", `$env["Unit Price"] * 2`)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got := values(t, out, "double"); !equalValues(got, []any{3, 4}) {
		t.Errorf("double = %v, want [3 4]", got)
	}
}

func TestDeriveOverwritesInPlace(t *testing.T) {
	f := frameOf(t,
		table.Column{Name: "a", Values: []any{1, 2}},
		table.Column{Name: "b", Values: []any{"x", "y"}},
	)
	out, err := f.Derive("a", "a * 10")
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got := out.Columns(); got[0] != "a" || got[1] != "b" {
		t.Errorf("columns = %v, want [a b]", got)
	}
	if got := values(t, out, "a"); !equalValues(got, []any{10, 20}) {
		t.Errorf("a = %v", got)
	}
}

func TestSortMissingLast(t *testing.T) {
	f := frameOf(t, table.Column{Name: "n", Values: []any{3, nil, 1, 2}})
	tests := []struct {
		desc bool
		want []any
	}{
		{false, []any{1, 2, 3, nil}},
		{true, []any{3, 2, 1, nil}},
	}
	for _, tt := range tests {
		out, err := f.Sort("n", tt.desc)
		if err != nil {
			t.Fatalf("Sort failed: %v", err)
		}
		if got := values(t, out, "n"); !equalValues(got, tt.want) {
			t.Errorf("Sort(desc=%v) = %v, want %v", tt.desc, got, tt.want)
		}
	}
}

func TestHeadTail(t *testing.T) {
	f := frameOf(t, table.Column{Name: "n", Values: []any{1, 2, 3, 4}})
	tests := []struct {
		name string
		got  *Frame
		want []any
	}{
		{"head 2", f.Head(2), []any{1, 2}},
		{"head -1", f.Head(-1), []any{1, 2, 3}},
		{"head 10", f.Head(10), []any{1, 2, 3, 4}},
		{"tail 1", f.Tail(1), []any{4}},
		{"tail -3", f.Tail(-3), []any{4}},
		{"tail -9", f.Tail(-9), []any{}},
	}
	for _, tt := range tests {
		if got := values(t, tt.got, "n"); !equalValues(got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	f := frameOf(t,
		table.Column{Name: "k", Values: []any{"a", "a", "b", "a"}},
		table.Column{Name: "v", Values: []any{1, 1, 2, 3}},
	)
	all, err := f.Dedupe()
	if err != nil {
		t.Fatalf("Dedupe failed: %v", err)
	}
	if got := values(t, all, "v"); !equalValues(got, []any{1, 2, 3}) {
		t.Errorf("Dedupe() v = %v", got)
	}
	byKey, err := f.Dedupe("k")
	if err != nil {
		t.Fatalf("Dedupe(k) failed: %v", err)
	}
	if got := values(t, byKey, "v"); !equalValues(got, []any{1, 2}) {
		t.Errorf("Dedupe(k) v = %v", got)
	}
}

func TestDropNAAndFillNA(t *testing.T) {
	f := frameOf(t,
		table.Column{Name: "a", Values: []any{1, nil, 3}},
		table.Column{Name: "b", Values: []any{"x", "y", nil}},
	)
	out, err := f.DropNA("a")
	if err != nil {
		t.Fatalf("DropNA failed: %v", err)
	}
	if out.Len() != 2 {
		t.Errorf("DropNA(a) rows = %d, want 2", out.Len())
	}
	out, _ = f.DropNA()
	if out.Len() != 1 {
		t.Errorf("DropNA() rows = %d, want 1", out.Len())
	}

	filled, err := f.FillNA("a", 0)
	if err != nil {
		t.Fatalf("FillNA failed: %v", err)
	}
	if got := values(t, filled, "a"); !equalValues(got, []any{1, 0, 3}) {
		t.Errorf("FillNA a = %v", got)
	}
	if _, err := f.FillNA("missing", 0); err == nil {
		t.Error("FillNA on unknown column should fail")
	}
}

func TestReplaceAndCast(t *testing.T) {
	f := frameOf(t, table.Column{Name: "flag", Values: []any{"yes", "no", "n/a"}})
	out, err := f.Replace("flag", "n/a", nil)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	out, err = out.Cast("flag", "bool")
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	c, _ := out.t.Column("flag")
	if c.Kind != table.KindBool || !equalValues(c.Values, []any{true, false, nil}) {
		t.Errorf("flag = %s %v", c.Kind, c.Values)
	}

	num := frameOf(t, table.Column{Name: "n", Values: []any{"1.5", " 2 "}})
	out, err = num.Cast("n", "number")
	if err != nil {
		t.Fatalf("Cast number failed: %v", err)
	}
	if got := values(t, out, "n"); !equalValues(got, []any{1.5, 2}) {
		t.Errorf("n = %v", got)
	}
	if _, err := num.Cast("n", "date"); err == nil {
		t.Error("Cast to unknown kind should fail")
	}
}

func TestSelectAndRename(t *testing.T) {
	f := frameOf(t,
		table.Column{Name: "a", Values: []any{1}},
		table.Column{Name: "b", Values: []any{2}},
		table.Column{Name: "c", Values: []any{3}},
	)
	out, err := f.Select("c", "a")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got := out.Columns(); len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Errorf("Select columns = %v", got)
	}
	if _, err := f.Select("a", "a"); err == nil {
		t.Error("selecting a column twice should fail")
	}
	out, err = f.Rename("b", "beta")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if got := out.Columns(); got[1] != "beta" {
		t.Errorf("Rename columns = %v", got)
	}
	if f.Columns()[1] != "b" {
		t.Error("Rename modified its receiver")
	}
}
