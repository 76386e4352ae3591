package executor

import (
	"errors"
	"strings"
	"testing"

	"github.com/spektr-org/wrangle/table"
)

func newPeople(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New("people.csv",
		table.Column{Name: "name", Values: []any{"Ann", "Bo", "Cy"}},
		table.Column{Name: "age", Values: []any{17, 20, 35}},
		table.Column{Name: "city", Values: []any{"Lisbon", nil, "Porto"}},
	)
	if err != nil {
		t.Fatalf("table.New failed: %v", err)
	}
	return tbl
}

func TestExecuteDropsRows(t *testing.T) {
	working := newPeople(t)
	res, err := Execute(`df.Filter("age >= 18")`, working)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.RowsBefore != 3 || res.RowsAfter != 2 || res.RowsAffected != -1 {
		t.Errorf("rows = %d -> %d (%d), want 3 -> 2 (-1)", res.RowsBefore, res.RowsAfter, res.RowsAffected)
	}
	if working.RowCount() != 3 {
		t.Errorf("working was mutated: %d rows", working.RowCount())
	}
	name, _ := res.Table.Column("name")
	if name.Values[0] != "Bo" || name.Values[1] != "Cy" {
		t.Errorf("names = %v, want [Bo Cy]", name.Values)
	}
}

func TestExecuteAcceptsRebinding(t *testing.T) {
	res, err := Execute("  df = df.Derive(\"adult\", \"age >= 18\");\n", newPeople(t))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.RowsAffected != 0 {
		t.Errorf("RowsAffected = %d, want 0 for a column-only edit", res.RowsAffected)
	}
	adult, ok := res.Table.Column("adult")
	if !ok {
		t.Fatal("adult column missing")
	}
	if adult.Kind != table.KindBool || adult.Values[0] != false || adult.Values[2] != true {
		t.Errorf("adult = %s %v", adult.Kind, adult.Values)
	}
	if res.Code != `df.Derive("adult", "age >= 18")` {
		t.Errorf("Code = %q", res.Code)
	}
}

func TestExecuteChain(t *testing.T) {
	res, err := Execute(`df.Filter("age > 10").Drop("city").Sort("age", true).Head(2)`, newPeople(t))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := strings.Join(res.Table.ColumnNames(), ","); got != "name,age" {
		t.Errorf("columns = %s", got)
	}
	age, _ := res.Table.Column("age")
	if len(age.Values) != 2 || age.Values[0] != 35.0 || age.Values[1] != 20.0 {
		t.Errorf("age = %v, want [35 20]", age.Values)
	}
	if res.RowsAffected != -1 {
		t.Errorf("RowsAffected = %d, want -1", res.RowsAffected)
	}
}

func TestExecuteErrorsLeaveWorkingUntouched(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"missing column in drop", `df.Drop("salary")`},
		{"missing column in predicate", `df.Filter("salary > 1000")`},
		{"syntax error", `df.Filter(`},
		{"unknown method", `df.Explode("name")`},
		{"unknown binding", `pd.read_csv("x.csv")`},
		{"not a table", `1 + 1`},
		{"empty", "   "},
		{"bad cast", `df.Cast("name", "number")`},
		{"rename onto existing", `df.Rename("name", "age")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			working := newPeople(t)
			before := working.Clone()

			_, err := Execute(tt.code, working)
			var execErr *ExecutionError
			if !errors.As(err, &execErr) {
				t.Fatalf("error = %v (%T), want *ExecutionError", err, err)
			}
			if execErr.Err == nil || execErr.Error() == "" {
				t.Error("ExecutionError carries no cause")
			}
			if !working.Equal(before) {
				t.Error("working changed after a failed statement")
			}
		})
	}
}

func TestExecuteNotATable(t *testing.T) {
	_, err := Execute(`df.Len()`, newPeople(t))
	if !errors.Is(err, ErrNoTable) {
		t.Errorf("error = %v, want ErrNoTable", err)
	}
}

func TestExecuteMaxCodeLength(t *testing.T) {
	code := `df.Head(1)` + strings.Repeat(" ", 20)
	if _, err := Execute(code, newPeople(t), WithMaxCodeLength(5)); err == nil {
		t.Error("expected length limit error")
	}
	if _, err := Execute(code, newPeople(t), WithMaxCodeLength(100)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecuteNilWorking(t *testing.T) {
	if _, err := Execute(`df.Head(1)`, nil); err == nil {
		t.Error("expected error for nil working table")
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		`df = df.Head(1)`:     `df.Head(1)`,
		"df=df.Head(1);":      `df.Head(1)`,
		` df.Head(1) `:        `df.Head(1)`,
		`df == df`:            `df == df`,
		`dfx = 1`:             `dfx = 1`,
		"\tdf  =\n df.Tail(2)": `df.Tail(2)`,
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
