package table

import (
	"strings"
	"testing"
)

var peopleCSV = []byte(`name,age,member,city
Ann,17,true,Lisbon
Bo,20,false,
Cy,35,true,Porto
`)

func TestParseCSVInfersKinds(t *testing.T) {
	tbl, err := ParseCSV("people.csv", peopleCSV, 0)
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}

	if tbl.Name != "people.csv" {
		t.Errorf("Name = %q, want people.csv", tbl.Name)
	}
	if tbl.RowCount() != 3 {
		t.Fatalf("RowCount = %d, want 3", tbl.RowCount())
	}

	want := map[string]Kind{"name": KindString, "age": KindNumber, "member": KindBool, "city": KindString}
	for name, kind := range want {
		col, ok := tbl.Column(name)
		if !ok {
			t.Fatalf("column %q missing", name)
		}
		if col.Kind != kind {
			t.Errorf("column %q kind = %s, want %s", name, col.Kind, kind)
		}
	}

	age, _ := tbl.Column("age")
	if age.Values[0] != 17.0 {
		t.Errorf("age[0] = %#v, want 17.0", age.Values[0])
	}
	city, _ := tbl.Column("city")
	if city.Values[1] != nil {
		t.Errorf("city[1] = %#v, want nil for empty cell", city.Values[1])
	}
}

func TestParseCSVMissingMarkersAndPadding(t *testing.T) {
	data := []byte("a;b;c\n1;NA;x\n2;3\n")
	tbl, err := ParseCSV("semi.csv", data, 0)
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if got := tbl.ColumnNames(); strings.Join(got, ",") != "a,b,c" {
		t.Fatalf("columns = %v, want [a b c] (semicolon should be sniffed)", got)
	}
	b, _ := tbl.Column("b")
	if b.Kind != KindNumber || b.Values[0] != nil || b.Values[1] != 3.0 {
		t.Errorf("b = %s %#v, want number [nil 3]", b.Kind, b.Values)
	}
	c, _ := tbl.Column("c")
	if c.Values[1] != nil {
		t.Errorf("short row should be padded with nil, got %#v", c.Values[1])
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n \n", 0},
		{"too many fields", "a,b\n1,2\n1,2,3\n", 3},
		{"bare quote", "a,b\n1,\"x\"y\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV("bad.csv", []byte(tt.data), 0)
			if err == nil {
				t.Fatal("expected error")
			}
			perr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if perr.Line != tt.line {
				t.Errorf("Line = %d, want %d", perr.Line, tt.line)
			}
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	got := normalizeHeader([]string{"\ufeffid", " name ", "", "name", "name"})
	want := []string{"id", "name", "Column_3", "name.1", "name.2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	tbl, _ := ParseCSV("people.csv", peopleCSV, 0)
	cp := tbl.Clone()
	cp.Columns[1].Values[0] = 99.0
	cp.Columns[0].Name = "renamed"

	if !tbl.Equal(mustParse(t, peopleCSV)) {
		t.Error("mutating the clone changed the original")
	}
	if cp.Equal(tbl) {
		t.Error("clone should differ after mutation")
	}
}

func TestHeadBounds(t *testing.T) {
	tbl := mustParse(t, peopleCSV)
	if got := tbl.Head(2).RowCount(); got != 2 {
		t.Errorf("Head(2) rows = %d", got)
	}
	if got := tbl.Head(10).RowCount(); got != 3 {
		t.Errorf("Head(10) rows = %d", got)
	}
	if got := tbl.Head(-1).RowCount(); got != 0 {
		t.Errorf("Head(-1) rows = %d", got)
	}
}

func TestNewValidates(t *testing.T) {
	_, err := New("x", Column{Name: "a", Values: []any{1, 2}}, Column{Name: "b", Values: []any{1}})
	if err == nil {
		t.Error("expected ragged column error")
	}
	_, err = New("x", Column{Name: "a"}, Column{Name: "a"})
	if err == nil {
		t.Error("expected duplicate column error")
	}

	tbl, err := New("x", Column{Name: "n", Values: []any{int64(1), 2.5, nil}}, Column{Name: "m", Values: []any{1, "a", nil}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if tbl.Columns[0].Kind != KindNumber {
		t.Errorf("n kind = %s", tbl.Columns[0].Kind)
	}
	if tbl.Columns[1].Kind != KindMixed {
		t.Errorf("m kind = %s", tbl.Columns[1].Kind)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{17.0, "17"},
		{2.5, "2.5"},
		{true, "true"},
		{"x", "x"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSampleKeepsColumnOrder(t *testing.T) {
	tbl := mustParse(t, peopleCSV)
	got := Sample(tbl, 2)
	want := `{"name": {"0": "Ann", "1": "Bo"}, "age": {"0": 17, "1": 20}, "member": {"0": true, "1": false}, "city": {"0": "Lisbon", "1": null}}`
	if got != want {
		t.Errorf("Sample =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildPreview(t *testing.T) {
	tbl := mustParse(t, peopleCSV)
	p := BuildPreview(tbl, 2)
	if !p.Truncated || p.TotalRows != 3 || len(p.Rows) != 2 {
		t.Errorf("preview = %+v", p)
	}
	if p.Columns[3].Missing != 1 {
		t.Errorf("city missing = %d, want 1", p.Columns[3].Missing)
	}
	if p.Rows[0][1] != "17" {
		t.Errorf("rows[0][1] = %q", p.Rows[0][1])
	}
}

func TestWriteCSV(t *testing.T) {
	tbl := mustParse(t, peopleCSV)
	var b strings.Builder
	if err := WriteCSV(&b, tbl); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if b.String() != string(peopleCSV) {
		t.Errorf("WriteCSV =\n%s\nwant\n%s", b.String(), peopleCSV)
	}
}

func TestFormatFromName(t *testing.T) {
	tests := map[string]Format{
		"a.csv":       FormatCSV,
		"a.TSV":       FormatTSV,
		"book.xlsx":   FormatXLSX,
		"out.sqlite":  FormatSQLite,
		"noextension": FormatCSV,
	}
	for name, want := range tests {
		if got := FormatFromName(name); got != want {
			t.Errorf("FormatFromName(%q) = %s, want %s", name, got, want)
		}
	}
	if _, err := ParseFormat("parquet"); err == nil {
		t.Error("ParseFormat should reject unknown formats")
	}
}

func mustParse(t *testing.T, data []byte) *Table {
	t.Helper()
	tbl, err := ParseCSV("people.csv", data, 0)
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	return tbl
}
