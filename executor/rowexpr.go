package executor

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/spektr-org/wrangle/table"
)

// rowProgram is a compiled per-row expression such as `age >= 18` or
// `price * qty`. Columns are variables; names with spaces are reached
// through $env["Unit Price"].
type rowProgram struct {
	src     string
	program *vm.Program
	t       *table.Table
	reads   []*table.Column // columns the expression references
}

// compileRow type-checks src against the table's columns so that a typo in
// a column name fails before any row is touched.
func compileRow(t *table.Table, src string) (*rowProgram, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty row expression")
	}
	program, err := expr.Compile(src, expr.Env(typedEnv(t)))
	if err != nil {
		return nil, fmt.Errorf("row expression %q: %w", src, err)
	}
	return &rowProgram{src: src, program: program, t: t, reads: referencedColumns(t, src)}, nil
}

// referencedColumns lists the columns src reads. An $env lookup by anything
// but a string literal could read any column, so all of them are returned.
func referencedColumns(t *table.Table, src string) []*table.Column {
	all := make([]*table.Column, len(t.Columns))
	for i := range t.Columns {
		all[i] = &t.Columns[i]
	}
	tree, err := parser.Parse(src)
	if err != nil {
		return all
	}
	refs := &columnRefs{names: make(map[string]bool)}
	ast.Walk(&tree.Node, refs)
	if refs.envUses > refs.envLookups {
		return all
	}

	var reads []*table.Column
	for _, c := range all {
		if refs.names[c.Name] {
			reads = append(reads, c)
		}
	}
	return reads
}

type columnRefs struct {
	names      map[string]bool
	envUses    int
	envLookups int
}

func (r *columnRefs) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if n.Value == "$env" {
			r.envUses++
			return
		}
		r.names[n.Value] = true
	case *ast.MemberNode:
		id, ok := n.Node.(*ast.IdentifierNode)
		if !ok || id.Value != "$env" {
			return
		}
		if prop, ok := n.Property.(*ast.StringNode); ok {
			r.names[prop.Value] = true
			r.envLookups++
		}
	}
}

// typedEnv maps every column to a zero value of its kind. Mixed columns are
// left untyped.
func typedEnv(t *table.Table) map[string]any {
	env := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		switch c.Kind {
		case table.KindNumber:
			env[c.Name] = 0.0
		case table.KindString:
			env[c.Name] = ""
		case table.KindBool:
			env[c.Name] = false
		default:
			env[c.Name] = nil
		}
	}
	return env
}

// eval runs the expression on row i. Missing cells are nil, so arithmetic or
// comparison on them returns an error; callers decide what that means.
func (p *rowProgram) eval(i int) (any, error) {
	out, err := expr.Run(p.program, p.t.Row(i))
	if err != nil {
		return nil, err
	}
	return table.Normalize(out), nil
}

// test evaluates a predicate. A runtime failure on a row where a referenced
// column is missing counts as false, the way comparisons against NaN do.
func (p *rowProgram) test(i int) (bool, error) {
	out, err := p.eval(i)
	if err != nil {
		if p.rowHasMissing(i) {
			return false, nil
		}
		return false, fmt.Errorf("row %d: %w", i, err)
	}
	switch v := out.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	}
	return false, fmt.Errorf("predicate %q returned %T, want bool", p.src, out)
}

// value evaluates a derived cell. A runtime failure on a row where a
// referenced column is missing yields a missing cell.
func (p *rowProgram) value(i int) (any, error) {
	out, err := p.eval(i)
	if err != nil {
		if p.rowHasMissing(i) {
			return nil, nil
		}
		return nil, fmt.Errorf("row %d: %w", i, err)
	}
	return out, nil
}

func (p *rowProgram) rowHasMissing(i int) bool {
	for _, c := range p.reads {
		if c.Values[i] == nil {
			return true
		}
	}
	return false
}
