package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/spektr-org/wrangle/table"
)

// ============================================================================
// EXECUTOR: Runs one generated statement against a copy of the working table
// ============================================================================
// Entry point: Execute(code, working, opts...)
//
// Pipeline:
//   1. Normalize the statement (trim, strip a leading "df =" rebinding)
//   2. Compile it with expr against {"df": *Frame}; only Frame methods exist
//   3. Run it on a Frame wrapping a deep copy of working
//   4. Require a *Frame result and measure the row delta
//
// The caller's table is never touched. On failure there is nothing to undo.
// ============================================================================

// ErrNoTable is returned when the statement does not evaluate to a table.
var ErrNoTable = errors.New("statement did not produce a table")

// ExecutionError reports a statement that failed to compile or run.
// Err carries the underlying cause shown to the user.
type ExecutionError struct {
	Code string
	Err  error
}

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Result is the outcome of a successful execution.
type Result struct {
	Table        *table.Table
	Code         string // statement as executed, after normalization
	RowsBefore   int
	RowsAfter    int
	RowsAffected int // RowsAfter - RowsBefore
}

// Execute applies code to a copy of working and returns the new table.
func Execute(code string, working *table.Table, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)

	stmt := Normalize(code)
	fail := func(err error) (*Result, error) {
		cfg.Logger.Debug("statement failed", "code", stmt, "error", err)
		return nil, &ExecutionError{Code: stmt, Err: err}
	}

	if working == nil {
		return fail(errors.New("no working dataset"))
	}
	if stmt == "" {
		return fail(errors.New("empty statement"))
	}
	if len(stmt) > cfg.MaxCodeLength {
		return fail(fmt.Errorf("statement is %d bytes, limit is %d", len(stmt), cfg.MaxCodeLength))
	}

	rowsBefore := working.RowCount()
	env := map[string]any{"df": newFrame(working.Clone())}

	program, err := expr.Compile(stmt, expr.Env(env))
	if err != nil {
		return fail(err)
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return fail(err)
	}

	frame, ok := output.(*Frame)
	if !ok || frame == nil {
		return fail(fmt.Errorf("%w (got %T)", ErrNoTable, output))
	}
	out := frame.t
	if err := out.Validate(); err != nil {
		return fail(err)
	}

	rowsAfter := out.RowCount()
	cfg.Logger.Debug("statement applied",
		"code", stmt, "rows_before", rowsBefore, "rows_after", rowsAfter)

	return &Result{
		Table:        out,
		Code:         stmt,
		RowsBefore:   rowsBefore,
		RowsAfter:    rowsAfter,
		RowsAffected: rowsAfter - rowsBefore,
	}, nil
}

// Normalize trims the statement and removes a leading "df =" rebinding,
// so `df = df.Drop("x")` and `df.Drop("x")` run the same way.
func Normalize(code string) string {
	s := strings.TrimSpace(code)
	s = strings.TrimSuffix(s, ";")
	if rest, ok := strings.CutPrefix(s, "df"); ok {
		rest = strings.TrimLeft(rest, " \t")
		if strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==") {
			s = strings.TrimSpace(rest[1:])
		}
	}
	return strings.TrimSpace(s)
}
