package translator

import (
	"fmt"
	"strings"

	"github.com/spektr-org/wrangle/table"
)

// ============================================================================
// PROMPT BUILDER: Instruction + sample → model prompt
// ============================================================================
// The model is told about the `df` binding, the operations it may call and
// the shape of the data. It sees a handful of rows, never the whole table.
// ============================================================================

// operations documents the statement surface for the model. Keep in sync
// with executor.Frame.
const operations = `  df.Filter("<predicate>")          keep rows where the predicate is true
  df.Drop("col", ...)                remove columns
  df.Select("col", ...)              keep and reorder columns
  df.Rename("old", "new")            rename a column
  df.Derive("name", "<expression>")  add or overwrite a computed column
  df.Sort("col", <desc bool>)        sort rows, missing values last
  df.Head(n) / df.Tail(n)            first or last n rows
  df.Dedupe("col", ...)              drop duplicate rows (all columns if none given)
  df.DropNA("col", ...)              drop rows with missing values (any column if none given)
  df.FillNA("col", value)            replace missing values
  df.Replace("col", old, new)        replace matching values
  df.Cast("col", "number"|"string"|"bool")
  df.Aggregate("by", "col", "sum"|"count"|"avg"|"min"|"max")  one row per value of by`

// BuildSample describes a table for the prompt: its columns with their
// kinds, followed by the first n rows in column-oriented JSON.
func BuildSample(t *table.Table, n int) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = fmt.Sprintf("%s (%s)", c.Name, c.Kind)
	}
	return fmt.Sprintf("columns: %s\nrows: %s", strings.Join(cols, ", "), table.Sample(t, n))
}

// BuildPrompt renders the full prompt sent to the model.
func BuildPrompt(instruction, sample string) string {
	var b strings.Builder

	b.WriteString(`You are an expert data wrangler.
Given a table named ` + "`df`" + ` with these columns and first few rows:
`)
	b.WriteString(sample)
	b.WriteString("\n\nWrite a single statement that performs the following task:\n")
	fmt.Fprintf(&b, "'%s'\n\n", instruction)

	b.WriteString("The statement must start from `df` and may only chain these operations:\n")
	b.WriteString(operations)
	b.WriteString(`

Predicates and expressions are strings evaluated per row. Refer to columns by
name, or as $env["Column Name"] when the name contains spaces. Use and, or,
not, ==, !=, <, <=, >, >=, arithmetic, and functions such as lower(), upper(),
trim(), len(), abs(), round(). String literals inside an expression use
single quotes, for example df.Filter("city == 'Lisbon'").

Do not add any explanation, comments, or markdown formatting.
Only return the raw statement.
`)
	return b.String()
}
