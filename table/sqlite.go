package table

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// WriteSQLite exports the table into a SQLite database file as relation
// `relation`, replacing any previous relation of that name.
func WriteSQLite(path string, relation string, t *Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("export %s: table has no columns", relation)
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(relation)); err != nil {
		return fmt.Errorf("drop %s: %w", relation, err)
	}

	defs := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quoteIdent(c.Name) + " " + sqliteType(c.Kind)
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(relation), strings.Join(defs, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("create %s: %w", relation, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(relation), strings.Join(marks, ", "))
	stmt, err := tx.Preparex(insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for r := 0; r < t.RowCount(); r++ {
		for c, col := range t.Columns {
			args[c] = sqliteValue(col.Values[r])
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert row %d: %w", r+1, err)
		}
	}
	return tx.Commit()
}

func sqliteType(k Kind) string {
	switch k {
	case KindNumber:
		return "REAL"
	case KindBool:
		return "INTEGER"
	case KindString:
		return "TEXT"
	}
	return ""
}

func sqliteValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
