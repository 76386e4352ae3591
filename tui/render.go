package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/spektr-org/wrangle/session"
	"github.com/spektr-org/wrangle/table"
)

// ============================================================================
// TABLE RENDERING (shared with the CLI)
// ============================================================================

func grid(headers []string, rows [][]string) string {
	return ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		String()
}

// RenderPreview draws a preview as a bordered grid with kinds in the header.
func RenderPreview(p table.Preview) string {
	headers := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		headers[i] = fmt.Sprintf("%s (%s)", c.Name, c.Kind)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s: %d rows, %d columns\n", p.Name, p.TotalRows, len(p.Columns)))
	if len(headers) > 0 {
		b.WriteString(grid(headers, p.Rows))
		b.WriteByte('\n')
	}
	if p.Truncated {
		b.WriteString(fmt.Sprintf("showing %d of %d rows\n", len(p.Rows), p.TotalRows))
	}
	return b.String()
}

// RenderKinds lists the inferred kind and missing count per column.
func RenderKinds(p table.Preview) string {
	rows := make([][]string, len(p.Columns))
	for i, c := range p.Columns {
		rows[i] = []string{c.Name, string(c.Kind), strconv.Itoa(c.Missing)}
	}
	return grid([]string{"Column", "Kind", "Missing"}, rows) + "\n"
}

// RenderLog draws the transformation log, or the empty-log message.
func RenderLog(log []session.LogEntry) string {
	if len(log) == 0 {
		return session.MsgNoLog + "\n"
	}
	rows := make([][]string, len(log))
	for i, e := range log {
		rows[i] = []string{strconv.Itoa(e.Step), e.Description, strconv.Itoa(e.RowsAffected)}
	}
	return grid([]string{"Step #", "Description", "Rows Affected"}, rows) + "\n"
}

// RenderSummary prints the session metrics followed by the log.
func RenderSummary(s session.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File:            %s\n", s.FileIdentity)
	fmt.Fprintf(&b, "Transformations: %d\n", s.TransformationCount)
	fmt.Fprintf(&b, "Original rows:   %d\n", s.OriginalRowCount)
	fmt.Fprintf(&b, "Current rows:    %d (%+d)\n", s.WorkingRowCount, s.RowDelta)
	b.WriteString(RenderLog(s.Log))
	return b.String()
}
