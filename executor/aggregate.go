package executor

import (
	"fmt"
	"strings"

	"github.com/spektr-org/wrangle/table"
)

// ============================================================================
// AGGREGATE: group → aggregate, one row per group
// ============================================================================
// Groups keep the order in which their key first appears; chain Sort to
// reorder. Rows with a missing key are dropped. Missing measure values are
// skipped, so an all-missing group sums to 0 and has no min, max or avg.
// ============================================================================

var aggregations = map[string]func(vals []float64) any{
	"sum": func(vals []float64) any {
		var total float64
		for _, v := range vals {
			total += v
		}
		return total
	},
	"avg": func(vals []float64) any {
		if len(vals) == 0 {
			return nil
		}
		var total float64
		for _, v := range vals {
			total += v
		}
		return total / float64(len(vals))
	},
	"min": func(vals []float64) any {
		if len(vals) == 0 {
			return nil
		}
		m := vals[0]
		for _, v := range vals[1:] {
			m = min(m, v)
		}
		return m
	},
	"max": func(vals []float64) any {
		if len(vals) == 0 {
			return nil
		}
		m := vals[0]
		for _, v := range vals[1:] {
			m = max(m, v)
		}
		return m
	},
}

type group struct {
	key  any
	rows []int
}

// Aggregate reduces col per value of by with agg (sum, count, avg, mean,
// min, max). An empty by aggregates the whole table into one row. count
// with an empty col counts rows. The result column is named col_agg.
func (f *Frame) Aggregate(by, col, agg string) (*Frame, error) {
	agg = strings.ToLower(strings.TrimSpace(agg))
	if agg == "mean" {
		agg = "avg"
	}
	reduce, known := aggregations[agg]
	if !known && agg != "count" {
		return nil, fmt.Errorf("unknown aggregation %q (want sum, count, avg, min or max)", agg)
	}

	var measure *table.Column
	if col != "" {
		c, ok := f.t.Column(col)
		if !ok {
			return nil, missingColumn(col)
		}
		if agg != "count" && c.Kind != table.KindNumber {
			return nil, fmt.Errorf("%s of column %q needs numbers, column is %s", agg, col, c.Kind)
		}
		measure = c
	} else if agg != "count" {
		return nil, fmt.Errorf("%s needs a column", agg)
	}

	groups, err := f.groups(by)
	if err != nil {
		return nil, err
	}

	name := "count"
	if col != "" {
		name = col + "_" + agg
	}
	values := make([]any, len(groups))
	for gi, g := range groups {
		if measure == nil {
			values[gi] = float64(len(g.rows))
			continue
		}
		var vals []float64
		for _, r := range g.rows {
			if v, ok := measure.Values[r].(float64); ok {
				vals = append(vals, v)
			}
		}
		if agg == "count" {
			values[gi] = float64(len(vals))
			continue
		}
		values[gi] = reduce(vals)
	}

	out := &table.Table{Name: f.t.Name}
	if by != "" {
		keys := make([]any, len(groups))
		for gi, g := range groups {
			keys[gi] = g.key
		}
		out.Columns = append(out.Columns, table.Column{Name: by, Kind: table.InferKind(keys), Values: keys})
	}
	out.Columns = append(out.Columns, table.Column{Name: name, Kind: table.InferKind(values), Values: values})
	return newFrame(out), nil
}

// groups partitions the rows by the value of column by, in first-seen order.
func (f *Frame) groups(by string) ([]group, error) {
	if by == "" {
		return []group{{rows: span(0, f.Len())}}, nil
	}
	if err := f.requireColumns([]string{by}); err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var groups []group
	key, _ := f.t.Column(by)
	for i, v := range key.Values {
		if v == nil {
			continue
		}
		k := f.rowKey(i, []string{by})
		gi, seen := index[k]
		if !seen {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, group{key: v})
		}
		groups[gi].rows = append(groups[gi].rows, i)
	}
	return groups, nil
}
