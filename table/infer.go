package table

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// TYPE INFERENCE: raw header + string cells → typed Table
// ============================================================================
// Classification per column:
//   1. Missing markers ("", NA, N/A, null, NaN, ...) → nil
//   2. Every remaining value parses as a number → KindNumber
//   3. Every remaining value is true/false        → KindBool
//   4. Otherwise                                  → KindString (raw text kept)
// ============================================================================

var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"#n/a": true,
	"<na>": true,
}

func isMissing(s string) bool {
	return missingMarkers[strings.ToLower(strings.TrimSpace(s))]
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// detectKind looks at the non-missing raw values of one column.
func detectKind(raw []string) Kind {
	numeric, boolean, present := 0, 0, 0
	for _, v := range raw {
		if isMissing(v) {
			continue
		}
		present++
		if _, ok := parseNumber(v); ok {
			numeric++
		}
		if _, ok := parseBool(v); ok {
			boolean++
		}
	}
	switch {
	case present == 0:
		return KindString
	case numeric == present:
		return KindNumber
	case boolean == present:
		return KindBool
	}
	return KindString
}

// convert turns raw cells into typed values for the given kind.
func convert(raw []string, kind Kind) []any {
	values := make([]any, len(raw))
	for i, v := range raw {
		if isMissing(v) {
			continue
		}
		switch kind {
		case KindNumber:
			values[i], _ = parseNumber(v)
		case KindBool:
			values[i], _ = parseBool(v)
		default:
			values[i] = v
		}
	}
	return values
}

// FromRecords builds a typed Table from a header row and string records.
// Short records are padded with missing values; records longer than the
// header are rejected by the callers before this point.
func FromRecords(name string, header []string, records [][]string) *Table {
	names := normalizeHeader(header)
	t := &Table{Name: name, Columns: make([]Column, len(names))}
	for ci, colName := range names {
		raw := make([]string, len(records))
		for ri, rec := range records {
			if ci < len(rec) {
				raw[ri] = rec[ci]
			}
		}
		kind := detectKind(raw)
		t.Columns[ci] = Column{Name: colName, Kind: kind, Values: convert(raw, kind)}
	}
	return t
}

// normalizeHeader trims names, fills blanks with Column_N and suffixes
// duplicates with .1, .2, ...
func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		base := h
		for seen[h] > 0 {
			h = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[h]++
		names[i] = h
	}
	return names
}
