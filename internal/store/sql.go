package store

import (
	"fmt"
	"sort"
	"strings"
)

// buildUpdate assembles a partial UPDATE from a column map. Keys are checked
// against the table's allowed set and emitted in sorted order so the
// generated statement is deterministic. updated_at is always touched; the
// key argument lands in the last placeholder.
func buildUpdate(table, keyCol string, key any, allowed map[string]bool, fields map[string]any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("update %s: no fields", table)
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !allowed[col] {
			return "", nil, fmt.Errorf("update %s: unknown column %q", table, col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var b strings.Builder
	args := make([]any, 0, len(cols)+1)
	fmt.Fprintf(&b, "UPDATE %s SET ", table)
	for i, col := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		args = append(args, fields[col])
		fmt.Fprintf(&b, "%s = $%d", col, len(args))
	}
	b.WriteString(", updated_at = now()")
	args = append(args, key)
	fmt.Fprintf(&b, " WHERE %s = $%d", keyCol, len(args))

	return b.String(), args, nil
}

// prefixColumns qualifies every column of a comma-separated list with a
// table alias, for queries that join.
func prefixColumns(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
