package dbx

import (
	"fmt"
	"strings"
)

// Where is a single equality condition of an UPDATE statement.
type Where struct {
	Column string
	Value  any
}

// UpdateBuilder collects column assignments for partial updates. Only the
// columns passed to Set end up in the statement, and updated_at is always
// refreshed.
type UpdateBuilder struct {
	sets []string
	args []any
}

// Set adds "column = $n" for value.
func (b *UpdateBuilder) Set(column string, value any) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// Empty reports whether no column was assigned.
func (b *UpdateBuilder) Empty() bool {
	return len(b.sets) == 0
}

// SQL renders the full statement and its positional arguments:
//
//	UPDATE <table> SET a = $1, updated_at = NOW() WHERE id = $2 AND ... RETURNING <returning>
func (b *UpdateBuilder) SQL(table string, where []Where, returning string) (string, []any) {
	args := append([]any(nil), b.args...)

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(append(append([]string(nil), b.sets...), "updated_at = NOW()"), ", "))

	for i, w := range where {
		args = append(args, w.Value)
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, "%s = $%d", w.Column, len(args))
	}

	if returning != "" {
		sb.WriteString(" RETURNING ")
		sb.WriteString(returning)
	}

	return sb.String(), args
}
