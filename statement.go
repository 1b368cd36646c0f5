package dynrec

import (
	"fmt"
	"strconv"
	"strings"
)

// quoteText wraps a text value in single quotes, doubling any embedded
// single quote. This is the only escaping the builders apply; generated
// statements carry no other protection against hostile input, and where
// clauses pass through verbatim.
func quoteText(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// sqlLiteral renders a field value as an inline SQL literal.
func sqlLiteral(v Value) string {
	if v.Kind() == Text {
		return quoteText(v.Text())
	}
	return v.String()
}

// buildInsert renders an INSERT for every field of the record, columns and
// values in field insertion order.
func buildInsert(r *Record) (string, error) {
	if r.Len() == 0 {
		return "", fmt.Errorf("%w: record for %v has no fields to insert", ErrInvalidArgument, r.table)
	}

	columns := make([]string, 0, r.Len())
	values := make([]string, 0, r.Len())
	for _, name := range r.names {
		columns = append(columns, name)
		values = append(values, sqlLiteral(r.values[name]))
	}

	return fmt.Sprintf(
		"INSERT INTO %v (%v) VALUES (%v)",
		r.table,
		strings.Join(columns, ", "),
		strings.Join(values, ", "),
	), nil
}

// buildUpdate renders an UPDATE restricted to the diff record's fields,
// matched on the identity column. The diff must carry at least one field and
// the identity of the row it targets.
func buildUpdate(diff *Record) (string, error) {
	if diff.Len() == 0 {
		return "", fmt.Errorf("%w: empty diff for %v", ErrInvalidArgument, diff.table)
	}

	assignments := make([]string, 0, diff.Len())
	for _, name := range diff.names {
		assignments = append(assignments, fmt.Sprintf("%v = %v", name, sqlLiteral(diff.values[name])))
	}

	return fmt.Sprintf(
		"UPDATE %v SET %v WHERE %v = %v",
		diff.table,
		strings.Join(assignments, ", "),
		IdentityColumn,
		strconv.FormatInt(diff.id, 10),
	), nil
}

// buildSelect renders SELECT * FROM table, with the where predicate appended
// verbatim when non-empty.
func buildSelect(table, where string) string {
	if where == "" {
		return "SELECT * FROM " + table
	}
	return fmt.Sprintf("SELECT * FROM %v WHERE %v", table, where)
}
