package dynrec

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// IdentityColumn is the primary key column of every managed table. It is the
// auto-increment key the database generates and the column updates match on;
// it is not configurable per table.
const IdentityColumn = "RecordId"

// Column is one table column together with the kind its vendor type maps to.
type Column struct {
	Name     string
	TypeName string
	Kind     Kind
}

// Columns is an ordered column list, in table declaration order.
type Columns []Column

// Kind returns the mapped kind of the named column, false if the column is
// absent.
func (cols Columns) Kind(name string) (Kind, bool) {
	for _, col := range cols {
		if col.Name == name {
			return col.Kind, true
		}
	}
	return Invalid, false
}

// Names returns the column names in declaration order.
func (cols Columns) Names() []string {
	names := make([]string, len(cols))
	for idx, col := range cols {
		names[idx] = col.Name
	}
	return names
}

// columns maps a result set's column metadata through the session dialect.
func (s *Session) columns(rows *sql.Rows) (Columns, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column metadata: %w", err)
	}

	cols := make(Columns, 0, len(types))
	for _, columnType := range types {
		kind, ok := s.dialect.KindOf(columnType.DatabaseTypeName())
		if !ok {
			return nil, fmt.Errorf("%w: column %v is declared %v",
				ErrUnsupportedColumnType, columnType.Name(), columnType.DatabaseTypeName())
		}
		cols = append(cols, Column{
			Name:     columnType.Name(),
			TypeName: columnType.DatabaseTypeName(),
			Kind:     kind,
		})
	}
	return cols, nil
}

// ColumnTypes returns the live columns of a table with their mapped kinds,
// in declaration order. Only result-set metadata is read, no rows are
// fetched. A column whose vendor type has no kind mapping fails with
// ErrUnsupportedColumnType.
func (s *Session) ColumnTypes(ctx context.Context, table string) (Columns, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: empty table name", ErrInvalidArgument)
	}

	conn, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := buildSelect(table, "")
	begin := time.Now()
	rows, err := conn.QueryContext(ctx, query)
	s.logger.Trace(ctx, begin, func() (string, int64) { return query, -1 }, err)
	if err != nil {
		return nil, fmt.Errorf("column types of %v: %w", table, err)
	}
	defer rows.Close()

	cols, err := s.columns(rows)
	if err != nil {
		return nil, err
	}
	return cols, rows.Err()
}
