package dynrec

import (
	"database/sql"
	"fmt"
)

// scanRecord reads the current row into a Record of the given table. Every
// column lands in the field store under its mapped kind; a NULL stores the
// kind's zero value. The identity column additionally populates the record's
// identity, and the record is marked as already present in the database.
func scanRecord(rows *sql.Rows, table string, cols Columns) (*Record, error) {
	values := make([]interface{}, len(cols))
	for idx, col := range cols {
		switch col.Kind {
		case Text:
			values[idx] = new(sql.NullString)
		case Int32:
			values[idx] = new(sql.NullInt32)
		case Int64:
			values[idx] = new(sql.NullInt64)
		case Float64:
			values[idx] = new(sql.NullFloat64)
		default:
			return nil, fmt.Errorf("%w: column %v", ErrUnsupportedColumnType, col.Name)
		}
	}

	if err := rows.Scan(values...); err != nil {
		return nil, fmt.Errorf("scan %v row: %w", table, err)
	}

	record := newRecord(table)
	record.fresh = false
	for idx, col := range cols {
		switch v := values[idx].(type) {
		case *sql.NullString:
			record.set(col.Name, TextValue(v.String))
		case *sql.NullInt32:
			record.set(col.Name, Int32Value(v.Int32))
			if col.Name == IdentityColumn {
				record.id = int64(v.Int32)
			}
		case *sql.NullInt64:
			record.set(col.Name, Int64Value(v.Int64))
			if col.Name == IdentityColumn {
				record.id = v.Int64
			}
		case *sql.NullFloat64:
			record.set(col.Name, Float64Value(v.Float64))
		}
	}
	return record, nil
}

// scanRecords drains a result set into one Record per row. The caller owns
// closing rows; scanRecords reports iteration errors through rows.Err.
func scanRecords(rows *sql.Rows, table string, cols Columns) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows, table, cols)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %v rows: %w", table, err)
	}
	return records, nil
}
