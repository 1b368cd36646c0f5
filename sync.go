package dynrec

import (
	"context"
	"fmt"
	"time"
)

// Commit writes the pending pool back to the database in two phases.
//
// Phase one verifies every staged record against the live schema of its
// table: each field must exist as a column and hold the column's mapped
// kind. The first mismatch aborts the commit before anything is written, so
// a bad record anywhere in the pool protects unrelated records too.
//
// Phase two synchronizes each record independently: a fresh record is
// inserted; a queried record is re-fetched by identity, diffed against its
// in-memory state and, when the diff is non-empty, updated on the differing
// columns only. One record's write failure does not stop the records after
// it; the failures come back collected in an Errors value.
//
// Commit does not drain the pool. Records stay staged and are re-verified
// and re-synchronized by the next Commit; an unchanged record costs one
// fetch and no write.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	pending := make([]*Record, len(s.pool))
	copy(pending, s.pool)
	s.mu.Unlock()

	for _, record := range pending {
		if err := s.verify(ctx, record); err != nil {
			return err
		}
	}

	var errs Errors
	for _, record := range pending {
		if err := s.syncRecord(ctx, record); err != nil {
			errs = errs.Add(err)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// verify checks every field of the record against the live columns of its
// table.
func (s *Session) verify(ctx context.Context, record *Record) error {
	cols, err := s.ColumnTypes(ctx, record.table)
	if err != nil {
		return err
	}

	for _, name := range record.names {
		kind, ok := cols.Kind(name)
		if !ok {
			return fmt.Errorf("%w: table %v has no column %v", ErrSchemaMismatch, record.table, name)
		}
		if held := record.values[name].Kind(); held != kind {
			return fmt.Errorf("%w: column %v.%v maps to %v, record field holds %v",
				ErrSchemaMismatch, record.table, name, kind, held)
		}
	}
	return nil
}

func (s *Session) syncRecord(ctx context.Context, record *Record) error {
	if record.fresh {
		return s.insert(ctx, record)
	}
	return s.update(ctx, record)
}

// insert writes a fresh record. The generated identity is not read back;
// the record keeps identity zero and stays fresh, callers re-query to obtain
// the stored row.
func (s *Session) insert(ctx context.Context, record *Record) error {
	query, err := buildInsert(record)
	if err != nil {
		return err
	}
	return s.exec(ctx, query)
}

// update re-fetches the record's database row by identity, diffs it against
// the in-memory state and updates the differing columns. An unchanged record
// executes no statement.
func (s *Session) update(ctx context.Context, record *Record) error {
	stored, err := s.fetchByIdentity(ctx, record.table, record.id)
	if err != nil {
		return err
	}

	diff, err := Diff(stored, record)
	if err != nil {
		return err
	}
	if diff.Len() == 0 {
		return nil
	}
	diff.id = record.id

	query, err := buildUpdate(diff)
	if err != nil {
		return err
	}
	return s.exec(ctx, query)
}

// fetchByIdentity loads the single row the identity addresses. The row is
// fetched outside the pending pool; it exists only to be diffed against.
func (s *Session) fetchByIdentity(ctx context.Context, table string, id int64) (*Record, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := buildSelect(table, fmt.Sprintf("%v = %v", IdentityColumn, id))
	begin := time.Now()
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		s.logger.Trace(ctx, begin, func() (string, int64) { return query, -1 }, err)
		return nil, fmt.Errorf("fetch %v %v from %v: %w", IdentityColumn, id, table, err)
	}
	defer rows.Close()

	cols, err := s.columns(rows)
	if err != nil {
		s.logger.Trace(ctx, begin, func() (string, int64) { return query, -1 }, err)
		return nil, err
	}

	records, err := scanRecords(rows, table, cols)
	s.logger.Trace(ctx, begin, func() (string, int64) { return query, int64(len(records)) }, err)
	if err != nil {
		return nil, err
	}

	switch len(records) {
	case 0:
		return nil, fmt.Errorf("%w: %v %v in %v", ErrRecordNotFound, IdentityColumn, id, table)
	case 1:
		return records[0], nil
	default:
		return nil, fmt.Errorf("%w: %v rows in %v share %v %v",
			ErrDuplicateIdentity, len(records), table, IdentityColumn, id)
	}
}

// exec runs one write statement and traces it with rows affected.
func (s *Session) exec(ctx context.Context, query string) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}

	begin := time.Now()
	result, err := conn.ExecContext(ctx, query)
	rowsAffected := int64(-1)
	if err == nil {
		if n, affErr := result.RowsAffected(); affErr == nil {
			rowsAffected = n
		}
	}
	s.logger.Trace(ctx, begin, func() (string, int64) { return query, rowsAffected }, err)
	if err != nil {
		return fmt.Errorf("exec %v: %w", query, err)
	}
	return nil
}
