// Package dynrec synchronizes dynamically typed in-memory records with rows
// of relational tables, without a struct declared per table. Records carry
// insertion-ordered, kind-tagged fields; a Session stages created and
// queried records in a pending pool, verifies their field kinds against live
// table metadata and writes them back as inserts or minimal updates.
package dynrec

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dynrec/dynrec/logger"
)

// ConnPool db conns pool interface
type ConnPool interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Config configures a Session.
type Config struct {
	// Logger receives messages and statement traces; logger.Default when nil.
	Logger logger.Interface
	// ConnPool, when set, is adopted instead of dialing the DSN. Useful for
	// sharing a *sql.DB or injecting an instrumented pool.
	ConnPool ConnPool
}

// Session owns one database connection and the pending pool of records
// awaiting write-back. Sessions are safe for concurrent use, but records
// themselves are not; callers hand a record to one goroutine at a time.
//
// The pending pool is append-only: Commit does not drain it, only Reconnect
// resets it. Repeated queries and commits therefore grow the pool until the
// caller starts a fresh session or reconnects.
type Session struct {
	mu       sync.Mutex
	dialect  Dialect
	dsn      string
	connPool ConnPool
	closed   bool
	logger   logger.Interface
	pool     []*Record
}

// Open initializes a session for a registered dialect. The DSN is dialed
// lazily through database/sql unless config adopts an existing ConnPool.
// The pending pool starts empty.
func Open(dialectName, dsn string, config *Config) (*Session, error) {
	dialect, ok := GetDialect(dialectName)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDialect, dialectName)
	}

	if config == nil {
		config = &Config{}
	}
	if config.Logger == nil {
		config.Logger = logger.Default
	}

	s := &Session{
		dialect: dialect,
		dsn:     dsn,
		logger:  config.Logger,
	}

	if config.ConnPool != nil {
		s.connPool = config.ConnPool
		return s, nil
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %v connection: %w", dialectName, err)
	}
	s.connPool = db
	return s, nil
}

// Close closes the underlying connection if the session owns one that can be
// closed. Repeated calls are no-ops.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if closer, ok := s.connPool.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Reconnect resets the pending pool and, if the session was closed,
// re-establishes the connection from the stored dialect and DSN. On a live
// session only the pool reset happens. Sessions built around an adopted
// ConnPool have no DSN to redial and cannot be reopened once closed.
func (s *Session) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool = nil
	if !s.closed {
		return nil
	}
	if s.dsn == "" {
		return fmt.Errorf("%w: no DSN to reconnect with", ErrClosed)
	}

	db, err := sql.Open(s.dialect.DriverName(), s.dsn)
	if err != nil {
		return fmt.Errorf("reopen %v connection: %w", s.dialect.Name(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("reopen %v connection: %w", s.dialect.Name(), err)
	}
	s.connPool = db
	s.closed = false
	return nil
}

// conn returns the connection pool of a live session.
func (s *Session) conn() (ConnPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.connPool, nil
}

// NewRecord creates a blank record for the table, stages it in the pending
// pool and returns it. The record is inserted on the next successful Commit.
func (s *Session) NewRecord(table string) (*Record, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: empty table name", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	record := newRecord(table)
	s.pool = append(s.pool, record)
	return record, nil
}

// PoolSize returns the number of records staged in the pending pool.
func (s *Session) PoolSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pool)
}

// Query runs SELECT * FROM table with the where predicate appended verbatim
// (no predicate when empty; escaping is the caller's responsibility) and
// materializes one record per row: field kinds from the result set's column
// metadata, identity from the RecordId column. Every returned record is
// also staged in the pending pool, a row queried twice is staged twice.
func (s *Session) Query(ctx context.Context, table, where string) ([]*Record, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: empty table name", ErrInvalidArgument)
	}

	conn, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := buildSelect(table, where)
	begin := time.Now()
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		s.logger.Trace(ctx, begin, func() (string, int64) { return query, -1 }, err)
		return nil, fmt.Errorf("query %v: %w", table, err)
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

	s.mu.Lock()
	s.pool = append(s.pool, records...)
	s.mu.Unlock()
	return records, nil
}
