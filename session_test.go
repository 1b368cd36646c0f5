package dynrec

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynrec/dynrec/logger"
)

// ghsnvDDL mirrors the kind of table the mapper manages: every column is one
// of the four supported declared types. RecordId carries no PRIMARY KEY
// constraint so identity-resolution failures can be staged.
const ghsnvDDL = `CREATE TABLE GHSNV (
	RecordId BIGINT,
	SampleId VARCHAR(50),
	RunId VARCHAR(50),
	Gene VARCHAR(20),
	Mutation_AA VARCHAR(40),
	Percentage DOUBLE,
	Chrom INT,
	Position BIGINT
)`

// recordingPool wraps a ConnPool and keeps every statement that went through
// it, split by reads and writes.
type recordingPool struct {
	ConnPool
	queries []string
	execs   []string
}

func (p *recordingPool) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	p.queries = append(p.queries, query)
	return p.ConnPool.QueryContext(ctx, query, args...)
}

func (p *recordingPool) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	p.execs = append(p.execs, query)
	return p.ConnPool.ExecContext(ctx, query, args...)
}

// openTestSession builds a session over a fresh in-memory SQLite database
// holding the GHSNV fixture table.
func openTestSession(t *testing.T) (*Session, *recordingPool, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// the in-memory database lives inside one connection
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(ghsnvDDL)
	require.NoError(t, err)

	pool := &recordingPool{ConnPool: db}
	session, err := Open("sqlite", "", &Config{ConnPool: pool, Logger: logger.Discard})
	require.NoError(t, err)
	return session, pool, db
}

func seedVariant(t *testing.T, db *sql.DB, id int64, sample string, percentage float64) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO GHSNV (RecordId, SampleId, RunId, Gene, Mutation_AA, Percentage, Chrom, Position) VALUES (?, ?, 'RUN-9', 'EGFR', 'p.L858R', ?, 7, 55249071)",
		id, sample, percentage)
	require.NoError(t, err)
}

func TestColumnTypes(t *testing.T) {
	session, _, _ := openTestSession(t)

	cols, err := session.ColumnTypes(context.Background(), "GHSNV")
	require.NoError(t, err)

	wantNames := []string{"RecordId", "SampleId", "RunId", "Gene", "Mutation_AA", "Percentage", "Chrom", "Position"}
	assert.Equal(t, wantNames, cols.Names())

	wantKinds := map[string]Kind{
		"RecordId":   Int64,
		"SampleId":   Text,
		"Percentage": Float64,
		"Chrom":      Int32,
		"Position":   Int64,
	}
	for name, want := range wantKinds {
		kind, ok := cols.Kind(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, kind, name)
	}

	_, ok := cols.Kind("Nope")
	assert.False(t, ok)
}

func TestColumnTypesUnsupportedColumn(t *testing.T) {
	session, _, db := openTestSession(t)
	_, err := db.Exec("CREATE TABLE Notes (RecordId BIGINT, Body TEXT)")
	require.NoError(t, err)

	_, err = session.ColumnTypes(context.Background(), "Notes")
	assert.ErrorIs(t, err, ErrUnsupportedColumnType)
}

func TestColumnTypesMissingTable(t *testing.T) {
	session, _, _ := openTestSession(t)
	_, err := session.ColumnTypes(context.Background(), "NoSuchTable")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedColumnType)
}

func TestCommitInsertsFreshRecord(t *testing.T) {
	session, pool, _ := openTestSession(t)
	ctx := context.Background()

	record, err := session.NewRecord("GHSNV")
	require.NoError(t, err)
	require.NoError(t, record.SetInt64("RecordId", 1))
	require.NoError(t, record.SetString("SampleId", "O'Brien"))
	require.NoError(t, record.SetInt32("Chrom", 7))
	require.NoError(t, record.SetFloat64("Percentage", 12.21))

	require.NoError(t, session.Commit(ctx))

	require.Len(t, pool.execs, 1, "exactly one INSERT must execute")
	assert.True(t, strings.HasPrefix(pool.execs[0], "INSERT INTO GHSNV "))
	assert.Contains(t, pool.execs[0], "'O''Brien'")

	// the stored row comes back with matching fields and is not fresh
	records, err := session.Query(ctx, "GHSNV", "RecordId = 1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.False(t, got.Fresh())
	assert.Equal(t, int64(1), got.ID())
	sample, err := got.GetString("SampleId")
	require.NoError(t, err)
	assert.Equal(t, "O'Brien", sample)
	chrom, err := got.GetInt32("Chrom")
	require.NoError(t, err)
	assert.Equal(t, int32(7), chrom)
	percentage, err := got.GetFloat64("Percentage")
	require.NoError(t, err)
	assert.Equal(t, 12.21, percentage)
}

func TestCommitUpdatesOnlyChangedColumns(t *testing.T) {
	session, pool, db := openTestSession(t)
	ctx := context.Background()
	seedVariant(t, db, 42, "SMP-7053", 12.21)

	records, err := session.Query(ctx, "GHSNV", "RecordId = 42")
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, records[0].SetFloat64("Percentage", 47.5))
	require.NoError(t, session.Commit(ctx))

	require.Len(t, pool.execs, 1, "exactly one UPDATE must execute")
	assert.Equal(t, "UPDATE GHSNV SET Percentage = 47.5 WHERE RecordId = 42", pool.execs[0])

	var stored float64
	require.NoError(t, db.QueryRow("SELECT Percentage FROM GHSNV WHERE RecordId = 42").Scan(&stored))
	assert.Equal(t, 47.5, stored)
}

func TestCommitUnchangedRecordWritesNothing(t *testing.T) {
	session, pool, db := openTestSession(t)
	ctx := context.Background()
	seedVariant(t, db, 42, "SMP-7053", 12.21)

	_, err := session.Query(ctx, "GHSNV", "RecordId = 42")
	require.NoError(t, err)

	require.NoError(t, session.Commit(ctx))
	assert.Empty(t, pool.execs, "an empty diff must not execute an UPDATE")
}

func TestCommitUnknownFieldAbortsWholePool(t *testing.T) {
	session, pool, _ := openTestSession(t)
	ctx := context.Background()

	valid, err := session.NewRecord("GHSNV")
	require.NoError(t, err)
	require.NoError(t, valid.SetInt64("RecordId", 1))
	require.NoError(t, valid.SetString("SampleId", "SMP-7053"))

	invalid, err := session.NewRecord("GHSNV")
	require.NoError(t, err)
	require.NoError(t, invalid.SetString("NoSuchColumn", "x"))

	err = session.Commit(ctx)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Empty(t, pool.execs, "verification failure must abort before any write")
}

func TestCommitKindDisagreementAbortsWholePool(t *testing.T) {
	session, pool, _ := openTestSession(t)
	ctx := context.Background()

	record, err := session.NewRecord("GHSNV")
	require.NoError(t, err)
	require.NoError(t, record.SetString("Percentage", "12.21"))

	err = session.Commit(ctx)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Empty(t, pool.execs)
}

func TestCommitRecordNotFoundContinuesWithPool(t *testing.T) {
	session, pool, db := openTestSession(t)
	ctx := context.Background()
	seedVariant(t, db, 42, "SMP-7053", 12.21)

	records, err := session.Query(ctx, "GHSNV", "RecordId = 42")
	require.NoError(t, err)
	require.NoError(t, records[0].SetFloat64("Percentage", 47.5))

	fresh, err := session.NewRecord("GHSNV")
	require.NoError(t, err)
	require.NoError(t, fresh.SetInt64("RecordId", 2))
	require.NoError(t, fresh.SetString("SampleId", "SMP-9001"))

	// the queried row vanishes before the write phase
	_, err = db.Exec("DELETE FROM GHSNV WHERE RecordId = 42")
	require.NoError(t, err)

	err = session.Commit(ctx)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// the failure is per record, the fresh record still landed
	require.Len(t, pool.execs, 1)
	assert.True(t, strings.HasPrefix(pool.execs[0], "INSERT INTO GHSNV "))
}

func TestCommitDuplicateIdentity(t *testing.T) {
	session, _, db := openTestSession(t)
	ctx := context.Background()
	seedVariant(t, db, 42, "SMP-7053", 12.21)

	records, err := session.Query(ctx, "GHSNV", "RecordId = 42")
	require.NoError(t, err)
	require.NoError(t, records[0].SetFloat64("Percentage", 47.5))

	seedVariant(t, db, 42, "SMP-7053-copy", 1.0)

	err = session.Commit(ctx)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestPendingPoolGrowth(t *testing.T) {
	session, _, db := openTestSession(t)
	ctx := context.Background()
	seedVariant(t, db, 42, "SMP-7053", 12.21)

	assert.Equal(t, 0, session.PoolSize())

	_, err := session.Query(ctx, "GHSNV", "")
	require.NoError(t, err)
	assert.Equal(t, 1, session.PoolSize())

	// a row queried twice is staged twice
	_, err = session.Query(ctx, "GHSNV", "")
	require.NoError(t, err)
	assert.Equal(t, 2, session.PoolSize())

	// Commit does not drain the pool
	require.NoError(t, session.Commit(ctx))
	assert.Equal(t, 2, session.PoolSize())
}

func TestQueryEmptyPredicateOmitsWhere(t *testing.T) {
	session, pool, db := openTestSession(t)
	seedVariant(t, db, 1, "SMP-7053", 12.21)
	seedVariant(t, db, 2, "SMP-9001", 3.5)

	records, err := session.Query(context.Background(), "GHSNV", "")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "SELECT * FROM GHSNV", pool.queries[0])
}

func TestNewRecordEmptyTable(t *testing.T) {
	session, _, _ := openTestSession(t)
	_, err := session.NewRecord("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = session.Query(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open("oracle", "whatever", nil)
	assert.ErrorIs(t, err, ErrUnsupportedDialect)
}

func TestCloseIsIdempotent(t *testing.T) {
	session, _, _ := openTestSession(t)
	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	_, err := session.NewRecord("GHSNV")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = session.Query(context.Background(), "GHSNV", "")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReconnectResetsPool(t *testing.T) {
	session, _, _ := openTestSession(t)
	ctx := context.Background()

	_, err := session.NewRecord("GHSNV")
	require.NoError(t, err)
	require.Equal(t, 1, session.PoolSize())

	require.NoError(t, session.Reconnect(ctx))
	assert.Equal(t, 0, session.PoolSize())
}

func TestReconnectReopensClosedSession(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "variants.db")

	ddl, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = ddl.Exec(ghsnvDDL)
	require.NoError(t, err)
	require.NoError(t, ddl.Close())

	session, err := Open("sqlite", dsn, &Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, session.Close())

	require.NoError(t, session.Reconnect(ctx))
	t.Cleanup(func() { session.Close() })

	cols, err := session.ColumnTypes(ctx, "GHSNV")
	require.NoError(t, err)
	assert.Equal(t, 8, len(cols))
}

func TestReconnectClosedAdoptedPool(t *testing.T) {
	session, _, _ := openTestSession(t)
	require.NoError(t, session.Close())

	err := session.Reconnect(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
