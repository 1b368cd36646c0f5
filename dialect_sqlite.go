package dynrec

import (
	"strings"

	_ "modernc.org/sqlite"
)

type sqliteDialect struct{}

func init() {
	RegisterDialect("sqlite", &sqliteDialect{})
}

func (sqliteDialect) Name() string {
	return "sqlite"
}

func (sqliteDialect) DriverName() string {
	return "sqlite"
}

// DSN for SQLite is the database path or URI itself; host and credentials do
// not apply.
func (sqliteDialect) DSN(c ConnConfig) string {
	return c.Database
}

var sqliteColumnKinds = map[string]Kind{
	"VARCHAR": Text,
	"INT":     Int32,
	"BIGINT":  Int64,
	"DOUBLE":  Float64,
}

// SQLite reports the declared column type, size suffix included, e.g.
// VARCHAR(20). KindOf normalizes the declaration before the lookup, so
// tables declared with VARCHAR/INT/BIGINT/DOUBLE round-trip. Native affinity
// names such as TEXT or INTEGER are not mapped.
func (sqliteDialect) KindOf(databaseTypeName string) (Kind, bool) {
	decl := strings.ToUpper(strings.TrimSpace(databaseTypeName))
	if idx := strings.IndexByte(decl, '('); idx >= 0 {
		decl = strings.TrimSpace(decl[:idx])
	}
	kind, ok := sqliteColumnKinds[decl]
	return kind, ok
}
