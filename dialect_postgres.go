package dynrec

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

type postgresDialect struct{}

func init() {
	RegisterDialect("postgres", &postgresDialect{})
}

func (postgresDialect) Name() string {
	return "postgres"
}

func (postgresDialect) DriverName() string {
	return "postgres"
}

func (postgresDialect) DSN(c ConnConfig) string {
	parts := []string{
		fmt.Sprintf("host=%v", c.Host),
		fmt.Sprintf("port=%v", c.Port),
		fmt.Sprintf("dbname=%v", c.Database),
		fmt.Sprintf("user=%v", c.Username),
	}
	if c.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%v", c.Password))
	}
	return strings.Join(parts, " ")
}

// pq reports internal type names, so the same four kinds spell differently
// than on MySQL.
var postgresColumnKinds = map[string]Kind{
	"VARCHAR": Text,
	"INT4":    Int32,
	"INT8":    Int64,
	"FLOAT8":  Float64,
}

func (postgresDialect) KindOf(databaseTypeName string) (Kind, bool) {
	kind, ok := postgresColumnKinds[strings.ToUpper(databaseTypeName)]
	return kind, ok
}
