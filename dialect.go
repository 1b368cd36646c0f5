package dynrec

import "fmt"

// Dialect bridges one database vendor: how to assemble its connection
// string, which database/sql driver serves it, and how its reported column
// type names map onto the four field kinds.
type Dialect interface {
	// Name is the registry key, e.g. "mysql".
	Name() string
	// DriverName is the database/sql driver to open connections with.
	DriverName() string
	// DSN assembles the vendor connection string.
	DSN(c ConnConfig) string
	// KindOf maps a column's DatabaseTypeName onto a field kind. The second
	// result is false for any type name the dialect does not support.
	KindOf(databaseTypeName string) (Kind, bool)
}

var dialectsMap = map[string]Dialect{}

// RegisterDialect register new dialect
func RegisterDialect(name string, dialect Dialect) {
	dialectsMap[name] = dialect
}

// GetDialect gets the dialect for the specified dialect name
func GetDialect(name string) (dialect Dialect, ok bool) {
	dialect, ok = dialectsMap[name]
	return
}

// ConnConfig is the vendor-independent connection configuration a DSN is
// assembled from.
type ConnConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// BuildDSN assembles the connection string for a registered dialect.
func BuildDSN(dialectName string, c ConnConfig) (string, error) {
	dialect, ok := GetDialect(dialectName)
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedDialect, dialectName)
	}
	return dialect.DSN(c), nil
}
