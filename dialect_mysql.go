package dynrec

import (
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

type mysqlDialect struct{}

func init() {
	RegisterDialect("mysql", &mysqlDialect{})
}

func (mysqlDialect) Name() string {
	return "mysql"
}

func (mysqlDialect) DriverName() string {
	return "mysql"
}

func (mysqlDialect) DSN(c ConnConfig) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.Database
	cfg.User = c.Username
	cfg.Passwd = c.Password
	return cfg.FormatDSN()
}

// The kind mapping is deliberately closed: these four column types are the
// only ones records move values through.
var mysqlColumnKinds = map[string]Kind{
	"VARCHAR": Text,
	"INT":     Int32,
	"BIGINT":  Int64,
	"DOUBLE":  Float64,
}

func (mysqlDialect) KindOf(databaseTypeName string) (Kind, bool) {
	kind, ok := mysqlColumnKinds[strings.ToUpper(databaseTypeName)]
	return kind, ok
}
