package database

import "database/sql"

const (
	DriverMySQL    = "mysql"
	DriverPGX      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Dialect groups driver names by SQL dialect.
func Dialect(driverName string) string {
	switch driverName {
	case DriverPGX, DriverPostgres:
		return "postgres"
	case DriverSQLite:
		return "sqlite"
	default:
		return "mysql"
	}
}

// ForUpdate returns the row locking suffix for SELECT statements. SQLite
// serializes writers on the database file and has no row locks.
func ForUpdate(driverName string) string {
	if Dialect(driverName) == "sqlite" {
		return ""
	}
	return " FOR UPDATE"
}

// TxOptions returns the isolation used by read-modify-write transactions.
func TxOptions(driverName string) *sql.TxOptions {
	switch Dialect(driverName) {
	case "mysql":
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	case "postgres":
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	default:
		return nil
	}
}
