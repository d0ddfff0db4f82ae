package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"storefront/internal/config"
)

// Open connects to the configured database and verifies the connection.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	return open(cfg, false)
}

// OpenForMigrations is Open with multi-statement execution enabled where the
// driver needs it.
func OpenForMigrations(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	return open(cfg, true)
}

func open(cfg config.DatabaseConfig, multiStatements bool) (*sqlx.DB, error) {
	dsn, err := buildDSN(cfg, multiStatements)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// single writer; also keeps an in-memory database alive
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// DSN builds the driver specific data source name. An explicit DSN in the
// configuration wins, but driver options the repositories rely on are still
// enforced.
func DSN(cfg config.DatabaseConfig) (string, error) {
	return buildDSN(cfg, false)
}

func buildDSN(cfg config.DatabaseConfig, multiStatements bool) (string, error) {
	switch cfg.Driver {
	case DriverMySQL:
		return mysqlDSN(cfg, multiStatements)
	case DriverPGX, DriverPostgres:
		if cfg.DSN != "" {
			return cfg.DSN, nil
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Name
		}
		if dsn == "" {
			dsn = ":memory:"
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func mysqlDSN(cfg config.DatabaseConfig, multiStatements bool) (string, error) {
	mcfg := mysql.NewConfig()
	if cfg.DSN != "" {
		parsed, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return "", fmt.Errorf("parsing mysql dsn: %w", err)
		}
		mcfg = parsed
	} else {
		mcfg.User = cfg.User
		mcfg.Passwd = cfg.Password
		mcfg.Net = "tcp"
		mcfg.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mcfg.DBName = cfg.Name
	}
	mcfg.ParseTime = true
	mcfg.Loc = time.UTC
	// conditional updates count matched rows, not changed ones
	mcfg.ClientFoundRows = true
	mcfg.MultiStatements = multiStatements
	return mcfg.FormatDSN(), nil
}
