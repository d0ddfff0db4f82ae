package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Order    OrderConfig
	Auth     AuthConfig
	Cart     CartConfig
	Review   ReviewConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrateOnStart  bool
}

type LogConfig struct {
	Level  string
	Format string
}

type OrderConfig struct {
	ReservationTxTimeout time.Duration
	MaxRetryAttempts     int
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type CartConfig struct {
	AbandonAfter        time.Duration
	Expiry              time.Duration
	MaxRecoveryAttempts int
}

type ReviewConfig struct {
	RateLimit  int
	RateWindow time.Duration
}

// envBindings keeps the short environment names used by deployments.
var envBindings = map[string]string{
	"server.port":                  "SERVER_PORT",
	"database.driver":              "DB_DRIVER",
	"database.dsn":                 "DB_DSN",
	"database.host":                "DB_HOST",
	"database.port":                "DB_PORT",
	"database.user":                "DB_USER",
	"database.password":            "DB_PASSWORD",
	"database.name":                "DB_NAME",
	"database.max_open_conns":      "DB_MAX_OPEN_CONNS",
	"database.max_idle_conns":      "DB_MAX_IDLE_CONNS",
	"database.conn_max_lifetime":   "DB_CONN_MAX_LIFETIME",
	"database.migrate_on_start":    "DB_MIGRATE_ON_START",
	"log.level":                    "LOG_LEVEL",
	"auth.jwt_secret":              "AUTH_JWT_SECRET",
	"order.max_retry_attempts":     "ORDER_MAX_RETRY_ATTEMPTS",
	"order.reservation_tx_timeout": "ORDER_RESERVATION_TX_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "storefront")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.name", "storefront")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.migrate_on_start", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("order.reservation_tx_timeout", "5s")
	v.SetDefault("order.max_retry_attempts", 3)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("cart.abandon_after", "1h")
	v.SetDefault("cart.expiry", "720h")
	v.SetDefault("cart.max_recovery_attempts", 3)

	v.SetDefault("review.rate_limit", 5)
	v.SetDefault("review.rate_window", "10m")
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A .env file in the working
// directory is loaded into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			DSN:             v.GetString("database.dsn"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			MigrateOnStart:  v.GetBool("database.migrate_on_start"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Order: OrderConfig{
			ReservationTxTimeout: v.GetDuration("order.reservation_tx_timeout"),
			MaxRetryAttempts:     v.GetInt("order.max_retry_attempts"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
		},
		Cart: CartConfig{
			AbandonAfter:        v.GetDuration("cart.abandon_after"),
			Expiry:              v.GetDuration("cart.expiry"),
			MaxRecoveryAttempts: v.GetInt("cart.max_recovery_attempts"),
		},
		Review: ReviewConfig{
			RateLimit:  v.GetInt("review.rate_limit"),
			RateWindow: v.GetDuration("review.rate_window"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "pgx", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Order.MaxRetryAttempts < 1 {
		return fmt.Errorf("order.max_retry_attempts must be at least 1")
	}
	if c.Order.ReservationTxTimeout <= 0 {
		return fmt.Errorf("order.reservation_tx_timeout must be positive")
	}
	return nil
}
