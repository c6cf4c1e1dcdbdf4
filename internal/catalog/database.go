package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// Config holds the catalog database connection parameters. The agent only
// ever reads from this database; statements are funneled through the
// read-only guard before they reach a connection.
type Config struct {
	Host         string        `mapstructure:"host" yaml:"host"`
	Port         int           `mapstructure:"port" yaml:"port"`
	User         string        `mapstructure:"user" yaml:"user"`
	Password     string        `mapstructure:"password" yaml:"password"`
	Database     string        `mapstructure:"database" yaml:"database"`
	SSLMode      string        `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	MaxConns     int32         `mapstructure:"max_conns" yaml:"max_conns"`
	QueryTimeout time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
}

// DefaultConfig returns the local development defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         5432,
		User:         "postgres",
		Password:     "postgres",
		Database:     "streaming",
		SSLMode:      "disable",
		MaxConns:     4,
		QueryTimeout: 15 * time.Second,
	}
}

// Validate checks the connection parameters.
func (c *Config) Validate() error {
	if c.Host == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "database host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("database port must be in (0,65535], got %d", c.Port))
	}
	if c.Database == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "database name cannot be empty")
	}
	if c.QueryTimeout < 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "query_timeout must be non-negative")
	}
	return nil
}

// DSN constructs a key=value connection string for pgx.
func (c *Config) DSN() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}

	port := c.Port
	if port == 0 {
		port = 5432
	}

	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, c.Database, sslmode)
	if c.User != "" {
		dsn += fmt.Sprintf(" user=%s", c.User)
	}
	if c.Password != "" {
		dsn += fmt.Sprintf(" password=%s", c.Password)
	}

	return dsn
}

// Open establishes a connection pool against the catalog database and
// verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, types.WrapError(types.SQL_CONNECTION_FAILED, "invalid database configuration", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, types.WrapError(types.SQL_CONNECTION_FAILED, "failed to create connection pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, types.WrapError(types.SQL_CONNECTION_FAILED, "failed to ping database", err)
	}

	return pool, nil
}
