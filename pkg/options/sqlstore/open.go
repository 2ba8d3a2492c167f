package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config describes the database backing the options table.
type Config struct {
	Driver      string
	DSN         string
	Debug       bool
	PingTimeout time.Duration
}

type persistenceConfig struct {
	cfg Config
}

func (c persistenceConfig) GetDebug() bool {
	return c.cfg.Debug
}

func (c persistenceConfig) GetDriver() string {
	return c.cfg.Driver
}

func (c persistenceConfig) GetServer() string {
	return c.cfg.DSN
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	if c.cfg.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.cfg.PingTimeout
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return "go-settingspage"
}

// Open connects to the configured database and wraps it in a persistence
// client using the bun dialect matching the driver.
func Open(cfg Config) (*persistence.Client, error) {
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}

	dialect, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(persistenceConfig{cfg: cfg}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	return client, nil
}

func dialectFor(driver string) (schema.Dialect, error) {
	switch driver {
	case DriverSQLite:
		return sqlitedialect.New(), nil
	case DriverPostgres:
		return pgdialect.New(), nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}
