package sqldb

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"medchron/internal/config"
)

// driverNames maps the configured driver to its database/sql name.
var driverNames = map[string]string{
	"postgres": "pgx",
	"sqlite":   "sqlite",
}

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewDB opens the run-history database for the configured driver.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	name, ok := driverNames[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	db, err := sqlx.Connect(name, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		return db, nil
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	return db, nil
}
