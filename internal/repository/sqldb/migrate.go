package sqldb

import (
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"medchron/db"
)

// NewMigrator returns a migrate instance over the embedded migrations for an
// open connection.
func NewMigrator(conn *sqlx.DB, driver string) (*migrate.Migrate, error) {
	src, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("opening embedded migrations: %w", err)
	}

	var target database.Driver
	switch driver {
	case "postgres":
		target, err = postgres.WithInstance(conn.DB, &postgres.Config{})
	case "sqlite":
		target, err = sqlite.WithInstance(conn.DB, &sqlite.Config{})
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("preparing %s migration driver: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending schema migrations embedded in the binary.
func Migrate(conn *sqlx.DB, driver string) error {
	m, err := NewMigrator(conn, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	log.Printf("sqldb.Migrate: %s schema up to date", driver)
	return nil
}
