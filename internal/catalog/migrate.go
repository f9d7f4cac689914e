package catalog

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate runs all pending database migrations.
func (c *Catalog) Migrate() error {
	if c.db == nil {
		return errNotOpen
	}
	return MigrateWithDB(c.db)
}

// MigrateWithDB runs migrations on an existing connection.
func MigrateWithDB(db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Version returns the current migration version.
func (c *Catalog) Version() (int64, error) {
	if c.db == nil {
		return 0, errNotOpen
	}
	if err := configureGoose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(c.db)
}

func configureGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}
