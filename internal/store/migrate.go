package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

//go:embed schema/seed.sql
var sqliteSeed string

// Migrate creates the SQLite schema if it does not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	if driver != DriverSQLite {
		return fmt.Errorf("%w: %s", ErrMigrateUnsupported, driver)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Seed loads the development data set. Existing rows are left alone.
func Seed(ctx context.Context, db *sql.DB, driver string) error {
	if driver != DriverSQLite {
		return fmt.Errorf("%w: %s", ErrMigrateUnsupported, driver)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqliteSeed); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("seeding: %w", err)
	}
	return tx.Commit()
}
