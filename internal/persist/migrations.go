package persist

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// RunMigrations applies all pending migrations against the server store.
// The bootstrap script is idempotent (CREATE TABLE IF NOT EXISTS
// throughout), so re-running it on an already-initialized store is a
// no-op.
func RunMigrations(conn *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// RunMigrations runs against the connection owned by db. Exposed as a
// method so callers that only hold a *DB (not the raw *sql.DB) can
// bootstrap the schema without reaching into persist internals.
func (db *DB) RunMigrations() error {
	return RunMigrations(db.conn)
}
