package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/helloapi"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables helloapi.Tables
}

// Connect opens a SQLite database. Tables should be validated before calling
// Connect.
//
// The pool is limited to one connection: every connection to ":memory:" is a
// separate database, and SQLite serializes writers anyway.
func Connect(_ context.Context, dsn string, tables helloapi.Tables) (*database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate creates the incident table and its index if they do not exist.
func (d *database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetRepo returns the IncidentRepo backed by this database.
func (d *database) GetRepo() helloapi.IncidentRepo {
	return &repo{db: d.db, tableName: d.tables.Incidents}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
