package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/helloapi"
)

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, pool *pgxpool.Pool) error
	Down      func(ctx context.Context, pool *pgxpool.Pool) error
}

func getTableMigrations(tables helloapi.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Incidents,
			Up:        createIncidentTable(tables.Incidents),
			Down:      dropTable(tables.Incidents),
		},
	}
}

func Migrate(ctx context.Context, pool *pgxpool.Pool, tables helloapi.Tables) error {
	for _, migration := range getTableMigrations(tables) {
		if err := migration.Up(ctx, pool); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func DropTables(ctx context.Context, pool *pgxpool.Pool, tables helloapi.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, pool); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func createIncidentTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		quotedTable := pgx.Identifier{tableName}.Sanitize()
		indexRecent := pgx.Identifier{fmt.Sprintf("idx_%s_recent", tableName)}.Sanitize()
		indexRequestID := pgx.Identifier{fmt.Sprintf("idx_%s_request_id", tableName)}.Sanitize()

		sql := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				request_id TEXT NOT NULL,
				method TEXT NOT NULL,
				path TEXT NOT NULL,
				message TEXT NOT NULL,
				environment TEXT NOT NULL,
				occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS %s
			ON %s (occurred_at DESC, id DESC);

			CREATE INDEX IF NOT EXISTS %s
			ON %s (request_id);
		`,
			quotedTable,
			indexRecent, quotedTable,
			indexRequestID, quotedTable,
		)

		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("create incident table: %w", err)
		}
		return nil
	}
}

func dropTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{tableName}.Sanitize())
		_, err := pool.Exec(ctx, sql)
		return err
	}
}
