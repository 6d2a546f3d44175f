// Package sqlite implements helloapi.IncidentRepo using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/helloapi"
)

// timeLayout is RFC 3339 with a fixed nine-digit fraction.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type repo struct {
	db        *sql.DB
	tableName string
}

func (r *repo) Insert(ctx context.Context, incident helloapi.Incident) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, request_id, method, path, message, environment, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, quoteIdentifier(r.tableName))

	_, err := r.db.ExecContext(ctx, query,
		incident.ID.String(),
		incident.RequestID,
		incident.Method,
		incident.Path,
		incident.Message,
		string(incident.Environment),
		formatTime(incident.OccurredAt),
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	return nil
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (helloapi.Incident, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, request_id, method, path, message, environment, occurred_at
		FROM %s
		WHERE id = ?`, quoteIdentifier(r.tableName))

	incident, err := scanIncident(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return helloapi.Incident{}, helloapi.ErrNotFound
		}
		return helloapi.Incident{}, fmt.Errorf("get: %w", err)
	}

	return incident, nil
}

func (r *repo) List(ctx context.Context, q helloapi.ListQuery) (helloapi.ListResult, error) {
	cursor, err := helloapi.DecodeCursor(q.Cursor)
	if err != nil {
		return helloapi.ListResult{}, fmt.Errorf("list: %w", err)
	}
	limit := helloapi.ClampLimit(q.Limit)

	var query string
	var args []any

	if cursor.IsZero() {
		query = fmt.Sprintf(`
			SELECT id, request_id, method, path, message, environment, occurred_at
			FROM %s
			ORDER BY occurred_at DESC, id DESC
			LIMIT ?
		`, quoteIdentifier(r.tableName))
		args = []any{limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT id, request_id, method, path, message, environment, occurred_at
			FROM %s
			WHERE (occurred_at, id) < (?, ?)
			ORDER BY occurred_at DESC, id DESC
			LIMIT ?
		`, quoteIdentifier(r.tableName))
		args = []any{formatTime(cursor.OccurredAt), cursor.ID.String(), limit + 1}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return helloapi.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]helloapi.Incident, 0, limit)
	for rows.Next() {
		incident, scanErr := scanIncident(rows)
		if scanErr != nil {
			return helloapi.ListResult{}, fmt.Errorf("list: %w", scanErr)
		}
		items = append(items, incident)
	}

	if err := rows.Err(); err != nil {
		return helloapi.ListResult{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextCursor string
	if len(items) > limit {
		// Cursor points to the last item of the current page
		last := items[limit-1]
		nextCursor = helloapi.EncodeCursor(last.OccurredAt, last.ID)
		items = items[:limit]
	}

	return helloapi.ListResult{Items: items, NextCursor: nextCursor}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIncident(row scanner) (helloapi.Incident, error) {
	var incident helloapi.Incident
	var idStr, env, occurredAt string

	if err := row.Scan(&idStr, &incident.RequestID, &incident.Method, &incident.Path,
		&incident.Message, &env, &occurredAt); err != nil {
		return helloapi.Incident{}, err
	}

	var err error
	incident.ID, err = uuid.Parse(idStr)
	if err != nil {
		return helloapi.Incident{}, fmt.Errorf("parse uuid: %w", err)
	}

	incident.OccurredAt, err = time.Parse(timeLayout, occurredAt)
	if err != nil {
		return helloapi.Incident{}, fmt.Errorf("parse occurred_at: %w", err)
	}

	incident.Environment = helloapi.Environment(env)
	return incident, nil
}
