// Package postgres implements helloapi.IncidentRepo using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/helloapi"
)

type repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func (r *repo) table() string {
	return pgx.Identifier{r.tableName}.Sanitize()
}

func (r *repo) Insert(ctx context.Context, incident helloapi.Incident) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, request_id, method, path, message, environment, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.table())

	_, err := r.pool.Exec(ctx, query,
		incident.ID,
		incident.RequestID,
		incident.Method,
		incident.Path,
		incident.Message,
		string(incident.Environment),
		incident.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	return nil
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (helloapi.Incident, error) {
	query := fmt.Sprintf(`
		SELECT id, request_id, method, path, message, environment, occurred_at
		FROM %s
		WHERE id = $1
	`, r.table())

	incident, err := scanIncident(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
			LIMIT $1
		`, r.table())
		args = []any{limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT id, request_id, method, path, message, environment, occurred_at
			FROM %s
			WHERE (occurred_at, id) < ($1, $2)
			ORDER BY occurred_at DESC, id DESC
			LIMIT $3
		`, r.table())
		args = []any{cursor.OccurredAt, cursor.ID, limit + 1}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return helloapi.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]helloapi.Incident, 0, limit)
	for rows.Next() {
		incident, scanErr := scanIncident(rows)
		if scanErr != nil {
			return helloapi.ListResult{}, fmt.Errorf("list: scan: %w", scanErr)
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

func scanIncident(row pgx.Row) (helloapi.Incident, error) {
	var incident helloapi.Incident
	var env string

	err := row.Scan(&incident.ID, &incident.RequestID, &incident.Method, &incident.Path,
		&incident.Message, &env, &incident.OccurredAt)
	if err != nil {
		return helloapi.Incident{}, err
	}

	incident.Environment = helloapi.Environment(env)
	incident.OccurredAt = incident.OccurredAt.UTC()
	return incident, nil
}
