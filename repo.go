package helloapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IncidentRepo defines the interface for incident persistence.
// Implementations must be safe for concurrent use; every request that fails
// may record an incident.
type IncidentRepo interface {
	// Insert stores a fully populated incident (ID and OccurredAt set by the caller).
	Insert(ctx context.Context, incident Incident) error

	// Get retrieves an incident by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id uuid.UUID) (Incident, error)

	// List returns incidents newest first. The cursor in the result is empty
	// when there are no more pages.
	List(ctx context.Context, q ListQuery) (ListResult, error)
}

// Cursor represents pagination cursor data for list operations.
type Cursor struct {
	OccurredAt time.Time
	ID         uuid.UUID
}

// EncodeCursor encodes cursor data to a base64 string for pagination.
func EncodeCursor(occurredAt time.Time, id uuid.UUID) string {
	data := occurredAt.UTC().Format(time.RFC3339Nano) + "|" + id.String()
	return base64.URLEncoding.EncodeToString([]byte(data))
}

// DecodeCursor decodes a pagination cursor string back to cursor data.
// An empty string decodes to the zero Cursor (first page).
func DecodeCursor(cursor string) (Cursor, error) {
	if cursor == "" {
		return Cursor{}, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid encoding: %w", err)
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return Cursor{}, fmt.Errorf("decode cursor: invalid format")
	}

	occurredAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid timestamp: %w", err)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid id: %w", err)
	}

	return Cursor{OccurredAt: occurredAt, ID: id}, nil
}

// IsZero reports whether the cursor points at the first page.
func (c Cursor) IsZero() bool {
	return c.OccurredAt.IsZero() && c.ID == uuid.Nil
}
