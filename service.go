package helloapi

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxMessageBytes bounds the stored failure message.
const MaxMessageBytes = 4096

type IncidentService struct {
	repo IncidentRepo
	env  Environment
	now  func() time.Time
}

func NewIncidentService(repo IncidentRepo, env Environment) *IncidentService {
	return &IncidentService{
		repo: repo,
		env:  env,
		now:  time.Now,
	}
}

// Record stores an unhandled request failure.
//
// ID, OccurredAt and Environment are assigned by the service; values set on
// the argument are ignored. OccurredAt has microsecond precision, the finest
// both backends store. The message is truncated to MaxMessageBytes.
//
// Returns ErrInvalidInput when Path is empty.
func (s *IncidentService) Record(ctx context.Context, incident Incident) (Incident, error) {
	if err := ctx.Err(); err != nil {
		return Incident{}, fmt.Errorf("record incident: %w", err)
	}

	if incident.Path == "" {
		return Incident{}, fmt.Errorf("record incident: empty path: %w", ErrInvalidInput)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Incident{}, fmt.Errorf("record incident: generate id: %w", err)
	}

	incident.ID = id
	incident.OccurredAt = s.now().UTC().Truncate(time.Microsecond)
	incident.Environment = s.env
	incident.Message = TruncateUTF8(incident.Message, MaxMessageBytes)

	if err := s.repo.Insert(ctx, incident); err != nil {
		return Incident{}, fmt.Errorf("record incident: %w", err)
	}

	return incident, nil
}

func (s *IncidentService) Get(ctx context.Context, id uuid.UUID) (Incident, error) {
	if id == uuid.Nil {
		return Incident{}, fmt.Errorf("get incident: nil id: %w", ErrInvalidInput)
	}

	incident, err := s.repo.Get(ctx, id)
	if err != nil {
		return Incident{}, fmt.Errorf("get incident %s: %w", id, err)
	}

	return incident, nil
}

// List returns a page of incidents, newest first. The limit is clamped to
// [1, 1000] and defaults to 100.
func (s *IncidentService) List(ctx context.Context, q ListQuery) (ListResult, error) {
	if _, err := DecodeCursor(q.Cursor); err != nil {
		return ListResult{}, fmt.Errorf("list incidents: %w: %w", ErrInvalidInput, err)
	}

	q.Limit = ClampLimit(q.Limit)

	result, err := s.repo.List(ctx, q)
	if err != nil {
		return ListResult{}, fmt.Errorf("list incidents: %w", err)
	}

	return result, nil
}
