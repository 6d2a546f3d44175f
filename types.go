package helloapi

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Environment selects which request pipeline the service builds.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

func (e Environment) IsValid() bool {
	switch e {
	case Development, Production:
		return true
	default:
		return false
	}
}

func (e Environment) IsDevelopment() bool {
	return e == Development
}

func (e Environment) String() string {
	return string(e)
}

// ParseEnvironment maps a configured value to an Environment.
// Only "development" (case-insensitive, surrounding space ignored) selects
// Development; every other value, including the empty string, is Production.
func ParseEnvironment(s string) Environment {
	if strings.EqualFold(strings.TrimSpace(s), string(Development)) {
		return Development
	}
	return Production
}

type Incident struct {
	ID          uuid.UUID   `json:"id"`
	RequestID   string      `json:"request_id"`
	Method      string      `json:"method"`
	Path        string      `json:"path"`
	Message     string      `json:"message"`
	Environment Environment `json:"environment"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

type ListQuery struct {
	Limit  int
	Cursor string
}

type ListResult struct {
	Items      []Incident `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// Tables holds configurable table names for incident storage.
type Tables struct {
	Incidents string `mapstructure:"incidents"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Incidents == "" {
		return errors.New("validate tables: incidents table name cannot be empty")
	}

	if !IsValidTableName(t.Incidents) {
		return fmt.Errorf("validate tables: invalid incidents table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Incidents)
	}

	return nil
}
