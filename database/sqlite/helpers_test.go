package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/helloapi"
	"github.com/sagarc03/helloapi/database/sqlite"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a repo with a unique table name for test isolation
func setupTestRepo(t *testing.T) helloapi.IncidentRepo {
	t.Helper()

	ctx := context.Background()

	tableName := fmt.Sprintf("incidents_%s", getRandomString(t))
	tables := helloapi.Tables{Incidents: tableName}

	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	err = db.Migrate(ctx)
	require.NoError(t, err, "failed to migrate")

	return db.GetRepo()
}

func newIncident(t *testing.T, path string, at time.Time) helloapi.Incident {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err)

	return helloapi.Incident{
		ID:          id,
		RequestID:   "req-" + path,
		Method:      "GET",
		Path:        path,
		Message:     "failure at " + path,
		Environment: helloapi.Production,
		OccurredAt:  at.UTC(),
	}
}
