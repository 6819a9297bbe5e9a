package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/idapm/internal/db"
)

// NewTestDB opens a catalog database in a temporary directory and closes it
// when the test ends.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.New(db.DefaultConfig(filepath.Join(t.TempDir(), "idapm.db")))
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	})
	return database
}
