package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/idapm/internal/models"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) *DB {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := New(Config{
		Path:        dbPath,
		Debug:       false,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	})
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	})

	return db
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "idapm.db")

	db, err := New(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
	}()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}

	if db.Path() != dbPath {
		t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "dirs", "idapm.db")

	db, err := New(DefaultConfig(dbPath))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)
}

func TestNew_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "idapm.db")

	first, err := New(DefaultConfig(dbPath))
	require.NoError(t, err)
	require.NoError(t, first.Save(&models.Plugin{ID: "acme/widget", Name: "widget", RepositoryURL: "https://github.com/acme/widget"}))
	require.NoError(t, first.Close())

	second, err := New(DefaultConfig(dbPath))
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	p, err := second.FindByID("acme/widget")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "widget", p.Name)
}

func TestDB_SeedsSettings(t *testing.T) {
	db := testDB(t)

	v, err := db.GetSetting(models.SettingSchemaVersion)
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestDB_Transaction_Rollback(t *testing.T) {
	db := testDB(t)

	err := db.Transaction(func(tx *DB) error {
		if err := tx.Save(&models.Plugin{ID: "acme/widget", Name: "widget", RepositoryURL: "u"}); err != nil {
			return err
		}
		return os.ErrInvalid
	})
	require.ErrorIs(t, err, os.ErrInvalid)

	p, err := db.FindByID("acme/widget")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDB_GetStats(t *testing.T) {
	db := testDB(t)

	installed := newPlugin("acme/widget")
	installed.MarkInstalled("abc12345", "/p/widget", models.MethodClone)
	failed := newPlugin("acme/gadget")
	failed.MarkFailed("boom")

	require.NoError(t, db.Save(installed))
	require.NoError(t, db.Save(failed))
	require.NoError(t, db.Save(newPlugin("acme/other")))
	require.NoError(t, db.AppendHistory(&models.InstallationHistory{PluginID: "acme/widget", Action: models.ActionInstall, Success: true}))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Installed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.HistoryEntries)
	assert.Positive(t, stats.SizeBytes)
}
