// Package db provides a GORM-based catalog store for idapm.
// It uses the pure-Go SQLite driver with FTS5 support.
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/asteroid-belt/idapm/internal/models"
)

// DB wraps the GORM database connection with catalog operations.
type DB struct {
	*gorm.DB
	path string
}

// Config holds database configuration options.
type Config struct {
	Path        string
	Debug       bool
	MaxIdleConn int
	MaxOpenConn int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		Debug:       false,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	}
}

// New creates a new database connection and runs migrations.
func New(cfg Config) (*DB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	// DELETE journal mode: WAL has visibility issues with the pure-Go driver.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", cfg.Path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxIdleConn <= 0 {
		cfg.MaxIdleConn = 1
	}
	if cfg.MaxOpenConn <= 0 {
		cfg.MaxOpenConn = 1
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	wrapped := &DB{DB: db, path: cfg.Path}

	if err := wrapped.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := wrapped.setupFTS(); err != nil {
		return nil, fmt.Errorf("setup FTS: %w", err)
	}

	if err := wrapped.seedSettings(); err != nil {
		return nil, fmt.Errorf("seed settings: %w", err)
	}

	return wrapped, nil
}

// migrate runs GORM auto-migrations for all models.
func (db *DB) migrate() error {
	return db.AutoMigrate(
		&models.Plugin{},
		&models.InstallationHistory{},
		&models.Setting{},
	)
}

// setupFTS creates the FTS5 virtual table and triggers for plugin search.
func (db *DB) setupFTS() error {
	ftsSQL := `
		CREATE VIRTUAL TABLE IF NOT EXISTS plugins_fts USING fts5(
			name,
			description,
			author,
			content='plugins',
			content_rowid='rowid',
			tokenize='porter unicode61'
		);
	`
	if err := db.Exec(ftsSQL).Error; err != nil {
		return fmt.Errorf("create FTS table: %w", err)
	}

	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS plugins_ai AFTER INSERT ON plugins BEGIN
			INSERT INTO plugins_fts(rowid, name, description, author)
			VALUES (NEW.rowid, NEW.name, NEW.description, NEW.author);
		END;`,

		`CREATE TRIGGER IF NOT EXISTS plugins_ad AFTER DELETE ON plugins BEGIN
			INSERT INTO plugins_fts(plugins_fts, rowid, name, description, author)
			VALUES ('delete', OLD.rowid, OLD.name, OLD.description, OLD.author);
		END;`,

		`CREATE TRIGGER IF NOT EXISTS plugins_au AFTER UPDATE ON plugins BEGIN
			INSERT INTO plugins_fts(plugins_fts, rowid, name, description, author)
			VALUES ('delete', OLD.rowid, OLD.name, OLD.description, OLD.author);
			INSERT INTO plugins_fts(rowid, name, description, author)
			VALUES (NEW.rowid, NEW.name, NEW.description, NEW.author);
		END;`,
	}

	for _, trigger := range triggers {
		if err := db.Exec(trigger).Error; err != nil {
			return fmt.Errorf("create trigger: %w", err)
		}
	}

	return nil
}

// seedSettings inserts default settings if not present.
func (db *DB) seedSettings() error {
	defaults := []models.Setting{
		{Key: models.SettingSchemaVersion, Value: "1"},
		{Key: models.SettingLastUpdateCheck, Value: ""},
	}

	for _, s := range defaults {
		if err := db.Where("key = ?", s.Key).FirstOrCreate(&s).Error; err != nil {
			return err
		}
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction executes fc within a database transaction. A non-nil error
// from fc rolls the transaction back.
func (db *DB) Transaction(fc func(tx *DB) error) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		return fc(&DB{DB: tx, path: db.path})
	})
}

// GetStats returns aggregate statistics about the catalog.
func (db *DB) GetStats() (*models.CatalogStats, error) {
	var stats models.CatalogStats

	if err := db.Model(&models.Plugin{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("count plugins: %w", err)
	}
	if err := db.Model(&models.Plugin{}).Where("status = ?", models.StatusInstalled).Count(&stats.Installed).Error; err != nil {
		return nil, fmt.Errorf("count installed: %w", err)
	}
	if err := db.Model(&models.Plugin{}).Where("status = ?", models.StatusFailed).Count(&stats.Failed).Error; err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}
	if err := db.Model(&models.InstallationHistory{}).Count(&stats.HistoryEntries).Error; err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}

	if info, err := os.Stat(db.path); err == nil {
		stats.SizeBytes = info.Size()
	}

	return &stats, nil
}
