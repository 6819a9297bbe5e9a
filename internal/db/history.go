package db

import (
	"fmt"
	"time"

	"github.com/asteroid-belt/idapm/internal/models"
)

// AppendHistory writes an entry. Entries are never rewritten; they go away
// only with their plugin.
func (db *DB) AppendHistory(entry *models.InstallationHistory) error {
	if !entry.Action.Valid() {
		return fmt.Errorf("append history: unknown action %q", entry.Action)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := db.Create(entry).Error; err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// FindHistory returns a plugin's history in the order it was written.
func (db *DB) FindHistory(pluginID string) ([]models.InstallationHistory, error) {
	var entries []models.InstallationHistory
	err := db.Where("plugin_id = ?", pluginID).Order("id ASC").Find(&entries).Error
	return entries, err
}

// RecentHistory returns the latest entries across all plugins, newest first.
func (db *DB) RecentHistory(limit int) ([]models.InstallationHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.InstallationHistory
	err := db.Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
