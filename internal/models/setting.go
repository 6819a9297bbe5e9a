package models

import "time"

// Setting is a key-value pair persisted alongside the catalog.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Setting) TableName() string {
	return "settings"
}

// Common setting keys.
const (
	SettingSchemaVersion   = "schema_version"
	SettingLastUpdateCheck = "last_update_check"
)

// CatalogStats summarizes the catalog contents.
type CatalogStats struct {
	Total          int64 `json:"total"`
	Installed      int64 `json:"installed"`
	Failed         int64 `json:"failed"`
	HistoryEntries int64 `json:"history_entries"`
	SizeBytes      int64 `json:"size_bytes"`
}
