package models

import "time"

// Action is the kind of state-changing operation a history entry records.
type Action string

const (
	ActionInstall   Action = "install"
	ActionUninstall Action = "uninstall"
	ActionUpdate    Action = "update"
	ActionFailed    Action = "failed"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionInstall, ActionUninstall, ActionUpdate, ActionFailed:
		return true
	}
	return false
}

// InstallationHistory is an append-only audit record. Rows are never updated;
// they disappear only when the owning plugin is removed.
type InstallationHistory struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PluginID     string    `gorm:"size:200;index;not null" json:"plugin_id"`
	OperationID  string    `gorm:"size:36;index" json:"operation_id"` // shared by entries written in one operation
	Action       Action    `gorm:"size:20;not null" json:"action"`
	Version      *string   `gorm:"size:100" json:"version,omitempty"`
	Timestamp    time.Time `gorm:"index" json:"timestamp"`
	Success      bool      `json:"success"`
	ErrorMessage *string   `gorm:"size:2000" json:"error_message,omitempty"`
}

// TableName specifies the table name for GORM.
func (InstallationHistory) TableName() string {
	return "installation_history"
}
