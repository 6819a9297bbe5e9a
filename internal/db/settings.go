package db

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asteroid-belt/idapm/internal/models"
)

// GetSetting retrieves a setting value. A missing key yields "".
func (db *DB) GetSetting(key string) (string, error) {
	var s models.Setting
	err := db.First(&s, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return s.Value, nil
}

// SetSetting sets a setting value.
func (db *DB) SetSetting(key, value string) error {
	s := models.Setting{Key: key, Value: value}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}
