package models

import "time"

// SettingModel is one keyed configuration value. Values are JSON documents
// whose shape is owned by the repository that reads them.
type SettingModel struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "console_settings"
}
