package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawnfin/console/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository reads and writes keyed JSON documents.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a settings repository. db may be a
// transaction.
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Transaction runs fn against a settings repository bound to one transaction.
func (r *GormSettingsRepository) Transaction(ctx context.Context, fn func(tx *GormSettingsRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormSettingsRepository(tx))
	})
}

// Get returns the value stored under key. ok is false when the key was never written.
func (r *GormSettingsRepository) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	var m models.SettingModel
	err = r.db.WithContext(ctx).Where("key = ?", key).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load setting %s: %w", key, err)
	}
	return m.Value, true, nil
}

// Put stores value under key, replacing any previous value.
func (r *GormSettingsRepository) Put(ctx context.Context, key, value string) error {
	m := models.SettingModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("store setting %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Removing a missing key is not an error.
func (r *GormSettingsRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Delete(&models.SettingModel{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}
