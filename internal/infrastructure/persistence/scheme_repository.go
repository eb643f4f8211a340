package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pawnfin/console/internal/domain/scheme"
	"github.com/pawnfin/console/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSchemeRepository implements scheme.Repository. The whole collection is
// one JSON array stored under scheme.StorageKey in the settings table, in
// display order.
type GormSchemeRepository struct {
	settings *GormSettingsRepository
}

// NewGormSchemeRepository creates a scheme repository
func NewGormSchemeRepository(db *gorm.DB) *GormSchemeRepository {
	return &GormSchemeRepository{settings: NewGormSettingsRepository(db)}
}

var _ scheme.Repository = (*GormSchemeRepository)(nil)

// List returns every scheme. A missing or unreadable collection is empty.
func (r *GormSchemeRepository) List(ctx context.Context) ([]scheme.Scheme, error) {
	records, err := loadSchemes(ctx, r.settings)
	if err != nil {
		return nil, err
	}
	out := make([]scheme.Scheme, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ToDomain())
	}
	return out, nil
}

// Get returns the scheme with id
func (r *GormSchemeRepository) Get(ctx context.Context, id string) (*scheme.Scheme, error) {
	records, err := loadSchemes(ctx, r.settings)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			s := rec.ToDomain()
			return &s, nil
		}
	}
	return nil, scheme.ErrNotFound
}

// Save replaces the scheme with the same id in place or appends s.
func (r *GormSchemeRepository) Save(ctx context.Context, s *scheme.Scheme) error {
	return r.settings.Transaction(ctx, func(tx *GormSettingsRepository) error {
		records, err := loadSchemes(ctx, tx)
		if err != nil {
			return err
		}
		rec := models.SchemeRecordFromDomain(*s)
		replaced := false
		for i := range records {
			if records[i].ID == s.ID {
				records[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			records = append(records, rec)
		}
		return storeSchemes(ctx, tx, records)
	})
}

// Delete removes the scheme with id
func (r *GormSchemeRepository) Delete(ctx context.Context, id string) error {
	return r.settings.Transaction(ctx, func(tx *GormSettingsRepository) error {
		records, err := loadSchemes(ctx, tx)
		if err != nil {
			return err
		}
		kept := records[:0]
		for _, rec := range records {
			if rec.ID != id {
				kept = append(kept, rec)
			}
		}
		if len(kept) == len(records) {
			return scheme.ErrNotFound
		}
		return storeSchemes(ctx, tx, kept)
	})
}

func loadSchemes(ctx context.Context, settings *GormSettingsRepository) ([]models.SchemeRecord, error) {
	raw, ok, err := settings.Get(ctx, scheme.StorageKey)
	if err != nil || !ok {
		return nil, err
	}
	var records []models.SchemeRecord
	if json.Unmarshal([]byte(raw), &records) != nil {
		return nil, nil
	}
	return records, nil
}

func storeSchemes(ctx context.Context, settings *GormSettingsRepository, records []models.SchemeRecord) error {
	if records == nil {
		records = []models.SchemeRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode schemes: %w", err)
	}
	return settings.Put(ctx, scheme.StorageKey, string(b))
}
