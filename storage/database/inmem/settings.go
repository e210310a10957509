package inmemdb

import (
	"context"
	"time"

	"github.com/risingacademy/backend/core/settings"
)

type settingsRepository struct {
	db  *DB
	tbl *settingsTable
}

var _ settings.Repository = (*settingsRepository)(nil)

func NewSettingsRepository(db *DB) settings.Repository {
	return &settingsRepository{db: db, tbl: db.settings}
}

func (repo *settingsRepository) GetSettings(_ context.Context) (settings.SiteSettings, error) {
	if err := repo.db.failure(); err != nil {
		return settings.SiteSettings{}, err
	}
	repo.tbl.mutex.RLock()
	defer repo.tbl.mutex.RUnlock()

	if repo.tbl.doc == nil {
		return settings.SiteSettings{}, settings.ErrNotFound
	}
	s := *repo.tbl.doc
	s.Services = s.Services.Clone()
	return s, nil
}

func (repo *settingsRepository) MergeSettings(_ context.Context, patch settings.UpdateSiteSettings, updatedAt time.Time) (settings.SiteSettings, error) {
	if err := repo.db.failure(); err != nil {
		return settings.SiteSettings{}, err
	}
	repo.tbl.mutex.Lock()
	defer repo.tbl.mutex.Unlock()

	var current settings.SiteSettings
	if repo.tbl.doc != nil {
		current = *repo.tbl.doc
	}
	merged := patch.ApplyTo(current)
	merged.UpdatedAt = updatedAt
	repo.tbl.doc = &merged

	res := merged
	res.Services = merged.Services.Clone()
	return res, nil
}
