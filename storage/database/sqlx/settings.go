package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/settings"
)

type settingsRow struct {
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r settingsRow) toSiteSettings() (settings.SiteSettings, error) {
	var s settings.SiteSettings
	if err := json.Unmarshal(r.Data, &s); err != nil {
		return settings.SiteSettings{}, errors.Wrap(err, "decoding settings")
	}
	s.UpdatedAt = r.UpdatedAt.UTC()
	return s, nil
}

type settingsRepository struct {
	db core.DBExecutor
}

var _ settings.Repository = (*settingsRepository)(nil)

func NewSettingsRepository(db core.DBExecutor) settings.Repository {
	return &settingsRepository{db: db}
}

func (repo *settingsRepository) GetSettings(ctx context.Context) (settings.SiteSettings, error) {
	var r settingsRow
	err := repo.db.GetContext(ctx, &r, `SELECT data, updated_at FROM settings WHERE id = $1`, settings.DocumentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return settings.SiteSettings{}, settings.ErrNotFound
		}
		return settings.SiteSettings{}, errors.Wrap(err, "getting settings")
	}
	return r.toSiteSettings()
}

// MergeSettings upserts the singleton; the top-level keys of the patch replace the stored ones.
func (repo *settingsRepository) MergeSettings(ctx context.Context, patch settings.UpdateSiteSettings, updatedAt time.Time) (settings.SiteSettings, error) {
	data, err := json.Marshal(patch)
	if err != nil {
		return settings.SiteSettings{}, errors.Wrap(err, "encoding settings")
	}
	q := `INSERT INTO settings (id, data, updated_at) VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (id) DO UPDATE SET data = settings.data || EXCLUDED.data, updated_at = EXCLUDED.updated_at
		RETURNING data, updated_at`

	var r settingsRow
	if err := repo.db.GetContext(ctx, &r, q, settings.DocumentID, string(data), updatedAt); err != nil {
		return settings.SiteSettings{}, errors.Wrap(err, "merging settings")
	}
	return r.toSiteSettings()
}
