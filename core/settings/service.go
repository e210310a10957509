package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kat-co/vala"

	"github.com/risingacademy/backend/core"
)

var (
	NowFunc = time.Now // mockable

	// ErrNotFound is returned by a Repository holding no settings yet.
	ErrNotFound = errors.New("settings not found")
)

type (
	Repository interface {
		GetSettings(ctx context.Context) (SiteSettings, error)
		// MergeSettings creates the settings singleton or replaces the given blocks of the stored one.
		MergeSettings(ctx context.Context, patch UpdateSiteSettings, updatedAt time.Time) (SiteSettings, error)
	}

	Service struct {
		repo    Repository
		metrics core.Metrics
		logger  core.Logger
	}
)

func NewService(repo Repository, metrics core.Metrics, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	return &Service{repo: repo, metrics: metrics, logger: logger}
}

// Get returns the stored settings as they are, or Default() when there are none or they cannot be read.
func (svc *Service) Get(ctx context.Context) SiteSettings {
	s, err := svc.repo.GetSettings(ctx)
	if err != nil {
		if err != ErrNotFound {
			svc.logger.Warn(fmt.Sprintf("settings.Get: using defaults: %v", err), err)
			svc.metrics.SettingsFallback()
		}
		return Default()
	}
	return s
}

// Update merges the given blocks into the stored settings.
func (svc *Service) Update(ctx context.Context, us UpdateSiteSettings) (SiteSettings, error) {
	s, err := svc.repo.MergeSettings(ctx, us, NowFunc().UTC().Truncate(time.Microsecond))
	if err != nil {
		return SiteSettings{}, core.NewPersistenceError("updating settings", err)
	}
	return s, nil
}
