package settings_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/settings"
	metricsvc "github.com/risingacademy/backend/services/metrics"
	testutil "github.com/risingacademy/backend/tests"
)

func TestService_Get(t *testing.T) {
	env := testutil.NewEnv(t)
	collector := metricsvc.NewCollector()
	svc := settings.NewService(env.SettingsRepo, collector, env.Logger)
	ctx := context.Background()

	assert.Equal(t, settings.Default(), svc.Get(ctx), "empty store")

	env.DB.SetError(assert.AnError)
	assert.Equal(t, settings.Default(), svc.Get(ctx), "failing store")
	env.DB.SetError(nil)

	expected := `
# HELP risingacademy_settings_fallback_total Settings reads served from the defaults
# TYPE risingacademy_settings_fallback_total counter
risingacademy_settings_fallback_total 1
`
	assert.NoError(t, promtest.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "risingacademy_settings_fallback_total"))

	// stored settings are returned as they are, not merged with the defaults
	stats := settings.Stats{Students: 10}
	_, err := svc.Update(ctx, settings.UpdateSiteSettings{Stats: &stats})
	require.NoError(t, err)
	got := svc.Get(ctx)
	assert.Equal(t, stats, got.Stats)
	assert.Equal(t, settings.Contact{}, got.Contact)
	assert.Empty(t, got.Services.Categories)
}

func TestService_Update(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tstamp := time.Date(2026, 5, 4, 18, 30, 0, 999999999, time.UTC)
	settings.NowFunc = func() time.Time { return tstamp }
	defer func() { settings.NowFunc = time.Now }()

	contact := settings.Contact{Phone: "0670710505", Location: "Batna"}
	s, err := env.SettingsSvc.Update(ctx, settings.UpdateSiteSettings{Contact: &contact})
	require.NoError(t, err)
	assert.Equal(t, contact, s.Contact)
	assert.Equal(t, tstamp.Truncate(time.Microsecond), s.UpdatedAt)

	club := settings.OfficeClub{Day: "FRIDAY", Time: "5:00 PM"}
	services := settings.Services{Categories: []settings.ServiceCategory{{ID: "it", Name: "Informatique"}}}
	s, err = env.SettingsSvc.Update(ctx, settings.UpdateSiteSettings{OfficeClub: &club, Services: &services})
	require.NoError(t, err)
	assert.Equal(t, contact, s.Contact, "untouched block")
	assert.Equal(t, club, s.OfficeClub)
	assert.Equal(t, services, s.Services)

	// the last write wins
	contact2 := settings.Contact{Phone: "0667909055"}
	s, err = env.SettingsSvc.Update(ctx, settings.UpdateSiteSettings{Contact: &contact2})
	require.NoError(t, err)
	assert.Equal(t, contact2, s.Contact)
	assert.Equal(t, s, env.SettingsSvc.Get(ctx))

	env.DB.SetError(assert.AnError)
	defer env.DB.SetError(nil)
	_, err = env.SettingsSvc.Update(ctx, settings.UpdateSiteSettings{Contact: &contact})
	assert.True(t, core.IsPersistence(err))
}

func TestUpdateSiteSettings_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	tests := []struct {
		name     string
		us       settings.UpdateSiteSettings
		wantErrs map[string]string // {namespace: tag}
	}{
		{name: "empty", us: settings.UpdateSiteSettings{}},
		{
			name: "valid",
			us: settings.UpdateSiteSettings{
				Contact: &settings.Contact{Facebook: " https://facebook.com/ra "},
				Stats:   &settings.Stats{Students: 1, SuccessRate: 100},
			},
		},
		{
			name: "invalid blocks",
			us: settings.UpdateSiteSettings{
				Contact: &settings.Contact{Instagram: "instagram"},
				Stats:   &settings.Stats{Students: -1, SuccessRate: 101},
			},
			wantErrs: map[string]string{
				"UpdateSiteSettings.contact.instagram": "url",
				"UpdateSiteSettings.stats.students":    "min",
				"UpdateSiteSettings.stats.successRate": "max",
			},
		},
		{
			name: "categories",
			us: settings.UpdateSiteSettings{
				Services: &settings.Services{Categories: []settings.ServiceCategory{
					{ID: "it", Name: "IT"},
					{ID: " IT ", Name: "Informatique"},
				}},
			},
			wantErrs: map[string]string{"UpdateSiteSettings.services.categories": "unique"},
		},
		{
			name: "subcategories",
			us: settings.UpdateSiteSettings{
				Services: &settings.Services{Categories: []settings.ServiceCategory{
					{ID: "it", Subcategories: []string{"Hardware", " "}},
				}},
			},
			wantErrs: map[string]string{
				"UpdateSiteSettings.services.categories[0].name":             "required",
				"UpdateSiteSettings.services.categories[0].subcategories[1]": "required",
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.us.Validate(validate)
			if tt.wantErrs == nil {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			got := make(map[string]string, len(vErrs))
			for _, fe := range vErrs {
				got[fe.Namespace()] = fe.Tag()
			}
			assert.Equal(t, tt.wantErrs, got)
		})
	}

	t.Run("IsEmpty", func(t *testing.T) {
		assert.True(t, settings.UpdateSiteSettings{}.IsEmpty())
		assert.False(t, settings.UpdateSiteSettings{Stats: &settings.Stats{}}.IsEmpty())
	})
}
