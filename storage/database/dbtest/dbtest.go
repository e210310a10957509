// Package dbtest holds the behaviour every storage engine must share.
// The engine test suites run it against an empty store.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/risingacademy/backend/core/application"
	"github.com/risingacademy/backend/core/settings"
	"github.com/risingacademy/backend/core/user"
)

func newApplication(typ application.Type, email string, createdAt time.Time) application.Application {
	return application.Application{
		Type:       typ,
		FirstName:  "Amina",
		LastName:   "Saidi",
		Email:      email,
		Phone:      "0670710505",
		Age:        25,
		Motivation: "I want to learn.",
		Status:     application.StatusPending,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func ids(apps []application.Application) []string {
	res := make([]string, 0, len(apps))
	for _, app := range apps {
		res = append(res, app.ID)
	}
	return res
}

func RunApplicationRepositoryTests(t *testing.T, repo application.Repository) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Hour)

	lang := newApplication(application.TypeLanguage, "amina@test.dz", base)
	lang.PreferredLanguages = []string{"French", "German"}
	lang.Availability = []string{"Saturday"}
	lang.Experience = null.StringFrom("Some French at school")
	lang, err := repo.CreateApplication(ctx, lang)
	require.NoError(t, err)
	require.NotEmpty(t, lang.ID)

	coding := newApplication(application.TypeCoding, "kb@test.dz", base.Add(time.Minute))
	coding.ProgrammingExperience = null.StringFrom("beginner")
	coding, err = repo.CreateApplication(ctx, coding)
	require.NoError(t, err)

	club, err := repo.CreateApplication(ctx, newApplication(application.TypeOfficeClub, "omar@test.dz", base.Add(2*time.Minute)))
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetApplicationByID(ctx, lang.ID)
		require.NoError(t, err)
		assert.Equal(t, lang, got)

		got, err = repo.GetApplicationByID(ctx, club.ID)
		require.NoError(t, err)
		assert.Nil(t, got.PreferredLanguages)
		assert.False(t, got.ProgrammingExperience.Valid)

		for _, id := range []string{uuid.NewString(), "not-an-id"} {
			_, err = repo.GetApplicationByID(ctx, id)
			assert.Equal(t, application.ErrNotFound, err, id)
		}
	})

	t.Run("query", func(t *testing.T) {
		apps, err := repo.QueryAllApplications(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{club.ID, coding.ID, lang.ID}, ids(apps))

		apps, err = repo.QueryApplicationsByType(ctx, application.TypeCoding)
		require.NoError(t, err)
		assert.Equal(t, []string{coding.ID}, ids(apps))
		assert.Equal(t, coding, apps[0])
	})

	t.Run("update status", func(t *testing.T) {
		updatedAt := base.Add(time.Hour)
		got, err := repo.UpdateApplicationStatus(ctx, coding.ID, application.StatusApproved, updatedAt, application.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, application.StatusApproved, got.Status)
		assert.Equal(t, updatedAt, got.UpdatedAt)
		assert.Equal(t, coding.CreatedAt, got.CreatedAt)

		_, err = repo.UpdateApplicationStatus(ctx, coding.ID, application.StatusRejected, updatedAt.Add(time.Second), application.StatusPending)
		assert.Equal(t, application.ErrInvalidTransition, err)

		got, err = repo.UpdateApplicationStatus(ctx, coding.ID, application.StatusRejected, updatedAt.Add(time.Second), "")
		require.NoError(t, err)
		assert.Equal(t, application.StatusRejected, got.Status)

		_, err = repo.UpdateApplicationStatus(ctx, uuid.NewString(), application.StatusApproved, updatedAt, application.StatusPending)
		assert.Equal(t, application.ErrNotFound, err)
	})

	t.Run("delete", func(t *testing.T) {
		n, err := repo.DeleteApplicationsByID(ctx, lang.ID, club.ID, uuid.NewString(), "not-an-id")
		require.NoError(t, err)
		assert.Equal(t, 2, n, "only existing rows are counted")

		n, err = repo.DeleteApplicationsByID(ctx, lang.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		apps, err := repo.QueryAllApplications(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{coding.ID}, ids(apps))
	})
}

func RunSettingsRepositoryTests(t *testing.T, repo settings.Repository) {
	ctx := context.Background()
	tstamp := time.Now().UTC().Truncate(time.Microsecond)

	_, err := repo.GetSettings(ctx)
	assert.Equal(t, settings.ErrNotFound, err)

	stats := settings.Stats{Students: 650, Languages: 14, ProgrammingLanguages: 20, SuccessRate: 97}
	s, err := repo.MergeSettings(ctx, settings.UpdateSiteSettings{Stats: &stats}, tstamp)
	require.NoError(t, err)
	assert.Equal(t, settings.SiteSettings{Stats: stats, UpdatedAt: tstamp}, s)

	services := settings.Default().Services
	club := settings.OfficeClub{Day: "FRIDAY"}
	s, err = repo.MergeSettings(ctx, settings.UpdateSiteSettings{Services: &services, OfficeClub: &club}, tstamp.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, stats, s.Stats)
	assert.Equal(t, services, s.Services)
	assert.Equal(t, club, s.OfficeClub)
	assert.Equal(t, tstamp.Add(time.Second), s.UpdatedAt)

	// a given block is replaced wholesale
	fewer := settings.Services{Categories: services.Categories[:1]}
	_, err = repo.MergeSettings(ctx, settings.UpdateSiteSettings{Services: &fewer}, tstamp.Add(2*time.Second))
	require.NoError(t, err)

	got, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, fewer, got.Services)
	assert.Equal(t, stats, got.Stats)
	assert.Equal(t, tstamp.Add(2*time.Second), got.UpdatedAt)
}

func RunUserRepositoryTests(t *testing.T, repo user.Repository, creds user.CredentialRepository) {
	ctx := context.Background()
	tstamp := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("profiles", func(t *testing.T) {
		prof := user.Profile{ID: uuid.NewString(), Email: "admin@test.dz", Role: user.RoleAdmin, FirstName: "Admin", CreatedAt: tstamp}
		saved, err := repo.SaveProfile(ctx, prof)
		require.NoError(t, err)
		assert.Equal(t, prof, saved)

		// saving again keeps the creation time
		prof.Role = user.RoleUser
		prof.CreatedAt = tstamp.Add(time.Hour)
		saved, err = repo.SaveProfile(ctx, prof)
		require.NoError(t, err)
		assert.Equal(t, user.RoleUser, saved.Role)
		assert.Equal(t, tstamp, saved.CreatedAt)

		got, err := repo.GetProfileByID(ctx, prof.ID)
		require.NoError(t, err)
		assert.Equal(t, saved, got)
		got, err = repo.GetProfileByEmail(ctx, "admin@test.dz")
		require.NoError(t, err)
		assert.Equal(t, saved, got)

		_, err = repo.GetProfileByID(ctx, uuid.NewString())
		assert.Equal(t, user.ErrNotFound, err)
		_, err = repo.GetProfileByEmail(ctx, "ghost@test.dz")
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("identities", func(t *testing.T) {
		ident := user.Identity{UID: uuid.NewString(), Email: "amina@test.dz", PasswordHash: []byte("hash"), CreatedAt: tstamp}
		_, err := creds.CreateIdentity(ctx, ident)
		require.NoError(t, err)

		dup := ident
		dup.UID = uuid.NewString()
		_, err = creds.CreateIdentity(ctx, dup)
		assert.Equal(t, user.ErrEmailExists, err)

		require.NoError(t, creds.UpdateIdentityPassword(ctx, ident.UID, []byte("new-hash")))
		require.NoError(t, creds.TouchIdentity(ctx, ident.UID, tstamp.Add(time.Minute)))

		got, err := creds.GetIdentityByEmail(ctx, "amina@test.dz")
		require.NoError(t, err)
		assert.Equal(t, ident.UID, got.UID)
		assert.Equal(t, []byte("new-hash"), got.PasswordHash)
		assert.Equal(t, tstamp, got.CreatedAt)
		require.NotNil(t, got.LastSignInAt)
		assert.True(t, tstamp.Add(time.Minute).Equal(*got.LastSignInAt))

		_, err = creds.GetIdentityByEmail(ctx, "ghost@test.dz")
		assert.Equal(t, user.ErrIdentityNotFound, err)
		assert.Equal(t, user.ErrIdentityNotFound, creds.UpdateIdentityPassword(ctx, uuid.NewString(), []byte("x")))
	})
}
