package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/user"
	testutil "github.com/risingacademy/backend/tests"
)

const (
	demoEmail = "admin@risingacademy.com"
	demoPwd   = "admin123"
)

func TestAuthService_SignIn(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, env, "user@test.dz", "user-pass-1234")

	t.Run("success", func(t *testing.T) {
		p, err := env.AuthSvc.SignIn(ctx, " USER@test.dz ", "user-pass-1234")
		require.NoError(t, err)
		assert.Equal(t, "user@test.dz", p.Email)
		assert.NotEmpty(t, p.SessionID)
		assert.False(t, p.ExpiresAt.IsZero())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.AuthSvc.SignIn(ctx, "user@test.dz", "nope")
		assert.Equal(t, user.CodeWrongPassword, core.AuthErrorCode(err))
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := env.AuthSvc.SignIn(ctx, "ghost@test.dz", "nope")
		assert.Equal(t, user.CodeUserNotFound, core.AuthErrorCode(err))
	})

	t.Run("demo account needs the demo password", func(t *testing.T) {
		_, err := env.AuthSvc.SignIn(ctx, demoEmail, "admin1234")
		assert.Equal(t, user.CodeUserNotFound, core.AuthErrorCode(err))
		assert.Equal(t, 1, env.DB.ProfileCount())
	})

	t.Run("demo bootstrap", func(t *testing.T) {
		first, err := env.AuthSvc.SignIn(ctx, demoEmail, demoPwd)
		require.NoError(t, err)
		second, err := env.AuthSvc.SignIn(ctx, demoEmail, demoPwd)
		require.NoError(t, err)
		assert.Equal(t, first.UID, second.UID)
		assert.NotEqual(t, first.SessionID, second.SessionID)
		assert.Equal(t, 2, env.DB.ProfileCount())

		isAdmin, err := env.AuthSvc.IsAdmin(ctx, first.UID)
		require.NoError(t, err)
		assert.True(t, isAdmin)
	})
}

func TestAuthService_SignIn_noBootstrap(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Auth.DemoBootstrap = false
	env := testutil.NewEnv(t, conf)

	_, err := env.AuthSvc.SignIn(context.Background(), demoEmail, demoPwd)
	assert.Equal(t, user.CodeUserNotFound, core.AuthErrorCode(err))
	assert.Zero(t, env.DB.ProfileCount())
}

func TestAuthService_sessions(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	p := testutil.CreateUser(t, env, "user@test.dz", "user-pass-1234")

	current, err := env.AuthSvc.CurrentUser(ctx, p.SessionID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, p.UID, current.UID)

	none, err := env.AuthSvc.CurrentUser(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, env.AuthSvc.SignOut(ctx, p.SessionID))
	current, err = env.AuthSvc.CurrentUser(ctx, p.SessionID)
	require.NoError(t, err)
	assert.Nil(t, current)

	isAdmin, err := env.AuthSvc.IsAdmin(ctx, p.UID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	isAdmin, err = env.AuthSvc.IsAdmin(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, isAdmin, "a missing profile is not an admin")

	_, err = env.AuthSvc.Profile(ctx, "unknown")
	assert.Equal(t, user.ErrNotFound, err)

	env.DB.SetError(assert.AnError)
	defer env.DB.SetError(nil)
	_, err = env.AuthSvc.IsAdmin(ctx, p.UID)
	assert.True(t, core.IsPersistence(err))
}

func TestAuthService_InitializeAdmin(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	na := user.NewAdmin{Email: "ops@risingacademy.com", FirstName: "Amina", LastName: "Bensalem", Password: "Kx9#vTq2!mLz"}

	prof, err := env.AuthSvc.InitializeAdmin(ctx, na)
	require.NoError(t, err)
	assert.True(t, prof.IsAdmin())
	assert.Equal(t, "Amina Bensalem", prof.FullName())

	p, err := env.AuthSvc.SignIn(ctx, na.Email, na.Password)
	require.NoError(t, err)
	assert.Equal(t, prof.ID, p.UID)

	_, err = env.AuthSvc.InitializeAdmin(ctx, na)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, user.ErrEmailExists, vErr.Err)
	assert.Equal(t, 1, env.DB.ProfileCount())
}

func TestAuthService_ResetPassword(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, env, "user@test.dz", "user-pass-1234")

	require.NoError(t, env.AuthSvc.ResetPassword(ctx, user.ResetPassword{Email: "user@test.dz", Password: "N3w-pass#2025"}))
	_, err := env.AuthSvc.SignIn(ctx, "user@test.dz", "N3w-pass#2025")
	assert.NoError(t, err)

	err = env.AuthSvc.ResetPassword(ctx, user.ResetPassword{Email: "ghost@test.dz", Password: "N3w-pass#2025"})
	assert.Equal(t, user.CodeUserNotFound, core.AuthErrorCode(err))
}
