package identitysvc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/user"
	identitysvc "github.com/risingacademy/backend/services/identity"
	testutil "github.com/risingacademy/backend/tests"
)

func TestLocalProvider(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	p, err := env.IdP.CreateUser(ctx, " Amina@Test.DZ ", "secret-1234")
	require.NoError(t, err)
	assert.Equal(t, "amina@test.dz", p.Email)
	assert.NotEmpty(t, p.UID)
	assert.WithinDuration(t, time.Now().Add(env.Conf.Server.JWTRefreshExpirationDelta), p.ExpiresAt, time.Minute)

	t.Run("email in use", func(t *testing.T) {
		_, err := env.IdP.CreateUser(ctx, "amina@test.dz", "other-1234")
		assert.Equal(t, user.CodeEmailInUse, core.AuthErrorCode(err))
	})

	t.Run("sign in", func(t *testing.T) {
		p2, err := env.IdP.SignIn(ctx, "AMINA@test.dz", "secret-1234")
		require.NoError(t, err)
		assert.Equal(t, p.UID, p2.UID)
		assert.NotEqual(t, p.SessionID, p2.SessionID)

		_, err = env.IdP.SignIn(ctx, "amina@test.dz", "Secret-1234")
		assert.Equal(t, user.CodeWrongPassword, core.AuthErrorCode(err))
		_, err = env.IdP.SignIn(ctx, "ghost@test.dz", "secret-1234")
		assert.Equal(t, user.CodeUserNotFound, core.AuthErrorCode(err))
	})

	t.Run("sign out", func(t *testing.T) {
		s, err := env.IdP.Session(ctx, p.SessionID)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, p.UID, s.UID)

		require.NoError(t, env.IdP.SignOut(ctx, p.SessionID))
		s, err = env.IdP.Session(ctx, p.SessionID)
		require.NoError(t, err)
		assert.Nil(t, s)

		assert.Equal(t, user.CodeNoSession, core.AuthErrorCode(env.IdP.SignOut(ctx, "")))
	})

	t.Run("expired session", func(t *testing.T) {
		identitysvc.NowFunc = func() time.Time { return time.Now().Add(-2 * env.Conf.Server.JWTRefreshExpirationDelta) }
		defer func() { identitysvc.NowFunc = time.Now }()

		old, err := env.IdP.SignIn(ctx, "amina@test.dz", "secret-1234")
		require.NoError(t, err)
		s, err := env.IdP.Session(ctx, old.SessionID)
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("set password", func(t *testing.T) {
		require.NoError(t, env.IdP.SetPassword(ctx, "amina@test.dz", "new-secret-1234"))
		_, err := env.IdP.SignIn(ctx, "amina@test.dz", "secret-1234")
		assert.Equal(t, user.CodeWrongPassword, core.AuthErrorCode(err))
		_, err = env.IdP.SignIn(ctx, "amina@test.dz", "new-secret-1234")
		assert.NoError(t, err)

		err = env.IdP.SetPassword(ctx, "ghost@test.dz", "new-secret-1234")
		assert.Equal(t, user.CodeUserNotFound, core.AuthErrorCode(err))
	})

	t.Run("store failure", func(t *testing.T) {
		env.DB.SetError(assert.AnError)
		defer env.DB.SetError(nil)

		_, err := env.IdP.SignIn(ctx, "amina@test.dz", "new-secret-1234")
		assert.True(t, core.IsPersistence(err))
	})
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := identitysvc.Session{ExpiresAt: now}
	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}
