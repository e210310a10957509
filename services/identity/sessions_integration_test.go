//go:build integration

package identitysvc

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	endpoint, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	st := NewRedisSessionStore(client)
	now := time.Now().UTC().Truncate(time.Second)
	s := Session{ID: "s1", UID: "u1", Email: "amina@test.dz", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, st.Save(ctx, s))

	got, err := st.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s, *got)

	ttl, err := client.TTL(ctx, sessionKeyPrefix+"s1").Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	require.NoError(t, st.Delete(ctx, "s1"))
	got, err = st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// already expired sessions are not stored
	require.NoError(t, st.Save(ctx, Session{ID: "s2", ExpiresAt: now.Add(-time.Minute)}))
	got, err = st.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, got)
}
