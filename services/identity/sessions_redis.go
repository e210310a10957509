package identitysvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type redisSessionStore struct {
	client *redis.Client
}

var _ SessionStore = (*redisSessionStore)(nil)

// NewRedisSessionStore keeps sessions under "session:<id>" with the session lifetime as TTL.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (st *redisSessionStore) Save(ctx context.Context, s Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshalling session")
	}
	if err := st.client.Set(ctx, sessionKeyPrefix+s.ID, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "saving session")
	}
	return nil
}

func (st *redisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := st.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting session")
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "unmarshalling session")
	}
	if s.Expired(time.Now()) {
		return nil, nil
	}
	return &s, nil
}

func (st *redisSessionStore) Delete(ctx context.Context, id string) error {
	if err := st.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}
