package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshJTIPrefix = "auth:refresh:jti:"

// RefreshTokenStore tracks redeemed refresh token IDs so a rotated refresh
// token cannot be replayed. Access tokens stay stateless; only refresh
// redemption touches the store.
type RefreshTokenStore interface {
	// Redeem marks the jti as used for the remaining token lifetime and
	// reports whether this was the first redemption.
	Redeem(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

type redisRefreshTokenStore struct {
	client *redis.Client
}

// NewRefreshTokenStore returns a Redis-backed implementation.
func NewRefreshTokenStore(client *redis.Client) RefreshTokenStore {
	return &redisRefreshTokenStore{client: client}
}

func (s *redisRefreshTokenStore) Redeem(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return s.client.SetNX(ctx, refreshJTIPrefix+jti, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}
