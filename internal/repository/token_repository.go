package repository

import (
	"context"
	"time"

	redisapp "asha_gallery/internal/storage/redis"
)

// RedisTokenRepo keeps revoked tokens as keys with a TTL. Redis evicts
// them on expiry by itself, so the ledger never needs a sweep and never
// grows past the set of not-yet-expired revocations.
type RedisTokenRepo struct {
	Client *redisapp.Client
}

func NewRedisTokenRepo(client *redisapp.Client) *RedisTokenRepo {
	return &RedisTokenRepo{Client: client}
}

func (r *RedisTokenRepo) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	// SET overwrites an existing entry, which makes double revocation a no-op
	return r.Client.Set(ctx, revokedKey(token), "1", ttl).Err()
}

func (r *RedisTokenRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.Client.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func revokedKey(token string) string {
	return "revoked:" + token
}
