package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryTokenRepo is the ledger for deployments without Redis. go-cache
// runs a janitor goroutine that physically removes expired entries, so
// the eviction guarantee holds here too.
type MemoryTokenRepo struct {
	c *cache.Cache
}

func NewMemoryTokenRepo() *MemoryTokenRepo {
	return &MemoryTokenRepo{
		c: cache.New(24*time.Hour, 10*time.Minute),
	}
}

func (r *MemoryTokenRepo) Revoke(_ context.Context, token string, ttl time.Duration) error {
	r.c.Set(token, struct{}{}, ttl)
	return nil
}

func (r *MemoryTokenRepo) IsRevoked(_ context.Context, token string) (bool, error) {
	_, found := r.c.Get(token)
	return found, nil
}
