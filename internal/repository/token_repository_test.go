package repository

import (
	"context"
	"testing"
	"time"

	redisapp "asha_gallery/internal/storage/redis"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedTokenRepo(t *testing.T) (*RedisTokenRepo, redismock.ClientMock) {
	t.Helper()

	db, mock := redismock.NewClientMock()
	repo := NewRedisTokenRepo(&redisapp.Client{Client: db})

	return repo, mock
}

func TestRedisTokenRepo_Revoke(t *testing.T) {
	repo, mock := newMockedTokenRepo(t)

	mock.ExpectSet("revoked:some-token", "1", time.Hour).SetVal("OK")

	err := repo.Revoke(context.Background(), "some-token", time.Hour)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenRepo_Revoke_Twice(t *testing.T) {
	repo, mock := newMockedTokenRepo(t)

	mock.ExpectSet("revoked:some-token", "1", time.Hour).SetVal("OK")
	mock.ExpectSet("revoked:some-token", "1", time.Hour).SetVal("OK")

	require.NoError(t, repo.Revoke(context.Background(), "some-token", time.Hour))
	require.NoError(t, repo.Revoke(context.Background(), "some-token", time.Hour))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenRepo_IsRevoked(t *testing.T) {
	repo, mock := newMockedTokenRepo(t)

	mock.ExpectExists("revoked:revoked-token").SetVal(1)
	mock.ExpectExists("revoked:clean-token").SetVal(0)

	revoked, err := repo.IsRevoked(context.Background(), "revoked-token")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsRevoked(context.Background(), "clean-token")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryTokenRepo(t *testing.T) {
	repo := NewMemoryTokenRepo()
	ctx := context.Background()

	require.NoError(t, repo.Revoke(ctx, "token-a", time.Hour))
	require.NoError(t, repo.Revoke(ctx, "token-a", time.Hour))

	revoked, err := repo.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryTokenRepo_Expiry(t *testing.T) {
	repo := NewMemoryTokenRepo()
	ctx := context.Background()

	require.NoError(t, repo.Revoke(ctx, "short-lived", 10*time.Millisecond))

	time.Sleep(50 * time.Millisecond)

	revoked, err := repo.IsRevoked(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, revoked)
}
