package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/ports/outbound"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *CacheRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewCacheRepository(cache.WrapRedisClient(client, zap.NewNop()), zap.NewNop())
}

func TestCacheRepository_SetGet(t *testing.T) {
	mr, repo := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	mr.FastForward(2 * time.Minute)

	_, err = repo.Get(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}

func TestCacheRepository_GetDelIsSingleUse(t *testing.T) {
	_, repo := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "reset", []byte("user-1"), time.Hour))

	got, err := repo.GetDel(ctx, "reset")
	require.NoError(t, err)
	assert.Equal(t, "user-1", string(got))

	_, err = repo.GetDel(ctx, "reset")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}

func TestCacheRepository_ExistsAndDelete(t *testing.T) {
	_, repo := setupMiniRedis(t)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "k", []byte("1"), 0))
	ok, err = repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx, "k"))
	ok, err = repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepository_Increment(t *testing.T) {
	mr, repo := setupMiniRedis(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := repo.Increment(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	assert.Equal(t, counterTTL, mr.TTL("counter"))
}

func TestCacheRepository_ServerDown(t *testing.T) {
	mr, repo := setupMiniRedis(t)
	mr.Close()

	_, err := repo.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, outbound.ErrCacheMiss)
}
