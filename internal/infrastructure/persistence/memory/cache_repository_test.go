package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ayurwell/portal/internal/ports/outbound"
)

func TestCacheRepository_GetSetExpiry(t *testing.T) {
	repo := NewCacheRepository(0)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "short", []byte("a"), 10*time.Millisecond))
	require.NoError(t, repo.Set(ctx, "forever", []byte("b"), 0))

	got, err := repo.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	time.Sleep(20 * time.Millisecond)

	_, err = repo.Get(ctx, "short")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	got, err = repo.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)
}

func TestCacheRepository_GetDel(t *testing.T) {
	repo := NewCacheRepository(0)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "token", []byte("x"), time.Minute))

	got, err := repo.GetDel(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	_, err = repo.GetDel(ctx, "token")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	ok, err := repo.Exists(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepository_IncrementConcurrent(t *testing.T) {
	repo := NewCacheRepository(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Increment(ctx, "hits")
		}()
	}
	wg.Wait()

	n, err := repo.Increment(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(51), n)
}

func TestCacheRepository_SweepStopsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := NewCacheRepository(5 * time.Millisecond)
	require.NoError(t, repo.Set(context.Background(), "k", []byte("v"), time.Millisecond))

	assert.Eventually(t, func() bool { return repo.Len() == 0 }, time.Second, 5*time.Millisecond)

	repo.Close()
	repo.Close()
}
