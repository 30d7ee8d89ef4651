package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrLoad_SharesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "standings", nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]any, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = store.GetOrLoad(context.Background(), "leaderboard:all", loader)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		assert.Equal(t, "standings", r)
	}
}

func TestStore_GetOrLoad_CachesAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	for range 3 {
		_, err := store.GetOrLoad(context.Background(), "k", loader)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestStore_ExpiresAtTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 22, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Set(ctx, "leaderboard", 1)
	_, ok := store.Get(ctx, "leaderboard")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = store.Get(ctx, "leaderboard")
	assert.False(t, ok)
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()
	store.Set(ctx, "fixtures:2026-10-21", 1)
	store.Set(ctx, "fixtures:2026-10-28", 2)
	store.Set(ctx, "leaderboard:all", 3)

	store.DeletePrefix(ctx, "fixtures:")
	store.DeletePrefix(ctx, "")

	_, ok := store.Get(ctx, "fixtures:2026-10-21")
	assert.False(t, ok)
	_, ok = store.Get(ctx, "leaderboard:all")
	assert.True(t, ok)
}

func TestStore_NilStoreAlwaysLoads(t *testing.T) {
	t.Parallel()

	var store *Store
	var calls int
	for range 2 {
		v, err := Load(context.Background(), store, "k", func(context.Context) (int, error) {
			calls++
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}
	assert.Equal(t, 2, calls)
}

func TestLoad_ErrorsNotCachedAndTypeChecked(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	loadErr := errors.New("store down")

	_, err := Load(ctx, store, "rows", func(context.Context) ([]string, error) {
		return nil, loadErr
	})
	require.ErrorIs(t, err, loadErr)

	rows, err := Load(ctx, store, "rows", func(context.Context) ([]string, error) {
		return []string{"a"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, rows)

	_, err = Load(ctx, store, "rows", func(context.Context) (int, error) { return 0, nil })
	assert.Error(t, err)
}
