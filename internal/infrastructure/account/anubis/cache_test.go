package anubis

import (
	"testing"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalCache_SetGet(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Minute, 10)
	cache.Set("k1", player.Principal{PlayerID: "u-1"})

	principal, ok := cache.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "u-1", principal.PlayerID)
}

func TestPrincipalCache_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	cache := newPrincipalCache(time.Minute, 10)
	cache.now = func() time.Time { return now }
	cache.Set("k1", player.Principal{PlayerID: "u-1"})

	now = now.Add(time.Minute)
	_, ok := cache.Get("k1")
	assert.False(t, ok)
	assert.Zero(t, cache.Len())
}

func TestPrincipalCache_EvictsOldestAtCapacity(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Minute, 2)
	cache.Set("k1", player.Principal{PlayerID: "u-1"})
	cache.Set("k2", player.Principal{PlayerID: "u-2"})
	cache.Set("k3", player.Principal{PlayerID: "u-3"})

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get("k1")
	assert.False(t, ok)
	_, ok = cache.Get("k3")
	assert.True(t, ok)
}

func TestPrincipalCache_ResetRefreshesPosition(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Minute, 2)
	cache.Set("k1", player.Principal{PlayerID: "u-1"})
	cache.Set("k2", player.Principal{PlayerID: "u-2"})
	cache.Set("k1", player.Principal{PlayerID: "u-1", Privileged: true})
	cache.Set("k3", player.Principal{PlayerID: "u-3"})

	got, ok := cache.Get("k1")
	require.True(t, ok)
	assert.True(t, got.Privileged)
	_, ok = cache.Get("k2")
	assert.False(t, ok)
}

func TestPrincipalCache_DisabledWithoutTTL(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(0, 10)
	cache.Set("k1", player.Principal{PlayerID: "u-1"})
	assert.Zero(t, cache.Len())
}
