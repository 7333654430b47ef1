package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: addr, DB: 15}), time.Minute)
	require.NoError(t, c.Ping(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "cache:departures", departuresKey())
	assert.Equal(t, "lock:roster:11111111-2222-3333-4444-555555555555:rooms", rosterLockKey(id))
}

func TestRedisCache_Departures(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.InvalidateDepartures(ctx))

	got, err := c.GetDepartures(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	schedules := []domain.Schedule{{
		ID:        uuid.New(),
		PackageID: uuid.New(),
		Pool:      domain.CapacityPool{Total: 45, Available: 3, Status: domain.PoolStatusAlmostFull},
	}}
	require.NoError(t, c.SetDepartures(ctx, schedules))

	got, err = c.GetDepartures(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, schedules[0].ID, got[0].ID)
	assert.Equal(t, 3, got[0].Pool.Available)

	require.NoError(t, c.InvalidateDepartures(ctx))
	got, err = c.GetDepartures(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_RosterLock(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	rosterID := uuid.New()

	token, ok, err := c.AcquireRosterLock(ctx, rosterID, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = c.AcquireRosterLock(ctx, rosterID, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.ReleaseRosterLock(ctx, rosterID, token))
	token, ok, err = c.AcquireRosterLock(ctx, rosterID, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, c.ReleaseRosterLock(ctx, rosterID, token))
}

func TestRedisCache_RosterLockReleaseKeepsNewOwner(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	rosterID := uuid.New()

	stale, ok, err := c.AcquireRosterLock(ctx, rosterID, 100*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(200 * time.Millisecond)
	owner, ok, err := c.AcquireRosterLock(ctx, rosterID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	assert.ErrorIs(t, c.ReleaseRosterLock(ctx, rosterID, stale), ErrLockNotHeld)

	_, ok, err = c.AcquireRosterLock(ctx, rosterID, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "the current owner keeps the lock")
	require.NoError(t, c.ReleaseRosterLock(ctx, rosterID, owner))
}
