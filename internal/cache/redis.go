package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client        *redis.Client
	departuresTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, departuresTTL time.Duration) *RedisCache {
	return NewRedisCacheFromClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		departuresTTL,
	)
}

func NewRedisCacheFromClient(client *redis.Client, departuresTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, departuresTTL: departuresTTL}
}

// Client exposes the underlying connection for components sharing it, such as the rate limiter.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetDepartures returns the cached departure list, or nil on a miss.
func (c *RedisCache) GetDepartures(ctx context.Context) ([]domain.Schedule, error) {
	data, err := c.client.Get(ctx, departuresKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var schedules []domain.Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (c *RedisCache) SetDepartures(ctx context.Context, schedules []domain.Schedule) error {
	payload, err := json.Marshal(schedules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, departuresKey(), payload, c.departuresTTL).Err()
}

// InvalidateDepartures drops the cached list after seat counts change.
func (c *RedisCache) InvalidateDepartures(ctx context.Context) error {
	return c.client.Del(ctx, departuresKey()).Err()
}

// ErrLockNotHeld is returned when releasing a lock that expired or was taken over.
var ErrLockNotHeld = errors.New("lock not held")

// releaseScript deletes the lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// AcquireRosterLock takes the roster lock for ttl. The returned token must be passed to
// ReleaseRosterLock.
func (c *RedisCache) AcquireRosterLock(ctx context.Context, rosterID uuid.UUID, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, rosterLockKey(rosterID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisCache) ReleaseRosterLock(ctx context.Context, rosterID uuid.UUID, token string) error {
	deleted, err := releaseScript.Run(ctx, c.client, []string{rosterLockKey(rosterID)}, token).Int()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrLockNotHeld
	}
	return nil
}

func departuresKey() string {
	return "cache:departures"
}

func rosterLockKey(rosterID uuid.UUID) string {
	return fmt.Sprintf("lock:roster:%s:rooms", rosterID)
}
