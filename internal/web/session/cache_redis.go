package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tripnest/tripnest/internal/identity"
)

// RedisConfig addresses the shared identity cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient returns a client with short timeouts; a slow cache must
// never hold up a page render for long.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

const redisKeyPrefix = "tripnest:identity:"

// RedisCache is an IdentityCache shared by every web replica.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (identity.User, bool, error) {
	b, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return identity.User{}, false, nil
	}
	if err != nil {
		return identity.User{}, false, fmt.Errorf("identity cache get: %w", err)
	}

	var u identity.User
	if err := json.Unmarshal(b, &u); err != nil {
		// Treat undecodable entries as a miss; the next Set overwrites them.
		return identity.User{}, false, nil
	}
	return u, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, u identity.User, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("identity cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("identity cache delete: %w", err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
