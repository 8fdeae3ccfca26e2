package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/trainbooking/config"
	"github.com/Domenick1991/trainbooking/internal/domain"
)

type RedisCache struct {
	client      *redis.Client
	snapshotTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, snapshotTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		snapshotTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, snapshotTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, snapshotTTL: snapshotTTL}
}

// GetSnapshot returns nil, nil on a cache miss.
func (c *RedisCache) GetSnapshot(ctx context.Context, key string) (*domain.Snapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *RedisCache) SetSnapshot(ctx context.Context, key string, snapshot domain.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey(key), payload, c.snapshotTTL).Err()
}

func (c *RedisCache) DeleteSnapshot(ctx context.Context, key string) error {
	return c.client.Del(ctx, snapshotKey(key)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func snapshotKey(key string) string {
	return "cache:booking:snapshot:" + key
}
