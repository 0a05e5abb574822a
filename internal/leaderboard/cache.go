package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "leaderboard:top:"

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func key(n int) string { return keyPrefix + strconv.Itoa(n) }

func (r *RedisCache) Get(ctx context.Context, n int) ([]Entry, bool, error) {
	data, err := r.Client.Get(ctx, key(n)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (r *RedisCache) Set(ctx context.Context, n int, entries []Entry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(n), b, r.TTL).Err()
}
