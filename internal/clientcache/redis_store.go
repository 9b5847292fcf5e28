package clientcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "football:clientcache:"

// redisClient is the subset of *redis.Client the blob store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
	Close() error
}

// RedisBlobStore keeps families in redis under a fixed prefix. Slots carry
// their own timestamps, so keys are written without expiry.
type RedisBlobStore struct {
	client redisClient
}

// OpenRedis connects using a redis:// URL.
func OpenRedis(ctx context.Context, url string) (*RedisBlobStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisBlobStore{client: client}, nil
}

func newRedisBlobStore(client redisClient) *RedisBlobStore {
	return &RedisBlobStore{client: client}
}

func (r *RedisBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisBlobStore) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, redisPrefix+key, value, 0).Err()
}

func (r *RedisBlobStore) Clear(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, redisPrefix+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisBlobStore) Close() error {
	return r.client.Close()
}
