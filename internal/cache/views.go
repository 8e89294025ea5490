package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LocalViews keeps views in an in-process LRU. Suitable for a single API
// instance.
type LocalViews struct {
	lru *LRUCache[[]byte]

	mu       sync.Mutex
	versions map[string]int64
}

var _ ViewCache = (*LocalViews)(nil)

func NewLocalViews(lru *LRUCache[[]byte]) *LocalViews {
	return &LocalViews{lru: lru, versions: make(map[string]int64)}
}

func localKey(userID, key string) string { return userID + "|" + key }

func (v *LocalViews) Get(_ context.Context, userID, key string) ([]byte, bool, error) {
	b, ok := v.lru.Get(localKey(userID, key))
	return b, ok, nil
}

func (v *LocalViews) Version(_ context.Context, userID string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.versions[userID], nil
}

// Set drops view when userID was invalidated after version was taken.
func (v *LocalViews) Set(_ context.Context, userID, key string, version int64, view []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.versions[userID] != version {
		return nil
	}
	v.lru.Set(localKey(userID, key), view)
	return nil
}

func (v *LocalViews) Invalidate(_ context.Context, userID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.versions[userID]++
	v.lru.DeletePrefix(userID + "|")
	return nil
}

// RedisViews shares views between API instances and the worker. Each user
// has a generation counter; view keys embed the current generation, so
// Invalidate is a single INCR and stale keys age out through their TTL.
type RedisViews struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ ViewCache = (*RedisViews)(nil)

// NewRedisViews connects to url and verifies the connection.
func NewRedisViews(ctx context.Context, url string, ttl time.Duration) (*RedisViews, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisViews{client: client, ttl: ttl, prefix: "financas:views"}, nil
}

func (v *RedisViews) generationKey(userID string) string {
	return fmt.Sprintf("%s:gen:%s", v.prefix, userID)
}

func (v *RedisViews) viewKey(userID string, gen int64, key string) string {
	return fmt.Sprintf("%s:%s:%d:%s", v.prefix, userID, gen, key)
}

func (v *RedisViews) generation(ctx context.Context, userID string) (int64, error) {
	gen, err := v.client.Get(ctx, v.generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (v *RedisViews) Get(ctx context.Context, userID, key string) ([]byte, bool, error) {
	gen, err := v.generation(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("read view generation: %w", err)
	}
	b, err := v.client.Get(ctx, v.viewKey(userID, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read view: %w", err)
	}
	return b, true, nil
}

func (v *RedisViews) Version(ctx context.Context, userID string) (int64, error) {
	gen, err := v.generation(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("read view generation: %w", err)
	}
	return gen, nil
}

// Set writes under the generation the caller read. After an Invalidate that
// key is never read again and ages out through the TTL.
func (v *RedisViews) Set(ctx context.Context, userID, key string, version int64, view []byte) error {
	if err := v.client.Set(ctx, v.viewKey(userID, version, key), view, v.ttl).Err(); err != nil {
		return fmt.Errorf("write view: %w", err)
	}
	return nil
}

func (v *RedisViews) Invalidate(ctx context.Context, userID string) error {
	if err := v.client.Incr(ctx, v.generationKey(userID)).Err(); err != nil {
		return fmt.Errorf("bump view generation: %w", err)
	}
	return nil
}

func (v *RedisViews) Close() error {
	return v.client.Close()
}
