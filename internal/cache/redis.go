package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache key layouts, all scoped per organisation
const (
	ProcessListKeyFmt = "processes:%d"
	PackageListKeyFmt = "packages:%d:%s:%s" // org, status, prefix
)

var client *redis.Client

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Init connects to Redis. On failure the client stays nil and every cache
// call becomes a no-op.
func Init(opts Options) error {
	c := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		client = nil
		return err
	}
	client = c
	return nil
}

// SetClient installs an already connected client (nil disables caching)
func SetClient(c *redis.Client) {
	client = c
}

// Close releases the connection
func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		zap.L().Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// GetJSON decodes a cached JSON value into dst
func GetJSON(ctx context.Context, key string, dst any) bool {
	data, ok := GetCached(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON encodes v and caches it
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if client == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	SetCached(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

func ProcessListKey(orgID int) string {
	return fmt.Sprintf(ProcessListKeyFmt, orgID)
}

func PackageListKey(orgID int, status, prefix string) string {
	return fmt.Sprintf(PackageListKeyFmt, orgID, status, prefix)
}

// InvalidateProcessCaches clears the process list of an organisation.
// Called when: CreateProcess, DeactivateProcess
func InvalidateProcessCaches(ctx context.Context, orgID int) {
	InvalidateKeys(ctx, ProcessListKey(orgID))
}

// InvalidateInventoryCaches clears every package listing of an organisation.
// Called when: CreatePackage, Validate, Delete of a validated entry
func InvalidateInventoryCaches(ctx context.Context, orgID int) {
	InvalidatePattern(ctx, fmt.Sprintf("packages:%d:*", orgID))
}

// PreWarmKey fills key in the background after an invalidation
func PreWarmKey(key string, fetcher func(ctx context.Context) ([]byte, error), ttl time.Duration) {
	if client == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data, err := fetcher(ctx)
		if err != nil {
			return
		}
		SetCached(ctx, key, data, ttl)
	}()
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
