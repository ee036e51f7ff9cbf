package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/erp/crm/internal/domain/sales"
	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// Backend names reported by recency caches
const (
	BackendRedis  = config.CacheBackendRedis
	BackendMemory = config.CacheBackendMemory
)

const (
	// DefaultKeyPrefix namespaces the per-customer sorted sets
	DefaultKeyPrefix = "recentOppty"

	scanBatchSize = 100
)

// RedisRecencyCache implements sales.RecencyCache with one sorted set per
// customer. Members are decimal opportunity ids scored by touch time in
// microseconds, so ZREVRANGE yields most recent first.
type RedisRecencyCache struct {
	client    redis.UniversalClient
	keyPrefix string
	capacity  int
	resetMode string
}

// RedisRecencyCacheOption is a functional option for configuring the cache
type RedisRecencyCacheOption func(*RedisRecencyCache)

// WithKeyPrefix sets the key namespace; keys are <prefix>:<customer_id>
func WithKeyPrefix(prefix string) RedisRecencyCacheOption {
	return func(c *RedisRecencyCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithCapacity sets how many ids are kept per customer
func WithCapacity(capacity int) RedisRecencyCacheOption {
	return func(c *RedisRecencyCache) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

// WithResetMode selects how ResetAll clears the cache: config.ResetModeScan
// deletes only recency keys, config.ResetModeFlushDB empties the whole database.
func WithResetMode(mode string) RedisRecencyCacheOption {
	return func(c *RedisRecencyCache) {
		c.resetMode = mode
	}
}

// NewRedisRecencyCache creates a recency cache using an existing Redis client
func NewRedisRecencyCache(client redis.UniversalClient, opts ...RedisRecencyCacheOption) *RedisRecencyCache {
	c := &RedisRecencyCache{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
		capacity:  sales.DefaultRecentCapacity,
		resetMode: config.ResetModeScan,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisRecencyCache) key(customerID int64) string {
	return c.keyPrefix + ":" + strconv.FormatInt(customerID, 10)
}

// Touch adds the id or raises its score, then trims the set, inside
// MULTI/EXEC. ZADD GT keeps the later of the stored and supplied times.
func (c *RedisRecencyCache) Touch(ctx context.Context, customerID, opportunityID int64, at time.Time) error {
	key := c.key(customerID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAddGT(ctx, key, redis.Z{
			Score:  float64(at.UnixMicro()),
			Member: strconv.FormatInt(opportunityID, 10),
		})
		pipe.ZRemRangeByRank(ctx, key, 0, int64(-(c.capacity + 1)))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to touch %s: %w", key, err)
	}
	return nil
}

// Recent returns up to capacity ids, most recent first
func (c *RedisRecencyCache) Recent(ctx context.Context, customerID int64) ([]int64, error) {
	key := c.key(customerID)
	members, err := c.client.ZRevRange(ctx, key, 0, int64(c.capacity-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed member %q in %s: %w", m, key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Evict removes the id from the customer's set
func (c *RedisRecencyCache) Evict(ctx context.Context, customerID, opportunityID int64) error {
	key := c.key(customerID)
	if err := c.client.ZRem(ctx, key, strconv.FormatInt(opportunityID, 10)).Err(); err != nil {
		return fmt.Errorf("failed to evict from %s: %w", key, err)
	}
	return nil
}

// ResetAll removes every recency set
func (c *RedisRecencyCache) ResetAll(ctx context.Context) error {
	reset := c.resetKeys
	if c.resetMode == config.ResetModeFlushDB {
		reset = func(ctx context.Context, node redis.Cmdable) error {
			return node.FlushDB(ctx).Err()
		}
	}

	if cluster, ok := c.client.(*redis.ClusterClient); ok {
		return cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return reset(ctx, node)
		})
	}
	return reset(ctx, c.client)
}

// resetKeys collects <prefix>:* over a full SCAN, then unlinks in batches.
// Deleting while the cursor is open can make some servers skip keys.
func (c *RedisRecencyCache) resetKeys(ctx context.Context, node redis.Cmdable) error {
	pattern := c.keyPrefix + ":*"
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := node.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}

	for start := 0; start < len(keys); start += scanBatchSize {
		end := min(start+scanBatchSize, len(keys))
		// one key per command keeps cluster slots apart
		pipe := node.Pipeline()
		for _, k := range keys[start:end] {
			pipe.Unlink(ctx, k)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to unlink recency keys: %w", err)
		}
	}
	return nil
}

// Ping checks that Redis is reachable
func (c *RedisRecencyCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Backend returns the backend name
func (c *RedisRecencyCache) Backend() string {
	return BackendRedis
}

// Close closes the Redis client
func (c *RedisRecencyCache) Close() error {
	return c.client.Close()
}

// Ensure RedisRecencyCache implements RecencyCache
var _ sales.RecencyCache = (*RedisRecencyCache)(nil)
