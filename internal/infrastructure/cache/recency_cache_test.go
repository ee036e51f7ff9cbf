package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/crm/internal/domain/sales"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock hands out strictly increasing instants one millisecond apart
type clock struct{ now time.Time }

func newClock() *clock {
	return &clock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) next() time.Time {
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func newMiniredisCache(t *testing.T, opts ...RedisRecencyCacheOption) (*RedisRecencyCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRecencyCache(client, opts...), mr
}

// backends runs fn against every RecencyCache implementation
func backends(t *testing.T, fn func(t *testing.T, c sales.RecencyCache)) {
	t.Run("redis", func(t *testing.T) {
		c, _ := newMiniredisCache(t)
		fn(t, c)
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, NewInMemoryRecencyCache(sales.DefaultRecentCapacity))
	})
}

func TestRecencyCache_Scenario(t *testing.T) {
	backends(t, func(t *testing.T, c sales.RecencyCache) {
		ctx := context.Background()
		clk := newClock()
		const customer = 42

		for id := int64(1); id <= 6; id++ {
			require.NoError(t, c.Touch(ctx, customer, id, clk.next()))
		}
		recent, err := c.Recent(ctx, customer)
		require.NoError(t, err)
		assert.Equal(t, []int64{6, 5, 4, 3, 2}, recent)

		require.NoError(t, c.Touch(ctx, customer, 2, clk.next()))
		recent, err = c.Recent(ctx, customer)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 6, 5, 4, 3}, recent)

		require.NoError(t, c.Evict(ctx, customer, 6))
		recent, err = c.Recent(ctx, customer)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 5, 4, 3}, recent)

		require.NoError(t, c.ResetAll(ctx))
		recent, err = c.Recent(ctx, customer)
		require.NoError(t, err)
		assert.Equal(t, []int64{}, recent)
	})
}

func TestRecencyCache_UnknownCustomerIsEmpty(t *testing.T) {
	backends(t, func(t *testing.T, c sales.RecencyCache) {
		recent, err := c.Recent(context.Background(), 777)
		require.NoError(t, err)
		assert.NotNil(t, recent)
		assert.Empty(t, recent)
	})
}

func TestRecencyCache_CapacityBound(t *testing.T) {
	backends(t, func(t *testing.T, c sales.RecencyCache) {
		ctx := context.Background()
		clk := newClock()
		for id := int64(1); id <= 50; id++ {
			require.NoError(t, c.Touch(ctx, 1, id, clk.next()))
			recent, err := c.Recent(ctx, 1)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(recent), sales.DefaultRecentCapacity)
			assert.Equal(t, id, recent[0])
		}
	})
}

func TestRecencyCache_RetouchKeepsIdentity(t *testing.T) {
	backends(t, func(t *testing.T, c sales.RecencyCache) {
		ctx := context.Background()
		clk := newClock()
		for range 3 {
			require.NoError(t, c.Touch(ctx, 1, 9, clk.next()))
		}
		recent, err := c.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{9}, recent)
	})
}

func TestRecencyCache_StaleTouchDoesNotDemote(t *testing.T) {
	backends(t, func(t *testing.T, c sales.RecencyCache) {
		ctx := context.Background()
		base := newClock().next()
		require.NoError(t, c.Touch(ctx, 1, 7, base.Add(10*time.Second)))
		require.NoError(t, c.Touch(ctx, 1, 8, base.Add(7*time.Second)))
		require.NoError(t, c.Touch(ctx, 1, 7, base.Add(5*time.Second)))

		recent, err := c.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{7, 8}, recent)
	})
}

func TestRecencyCache_StaleTouchOfNewIdIsTrimmed(t *testing.T) {
	backends(t, func(t *testing.T, c sales.RecencyCache) {
		ctx := context.Background()
		base := newClock().next()
		for id := int64(1); id <= int64(sales.DefaultRecentCapacity); id++ {
			require.NoError(t, c.Touch(ctx, 1, id, base.Add(time.Duration(id)*time.Second)))
		}
		require.NoError(t, c.Touch(ctx, 1, 99, base))

		recent, err := c.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{5, 4, 3, 2, 1}, recent)
	})
}

func TestRecencyCache_CustomersAreIsolated(t *testing.T) {
	backends(t, func(t *testing.T, c sales.RecencyCache) {
		ctx := context.Background()
		clk := newClock()
		require.NoError(t, c.Touch(ctx, 1, 10, clk.next()))
		require.NoError(t, c.Touch(ctx, 2, 20, clk.next()))
		require.NoError(t, c.Evict(ctx, 1, 20))

		recent, err := c.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{10}, recent)
		recent, err = c.Recent(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{20}, recent)
	})
}

func TestRecencyCache_EqualScoresOrderByMemberDescending(t *testing.T) {
	backends(t, func(t *testing.T, c sales.RecencyCache) {
		ctx := context.Background()
		at := newClock().next()
		require.NoError(t, c.Touch(ctx, 1, 5, at))
		require.NoError(t, c.Touch(ctx, 1, 7, at))
		require.NoError(t, c.Touch(ctx, 1, 6, at))

		recent, err := c.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{7, 6, 5}, recent)
	})
}

func TestRecencyCache_EvictMissingIsNoop(t *testing.T) {
	backends(t, func(t *testing.T, c sales.RecencyCache) {
		ctx := context.Background()
		assert.NoError(t, c.Evict(ctx, 1, 99))
		require.NoError(t, c.Touch(ctx, 1, 3, newClock().next()))
		assert.NoError(t, c.Evict(ctx, 1, 99))

		recent, err := c.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{3}, recent)
	})
}

func TestRecencyCache_ResetIsIdempotent(t *testing.T) {
	backends(t, func(t *testing.T, c sales.RecencyCache) {
		ctx := context.Background()
		require.NoError(t, c.Touch(ctx, 1, 1, newClock().next()))
		require.NoError(t, c.ResetAll(ctx))
		require.NoError(t, c.ResetAll(ctx))

		recent, err := c.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, recent)
	})
}
