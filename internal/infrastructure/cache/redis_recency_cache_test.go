package cache

import (
	"context"
	"testing"

	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRecencyCache_KeyLayout(t *testing.T) {
	c, mr := newMiniredisCache(t)
	at := newClock().next()

	require.NoError(t, c.Touch(context.Background(), 42, 7, at))

	assert.True(t, mr.Exists("recentOppty:42"))
	members, err := mr.ZMembers("recentOppty:42")
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, members)
	score, err := mr.ZScore("recentOppty:42", "7")
	require.NoError(t, err)
	assert.Equal(t, float64(at.UnixMicro()), score)
}

func TestRedisRecencyCache_CustomPrefixAndCapacity(t *testing.T) {
	c, mr := newMiniredisCache(t, WithKeyPrefix("crm:recent"), WithCapacity(2))
	ctx := context.Background()
	clk := newClock()

	for id := int64(1); id <= 4; id++ {
		require.NoError(t, c.Touch(ctx, 1, id, clk.next()))
	}

	members, err := mr.ZMembers("crm:recent:1")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	recent, err := c.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3}, recent)
}

func TestRedisRecencyCache_ResetScanKeepsForeignKeys(t *testing.T) {
	c, mr := newMiniredisCache(t)
	ctx := context.Background()
	clk := newClock()
	require.NoError(t, mr.Set("session:abc", "x"))

	// more keys than one SCAN batch
	for customer := int64(1); customer <= 250; customer++ {
		require.NoError(t, c.Touch(ctx, customer, 1, clk.next()))
	}

	require.NoError(t, c.ResetAll(ctx))

	assert.Equal(t, []string{"session:abc"}, mr.Keys())
}

func TestRedisRecencyCache_ResetFlushDB(t *testing.T) {
	c, mr := newMiniredisCache(t, WithResetMode(config.ResetModeFlushDB))
	ctx := context.Background()
	require.NoError(t, mr.Set("session:abc", "x"))
	require.NoError(t, c.Touch(ctx, 1, 1, newClock().next()))

	require.NoError(t, c.ResetAll(ctx))

	assert.Empty(t, mr.Keys())
}

func TestRedisRecencyCache_MalformedMember(t *testing.T) {
	c, mr := newMiniredisCache(t)
	_, err := mr.ZAdd("recentOppty:1", 1, "not-a-number")
	require.NoError(t, err)

	_, err = c.Recent(context.Background(), 1)
	assert.Error(t, err)
}

func TestRedisRecencyCache_ServerDown(t *testing.T) {
	c, mr := newMiniredisCache(t)
	ctx := context.Background()
	mr.Close()

	assert.Error(t, c.Touch(ctx, 1, 1, newClock().next()))
	_, err := c.Recent(ctx, 1)
	assert.Error(t, err)
	assert.Error(t, c.Evict(ctx, 1, 1))
	assert.Error(t, c.ResetAll(ctx))
	assert.Error(t, c.Ping(ctx))
}

func TestRedisRecencyCache_Backend(t *testing.T) {
	c, _ := newMiniredisCache(t)
	assert.Equal(t, BackendRedis, c.Backend())
	assert.NoError(t, c.Ping(context.Background()))
}
