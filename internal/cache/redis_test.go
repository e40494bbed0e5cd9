package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/meal-subscription/internal/config"
)

type projection struct {
	Year   int
	Status []int
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestInitServer_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	c, err := InitServer(context.Background(), config.RedisConnection{AddressRedis: addr, DialTimeout: 100 * time.Millisecond})
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestSetAndGet(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	expected := projection{Year: 2024, Status: []int{0, 1, 2}}
	require.NoError(t, c.Set(ctx, CalendarKey("u1", 2024), expected, time.Minute))

	var actual projection
	found, err := c.Get(ctx, CalendarKey("u1", 2024), &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	c, _ := setupTestCache(t)

	var out projection
	found, err := c.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	c, mr := setupTestCache(t)
	require.NoError(t, mr.Set("broken", "{not json"))

	var out projection
	found, err := c.Get(context.Background(), "broken", &out)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestSetExpires(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", projection{Year: 2024}, time.Second))
	mr.FastForward(2 * time.Second)

	var out projection
	found, err := c.Get(ctx, "short", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", projection{Year: 2024}, time.Minute))
	require.NoError(t, c.Invalidate(ctx, "k"))
	assert.False(t, mr.Exists("k"))

	require.NoError(t, c.Invalidate(ctx, "missing"))
}

func TestInvalidatePattern(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, CalendarKey("u1", 2024), projection{Year: 2024}, time.Minute))
	require.NoError(t, c.Set(ctx, CalendarKey("u1", 2025), projection{Year: 2025}, time.Minute))
	require.NoError(t, c.Set(ctx, CalendarKey("u2", 2024), projection{Year: 2024}, time.Minute))

	require.NoError(t, c.InvalidatePattern(ctx, CalendarPattern("u1")))

	assert.False(t, mr.Exists("calendar:u1:2024"))
	assert.False(t, mr.Exists("calendar:u1:2025"))
	assert.True(t, mr.Exists("calendar:u2:2024"))

	require.NoError(t, c.InvalidatePattern(ctx, CalendarPattern("nobody")))
}
