package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
}

func newTestCache(t *testing.T) (*ProductCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewProductCache(client, time.Minute), mr
}

func TestProductCache_SetGetInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var got []item
	assert.False(t, c.GetList(ctx, "", &got))

	c.SetList(ctx, "", []item{{ID: "a", Stock: 3}})
	require.True(t, c.GetList(ctx, "", &got))
	assert.Equal(t, []item{{ID: "a", Stock: 3}}, got)

	c.SetDetail(ctx, "a", item{ID: "a", Stock: 3})
	var one item
	require.True(t, c.GetDetail(ctx, "a", &one))

	c.Invalidate(ctx)
	assert.False(t, c.GetList(ctx, "", &got))
	assert.False(t, c.GetDetail(ctx, "a", &one))
}

func TestProductCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	c.SetList(ctx, "milk", []item{{ID: "m"}})

	mr.FastForward(2 * time.Minute)
	var got []item
	assert.False(t, c.GetList(ctx, "milk", &got))
}

func TestProductCache_DegradesWithoutRedis(t *testing.T) {
	ctx := context.Background()
	disabled := NewProductCache(nil, 0)
	assert.False(t, disabled.Enabled())
	disabled.SetList(ctx, "", []item{{ID: "x"}})
	disabled.Invalidate(ctx)
	var got []item
	assert.False(t, disabled.GetList(ctx, "", &got))

	// redis 宕机时读写静默失败，不影响调用方
	c, mr := newTestCache(t)
	mr.Close()
	c.SetList(ctx, "", []item{{ID: "x"}})
	assert.False(t, c.GetList(ctx, "", &got))
}
