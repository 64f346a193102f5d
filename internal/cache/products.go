package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/quickcart/pkg/logger"
)

const versionKey = "products:version"

// ProductCache 商品读缓存。写操作通过递增版本号整体失效，避免逐 key 删除。
// client 为 nil 时所有操作为空操作。
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{client: client, ttl: ttl}
}

func (c *ProductCache) Enabled() bool { return c != nil && c.client != nil }

// GetList loads a cached product list for the search term into dst.
func (c *ProductCache) GetList(ctx context.Context, search string, dst any) bool {
	return c.get(ctx, "list:"+search, dst)
}

func (c *ProductCache) SetList(ctx context.Context, search string, v any) {
	c.set(ctx, "list:"+search, v)
}

func (c *ProductCache) GetDetail(ctx context.Context, productID string, dst any) bool {
	return c.get(ctx, "detail:"+productID, dst)
}

func (c *ProductCache) SetDetail(ctx context.Context, productID string, v any) {
	c.set(ctx, "detail:"+productID, v)
}

// Invalidate 使所有商品缓存失效
func (c *ProductCache) Invalidate(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		logger.Warn("product cache invalidate failed", zap.Error(err))
	}
}

func (c *ProductCache) key(ctx context.Context, suffix string) (string, error) {
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("products:v%d:%s", ver, suffix), nil
}

func (c *ProductCache) get(ctx context.Context, suffix string, dst any) bool {
	if !c.Enabled() {
		return false
	}
	key, err := c.key(ctx, suffix)
	if err != nil {
		logger.Warn("product cache unavailable", zap.Error(err))
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false
	}
	return true
}

func (c *ProductCache) set(ctx context.Context, suffix string, v any) {
	if !c.Enabled() {
		return
	}
	key, err := c.key(ctx, suffix)
	if err != nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
	}
}
