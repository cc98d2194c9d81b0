package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// CacheItem 包装缓存数据和过期时间
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache 本地 LRU 缓存，条目按 TTL 过期
type Cache struct {
	lruCache *lru.Cache[string, CacheItem]
	ttl      time.Duration
}

// NewCache 创建容量为 size 的缓存，ttl 为默认过期时间
func NewCache(size int, ttl time.Duration) (*Cache, error) {
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LRU cache")
	}
	return &Cache{lruCache: l, ttl: ttl}, nil
}

// Set 设置缓存，使用默认 TTL
func (c *Cache) Set(key string, data interface{}) {
	c.SetWithTTL(key, data, c.ttl)
}

func (c *Cache) SetWithTTL(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get 获取缓存，若不存在或已过期则返回 nil, false
func (c *Cache) Get(key string) (interface{}, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil, false
	}

	// 检查过期
	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil, false
	}

	return val.Data, true
}

// Delete 删除指定缓存
func (c *Cache) Delete(key string) {
	c.lruCache.Remove(key)
}

// Purge 清空全部缓存（任何写操作之后）
func (c *Cache) Purge() {
	c.lruCache.Purge()
}

func (c *Cache) Len() int {
	return c.lruCache.Len()
}
