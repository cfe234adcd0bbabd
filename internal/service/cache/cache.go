package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Key 以内容哈希作为缓存键；parts 用于区分同一文件在不同设置下的结果
func Key(data []byte, parts ...string) string {
	h := sha256.New()
	h.Write(data)
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FileHash 文件内容的 SHA-256
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache 带过期时间的结果缓存（相同输入在有效期内返回同一结果）
type Cache[V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]entry[V]
}

// New 创建缓存；now 为空时使用 time.Now
func New[V any](ttl time.Duration, now func() time.Time) *Cache[V] {
	if now == nil {
		now = time.Now
	}
	return &Cache[V]{
		ttl:   ttl,
		now:   now,
		items: make(map[string]entry[V]),
	}
}

// Get 读取未过期的缓存项
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.purgeExpiredLocked(now)

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put 写入缓存项
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.purgeExpiredLocked(now)
	c.items[key] = entry[V]{value: value, expiresAt: now.Add(c.ttl)}
}

// Len 未过期的缓存项数量
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpiredLocked(c.now())
	return len(c.items)
}

func (c *Cache[V]) purgeExpiredLocked(now time.Time) {
	for k, v := range c.items {
		if !now.Before(v.expiresAt) {
			delete(c.items, k)
		}
	}
}
