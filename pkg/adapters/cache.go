package adapters

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// ImageCacher は、生成済み画像の URL などをキャッシュするためのインターフェースです。
type ImageCacher interface {
	// Get は、指定されたキーに紐づくアイテムを取得します。
	Get(key string) (any, bool)
	// Set は、指定されたキーと値、有効期限でアイテムを保存します。d が 0 以下なら期限なしです。
	Set(key string, value any, d time.Duration)
}

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// MemoryCache はプロセス内の LRU キャッシュです。
type MemoryCache struct {
	cache *lru.Cache
	now   func() time.Time
}

// NewMemoryCache は最大 size 件を保持する MemoryCache を作成します。
func NewMemoryCache(size int) (*MemoryCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("LRU キャッシュの作成に失敗しました: %w", err)
	}
	return &MemoryCache{cache: cache, now: time.Now}, nil
}

func (c *MemoryCache) Get(key string) (any, bool) {
	raw, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	entry, ok := raw.(memoryEntry)
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.cache.Remove(key)
		return nil, false
	}
	return entry.value, true
}

func (c *MemoryCache) Set(key string, value any, d time.Duration) {
	entry := memoryEntry{value: value}
	if d > 0 {
		entry.expiresAt = c.now().Add(d)
	}
	c.cache.Add(key, entry)
}

// Len は保持している件数を返します。期限切れで未削除のものも含みます。
func (c *MemoryCache) Len() int {
	return c.cache.Len()
}
