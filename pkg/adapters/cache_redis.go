package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "imagegen:v2:"

// RedisCache は Redis を使った ImageCacher です。値は文字列として保存されます。
type RedisCache struct {
	client redis.UniversalClient
	ctx    context.Context
	prefix string
}

// NewRedisCache は redis:// 形式の URL から接続し、疎通を確認します。
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis URL の解析に失敗しました: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis への接続に失敗しました: %w", err)
	}
	return NewRedisCacheWithClient(client), nil
}

// NewRedisCacheWithClient は既存のクライアントを包みます。
func NewRedisCacheWithClient(client redis.UniversalClient) *RedisCache {
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
		prefix: redisKeyPrefix,
	}
}

func (c *RedisCache) Get(key string) (any, bool) {
	val, err := c.client.Get(c.ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("redis からの取得に失敗しました", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(key string, value any, d time.Duration) {
	if d < 0 {
		d = 0
	}
	if err := c.client.Set(c.ctx, c.prefix+key, value, d).Err(); err != nil {
		slog.Warn("redis への保存に失敗しました", "key", key, "error", err)
	}
}

// Close は接続を閉じます。
func (c *RedisCache) Close() error {
	return c.client.Close()
}
