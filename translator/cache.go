package translator

import (
	"fmt"
	"time"

	"github.com/go-redis/redis"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/log"
)

// Cache stores translated segments by key. Implementations must be safe for
// concurrent use; a failing backend behaves like a miss.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

func cacheKey(target, hash string) string {
	return fmt.Sprintf(config.RedisKeyTranslation, target, hash)
}

type LRUCache struct {
	c *lru.Cache[string, string]
}

func NewLRUCache(size int) (*LRUCache, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{c: c}, nil
}

func (l *LRUCache) Get(key string) (string, bool) { return l.c.Get(key) }
func (l *LRUCache) Set(key, value string)         { l.c.Add(key, value) }
func (l *LRUCache) Len() int                      { return l.c.Len() }

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(key string) (string, bool) {
	val, err := r.client.Get(key).Result()
	if err != nil {
		if err != redis.Nil {
			log.L().Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

func (r *RedisCache) Set(key, value string) {
	if err := r.client.Set(key, value, r.ttl).Err(); err != nil {
		log.L().Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// TieredCache reads the local cache first and fills it from the remote one.
type TieredCache struct {
	local  Cache
	remote Cache // may be nil
}

func NewTieredCache(local, remote Cache) *TieredCache {
	return &TieredCache{local: local, remote: remote}
}

func (t *TieredCache) Get(key string) (string, bool) {
	if v, ok := t.local.Get(key); ok {
		return v, true
	}
	if t.remote == nil {
		return "", false
	}
	v, ok := t.remote.Get(key)
	if ok {
		t.local.Set(key, v)
	}
	return v, ok
}

func (t *TieredCache) Set(key, value string) {
	t.local.Set(key, value)
	if t.remote != nil {
		t.remote.Set(key, value)
	}
}

// NewCacheFromConfig returns an LRU cache, backed by redis when client is not nil.
func NewCacheFromConfig(cfg *config.Config, client *redis.Client) (Cache, error) {
	local, err := NewLRUCache(cfg.Translation.CacheSize)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return NewTieredCache(local, nil), nil
	}
	return NewTieredCache(local, NewRedisCache(client, config.CacheTTL)), nil
}
