package config

import (
	"time"

	"github.com/go-redis/redis"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/log"
)

const (
	RedisKeyTranslation = "zas:tr:%s:%s" // target language, segment hash
	CacheTTL            = 7 * 24 * time.Hour
)

// OpenRedis returns nil when no address is configured or the server does not answer;
// callers then fall back to the local cache only.
func OpenRedis(cfg *Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		DB:           cfg.Redis.DB,
		Password:     cfg.Redis.Password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  800 * time.Millisecond,
		WriteTimeout: 800 * time.Millisecond,
		PoolSize:     20,
		MinIdleConns: 5,
	})
	if _, err := client.Ping().Result(); err != nil {
		log.L().Error("redis connection failed, continuing without redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
		_ = client.Close()
		return nil
	}
	log.L().Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return client
}
