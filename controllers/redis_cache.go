package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis"

	"github.com/zasai/zas-translate/global"
)

var errNoRedis = errors.New("redis is not configured")

// setCache stores data as JSON.
func setCache[T any](key string, data T, ttl time.Duration) error {
	if global.RedisDB == nil {
		return errNoRedis
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return global.RedisDB.Set(key, b, ttl).Err()
}

func getCache[T any](key string) (T, error) {
	var data T
	if global.RedisDB == nil {
		return data, errNoRedis
	}
	raw, err := global.RedisDB.Get(key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return data, fmt.Errorf("cache key %s not found", key)
		}
		return data, fmt.Errorf("redis get error: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("json unmarshal error: %w", err)
	}
	return data, nil
}

// invalidateCache drops key, ignoring errors.
func invalidateCache(key string) {
	if global.RedisDB != nil {
		_ = global.RedisDB.Del(key).Err()
	}
}
