package config

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2" // doubly linked list plus hash map
	"golang.org/x/time/rate"

	"github.com/zasai/zas-translate/models"
)

const userCacheSize = 1024 // users kept in memory

var (
	// process wide user cache keyed by user id, filled by the auth middleware
	LocalUserCache *lru.Cache[uint, models.Users]
	cacheOnce      sync.Once // the cache is built once

	// per-email login limiters, swept every 5 minutes
	LoginAttempts = sync.Map{}
	cleanupOnce   sync.Once // one sweeper goroutine
)

// UserCache returns the shared user cache, creating it on first use.
func UserCache() *lru.Cache[uint, models.Users] {
	cacheOnce.Do(func() {
		// fixed size, least recently used entries are evicted first
		cache, err := lru.New[uint, models.Users](userCacheSize)
		if err != nil {
			panic(err)
		}
		LocalUserCache = cache
	})
	return LocalUserCache
}

// LoginLimiter returns the limiter for key, allowing 5 attempts per minute.
func LoginLimiter(key string) *rate.Limiter {
	ensureCleanupRunning()
	v, _ := LoginAttempts.LoadOrStore(key, rate.NewLimiter(rate.Every(12*time.Second), 5)) // one token per 12s, burst 5
	return v.(*rate.Limiter)
}

func ensureCleanupRunning() {
	cleanupOnce.Do(func() {
		go cleanupOldLimiters()
	})
}

// cleanupOldLimiters drops limiters whose bucket refilled, i.e. idle keys.
func cleanupOldLimiters() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		LoginAttempts.Range(func(key, value interface{}) bool {
			limiter := value.(*rate.Limiter)
			// a full bucket means no recent attempts
			if limiter.Tokens() >= float64(limiter.Burst()) {
				LoginAttempts.Delete(key)
			}
			return true
		})
	}
}
