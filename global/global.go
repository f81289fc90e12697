package global

import (
	"time"

	"github.com/go-redis/redis"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	DB      *gorm.DB
	RedisDB *redis.Client // nil when redis is not configured

	// dedups identical in-flight translations
	FetchGroup singleflight.Group
	// per provider call
	FetchTimeout = 60 * time.Second
)
