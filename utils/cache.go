package utils

import (
	"context"
	"time"

	"servisync/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheClient is the snapshot cache client.
var CacheClient *redis.Client

// InitCache initializes the Redis snapshot cache client. The cache only
// powers warm starts, so an unreachable Redis degrades to a cold start
// instead of refusing to run.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		GetLogger().Warn("Redis unreachable, warm-start snapshot cache disabled", zap.Error(err))
	}
}

// GetCacheClient returns the snapshot cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}
