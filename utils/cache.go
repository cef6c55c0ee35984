// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"sherpa/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (AI conversation context).
	CacheClient *redis.Client
	// DedupCacheClient is the dedicated client for webhook message deduplication.
	DedupCacheClient *redis.Client
)

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitDedupCache initializes the Redis client for webhook message deduplication.
func InitDedupCache() {
	DedupCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDedupDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := DedupCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Dedup Cache): %v", err)
	}
}

// GetDedupCacheClient returns the Redis client for webhook message deduplication.
func GetDedupCacheClient() *redis.Client {
	if DedupCacheClient == nil {
		InitDedupCache()
	}
	return DedupCacheClient
}
