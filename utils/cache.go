package utils

import (
	"context"
	"log"
	"time"

	"dentflow/config"

	"github.com/go-redis/redis/v8"
)

// LockClient is the Redis client backing schedule locks and token revocation.
var LockClient *redis.Client

// InitRedis initializes the lock client using REDIS_LOCK_DB.
func InitRedis() {
	LockClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := LockClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Lock): %v", err)
	}
}

// GetLockClient returns the lock client, connecting on first use.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitRedis()
	}
	return LockClient
}
