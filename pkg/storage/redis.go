package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisKV backs the durable tier with Redis. Construction failures return a
// nil receiver; every method is nil-safe so the rest of the system keeps
// working without durable storage.
type RedisKV struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisKV() *RedisKV {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisDB := 0
	if db := os.Getenv("REDIS_DB"); db != "" {
		if dbNum, err := strconv.Atoi(db); err == nil {
			redisDB = dbNum
		}
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Failed to parse Redis URL: %v", err)
		return nil
	}
	opt.DB = redisDB

	client := redis.NewClient(opt)
	ctx := context.Background()

	// Test connection
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Redis connection failed: %v", err)
		return nil
	}

	log.Printf("Redis connected successfully, DB: %d", redisDB)

	return &RedisKV{client: client, ctx: ctx}
}

func (r *RedisKV) Get(key string) (string, error) {
	if r == nil || r.client == nil {
		return "", fmt.Errorf("redis client not available")
	}
	val, err := r.client.Get(r.ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get error: %v", err)
	}
	return val, nil
}

func (r *RedisKV) Set(key, value string) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not available")
	}
	return r.client.Set(r.ctx, key, value, 0).Err()
}

func (r *RedisKV) Delete(key string) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not available")
	}
	return r.client.Del(r.ctx, key).Err()
}

func (r *RedisKV) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *RedisKV) IsAvailable() bool {
	return r != nil && r.client != nil
}

func (r *RedisKV) GetStats() map[string]interface{} {
	if r == nil || r.client == nil {
		return map[string]interface{}{
			"status": "unavailable",
		}
	}

	info := r.client.Info(r.ctx, "memory").Val()
	return map[string]interface{}{
		"status":      "connected",
		"memory_info": info,
	}
}

// KeysWithPrefix lists the stored keys under a namespace, used by the cache
// debug endpoints.
func (r *RedisKV) KeysWithPrefix(prefix string) []string {
	if r == nil || r.client == nil {
		return []string{}
	}
	keys, err := r.client.Keys(r.ctx, prefix+"*").Result()
	if err != nil {
		return []string{}
	}
	return keys
}

func (r *RedisKV) Flush() error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not available")
	}
	return r.client.FlushDB(r.ctx).Err()
}
