package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/store"
	redisStore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// S is the shared cache store. It stays nil when caching is disabled,
// callers must treat a nil store as a permanent miss.
var S store.StoreInterface

func NewCache() error {
	if !viper.GetBool("cache.enabled") {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("cache.target"),
		Password: viper.GetString("cache.password"),
		DB:       viper.GetInt("cache.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("unable to reach redis: %v", err)
	}

	ttl := viper.GetDuration("cache.ttl")
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	S = redisStore.NewRedis(rdb, store.WithExpiration(ttl))

	return nil
}
