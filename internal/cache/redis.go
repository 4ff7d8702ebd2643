package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds the Redis connection settings
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	// Namespace prefixes every key; set it to the process run ID so two processes
	// never read each other's entries
	Namespace string
}

// RedisCache stores entries in Redis under a per-process namespace.
// Close removes every key it wrote.
type RedisCache struct {
	client *redis.Client
	prefix string

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	if cfg.Namespace == "" {
		return nil, errors.New("redis cache namespace is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisCache(client, cfg.Namespace), nil
}

func newRedisCache(client *redis.Client, namespace string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "betedge:" + namespace + ":",
		keys:   make(map[string]struct{}),
	}
}

func (r *RedisCache) key(k string) string {
	return r.prefix + k
}

// Get implements Cache
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}
	return val, true, nil
}

// Set implements Cache
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	full := r.key(key)
	if err := r.client.Set(ctx, full, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store %s in Redis: %w", key, err)
	}

	r.mu.Lock()
	r.keys[full] = struct{}{}
	r.mu.Unlock()
	return nil
}

// Close purges the namespace and closes the connection
func (r *RedisCache) Close() error {
	r.mu.Lock()
	keys := make([]string, 0, len(r.keys))
	for k := range r.keys {
		keys = append(keys, k)
	}
	r.keys = make(map[string]struct{})
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var purgeErr error
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			purgeErr = fmt.Errorf("failed to purge cache namespace: %w", err)
			log.Warn().Err(err).Str("prefix", r.prefix).Msg("Cache purge failed")
		}
	}

	return errors.Join(purgeErr, r.client.Close())
}
