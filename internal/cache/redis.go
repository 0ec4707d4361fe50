package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a shared cache for responses worth surviving a process restart,
// currently the trending-events list. Values are opaque JSON payloads; the
// caller owns the encoding.
type Redis struct {
	redisdb *redis.Client
	ttl     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Redis{redisdb: redisdb, ttl: ttl}
}

// Get returns the cached payload for key, or ok=false on miss or any redis
// error. Callers treat the cache as best effort.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.redisdb.Get(ctx, key).Bytes()

	if err != nil {
		return nil, false
	}

	return raw, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) error {
	return r.redisdb.Set(ctx, key, val, r.ttl).Err()
}

// this ping function checks redis connectivity

func (r *Redis) Ping(ctx context.Context) error {
	return r.redisdb.Ping(ctx).Err()
}

// this closes the client

func (r *Redis) Close() error {
	return r.redisdb.Close()
}
