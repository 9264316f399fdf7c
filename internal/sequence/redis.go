package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGenerator uses INCR, which is atomic on the server. Day keys expire
// after ttl so old counters do not accumulate.
type RedisGenerator struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
	TTL       time.Duration
}

func NewRedisGenerator(opts RedisOptions) *RedisGenerator {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "pos"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisGenerator{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		namespace: namespace,
		ttl:       ttl,
	}
}

func (g *RedisGenerator) Key(key string) string {
	return fmt.Sprintf("%s:seq:%s", g.namespace, key)
}

func (g *RedisGenerator) Next(ctx context.Context, key string) (int64, error) {
	redisKey := g.Key(key)

	seq, err := g.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("cannot increment counter %s: %w", key, err)
	}

	if seq == 1 {
		if err := g.client.Expire(ctx, redisKey, g.ttl).Err(); err != nil {
			return 0, fmt.Errorf("cannot set expiry on counter %s: %w", key, err)
		}
	}
	return seq, nil
}

// Start verifies connectivity (apt lifecycle).
func (g *RedisGenerator) Start(ctx context.Context) error {
	if err := g.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cannot ping redis: %w", err)
	}
	return nil
}

func (g *RedisGenerator) Stop(ctx context.Context) error {
	return g.client.Close()
}
