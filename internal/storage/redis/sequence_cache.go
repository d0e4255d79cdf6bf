package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// NewClient создаёт Redis-клиент и проверяет доступность сервера.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// sequenceCacheRedis хранит счётчики scope в Redis.
// Ключ order:{customerId}:{ddmmyy} живёт ttl и после смены дня истекает сам.
type sequenceCacheRedis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSequenceCache возвращает Redis-реализацию SequenceCache.
func NewSequenceCache(client *redis.Client, ttl time.Duration) domain.SequenceCache {
	return &sequenceCacheRedis{client: client, ttl: ttl}
}

// Get возвращает последний выданный номер scope. Отсутствие ключа — не ошибка.
func (c *sequenceCacheRedis) Get(ctx context.Context, scope domain.Scope) (int64, bool, error) {
	value, err := c.client.Get(ctx, scope.CacheKey()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get sequence %s: %w", scope.CacheKey(), err)
	}
	return value, true, nil
}

// Set записывает последний выданный номер scope.
func (c *sequenceCacheRedis) Set(ctx context.Context, scope domain.Scope, value int64) error {
	if err := c.client.Set(ctx, scope.CacheKey(), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("set sequence %s: %w", scope.CacheKey(), err)
	}
	return nil
}

// SetIfAbsent засеивает счётчик через SETNX.
func (c *sequenceCacheRedis) SetIfAbsent(ctx context.Context, scope domain.Scope, value int64) (bool, error) {
	seeded, err := c.client.SetNX(ctx, scope.CacheKey(), value, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("seed sequence %s: %w", scope.CacheKey(), err)
	}
	return seeded, nil
}

// Increment атомарно увеличивает счётчик через INCR и возвращает новое значение.
func (c *sequenceCacheRedis) Increment(ctx context.Context, scope domain.Scope) (int64, error) {
	value, err := c.client.Incr(ctx, scope.CacheKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", scope.CacheKey(), err)
	}
	return value, nil
}

var _ domain.SequenceCache = (*sequenceCacheRedis)(nil)
