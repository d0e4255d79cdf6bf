package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
)

// sequenceCacheInMemory — простая in-memory реализация SequenceCache.
type sequenceCacheInMemory struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewSequenceCache возвращает in-memory счётчик для локальной разработки и тестов.
func NewSequenceCache() domain.SequenceCache {
	return &sequenceCacheInMemory{
		values: make(map[string]int64),
	}
}

// Get возвращает последний выданный номер scope, если он есть.
func (c *sequenceCacheInMemory) Get(_ context.Context, scope domain.Scope) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.values[scope.CacheKey()]
	return value, ok, nil
}

// Set записывает последний выданный номер scope.
func (c *sequenceCacheInMemory) Set(_ context.Context, scope domain.Scope, value int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[scope.CacheKey()] = value
	return nil
}

// SetIfAbsent засеивает счётчик, только если значения ещё нет.
func (c *sequenceCacheInMemory) SetIfAbsent(_ context.Context, scope domain.Scope, value int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := scope.CacheKey()
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = value
	return true, nil
}

// Increment атомарно увеличивает счётчик scope и возвращает новое значение.
func (c *sequenceCacheInMemory) Increment(_ context.Context, scope domain.Scope) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := scope.CacheKey()
	c.values[key]++
	return c.values[key], nil
}

var _ domain.SequenceCache = (*sequenceCacheInMemory)(nil)
