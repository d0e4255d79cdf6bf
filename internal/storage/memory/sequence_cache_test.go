package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
	"github.com/vladislavdragonenkov/order-intake/internal/storage/memory"
)

func testScope() domain.Scope {
	return domain.NewScope(1, time.Date(2024, 11, 25, 10, 0, 0, 0, time.UTC))
}

func TestSequenceCache_GetMiss(t *testing.T) {
	cache := memory.NewSequenceCache()

	_, ok, err := cache.Get(context.Background(), testScope())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestSequenceCache_SetGet(t *testing.T) {
	cache := memory.NewSequenceCache()
	ctx := context.Background()

	if err := cache.Set(ctx, testScope(), 8); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	value, ok, err := cache.Get(ctx, testScope())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || value != 8 {
		t.Fatalf("expected 8, got %d (ok=%v)", value, ok)
	}
}

func TestSequenceCache_SetIfAbsent(t *testing.T) {
	cache := memory.NewSequenceCache()
	ctx := context.Background()

	seeded, err := cache.SetIfAbsent(ctx, testScope(), 7)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if !seeded {
		t.Fatal("expected first seed to win")
	}

	seeded, err = cache.SetIfAbsent(ctx, testScope(), 100)
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if seeded {
		t.Fatal("expected second seed to be ignored")
	}

	value, _, err := cache.Get(ctx, testScope())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != 7 {
		t.Fatalf("expected seeded value 7, got %d", value)
	}
}

func TestSequenceCache_Increment(t *testing.T) {
	cache := memory.NewSequenceCache()
	ctx := context.Background()

	if _, err := cache.SetIfAbsent(ctx, testScope(), 5); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	value, err := cache.Increment(ctx, testScope())
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if value != 6 {
		t.Fatalf("expected 6, got %d", value)
	}
}

func TestSequenceCache_IncrementConcurrent(t *testing.T) {
	cache := memory.NewSequenceCache()
	ctx := context.Background()

	const workers = 50
	results := make(chan int64, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := cache.Increment(ctx, testScope())
			if err != nil {
				t.Errorf("increment failed: %v", err)
				return
			}
			results <- value
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for value := range results {
		if seen[value] {
			t.Fatalf("duplicate value %d issued", value)
		}
		seen[value] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d unique values, got %d", workers, len(seen))
	}
}
