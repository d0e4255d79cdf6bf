package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/order-intake/internal/health"
	"github.com/vladislavdragonenkov/order-intake/internal/version"
)

func TestBuildDependencies_Memory(t *testing.T) {
	cfg := DefaultConfig()
	logger := log.WithField("component", "test")
	healthHandler := healthcheck.NewHandler(version.String())

	deps, err := buildDependencies(context.Background(), cfg, healthHandler, logger)
	if err != nil {
		t.Fatalf("build dependencies failed: %v", err)
	}
	defer deps.Close(logger)

	if deps.SequenceCache == nil {
		t.Error("sequence cache should be initialized")
	}
	if deps.RecordStore == nil {
		t.Error("record store should be initialized")
	}
	if deps.Producer != nil {
		t.Error("producer should be nil without brokers")
	}
}

func TestBuildDependencies_UnknownCacheDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheDriver = CacheDriver("etcd")
	logger := log.WithField("component", "test")

	if _, err := buildDependencies(context.Background(), cfg, healthcheck.NewHandler(""), logger); err == nil {
		t.Fatal("expected error for unknown cache driver")
	}
}

func TestBuildDependencies_UnknownStorageDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriver("cassandra")
	logger := log.WithField("component", "test")

	if _, err := buildDependencies(context.Background(), cfg, healthcheck.NewHandler(""), logger); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}
